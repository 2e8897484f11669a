// Package export writes the search outcome to disk: the full results table,
// the four selection views, robust choices, named recommendations, dropped
// configurations, and the run parameters. Everything is plain CSV plus one
// YAML file so downstream analysis tools can consume the run without linking
// against this module.
package export

import (
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/modelsel/gbsearch/pkg/errors"
	"github.com/modelsel/gbsearch/rank"
	"github.com/modelsel/gbsearch/search"
)

// Output file names inside the run directory.
const (
	FileResults          = "results.csv"
	FileTopComposite     = "top_composite.csv"
	FileTopTestR2        = "top_test_r2.csv"
	FileMostStable       = "most_stable.csv"
	FileLeastOverfitting = "least_overfitting.csv"
	FileRobustChoices    = "robust_choices.csv"
	FileRecommended      = "recommended.csv"
	FileDropped          = "dropped.csv"
	FileRunParams        = "run_params.yaml"
)

// RecommendedRow is a recommendation with the strategy that selected it.
type RecommendedRow struct {
	Strategy string `csv:"strategy"`
	rank.ScoredResult
}

// Writer writes run artifacts into a single directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, errors.NewValidationError("dir", "must not be empty", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", dir)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory path.
func (w *Writer) Dir() string { return w.dir }

// WriteAll writes every artifact of a finished run.
func (w *Writer) WriteAll(ranking *rank.Ranking, report *search.Report, params any) error {
	if err := w.WriteRanking(ranking); err != nil {
		return err
	}
	if err := w.WriteDropped(report.Dropped); err != nil {
		return err
	}
	return w.WriteRunParams(params)
}

// WriteRanking writes the results table, the four views, robust choices,
// and the recommendations.
func (w *Writer) WriteRanking(ranking *rank.Ranking) error {
	tables := []struct {
		name string
		rows []rank.ScoredResult
	}{
		{FileResults, ranking.Table},
		{FileTopComposite, ranking.TopComposite},
		{FileTopTestR2, ranking.TopTestR2},
		{FileMostStable, ranking.MostStable},
		{FileLeastOverfitting, ranking.LeastOverfitting},
		{FileRobustChoices, ranking.RobustChoices},
	}
	for _, tbl := range tables {
		if err := w.writeCSV(tbl.name, tbl.rows); err != nil {
			return err
		}
	}
	return w.writeCSV(FileRecommended, recommendedRows(ranking))
}

// WriteDropped writes the dropped-configuration table. An empty table still
// produces a header-only file so consumers can rely on its presence.
func (w *Writer) WriteDropped(dropped []search.Dropped) error {
	return w.writeCSV(FileDropped, dropped)
}

// WriteRunParams saves the run parameters as YAML.
func (w *Writer) WriteRunParams(params any) error {
	data, err := yaml.Marshal(params)
	if err != nil {
		return errors.Wrap(err, "marshaling run parameters")
	}
	path := filepath.Join(w.dir, FileRunParams)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", FileRunParams)
	}
	return nil
}

// recommendedRows flattens the strategy map into rows in a fixed order.
func recommendedRows(ranking *rank.Ranking) []RecommendedRow {
	order := []string{
		rank.StrategyBestOverall,
		rank.StrategyBestR2,
		rank.StrategyMostStable,
		rank.StrategyLeastOverfitting,
		rank.StrategyRobustChoice,
	}
	rows := make([]RecommendedRow, 0, len(order))
	for _, strategy := range order {
		rec, ok := ranking.Recommended[strategy]
		if !ok {
			continue
		}
		rows = append(rows, RecommendedRow{Strategy: strategy, ScoredResult: rec})
	}
	return rows
}

func (w *Writer) writeCSV(name string, rows any) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", name)
	}
	if err := gocsv.Marshal(rows, f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", name)
	}
	return f.Close()
}
