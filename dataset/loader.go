package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/modelsel/gbsearch/pkg/errors"
)

// Missing-value sentinels recognized in input CSVs, matched case-insensitively.
var missingSentinels = map[string]bool{
	"":    true,
	"na":  true,
	"nan": true,
	"n/a": true,
}

// LoadCSV reads a tidy table from path: one header row, one numeric column per
// predictor, and the target in the column named targetName. An empty
// targetName selects the last column. Missing predictor cells (empty, NA, NaN,
// N/A) become NaN; missing targets are an error.
func LoadCSV(path, targetName string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadCSV: open %s", path)
	}
	defer f.Close()

	return ReadCSV(f, targetName)
}

// ReadCSV parses a tidy table from r. See LoadCSV for the expected layout.
func ReadCSV(r io.Reader, targetName string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "dataset.ReadCSV: read header")
	}

	targetCol := -1
	if targetName == "" {
		// No target named: the last column is the target.
		targetCol = len(header) - 1
		targetName = header[targetCol]
	}
	featureNames := make([]string, 0, len(header)-1)
	for j, name := range header {
		if j == targetCol || (targetCol < 0 && name == targetName) {
			targetCol = j
			continue
		}
		featureNames = append(featureNames, name)
	}
	if targetCol < 0 {
		return nil, errors.NewValueError("dataset.ReadCSV", "target column '"+targetName+"' not found in header")
	}

	var (
		values  []float64
		targets []float64
		rows    int
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "dataset.ReadCSV: row %d", rows+1)
		}
		if len(record) != len(header) {
			return nil, errors.NewDimensionError("dataset.ReadCSV", len(header), len(record), 1)
		}
		for j, cell := range record {
			v, err := parseCell(cell)
			if err != nil {
				return nil, errors.Wrapf(err, "dataset.ReadCSV: row %d column %s", rows+1, header[j])
			}
			if j == targetCol {
				targets = append(targets, v)
			} else {
				values = append(values, v)
			}
		}
		rows++
	}
	if rows == 0 {
		return nil, errors.NewModelError("dataset.ReadCSV", "no data rows", errors.ErrEmptyData)
	}

	x := mat.NewDense(rows, len(featureNames), values)
	y := mat.NewVecDense(rows, targets)
	return New(x, y, featureNames, targetName)
}

func parseCell(cell string) (float64, error) {
	trimmed := strings.TrimSpace(cell)
	if missingSentinels[strings.ToLower(trimmed)] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(trimmed, 64)
}
