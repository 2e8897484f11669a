// Command gbsearch runs a full model-selection search: expand the
// hyperparameter grid, evaluate every configuration with repeated
// train/test splits and inner cross-validation, rank the survivors, and
// write the results to an output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelsel/gbsearch/config"
	"github.com/modelsel/gbsearch/dataset"
	"github.com/modelsel/gbsearch/export"
	"github.com/modelsel/gbsearch/grid"
	"github.com/modelsel/gbsearch/pkg/log"
	"github.com/modelsel/gbsearch/rank"
	"github.com/modelsel/gbsearch/search"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "gbsearch:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to run config YAML (empty = use defaults)")
	dataPath := flag.String("data", "", "Input CSV (overrides config)")
	target := flag.String("target", "", "Target column name (overrides config; empty = last column)")
	outputDir := flag.String("output-dir", "", "Output directory (overrides config)")
	seed := flag.Uint64("seed", 0, "Master seed (overrides config when non-zero)")
	workers := flag.Int("workers", 0, "Worker pool size (overrides config when non-zero)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}
	if *target != "" {
		cfg.Data.TargetColumn = *target
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *seed != 0 {
		cfg.Evaluation.MasterSeed = *seed
	}
	if *workers != 0 {
		cfg.Search.Workers = *workers
	}
	if cfg.Data.Path == "" {
		return fmt.Errorf("no input data: pass -data or set data.path in the config")
	}

	log.SetLogger(log.NewConsoleLogger())
	if level, err := log.ToLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}
	logger := log.GetLoggerWithName("gbsearch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := dataset.LoadCSV(cfg.Data.Path, cfg.Data.TargetColumn)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		"path", cfg.Data.Path,
		"rows", ds.NumRows(),
		"features", ds.NumFeatures(),
		"missing_cells", ds.MissingCount(),
	)

	configs, err := grid.Configurations(cfg.Grid)
	if err != nil {
		return err
	}
	logger.Info("search space expanded", "configurations", len(configs))

	report, err := search.Run(ctx, ds, configs, search.Options{
		Evaluate:  cfg.Evaluation,
		Workers:   cfg.Search.Workers,
		ChunkSize: cfg.Search.ChunkSize,
		Logger:    logger.With("component", "search"),
	})
	if err != nil {
		return err
	}
	logger.Info("search finished",
		"evaluated", report.Evaluated,
		"results", len(report.Results),
		"dropped", len(report.Dropped),
	)

	ranking, err := rank.Rank(report.Results, cfg.Ranking)
	if err != nil {
		return err
	}
	best := ranking.Recommended[rank.StrategyBestOverall]
	logger.Info("ranking complete",
		"best_config", best.ID,
		"best_mean_test_r2", best.MeanTestR2,
		"best_mean_gap", best.MeanGap,
		"robust_choices", len(ranking.RobustChoices),
	)

	writer, err := export.NewWriter(cfg.Output.Dir)
	if err != nil {
		return err
	}
	if err := writer.WriteAll(ranking, report, cfg); err != nil {
		return err
	}
	logger.Info("artifacts written", "dir", writer.Dir())
	return nil
}
