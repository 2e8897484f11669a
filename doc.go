// Package gbsearch selects gradient-boosting hyperparameters for small,
// wide regression tables by measuring how configurations generalize, not
// just how well they fit.
//
// The pipeline expands a nine-axis hyperparameter grid, evaluates every
// configuration with repeated stratified train/test splits plus inner
// cross-validation on the training side, aggregates the repetitions into
// distribution statistics, and ranks the survivors with a composite score
// that rewards out-of-sample accuracy and penalizes train/test gap.
//
// # Quick start
//
//	ds, err := dataset.LoadCSV("data.csv", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	configs, err := grid.Configurations(grid.DefaultAxes())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := search.Run(ctx, ds, configs, search.Options{
//	    Evaluate: evaluate.Options{Repetitions: 30, MasterSeed: 42},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ranking, err := rank.Rank(report.Results, rank.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	best := ranking.Recommended[rank.StrategyBestOverall]
//
// The cmd/gbsearch command wraps the same pipeline behind a YAML config
// and writes CSV artifacts via the export package.
//
// # Packages
//
//   - dataset: CSV loading with missing-value sentinels
//   - grid: hyperparameter axes and Cartesian expansion
//   - impute: train-only mean imputation
//   - split: seeded stratified splitting and k-fold generators
//   - gbm: the gradient-boosted tree regressor
//   - evaluate: repetition protocol and aggregation
//   - search: the parallel coordinator
//   - rank: composite scoring and robust selection
//   - export: CSV and YAML artifacts
//
// Every run is deterministic given the master seed: per-configuration,
// per-repetition seeds are derived, never drawn from a shared stream.
package gbsearch
