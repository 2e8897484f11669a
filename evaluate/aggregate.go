package evaluate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/modelsel/gbsearch/dataset"
	"github.com/modelsel/gbsearch/grid"
	"github.com/modelsel/gbsearch/pkg/errors"
)

// AggregatedResult is one row of the final results table: the summary of all
// surviving repetitions of a single configuration.
type AggregatedResult struct {
	grid.Configuration `yaml:",inline"`

	SuccessfulReps int `csv:"successful_reps"`
	FailedReps     int `csv:"failed_reps"`

	MeanTrainR2   float64 `csv:"mean_train_r2"`
	MedianTrainR2 float64 `csv:"median_train_r2"`

	MeanTestR2   float64 `csv:"mean_test_r2"`
	MedianTestR2 float64 `csv:"median_test_r2"`
	StdTestR2    float64 `csv:"std_test_r2"`
	P25TestR2    float64 `csv:"p25_test_r2"`
	P75TestR2    float64 `csv:"p75_test_r2"`
	IQRTestR2    float64 `csv:"iqr_test_r2"`

	MeanTestRMSE   float64 `csv:"mean_test_rmse"`
	MedianTestRMSE float64 `csv:"median_test_rmse"`
	StdTestRMSE    float64 `csv:"std_test_rmse"`

	MeanGap   float64 `csv:"mean_gap"`
	MedianGap float64 `csv:"median_gap"`

	MeanRMSEGap float64 `csv:"mean_rmse_gap"`

	MeanInnerCV float64 `csv:"mean_inner_cv_rmse"`
	StdInnerCV  float64 `csv:"std_inner_cv_rmse"`
}

// AggregateRepetitions runs the full repetition loop for one configuration
// and reduces the surviving RepetitionResults into one AggregatedResult.
// Individual repetition failures are absorbed here; if fewer than the minimum
// viable number of repetitions survive, the configuration as a whole fails
// with ErrAllRepetitionsFailed in the chain and is meant to be dropped by the
// caller.
func AggregateRepetitions(ds *dataset.Dataset, cfg grid.Configuration, opts Options) (AggregatedResult, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return AggregatedResult{}, err
	}

	results := make([]RepetitionResult, 0, opts.Repetitions)
	failed := 0
	for rep := 0; rep < opts.Repetitions; rep++ {
		res, err := RunRepetition(ds, cfg, opts, rep)
		if err != nil {
			failed++
			continue
		}
		results = append(results, res)
	}

	if len(results) < opts.MinSuccessfulReps {
		return AggregatedResult{}, errors.Wrapf(errors.ErrAllRepetitionsFailed,
			"configuration %d: %d of %d repetitions failed", cfg.ID, failed, opts.Repetitions)
	}

	return reduce(cfg, results, failed), nil
}

// reduce computes the summary statistics over surviving repetitions.
func reduce(cfg grid.Configuration, results []RepetitionResult, failed int) AggregatedResult {
	trainR2 := field(results, func(r RepetitionResult) float64 { return r.TrainR2 })
	testR2 := field(results, func(r RepetitionResult) float64 { return r.TestR2 })
	testRMSE := field(results, func(r RepetitionResult) float64 { return r.TestRMSE })
	gap := field(results, func(r RepetitionResult) float64 { return r.Gap })
	rmseGap := field(results, func(r RepetitionResult) float64 { return r.RMSEGap })
	innerCV := field(results, func(r RepetitionResult) float64 { return r.InnerCVMean })

	p25 := quantile(testR2, 0.25)
	p75 := quantile(testR2, 0.75)

	return AggregatedResult{
		Configuration:  cfg,
		SuccessfulReps: len(results),
		FailedReps:     failed,

		MeanTrainR2:   stat.Mean(trainR2, nil),
		MedianTrainR2: quantile(trainR2, 0.5),

		MeanTestR2:   stat.Mean(testR2, nil),
		MedianTestR2: quantile(testR2, 0.5),
		StdTestR2:    stdDev(testR2),
		P25TestR2:    p25,
		P75TestR2:    p75,
		IQRTestR2:    p75 - p25,

		MeanTestRMSE:   stat.Mean(testRMSE, nil),
		MedianTestRMSE: quantile(testRMSE, 0.5),
		StdTestRMSE:    stdDev(testRMSE),

		MeanGap:   stat.Mean(gap, nil),
		MedianGap: quantile(gap, 0.5),

		MeanRMSEGap: stat.Mean(rmseGap, nil),

		MeanInnerCV: stat.Mean(innerCV, nil),
		StdInnerCV:  stdDev(innerCV),
	}
}

func field(results []RepetitionResult, get func(RepetitionResult) float64) []float64 {
	out := make([]float64, len(results))
	for i, r := range results {
		out[i] = get(r)
	}
	return out
}

func quantile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
