// Package evaluate runs the nested evaluation protocol for one configuration:
// repeated stratified train/test splits, train-only imputation, inner k-fold
// cross-validation, a final fit, and explicit train-test gap measurement.
package evaluate

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/modelsel/gbsearch/dataset"
	"github.com/modelsel/gbsearch/gbm"
	"github.com/modelsel/gbsearch/grid"
	"github.com/modelsel/gbsearch/impute"
	"github.com/modelsel/gbsearch/metrics"
	"github.com/modelsel/gbsearch/pkg/errors"
	"github.com/modelsel/gbsearch/split"
)

// Options are the execution parameters of the evaluation protocol.
type Options struct {
	Repetitions   int     `yaml:"repetitions"`
	InnerFolds    int     `yaml:"inner_folds"`
	TrainFraction float64 `yaml:"train_fraction"`
	MasterSeed    uint64  `yaml:"master_seed"`

	// MinSuccessfulReps is the minimum number of surviving repetitions a
	// configuration needs to be reported at all.
	MinSuccessfulReps int `yaml:"min_successful_reps"`
}

// WithDefaults fills unset options.
func (o Options) WithDefaults() Options {
	if o.Repetitions == 0 {
		o.Repetitions = 30
	}
	if o.InnerFolds == 0 {
		o.InnerFolds = 5
	}
	if o.TrainFraction == 0 {
		o.TrainFraction = 0.7
	}
	if o.MinSuccessfulReps == 0 {
		o.MinSuccessfulReps = 1
	}
	return o
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Repetitions < 1 {
		return errors.NewValidationError("repetitions", "must be >= 1", o.Repetitions)
	}
	if o.InnerFolds < 2 {
		return errors.NewValidationError("inner_folds", "must be >= 2", o.InnerFolds)
	}
	if o.TrainFraction <= 0 || o.TrainFraction >= 1 {
		return errors.NewValidationError("train_fraction", "must be in (0, 1)", o.TrainFraction)
	}
	if o.MinSuccessfulReps < 1 {
		return errors.NewValidationError("min_successful_reps", "must be >= 1", o.MinSuccessfulReps)
	}
	return nil
}

// RepetitionResult holds the metrics of one repetition. Immutable once
// produced.
type RepetitionResult struct {
	Repetition int
	Seed       uint64

	InnerCVMean float64 // mean validation RMSE across inner folds
	InnerCVStd  float64 // sd of validation RMSE across inner folds

	TrainRMSE float64
	TrainR2   float64
	TestRMSE  float64
	TestR2    float64

	// Gap is train R² minus test R², the primary overfitting signal.
	Gap float64
	// RMSEGap is test RMSE minus train RMSE.
	RMSEGap float64

	NTrain int
	NTest  int
}

// RunRepetition executes one full repetition for a configuration: derive the
// repetition seed, draw the stratified partition, impute on the training rows
// only, run the inner cross-validation, fit the final model, and score both
// partitions. Any failure along the way marks the repetition as failed; the
// caller decides how many failures a configuration can absorb.
func RunRepetition(ds *dataset.Dataset, cfg grid.Configuration, opts Options, repetition int) (RepetitionResult, error) {
	seed := split.DeriveSeed(opts.MasterSeed, cfg.ID, repetition)
	rng := split.NewRand(seed)

	trainIdx, testIdx, err := split.TrainTestSplit(ds.Y(), opts.TrainFraction, rng)
	if err != nil {
		return RepetitionResult{}, errors.Wrapf(err, "repetition %d: partition", repetition)
	}

	trainY := ds.SubsetY(trainIdx)
	testY := ds.SubsetY(testIdx)

	// Imputation parameters come from the training rows only; the test rows
	// are transformed with the already-fitted statistics.
	imputer := impute.NewMeanImputer()
	trainX, err := imputer.FitTransform(ds.SubsetX(trainIdx))
	if err != nil {
		return RepetitionResult{}, errors.Wrapf(err, "repetition %d: imputation", repetition)
	}
	testX, err := imputer.Transform(ds.SubsetX(testIdx))
	if err != nil {
		return RepetitionResult{}, errors.Wrapf(err, "repetition %d: imputation", repetition)
	}

	innerMean, innerStd, err := innerCV(trainX, trainY, cfg, opts, seed, rng)
	if err != nil {
		return RepetitionResult{}, errors.Wrapf(err, "repetition %d: inner cv", repetition)
	}

	final := gbm.NewRegressor(configParams(cfg, split.SubSeed(seed, 0)))
	if err := final.Fit(trainX, trainY); err != nil {
		return RepetitionResult{}, errors.Wrapf(err, "repetition %d: final fit", repetition)
	}

	trainPred, err := final.PredictVec(trainX)
	if err != nil {
		return RepetitionResult{}, errors.Wrapf(err, "repetition %d: train predict", repetition)
	}
	testPred, err := final.PredictVec(testX)
	if err != nil {
		return RepetitionResult{}, errors.Wrapf(err, "repetition %d: test predict", repetition)
	}

	trainRMSE, err := metrics.RMSE(trainY, trainPred)
	if err != nil {
		return RepetitionResult{}, err
	}
	testRMSE, err := metrics.RMSE(testY, testPred)
	if err != nil {
		return RepetitionResult{}, err
	}

	trainMean := stat.Mean(rawVec(trainY), nil)
	trainR2, err := metrics.R2Baseline(trainY, trainPred, trainMean)
	if err != nil {
		return RepetitionResult{}, err
	}
	// Test R² is computed against the TRAIN mean, keeping the denominator in
	// the regression frame the model was fit in. See metrics.R2Baseline.
	testR2, err := metrics.R2Baseline(testY, testPred, trainMean)
	if err != nil {
		return RepetitionResult{}, err
	}

	return RepetitionResult{
		Repetition:  repetition,
		Seed:        seed,
		InnerCVMean: innerMean,
		InnerCVStd:  innerStd,
		TrainRMSE:   trainRMSE,
		TrainR2:     trainR2,
		TestRMSE:    testRMSE,
		TestR2:      testR2,
		Gap:         trainR2 - testR2,
		RMSEGap:     testRMSE - trainRMSE,
		NTrain:      len(trainIdx),
		NTest:       len(testIdx),
	}, nil
}

// innerCV runs the stratified inner k-fold loop on the (already imputed)
// training partition and returns the mean and sd of the per-fold validation
// RMSE. The inner loop is a stability diagnostic only; it never selects
// hyperparameters, the outer grid does.
func innerCV(trainX mat.Matrix, trainY *mat.VecDense, cfg grid.Configuration, opts Options, seed uint64, rng *rand.Rand) (mean, sd float64, err error) {
	folds := split.NewStratifiedKFold(opts.InnerFolds).Split(trainY, rng)

	rmses := make([]float64, 0, len(folds))
	for f, fold := range folds {
		foldX := subsetMatrix(trainX, fold.TrainIndices)
		foldY := subsetVec(trainY, fold.TrainIndices)
		valX := subsetMatrix(trainX, fold.TestIndices)
		valY := subsetVec(trainY, fold.TestIndices)

		model := gbm.NewRegressor(configParams(cfg, split.SubSeed(seed, f+1)))
		if err := model.Fit(foldX, foldY); err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d fit", f)
		}
		pred, err := model.PredictVec(valX)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d predict", f)
		}
		rmse, err := metrics.RMSE(valY, pred)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "fold %d score", f)
		}
		rmses = append(rmses, rmse)
	}

	mean = stat.Mean(rmses, nil)
	if len(rmses) > 1 {
		sd = stat.StdDev(rmses, nil)
	}
	return mean, sd, nil
}

// subsetMatrix copies the given rows of m into a new matrix.
func subsetMatrix(m mat.Matrix, rows []int) *mat.Dense {
	_, cols := m.Dims()
	out := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}

// subsetVec copies the given rows of v into a new vector.
func subsetVec(v *mat.VecDense, rows []int) *mat.VecDense {
	out := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		out.SetVec(i, v.AtVec(r))
	}
	return out
}

// configParams maps a grid configuration onto trainer parameters.
func configParams(cfg grid.Configuration, seed uint64) gbm.TrainingParams {
	return gbm.TrainingParams{
		Trees:           cfg.Trees,
		LearningRate:    cfg.LearningRate,
		MaxDepth:        cfg.MaxDepth,
		Lambda:          cfg.Lambda,
		Alpha:           cfg.Alpha,
		MinSplitGain:    cfg.MinSplitGain,
		MinChildWeight:  cfg.MinChildWeight,
		BaggingFraction: cfg.BaggingFraction,
		FeatureFraction: cfg.FeatureFraction,
		Seed:            seed,
	}
}

// rawVec copies a vector into a plain slice.
func rawVec(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}
