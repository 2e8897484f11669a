package gbm

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// makeLinearData builds y = 2*x1 + 3*x2 + small deterministic noise.
func makeLinearData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x1 := float64(i) / 10.0
		x2 := float64(i%10) / 5.0
		X.Set(i, 0, x1)
		X.Set(i, 1, x2)
		y.Set(i, 0, 2*x1+3*x2+0.1*(float64(i%3)-1))
	}
	return X, y
}

func TestRegressorFitsLinearData(t *testing.T) {
	X, y := makeLinearData(100)

	reg := NewRegressor(TrainingParams{
		Trees:        50,
		LearningRate: 0.1,
		MaxDepth:     4,
		Lambda:       1.0,
		Seed:         42,
	})
	require.NoError(t, reg.Fit(X, y))
	assert.Equal(t, 50, reg.NumTrees())

	yVec := mat.NewVecDense(100, nil)
	for i := 0; i < 100; i++ {
		yVec.SetVec(i, y.At(i, 0))
	}
	r2, err := reg.Score(X, yVec)
	require.NoError(t, err)
	assert.Greater(t, r2, 0.9, "training fit should explain the signal")
}

func TestRegressorReproducible(t *testing.T) {
	X, y := makeLinearData(60)
	params := TrainingParams{
		Trees:           30,
		LearningRate:    0.1,
		MaxDepth:        3,
		BaggingFraction: 0.8,
		FeatureFraction: 0.5,
		Seed:            7,
	}

	regA := NewRegressor(params)
	require.NoError(t, regA.Fit(X, y))
	regB := NewRegressor(params)
	require.NoError(t, regB.Fit(X, y))

	predA, err := regA.Predict(X)
	require.NoError(t, err)
	predB, err := regB.Predict(X)
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		assert.Equal(t, predA.At(i, 0), predB.At(i, 0), "row %d bit-identical", i)
	}
}

func TestRegressorSeedChangesSampling(t *testing.T) {
	X, y := makeLinearData(60)
	params := TrainingParams{
		Trees:           30,
		LearningRate:    0.1,
		MaxDepth:        3,
		BaggingFraction: 0.7,
		FeatureFraction: 0.5,
		Seed:            1,
	}

	regA := NewRegressor(params)
	require.NoError(t, regA.Fit(X, y))
	params.Seed = 2
	regB := NewRegressor(params)
	require.NoError(t, regB.Fit(X, y))

	predA, _ := regA.Predict(X)
	predB, _ := regB.Predict(X)

	different := false
	for i := 0; i < 60; i++ {
		if predA.At(i, 0) != predB.At(i, 0) {
			different = true
			break
		}
	}
	assert.True(t, different, "different seeds should sample differently")
}

func TestRegressorPredictBeforeFit(t *testing.T) {
	reg := NewRegressor(TrainingParams{})
	_, err := reg.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.Error(t, err)
}

func TestRegressorRejectsNaN(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, math.NaN(), 4})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})

	err := NewRegressor(TrainingParams{Trees: 5}).Fit(X, y)
	assert.Error(t, err, "unimputed NaN must fail the fit")
}

func TestRegressorDimensionChecks(t *testing.T) {
	X, y := makeLinearData(20)

	reg := NewRegressor(TrainingParams{Trees: 5, MaxDepth: 2, Seed: 1})
	require.NoError(t, reg.Fit(X, y))

	_, err := reg.Predict(mat.NewDense(3, 5, nil))
	assert.Error(t, err, "feature count mismatch at predict")

	err = NewRegressor(TrainingParams{Trees: 5}).Fit(X, mat.NewDense(19, 1, nil))
	assert.Error(t, err, "row count mismatch at fit")
}

func TestRegressorParamValidation(t *testing.T) {
	X, y := makeLinearData(20)

	bad := []TrainingParams{
		{Trees: 10, LearningRate: -0.1},
		{Trees: 10, BaggingFraction: 1.5},
		{Trees: 10, Lambda: -1},
		{Trees: 10, Alpha: -1},
	}
	for _, params := range bad {
		err := NewRegressor(params).Fit(X, y)
		assert.Error(t, err, "params %+v must be rejected", params)
	}
}

func TestStrongRegularizationShrinksModel(t *testing.T) {
	X, y := makeLinearData(80)

	loose := NewRegressor(TrainingParams{Trees: 40, LearningRate: 0.1, MaxDepth: 5, Seed: 3})
	require.NoError(t, loose.Fit(X, y))

	tight := NewRegressor(TrainingParams{
		Trees: 40, LearningRate: 0.1, MaxDepth: 5, Seed: 3,
		Lambda: 50, Alpha: 10, MinSplitGain: 5,
	})
	require.NoError(t, tight.Fit(X, y))

	assert.Less(t, tight.TotalLeaves(), loose.TotalLeaves(),
		"regularization should reduce tree capacity")
}

func TestSoftThreshold(t *testing.T) {
	assert.Equal(t, 0.0, softThreshold(0.5, 1.0))
	assert.Equal(t, 0.0, softThreshold(-0.5, 1.0))
	assert.Equal(t, 1.0, softThreshold(2.0, 1.0))
	assert.Equal(t, -1.0, softThreshold(-2.0, 1.0))
}

func TestBaggingAndFeatureSamplingBounds(t *testing.T) {
	x := make([][]float64, 10)
	yv := make([]float64, 10)
	for i := range x {
		x[i] = []float64{float64(i), float64(i * i), float64(i % 3)}
		yv[i] = float64(i)
	}
	tr := newTrainer(TrainingParams{
		BaggingFraction: 0.5,
		FeatureFraction: 0.4,
	}.withDefaults(), x, yv)
	tr.rng = rand.New(rand.NewPCG(1, 2))

	rows := tr.bagRows()
	assert.Len(t, rows, 5)
	features := tr.sampleFeatures()
	assert.Len(t, features, 2) // ceil(0.4*3)
}
