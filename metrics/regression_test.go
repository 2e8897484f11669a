package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMSEPerfectPrediction(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	mse, err := MSE(yTrue, yPred)
	require.NoError(t, err)
	assert.Equal(t, 0.0, mse)
}

func TestRMSE(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{0, 0, 0})
	yPred := mat.NewVecDense(3, []float64{3, 3, 3})

	rmse, err := RMSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, rmse, 1e-12)
}

func TestMSEDimensionMismatch(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(2, []float64{1, 2})

	_, err := MSE(yTrue, yPred)
	assert.Error(t, err)
}

func TestR2ScorePerfect(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	r2, err := R2Score(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-12)
}

func TestR2ScoreMeanPredictor(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5})

	r2, err := R2Score(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r2, 1e-12)
}

func TestR2ScoreZeroVariance(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{2, 2, 2})
	yPred := mat.NewVecDense(3, []float64{2, 2, 2})

	_, err := R2Score(yTrue, yPred)
	assert.Error(t, err)
}

func TestR2BaselineUsesSuppliedMean(t *testing.T) {
	yTrue := mat.NewVecDense(2, []float64{1, 3})
	yPred := mat.NewVecDense(2, []float64{1, 3})

	// Perfect prediction is R²=1 regardless of the baseline.
	r2, err := R2Baseline(yTrue, yPred, 10)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-12)

	// With a baseline far from the data, even a mediocre prediction scores
	// above the R² computed against the sample's own mean.
	yPred2 := mat.NewVecDense(2, []float64{2, 2})
	r2Own, err := R2Score(yTrue, yPred2)
	require.NoError(t, err)
	r2Base, err := R2Baseline(yTrue, yPred2, 10)
	require.NoError(t, err)
	assert.Less(t, r2Own, r2Base)
}

func TestR2BaselineFormula(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(3, []float64{1.5, 2, 2.5})
	baseline := 2.5

	var tss, rss float64
	for i := 0; i < 3; i++ {
		d := yTrue.AtVec(i) - baseline
		tss += d * d
		r := yTrue.AtVec(i) - yPred.AtVec(i)
		rss += r * r
	}
	want := 1 - rss/tss

	got, err := R2Baseline(yTrue, yPred, baseline)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(got))
	assert.InDelta(t, want, got, 1e-12)
}
