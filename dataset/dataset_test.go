package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNewValidation(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	_, err := New(x, mat.NewVecDense(3, []float64{1, 2, 3}), nil, "y")
	assert.Error(t, err, "row count mismatch must fail")

	_, err = New(x, mat.NewVecDense(2, []float64{1, math.NaN()}), nil, "y")
	assert.Error(t, err, "missing target must fail")

	_, err = New(x, mat.NewVecDense(2, []float64{1, 2}), []string{"a"}, "y")
	assert.Error(t, err, "feature name count mismatch must fail")
}

func TestSubset(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
	})
	y := mat.NewVecDense(3, []float64{10, 20, 30})
	ds, err := New(x, y, []string{"a", "b"}, "y")
	require.NoError(t, err)

	subX := ds.SubsetX([]int{2, 0})
	assert.Equal(t, 5.0, subX.At(0, 0))
	assert.Equal(t, 2.0, subX.At(1, 1))

	subY := ds.SubsetY([]int{2, 0})
	assert.Equal(t, 30.0, subY.AtVec(0))
	assert.Equal(t, 10.0, subY.AtVec(1))

	// Subset copies: mutating the copy must not touch the Dataset.
	subX.Set(0, 0, -1)
	assert.Equal(t, 5.0, ds.X().At(2, 0))
}

func TestReadCSV(t *testing.T) {
	in := "f1,f2,outcome\n1.5,NA,0.2\n2.0,3.0,0.4\n,1.0,0.6\n"

	ds, err := ReadCSV(strings.NewReader(in), "outcome")
	require.NoError(t, err)

	assert.Equal(t, 3, ds.NumRows())
	assert.Equal(t, 2, ds.NumFeatures())
	assert.Equal(t, []string{"f1", "f2"}, ds.FeatureNames())
	assert.Equal(t, "outcome", ds.TargetName())

	assert.True(t, math.IsNaN(ds.X().At(0, 1)))
	assert.True(t, math.IsNaN(ds.X().At(2, 0)))
	assert.Equal(t, 2, ds.MissingCount())
	assert.InDelta(t, 0.4, ds.Y().AtVec(1), 1e-12)
}

func TestReadCSVDefaultsToLastColumn(t *testing.T) {
	in := "f1,f2,outcome\n1.5,NA,0.2\n2.0,3.0,0.4\n,1.0,0.6\n"

	ds, err := ReadCSV(strings.NewReader(in), "")
	require.NoError(t, err)

	assert.Equal(t, "outcome", ds.TargetName())
	assert.Equal(t, []string{"f1", "f2"}, ds.FeatureNames())
	assert.InDelta(t, 0.6, ds.Y().AtVec(2), 1e-12)

	// The fallback must match an explicit target name exactly.
	explicit, err := ReadCSV(strings.NewReader(in), "outcome")
	require.NoError(t, err)
	assert.Equal(t, explicit.FeatureNames(), ds.FeatureNames())
	assert.True(t, mat.EqualApprox(explicit.Y(), ds.Y(), 0))
}

func TestReadCSVMissingTargetColumn(t *testing.T) {
	in := "f1,f2\n1,2\n"
	_, err := ReadCSV(strings.NewReader(in), "outcome")
	assert.Error(t, err)
}

func TestReadCSVMissingTargetValue(t *testing.T) {
	in := "f1,outcome\n1,NA\n"
	_, err := ReadCSV(strings.NewReader(in), "outcome")
	assert.Error(t, err)
}
