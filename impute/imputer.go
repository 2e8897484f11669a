// Package impute fills missing feature values. The imputer is always fit on
// the training partition only and then applied to both partitions, so no test
// row ever influences the imputation parameters.
package impute

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/modelsel/gbsearch/core/model"
	"github.com/modelsel/gbsearch/pkg/errors"
)

// MeanImputer replaces NaN cells with the per-column mean of the rows it was
// fitted on.
type MeanImputer struct {
	model.BaseEstimator

	// Means holds the fitted per-column statistics.
	Means []float64

	// NFeatures is the number of columns seen at fit time.
	NFeatures int
}

var _ model.Transformer = (*MeanImputer)(nil)

// NewMeanImputer creates an unfitted MeanImputer.
func NewMeanImputer() *MeanImputer {
	return &MeanImputer{}
}

// Fit estimates the per-column means from X, ignoring NaN cells. A column with
// no observed values cannot be imputed and fails the fit.
func (m *MeanImputer) Fit(X mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("MeanImputer.Fit", "empty data", errors.ErrEmptyData)
	}

	m.NFeatures = cols
	m.Means = make([]float64, cols)

	for j := 0; j < cols; j++ {
		sum := 0.0
		count := 0
		for i := 0; i < rows; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			return errors.NewValueError("MeanImputer.Fit",
				"column "+strconv.Itoa(j)+" has no observed values in the training partition")
		}
		m.Means[j] = sum / float64(count)
	}

	m.SetFitted()
	return nil
}

// Transform returns a copy of X with every NaN replaced by the fitted column
// mean. It never re-estimates statistics.
func (m *MeanImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("MeanImputer", "Transform")
	}

	rows, cols := X.Dims()
	if cols != m.NFeatures {
		return nil, errors.NewDimensionError("MeanImputer.Transform", m.NFeatures, cols, 1)
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = m.Means[j]
			}
			out.Set(i, j, v)
		}
	}
	return out, nil
}

// FitTransform fits on X and returns the transformed copy.
func (m *MeanImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}
