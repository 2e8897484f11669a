// Package dataset holds the tidy feature table consumed by the search. The
// table is loaded once, owned by the caller, and shared read-only across all
// workers; missing values are represented as NaN.
package dataset

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelsel/gbsearch/pkg/errors"
)

// Dataset is a fixed feature matrix with a paired continuous target. It must
// not be mutated after construction; workers receive it read-only.
type Dataset struct {
	x            *mat.Dense
	y            *mat.VecDense
	featureNames []string
	targetName   string
}

// New constructs a Dataset from a feature matrix and target vector.
func New(x *mat.Dense, y *mat.VecDense, featureNames []string, targetName string) (*Dataset, error) {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("dataset.New", "empty data", errors.ErrEmptyData)
	}
	if y.Len() != rows {
		return nil, errors.NewDimensionError("dataset.New", rows, y.Len(), 0)
	}
	if featureNames != nil && len(featureNames) != cols {
		return nil, errors.NewDimensionError("dataset.New", cols, len(featureNames), 1)
	}
	for i := 0; i < rows; i++ {
		if math.IsNaN(y.AtVec(i)) {
			return nil, errors.NewValueError("dataset.New", "target contains missing values")
		}
	}
	return &Dataset{x: x, y: y, featureNames: featureNames, targetName: targetName}, nil
}

// NumRows returns the number of subjects.
func (d *Dataset) NumRows() int {
	r, _ := d.x.Dims()
	return r
}

// NumFeatures returns the number of predictors.
func (d *Dataset) NumFeatures() int {
	_, c := d.x.Dims()
	return c
}

// X returns the feature matrix. Callers must treat it as read-only.
func (d *Dataset) X() mat.Matrix {
	return d.x
}

// Y returns the target vector. Callers must treat it as read-only.
func (d *Dataset) Y() *mat.VecDense {
	return d.y
}

// FeatureNames returns the predictor column names, or nil if unnamed.
func (d *Dataset) FeatureNames() []string {
	return d.featureNames
}

// TargetName returns the target column name.
func (d *Dataset) TargetName() string {
	return d.targetName
}

// SubsetX copies the given rows of the feature matrix into a new matrix.
func (d *Dataset) SubsetX(rows []int) *mat.Dense {
	_, cols := d.x.Dims()
	out := mat.NewDense(len(rows), cols, nil)
	for i, r := range rows {
		for j := 0; j < cols; j++ {
			out.Set(i, j, d.x.At(r, j))
		}
	}
	return out
}

// SubsetY copies the given rows of the target into a new vector.
func (d *Dataset) SubsetY(rows []int) *mat.VecDense {
	out := mat.NewVecDense(len(rows), nil)
	for i, r := range rows {
		out.SetVec(i, d.y.AtVec(r))
	}
	return out
}

// MissingCount returns the number of NaN cells in the feature matrix.
func (d *Dataset) MissingCount() int {
	rows, cols := d.x.Dims()
	count := 0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.IsNaN(d.x.At(i, j)) {
				count++
			}
		}
	}
	return count
}
