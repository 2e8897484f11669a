package gbm

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelsel/gbsearch/core/model"
	"github.com/modelsel/gbsearch/metrics"
	"github.com/modelsel/gbsearch/pkg/errors"
)

// Regressor is a gradient-boosted tree ensemble for squared-error regression.
type Regressor struct {
	model.BaseEstimator

	Params TrainingParams

	trees     []tree
	initScore float64
	nFeatures int
}

var _ model.Regressor = (*Regressor)(nil)

// NewRegressor creates an unfitted Regressor. Zero-valued fields of params are
// replaced with defaults at Fit time.
func NewRegressor(params TrainingParams) *Regressor {
	return &Regressor{Params: params}
}

// Fit trains the ensemble. Inputs must be fully observed (imputed upstream);
// NaN or Inf cells fail the fit. A panic inside the numerical code is
// recovered and surfaced as an error so callers can treat it as a failed fit.
func (r *Regressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "gbm.Regressor.Fit")

	params := r.Params.withDefaults()
	if err := params.validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows != yRows {
		return errors.NewDimensionError("gbm.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("gbm.Fit", 1, yCols, 1)
	}
	if rows == 0 || cols == 0 {
		return errors.NewModelError("gbm.Fit", "empty data", errors.ErrEmptyData)
	}

	xRowsData := toRows(X)
	targets := make([]float64, rows)
	for i := 0; i < rows; i++ {
		targets[i] = y.At(i, 0)
	}
	for i, row := range xRowsData {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewNumericalInstabilityError("gbm.Fit: feature matrix", []float64{v}, 0)
			}
		}
		if math.IsNaN(targets[i]) || math.IsInf(targets[i], 0) {
			return errors.NewNumericalInstabilityError("gbm.Fit: target", []float64{targets[i]}, 0)
		}
	}

	t := newTrainer(params, xRowsData, targets)
	if err := t.run(); err != nil {
		return err
	}

	r.trees = t.trees
	r.initScore = t.initScore
	r.nFeatures = cols
	r.SetFitted()
	return nil
}

// Predict returns model outputs for each row of X as an n×1 matrix.
func (r *Regressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("gbm.Regressor", "Predict")
	}

	rows, cols := X.Dims()
	if cols != r.nFeatures {
		return nil, errors.NewDimensionError("gbm.Predict", r.nFeatures, cols, 1)
	}

	out := mat.NewDense(rows, 1, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		pred := r.initScore
		for ti := range r.trees {
			pred += r.trees[ti].predictRow(row)
		}
		out.Set(i, 0, pred)
	}
	return out, nil
}

// PredictVec returns predictions as a vector.
func (r *Regressor) PredictVec(X mat.Matrix) (*mat.VecDense, error) {
	pred, err := r.Predict(X)
	if err != nil {
		return nil, err
	}
	rows, _ := pred.Dims()
	out := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		out.SetVec(i, pred.At(i, 0))
	}
	return out, nil
}

// Score returns the R² of the prediction against y.
func (r *Regressor) Score(X mat.Matrix, y *mat.VecDense) (float64, error) {
	pred, err := r.PredictVec(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(y, pred)
}

// NumTrees returns the number of fitted trees.
func (r *Regressor) NumTrees() int {
	return len(r.trees)
}

// TotalLeaves returns the leaf count across all trees, a rough capacity
// diagnostic.
func (r *Regressor) TotalLeaves() int {
	total := 0
	for i := range r.trees {
		total += r.trees[i].numLeaves()
	}
	return total
}
