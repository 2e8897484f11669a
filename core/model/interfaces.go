package model

import "gonum.org/v1/gonum/mat"

// Regressor is the fit/predict contract implemented by model types.
type Regressor interface {
	Fit(X, y mat.Matrix) error
	Predict(X mat.Matrix) (mat.Matrix, error)
	IsFitted() bool
}

// Transformer is the fit/transform contract implemented by preprocessing
// types. Fit estimates parameters from the given data only; Transform must
// never re-estimate them.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	IsFitted() bool
}
