package model

// EstimatorState tracks whether a model has been fitted.
type EstimatorState int

const (
	// NotFitted means Fit has not been called yet.
	NotFitted EstimatorState = iota
	// Fitted means the model holds trained state.
	Fitted
)

// BaseEstimator is embedded by every fit/predict or fit/transform type.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to its unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
