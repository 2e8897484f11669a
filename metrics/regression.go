// Package metrics implements the regression metrics used for model scoring.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/modelsel/gbsearch/pkg/errors"
)

// MSE computes the mean squared error between two vectors.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}

	return sum / float64(n), nil
}

// RMSE computes the root mean squared error between two vectors.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error between two vectors.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MAE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}

	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination R² = 1 - RSS/TSS, with the
// total sum of squares taken against the mean of yTrue.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	return R2Baseline(yTrue, yPred, yMean)
}

// R2Baseline computes R² with the total sum of squares taken against an
// externally supplied baseline mean instead of the mean of yTrue.
//
// The evaluator scores held-out test rows against the TRAINING partition's
// mean. That keeps the denominator in the same regression frame the model was
// fit in, so train and test R² stay directly comparable. Substituting the test
// partition's own mean here would look like a fix but would change the
// quantity being reported.
func R2Baseline(yTrue, yPred *mat.VecDense, baselineMean float64) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("R2Baseline", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("R2Baseline", n, yPred.Len(), 0)
	}

	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)

		tss += (yTrueVal - baselineMean) * (yTrueVal - baselineMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	if tss == 0 {
		return 0, errors.Newf("R2Baseline: total sum of squares is zero (no variance around baseline)")
	}

	return 1 - rss/tss, nil
}
