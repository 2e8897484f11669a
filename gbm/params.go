// Package gbm implements a small pure-Go gradient-boosted regression tree
// ensemble. Splits are found by exact greedy search rather than histograms:
// the datasets this search targets have tens of rows, where binning buys
// nothing and exactness helps reproducibility.
package gbm

import (
	"github.com/modelsel/gbsearch/pkg/errors"
)

// TrainingParams contains all training hyperparameters.
type TrainingParams struct {
	// Boosting
	Trees        int     `json:"trees"`
	LearningRate float64 `json:"learning_rate"`

	// Tree shape
	MaxDepth      int `json:"max_depth"`        // <= 0 means unlimited
	MinDataInLeaf int `json:"min_data_in_leaf"` // minimum rows per leaf

	// Regularization
	Lambda         float64 `json:"lambda_l2"`
	Alpha          float64 `json:"alpha_l1"`
	MinSplitGain   float64 `json:"min_split_gain"`
	MinChildWeight float64 `json:"min_child_weight"` // minimum hessian sum per leaf

	// Sampling
	BaggingFraction float64 `json:"bagging_fraction"`
	FeatureFraction float64 `json:"feature_fraction"`

	// Seed drives row bagging and feature subsampling. The trainer owns no
	// other randomness.
	Seed uint64 `json:"seed"`
}

// withDefaults fills unset fields with defaults suited to very small tables.
func (p TrainingParams) withDefaults() TrainingParams {
	if p.Trees == 0 {
		p.Trees = 100
	}
	if p.LearningRate == 0 {
		p.LearningRate = 0.1
	}
	if p.MinDataInLeaf == 0 {
		p.MinDataInLeaf = 2
	}
	if p.BaggingFraction == 0 {
		p.BaggingFraction = 1.0
	}
	if p.FeatureFraction == 0 {
		p.FeatureFraction = 1.0
	}
	return p
}

func (p TrainingParams) validate() error {
	if p.Trees < 1 {
		return errors.NewValidationError("trees", "must be >= 1", p.Trees)
	}
	if p.LearningRate <= 0 || p.LearningRate > 1 {
		return errors.NewValidationError("learning_rate", "must be in (0, 1]", p.LearningRate)
	}
	if p.BaggingFraction <= 0 || p.BaggingFraction > 1 {
		return errors.NewValidationError("bagging_fraction", "must be in (0, 1]", p.BaggingFraction)
	}
	if p.FeatureFraction <= 0 || p.FeatureFraction > 1 {
		return errors.NewValidationError("feature_fraction", "must be in (0, 1]", p.FeatureFraction)
	}
	if p.Lambda < 0 {
		return errors.NewValidationError("lambda_l2", "must be >= 0", p.Lambda)
	}
	if p.Alpha < 0 {
		return errors.NewValidationError("alpha_l1", "must be >= 0", p.Alpha)
	}
	if p.MinSplitGain < 0 {
		return errors.NewValidationError("min_split_gain", "must be >= 0", p.MinSplitGain)
	}
	if p.MinChildWeight < 0 {
		return errors.NewValidationError("min_child_weight", "must be >= 0", p.MinChildWeight)
	}
	return nil
}
