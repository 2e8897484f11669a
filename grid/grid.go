// Package grid enumerates the hyperparameter search space. A Space is the
// Cartesian product of per-dimension value sets; each point becomes an
// immutable Configuration with a stable integer ID assigned in first-seen
// order, so a configuration is traceable across the whole search.
package grid

import (
	"github.com/modelsel/gbsearch/pkg/errors"
)

// Configuration is one hyperparameter setting for the boosted tree ensemble.
// It is created once by the generator and never mutated.
type Configuration struct {
	ID int `csv:"config_id" yaml:"config_id"`

	Trees           int     `csv:"trees" yaml:"trees"`                       // number of boosting iterations
	MaxDepth        int     `csv:"max_depth" yaml:"max_depth"`               // maximum tree depth, -1 for unlimited
	LearningRate    float64 `csv:"learning_rate" yaml:"learning_rate"`       // shrinkage rate
	MinSplitGain    float64 `csv:"min_split_gain" yaml:"min_split_gain"`     // minimum gain to split a node
	FeatureFraction float64 `csv:"feature_fraction" yaml:"feature_fraction"` // column subsample per tree
	MinChildWeight  float64 `csv:"min_child_weight" yaml:"min_child_weight"` // minimum hessian sum in a leaf
	BaggingFraction float64 `csv:"bagging_fraction" yaml:"bagging_fraction"` // row subsample per tree
	Lambda          float64 `csv:"lambda_l2" yaml:"lambda_l2"`               // L2 regularization
	Alpha           float64 `csv:"alpha_l1" yaml:"alpha_l1"`                 // L1 regularization
}

// Axes holds the candidate value set for every hyperparameter dimension.
type Axes struct {
	Trees           []int     `yaml:"trees"`
	MaxDepth        []int     `yaml:"max_depth"`
	LearningRate    []float64 `yaml:"learning_rate"`
	MinSplitGain    []float64 `yaml:"min_split_gain"`
	FeatureFraction []float64 `yaml:"feature_fraction"`
	MinChildWeight  []float64 `yaml:"min_child_weight"`
	BaggingFraction []float64 `yaml:"bagging_fraction"`
	Lambda          []float64 `yaml:"lambda_l2"`
	Alpha           []float64 `yaml:"alpha_l1"`
}

// DefaultAxes returns a grid oriented at very small, high-dimensional tables:
// few trees, shallow depth, and strong regularization candidates.
func DefaultAxes() Axes {
	return Axes{
		Trees:           []int{25, 50, 100, 200},
		MaxDepth:        []int{2, 3, 4},
		LearningRate:    []float64{0.01, 0.05, 0.1},
		MinSplitGain:    []float64{0, 0.1},
		FeatureFraction: []float64{0.3, 0.6, 0.9},
		MinChildWeight:  []float64{1, 5},
		BaggingFraction: []float64{0.6, 0.8, 1.0},
		Lambda:          []float64{0, 1, 5},
		Alpha:           []float64{0, 1},
	}
}

// Size returns the number of configurations the axes generate.
func (a Axes) Size() int {
	return len(a.Trees) * len(a.MaxDepth) * len(a.LearningRate) *
		len(a.MinSplitGain) * len(a.FeatureFraction) * len(a.MinChildWeight) *
		len(a.BaggingFraction) * len(a.Lambda) * len(a.Alpha)
}

func (a Axes) validate() error {
	dims := []struct {
		name string
		n    int
	}{
		{"trees", len(a.Trees)},
		{"max_depth", len(a.MaxDepth)},
		{"learning_rate", len(a.LearningRate)},
		{"min_split_gain", len(a.MinSplitGain)},
		{"feature_fraction", len(a.FeatureFraction)},
		{"min_child_weight", len(a.MinChildWeight)},
		{"bagging_fraction", len(a.BaggingFraction)},
		{"lambda_l2", len(a.Lambda)},
		{"alpha_l1", len(a.Alpha)},
	}
	for _, d := range dims {
		if d.n == 0 {
			return errors.Wrapf(errors.ErrEmptySearchSpace, "dimension '%s' has no values", d.name)
		}
	}
	return nil
}

// Configurations expands the Cartesian product of the axes. IDs follow
// first-seen order with the last dimension varying fastest, so the same axes
// always produce the same IDs. Fails only on an empty dimension.
func Configurations(a Axes) ([]Configuration, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	configs := make([]Configuration, 0, a.Size())
	id := 0
	for _, trees := range a.Trees {
		for _, depth := range a.MaxDepth {
			for _, lr := range a.LearningRate {
				for _, gain := range a.MinSplitGain {
					for _, ff := range a.FeatureFraction {
						for _, mcw := range a.MinChildWeight {
							for _, bf := range a.BaggingFraction {
								for _, lambda := range a.Lambda {
									for _, alpha := range a.Alpha {
										configs = append(configs, Configuration{
											ID:              id,
											Trees:           trees,
											MaxDepth:        depth,
											LearningRate:    lr,
											MinSplitGain:    gain,
											FeatureFraction: ff,
											MinChildWeight:  mcw,
											BaggingFraction: bf,
											Lambda:          lambda,
											Alpha:           alpha,
										})
										id++
									}
								}
							}
						}
					}
				}
			}
		}
	}
	return configs, nil
}
