// Package rank turns the aggregated results table into a composite ranking
// and a robust-choice shortlist. All raw signals are standardized across
// configurations before weighting, so the composite score does not depend on
// the original units of RMSE versus R².
package rank

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/modelsel/gbsearch/evaluate"
	"github.com/modelsel/gbsearch/pkg/errors"
)

// Weights combine the four standardized sub-scores into the composite score.
// They must be non-negative and sum to one.
type Weights struct {
	Performance    float64 `yaml:"performance"`
	Stability      float64 `yaml:"stability"`
	Robustness     float64 `yaml:"robustness"`
	OverfitPenalty float64 `yaml:"overfit_penalty"`
}

// DefaultWeights returns the reference weighting. The exact numbers are not
// load-bearing beyond performance and the overfitting penalty dominating.
func DefaultWeights() Weights {
	return Weights{
		Performance:    0.35,
		Stability:      0.25,
		Robustness:     0.15,
		OverfitPenalty: 0.25,
	}
}

// Validate checks the weights.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Performance, w.Stability, w.Robustness, w.OverfitPenalty} {
		if v < 0 {
			return errors.NewValidationError("weights", "must be non-negative", v)
		}
	}
	sum := w.Performance + w.Stability + w.Robustness + w.OverfitPenalty
	if math.Abs(sum-1) > 1e-9 {
		return errors.NewValidationError("weights", "must sum to 1", sum)
	}
	return nil
}

// Options configure the ranking.
type Options struct {
	Weights Weights `yaml:"weights"`
	// TopK is the size of each selection view.
	TopK int `yaml:"top_k"`
}

// WithDefaults fills unset options.
func (o Options) WithDefaults() Options {
	zero := Weights{}
	if o.Weights == zero {
		o.Weights = DefaultWeights()
	}
	if o.TopK == 0 {
		o.TopK = 20
	}
	return o
}

// ViewMask records which top-k views a configuration appears in.
type ViewMask uint8

// The four selection views.
const (
	ViewComposite ViewMask = 1 << iota
	ViewBestR2
	ViewMostStable
	ViewLeastOverfitting
)

// Has reports membership in a view.
func (m ViewMask) Has(v ViewMask) bool { return m&v != 0 }

// Count returns the number of views the configuration appears in.
func (m ViewMask) Count() int {
	count := 0
	for v := ViewComposite; v <= ViewLeastOverfitting; v <<= 1 {
		if m.Has(v) {
			count++
		}
	}
	return count
}

// Strategy names for the recommended-configuration record.
const (
	StrategyBestOverall      = "best_overall"
	StrategyMostStable       = "most_stable"
	StrategyBestR2           = "best_r2"
	StrategyLeastOverfitting = "least_overfitting"
	StrategyRobustChoice     = "robust_choice"
)

// ScoredResult is an AggregatedResult extended with standardized sub-scores,
// the composite score, and view membership.
type ScoredResult struct {
	evaluate.AggregatedResult `yaml:",inline"`

	PerformanceScore    float64 `csv:"performance_score"`
	StabilityScore      float64 `csv:"stability_score"`
	RobustnessScore     float64 `csv:"robustness_score"`
	OverfitPenaltyScore float64 `csv:"overfit_penalty_score"`
	CompositeScore      float64 `csv:"composite_score"`

	Views     ViewMask `csv:"-"`
	ViewCount int      `csv:"view_count"`
}

// Ranking is the full output of the selection stage.
type Ranking struct {
	// Table holds every configuration sorted by composite score, descending.
	Table []ScoredResult

	// The four top-k views.
	TopComposite     []ScoredResult
	TopTestR2        []ScoredResult
	MostStable       []ScoredResult
	LeastOverfitting []ScoredResult

	// RobustChoices are configurations present in at least two views, ranked
	// by composite score.
	RobustChoices []ScoredResult

	// Recommended maps strategy names to the single configuration each
	// strategy selects.
	Recommended map[string]ScoredResult
}

// Rank scores, sorts, and selects. It needs at least two surviving
// configurations; standardization is undefined below that and an empty or
// single-row ranking would be misleading.
func Rank(results []evaluate.AggregatedResult, opts Options) (*Ranking, error) {
	opts = opts.WithDefaults()
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.TopK < 1 {
		return nil, errors.NewValidationError("top_k", "must be >= 1", opts.TopK)
	}
	if len(results) < 2 {
		return nil, errors.Wrapf(errors.ErrInsufficientResults,
			"have %d configurations, need at least 2", len(results))
	}

	scored := score(results, opts.Weights)

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].CompositeScore != scored[j].CompositeScore {
			return scored[i].CompositeScore > scored[j].CompositeScore
		}
		return scored[i].ID < scored[j].ID
	})

	r := &Ranking{Table: scored}

	r.TopComposite = topK(scored, opts.TopK, func(a, b *ScoredResult) bool {
		return a.CompositeScore > b.CompositeScore
	})
	r.TopTestR2 = topK(scored, opts.TopK, func(a, b *ScoredResult) bool {
		return a.MeanTestR2 > b.MeanTestR2
	})
	r.MostStable = topK(scored, opts.TopK, func(a, b *ScoredResult) bool {
		return a.StdTestR2 < b.StdTestR2
	})
	r.LeastOverfitting = topK(scored, opts.TopK, func(a, b *ScoredResult) bool {
		return a.MeanGap < b.MeanGap
	})

	// Tag view membership on the master table, then collect robust choices.
	membership := make(map[int]ViewMask, len(scored))
	tag := func(view []ScoredResult, bit ViewMask) {
		for i := range view {
			membership[view[i].ID] |= bit
		}
	}
	tag(r.TopComposite, ViewComposite)
	tag(r.TopTestR2, ViewBestR2)
	tag(r.MostStable, ViewMostStable)
	tag(r.LeastOverfitting, ViewLeastOverfitting)

	applyMask := func(view []ScoredResult) {
		for i := range view {
			view[i].Views = membership[view[i].ID]
			view[i].ViewCount = view[i].Views.Count()
		}
	}
	applyMask(r.Table)
	applyMask(r.TopComposite)
	applyMask(r.TopTestR2)
	applyMask(r.MostStable)
	applyMask(r.LeastOverfitting)

	for _, row := range r.Table {
		if row.Views.Count() >= 2 {
			r.RobustChoices = append(r.RobustChoices, row)
		}
	}

	r.Recommended = map[string]ScoredResult{
		StrategyBestOverall:      r.Table[0],
		StrategyBestR2:           r.TopTestR2[0],
		StrategyMostStable:       r.MostStable[0],
		StrategyLeastOverfitting: r.LeastOverfitting[0],
	}
	if len(r.RobustChoices) > 0 {
		r.Recommended[StrategyRobustChoice] = r.RobustChoices[0]
	}

	return r, nil
}

// score standardizes the raw signals and computes the sub-scores and the
// weighted composite.
func score(results []evaluate.AggregatedResult, w Weights) []ScoredResult {
	zTestR2 := zscores(results, func(r *evaluate.AggregatedResult) float64 { return r.MeanTestR2 })
	zTestRMSE := zscores(results, func(r *evaluate.AggregatedResult) float64 { return r.MeanTestRMSE })
	zStdInner := zscores(results, func(r *evaluate.AggregatedResult) float64 { return r.StdInnerCV })
	zStdTestRMSE := zscores(results, func(r *evaluate.AggregatedResult) float64 { return r.StdTestRMSE })
	zStdTestR2 := zscores(results, func(r *evaluate.AggregatedResult) float64 { return r.StdTestR2 })
	zIQR := zscores(results, func(r *evaluate.AggregatedResult) float64 { return r.IQRTestR2 })
	zGap := zscores(results, func(r *evaluate.AggregatedResult) float64 { return r.MeanGap })

	scored := make([]ScoredResult, len(results))
	for i := range results {
		perf := (zTestR2[i] - zTestRMSE[i]) / 2
		stab := -(zStdInner[i] + zStdTestRMSE[i] + zStdTestR2[i]) / 3
		robust := -zIQR[i]
		overfit := -zGap[i]

		scored[i] = ScoredResult{
			AggregatedResult:    results[i],
			PerformanceScore:    perf,
			StabilityScore:      stab,
			RobustnessScore:     robust,
			OverfitPenaltyScore: overfit,
			CompositeScore: w.Performance*perf +
				w.Stability*stab +
				w.Robustness*robust +
				w.OverfitPenalty*overfit,
		}
	}
	return scored
}

// zscores standardizes one signal to zero mean and unit variance. A signal
// with no spread standardizes to all zeros.
func zscores(results []evaluate.AggregatedResult, get func(*evaluate.AggregatedResult) float64) []float64 {
	values := make([]float64, len(results))
	for i := range results {
		values[i] = get(&results[i])
	}
	mean, sd := stat.MeanStdDev(values, nil)
	out := make([]float64, len(values))
	if sd == 0 || math.IsNaN(sd) {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / sd
	}
	return out
}

// topK selects the k best rows under less, ties broken by configuration ID.
func topK(rows []ScoredResult, k int, better func(a, b *ScoredResult) bool) []ScoredResult {
	sorted := make([]ScoredResult, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if better(&sorted[i], &sorted[j]) {
			return true
		}
		if better(&sorted[j], &sorted[i]) {
			return false
		}
		return sorted[i].ID < sorted[j].ID
	})
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}
