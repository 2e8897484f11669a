package gbm

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelsel/gbsearch/pkg/errors"
)

// trainer holds the transient state of one boosting run. It lives only for
// the duration of Fit and owns no shared state.
type trainer struct {
	params TrainingParams

	x [][]float64 // row-major copy of the feature matrix
	y []float64

	gradients   []float64
	hessians    []float64
	predictions []float64 // current ensemble output per row

	rng   *rand.Rand
	trees []tree

	initScore float64
}

func newTrainer(params TrainingParams, x [][]float64, y []float64) *trainer {
	return &trainer{
		params: params,
		x:      x,
		y:      y,
		rng:    rand.New(rand.NewPCG(params.Seed, params.Seed^0x9e3779b97f4a7c15)),
	}
}

// run executes the boosting loop and returns the fitted trees.
func (t *trainer) run() error {
	n := len(t.y)

	// Squared-error init score is the target mean.
	sum := 0.0
	for _, v := range t.y {
		sum += v
	}
	t.initScore = sum / float64(n)

	t.gradients = make([]float64, n)
	t.hessians = make([]float64, n)
	t.predictions = make([]float64, n)
	for i := range t.predictions {
		t.predictions[i] = t.initScore
	}

	for iter := 0; iter < t.params.Trees; iter++ {
		t.calculateGradients()

		rootIndices := t.bagRows()
		features := t.sampleFeatures()

		tr := tree{}
		t.buildNode(&tr, rootIndices, features, 0)
		t.trees = append(t.trees, tr)

		// Update cached predictions over all rows, not just bagged ones.
		for i := range t.predictions {
			v := tr.predictRow(t.x[i])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewNumericalInstabilityError("gbm.buildTree", []float64{v}, iter)
			}
			t.predictions[i] += v
		}
	}
	return nil
}

// calculateGradients computes squared-loss gradients and hessians for the
// current predictions.
func (t *trainer) calculateGradients() {
	for i := range t.y {
		t.gradients[i] = t.predictions[i] - t.y[i]
		t.hessians[i] = 1.0
	}
}

// bagRows samples rows without replacement at the bagging fraction.
func (t *trainer) bagRows() []int {
	n := len(t.y)
	if t.params.BaggingFraction >= 1.0 {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}

	k := int(math.Ceil(t.params.BaggingFraction * float64(n)))
	if k < 2 {
		k = 2
	}
	perm := t.rng.Perm(n)
	indices := perm[:k]
	sort.Ints(indices)
	return indices
}

// sampleFeatures selects the column subset considered for splits this tree.
func (t *trainer) sampleFeatures() []int {
	cols := len(t.x[0])
	if t.params.FeatureFraction >= 1.0 {
		features := make([]int, cols)
		for j := range features {
			features[j] = j
		}
		return features
	}

	k := int(math.Ceil(t.params.FeatureFraction * float64(cols)))
	if k < 1 {
		k = 1
	}
	perm := t.rng.Perm(cols)
	features := perm[:k]
	sort.Ints(features)
	return features
}

// buildNode grows the tree recursively and returns the new node's index.
func (t *trainer) buildNode(tr *tree, indices, features []int, depth int) int {
	nodeIdx := len(tr.Nodes)

	if (t.params.MaxDepth > 0 && depth >= t.params.MaxDepth) ||
		len(indices) < 2*t.params.MinDataInLeaf {
		tr.Nodes = append(tr.Nodes, t.makeLeaf(indices))
		return nodeIdx
	}

	bestSplit := t.findBestSplit(indices, features)
	if bestSplit.Gain <= 0 || bestSplit.Gain < t.params.MinSplitGain {
		tr.Nodes = append(tr.Nodes, t.makeLeaf(indices))
		return nodeIdx
	}

	tr.Nodes = append(tr.Nodes, node{
		SplitFeature: bestSplit.Feature,
		Threshold:    bestSplit.Threshold,
		Gain:         bestSplit.Gain,
	})

	var leftIndices, rightIndices []int
	for _, idx := range indices {
		if t.x[idx][bestSplit.Feature] <= bestSplit.Threshold {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}

	leftChild := t.buildNode(tr, leftIndices, features, depth+1)
	rightChild := t.buildNode(tr, rightIndices, features, depth+1)
	tr.Nodes[nodeIdx].LeftChild = leftChild
	tr.Nodes[nodeIdx].RightChild = rightChild

	return nodeIdx
}

func (t *trainer) makeLeaf(indices []int) node {
	return node{
		IsLeaf:    true,
		LeafValue: t.params.LearningRate * t.leafOutput(indices),
	}
}

// leafOutput is the regularized optimal leaf value
// -T(G, alpha) / (H + lambda), where T is the L1 soft-threshold.
func (t *trainer) leafOutput(indices []int) float64 {
	sumGrad := 0.0
	sumHess := 0.0
	for _, idx := range indices {
		sumGrad += t.gradients[idx]
		sumHess += t.hessians[idx]
	}

	epsilon := 1e-10
	if sumHess < epsilon {
		sumHess = epsilon
	}
	return -softThreshold(sumGrad, t.params.Alpha) / (sumHess + t.params.Lambda + epsilon)
}

// splitInfo describes a candidate split.
type splitInfo struct {
	Feature    int
	Threshold  float64
	Gain       float64
	LeftCount  int
	RightCount int
}

// findBestSplit scans the sampled features for the highest-gain split.
func (t *trainer) findBestSplit(indices, features []int) splitInfo {
	bestSplit := splitInfo{Gain: -math.MaxFloat64}
	for _, j := range features {
		split := t.findBestSplitForFeature(indices, j)
		if split.Gain > bestSplit.Gain {
			bestSplit = split
		}
	}
	return bestSplit
}

// findBestSplitForFeature tries every distinct threshold of one feature.
func (t *trainer) findBestSplitForFeature(indices []int, feature int) splitInfo {
	type valueIdx struct {
		value float64
		idx   int
	}
	values := make([]valueIdx, len(indices))
	for i, idx := range indices {
		values[i] = valueIdx{value: t.x[idx][feature], idx: idx}
	}
	sort.Slice(values, func(i, j int) bool {
		return values[i].value < values[j].value
	})

	totalGrad := 0.0
	totalHess := 0.0
	for _, idx := range indices {
		totalGrad += t.gradients[idx]
		totalHess += t.hessians[idx]
	}

	bestSplit := splitInfo{Feature: feature, Gain: -math.MaxFloat64}

	leftGrad := 0.0
	leftHess := 0.0
	leftCount := 0
	for i := 0; i < len(values)-1; i++ {
		idx := values[i].idx
		leftGrad += t.gradients[idx]
		leftHess += t.hessians[idx]
		leftCount++

		if values[i].value == values[i+1].value {
			continue
		}

		rightGrad := totalGrad - leftGrad
		rightHess := totalHess - leftHess
		rightCount := len(indices) - leftCount

		if leftCount < t.params.MinDataInLeaf || rightCount < t.params.MinDataInLeaf {
			continue
		}
		if leftHess < t.params.MinChildWeight || rightHess < t.params.MinChildWeight {
			continue
		}

		gain := t.splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess)
		if gain > bestSplit.Gain {
			bestSplit.Gain = gain
			bestSplit.Threshold = (values[i].value + values[i+1].value) / 2
			bestSplit.LeftCount = leftCount
			bestSplit.RightCount = rightCount
		}
	}

	return bestSplit
}

// splitGain is the regularized gain
// 0.5 * (T(GL)²/(HL+λ) + T(GR)²/(HR+λ) - T(G)²/(H+λ)).
func (t *trainer) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := t.params.Lambda
	alpha := t.params.Alpha

	leftScore := score(leftGrad, leftHess, lambda, alpha)
	rightScore := score(rightGrad, rightHess, lambda, alpha)
	totalScore := score(totalGrad, totalHess, lambda, alpha)

	return 0.5 * (leftScore + rightScore - totalScore)
}

func score(grad, hess, lambda, alpha float64) float64 {
	g := softThreshold(grad, alpha)
	return (g * g) / (hess + lambda)
}

// softThreshold shrinks the gradient sum toward zero by alpha.
func softThreshold(g, alpha float64) float64 {
	if g > alpha {
		return g - alpha
	}
	if g < -alpha {
		return g + alpha
	}
	return 0
}

// toRows copies a gonum matrix into row-major slices.
func toRows(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			out[i][j] = X.At(i, j)
		}
	}
	return out
}
