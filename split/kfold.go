package split

import (
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Fold is one train/validation split of the inner cross-validation.
type Fold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold is a plain k-fold splitter over n rows.
type KFold struct {
	NSplits int
	Shuffle bool
}

// NewKFold creates a k-fold splitter. Fewer than 2 splits falls back to 5.
func NewKFold(nSplits int, shuffle bool) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle}
}

// Split generates train/validation indices for each fold over n rows.
func (kf *KFold) Split(n int, rng *rand.Rand) []Fold {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle && rng != nil {
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}
	return foldsFromOrder(indices, kf.NSplits)
}

// StratifiedKFold deals target-sorted rows round-robin into folds so every
// fold spans the target's range. This is the regression analogue of
// class-stratified k-fold and is what the inner loop uses.
type StratifiedKFold struct {
	NSplits int
}

// NewStratifiedKFold creates a stratified splitter. Fewer than 2 splits falls
// back to 5.
func NewStratifiedKFold(nSplits int) *StratifiedKFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &StratifiedKFold{NSplits: nSplits}
}

// Split generates folds over the rows behind y. Ties and fold membership are
// randomized only within narrow target windows, so each fold keeps a similar
// target distribution.
func (skf *StratifiedKFold) Split(y *mat.VecDense, rng *rand.Rand) []Fold {
	n := y.Len()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		return y.AtVec(indices[a]) < y.AtVec(indices[b])
	})

	// Shuffle inside windows of k consecutive sorted rows, then deal
	// round-robin: fold f takes every k-th row starting at f.
	k := skf.NSplits
	if rng != nil {
		for start := 0; start < n; start += k {
			end := start + k
			if end > n {
				end = n
			}
			window := indices[start:end]
			rng.Shuffle(len(window), func(i, j int) {
				window[i], window[j] = window[j], window[i]
			})
		}
	}

	folds := make([]Fold, k)
	for pos, idx := range indices {
		f := pos % k
		folds[f].TestIndices = append(folds[f].TestIndices, idx)
	}
	for f := range folds {
		testSet := make(map[int]bool, len(folds[f].TestIndices))
		for _, idx := range folds[f].TestIndices {
			testSet[idx] = true
		}
		for i := 0; i < n; i++ {
			if !testSet[i] {
				folds[f].TrainIndices = append(folds[f].TrainIndices, i)
			}
		}
		sort.Ints(folds[f].TestIndices)
		sort.Ints(folds[f].TrainIndices)
	}
	return folds
}

// foldsFromOrder cuts an index order into k contiguous validation blocks.
func foldsFromOrder(indices []int, k int) []Fold {
	n := len(indices)
	folds := make([]Fold, k)
	foldSize := n / k
	remainder := n % k

	current := 0
	for f := 0; f < k; f++ {
		size := foldSize
		if f < remainder {
			size++
		}
		testIndices := make([]int, size)
		copy(testIndices, indices[current:current+size])

		testSet := make(map[int]bool, size)
		for _, idx := range testIndices {
			testSet[idx] = true
		}
		trainIndices := make([]int, 0, n-size)
		for _, idx := range indices {
			if !testSet[idx] {
				trainIndices = append(trainIndices, idx)
			}
		}

		sort.Ints(testIndices)
		sort.Ints(trainIndices)
		folds[f] = Fold{TrainIndices: trainIndices, TestIndices: testIndices}
		current += size
	}
	return folds
}
