package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func linearTarget(n int) *mat.VecDense {
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		y.SetVec(i, float64(i))
	}
	return y
}

func TestDeriveSeedDeterministic(t *testing.T) {
	s1 := DeriveSeed(42, 7, 3)
	s2 := DeriveSeed(42, 7, 3)
	assert.Equal(t, s1, s2)
}

func TestDeriveSeedDistinguishesInputs(t *testing.T) {
	base := DeriveSeed(42, 7, 3)
	assert.NotEqual(t, base, DeriveSeed(42, 7, 4))
	assert.NotEqual(t, base, DeriveSeed(42, 8, 3))
	assert.NotEqual(t, base, DeriveSeed(43, 7, 3))
	// (configID, rep) must not collapse into configID+rep.
	assert.NotEqual(t, DeriveSeed(42, 1, 2), DeriveSeed(42, 2, 1))
}

func TestTrainTestSplitDisjointExhaustive(t *testing.T) {
	y := linearTarget(60)
	rng := NewRand(DeriveSeed(1, 0, 0))

	train, test, err := TrainTestSplit(y, 0.7, rng)
	require.NoError(t, err)

	seen := make(map[int]int)
	for _, i := range train {
		seen[i]++
	}
	for _, i := range test {
		seen[i]++
	}
	assert.Len(t, seen, 60, "every row appears")
	for i, count := range seen {
		assert.Equal(t, 1, count, "row %d appears exactly once", i)
	}
	assert.InDelta(t, 42, len(train), 3)
}

func TestTrainTestSplitReproducible(t *testing.T) {
	y := linearTarget(50)

	train1, test1, err := TrainTestSplit(y, 0.7, NewRand(DeriveSeed(9, 4, 2)))
	require.NoError(t, err)
	train2, test2, err := TrainTestSplit(y, 0.7, NewRand(DeriveSeed(9, 4, 2)))
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)
}

func TestTrainTestSplitSpansTargetRange(t *testing.T) {
	y := linearTarget(60)
	rng := NewRand(DeriveSeed(5, 1, 1))

	train, test, err := TrainTestSplit(y, 0.7, rng)
	require.NoError(t, err)

	// Stratification puts members of both partitions into every target
	// quintile band.
	for _, part := range [][]int{train, test} {
		bandHit := make([]bool, 5)
		for _, idx := range part {
			bandHit[idx/12] = true
		}
		for b, hit := range bandHit {
			assert.True(t, hit, "band %d represented", b)
		}
	}
}

func TestTrainTestSplitValidation(t *testing.T) {
	y := linearTarget(10)
	rng := NewRand(1)

	_, _, err := TrainTestSplit(y, 0.0, rng)
	assert.Error(t, err)
	_, _, err = TrainTestSplit(y, 1.0, rng)
	assert.Error(t, err)
	_, _, err = TrainTestSplit(linearTarget(3), 0.7, rng)
	assert.Error(t, err)
}

func TestKFoldPartition(t *testing.T) {
	kf := NewKFold(5, true)
	folds := kf.Split(23, NewRand(3))
	require.Len(t, folds, 5)

	counts := make(map[int]int)
	for _, f := range folds {
		for _, idx := range f.TestIndices {
			counts[idx]++
		}
		assert.Len(t, f.TrainIndices, 23-len(f.TestIndices))
	}
	assert.Len(t, counts, 23)
	for idx, c := range counts {
		assert.Equal(t, 1, c, "row %d in exactly one validation fold", idx)
	}
}

func TestStratifiedKFoldSpread(t *testing.T) {
	y := linearTarget(30)
	skf := NewStratifiedKFold(5)
	folds := skf.Split(y, NewRand(11))
	require.Len(t, folds, 5)

	for _, f := range folds {
		assert.Len(t, f.TestIndices, 6)
		// Each fold's validation set spans low and high targets.
		var low, high bool
		for _, idx := range f.TestIndices {
			if idx < 10 {
				low = true
			}
			if idx >= 20 {
				high = true
			}
		}
		assert.True(t, low, "fold has low-target rows")
		assert.True(t, high, "fold has high-target rows")
	}
}

func TestStratifiedKFoldDisjoint(t *testing.T) {
	y := linearTarget(29)
	folds := NewStratifiedKFold(4).Split(y, NewRand(2))

	counts := make(map[int]int)
	for _, f := range folds {
		for _, idx := range f.TestIndices {
			counts[idx]++
		}
	}
	assert.Len(t, counts, 29)
	for _, c := range counts {
		assert.Equal(t, 1, c)
	}
}
