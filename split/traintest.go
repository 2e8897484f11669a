package split

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/modelsel/gbsearch/pkg/errors"
)

// stratification bin count for train/test splits. With tens of rows this
// yields bins of a handful of subjects each, enough to make both partitions
// span the target's range.
const defaultStrataBins = 5

// TrainTestSplit draws a stratified random train/test partition of the rows
// behind y. Rows are grouped into target-quantile bins and each bin is split
// at trainFrac, so both partitions cover the target distribution. The returned
// index sets are disjoint, exhaustive, and sorted.
func TrainTestSplit(y *mat.VecDense, trainFrac float64, rng *rand.Rand) (train, test []int, err error) {
	n := y.Len()
	if n < 4 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "need at least 4 rows to partition")
	}
	if trainFrac <= 0 || trainFrac >= 1 {
		return nil, nil, errors.NewValidationError("trainFrac", "must be in (0, 1)", trainFrac)
	}

	// Sort row indices by target value, then cut into quantile bins.
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		return y.AtVec(indices[a]) < y.AtVec(indices[b])
	})

	bins := defaultStrataBins
	if bins > n/2 {
		bins = n / 2
	}
	binSize := (n + bins - 1) / bins

	for start := 0; start < n; start += binSize {
		end := start + binSize
		if end > n {
			end = n
		}
		bin := make([]int, end-start)
		copy(bin, indices[start:end])
		rng.Shuffle(len(bin), func(i, j int) {
			bin[i], bin[j] = bin[j], bin[i]
		})

		nTrain := int(math.Round(trainFrac * float64(len(bin))))
		if nTrain == len(bin) && len(bin) > 1 {
			nTrain--
		}
		train = append(train, bin[:nTrain]...)
		test = append(test, bin[nTrain:]...)
	}

	if len(train) < 2 || len(test) == 0 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "degenerate partition")
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}
