package search

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/modelsel/gbsearch/dataset"
	"github.com/modelsel/gbsearch/evaluate"
	"github.com/modelsel/gbsearch/grid"
	"github.com/modelsel/gbsearch/pkg/log"
	"github.com/modelsel/gbsearch/split"
)

func makeDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	const rows, cols = 40, 8

	rng := split.NewRand(split.DeriveSeed(77, 0, 0))
	x := mat.NewDense(rows, cols, nil)
	y := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, rng.NormFloat64())
		}
		y.SetVec(i, x.At(i, 0)+0.5*x.At(i, 1)+0.1*rng.NormFloat64())
	}
	x.Set(3, 5, math.NaN())
	x.Set(11, 6, math.NaN())

	ds, err := dataset.New(x, y, nil, "y")
	require.NoError(t, err)
	return ds
}

func makeConfigs(n int) []grid.Configuration {
	configs := make([]grid.Configuration, n)
	for i := range configs {
		configs[i] = grid.Configuration{
			ID:              i,
			Trees:           10 + 5*i,
			MaxDepth:        2,
			LearningRate:    0.1,
			FeatureFraction: 0.8,
			MinChildWeight:  1,
			BaggingFraction: 1.0,
			Lambda:          float64(i % 3),
		}
	}
	return configs
}

func fastOpts(logger log.Logger) Options {
	return Options{
		Evaluate: evaluate.Options{
			Repetitions:       3,
			InnerFolds:        3,
			TrainFraction:     0.7,
			MasterSeed:        5,
			MinSuccessfulReps: 1,
		},
		Workers:   4,
		ChunkSize: 2,
		Logger:    logger,
	}
}

func TestRunEvaluatesAll(t *testing.T) {
	ds := makeDataset(t)
	configs := makeConfigs(5)

	report, err := Run(context.Background(), ds, configs, fastOpts(log.NewTestLogger(log.LevelInfo)))
	require.NoError(t, err)

	assert.Equal(t, 5, report.Evaluated)
	assert.Len(t, report.Results, 5)
	assert.Empty(t, report.Dropped)

	for i, res := range report.Results {
		assert.Equal(t, i, res.ID, "results sorted by configuration ID")
	}
}

func TestRunDeterministicAcrossPoolSizes(t *testing.T) {
	ds := makeDataset(t)
	configs := makeConfigs(4)

	optsA := fastOpts(log.NewTestLogger(log.LevelError))
	optsA.Workers = 1
	reportA, err := Run(context.Background(), ds, configs, optsA)
	require.NoError(t, err)

	optsB := fastOpts(log.NewTestLogger(log.LevelError))
	optsB.Workers = 4
	reportB, err := Run(context.Background(), ds, configs, optsB)
	require.NoError(t, err)

	assert.Equal(t, reportA.Results, reportB.Results,
		"completion order and pool size never leak into the table")
}

func TestRunDropsFailingConfiguration(t *testing.T) {
	ds := makeDataset(t)
	configs := makeConfigs(3)
	// Invalid shrinkage makes every fit of configuration 1 fail.
	configs[1].LearningRate = -0.5

	logger := log.NewTestLogger(log.LevelDebug)
	report, err := Run(context.Background(), ds, configs, fastOpts(logger))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Evaluated)
	assert.Len(t, report.Results, 2)
	require.Len(t, report.Dropped, 1)
	assert.Equal(t, 1, report.Dropped[0].ConfigID)
	assert.True(t, logger.Contains("configuration dropped"), "drop is logged")
}

func TestRunEmptyConfigurations(t *testing.T) {
	ds := makeDataset(t)
	_, err := Run(context.Background(), ds, nil, fastOpts(log.NewTestLogger(log.LevelError)))
	assert.Error(t, err)
}

func TestRunCancellation(t *testing.T) {
	ds := makeDataset(t)
	configs := makeConfigs(6)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, ds, configs, fastOpts(log.NewTestLogger(log.LevelError)))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report, "partial report stays usable after cancellation")
	assert.Empty(t, report.Results)
}
