package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelsel/gbsearch/pkg/errors"
)

func smallAxes() Axes {
	return Axes{
		Trees:           []int{10, 20},
		MaxDepth:        []int{2, 3},
		LearningRate:    []float64{0.1},
		MinSplitGain:    []float64{0},
		FeatureFraction: []float64{0.5, 1.0},
		MinChildWeight:  []float64{1},
		BaggingFraction: []float64{1.0},
		Lambda:          []float64{0, 1},
		Alpha:           []float64{0},
	}
}

func TestConfigurationsSize(t *testing.T) {
	axes := smallAxes()
	configs, err := Configurations(axes)
	require.NoError(t, err)
	assert.Len(t, configs, axes.Size())
	assert.Len(t, configs, 16)
}

func TestConfigurationIDsStableAndUnique(t *testing.T) {
	configs1, err := Configurations(smallAxes())
	require.NoError(t, err)
	configs2, err := Configurations(smallAxes())
	require.NoError(t, err)

	seen := make(map[int]bool)
	for i := range configs1 {
		assert.Equal(t, i, configs1[i].ID, "IDs follow first-seen order")
		assert.False(t, seen[configs1[i].ID], "IDs are unique")
		seen[configs1[i].ID] = true
		assert.Equal(t, configs1[i], configs2[i], "same axes produce the same configurations")
	}
}

func TestConfigurationsLastDimensionVariesFastest(t *testing.T) {
	axes := smallAxes()
	axes.Alpha = []float64{0, 0.5}
	configs, err := Configurations(axes)
	require.NoError(t, err)

	assert.Equal(t, 0.0, configs[0].Alpha)
	assert.Equal(t, 0.5, configs[1].Alpha)
	assert.Equal(t, configs[0].Lambda, configs[1].Lambda)
}

func TestConfigurationsEmptyDimension(t *testing.T) {
	axes := smallAxes()
	axes.Lambda = nil

	_, err := Configurations(axes)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptySearchSpace))
}
