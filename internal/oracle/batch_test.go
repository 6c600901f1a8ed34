package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/geometry"
	"github.com/copyleftdev/glassopt/internal/loads"
)

func TestNewBatchesSplitsByCheck(t *testing.T) {
	panes := []geometry.Pane{
		{Location: buildup.External, SurfaceID: 1, Width: 1.2, Height: 2.4, EquivalentThickness: 0.008},
		{Location: buildup.Internal, SurfaceID: 2, Width: 1.2, Height: 2.4, EquivalentThickness: 0.006},
	}
	table := loads.Table{
		"wind": {
			Surface: []loads.SurfaceLoad{{SurfaceID: 1, Magnitude: 1000}, {SurfaceID: 2, Magnitude: -400}},
			Line:    []loads.LineLoad{{SurfaceID: 2, Magnitude: 200, Z: 1.0}},
		},
	}
	combos := []loads.Combination{
		{ID: 10, Factors: []loads.Factor{{Case: "wind", Factor: 1}}, Check: loads.SLS},
		{ID: 20, Factors: []loads.Factor{{Case: "wind", Factor: 1.5}}, Check: loads.ULS},
	}

	b := NewBatches(loads.NewAggregator(loads.DefaultConfig()), combos, panes, table)

	require.Len(t, b.Deflection, 2)
	require.Len(t, b.Stress, 2)

	first := b.Deflection[0]
	assert.Equal(t, Key{Combination: 10, SurfaceID: 1, Location: buildup.External}, first.Key)
	assert.Equal(t, 1000.0, first.Instance.UDLMagnitude)
	assert.Equal(t, 0.008, first.Instance.Thickness)
	assert.Equal(t, 1, first.Instance.LinePointDirection)

	internal := b.Stress[1]
	assert.Equal(t, 20, internal.Key.Combination)
	assert.Equal(t, buildup.Internal, internal.Key.Location)
	assert.InDelta(t, 600, internal.Instance.UDLMagnitude, 1e-9)
	assert.InDelta(t, 300, internal.Instance.LineMagnitude, 1e-9)
	assert.Equal(t, 1.0, internal.Instance.LineHeight)
	assert.Equal(t, -1, internal.Instance.LinePointDirection)
}

func TestNewBatchesEmpty(t *testing.T) {
	b := NewBatches(loads.NewAggregator(loads.DefaultConfig()), nil, nil, nil)
	assert.Empty(t, b.Deflection)
	assert.Empty(t, b.Stress)
}
