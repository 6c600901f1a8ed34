package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/errors"
)

func TestEffectiveThickness(t *testing.T) {
	mono := buildup.Pane{Layer1: 0.008, Layer2: 0.010, Monolithic: true}
	assert.Equal(t, 0.008, EffectiveThickness(mono, 0.5))

	lam := buildup.Pane{Layer1: 0.004, Layer2: 0.004}
	assert.InDelta(t, math.Cbrt(2*math.Pow(0.004, 3)), EffectiveThickness(lam, 0), 1e-12, "layered limit")
	assert.InDelta(t, 0.008, EffectiveThickness(lam, 1), 1e-12, "fully bonded behaves monolithic")

	mid := EffectiveThickness(lam, 0.5)
	assert.Greater(t, mid, EffectiveThickness(lam, 0))
	assert.Less(t, mid, 0.008)
}

func TestLaminatedPanes(t *testing.T) {
	model := NewLaminated(Surfaces{External: 1, Middle: 3, Internal: 2}, 0)
	d := &buildup.Design{
		Width:    1.0,
		Height:   2.0,
		UnitType: buildup.Double,
		External: buildup.Pane{Layer1: 0.008, Monolithic: true},
		Internal: buildup.Pane{Layer1: 0.006, Monolithic: true},
	}

	panes, err := model.Panes(d)
	require.NoError(t, err)
	require.Len(t, panes, 2)
	assert.Equal(t, Pane{Location: buildup.External, SurfaceID: 1, Width: 1, Height: 2, EquivalentThickness: 0.008}, panes[0])
	assert.Equal(t, buildup.Internal, panes[1].Location)
	assert.Equal(t, 2, panes[1].SurfaceID)
}

func TestLaminatedPanesErrors(t *testing.T) {
	d := &buildup.Design{UnitType: buildup.Triple}

	_, err := NewLaminated(Surfaces{External: 1, Internal: 2}, 0).Panes(d)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInput))

	_, err = NewLaminated(Surfaces{External: 1, Middle: 2, Internal: 3}, 1.5).Panes(d)
	assert.True(t, errors.IsKind(err, errors.KindInput))
}

func TestSurfaces(t *testing.T) {
	s := Surfaces{External: 1, Internal: 2}

	assert.Equal(t, 1, s.For(buildup.External))
	assert.Equal(t, 0, s.For(buildup.Middle))
	assert.Equal(t, 2, s.For(buildup.Internal))
	assert.Panics(t, func() { s.For(buildup.PaneLocation(9)) })

	tests := []struct {
		unit buildup.UnitType
		ok   bool
	}{
		{buildup.Single, true},
		{buildup.Balustrade, true},
		{buildup.Double, true},
		{buildup.Triple, false},
	}
	for _, tt := range tests {
		t.Run(tt.unit.String(), func(t *testing.T) {
			err := s.Check(tt.unit)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindInput))
			assert.Contains(t, err.Error(), "Middle")
		})
	}
}
