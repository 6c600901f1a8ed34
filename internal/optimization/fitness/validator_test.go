package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/optimization"
)

func TestCavityWithinBounds(t *testing.T) {
	s := optimization.DefaultSettings()
	s.MinCavity = 0.010
	s.MaxCavity = 0.036

	tests := []struct {
		name     string
		unit     buildup.UnitType
		c1, c2   float64
		accepted bool
	}{
		{"double below min", buildup.Double, 0.010 - 1e-6, 0, false},
		{"double at min", buildup.Double, 0.010, 0, true},
		{"double ignores second cavity", buildup.Double, 0.012, 0.050, true},
		{"triple sum at max", buildup.Triple, 0.016, 0.020, true},
		{"triple sum above max", buildup.Triple, 0.016, 0.021, false},
		{"triple sum below min", buildup.Triple, 0.004, 0.004, false},
		{"single has no cavity", buildup.Single, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &buildup.Design{UnitType: tt.unit, Cavity1: tt.c1, Cavity2: tt.c2}
			assert.Equal(t, tt.accepted, CavityWithinBounds(d, s))
		})
	}
}

func TestExternalStiffer(t *testing.T) {
	mono := func(l float64) buildup.Pane { return buildup.Pane{Layer1: l, Layer2: 0.012, Monolithic: true} }
	lam := func(l1, l2 float64) buildup.Pane { return buildup.Pane{Layer1: l1, Layer2: l2} }

	tests := []struct {
		name       string
		ext, inner buildup.Pane
		want       bool
	}{
		{"thicker external", mono(0.010), mono(0.008), true},
		{"thinner external", mono(0.006), lam(0.004, 0.004), false},
		{"tie monolithic over laminate", mono(0.008), lam(0.004, 0.004), true},
		{"tie laminate over monolithic", lam(0.004, 0.004), mono(0.008), false},
		{"tie both monolithic", mono(0.008), mono(0.008), false},
		{"tie after rounding", mono(0.010), lam(0.004, 0.006), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &buildup.Design{UnitType: buildup.Double, External: tt.ext, Internal: tt.inner}
			assert.Equal(t, tt.want, ExternalStiffer(d))
		})
	}
}

func TestAcceptable(t *testing.T) {
	s := optimization.DefaultSettings()
	s.RequireExternalStiffer = true

	d := &buildup.Design{
		UnitType: buildup.Double,
		External: buildup.Pane{Layer1: 0.006, Monolithic: true},
		Internal: buildup.Pane{Layer1: 0.008, Monolithic: true},
		Cavity1:  0.012,
	}
	assert.False(t, Acceptable(d, s))

	s.RequireExternalStiffer = false
	assert.True(t, Acceptable(d, s))

	single := &buildup.Design{UnitType: buildup.Single, External: buildup.Pane{Layer1: 0.004, Monolithic: true}}
	s.RequireExternalStiffer = true
	assert.True(t, Acceptable(single, s), "no internal pane to compare against")
}
