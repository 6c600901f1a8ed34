package genome

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/optimization"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(7, 7))
}

func TestRandomStaysInCatalogue(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 200; i++ {
		g := Random(rng)
		for _, v := range []buildup.GlassThickness{
			g.ExternalLayer1, g.MiddleLayer1, g.InternalLayer1,
			g.ExternalLayer2, g.MiddleLayer2, g.InternalLayer2,
		} {
			assert.Contains(t, buildup.GlassThicknesses, v)
		}
		for _, v := range []buildup.PaneType{g.ExternalType, g.MiddleType, g.InternalType} {
			assert.Contains(t, buildup.PaneTypes, v)
		}
		assert.Contains(t, buildup.CavityThicknesses, g.Cavity1)
		assert.Contains(t, buildup.CavityThicknesses, g.Cavity2)
	}
}

func TestDecodePreservesGeometry(t *testing.T) {
	base := &buildup.Design{
		Width:    1.5,
		Height:   2.7,
		UnitType: buildup.Triple,
		External: buildup.Pane{Layer1: 0.1, Layer2: 0.1},
		Cavity1:  0.5,
	}
	before := *base

	g := Genotype{
		ExternalLayer1: 8, MiddleLayer1: 6, InternalLayer1: 4,
		ExternalLayer2: 10, MiddleLayer2: 5, InternalLayer2: 12,
		ExternalType: buildup.Monolithic, MiddleType: buildup.Laminated, InternalType: buildup.Laminated,
		Cavity1: 16, Cavity2: 14,
	}
	d := Decode(g, base)

	assert.Equal(t, before, *base, "base is not modified")
	assert.Equal(t, 1.5, d.Width)
	assert.Equal(t, 2.7, d.Height)
	assert.Equal(t, buildup.Triple, d.UnitType)

	assert.Equal(t, buildup.Pane{Layer1: 0.008, Layer2: 0.010, Monolithic: true}, d.External)
	assert.Equal(t, buildup.Pane{Layer1: 0.006, Layer2: 0.005}, d.Middle)
	assert.Equal(t, buildup.Pane{Layer1: 0.004, Layer2: 0.012}, d.Internal)
	assert.Equal(t, 0.016, d.Cavity1)
	assert.Equal(t, 0.014, d.Cavity2)
	assert.InDelta(t, 0.008+0.011+0.016, d.TotalThickness(), 1e-12)
}

func TestApplyPolicy(t *testing.T) {
	rng := testRNG()
	s := optimization.DefaultSettings()
	s.SymmetricLaminate = true
	s.External.Laminate = optimization.LaminateMonolithic
	s.Internal.Laminate = optimization.LaminateLaminated

	for i := 0; i < 50; i++ {
		g := Random(rng)
		middle := g.MiddleType
		ApplyPolicy(&g, s)

		assert.Equal(t, g.ExternalLayer2, g.ExternalLayer1)
		assert.Equal(t, g.MiddleLayer2, g.MiddleLayer1)
		assert.Equal(t, g.InternalLayer2, g.InternalLayer1)
		assert.Equal(t, buildup.Monolithic, g.ExternalType)
		assert.Equal(t, buildup.Laminated, g.InternalType)
		assert.Equal(t, middle, g.MiddleType, "free pane keeps its gene")
	}
}

func TestApplyPolicyWithoutConstraints(t *testing.T) {
	g := Random(testRNG())
	want := g
	ApplyPolicy(&g, optimization.DefaultSettings())
	assert.Equal(t, want, g)
}

func TestCrossover(t *testing.T) {
	rng := testRNG()
	a := Genotype{ExternalLayer1: 4, InternalLayer1: 4, Cavity1: 8, Cavity2: 8}
	b := Genotype{ExternalLayer1: 12, InternalLayer1: 12, Cavity1: 20, Cavity2: 20}

	assert.Equal(t, a, Crossover(a, b, 0, rng), "no crossover copies the first parent")

	for i := 0; i < 50; i++ {
		child := Crossover(a, b, 1, rng)
		assert.True(t, slices.Contains([]buildup.GlassThickness{4, 12}, child.ExternalLayer1))
		assert.True(t, slices.Contains([]buildup.CavityThickness{8, 20}, child.Cavity2))
	}
}

func TestMutate(t *testing.T) {
	rng := testRNG()
	g := Genotype{ExternalLayer1: 4}
	want := g
	Mutate(&g, 0, rng)
	assert.Equal(t, want, g)

	Mutate(&g, 1, rng)
	assert.Contains(t, buildup.CavityThicknesses, g.Cavity1, "every slot redrawn")
}

func TestUnknownSlotPanics(t *testing.T) {
	var g Genotype
	assert.Panics(t, func() { g.randomize(Slot(SlotCount), testRNG()) })
	assert.Panics(t, func() { g.take(Slot(-1), &Genotype{}) })
}

func TestIndividual(t *testing.T) {
	in := NewIndividual(Genotype{})
	assert.False(t, in.Accepted())
	in.Evaluated = true
	in.Fitness = 0.984
	assert.True(t, in.Accepted())
}
