// Package genome encodes a glass buildup as a genotype of eleven named
// slots and provides the random creation, decoding and variation operators
// the genetic search works with.
package genome

import (
	"fmt"
	"math/rand/v2"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/results"
)

// Slot names one gene of the genotype.
type Slot int

const (
	ExternalLayer1 Slot = iota
	MiddleLayer1
	InternalLayer1
	ExternalLayer2
	MiddleLayer2
	InternalLayer2
	ExternalType
	MiddleType
	InternalType
	Cavity1
	Cavity2

	// SlotCount is the number of genes.
	SlotCount = int(Cavity2) + 1
)

func (s Slot) String() string {
	switch s {
	case ExternalLayer1:
		return "external_layer1"
	case MiddleLayer1:
		return "middle_layer1"
	case InternalLayer1:
		return "internal_layer1"
	case ExternalLayer2:
		return "external_layer2"
	case MiddleLayer2:
		return "middle_layer2"
	case InternalLayer2:
		return "internal_layer2"
	case ExternalType:
		return "external_type"
	case MiddleType:
		return "middle_type"
	case InternalType:
		return "internal_type"
	case Cavity1:
		return "cavity1"
	case Cavity2:
		return "cavity2"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Genotype is one point of the search space. Every field is a catalogue
// value; thicknesses are in millimetres.
type Genotype struct {
	ExternalLayer1 buildup.GlassThickness
	MiddleLayer1   buildup.GlassThickness
	InternalLayer1 buildup.GlassThickness
	ExternalLayer2 buildup.GlassThickness
	MiddleLayer2   buildup.GlassThickness
	InternalLayer2 buildup.GlassThickness

	ExternalType buildup.PaneType
	MiddleType   buildup.PaneType
	InternalType buildup.PaneType

	Cavity1 buildup.CavityThickness
	Cavity2 buildup.CavityThickness
}

// Random draws every slot independently and uniformly from its catalogue.
func Random(rng *rand.Rand) Genotype {
	var g Genotype
	for s := Slot(0); int(s) < SlotCount; s++ {
		g.randomize(s, rng)
	}
	return g
}

// randomize redraws one slot. An unknown slot is a defect and panics.
func (g *Genotype) randomize(s Slot, rng *rand.Rand) {
	glass := func() buildup.GlassThickness {
		return buildup.GlassThicknesses[rng.IntN(len(buildup.GlassThicknesses))]
	}
	paneType := func() buildup.PaneType {
		return buildup.PaneTypes[rng.IntN(len(buildup.PaneTypes))]
	}
	cavity := func() buildup.CavityThickness {
		return buildup.CavityThicknesses[rng.IntN(len(buildup.CavityThicknesses))]
	}

	switch s {
	case ExternalLayer1:
		g.ExternalLayer1 = glass()
	case MiddleLayer1:
		g.MiddleLayer1 = glass()
	case InternalLayer1:
		g.InternalLayer1 = glass()
	case ExternalLayer2:
		g.ExternalLayer2 = glass()
	case MiddleLayer2:
		g.MiddleLayer2 = glass()
	case InternalLayer2:
		g.InternalLayer2 = glass()
	case ExternalType:
		g.ExternalType = paneType()
	case MiddleType:
		g.MiddleType = paneType()
	case InternalType:
		g.InternalType = paneType()
	case Cavity1:
		g.Cavity1 = cavity()
	case Cavity2:
		g.Cavity2 = cavity()
	default:
		panic(fmt.Sprintf("genome: unknown slot %d", int(s)))
	}
}

// take copies one slot from src. An unknown slot is a defect and panics.
func (g *Genotype) take(s Slot, src *Genotype) {
	switch s {
	case ExternalLayer1:
		g.ExternalLayer1 = src.ExternalLayer1
	case MiddleLayer1:
		g.MiddleLayer1 = src.MiddleLayer1
	case InternalLayer1:
		g.InternalLayer1 = src.InternalLayer1
	case ExternalLayer2:
		g.ExternalLayer2 = src.ExternalLayer2
	case MiddleLayer2:
		g.MiddleLayer2 = src.MiddleLayer2
	case InternalLayer2:
		g.InternalLayer2 = src.InternalLayer2
	case ExternalType:
		g.ExternalType = src.ExternalType
	case MiddleType:
		g.MiddleType = src.MiddleType
	case InternalType:
		g.InternalType = src.InternalType
	case Cavity1:
		g.Cavity1 = src.Cavity1
	case Cavity2:
		g.Cavity2 = src.Cavity2
	default:
		panic(fmt.Sprintf("genome: unknown slot %d", int(s)))
	}
}

// Decode returns a copy of base with the eleven buildup fields replaced by
// the genotype. Geometry and topology pass through unchanged.
func Decode(g Genotype, base *buildup.Design) *buildup.Design {
	d := *base
	d.External = pane(g.ExternalLayer1, g.ExternalLayer2, g.ExternalType)
	d.Middle = pane(g.MiddleLayer1, g.MiddleLayer2, g.MiddleType)
	d.Internal = pane(g.InternalLayer1, g.InternalLayer2, g.InternalType)
	d.Cavity1 = g.Cavity1.Meters()
	d.Cavity2 = g.Cavity2.Meters()
	return &d
}

func pane(l1, l2 buildup.GlassThickness, t buildup.PaneType) buildup.Pane {
	return buildup.Pane{
		Layer1:     l1.Meters(),
		Layer2:     l2.Meters(),
		Monolithic: t == buildup.Monolithic,
	}
}

// ApplyPolicy pre-fixes the slots the run policy constrains. With a
// symmetric laminate every layer-1 gene takes its layer-2 value; a pane
// whose lamination is fixed gets its type gene overwritten.
func ApplyPolicy(g *Genotype, s optimization.Settings) {
	if s.SymmetricLaminate {
		g.ExternalLayer1 = g.ExternalLayer2
		g.MiddleLayer1 = g.MiddleLayer2
		g.InternalLayer1 = g.InternalLayer2
	}
	if t, ok := s.External.Laminate.Fixed(); ok {
		g.ExternalType = t
	}
	if t, ok := s.Middle.Laminate.Fixed(); ok {
		g.MiddleType = t
	}
	if t, ok := s.Internal.Laminate.Fixed(); ok {
		g.InternalType = t
	}
}

// Crossover recombines two parents. With probability rate each slot of the
// child is taken from either parent uniformly; otherwise the child is a
// copy of a.
func Crossover(a, b Genotype, rate float64, rng *rand.Rand) Genotype {
	child := a
	if rng.Float64() >= rate {
		return child
	}
	for s := Slot(0); int(s) < SlotCount; s++ {
		if rng.IntN(2) == 1 {
			child.take(s, &b)
		}
	}
	return child
}

// Mutate redraws each slot with probability rate.
func Mutate(g *Genotype, rate float64, rng *rand.Rand) {
	for s := Slot(0); int(s) < SlotCount; s++ {
		if rng.Float64() < rate {
			g.randomize(s, rng)
		}
	}
}

// Individual is a genotype with its evaluation. Tables is set only for
// accepted designs.
type Individual struct {
	Genotype  Genotype
	Fitness   float64
	Evaluated bool
	Tables    *results.Tables
}

// NewIndividual wraps an unevaluated genotype.
func NewIndividual(g Genotype) *Individual {
	return &Individual{Genotype: g, Fitness: optimization.RejectedFitness}
}

// Accepted reports whether the individual passed every check.
func (in *Individual) Accepted() bool {
	return in.Evaluated && in.Fitness > optimization.RejectedFitness
}
