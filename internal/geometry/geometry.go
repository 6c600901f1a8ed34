// Package geometry supplies the structural view of a buildup: one entry per
// pane with its size, stiffness-equivalent thickness and the surface
// identifier that joins it to the load tables.
package geometry

import (
	"fmt"
	"math"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/errors"
)

// Pane is the geometry of one structural leaf.
type Pane struct {
	Location            buildup.PaneLocation
	SurfaceID           int
	Width               float64
	Height              float64
	EquivalentThickness float64
}

// Model turns a decoded design into its panes.
type Model interface {
	Panes(d *buildup.Design) ([]Pane, error)
}

// Surfaces maps each pane location onto its surface identifier.
type Surfaces struct {
	External int `json:"external" yaml:"external"`
	Middle   int `json:"middle" yaml:"middle"`
	Internal int `json:"internal" yaml:"internal"`
}

// For returns the surface identifier of loc.
func (s Surfaces) For(loc buildup.PaneLocation) int {
	switch loc {
	case buildup.External:
		return s.External
	case buildup.Middle:
		return s.Middle
	case buildup.Internal:
		return s.Internal
	default:
		panic(fmt.Sprintf("geometry: unknown pane location %d", int(loc)))
	}
}

// Check reports the first pane of the topology without a surface identifier.
func (s Surfaces) Check(unit buildup.UnitType) error {
	for _, loc := range unit.Locations() {
		if s.For(loc) == 0 {
			return errors.Errorf(errors.KindInput, "no surface identifier for %s pane", loc).
				WithComponent("geometry")
		}
	}
	return nil
}

// Laminated computes the effective thickness of laminated panes from the
// layered-plate formula with an interlayer shear transfer coefficient.
// Omega 0 treats the sheets as sliding freely, 1 as fully bonded.
type Laminated struct {
	Surfaces Surfaces
	Omega    float64
}

// NewLaminated creates the default panel model.
func NewLaminated(surfaces Surfaces, omega float64) *Laminated {
	return &Laminated{Surfaces: surfaces, Omega: omega}
}

// Panes implements Model.
func (m *Laminated) Panes(d *buildup.Design) ([]Pane, error) {
	if m.Omega < 0 || m.Omega > 1 {
		return nil, errors.Errorf(errors.KindInput, "shear transfer coefficient %g outside [0, 1]", m.Omega).
			WithComponent("geometry")
	}

	if err := m.Surfaces.Check(d.UnitType); err != nil {
		return nil, err
	}

	locs := d.UnitType.Locations()
	panes := make([]Pane, 0, len(locs))
	for _, loc := range locs {
		panes = append(panes, Pane{
			Location:            loc,
			SurfaceID:           m.Surfaces.For(loc),
			Width:               d.Width,
			Height:              d.Height,
			EquivalentThickness: EffectiveThickness(d.Pane(loc), m.Omega),
		})
	}
	return panes, nil
}

// EffectiveThickness returns the bending-equivalent thickness of a pane:
//
//	h_ef = cbrt(sum h_k^3 + 12 * omega * sum h_k * d_k^2)
//
// where d_k is the distance from the mid-plane of sheet k to the mid-plane
// of the package. A monolithic pane is its first layer.
func EffectiveThickness(p buildup.Pane, omega float64) float64 {
	if p.Monolithic {
		return p.Layer1
	}
	h1, h2 := p.Layer1, p.Layer2
	d1 := h2 / 2
	d2 := h1 / 2
	cubes := h1*h1*h1 + h2*h2*h2
	steiner := h1*d1*d1 + h2*d2*d2
	return math.Cbrt(cubes + 12*omega*steiner)
}
