// Package fitness scores genotypes: it decodes them, checks the design
// rules, asks the prediction oracle for the structural response and turns
// the outcome into a fitness value.
package fitness

import (
	"math"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/optimization"
)

// tolerance absorbs the rounding of millimetre catalogue values in metres.
const tolerance = 1e-9

// CavityWithinBounds checks the gas cavities against the inclusive bounds.
// A triple unit is checked on the sum of both cavities.
func CavityWithinBounds(d *buildup.Design, s optimization.Settings) bool {
	var cavity float64
	switch d.UnitType {
	case buildup.Triple:
		cavity = d.Cavity1 + d.Cavity2
	case buildup.Double:
		cavity = d.Cavity1
	default:
		return true
	}
	return cavity >= s.MinCavity-tolerance && cavity <= s.MaxCavity+tolerance
}

// ExternalStiffer reports whether the external pane is thicker than the
// internal one. Equal thicknesses pass only for a monolithic external pane
// against a laminated internal pane.
func ExternalStiffer(d *buildup.Design) bool {
	ext, inner := d.External.Thickness(), d.Internal.Thickness()
	switch {
	case ext-inner > tolerance:
		return true
	case math.Abs(ext-inner) <= tolerance:
		return d.External.Monolithic && !d.Internal.Monolithic
	default:
		return false
	}
}

// Acceptable applies every range rule to a decoded design.
func Acceptable(d *buildup.Design, s optimization.Settings) bool {
	if s.RequireExternalStiffer && d.UnitType.Cavities() > 0 && !ExternalStiffer(d) {
		return false
	}
	return CavityWithinBounds(d, s)
}
