// Package loads models load combinations and the pre-computed load tables
// of a glass unit, and collapses them into one signed load set per
// (combination, pane).
package loads

import (
	"fmt"
	"math"
	"strings"
)

// CheckType tags a combination as a serviceability or an ultimate check.
type CheckType int

const (
	// SLS combinations are checked for deflection.
	SLS CheckType = iota
	// ULS combinations are checked for stress.
	ULS
)

func (c CheckType) String() string {
	switch c {
	case SLS:
		return "SLS"
	case ULS:
		return "ULS"
	default:
		return fmt.Sprintf("CheckType(%d)", int(c))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c CheckType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CheckType) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "SLS":
		*c = SLS
	case "ULS":
		*c = ULS
	default:
		return fmt.Errorf("unknown check type %q", string(text))
	}
	return nil
}

// Factor scales one load case within a combination.
type Factor struct {
	Case   string  `json:"case" yaml:"case"`
	Factor float64 `json:"factor" yaml:"factor"`
}

// Combination is a weighted sum of load cases. Factors are applied in order.
type Combination struct {
	ID      int       `json:"id" yaml:"id"`
	Factors []Factor  `json:"factors" yaml:"factors"`
	Check   CheckType `json:"check" yaml:"check"`
}

// SurfaceLoad is a uniform pressure on a surface, in pascals.
type SurfaceLoad struct {
	SurfaceID int     `json:"surface" yaml:"surface"`
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
}

// LineLoad is a horizontal line load in N/m at height Z above the pane base.
type LineLoad struct {
	SurfaceID int     `json:"surface" yaml:"surface"`
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
	Z         float64 `json:"z" yaml:"z"`
}

// PatchLoad is a pressure in pascals over the square point-load footprint.
type PatchLoad struct {
	SurfaceID int     `json:"surface" yaml:"surface"`
	Magnitude float64 `json:"magnitude" yaml:"magnitude"`
}

// CaseLoads holds every load record of one load case.
type CaseLoads struct {
	Surface []SurfaceLoad `json:"surface" yaml:"surface"`
	Line    []LineLoad    `json:"line" yaml:"line"`
	Patch   []PatchLoad   `json:"patch" yaml:"patch"`
}

// Table is the load generation output keyed by load case.
type Table map[string]CaseLoads

// MaxLineMagnitude returns the largest absolute line load in the table.
func (t Table) MaxLineMagnitude() float64 {
	var max float64
	for _, c := range t {
		for _, l := range c.Line {
			max = math.Max(max, math.Abs(l.Magnitude))
		}
	}
	return max
}

// MaxPointMagnitude returns the largest absolute patch load converted to a
// point force over a square footprint of the given side.
func (t Table) MaxPointMagnitude(footprint float64) float64 {
	var max float64
	for _, c := range t {
		for _, p := range c.Patch {
			max = math.Max(max, math.Abs(p.Magnitude)*footprint*footprint)
		}
	}
	return max
}

// Validate checks that combination identifiers are unique, since results
// are keyed by them. Cases missing from the load table contribute nothing.
func Validate(combinations []Combination) error {
	seen := make(map[int]bool, len(combinations))
	for _, c := range combinations {
		if seen[c.ID] {
			return fmt.Errorf("duplicate combination %d", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}
