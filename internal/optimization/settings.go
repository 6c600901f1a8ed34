package optimization

import (
	"fmt"
	"strings"
	"time"

	"github.com/copyleftdev/glassopt/internal/buildup"
)

// Search constants. Crossover and mutation rates are fixed for every run.
const (
	MutationRate  = 0.10
	CrossoverRate = 0.80

	// MaxFitness bounds the score; an accepted design scores
	// MaxFitness minus its total thickness in metres.
	MaxFitness = 1.0
	// RejectedFitness marks a design that violates a constraint.
	RejectedFitness = 0.0
)

// LaminatePolicy restricts the lamination of one pane.
type LaminatePolicy int

const (
	LaminateAny LaminatePolicy = iota
	LaminateMonolithic
	LaminateLaminated
)

var laminatePolicyNames = map[LaminatePolicy]string{
	LaminateAny:        "any",
	LaminateMonolithic: "monolithic",
	LaminateLaminated:  "laminated",
}

func (p LaminatePolicy) String() string { return laminatePolicyNames[p] }

// MarshalText implements encoding.TextMarshaler.
func (p LaminatePolicy) MarshalText() ([]byte, error) {
	name, ok := laminatePolicyNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown laminate policy %d", int(p))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *LaminatePolicy) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range laminatePolicyNames {
		if v == want {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown laminate policy %q", string(text))
}

// Fixed reports the pane type the policy forces, if any.
func (p LaminatePolicy) Fixed() (buildup.PaneType, bool) {
	switch p {
	case LaminateMonolithic:
		return buildup.Monolithic, true
	case LaminateLaminated:
		return buildup.Laminated, true
	default:
		return 0, false
	}
}

// Grade is a structural glass grade, ordered weakest first.
type Grade int

const (
	GradeFloat Grade = iota
	GradeHeatStrengthened
	GradeHeatTreated
	GradeNone
)

func (g Grade) String() string {
	switch g {
	case GradeFloat:
		return "float"
	case GradeHeatStrengthened:
		return "heat_strengthened"
	case GradeHeatTreated:
		return "heat_treated"
	default:
		return "none"
	}
}

// GradePolicy is the set of grades a pane may be made of.
type GradePolicy int

const (
	GradeAny GradePolicy = iota
	GradeFloatOnly
	GradeFloatOrHeatStrengthened
)

var gradePolicyNames = map[GradePolicy]string{
	GradeAny:                     "any",
	GradeFloatOnly:               "float_only",
	GradeFloatOrHeatStrengthened: "float_or_heat_strengthened",
}

func (p GradePolicy) String() string { return gradePolicyNames[p] }

// MarshalText implements encoding.TextMarshaler.
func (p GradePolicy) MarshalText() ([]byte, error) {
	name, ok := gradePolicyNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown grade policy %d", int(p))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *GradePolicy) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range gradePolicyNames {
		if v == want {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown grade policy %q", string(text))
}

// Accepts reports whether a pane whose weakest sufficient grade is g
// satisfies the policy. GradeNone never does.
func (p GradePolicy) Accepts(g Grade) bool {
	if g == GradeNone {
		return false
	}
	switch p {
	case GradeAny:
		return true
	case GradeFloatOrHeatStrengthened:
		return g == GradeFloat || g == GradeHeatStrengthened
	case GradeFloatOnly:
		return g == GradeFloat
	default:
		panic(fmt.Sprintf("optimization: unknown grade policy %d", int(p)))
	}
}

// PanePolicy groups the per-pane restrictions.
type PanePolicy struct {
	Laminate LaminatePolicy `json:"laminate" yaml:"laminate"`
	Grade    GradePolicy    `json:"grade" yaml:"grade"`
}

// AllowableStress holds the design strength of each grade in pascals.
type AllowableStress struct {
	Float            float64 `json:"float" yaml:"float"`
	HeatStrengthened float64 `json:"heat_strengthened" yaml:"heat_strengthened"`
	HeatTreated      float64 `json:"heat_treated" yaml:"heat_treated"`
}

// Settings is the policy of one optimization run. It is built once and
// not modified while the run executes.
type Settings struct {
	MaxRunTimeSeconds      float64 `json:"max_run_time_seconds" yaml:"max_run_time_seconds"`
	MaxStagnantGenerations int     `json:"max_stagnant_generations" yaml:"max_stagnant_generations"`

	MinPopulation int `json:"min_population" yaml:"min_population"`
	MaxPopulation int `json:"max_population" yaml:"max_population"`

	// MaxAllowedDeflection is in metres.
	MaxAllowedDeflection  float64 `json:"max_allowed_deflection" yaml:"max_allowed_deflection"`
	MaxAllowedStressRatio float64 `json:"max_allowed_stress_ratio" yaml:"max_allowed_stress_ratio"`

	// Cavity bounds in metres, inclusive.
	MinCavity float64 `json:"min_cavity" yaml:"min_cavity"`
	MaxCavity float64 `json:"max_cavity" yaml:"max_cavity"`

	RequireExternalStiffer bool `json:"require_external_stiffer" yaml:"require_external_stiffer"`
	SymmetricLaminate      bool `json:"symmetric_laminate" yaml:"symmetric_laminate"`

	External PanePolicy `json:"external" yaml:"external"`
	Middle   PanePolicy `json:"middle" yaml:"middle"`
	Internal PanePolicy `json:"internal" yaml:"internal"`

	AllowableStress AllowableStress `json:"allowable_stress" yaml:"allowable_stress"`

	// Seed fixes the random source; zero seeds from the clock.
	Seed int64 `json:"seed" yaml:"seed"`
}

// DefaultSettings returns the policy used when a job leaves fields unset.
func DefaultSettings() Settings {
	return Settings{
		MaxRunTimeSeconds:      120,
		MaxStagnantGenerations: 10,
		MinPopulation:          20,
		MaxPopulation:          40,
		MaxAllowedDeflection:   0.015,
		MaxAllowedStressRatio:  1.0,
		MinCavity:              0.008,
		MaxCavity:              0.036,
		AllowableStress: AllowableStress{
			Float:            45e6,
			HeatStrengthened: 70e6,
			HeatTreated:      120e6,
		},
	}
}

// RunTime is the wall-clock budget of the run.
func (s Settings) RunTime() time.Duration {
	return time.Duration(s.MaxRunTimeSeconds * float64(time.Second))
}

// Pane returns the policy of the pane at loc.
func (s Settings) Pane(loc buildup.PaneLocation) PanePolicy {
	switch loc {
	case buildup.External:
		return s.External
	case buildup.Middle:
		return s.Middle
	case buildup.Internal:
		return s.Internal
	default:
		panic(fmt.Sprintf("optimization: unknown pane location %d", int(loc)))
	}
}

// Validate checks that the settings describe a runnable search.
func (s Settings) Validate() error {
	switch {
	case s.MaxRunTimeSeconds <= 0:
		return NewError("max run time must be positive").WithComponent("settings")
	case s.MaxStagnantGenerations < 0:
		return NewError("stagnation limit cannot be negative").WithComponent("settings")
	case s.MinPopulation < 2:
		return NewErrorf("min population %d is below 2", s.MinPopulation).WithComponent("settings")
	case s.MaxPopulation < s.MinPopulation:
		return NewErrorf("max population %d is below min population %d", s.MaxPopulation, s.MinPopulation).WithComponent("settings")
	case s.MinCavity > s.MaxCavity:
		return NewError("min cavity exceeds max cavity").WithComponent("settings")
	case s.MaxAllowedDeflection <= 0:
		return NewError("allowed deflection must be positive").WithComponent("settings")
	case s.MaxAllowedStressRatio <= 0:
		return NewError("allowed stress ratio must be positive").WithComponent("settings")
	case s.AllowableStress.Float <= 0 || s.AllowableStress.HeatStrengthened <= 0 || s.AllowableStress.HeatTreated <= 0:
		return NewError("allowable stresses must be positive").WithComponent("settings")
	}
	return nil
}
