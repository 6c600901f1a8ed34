// Package buildup describes the cross-section of an insulated glass unit:
// pane layers, lamination and cavities, plus the fixed catalogues the
// optimizer draws them from.
package buildup

import (
	"fmt"
	"strings"
)

// UnitType is the topology of a glass unit.
type UnitType int

const (
	// Single is one pane without a cavity.
	Single UnitType = iota
	// Double is an external and an internal pane around one cavity.
	Double
	// Triple adds a middle pane and a second cavity.
	Triple
	// Balustrade is a single structural pane used as a barrier.
	Balustrade
)

var unitTypeNames = map[UnitType]string{
	Single:     "single",
	Double:     "double",
	Triple:     "triple",
	Balustrade: "balustrade",
}

func (u UnitType) String() string {
	if name, ok := unitTypeNames[u]; ok {
		return name
	}
	return fmt.Sprintf("UnitType(%d)", int(u))
}

// MarshalText implements encoding.TextMarshaler.
func (u UnitType) MarshalText() ([]byte, error) {
	name, ok := unitTypeNames[u]
	if !ok {
		return nil, fmt.Errorf("unknown unit type %d", int(u))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UnitType) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range unitTypeNames {
		if v == want {
			*u = k
			return nil
		}
	}
	return fmt.Errorf("unknown unit type %q", string(text))
}

// Locations returns the panes physically present in the topology,
// ordered from outside to inside.
func (u UnitType) Locations() []PaneLocation {
	switch u {
	case Single, Balustrade:
		return []PaneLocation{External}
	case Double:
		return []PaneLocation{External, Internal}
	case Triple:
		return []PaneLocation{External, Middle, Internal}
	default:
		panic(fmt.Sprintf("buildup: unknown unit type %d", int(u)))
	}
}

// Cavities returns how many gas cavities the topology has.
func (u UnitType) Cavities() int {
	switch u {
	case Double:
		return 1
	case Triple:
		return 2
	default:
		return 0
	}
}

// PaneLocation identifies a structural leaf within a unit.
type PaneLocation int

const (
	External PaneLocation = iota
	Middle
	Internal
)

// AllLocations lists every pane location in outside-to-inside order.
var AllLocations = []PaneLocation{External, Middle, Internal}

func (l PaneLocation) String() string {
	switch l {
	case External:
		return "External"
	case Middle:
		return "Middle"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("PaneLocation(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l PaneLocation) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *PaneLocation) UnmarshalText(text []byte) error {
	for _, loc := range AllLocations {
		if strings.EqualFold(loc.String(), strings.TrimSpace(string(text))) {
			*l = loc
			return nil
		}
	}
	return fmt.Errorf("unknown pane location %q", string(text))
}

// PaneType says whether a pane is one sheet or two laminated sheets.
type PaneType int

const (
	Monolithic PaneType = iota
	Laminated
)

// PaneTypes is the gene domain of the lamination slots.
var PaneTypes = []PaneType{Monolithic, Laminated}

func (t PaneType) String() string {
	switch t {
	case Monolithic:
		return "Monolithic"
	case Laminated:
		return "Laminated"
	default:
		return fmt.Sprintf("PaneType(%d)", int(t))
	}
}

// GlassThickness is a catalogue sheet thickness in millimetres.
type GlassThickness int

// GlassThicknesses is the sheet catalogue available to the optimizer.
var GlassThicknesses = []GlassThickness{4, 5, 6, 8, 10, 12}

// Meters converts the catalogue value to metres.
func (t GlassThickness) Meters() float64 {
	return float64(t) / 1000
}

// CavityThickness is a catalogue spacer width in millimetres.
type CavityThickness int

// CavityThicknesses is the spacer catalogue available to the optimizer.
var CavityThicknesses = []CavityThickness{8, 10, 12, 14, 15, 16, 18, 20}

// Meters converts the catalogue value to metres.
func (t CavityThickness) Meters() float64 {
	return float64(t) / 1000
}
