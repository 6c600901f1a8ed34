package buildup

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Pane is the layer makeup of one structural leaf. Thicknesses are in metres.
type Pane struct {
	Layer1     float64 `json:"layer1" yaml:"layer1"`
	Layer2     float64 `json:"layer2" yaml:"layer2"`
	Monolithic bool    `json:"monolithic" yaml:"monolithic"`
}

// Thickness returns the material thickness of the pane. The second layer
// only exists when the pane is laminated.
func (p Pane) Thickness() float64 {
	if p.Monolithic {
		return p.Layer1
	}
	return p.Layer1 + p.Layer2
}

// Layers returns the sheets that make up the pane.
func (p Pane) Layers() []float64 {
	if p.Monolithic {
		return []float64{p.Layer1}
	}
	return []float64{p.Layer1, p.Layer2}
}

// Design is a complete glass buildup decorating a fixed unit geometry.
type Design struct {
	Width    float64  `json:"width" yaml:"width"`
	Height   float64  `json:"height" yaml:"height"`
	UnitType UnitType `json:"unit_type" yaml:"unit_type"`

	External Pane `json:"external" yaml:"external"`
	Middle   Pane `json:"middle" yaml:"middle"`
	Internal Pane `json:"internal" yaml:"internal"`

	Cavity1 float64 `json:"cavity1" yaml:"cavity1"`
	Cavity2 float64 `json:"cavity2" yaml:"cavity2"`
}

// Pane returns the buildup of the pane at loc.
func (d *Design) Pane(loc PaneLocation) Pane {
	switch loc {
	case External:
		return d.External
	case Middle:
		return d.Middle
	case Internal:
		return d.Internal
	default:
		panic(fmt.Sprintf("buildup: unknown pane location %d", int(loc)))
	}
}

// TotalThickness sums the material of every pane present in the topology.
// Cavities are not material and are excluded.
func (d *Design) TotalThickness() float64 {
	locs := d.UnitType.Locations()
	parts := make([]float64, 0, len(locs))
	for _, loc := range locs {
		parts = append(parts, d.Pane(loc).Thickness())
	}
	return floats.Sum(parts)
}

// CavityTotal is the summed width of the cavities the topology has.
func (d *Design) CavityTotal() float64 {
	switch d.UnitType.Cavities() {
	case 2:
		return d.Cavity1 + d.Cavity2
	case 1:
		return d.Cavity1
	default:
		return 0
	}
}

// CopyBuildupFrom overwrites the layer, lamination and cavity fields with
// those of src. Geometry and topology are left alone.
func (d *Design) CopyBuildupFrom(src *Design) {
	d.External = src.External
	d.Middle = src.Middle
	d.Internal = src.Internal
	d.Cavity1 = src.Cavity1
	d.Cavity2 = src.Cavity2
}

// Description renders the buildup in millimetres from outside to inside,
// e.g. "8 | 12 | 4+4" for a double unit with a laminated internal pane.
func (d *Design) Description() string {
	locs := d.UnitType.Locations()
	cavities := []float64{d.Cavity1, d.Cavity2}

	parts := make([]string, 0, 2*len(locs)-1)
	for i, loc := range locs {
		if i > 0 {
			parts = append(parts, formatMM(cavities[i-1]))
		}
		layers := d.Pane(loc).Layers()
		sheets := make([]string, len(layers))
		for j, l := range layers {
			sheets[j] = formatMM(l)
		}
		parts = append(parts, strings.Join(sheets, "+"))
	}
	return strings.Join(parts, " | ")
}

func formatMM(meters float64) string {
	mm := math.Round(meters*10000) / 10
	return strconv.FormatFloat(mm, 'f', -1, 64)
}
