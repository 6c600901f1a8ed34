package loads

import (
	"math"

	"github.com/copyleftdev/glassopt/internal/geometry"
)

// Config holds the fixed assumptions of load aggregation.
type Config struct {
	// PointLoadSize is the side of the square point-load footprint in metres.
	PointLoadSize float64
}

// DefaultConfig returns the footprint the prediction model was trained on.
func DefaultConfig() Config {
	return Config{PointLoadSize: 0.1}
}

// Descriptor is the aggregated load of one pane under one combination.
// Magnitudes are absolute; the sign relation survives only in Direction.
type Descriptor struct {
	UDL        float64
	LineLoad   float64
	LineHeight float64
	PointLoad  float64
	// Direction is -1 when a concentrated load opposes the uniform load.
	Direction int
}

// Aggregator superposes factored load cases per pane.
type Aggregator struct {
	cfg Config
}

// NewAggregator creates an aggregator with the given assumptions.
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate sums the loads of every case in c that act on pane, each
// multiplied by its signed factor. The line-load height is geometric and is
// taken from the first matching record rather than summed.
func (a *Aggregator) Aggregate(c Combination, pane geometry.Pane, table Table) Descriptor {
	var udl, line, point, height float64
	heightFound := false
	footprint := a.cfg.PointLoadSize * a.cfg.PointLoadSize

	for _, f := range c.Factors {
		if f.Factor == 0 {
			continue
		}
		loads, ok := table[f.Case]
		if !ok {
			continue
		}

		for _, s := range loads.Surface {
			if s.SurfaceID == pane.SurfaceID {
				udl += s.Magnitude * f.Factor
			}
		}
		for _, l := range loads.Line {
			if l.SurfaceID != pane.SurfaceID {
				continue
			}
			line += l.Magnitude * f.Factor
			if !heightFound {
				height = l.Z
				heightFound = true
			}
		}
		for _, p := range loads.Patch {
			if p.SurfaceID == pane.SurfaceID {
				point += p.Magnitude * f.Factor * footprint
			}
		}
	}

	return Descriptor{
		UDL:        math.Abs(udl),
		LineLoad:   math.Abs(line),
		LineHeight: FoldHeight(height, pane.Height),
		PointLoad:  math.Abs(point),
		Direction:  Direction(udl, line, point),
	}
}

// Direction returns -1 when a nonzero line or point load has the opposite
// sign of the uniform load, else +1.
func Direction(udl, line, point float64) int {
	if (point != 0 && point*udl < 0) || (line != 0 && line*udl < 0) {
		return -1
	}
	return 1
}

// FoldHeight re-expresses a line-load height in the upper half of a pane as
// its distance above mid-height. The response is symmetric about mid-height.
func FoldHeight(z, paneHeight float64) float64 {
	half := 0.5 * paneHeight
	if z <= half {
		return z
	}
	return z - half
}
