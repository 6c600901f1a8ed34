// Package oracle talks to the remote prediction services that stand in for
// a structural solve. One service predicts deflection, the other stress.
package oracle

import (
	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/geometry"
	"github.com/copyleftdev/glassopt/internal/loads"
)

// Instance is one prediction input as the oracle expects it.
type Instance struct {
	Height             float64 `json:"height"`
	LineHeight         float64 `json:"line_height"`
	LineMagnitude      float64 `json:"line_magnit"`
	LinePointDirection int     `json:"line_pt_dir"`
	PointMagnitude     float64 `json:"pt_magnitude"`
	Thickness          float64 `json:"thickness"`
	UDLMagnitude       float64 `json:"udl_magnitude"`
	Width              float64 `json:"width"`
}

// Key identifies the (combination, pane) pair a prediction belongs to.
type Key struct {
	Combination int
	SurfaceID   int
	Location    buildup.PaneLocation
}

// Request pairs an instance with the key its answer maps back to.
type Request struct {
	Key      Key
	Instance Instance
}

// Response is one scaled prediction in SI units.
type Response struct {
	Key   Key
	Value float64
}

// Batches holds the serviceability and ultimate requests of one design.
type Batches struct {
	Deflection []Request
	Stress     []Request
}

// NewBatches aggregates the loads of every (combination, pane) pair and
// sorts the requests into the deflection batch (SLS) or the stress batch
// (ULS). Order follows combinations, then panes.
func NewBatches(agg *loads.Aggregator, combinations []loads.Combination, panes []geometry.Pane, table loads.Table) Batches {
	var b Batches
	for _, c := range combinations {
		for _, p := range panes {
			d := agg.Aggregate(c, p, table)
			req := Request{
				Key: Key{Combination: c.ID, SurfaceID: p.SurfaceID, Location: p.Location},
				Instance: Instance{
					Height:             p.Height,
					LineHeight:         d.LineHeight,
					LineMagnitude:      d.LineLoad,
					LinePointDirection: d.Direction,
					PointMagnitude:     d.PointLoad,
					Thickness:          p.EquivalentThickness,
					UDLMagnitude:       d.UDL,
					Width:              p.Width,
				},
			}
			if c.Check == loads.SLS {
				b.Deflection = append(b.Deflection, req)
			} else {
				b.Stress = append(b.Stress, req)
			}
		}
	}
	return b
}
