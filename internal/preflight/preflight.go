// Package preflight checks that a job lies inside the range the prediction
// models were trained on before any search starts.
package preflight

import (
	"fmt"
	"math"
	"strings"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/errors"
)

const tolerance = 1e-9

// Limits is the supported input range. Lengths are in metres, line loads in
// N/m and point loads in N.
type Limits struct {
	MinWidth, MaxWidth   float64
	MinHeight, MaxHeight float64
	MinLayer, MaxLayer   float64
	MaxLineLoad          float64
	MaxPointLoad         float64
	PointLoadSize        float64
}

// DefaultLimits returns the training range of the prediction models.
func DefaultLimits() Limits {
	return Limits{
		MinWidth:      0.4,
		MaxWidth:      3,
		MinHeight:     0.4,
		MaxHeight:     5,
		MinLayer:      0.004,
		MaxLayer:      0.012,
		MaxLineLoad:   1500,
		MaxPointLoad:  1500,
		PointLoadSize: 0.1,
	}
}

// Input is what the checks look at. Zero point-load size or height means
// no point load was defined.
type Input struct {
	Design             *buildup.Design
	LineLoadMagnitude  float64
	PointLoadMagnitude float64
	PointLoadSize      float64
	PointLoadHeight    float64
}

// Validate returns one message per violated limit, nil when the input is
// supported. Only panes present in the unit topology are checked.
func Validate(in Input, lim Limits) []string {
	var msgs []string
	d := in.Design

	if d.Width < lim.MinWidth {
		msgs = append(msgs, fmt.Sprintf("Glass unit width is smaller than %gm.", lim.MinWidth))
	}
	if d.Width > lim.MaxWidth {
		msgs = append(msgs, fmt.Sprintf("Maximum supported unit width is %gm.", lim.MaxWidth))
	}
	if d.Height < lim.MinHeight {
		msgs = append(msgs, fmt.Sprintf("Glass unit height is smaller than %gm.", lim.MinHeight))
	}
	if d.Height > lim.MaxHeight {
		msgs = append(msgs, fmt.Sprintf("Maximum supported unit height is %gm.", lim.MaxHeight))
	}

	if d.UnitType == buildup.Balustrade {
		msgs = append(msgs, "Balustrades cannot be calculated with predicted results.")
	} else {
		for _, loc := range d.UnitType.Locations() {
			msgs = append(msgs, layerMessages(loc, d.Pane(loc), lim)...)
		}
	}

	if math.Abs(in.LineLoadMagnitude) > lim.MaxLineLoad {
		msgs = append(msgs, fmt.Sprintf("Line load is larger than %gkN/m.", lim.MaxLineLoad/1000))
	}
	if math.Abs(in.PointLoadMagnitude) > lim.MaxPointLoad {
		msgs = append(msgs, fmt.Sprintf("Point load magnitude is larger than %gkN.", lim.MaxPointLoad/1000))
	}
	if in.PointLoadSize != 0 && math.Abs(in.PointLoadSize-lim.PointLoadSize) > tolerance {
		msgs = append(msgs, fmt.Sprintf("Only point loads of size %gm can be predicted.", lim.PointLoadSize))
	}
	if in.PointLoadHeight != 0 && math.Abs(in.PointLoadHeight-d.Height/2) > tolerance {
		msgs = append(msgs, "Point load must be located in the centre of the unit.")
	}
	return msgs
}

func layerMessages(loc buildup.PaneLocation, p buildup.Pane, lim Limits) []string {
	var thin, thick bool
	for _, l := range p.Layers() {
		thin = thin || l < lim.MinLayer-tolerance
		thick = thick || l > lim.MaxLayer+tolerance
	}

	var msgs []string
	if thin {
		msgs = append(msgs, fmt.Sprintf("One of %s pane layers is thinner than %gmm.", loc, lim.MinLayer*1000))
	}
	if thick {
		msgs = append(msgs, fmt.Sprintf("One of %s pane layers is thicker than %gmm.", loc, lim.MaxLayer*1000))
	}
	return msgs
}

// Error folds the messages into one input error, nil when there are none.
func Error(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	lines := append([]string{"The optimization could not be run because the following parameters are outside the supported range:"}, msgs...)
	return errors.New(errors.KindInput, strings.Join(lines, "\n")).WithComponent("preflight")
}
