package fitness

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/results"
)

// SuitableGrade returns the weakest grade whose largest utilisation over
// rows stays within ratio. A pane without rows has no suitable grade.
func SuitableGrade(rows []results.StressRow, ratio float64) optimization.Grade {
	if len(rows) == 0 {
		return optimization.GradeNone
	}

	fl := make([]float64, len(rows))
	hs := make([]float64, len(rows))
	ht := make([]float64, len(rows))
	for i, r := range rows {
		fl[i], hs[i], ht[i] = r.UtilisationFloat, r.UtilisationHS, r.UtilisationHT
	}

	switch {
	case floats.Max(fl) <= ratio:
		return optimization.GradeFloat
	case floats.Max(hs) <= ratio:
		return optimization.GradeHeatStrengthened
	case floats.Max(ht) <= ratio:
		return optimization.GradeHeatTreated
	default:
		return optimization.GradeNone
	}
}

// StressAcceptable checks the grade of every pane the topology requires
// against its grade policy.
func StressAcceptable(t *results.Tables, unit buildup.UnitType, s optimization.Settings) bool {
	var required []buildup.PaneLocation
	switch unit {
	case buildup.Single, buildup.Balustrade:
		required = []buildup.PaneLocation{buildup.External}
	case buildup.Double:
		required = []buildup.PaneLocation{buildup.External, buildup.Internal}
	case buildup.Triple:
		required = []buildup.PaneLocation{buildup.External, buildup.Internal, buildup.Middle}
	default:
		panic(fmt.Sprintf("fitness: unknown unit type %d", int(unit)))
	}

	for _, loc := range required {
		grade := SuitableGrade(t.StressFor(loc.String()), s.MaxAllowedStressRatio)
		if !s.Pane(loc).Grade.Accepts(grade) {
			return false
		}
	}
	return true
}
