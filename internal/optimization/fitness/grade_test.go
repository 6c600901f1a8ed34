package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/results"
)

func row(pane string, fl, hs, ht float64) results.StressRow {
	return results.StressRow{Pane: pane, UtilisationFloat: fl, UtilisationHS: hs, UtilisationHT: ht}
}

func TestSuitableGrade(t *testing.T) {
	tests := []struct {
		name string
		rows []results.StressRow
		want optimization.Grade
	}{
		{"no rows", nil, optimization.GradeNone},
		{"float", []results.StressRow{row("External", 0.4, 0.3, 0.1), row("External", 1.0, 0.6, 0.4)}, optimization.GradeFloat},
		{"heat strengthened", []results.StressRow{row("External", 0.4, 0.3, 0.1), row("External", 1.2, 0.8, 0.5)}, optimization.GradeHeatStrengthened},
		{"heat treated", []results.StressRow{row("External", 2.5, 1.6, 0.9)}, optimization.GradeHeatTreated},
		{"none", []results.StressRow{row("External", 3, 2, 1.1)}, optimization.GradeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuitableGrade(tt.rows, 1.0))
		})
	}
}

func TestStressAcceptable(t *testing.T) {
	tables := &results.Tables{Stress: []results.StressRow{
		row("External", 0.5, 0.3, 0.2),
		row("Internal", 1.3, 0.9, 0.5),
	}}

	s := optimization.DefaultSettings()
	assert.True(t, StressAcceptable(tables, buildup.Double, s))
	assert.False(t, StressAcceptable(tables, buildup.Triple, s), "middle pane has no rows")

	s.Internal.Grade = optimization.GradeFloatOnly
	assert.False(t, StressAcceptable(tables, buildup.Double, s))
	assert.True(t, StressAcceptable(tables, buildup.Single, s), "single only checks the external pane")

	s.Internal.Grade = optimization.GradeFloatOrHeatStrengthened
	assert.True(t, StressAcceptable(tables, buildup.Double, s))
}
