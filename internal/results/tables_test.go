package results

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTables() *Tables {
	return &Tables{
		Deflection: []DeflectionRow{
			{Combination: 1, Pane: "External", Surface: 1, Deflection: 0.004},
			{Combination: 1, Pane: "Internal", Surface: 2, Deflection: 0.0055},
		},
		Stress: []StressRow{
			{Combination: 2, Pane: "External", Surface: 1, Stress: 20e6, UtilisationFloat: 0.44},
			{Combination: 2, Pane: "Internal", Surface: 2, Stress: 30e6, UtilisationFloat: 0.67},
			{Combination: 3, Pane: "Internal", Surface: 2, Stress: 10e6, UtilisationFloat: 0.22},
		},
	}
}

func TestMaxDeflection(t *testing.T) {
	assert.Equal(t, 0.0055, sampleTables().MaxDeflection())
	assert.Zero(t, (&Tables{}).MaxDeflection())
}

func TestStressFor(t *testing.T) {
	rows := sampleTables().StressFor("Internal")
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Combination)
	assert.Empty(t, sampleTables().StressFor("Middle"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTables().Deflection))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "combination,pane,surface,deflection_m", lines[0])
	assert.Equal(t, "1,External,1,0.004", lines[1])

	buf.Reset()
	require.NoError(t, AppendCSV(&buf, sampleTables().Stress[:1]))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.True(t, strings.HasPrefix(buf.String(), "2,External,1,"))
}
