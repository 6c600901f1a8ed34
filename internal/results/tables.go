// Package results holds the structural response tables attached to an
// accepted design and exports them as CSV.
package results

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// DeflectionRow is the predicted deflection of one pane under one
// serviceability combination.
type DeflectionRow struct {
	Combination int     `json:"combination" csv:"combination"`
	Pane        string  `json:"pane" csv:"pane"`
	Surface     int     `json:"surface" csv:"surface"`
	Deflection  float64 `json:"deflection_m" csv:"deflection_m"`
}

// StressRow is the predicted stress of one pane under one ultimate
// combination, with its utilisation under each glass grade.
type StressRow struct {
	Combination      int     `json:"combination" csv:"combination"`
	Pane             string  `json:"pane" csv:"pane"`
	Surface          int     `json:"surface" csv:"surface"`
	Stress           float64 `json:"stress_pa" csv:"stress_pa"`
	UtilisationFloat float64 `json:"utilisation_float" csv:"utilisation_float"`
	UtilisationHS    float64 `json:"utilisation_hs" csv:"utilisation_hs"`
	UtilisationHT    float64 `json:"utilisation_ht" csv:"utilisation_ht"`
}

// Tables is the full response of one evaluated design.
type Tables struct {
	Deflection []DeflectionRow `json:"deflection"`
	Stress     []StressRow     `json:"stress"`
}

// MaxDeflection returns the governing deflection, zero for an empty table.
func (t *Tables) MaxDeflection() float64 {
	var max float64
	for i, row := range t.Deflection {
		if i == 0 || row.Deflection > max {
			max = row.Deflection
		}
	}
	return max
}

// StressFor returns the stress rows of one pane.
func (t *Tables) StressFor(pane string) []StressRow {
	var rows []StressRow
	for _, row := range t.Stress {
		if row.Pane == pane {
			rows = append(rows, row)
		}
	}
	return rows
}

// WriteCSV writes a slice of tagged rows, header included.
func WriteCSV(w io.Writer, rows interface{}) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// AppendCSV writes rows without a header, for streaming into an open file.
func AppendCSV(w io.Writer, rows interface{}) error {
	if err := gocsv.MarshalWithoutHeaders(rows, w); err != nil {
		return fmt.Errorf("appending csv: %w", err)
	}
	return nil
}
