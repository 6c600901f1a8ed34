package buildup

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doubleUnit() Design {
	return Design{
		Width:    1.2,
		Height:   2.4,
		UnitType: Double,
		External: Pane{Layer1: 0.008, Layer2: 0.006, Monolithic: true},
		Internal: Pane{Layer1: 0.004, Layer2: 0.004},
		Cavity1:  0.012,
		Cavity2:  0.016,
	}
}

func TestTotalThickness(t *testing.T) {
	tests := []struct {
		name   string
		design Design
		want   float64
	}{
		{
			name:   "double ignores second layer of monolithic pane",
			design: doubleUnit(),
			want:   0.016,
		},
		{
			name: "single counts only the external pane",
			design: Design{
				UnitType: Single,
				External: Pane{Layer1: 0.006, Layer2: 0.006},
				Internal: Pane{Layer1: 0.012, Monolithic: true},
			},
			want: 0.012,
		},
		{
			name: "triple counts the middle pane",
			design: Design{
				UnitType: Triple,
				External: Pane{Layer1: 0.006, Monolithic: true},
				Middle:   Pane{Layer1: 0.004, Monolithic: true},
				Internal: Pane{Layer1: 0.005, Layer2: 0.005},
			},
			want: 0.020,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.design.TotalThickness(), 1e-12)
		})
	}
}

func TestTotalThicknessIgnoresCavities(t *testing.T) {
	d := doubleUnit()
	before := d.TotalThickness()

	d.Cavity1 = 0.020
	d.Cavity2 = 0.008
	assert.Equal(t, before, d.TotalThickness())
}

func TestCavityTotal(t *testing.T) {
	d := doubleUnit()
	assert.InDelta(t, 0.012, d.CavityTotal(), 1e-12)

	d.UnitType = Triple
	assert.InDelta(t, 0.028, d.CavityTotal(), 1e-12)

	d.UnitType = Single
	assert.Zero(t, d.CavityTotal())
}

func TestDescription(t *testing.T) {
	d := doubleUnit()
	assert.Equal(t, "8 | 12 | 4+4", d.Description())

	d.UnitType = Triple
	d.Middle = Pane{Layer1: 0.005, Monolithic: true}
	assert.Equal(t, "8 | 12 | 5 | 16 | 4+4", d.Description())
}

func TestCopyBuildupFromKeepsGeometry(t *testing.T) {
	dst := doubleUnit()
	src := Design{
		Width:    9,
		Height:   9,
		UnitType: Triple,
		External: Pane{Layer1: 0.010, Monolithic: true},
		Cavity1:  0.020,
	}

	dst.CopyBuildupFrom(&src)

	assert.Equal(t, 1.2, dst.Width)
	assert.Equal(t, 2.4, dst.Height)
	assert.Equal(t, Double, dst.UnitType)
	assert.Equal(t, src.External, dst.External)
	assert.Equal(t, 0.020, dst.Cavity1)
}

func TestUnitTypeText(t *testing.T) {
	var d Design
	require.NoError(t, json.Unmarshal([]byte(`{"unit_type":"Triple"}`), &d))
	assert.Equal(t, Triple, d.UnitType)

	out, err := json.Marshal(Design{UnitType: Balustrade})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"unit_type":"balustrade"`)

	assert.Error(t, json.Unmarshal([]byte(`{"unit_type":"quad"}`), &d))
}

func TestLocations(t *testing.T) {
	assert.Equal(t, []PaneLocation{External}, Balustrade.Locations())
	assert.Equal(t, []PaneLocation{External, Internal}, Double.Locations())
	assert.Equal(t, []PaneLocation{External, Middle, Internal}, Triple.Locations())
}
