package job

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/errors"
	"github.com/copyleftdev/glassopt/internal/loads"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/optimization/genetic"
	"github.com/copyleftdev/glassopt/internal/oracle"
	"github.com/copyleftdev/glassopt/internal/preflight"
)

type constantPredictor struct{}

func (constantPredictor) Predict(_ context.Context, b oracle.Batches) ([]oracle.Response, []oracle.Response, error) {
	answer := func(reqs []oracle.Request, v float64) []oracle.Response {
		out := make([]oracle.Response, len(reqs))
		for i, r := range reqs {
			out[i] = oracle.Response{Key: r.Key, Value: v}
		}
		return out
	}
	return answer(b.Deflection, 0.004), answer(b.Stress, 20e6), nil
}

func TestLoadFile(t *testing.T) {
	j, err := LoadFile(filepath.Join("testdata", "double.yaml"))
	require.NoError(t, err)

	assert.Equal(t, buildup.Double, j.Design.UnitType)
	assert.Equal(t, 2, j.Surfaces.Internal)
	require.Len(t, j.Combinations, 2)
	assert.Equal(t, loads.ULS, j.Combinations[1].Check)
	assert.Equal(t, 1.1, j.Loads["barrier"].Line[0].Z)

	s := j.Settings
	assert.Equal(t, 5.0, s.MaxRunTimeSeconds)
	assert.Equal(t, 0.006, s.MaxAllowedDeflection)
	assert.Equal(t, optimization.LaminateLaminated, s.Internal.Laminate)
	assert.Equal(t, optimization.GradeFloatOrHeatStrengthened, s.Internal.Grade)
	assert.Equal(t, int64(11), s.Seed)

	defaults := optimization.DefaultSettings()
	assert.Equal(t, defaults.MinPopulation, s.MinPopulation, "unset fields keep defaults")
	assert.Equal(t, defaults.AllowableStress, s.AllowableStress)

	assert.NoError(t, j.Preflight(preflight.DefaultLimits()))
}

func TestDecodeRejectsIncompleteJobs(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no design", "combinations: [{id: 1, check: SLS}]"},
		{"no combinations", "design: {width: 1, height: 1, unit_type: single}"},
		{"duplicate combinations", "design: {width: 1, height: 1, unit_type: single}\ncombinations: [{id: 1}, {id: 1}]"},
		{"bad unit type", "design: {unit_type: quadruple}"},
		{"bad settings", "design: {width: 1, height: 1, unit_type: single}\ncombinations: [{id: 1}]\nsettings: {min_population: 1}"},
		{"no surfaces", "design: {width: 1, height: 1, unit_type: single}\ncombinations: [{id: 1}]"},
		{"missing internal surface", "design: {width: 1, height: 1, unit_type: double}\nsurfaces: {external: 1}\ncombinations: [{id: 1}]"},
		{"shear transfer out of range", "design: {width: 1, height: 1, unit_type: single}\nsurfaces: {external: 1}\ncombinations: [{id: 1}]\nshear_transfer: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsKind(err, errors.KindInput), "got %v", err)
		})
	}
}

func TestLoadFileWithDefaults(t *testing.T) {
	defaults := optimization.DefaultSettings()
	defaults.MinPopulation = 6
	defaults.MaxPopulation = 12
	defaults.MaxRunTimeSeconds = 60

	j, err := LoadFileWith(filepath.Join("testdata", "double.yaml"), defaults)
	require.NoError(t, err)
	assert.Equal(t, 6, j.Settings.MinPopulation, "unset fields take the given defaults")
	assert.Equal(t, 12, j.Settings.MaxPopulation)
	assert.Equal(t, 5.0, j.Settings.MaxRunTimeSeconds, "file values win over defaults")

	_, err = LoadFileWith(filepath.Join("testdata", "missing.yaml"), defaults)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInput))
}

func TestDecodeJSON(t *testing.T) {
	doc := `{
		"design": {"width": 1.0, "height": 2.0, "unit_type": "single", "external": {"layer1": 0.01, "monolithic": true}},
		"surfaces": {"external": 1},
		"combinations": [{"id": 1, "check": "SLS", "factors": [{"case": "wind", "factor": 1}]}],
		"settings": {"max_run_time_seconds": 3}
	}`
	j, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, buildup.Single, j.Design.UnitType)
	assert.Equal(t, 3.0, j.Settings.MaxRunTimeSeconds)
	assert.Equal(t, 40, j.Settings.MaxPopulation)
}

func TestPreflightFailure(t *testing.T) {
	j, err := LoadFile(filepath.Join("testdata", "double.yaml"))
	require.NoError(t, err)
	j.Design.Width = 3.5
	j.PointLoad.Height = 0.5

	err = j.Preflight(preflight.DefaultLimits())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInput))
	assert.Contains(t, err.Error(), "Maximum supported unit width is 3m.")
	assert.Contains(t, err.Error(), "Point load must be located in the centre of the unit.")
}

func TestRunAndWriteResults(t *testing.T) {
	j, err := LoadFile(filepath.Join("testdata", "double.yaml"))
	require.NoError(t, err)
	j.Settings.MaxRunTimeSeconds = 2
	j.Settings.MaxStagnantGenerations = 2

	sink := &genetic.MemorySink{}
	var reports int
	d, err := j.NewDriver(Deps{
		Predictor:    constantPredictor{},
		Sink:         sink,
		OnGeneration: func(optimization.GenerationReport) { reports++ },
	})
	require.NoError(t, err)

	res, err := d.Optimize(context.Background(), j.Design)
	require.NoError(t, err)
	require.True(t, res.Accepted)
	assert.Equal(t, reports, res.Generations)
	assert.Equal(t, "Optimization Started!", sink.Lines()[0])

	dir := t.TempDir()
	require.NoError(t, WriteResults(dir, res))

	defl, err := os.ReadFile(filepath.Join(dir, DeflectionFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(defl), "combination,pane,surface,deflection_m\n"))
	assert.Contains(t, string(defl), "1,External,1,0.004")

	gens, err := os.ReadFile(filepath.Join(dir, GenerationsFile))
	require.NoError(t, err)
	assert.Equal(t, res.Generations+1, strings.Count(string(gens), "\n"))

	_, err = os.Stat(filepath.Join(dir, StressFile))
	assert.NoError(t, err)
}
