// Package job describes one optimization request: the unit to optimize,
// its loads and the search policy. It wires those into a ready driver.
package job

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/errors"
	"github.com/copyleftdev/glassopt/internal/geometry"
	"github.com/copyleftdev/glassopt/internal/loads"
	"github.com/copyleftdev/glassopt/internal/logging"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/optimization/fitness"
	"github.com/copyleftdev/glassopt/internal/optimization/genetic"
	"github.com/copyleftdev/glassopt/internal/preflight"
	"github.com/copyleftdev/glassopt/internal/results"
)

// PointLoad locates the concentrated load applied to the unit, if any.
type PointLoad struct {
	Size   float64 `json:"size" yaml:"size"`
	Height float64 `json:"height" yaml:"height"`
}

// Job is a complete optimization request.
type Job struct {
	Design        *buildup.Design       `json:"design" yaml:"design"`
	Surfaces      geometry.Surfaces     `json:"surfaces" yaml:"surfaces"`
	ShearTransfer float64               `json:"shear_transfer" yaml:"shear_transfer"`
	Combinations  []loads.Combination   `json:"combinations" yaml:"combinations"`
	Loads         loads.Table           `json:"loads" yaml:"loads"`
	PointLoad     PointLoad             `json:"point_load" yaml:"point_load"`
	Settings      optimization.Settings `json:"settings" yaml:"settings"`
}

// New returns a job carrying the default settings.
func New() *Job {
	return &Job{Settings: optimization.DefaultSettings()}
}

// LoadFile reads a YAML job file.
func LoadFile(path string) (*Job, error) {
	return LoadFileWith(path, optimization.DefaultSettings())
}

// LoadFileWith reads a YAML job file whose settings start from defaults.
func LoadFileWith(path string, defaults optimization.Settings) (*Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindInput, "opening job file %s", path)
	}
	defer f.Close()
	return DecodeWith(f, defaults)
}

// Decode reads a YAML job. Fields left out keep their defaults.
func Decode(r io.Reader) (*Job, error) {
	return DecodeWith(r, optimization.DefaultSettings())
}

// DecodeWith reads a YAML job whose settings start from defaults.
func DecodeWith(r io.Reader, defaults optimization.Settings) (*Job, error) {
	return decode(defaults, func(j *Job) error {
		return yaml.NewDecoder(r).Decode(j)
	})
}

// DecodeJSON reads a JSON job as posted to the API.
func DecodeJSON(r io.Reader) (*Job, error) {
	return DecodeJSONWith(r, optimization.DefaultSettings())
}

// DecodeJSONWith reads a JSON job whose settings start from defaults.
func DecodeJSONWith(r io.Reader, defaults optimization.Settings) (*Job, error) {
	return decode(defaults, func(j *Job) error {
		return json.NewDecoder(r).Decode(j)
	})
}

func decode(defaults optimization.Settings, unmarshal func(*Job) error) (*Job, error) {
	j := &Job{Settings: defaults}
	if err := unmarshal(j); err != nil {
		return nil, errors.Wrap(err, errors.KindInput, "decoding job").WithComponent("job")
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

// Validate checks the job is complete and consistent.
func (j *Job) Validate() error {
	if j.Design == nil {
		return errors.New(errors.KindInput, "job has no design").WithComponent("job")
	}
	if len(j.Combinations) == 0 {
		return errors.New(errors.KindInput, "job has no load combinations").WithComponent("job")
	}
	if err := loads.Validate(j.Combinations); err != nil {
		return errors.Wrap(err, errors.KindInput, "invalid combinations").WithComponent("job")
	}
	if err := j.Settings.Validate(); err != nil {
		return errors.Wrap(err, errors.KindInput, "invalid settings").WithComponent("job")
	}
	if err := j.Surfaces.Check(j.Design.UnitType); err != nil {
		return errors.Wrap(err, errors.KindInput, "invalid surfaces").WithComponent("job")
	}
	if j.ShearTransfer < 0 || j.ShearTransfer > 1 {
		return errors.Errorf(errors.KindInput, "shear transfer coefficient %g outside [0, 1]", j.ShearTransfer).
			WithComponent("job")
	}
	return nil
}

// Preflight checks the job against the supported input range.
func (j *Job) Preflight(lim preflight.Limits) error {
	return preflight.Error(preflight.Validate(preflight.Input{
		Design:             j.Design,
		LineLoadMagnitude:  j.Loads.MaxLineMagnitude(),
		PointLoadMagnitude: j.Loads.MaxPointMagnitude(lim.PointLoadSize),
		PointLoadSize:      j.PointLoad.Size,
		PointLoadHeight:    j.PointLoad.Height,
	}, lim))
}

// Deps are the run-independent collaborators of a driver.
type Deps struct {
	Predictor    fitness.Predictor
	Loads        loads.Config
	Sink         genetic.Sink
	Logger       *logging.Logger
	OnGeneration func(optimization.GenerationReport)
}

// NewDriver builds the evaluator and driver of this job. The job's design
// is the base every genotype decodes onto.
func (j *Job) NewDriver(deps Deps) (*genetic.Driver, error) {
	if deps.Loads.PointLoadSize == 0 {
		deps.Loads = loads.DefaultConfig()
	}
	eval, err := fitness.NewEvaluator(fitness.Config{
		Base:         j.Design,
		Settings:     j.Settings,
		Geometry:     geometry.NewLaminated(j.Surfaces, j.ShearTransfer),
		Aggregator:   loads.NewAggregator(deps.Loads),
		Combinations: j.Combinations,
		Loads:        j.Loads,
		Predictor:    deps.Predictor,
	})
	if err != nil {
		return nil, err
	}
	return genetic.NewDriver(genetic.Config{
		Settings:     j.Settings,
		Evaluator:    eval,
		Sink:         deps.Sink,
		Logger:       deps.Logger,
		OnGeneration: deps.OnGeneration,
	})
}

// Result file names written by WriteResults.
const (
	DeflectionFile  = "deflection.csv"
	StressFile      = "stress.csv"
	GenerationsFile = "generations.csv"
)

// WriteResults writes the result tables and the generation history of a
// run into dir. Tables are only written for an accepted design.
func WriteResults(dir string, res *optimization.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, GenerationsFile), res.History); err != nil {
		return err
	}
	if res.Tables == nil {
		return nil
	}
	if err := writeFile(filepath.Join(dir, DeflectionFile), res.Tables.Deflection); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, StressFile), res.Tables.Stress)
}

func writeFile(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := results.WriteCSV(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
