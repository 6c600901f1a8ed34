package fitness

import (
	"context"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/geometry"
	"github.com/copyleftdev/glassopt/internal/loads"
	"github.com/copyleftdev/glassopt/internal/metrics"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/optimization/genome"
	"github.com/copyleftdev/glassopt/internal/oracle"
	"github.com/copyleftdev/glassopt/internal/results"
)

// Predictor answers the deflection and stress batches of one design.
// *oracle.Client implements it.
type Predictor interface {
	Predict(ctx context.Context, b oracle.Batches) (deflection, stress []oracle.Response, err error)
}

// Config wires an evaluator to the collaborators of one run.
type Config struct {
	Base         *buildup.Design
	Settings     optimization.Settings
	Geometry     geometry.Model
	Aggregator   *loads.Aggregator
	Combinations []loads.Combination
	Loads        loads.Table
	Predictor    Predictor
}

// Evaluator scores individuals against the configured unit and loads.
type Evaluator struct {
	cfg Config
}

// NewEvaluator checks the wiring and returns an evaluator.
func NewEvaluator(cfg Config) (*Evaluator, error) {
	switch {
	case cfg.Base == nil:
		return nil, optimization.NewError("base design is required").WithComponent("fitness")
	case cfg.Geometry == nil:
		return nil, optimization.NewError("geometry model is required").WithComponent("fitness")
	case cfg.Predictor == nil:
		return nil, optimization.NewError("predictor is required").WithComponent("fitness")
	}
	if cfg.Aggregator == nil {
		cfg.Aggregator = loads.NewAggregator(loads.DefaultConfig())
	}
	return &Evaluator{cfg: cfg}, nil
}

// Evaluate scores in and records the outcome on it. A rejected design is
// not an error: it scores optimization.RejectedFitness. An error means
// the structural response could not be obtained and the run must end.
//
// The policy override is applied to the genotype in place, so the stored
// genotype always matches the design that was scored.
func (e *Evaluator) Evaluate(ctx context.Context, in *genome.Individual) (float64, error) {
	in.Evaluated = true
	in.Fitness = optimization.RejectedFitness
	in.Tables = nil

	genome.ApplyPolicy(&in.Genotype, e.cfg.Settings)
	design := genome.Decode(in.Genotype, e.cfg.Base)

	if !Acceptable(design, e.cfg.Settings) {
		metrics.Evaluations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return in.Fitness, nil
	}

	tables, err := e.Response(ctx, design)
	if err != nil {
		metrics.Evaluations.WithLabelValues(metrics.OutcomeFailed).Inc()
		return in.Fitness, err
	}

	if tables.MaxDeflection() > e.cfg.Settings.MaxAllowedDeflection ||
		!StressAcceptable(tables, design.UnitType, e.cfg.Settings) {
		metrics.Evaluations.WithLabelValues(metrics.OutcomeRejected).Inc()
		return in.Fitness, nil
	}

	in.Tables = tables
	in.Fitness = optimization.MaxFitness - design.TotalThickness()
	metrics.Evaluations.WithLabelValues(metrics.OutcomeAccepted).Inc()
	return in.Fitness, nil
}

// Response predicts the deflection and stress tables of a decoded design.
func (e *Evaluator) Response(ctx context.Context, design *buildup.Design) (*results.Tables, error) {
	panes, err := e.cfg.Geometry.Panes(design)
	if err != nil {
		return nil, optimization.WrapError(err, "building pane geometry").
			WithComponent("fitness").WithOperation("evaluate")
	}

	batches := oracle.NewBatches(e.cfg.Aggregator, e.cfg.Combinations, panes, e.cfg.Loads)
	deflection, stress, err := e.cfg.Predictor.Predict(ctx, batches)
	if err != nil {
		return nil, optimization.WrapError(err, "predicting structural response").
			WithComponent("fitness").WithOperation("evaluate")
	}

	allow := e.cfg.Settings.AllowableStress
	tables := &results.Tables{
		Deflection: make([]results.DeflectionRow, 0, len(deflection)),
		Stress:     make([]results.StressRow, 0, len(stress)),
	}
	for _, r := range deflection {
		tables.Deflection = append(tables.Deflection, results.DeflectionRow{
			Combination: r.Key.Combination,
			Pane:        r.Key.Location.String(),
			Surface:     r.Key.SurfaceID,
			Deflection:  r.Value,
		})
	}
	for _, r := range stress {
		tables.Stress = append(tables.Stress, results.StressRow{
			Combination:      r.Key.Combination,
			Pane:             r.Key.Location.String(),
			Surface:          r.Key.SurfaceID,
			Stress:           r.Value,
			UtilisationFloat: r.Value / allow.Float,
			UtilisationHS:    r.Value / allow.HeatStrengthened,
			UtilisationHT:    r.Value / allow.HeatTreated,
		})
	}
	return tables, nil
}

// Design decodes a genotype onto the configured base design, policy
// override included.
func (e *Evaluator) Design(g genome.Genotype) *buildup.Design {
	genome.ApplyPolicy(&g, e.cfg.Settings)
	return genome.Decode(g, e.cfg.Base)
}
