// Package genetic runs the evolutionary search over glass buildups.
package genetic

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/logging"
	"github.com/copyleftdev/glassopt/internal/metrics"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/optimization/genome"
)

// Progress lines.
const (
	lineStarted = "Optimization Started!"
	lineStopped = "Optimization stopped!"
	lineByUser  = "Optimization stopped by user!"
)

// tournamentSize is the number of contestants per parent draw.
const tournamentSize = 2

// Evaluator scores one individual. *fitness.Evaluator implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, in *genome.Individual) (float64, error)
}

// Config wires a driver.
type Config struct {
	Settings  optimization.Settings
	Evaluator Evaluator
	// Sink receives the progress lines; nil discards them.
	Sink Sink
	// Logger receives structured entries; nil discards them.
	Logger *logging.Logger
	// OnGeneration is called synchronously after every generation.
	OnGeneration func(optimization.GenerationReport)
}

// Driver implements optimization.Optimizer with a generational genetic
// algorithm. One driver runs one search.
type Driver struct {
	cfg     Config
	rng     *rand.Rand
	stopped atomic.Bool

	mu      sync.RWMutex
	best    *genome.Individual
	design  *buildup.Design
	history []optimization.GenerationReport
}

var _ optimization.Optimizer = (*Driver)(nil)

// NewDriver validates the settings and creates a driver.
func NewDriver(cfg Config) (*Driver, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}
	if cfg.Evaluator == nil {
		return nil, optimization.NewError("evaluator is required").WithComponent("driver")
	}
	if cfg.Sink == nil {
		cfg.Sink = discard{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New(logging.ErrorLevel, io.Discard)
	}

	seed := uint64(cfg.Settings.Seed)
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Driver{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed)),
	}, nil
}

// Optimize runs the search until the time budget is spent, the best
// fitness stagnates, ctx is cancelled or Stop is called. Cancellation is
// checked between generations only; an evaluation in flight completes.
//
// The best design found is written onto base. When an evaluation fails
// the run ends, the failure is logged and returned together with the
// result obtained so far.
func (d *Driver) Optimize(ctx context.Context, base *buildup.Design) (*optimization.Result, error) {
	s := d.cfg.Settings
	log := d.cfg.Logger.Named("driver")
	start := time.Now()
	deadline := start.Add(s.RunTime())
	evalCtx := context.WithoutCancel(ctx)

	d.cfg.Sink.LogLine(lineStarted)
	log.Info("optimization started", map[string]interface{}{
		"unit_type":      base.UnitType.String(),
		"min_population": s.MinPopulation,
		"max_population": s.MaxPopulation,
		"budget_s":       s.MaxRunTimeSeconds,
	})

	var (
		population []*genome.Individual
		bestSoFar  = math.Inf(-1)
		stagnant   int
		outcome    optimization.Outcome
		runErr     error
	)

	for generation := 1; ; generation++ {
		if d.cancelled(ctx) {
			d.cfg.Sink.LogLine(lineByUser)
			outcome = optimization.OutcomeStopped
			break
		}
		if !time.Now().Before(deadline) {
			d.cfg.Sink.LogLine(lineStopped)
			outcome = optimization.OutcomeTimeBudget
			break
		}
		if s.MaxStagnantGenerations > 0 && stagnant >= s.MaxStagnantGenerations {
			d.cfg.Sink.LogLine(lineStopped)
			outcome = optimization.OutcomeStagnation
			break
		}

		next, complete, err := d.evolve(evalCtx, population, deadline)
		if err != nil {
			runErr = optimization.WrapError(err, "evaluation failed").
				WithComponent("driver").WithOperation("optimize").WithGeneration(generation)
			d.cfg.Sink.LogLine("Error: " + err.Error())
			log.WithError(err).Error("optimization failed", map[string]interface{}{"generation": generation})
			outcome = optimization.OutcomeFailed
			break
		}
		if !complete {
			// The budget ran out mid-generation. Whatever was scored is
			// reported as the last generation.
			if next != nil {
				population = next
				d.report(generation, time.Since(start), population, base)
			}
			d.cfg.Sink.LogLine(lineStopped)
			outcome = optimization.OutcomeTimeBudget
			break
		}
		population = next

		leader := population[0]
		if leader.Fitness > bestSoFar {
			bestSoFar = leader.Fitness
			stagnant = 0
		} else {
			stagnant++
		}
		d.report(generation, time.Since(start), population, base)
	}

	result := d.finish(base, time.Since(start), outcome)
	metrics.Runs.WithLabelValues(string(outcome)).Inc()
	log.Info("optimization finished", map[string]interface{}{
		"outcome":     string(outcome),
		"generations": result.Generations,
		"accepted":    result.Accepted,
		"thickness_m": result.BestThickness,
	})
	return result, runErr
}

// evolve produces the next population, sorted best first. The first call
// creates and scores MinPopulation random individuals. Later calls breed
// MinPopulation offspring and keep the best of parents and offspring up to
// MaxPopulation. complete is false when the deadline passed before the
// generation was fully scored; next then holds the merge of what was
// scored, or nil when nothing was.
func (d *Driver) evolve(ctx context.Context, parents []*genome.Individual, deadline time.Time) (next []*genome.Individual, complete bool, err error) {
	s := d.cfg.Settings
	offspring := make([]*genome.Individual, 0, s.MinPopulation)

	for len(offspring) < s.MinPopulation {
		if !time.Now().Before(deadline) {
			if len(offspring) == 0 {
				return nil, false, nil
			}
			return d.reinsert(parents, offspring), false, nil
		}

		var child genome.Genotype
		if len(parents) == 0 {
			child = genome.Random(d.rng)
		} else {
			a, b := d.tournament(parents), d.tournament(parents)
			child = genome.Crossover(a.Genotype, b.Genotype, optimization.CrossoverRate, d.rng)
			genome.Mutate(&child, optimization.MutationRate, d.rng)
		}

		in := genome.NewIndividual(child)
		if _, err := d.cfg.Evaluator.Evaluate(ctx, in); err != nil {
			return nil, false, err
		}
		offspring = append(offspring, in)
	}

	return d.reinsert(parents, offspring), true, nil
}

// reinsert merges parents and offspring, best first, capped at MaxPopulation.
func (d *Driver) reinsert(parents, offspring []*genome.Individual) []*genome.Individual {
	next := append(slices.Clone(parents), offspring...)
	slices.SortStableFunc(next, func(a, b *genome.Individual) int {
		return cmp.Compare(b.Fitness, a.Fitness)
	})
	if len(next) > d.cfg.Settings.MaxPopulation {
		next = next[:d.cfg.Settings.MaxPopulation]
	}
	return next
}

// tournament draws tournamentSize individuals with replacement and
// returns the fittest.
func (d *Driver) tournament(pool []*genome.Individual) *genome.Individual {
	winner := pool[d.rng.IntN(len(pool))]
	for i := 1; i < tournamentSize; i++ {
		c := pool[d.rng.IntN(len(pool))]
		if c.Fitness > winner.Fitness {
			winner = c
		}
	}
	return winner
}

// report records the generation and copies the current best onto base.
func (d *Driver) report(generation int, elapsed time.Duration, population []*genome.Individual, base *buildup.Design) {
	leader := population[0]
	design := genome.Decode(leader.Genotype, base)
	base.CopyBuildupFrom(design)

	fitnesses := make([]float64, len(population))
	accepted := 0
	for i, in := range population {
		fitnesses[i] = in.Fitness
		if in.Accepted() {
			accepted++
		}
	}

	thicknessMM := roundTenth(design.TotalThickness() * 1000)
	rep := optimization.GenerationReport{
		Generation:      generation,
		ElapsedSeconds:  elapsed.Seconds(),
		BestFitness:     leader.Fitness,
		MeanFitness:     stat.Mean(fitnesses, nil),
		BestThicknessMM: thicknessMM,
		Accepted:        accepted,
		Population:      len(population),
		Buildup:         design.Description(),
	}

	d.mu.Lock()
	d.best = leader
	d.design = design
	d.history = append(d.history, rep)
	d.mu.Unlock()

	metrics.Generations.Inc()
	metrics.BestThickness.Set(design.TotalThickness())

	d.cfg.Sink.LogLine(fmt.Sprintf("Generation: %d | Total thickness: %smm",
		generation, strconv.FormatFloat(thicknessMM, 'f', -1, 64)))
	d.cfg.Sink.LogLine(fmt.Sprintf("Time: %s | Buildup: %s", formatElapsed(elapsed), rep.Buildup))

	if d.cfg.OnGeneration != nil {
		d.cfg.OnGeneration(rep)
	}
}

func (d *Driver) finish(base *buildup.Design, elapsed time.Duration, outcome optimization.Outcome) *optimization.Result {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := &optimization.Result{
		Best:        base,
		BestFitness: optimization.RejectedFitness,
		Generations: len(d.history),
		Elapsed:     elapsed,
		Outcome:     outcome,
		History:     slices.Clone(d.history),
	}
	if d.best != nil {
		base.CopyBuildupFrom(d.design)
		result.BestFitness = d.best.Fitness
		result.BestThickness = d.design.TotalThickness()
		result.Accepted = d.best.Accepted()
		result.Tables = d.best.Tables
	}
	return result
}

func (d *Driver) cancelled(ctx context.Context) bool {
	return d.stopped.Load() || ctx.Err() != nil
}

// BestDesign returns the best decoded design so far, nil before the first
// generation completes.
func (d *Driver) BestDesign() *buildup.Design {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.design == nil {
		return nil
	}
	c := *d.design
	return &c
}

// History returns the report of every completed generation.
func (d *Driver) History() []optimization.GenerationReport {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.history)
}

// Stop asks the search to end at the next generation boundary.
func (d *Driver) Stop() {
	d.stopped.Store(true)
}

// formatElapsed renders a duration as mm:ss.f.
func formatElapsed(e time.Duration) string {
	tenths := int64(e / (100 * time.Millisecond))
	return fmt.Sprintf("%02d:%02d.%d", tenths/600, (tenths/10)%60, tenths%10)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
