package optimization

import (
	"context"
	"time"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/results"
)

// Optimizer defines the interface for buildup search algorithms
type Optimizer interface {
	// Optimize runs the search and writes the best design found onto base.
	Optimize(ctx context.Context, base *buildup.Design) (*Result, error)

	// BestDesign returns the best decoded design found so far
	BestDesign() *buildup.Design

	// History returns one report per completed generation
	History() []GenerationReport

	// Stop asks the search to end at the next generation boundary
	Stop()
}

// Outcome says why a run ended.
type Outcome string

const (
	OutcomeTimeBudget Outcome = "time_budget"
	OutcomeStagnation Outcome = "stagnation"
	OutcomeStopped    Outcome = "stopped_by_user"
	OutcomeFailed     Outcome = "failed"
)

// GenerationReport is emitted after every generation.
type GenerationReport struct {
	Generation      int     `json:"generation" csv:"generation"`
	ElapsedSeconds  float64 `json:"elapsed_seconds" csv:"elapsed_s"`
	BestFitness     float64 `json:"best_fitness" csv:"best_fitness"`
	MeanFitness     float64 `json:"mean_fitness" csv:"mean_fitness"`
	BestThicknessMM float64 `json:"best_thickness_mm" csv:"best_thickness_mm"`
	Accepted        int     `json:"accepted" csv:"accepted"`
	Population      int     `json:"population" csv:"population"`
	Buildup         string  `json:"buildup" csv:"buildup"`
}

// Result contains the result of an optimization run
type Result struct {
	Best          *buildup.Design    `json:"best"`
	BestFitness   float64            `json:"best_fitness"`
	BestThickness float64            `json:"best_thickness"`
	Accepted      bool               `json:"accepted"`
	Tables        *results.Tables    `json:"tables,omitempty"`
	Generations   int                `json:"generations"`
	Elapsed       time.Duration      `json:"elapsed"`
	Outcome       Outcome            `json:"outcome"`
	History       []GenerationReport `json:"history"`
}
