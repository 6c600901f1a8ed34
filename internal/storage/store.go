// Package storage persists optimization runs and their generation reports.
package storage

import (
	"context"
	"time"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/optimization"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Run is the persisted record of one optimization.
type Run struct {
	ID            string                          `json:"id"`
	Status        Status                          `json:"status"`
	StartedAt     time.Time                       `json:"started_at"`
	FinishedAt    time.Time                       `json:"finished_at,omitempty"`
	Outcome       optimization.Outcome            `json:"outcome,omitempty"`
	Error         string                          `json:"error,omitempty"`
	Best          *buildup.Design                 `json:"best,omitempty"`
	BestThickness float64                         `json:"best_thickness"`
	Accepted      bool                            `json:"accepted"`
	Generations   []optimization.GenerationReport `json:"generations,omitempty"`
}

// Store defines the run history operations.
type Store interface {
	Init(ctx context.Context) error
	// SaveRun creates or replaces the run record. Stored generations are kept.
	SaveRun(ctx context.Context, run Run) error
	// GetRun returns the run with its generations in order.
	GetRun(ctx context.Context, id string) (Run, bool, error)
	AppendGeneration(ctx context.Context, runID string, report optimization.GenerationReport) error
	// ListRuns returns every run without generations, oldest first.
	ListRuns(ctx context.Context) ([]Run, error)
	Close() error
}
