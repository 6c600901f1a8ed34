package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/copyleftdev/glassopt/internal/buildup"
	"github.com/copyleftdev/glassopt/internal/config"
	"github.com/copyleftdev/glassopt/internal/errors"
	"github.com/copyleftdev/glassopt/internal/job"
	"github.com/copyleftdev/glassopt/internal/logging"
	"github.com/copyleftdev/glassopt/internal/optimization"
	"github.com/copyleftdev/glassopt/internal/optimization/fitness"
	"github.com/copyleftdev/glassopt/internal/optimization/genetic"
	"github.com/copyleftdev/glassopt/internal/results"
	"github.com/copyleftdev/glassopt/internal/storage"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

var (
	errNotFound = stderrors.New("optimization not found")
	errBusy     = stderrors.New("too many optimizations running")
)

// OptimizationState represents the state of an optimization job.
// It tracks the progress, status, and results of an optimization process.
// Fields are guarded by the server's optimizationsMu.
type OptimizationState struct {
	ID          string
	Status      storage.Status
	StartTime   time.Time
	EndTime     *time.Time
	Generation  int
	Progress    *genetic.MemorySink
	Optimizer   optimization.Optimizer
	Result      *optimization.Result
	Error       string
	CancelFunc  context.CancelFunc
	LastUpdated time.Time
}

// Server implements the HTTP and JSON-RPC server for the optimization service.
// It manages optimization jobs and provides endpoints to start, monitor, and cancel them.
type Server struct {
	cfg       *config.Config
	logger    Logger
	predictor fitness.Predictor
	store     storage.Store

	// Optimization state management
	optimizations   map[string]*OptimizationState
	optimizationsMu sync.RWMutex // Protects the optimizations map
	running         sync.WaitGroup
}

// NewServer creates a new server instance. The predictor answers every
// run's oracle requests and the store keeps the run history.
func NewServer(cfg *config.Config, logger Logger, predictor fitness.Predictor, store storage.Store) *Server {
	return &Server{
		cfg:           cfg,
		logger:        logger,
		predictor:     predictor,
		store:         store,
		optimizations: make(map[string]*OptimizationState),
	}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/status/{id}", s.handleStatus)
		r.Delete("/optimization/{id}", s.handleCancel)
		r.Get("/results/{id}/{table}.csv", s.handleResults)
		r.Get("/runs", s.handleRuns)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string            `json:"jsonrpc"`
		ID      interface{}       `json:"id"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, -32700, "Parse error", nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" {
		s.respondWithError(w, -32600, "Invalid Request", request.ID)
		return
	}
	if len(request.Params) == 0 {
		s.respondWithError(w, -32602, "Invalid params", request.ID)
		return
	}

	// Route to appropriate handler
	var result interface{}
	var err error

	switch request.Method {
	case "optimization.start":
		var j *job.Job
		j, err = job.DecodeJSONWith(bytes.NewReader(request.Params[0]), s.cfg.DefaultSettings())
		if err == nil {
			result, err = s.startOptimization(j)
		}
	case "optimization.status":
		var id string
		if id, err = optimizationID(request.Params[0]); err == nil {
			result, err = s.optimizationStatus(r.Context(), id)
		}
	case "optimization.cancel":
		var id string
		if id, err = optimizationID(request.Params[0]); err == nil {
			err = s.cancelOptimization(id)
			result = map[string]string{"status": "cancellation requested"}
		}
	default:
		s.respondWithError(w, -32601, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, -32000, err.Error(), request.ID)
		return
	}

	// Send successful response
	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// optimizationID reads {"optimization_id": "..."}.
func optimizationID(raw json.RawMessage) (string, error) {
	var p struct {
		OptimizationID string `json:"optimization_id"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", errors.Wrap(err, errors.KindInput, "invalid parameter format, expected object")
	}
	if p.OptimizationID == "" {
		return "", errors.New(errors.KindInput, "optimization_id is required")
	}
	return p.OptimizationID, nil
}

// startOptimization checks a job and starts its search in the background.
// Returns: {"optimization_id": "<uuid>", "status": "running"}
func (s *Server) startOptimization(j *job.Job) (map[string]interface{}, error) {
	if err := j.Preflight(s.cfg.Limits()); err != nil {
		return nil, err
	}

	s.optimizationsMu.Lock()
	defer s.optimizationsMu.Unlock()

	if limit := s.cfg.Optimization.MaxConcurrentRuns; limit > 0 && s.countRunning() >= limit {
		return nil, errBusy
	}

	id := uuid.NewString()
	now := time.Now()
	state := &OptimizationState{
		ID:          id,
		Status:      storage.StatusRunning,
		StartTime:   now,
		Progress:    &genetic.MemorySink{},
		LastUpdated: now,
	}

	runLogger := s.logger.WithFields(map[string]interface{}{"optimization_id": id})
	driver, err := j.NewDriver(job.Deps{
		Predictor: s.predictor,
		Loads:     s.cfg.LoadsConfig(),
		Sink:      genetic.Tee{state.Progress, genetic.LoggerSink{Logger: runLogger}},
		Logger:    runLogger,
		OnGeneration: func(rep optimization.GenerationReport) {
			s.recordGeneration(state, rep)
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.KindInput, "failed to create optimizer")
	}
	state.Optimizer = driver

	if err := s.store.SaveRun(context.Background(), storage.Run{
		ID:        id,
		Status:    storage.StatusRunning,
		StartedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("saving run: %w", err)
	}

	// Create a cancellable context
	ctx, cancel := context.WithCancel(context.Background())
	state.CancelFunc = cancel
	s.optimizations[id] = state

	s.running.Add(1)
	go s.runOptimization(ctx, state, j.Design)

	return map[string]interface{}{
		"optimization_id": id,
		"status":          state.Status,
	}, nil
}

func (s *Server) countRunning() int {
	n := 0
	for _, st := range s.optimizations {
		if st.Status == storage.StatusRunning {
			n++
		}
	}
	return n
}

func (s *Server) recordGeneration(state *OptimizationState, rep optimization.GenerationReport) {
	s.optimizationsMu.Lock()
	state.Generation = rep.Generation
	state.LastUpdated = time.Now()
	s.optimizationsMu.Unlock()

	if err := s.store.AppendGeneration(context.Background(), state.ID, rep); err != nil {
		s.logger.Warn("Failed to store generation", map[string]interface{}{
			"optimization_id": state.ID,
			"generation":      rep.Generation,
			"error":           err.Error(),
		})
	}
}

// runOptimization executes the optimization process in a goroutine
func (s *Server) runOptimization(ctx context.Context, state *OptimizationState, base *buildup.Design) {
	defer s.running.Done()
	defer state.CancelFunc()

	result, err := state.Optimizer.Optimize(ctx, base)
	if result == nil {
		result = &optimization.Result{Best: base, Outcome: optimization.OutcomeFailed}
	}

	now := time.Now()
	status := storage.StatusCompleted
	var message string
	switch {
	case err != nil:
		status = storage.StatusFailed
		message = err.Error()
		s.logger.Error("Optimization failed", map[string]interface{}{
			"optimization_id": state.ID,
			"error":           message,
		})
	case result.Outcome == optimization.OutcomeStopped:
		status = storage.StatusCancelled
	}

	// The store is written first so a finished status is always listed.
	if err := s.store.SaveRun(context.Background(), storage.Run{
		ID:            state.ID,
		Status:        status,
		StartedAt:     state.StartTime,
		FinishedAt:    now,
		Outcome:       result.Outcome,
		Error:         message,
		Best:          result.Best,
		BestThickness: result.BestThickness,
		Accepted:      result.Accepted,
	}); err != nil {
		s.logger.Error("Failed to store run", map[string]interface{}{
			"optimization_id": state.ID,
			"error":           err.Error(),
		})
	}

	s.optimizationsMu.Lock()
	defer s.optimizationsMu.Unlock()
	state.Result = result
	state.Status = status
	state.Error = message
	state.EndTime = &now
	state.LastUpdated = now
}

// optimizationStatus returns the current status of a job. Runs that are
// no longer held in memory are answered from the store.
func (s *Server) optimizationStatus(ctx context.Context, id string) (map[string]interface{}, error) {
	s.optimizationsMu.RLock()
	state, exists := s.optimizations[id]
	if !exists {
		s.optimizationsMu.RUnlock()
		run, ok, err := s.store.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errNotFound
		}
		return map[string]interface{}{"status": run.Status, "run": run}, nil
	}
	defer s.optimizationsMu.RUnlock()

	response := map[string]interface{}{
		"status":      state.Status,
		"generation":  state.Generation,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
		"progress":    state.Progress.Lines(),
	}

	// Add end time if available
	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Error != "" {
		response["error"] = state.Error
	}

	if res := state.Result; res != nil {
		response["outcome"] = res.Outcome
		response["best"] = res.Best
		response["best_thickness"] = res.BestThickness
		response["accepted"] = res.Accepted
		response["history"] = res.History
	} else if best := state.Optimizer.BestDesign(); best != nil {
		response["current_best"] = best
		response["current_buildup"] = best.Description()
	}

	return response, nil
}

// cancelOptimization asks a running job to stop at its next generation
// boundary.
func (s *Server) cancelOptimization(id string) error {
	s.optimizationsMu.RLock()
	defer s.optimizationsMu.RUnlock()

	state, exists := s.optimizations[id]
	if !exists {
		return errNotFound
	}
	if state.Status != storage.StatusRunning {
		// Already in a terminal state
		return errors.Errorf(errors.KindInput, "cannot cancel optimization with status: %s", state.Status)
	}

	state.Optimizer.Stop()
	state.CancelFunc()

	s.logger.Info("Optimization cancellation requested", map[string]interface{}{
		"optimization_id": id,
	})
	return nil
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  code,
		"message": message,
	})

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// Close cancels every running job and waits for them to finish.
func (s *Server) Close() error {
	s.optimizationsMu.RLock()
	for _, opt := range s.optimizations {
		if opt.CancelFunc != nil {
			opt.CancelFunc()
		}
	}
	s.optimizationsMu.RUnlock()

	s.running.Wait()
	return nil
}

// handleOptimize handles POST /api/v1/optimize with a JSON job body.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	j, err := job.DecodeJSONWith(r.Body, s.cfg.DefaultSettings())
	if err != nil {
		s.respondJSON(w, statusFor(err), map[string]interface{}{"error": err.Error()})
		return
	}

	result, err := s.startOptimization(j)
	if err != nil {
		s.respondJSON(w, statusFor(err), map[string]interface{}{"error": err.Error()})
		return
	}
	s.respondJSON(w, http.StatusAccepted, result)
}

// handleStatus handles GET /api/v1/status/{id}
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	result, err := s.optimizationStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondJSON(w, statusFor(err), map[string]interface{}{"error": err.Error()})
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleCancel handles DELETE /api/v1/optimization/{id}
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.cancelOptimization(chi.URLParam(r, "id")); err != nil {
		s.respondJSON(w, statusFor(err), map[string]interface{}{"error": err.Error()})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "cancellation requested",
	})
}

// handleResults handles GET /api/v1/results/{id}/{table}.csv where table
// is deflection, stress or generations.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id, table := chi.URLParam(r, "id"), chi.URLParam(r, "table")

	var rows interface{}
	switch table {
	case "generations":
		run, ok, err := s.store.GetRun(r.Context(), id)
		if err != nil {
			s.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
			return
		}
		if !ok {
			s.respondJSON(w, http.StatusNotFound, map[string]interface{}{"error": errNotFound.Error()})
			return
		}
		rows = run.Generations
	case "deflection", "stress":
		s.optimizationsMu.RLock()
		state, exists := s.optimizations[id]
		var tables *results.Tables
		if exists && state.Result != nil {
			tables = state.Result.Tables
		}
		s.optimizationsMu.RUnlock()

		if tables == nil {
			s.respondJSON(w, http.StatusNotFound, map[string]interface{}{"error": "no accepted design for " + id})
			return
		}
		if table == "deflection" {
			rows = tables.Deflection
		} else {
			rows = tables.Stress
		}
	default:
		s.respondJSON(w, http.StatusNotFound, map[string]interface{}{"error": "unknown table " + table})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", table+".csv"))
	if err := results.WriteCSV(w, rows); err != nil {
		s.logger.Error("Failed to write results", map[string]interface{}{
			"optimization_id": id,
			"error":           err.Error(),
		})
	}
}

// handleRuns handles GET /api/v1/runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context())
	if err != nil {
		s.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": err.Error()})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, errNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errBusy):
		return http.StatusServiceUnavailable
	default:
		return errors.StatusCode(err)
	}
}
