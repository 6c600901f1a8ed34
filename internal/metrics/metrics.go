// Package metrics registers the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "glassopt"

var (
	// OracleRequests counts prediction batches by endpoint and outcome.
	OracleRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "requests_total",
		Help:      "Prediction batches sent to the oracle.",
	}, []string{"endpoint", "outcome"})

	// OracleDuration observes the round trip of one batch.
	OracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "request_duration_seconds",
		Help:      "Round trip time of a prediction batch.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 11),
	}, []string{"endpoint"})

	// OracleInstances counts individual prediction instances submitted.
	OracleInstances = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "oracle",
		Name:      "instances_total",
		Help:      "Prediction instances submitted to the oracle.",
	}, []string{"endpoint"})

	// Evaluations counts fitness evaluations by outcome.
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "fitness",
		Name:      "evaluations_total",
		Help:      "Fitness evaluations by outcome.",
	}, []string{"outcome"})

	// Generations counts completed generations across all runs.
	Generations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "genetic",
		Name:      "generations_total",
		Help:      "Completed generations.",
	})

	// BestThickness is the best total thickness of the latest generation.
	BestThickness = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "genetic",
		Name:      "best_thickness_meters",
		Help:      "Total glass thickness of the current best buildup.",
	})

	// Runs counts finished runs by outcome.
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "genetic",
		Name:      "runs_total",
		Help:      "Finished optimization runs by outcome.",
	}, []string{"outcome"})
)

// Evaluation outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeOK       = "ok"
	OutcomeError    = "error"
)
