// Package metrics exposes Prometheus collectors for the onboarding service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Proton-105/socialpulse-onboarding/internal/state"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_operations_total",
			Help: "Total number of onboarding operations labeled by operation and status",
		},
		[]string{"operation", "status"},
	)
	operationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "onboarding_operation_duration_seconds",
			Help:    "Duration of onboarding operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
	stepTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "onboarding_step_transitions_total",
			Help: "Total number of committed onboarding step transitions",
		},
		[]string{"from", "to"},
	)
	recommendationsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_generated_total",
			Help: "Total number of recommendations persisted, per platform",
		},
		[]string{"platform"},
	)
	followDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follow_decisions_total",
			Help: "Follow decisions processed, labeled by result (followed, skipped or a skip reason)",
		},
		[]string{"result"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled by the gateway",
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	state.RegisterTransitionRecorder(RecordStepTransition)
}

// RecordOperation increments operation counters and records duration.
func RecordOperation(operation, status string, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	operationsTotal.WithLabelValues(operation, status).Inc()
	operationDurationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordStepTransition tracks committed onboarding step changes.
func RecordStepTransition(from, to string) {
	if from == "" {
		from = "unknown"
	}
	if to == "" {
		to = "unknown"
	}

	stepTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordRecommendations counts newly persisted recommendations.
func RecordRecommendations(platform string, count int) {
	if count <= 0 {
		return
	}

	recommendationsGeneratedTotal.WithLabelValues(platform).Add(float64(count))
}

// RecordDecision counts one processed follow decision.
func RecordDecision(result string) {
	if result == "" {
		result = "unknown"
	}

	followDecisionsTotal.WithLabelValues(result).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordHTTPRequest counts a handled gateway request.
func RecordHTTPRequest(method, route string, status int) {
	if route == "" {
		route = "unmatched"
	}

	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
