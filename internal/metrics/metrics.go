// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	// DocumentTransitions counts status-machine transitions by action.
	DocumentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sow_document_transitions_total",
			Help: "Total SOW document status transitions",
		},
		[]string{"action"},
	)

	// ApprovalChainComplete counts documents whose approval chain fully satisfied.
	ApprovalChainComplete = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sow_approval_chain_complete_total",
			Help: "Total approval chains that reached full satisfaction",
		},
	)

	// AssignmentValidationErrors counts validation problems surfaced to users.
	AssignmentValidationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staffing_assignment_validation_errors_total",
			Help: "Total assignment validation errors reported",
		},
	)

	// EventsPublished counts broker events by type and outcome.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sow_events_published_total",
			Help: "Total document events published to the broker",
		},
		[]string{"event_type", "outcome"},
	)
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
