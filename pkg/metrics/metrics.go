// Package metrics holds the Prometheus collectors shared across the
// application. Collectors are registered on the default registry at init time
// via promauto and exposed by the API server's metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

//nolint: gochecknoglobals
var (
	// HTTPRequestsTotal counts handled HTTP requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: DefaultBuckets,
		},
		[]string{"method", "path"},
	)

	runsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discovery_runs_finished_total",
			Help: "Total number of discovery runs finished, by terminal status",
		},
		[]string{"status"},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads persisted",
		},
	)

	billingEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_events_total",
			Help: "Total number of billing webhook events processed, by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordRunFinished counts one discovery run reaching the given terminal status.
func RecordRunFinished(status string) {
	runsFinished.WithLabelValues(status).Inc()
}

// RecordLeadsCreated counts n persisted leads.
func RecordLeadsCreated(n int) {
	leadsCreated.Add(float64(n))
}

// RecordBillingEvent counts one processed billing event by its outcome.
func RecordBillingEvent(outcome string) {
	billingEvents.WithLabelValues(outcome).Inc()
}
