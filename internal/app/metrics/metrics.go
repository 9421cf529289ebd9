// Package metrics exposes the application's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "strikerlog",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "strikerlog",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	storeOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "strikerlog",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of document store operations.",
		},
		[]string{"collection", "operation", "outcome"},
	)

	migrationRepairs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "strikerlog",
			Subsystem: "migration",
			Name:      "repairs_total",
			Help:      "Legacy records repaired by the migration routine.",
		},
		[]string{"step", "outcome"},
	)
)

func init() {
	Registry.MustRegister(httpRequests, httpDuration, storeOps, migrationRepairs)
}

// Handler serves the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordStoreOp records one store round trip.
func RecordStoreOp(collection, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	storeOps.WithLabelValues(collection, operation, outcome).Inc()
}

// RecordMigrationRepair records one per-item migration outcome.
func RecordMigrationRepair(step string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	migrationRepairs.WithLabelValues(step, outcome).Inc()
}
