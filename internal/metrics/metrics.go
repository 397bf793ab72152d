// Package metrics provides Prometheus metrics for the directory stats engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	dirsListed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mole_analyze_dirs_listed_total",
			Help: "Total number of directory listings performed by traversal workers",
		},
	)

	permissionDenied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mole_analyze_permission_denied_total",
			Help: "Directories completed early because they could not be read",
		},
	)

	listErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mole_analyze_list_errors_total",
			Help: "Unexpected listing errors other than permission denied",
		},
	)

	traversals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mole_analyze_traversals_total",
			Help: "Node claims by result",
		},
		[]string{"result"},
	)

	cancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mole_analyze_cancellations_total",
			Help: "Total number of traversal cancellations",
		},
	)

	invalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mole_analyze_invalidations_total",
			Help: "Total number of full cache invalidations",
		},
	)

	workersInflight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mole_analyze_workers_inflight",
			Help: "Number of traversal workers currently running",
		},
	)

	cacheNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mole_analyze_cache_nodes",
			Help: "Number of nodes in the path cache",
		},
	)

	cancelDrain = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mole_analyze_cancel_drain_seconds",
			Help:    "Time spent waiting for workers to unwind on cancellation",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDirListed records one directory listing.
func RecordDirListed() {
	dirsListed.Inc()
}

// RecordPermissionDenied records a directory completed by the Fail transition.
func RecordPermissionDenied() {
	permissionDenied.Inc()
}

// RecordListError records an unexpected listing failure.
func RecordListError() {
	listErrors.Inc()
}

// RecordClaim records an admission decision.
func RecordClaim(admitted bool) {
	if admitted {
		traversals.WithLabelValues("admitted").Inc()
		return
	}
	traversals.WithLabelValues("refused").Inc()
}

// RecordCancel records a finished cancellation drain.
func RecordCancel(drain time.Duration) {
	cancellations.Inc()
	cancelDrain.Observe(drain.Seconds())
}

// RecordInvalidate records a cache invalidation.
func RecordInvalidate() {
	invalidations.Inc()
}

// SetWorkersInflight sets the running worker gauge.
func SetWorkersInflight(n int) {
	workersInflight.Set(float64(n))
}

// SetCacheNodes sets the cache size gauge.
func SetCacheNodes(n int) {
	cacheNodes.Set(float64(n))
}
