// Package metrics exposes the Prometheus collectors for the HTTP surface
// and the enrichment pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hmmm_http_requests_total",
			Help: "HTTP requests served, by method, path pattern, and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hmmm_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	EnrichmentRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hmmm_enrichment_runs_total",
			Help: "Draft enrichment pipeline executions.",
		},
	)

	LookupFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hmmm_lookup_failures_total",
			Help: "External lookup failures degraded to warnings, by source.",
		},
		[]string{"source"},
	)

	ItemsCommitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hmmm_items_committed_total",
			Help: "Items committed to the catalog.",
		},
	)
)
