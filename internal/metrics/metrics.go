// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

// Package metrics provides Prometheus metrics for the request engine and
// the bulk exporter. Metrics are registered on the default registry via
// promauto; expose them with promhttp when a metrics listener is enabled.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request engine metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_requests_total",
			Help: "Total HTTP requests issued against the cloud API",
		},
		[]string{"method", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keyscope_request_duration_seconds",
			Help:    "Cloud API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyscope_rate_limit_hits_total",
			Help: "Total HTTP 429 responses received",
		},
	)

	TransientRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keyscope_transient_retries_total",
			Help: "Total resends after a transient failure",
		},
		[]string{"reason"}, // rate_limit, gateway, transport
	)

	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyscope_pages_fetched_total",
			Help: "Total pages accumulated across paginated requests",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keyscope_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// Export metrics
	ExportedEntries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyscope_exported_entries_total",
			Help: "Total entries written to the export sink",
		},
	)

	ExportErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyscope_export_errors_total",
			Help: "Total entries that failed to export",
		},
	)
)
