// Metior - GA4 Reporting Cache Proxy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metior

// Package metrics provides Prometheus instrumentation for Metior:
// API endpoint latency and throughput, report cache efficiency, and
// GA4 Data API upstream health (including circuit breaker state).
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Report Cache Metrics
	ReportCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_cache_hits_total",
			Help: "Total number of report cache hits",
		},
		[]string{"endpoint"},
	)

	ReportCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_cache_misses_total",
			Help: "Total number of report cache misses",
		},
		[]string{"endpoint"},
	)

	ReportCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_cache_entries",
			Help: "Current number of cached report payloads",
		},
	)

	// GA4 Upstream Metrics
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ga4_request_duration_seconds",
			Help:    "Duration of GA4 Data API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"}, // "runReport", "runRealtimeReport"
	)

	UpstreamRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ga4_request_errors_total",
			Help: "Total number of GA4 Data API request failures",
		},
		[]string{"method", "status_code"},
	)

	UpstreamRateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ga4_rate_limit_wait_seconds",
			Help:    "Time spent waiting on the outbound GA4 rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures recorded by the circuit breaker",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a report cache hit or miss for an endpoint.
func RecordCacheLookup(endpoint string, hit bool) {
	if hit {
		ReportCacheHits.WithLabelValues(endpoint).Inc()
	} else {
		ReportCacheMisses.WithLabelValues(endpoint).Inc()
	}
}

// RecordUpstreamRequest records a completed GA4 Data API call.
// A zero statusCode means the request never produced an HTTP response.
func RecordUpstreamRequest(method string, statusCode int, duration time.Duration, err error) {
	UpstreamRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	if err != nil {
		UpstreamRequestErrors.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	}
}
