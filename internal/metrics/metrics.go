// Package metrics provides centralized Prometheus metrics for the news proxy.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track inbound request patterns and latency
var (
	// HTTPRequestsTotal counts requests by method, route and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)
)

// News metrics track cache effectiveness and upstream traffic
var (
	// CacheLookupsTotal counts cache lookups by result (hit, miss)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_cache_lookups_total",
			Help: "Total number of news cache lookups",
		},
		[]string{"result"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "news_cache_entries",
			Help: "Number of entries held by the news cache, including stale ones",
		},
	)

	// UpstreamRequestsTotal counts upstream calls by endpoint and outcome (success, error)
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_upstream_requests_total",
			Help: "Total number of requests sent to the upstream news API",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "news_upstream_request_duration_seconds",
			Help:    "Upstream news API request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// FallbacksTotal counts fallback searches by outcome (results, empty, error)
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_fallbacks_total",
			Help: "Total number of fallback searches issued after empty headlines",
		},
		[]string{"outcome"},
	)
)

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	CacheLookupsTotal.WithLabelValues("miss").Inc()
}

// RecordUpstream records one upstream request.
func RecordUpstream(endpoint string, err error, d time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordFallback records the outcome of a fallback search.
func RecordFallback(articles int, err error) {
	switch {
	case err != nil:
		FallbacksTotal.WithLabelValues("error").Inc()
	case articles == 0:
		FallbacksTotal.WithLabelValues("empty").Inc()
	default:
		FallbacksTotal.WithLabelValues("results").Inc()
	}
}
