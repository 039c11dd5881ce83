// Package metrics defines the Prometheus metric collectors used across the
// platform and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	HTTPRequestsInFlight   prometheus.Gauge
	DocumentsBuiltTotal    *prometheus.CounterVec
	AnnotationsEmitted     prometheus.Counter
	DocumentBuildDuration  *prometheus.HistogramVec
	DefinitionLookupsTotal *prometheus.CounterVec
	DocumentCacheHits      prometheus.Counter
	DocumentCacheMisses    prometheus.Counter
	ArticlesIngestedTotal  *prometheus.CounterVec
	CircuitBreakerState    *prometheus.GaugeVec
}

// New creates all collectors and registers them with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all collectors and registers them with reg. Tests
// pass a fresh prometheus.NewRegistry() so repeated construction does not
// panic on duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		DocumentsBuiltTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_built_total",
				Help: "Total section documents built, by matcher strategy.",
			},
			[]string{"matcher"},
		),
		AnnotationsEmitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "annotations_emitted_total",
				Help: "Total annotation runs emitted across all built documents.",
			},
		),
		DocumentBuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "document_build_duration_seconds",
				Help:    "Time to build all section documents for one request.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"matcher"},
		),
		DefinitionLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "definition_lookups_total",
				Help: "Definition lookups by result (found, not_found, error).",
			},
			[]string{"result"},
		),
		DocumentCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "document_cache_hits_total",
				Help: "Total number of document cache hits.",
			},
		),
		DocumentCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "document_cache_misses_total",
				Help: "Total number of document cache misses.",
			},
		),
		ArticlesIngestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "articles_ingested_total",
				Help: "Articles accepted for ingestion by status (accepted, duplicate, rejected, error).",
			},
			[]string{"status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DocumentsBuiltTotal,
		m.AnnotationsEmitted,
		m.DocumentBuildDuration,
		m.DefinitionLookupsTotal,
		m.DocumentCacheHits,
		m.DocumentCacheMisses,
		m.ArticlesIngestedTotal,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
