// Package metrics defines Prometheus metrics for the model parser.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "model_parser_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_parser_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_parser_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_parser_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_parser_cache_hits_total",
			Help: "Cache lookups answered from memory",
		},
		[]string{"cache"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_parser_cache_misses_total",
			Help: "Cache lookups that required a load",
		},
		[]string{"cache"},
	)

	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_parser_cache_evictions_total",
			Help: "Entries evicted by capacity pressure",
		},
		[]string{"cache"},
	)

	CacheEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_parser_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	ModelLoadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_parser_model_load_duration_seconds",
			Help:    "Time to fetch, inflate and parse one model version",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	GraphBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_parser_graph_build_duration_seconds",
			Help:    "Time to build the relationship graph of one model version",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	DanglingRelationships = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "model_parser_dangling_relationships_total",
			Help: "Relationships with at least one unresolved endpoint, counted per graph build",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal, WSConnections,
		CacheHits, CacheMisses, CacheEvictions, CacheEntries,
		ModelLoadDuration, GraphBuildDuration, DanglingRelationships,
	)
}
