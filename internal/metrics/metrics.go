package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of product search requests",
		},
		[]string{"status"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "End-to-end product search latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 0.8, 1, 2, 5},
		},
		[]string{"method"},
	)

	SearchCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_candidates",
			Help:    "Number of candidates retrieved per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 150},
		},
	)

	Enhancements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_enhancements_total",
			Help: "Query enhancements by method",
		},
		[]string{"method"},
	)

	EnhancerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_enhancer_failures_total",
			Help: "External enhancer failures by reason",
		},
		[]string{"reason"},
	)

	EnhancerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_enhancer_duration_seconds",
			Help:    "Duration of completed external enhancer calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 0.8, 1, 2, 5, 10},
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "search_enhancement_cache_entries",
			Help: "Number of entries in the enhancement cache",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_enhancement_cache_evictions_total",
			Help: "Expired enhancement cache entries removed by the sweep",
		},
	)
)

// Failure reasons for EnhancerFailures.
const (
	ReasonError   = "error"
	ReasonTimeout = "timeout"
)
