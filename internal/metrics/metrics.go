package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bs_webpanel"

var (
	// FetchCycles counts completed ban log fetch cycles by outcome.
	FetchCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_cycles_total",
		Help:      "Completed ban log fetch cycles by outcome.",
	}, []string{"status", "trigger"})

	// FetchDuration records full fetch+enrich cycle duration.
	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Full fetch and enrich cycle duration in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0, 30.0},
	})

	// FetchDiscarded counts fetch completions thrown away.
	FetchDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_discarded_total",
		Help:      "Fetch completions discarded without being applied.",
	}, []string{"reason"})

	// BackendCalls counts raw ban log backend calls.
	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_calls_total",
		Help:      "Raw ban log backend call counts.",
	}, []string{"status"})

	// BackendDuration records ban log backend latency.
	BackendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_duration_seconds",
		Help:      "Ban log backend call latency in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0},
	})

	// ProfileLookups counts external profile service calls.
	ProfileLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_lookups_total",
		Help:      "External identity and avatar service calls.",
	}, []string{"service", "status"})

	// LookupDuration records external lookup latency per service.
	LookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lookup_duration_seconds",
		Help:      "External lookup latency in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"service"})

	// CacheLookups counts profile cache hits and misses.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Profile cache lookups by result.",
	}, []string{"result"})

	// EnrichDuration records batch enrichment duration.
	EnrichDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "enrich_duration_seconds",
		Help:      "Batch enrichment duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0},
	})

	// RenderedRecords tracks the size of the currently rendered record set.
	RenderedRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rendered_records",
		Help:      "Records in the currently rendered set.",
	}, []string{"state"})

	// SearchQueries counts non-blank search filter evaluations.
	SearchQueries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_queries_total",
		Help:      "Non-blank search filter evaluations.",
	})

	// ManualRefreshes counts operator-triggered refreshes.
	ManualRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "manual_refreshes_total",
		Help:      "Operator-triggered refresh requests.",
	})
)
