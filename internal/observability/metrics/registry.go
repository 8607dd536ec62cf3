package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run metrics track orchestrator invocations.
var (
	// IngestRunsTotal counts runs by outcome (completed, aborted).
	IngestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_runs_total",
			Help: "Total number of ingestion runs",
		},
		[]string{"status"},
	)

	// IngestRunDuration measures wall-clock time of a run.
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Wall-clock duration of an ingestion run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)
)

// Source metrics track per-source fetch outcomes.
var (
	// SourceFetchTotal counts fetch attempts by adapter and status.
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetch_total",
			Help: "Total number of source fetch attempts",
		},
		[]string{"adapter", "status"},
	)

	// SourceFetchDuration measures adapter fetch latency.
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Time taken by an adapter to fetch a source",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"adapter"},
	)

	// SourcesSkippedTotal counts sources not fetched, by reason.
	SourcesSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sources_skipped_total",
			Help: "Total number of sources skipped during ingestion runs",
		},
		[]string{"reason"},
	)
)

// Article metrics track what happens to fetched items.
var (
	// ArticlesFetchedTotal counts raw articles returned by adapters.
	ArticlesFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_fetched_total",
			Help: "Total number of raw articles fetched from sources",
		},
		[]string{"source_id"},
	)

	// ArticlesStoredTotal counts articles inserted into the store.
	ArticlesStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_stored_total",
			Help: "Total number of articles inserted into the store",
		},
		[]string{"source_id"},
	)

	// ArticlesDuplicateTotal counts duplicates by detection reason (url, title, batch).
	ArticlesDuplicateTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "articles_duplicate_total",
			Help: "Total number of duplicate articles dropped",
		},
		[]string{"reason"},
	)

	// ArticlesFilteredTotal counts articles dropped by the quality filter.
	ArticlesFilteredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_filtered_total",
			Help: "Total number of articles below the quality threshold",
		},
	)
)

// Content fetch metrics track full-article enhancement.
var (
	// ContentFetchAttemptsTotal counts enhancement attempts by status.
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"status"},
	)

	// ContentFetchDuration measures page download and extraction time.
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch and extract article content",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)
)

// Database metrics.
var (
	// DBQueryDuration measures store operation latency.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// CircuitBreakerState reports each breaker's state (0 closed, 1 half-open, 2 open).
var CircuitBreakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current circuit breaker state by upstream (0 closed, 1 half-open, 2 open)",
	},
	[]string{"circuit"},
)
