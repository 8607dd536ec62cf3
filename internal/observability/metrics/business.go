package metrics

import (
	"strconv"
	"time"
)

// Skip reasons.
const (
	SkipRateLimited = "rate_limited"
	SkipLeaseHeld   = "lease_held"
)

// RecordRun records the outcome and duration of an ingestion run.
func RecordRun(aborted bool, duration time.Duration) {
	status := "completed"
	if aborted {
		status = "aborted"
	}
	IngestRunsTotal.WithLabelValues(status).Inc()
	IngestRunDuration.Observe(duration.Seconds())
}

// RecordSourceFetch records one adapter fetch.
func RecordSourceFetch(adapter string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	SourceFetchTotal.WithLabelValues(adapter, status).Inc()
	SourceFetchDuration.WithLabelValues(adapter).Observe(duration.Seconds())
}

// RecordSourceSkipped records a source that was not fetched.
func RecordSourceSkipped(reason string) {
	SourcesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordArticles records per-source article counts for one fetch.
func RecordArticles(sourceID int64, fetched, stored int) {
	id := strconv.FormatInt(sourceID, 10)
	if fetched > 0 {
		ArticlesFetchedTotal.WithLabelValues(id).Add(float64(fetched))
	}
	if stored > 0 {
		ArticlesStoredTotal.WithLabelValues(id).Add(float64(stored))
	}
}

// RecordDuplicates records dropped duplicates for a detection reason.
func RecordDuplicates(reason string, count int) {
	if count > 0 {
		ArticlesDuplicateTotal.WithLabelValues(reason).Add(float64(count))
	}
}

// RecordFiltered records articles dropped by the quality filter.
func RecordFiltered(count int) {
	if count > 0 {
		ArticlesFilteredTotal.Add(float64(count))
	}
}

// RecordContentFetch records a content enhancement attempt. Status is
// "success", "failure" or "skipped".
func RecordContentFetch(status string, duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues(status).Inc()
	if status != "skipped" {
		ContentFetchDuration.Observe(duration.Seconds())
	}
}

// RecordDBQuery records the latency of a store operation.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetCircuitState publishes a breaker's current state.
func SetCircuitState(circuit string, state int) {
	CircuitBreakerState.WithLabelValues(circuit).Set(float64(state))
}
