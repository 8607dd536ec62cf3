package ingest

import "time"

// SourceError is a failure captured for one source.
type SourceError struct {
	SourceID   int64
	SourceName string
	Err        string
}

// RunReport summarizes one RunOnce invocation.
type RunReport struct {
	RunID string
	// Fetched counts raw articles returned by adapters.
	Fetched int
	// Processed counts articles normalized and enriched.
	Processed int
	Stored    int
	// Duplicates counts articles dropped as already stored, repeated in the
	// batch, or rejected by the store's URL constraint.
	Duplicates int
	// Filtered counts articles below the quality threshold.
	Filtered int
	// Skipped counts sources not fetched because of their rate limit or a
	// lease held by another run.
	Skipped int
	// Errors counts sources that failed.
	Errors int
	// Sources lists sources processed without error, in registry order.
	Sources      []string
	SourceErrors []SourceError
	Duration     time.Duration
}

// sourceResult is the outcome of one source task. Each task writes only
// its own slot, so no synchronization is needed.
type sourceResult struct {
	skipped         string
	fetched         int
	processed       int
	stored          int
	urlDuplicates   int
	titleDuplicates int
	batchDuplicates int
	conflicts       int
	filtered        int
	err             error
}

func (r sourceResult) duplicates() int {
	return r.urlDuplicates + r.titleDuplicates + r.batchDuplicates + r.conflicts
}

func (rep *RunReport) add(id int64, name string, r sourceResult) {
	rep.Fetched += r.fetched
	rep.Processed += r.processed
	rep.Stored += r.stored
	rep.Duplicates += r.duplicates()
	rep.Filtered += r.filtered

	switch {
	case r.err != nil:
		rep.Errors++
		rep.SourceErrors = append(rep.SourceErrors, SourceError{SourceID: id, SourceName: name, Err: r.err.Error()})
	case r.skipped != "":
		rep.Skipped++
	default:
		rep.Sources = append(rep.Sources, name)
	}
}
