package ingest

import (
	"time"

	"localfeed/internal/usecase/dedupe"
	"localfeed/internal/usecase/normalize"
)

// Config tunes one ingestion run.
type Config struct {
	// Parallelism bounds concurrently processed sources.
	Parallelism int
	// RunTimeout bounds a whole run; sources still in flight are abandoned.
	RunTimeout time.Duration
	// FetchTimeout bounds one adapter fetch.
	FetchTimeout time.Duration
	// QualityThreshold drops articles whose quality score is below it.
	QualityThreshold float64
	// DuplicateWindow is the same-source title window.
	DuplicateWindow time.Duration
	// LeaseTTL bounds how long a crashed run can block a source.
	LeaseTTL time.Duration
	// ContentThreshold is the content length under which the page is fetched
	// when a content fetcher is configured.
	ContentThreshold int
	// ContentParallelism bounds concurrent page fetches per source.
	ContentParallelism int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Parallelism:        8,
		RunTimeout:         10 * time.Minute,
		FetchTimeout:       45 * time.Second,
		QualityThreshold:   normalize.DefaultQualityThreshold,
		DuplicateWindow:    dedupe.DefaultWindow,
		LeaseTTL:           15 * time.Minute,
		ContentThreshold:   400,
		ContentParallelism: 4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Parallelism < 1 {
		c.Parallelism = d.Parallelism
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.DuplicateWindow <= 0 {
		c.DuplicateWindow = d.DuplicateWindow
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = d.LeaseTTL
	}
	if c.ContentParallelism < 1 {
		c.ContentParallelism = d.ContentParallelism
	}
	return c
}
