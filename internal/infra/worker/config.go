package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"localfeed/internal/infra/scraper"
	"localfeed/internal/pkg/config"
	"localfeed/internal/usecase/ingest"
)

// WorkerConfig holds the configuration for the ingestion worker: when runs
// are scheduled, how the orchestrator is tuned and which optional
// components are enabled.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Every field has a default and a validation rule, so the worker can start
// even when the environment contains invalid values.
type WorkerConfig struct {
	// CronSchedule is the cron expression for ingestion runs.
	// Format: "minute hour day month weekday"
	// Default: "*/15 * * * *"
	CronSchedule string

	// Timezone is the IANA timezone name used to interpret CronSchedule.
	// Default: "UTC"
	Timezone string

	// RunOnStart triggers one run immediately after startup.
	RunOnStart bool

	// HealthPort is the port of the liveness/readiness server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int

	// RSSEnabled switches rss sources from the disabled variant to the
	// real feed adapter.
	RSSEnabled bool

	// RedisURL enables cross-process source leases. Empty means in-memory leases.
	RedisURL string

	// CommunityBaseURL prefixes permalinks of community content.
	CommunityBaseURL string

	// CommunityLimit is the number of items read per community content kind.
	CommunityLimit int

	// CatalogPath optionally overrides the embedded static catalog.
	CatalogPath string

	// Ingest tunes the orchestrator.
	Ingest ingest.Config
}

// DefaultConfig returns a WorkerConfig with production defaults.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:     "*/15 * * * *", // every 15 minutes
		Timezone:         "UTC",
		HealthPort:       9091, // standard Prometheus exporter port
		CommunityBaseURL: scraper.DefaultCommunityBaseURL,
		CommunityLimit:   scraper.DefaultPerKindLimit,
		Ingest:           ingest.DefaultConfig(),
	}
}

// Validate checks every field and returns all failures joined together.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.IntRange(1024, 65535)(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.IntRange(1, 100)(c.CommunityLimit); err != nil {
		errs = append(errs, fmt.Errorf("community limit: %w", err))
	}
	if err := config.IntRange(1, 64)(c.Ingest.Parallelism); err != nil {
		errs = append(errs, fmt.Errorf("parallelism: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.Ingest.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.Ingest.FetchTimeout); err != nil {
		errs = append(errs, fmt.Errorf("fetch timeout: %w", err))
	}
	if err := config.FloatRange(0, 1)(c.Ingest.QualityThreshold); err != nil {
		errs = append(errs, fmt.Errorf("quality threshold: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.Ingest.DuplicateWindow); err != nil {
		errs = append(errs, fmt.Errorf("duplicate window: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.Ingest.LeaseTTL); err != nil {
		errs = append(errs, fmt.Errorf("lease ttl: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %w", errors.Join(errs...))
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression (default: "*/15 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - INGEST_RUN_ON_START: boolean (default: false)
//   - HEALTH_PORT: integer 1024-65535 (default: 9091)
//   - INGEST_RSS_ENABLED: boolean (default: false)
//   - REDIS_URL: optional lease backend
//   - COMMUNITY_BASE_URL, COMMUNITY_PER_KIND_LIMIT (1-100)
//   - CATALOG_PATH: optional catalog override
//   - INGEST_PARALLELISM (1-64), INGEST_RUN_TIMEOUT (1m-4h),
//     INGEST_FETCH_TIMEOUT (1s-10m), INGEST_QUALITY_THRESHOLD (0-1),
//     INGEST_DUPLICATE_WINDOW (1m-720h), LEASE_TTL (1m-24h)
//
// Each fallback is logged as a warning and counted on the worker's config
// metrics. The returned error is always nil; the signature leaves room for
// required settings.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	d := DefaultConfig()
	var cm *config.ConfigMetrics
	if metrics != nil {
		cm = metrics.ConfigMetrics
	}
	l := config.NewLoader(cm)

	cfg := WorkerConfig{
		CronSchedule:     l.String("cron_schedule", "CRON_SCHEDULE", d.CronSchedule, config.ValidateCronSchedule),
		Timezone:         l.String("timezone", "WORKER_TIMEZONE", d.Timezone, config.ValidateTimezone),
		RunOnStart:       l.Bool("run_on_start", "INGEST_RUN_ON_START", d.RunOnStart),
		HealthPort:       l.Int("health_port", "HEALTH_PORT", d.HealthPort, config.IntRange(1024, 65535)),
		RSSEnabled:       l.Bool("rss_enabled", "INGEST_RSS_ENABLED", d.RSSEnabled),
		RedisURL:         config.LoadEnvString("REDIS_URL", ""),
		CommunityBaseURL: config.LoadEnvString("COMMUNITY_BASE_URL", d.CommunityBaseURL),
		CommunityLimit:   l.Int("community_limit", "COMMUNITY_PER_KIND_LIMIT", d.CommunityLimit, config.IntRange(1, 100)),
		CatalogPath:      config.LoadEnvString("CATALOG_PATH", ""),
		Ingest:           d.Ingest,
	}

	cfg.Ingest.Parallelism = l.Int("parallelism", "INGEST_PARALLELISM",
		d.Ingest.Parallelism, config.IntRange(1, 64))
	cfg.Ingest.RunTimeout = l.Duration("run_timeout", "INGEST_RUN_TIMEOUT",
		d.Ingest.RunTimeout, config.DurationRange(time.Minute, 4*time.Hour))
	cfg.Ingest.FetchTimeout = l.Duration("fetch_timeout", "INGEST_FETCH_TIMEOUT",
		d.Ingest.FetchTimeout, config.DurationRange(time.Second, 10*time.Minute))
	cfg.Ingest.QualityThreshold = l.Float("quality_threshold", "INGEST_QUALITY_THRESHOLD",
		d.Ingest.QualityThreshold, config.FloatRange(0, 1))
	cfg.Ingest.DuplicateWindow = l.Duration("duplicate_window", "INGEST_DUPLICATE_WINDOW",
		d.Ingest.DuplicateWindow, config.DurationRange(time.Minute, 720*time.Hour))
	cfg.Ingest.LeaseTTL = l.Duration("lease_ttl", "LEASE_TTL",
		d.Ingest.LeaseTTL, config.DurationRange(time.Minute, 24*time.Hour))

	for _, warning := range l.Finish() {
		logger.Warn("Configuration fallback applied", slog.String("warning", warning))
	}
	return &cfg, nil
}
