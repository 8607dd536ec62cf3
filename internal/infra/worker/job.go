package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"localfeed/internal/usecase/ingest"
)

// Runner executes one ingestion run.
type Runner interface {
	RunOnce(ctx context.Context) (*ingest.RunReport, error)
}

// IngestJob runs the ingestion pipeline on behalf of the scheduler. Runs
// never overlap: a tick that fires while a run is in progress is dropped.
type IngestJob struct {
	runner  Runner
	metrics *WorkerMetrics
	logger  *slog.Logger

	running atomic.Bool
	mu      sync.RWMutex
	last    *ingest.RunReport
}

// NewIngestJob creates a job around runner.
func NewIngestJob(runner Runner, metrics *WorkerMetrics, logger *slog.Logger) *IngestJob {
	return &IngestJob{runner: runner, metrics: metrics, logger: logger}
}

// Run executes one ingestion run. It returns false without running when
// another run is still in progress.
func (j *IngestJob) Run(ctx context.Context) bool {
	if !j.running.CompareAndSwap(false, true) {
		j.metrics.RecordJobRun("overlap")
		j.logger.Warn("ingest run skipped: previous run still in progress")
		return false
	}
	defer j.running.Store(false)

	start := time.Now()
	j.metrics.RecordJobRun("started")
	j.logger.Info("ingest started")

	report, err := j.runner.RunOnce(ctx)
	j.metrics.RecordJobDuration(time.Since(start).Seconds())
	if err != nil {
		j.logger.Error("ingest failed", slog.Any("error", err))
		j.metrics.RecordJobRun("failure")
		return true
	}

	j.metrics.RecordJobRun("success")
	j.metrics.RecordSourcesProcessed(len(report.Sources))
	j.metrics.RecordLastSuccess()

	j.mu.Lock()
	j.last = report
	j.mu.Unlock()

	j.logger.Info("ingest completed",
		slog.String("run_id", report.RunID),
		slog.Int("sources", len(report.Sources)),
		slog.Int("fetched", report.Fetched),
		slog.Int("stored", report.Stored),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("filtered", report.Filtered),
		slog.Int("skipped", report.Skipped),
		slog.Int("errors", report.Errors),
		slog.Duration("duration", report.Duration),
	)
	return true
}

// LastReport returns the report of the last successful run, or nil.
func (j *IngestJob) LastReport() *ingest.RunReport {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.last
}

// Scheduler triggers an IngestJob on a cron schedule.
type Scheduler struct {
	cron *cron.Cron
	job  *IngestJob
}

// NewScheduler registers job on cfg's schedule and timezone. Scheduled
// runs use a fresh background context; the orchestrator applies its own
// run timeout.
func NewScheduler(cfg *WorkerConfig, job *IngestJob) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.CronSchedule, func() {
		job.Run(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("add cron job: %w", err)
	}
	return &Scheduler{cron: c, job: job}, nil
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and returns a context that is done once the
// running job, if any, has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next reports the next scheduled activation.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
