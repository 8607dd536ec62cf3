package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localfeed/internal/usecase/ingest"
)

type stubRunner struct {
	mu      sync.Mutex
	calls   int
	report  *ingest.RunReport
	err     error
	release chan struct{}
	started chan struct{}
}

func (r *stubRunner) RunOnce(ctx context.Context) (*ingest.RunReport, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if r.started != nil {
		close(r.started)
	}
	if r.release != nil {
		<-r.release
	}
	return r.report, r.err
}

func TestIngestJob_Success(t *testing.T) {
	logger, _ := newBufferLogger()
	metrics := newTestMetrics()
	runner := &stubRunner{report: &ingest.RunReport{
		RunID: "run-1", Sources: []string{"Community", "Placeholder News"}, Stored: 4,
	}}
	job := NewIngestJob(runner, metrics, logger)

	require.True(t, job.Run(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CronJobRunsTotal.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CronJobRunsTotal.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CronJobSourcesProcessedTotal))
	require.NotNil(t, job.LastReport())
	assert.Equal(t, "run-1", job.LastReport().RunID)
}

func TestIngestJob_Failure(t *testing.T) {
	logger, buf := newBufferLogger()
	metrics := newTestMetrics()
	job := NewIngestJob(&stubRunner{err: errors.New("registry unavailable")}, metrics, logger)

	require.True(t, job.Run(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CronJobRunsTotal.WithLabelValues("failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.CronJobLastSuccessTimestamp))
	assert.Nil(t, job.LastReport())
	assert.Contains(t, buf.String(), "ingest failed")
}

func TestIngestJob_NoOverlap(t *testing.T) {
	logger, _ := newBufferLogger()
	metrics := newTestMetrics()
	runner := &stubRunner{
		report:  &ingest.RunReport{},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	job := NewIngestJob(runner, metrics, logger)

	done := make(chan bool)
	go func() { done <- job.Run(context.Background()) }()

	select {
	case <-runner.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first run did not start")
	}

	assert.False(t, job.Run(context.Background()), "overlapping run should be skipped")
	close(runner.release)
	assert.True(t, <-done)

	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CronJobRunsTotal.WithLabelValues("overlap")))
}

func TestNewScheduler(t *testing.T) {
	logger, _ := newBufferLogger()
	job := NewIngestJob(&stubRunner{report: &ingest.RunReport{}}, newTestMetrics(), logger)

	cfg := DefaultConfig()
	s, err := NewScheduler(&cfg, job)
	require.NoError(t, err)

	s.Start()
	next := s.Next()
	<-s.Stop().Done()

	assert.False(t, next.IsZero())
	assert.True(t, next.After(time.Now().Add(-time.Second)))
	assert.Equal(t, 0, next.Minute()%15)
}

func TestNewScheduler_InvalidConfig(t *testing.T) {
	logger, _ := newBufferLogger()
	job := NewIngestJob(&stubRunner{}, newTestMetrics(), logger)

	cfg := DefaultConfig()
	cfg.Timezone = "Nowhere/Invalid"
	_, err := NewScheduler(&cfg, job)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.CronSchedule = "bad"
	_, err = NewScheduler(&cfg, job)
	assert.Error(t, err)
}
