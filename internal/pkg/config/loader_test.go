package config

import (
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLoadEnv(t *testing.T) {
	t.Run("unset uses default without warning", func(t *testing.T) {
		t.Setenv("TEST_LOADER_INT", "")
		r := LoadEnv("TEST_LOADER_INT", 5, strconv.Atoi, IntRange(1, 10))
		assert.Equal(t, 5, r.Value)
		assert.False(t, r.FallbackApplied)
		assert.Empty(t, r.Warning)
	})

	t.Run("valid value", func(t *testing.T) {
		t.Setenv("TEST_LOADER_INT", " 7 ")
		r := LoadEnv("TEST_LOADER_INT", 5, strconv.Atoi, IntRange(1, 10))
		assert.Equal(t, 7, r.Value)
		assert.False(t, r.FallbackApplied)
	})

	t.Run("unparsable value falls back", func(t *testing.T) {
		t.Setenv("TEST_LOADER_INT", "seven")
		r := LoadEnv("TEST_LOADER_INT", 5, strconv.Atoi, nil)
		assert.Equal(t, 5, r.Value)
		assert.True(t, r.FallbackApplied)
		assert.Contains(t, r.Warning, "TEST_LOADER_INT='seven'")
	})

	t.Run("invalid value falls back", func(t *testing.T) {
		t.Setenv("TEST_LOADER_INT", "99")
		r := LoadEnv("TEST_LOADER_INT", 5, strconv.Atoi, IntRange(1, 10))
		assert.Equal(t, 5, r.Value)
		assert.True(t, r.FallbackApplied)
		assert.Contains(t, r.Warning, "out of range")
	})
}

func TestLoader(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewConfigMetricsWith(reg, "loader_test")

	t.Setenv("TEST_SCHEDULE", "not a cron")
	t.Setenv("TEST_TIMEOUT", "90s")
	t.Setenv("TEST_THRESHOLD", "1.5")
	t.Setenv("TEST_ENABLED", "yes")
	t.Setenv("TEST_WORKERS", "")

	l := NewLoader(m)
	schedule := l.String("schedule", "TEST_SCHEDULE", "*/15 * * * *", ValidateCronSchedule)
	timeout := l.Duration("timeout", "TEST_TIMEOUT", time.Minute, ValidatePositiveDuration)
	threshold := l.Float("threshold", "TEST_THRESHOLD", 0.3, FloatRange(0, 1))
	enabled := l.Bool("enabled", "TEST_ENABLED", false)
	workers := l.Int("workers", "TEST_WORKERS", 8, IntRange(1, 64))
	warnings := l.Finish()

	assert.Equal(t, "*/15 * * * *", schedule)
	assert.Equal(t, 90*time.Second, timeout)
	assert.Equal(t, 0.3, threshold)
	assert.True(t, enabled)
	assert.Equal(t, 8, workers)
	assert.Len(t, warnings, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("schedule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationErrorsTotal.WithLabelValues("threshold")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbackActive))
	assert.Greater(t, testutil.ToFloat64(m.LoadTimestamp), 0.0)
}

func TestLoader_NilMetrics(t *testing.T) {
	t.Setenv("TEST_NIL_METRICS", "-1")
	l := NewLoader(nil)
	assert.Equal(t, 3, l.Int("n", "TEST_NIL_METRICS", 3, IntRange(0, 5)))
	assert.Len(t, l.Finish(), 1)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "1", "yes", "on"} {
		v, err := ParseBool(s)
		assert.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "0", "No", "off"} {
		v, err := ParseBool(s)
		assert.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}
