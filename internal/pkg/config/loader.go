// Package config loads component settings from environment variables
// with fail-open semantics: a missing value selects the default silently,
// an unparsable or invalid value selects the default with a warning and a
// fallback metric. Loading never fails.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading one value.
type Result[T any] struct {
	Value           T
	Warning         string
	FallbackApplied bool
}

// LoadEnv reads key, parses it with parse and checks it with validate
// (which may be nil). Empty values yield def without a warning.
func LoadEnv[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return Result[T]{Value: def}
	}

	v, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(v)
	}
	if err != nil {
		return Result[T]{
			Value:           def,
			Warning:         fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", key, raw, err, def),
			FallbackApplied: true,
		}
	}
	return Result[T]{Value: v}
}

// LoadEnvString reads a string without validation.
func LoadEnvString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseString(s string) (string, error) { return s, nil }

// ParseBool accepts true/false, 1/0, yes/no, on/off (case-insensitive).
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// Loader loads several values for one component, collecting warnings and
// recording validation failures on the component's config metrics.
type Loader struct {
	metrics  *ConfigMetrics
	warnings []string
}

// NewLoader returns a Loader. metrics may be nil.
func NewLoader(metrics *ConfigMetrics) *Loader {
	return &Loader{metrics: metrics}
}

func record[T any](l *Loader, field string, r Result[T]) T {
	if r.FallbackApplied {
		l.warnings = append(l.warnings, r.Warning)
		if l.metrics != nil {
			l.metrics.RecordValidationError(field)
			l.metrics.RecordFallback(field)
		}
	}
	return r.Value
}

// String loads a validated string.
func (l *Loader) String(field, key, def string, validate func(string) error) string {
	return record(l, field, LoadEnv(key, def, parseString, validate))
}

// Int loads a validated int.
func (l *Loader) Int(field, key string, def int, validate func(int) error) int {
	return record(l, field, LoadEnv(key, def, strconv.Atoi, validate))
}

// Float loads a validated float64.
func (l *Loader) Float(field, key string, def float64, validate func(float64) error) float64 {
	parse := func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
	return record(l, field, LoadEnv(key, def, parse, validate))
}

// Duration loads a validated time.Duration in Go duration syntax.
func (l *Loader) Duration(field, key string, def time.Duration, validate func(time.Duration) error) time.Duration {
	return record(l, field, LoadEnv(key, def, time.ParseDuration, validate))
}

// Bool loads a boolean.
func (l *Loader) Bool(field, key string, def bool) bool {
	return record(l, field, LoadEnv(key, def, ParseBool, nil))
}

// Warnings returns the fallback warnings collected so far.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// Finish records the load timestamp and fallback gauge and returns the warnings.
func (l *Loader) Finish() []string {
	if l.metrics != nil {
		l.metrics.RecordLoadTimestamp()
		l.metrics.SetFallbackActive(len(l.warnings) > 0)
	}
	return l.warnings
}
