// Package retry re-attempts upstream calls that failed transiently.
//
// The delay before attempt n is BaseDelay*2^(n-2), capped at MaxDelay, plus
// up to Jitter of itself. A 429 or 503 carrying Retry-After waits for the
// server-provided delay instead when that is longer, still capped at MaxDelay.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"localfeed/internal/observability/logging"
)

// ErrExhausted is joined to the last error once every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds how often and how patiently an operation is re-attempted.
type Policy struct {
	Attempts  int // total, including the first call
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    float64 // fraction of the delay, 0..1
}

// Provider suits metered news APIs; every retry costs quota.
func Provider() Policy {
	return Policy{Attempts: 2, BaseDelay: 2 * time.Second, MaxDelay: 10 * time.Second, Jitter: 0.2}
}

// Feed suits RSS/Atom endpoints.
func Feed() Policy {
	return Policy{Attempts: 4, BaseDelay: time.Second, MaxDelay: 20 * time.Second, Jitter: 0.1}
}

// Content suits full-article page downloads.
func Content() Policy {
	return Policy{Attempts: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second, Jitter: 0.1}
}

// Do calls fn until it succeeds, fails permanently, runs out of attempts,
// or ctx is done. op names the call in log lines.
func Do(ctx context.Context, p Policy, op string, fn func() error) error {
	attempts := max(p.Attempts, 1)
	logger := logging.FromContext(ctx)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			if attempt > 1 {
				logger.Info("upstream call recovered", "op", op, "attempt", attempt)
			}
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= attempts {
			return fmt.Errorf("%s: %w: %w", op, ErrExhausted, err)
		}

		wait := p.delay(attempt, err)
		logger.Warn("upstream call failed, retrying",
			"op", op,
			"attempt", attempt,
			"max_attempts", attempts,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: retry aborted: %w", op, ctx.Err())
		}
	}
}

func (p Policy) delay(attempt int, cause error) time.Duration {
	d := p.BaseDelay << (attempt - 1)
	if d <= 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}
	if j := min(p.Jitter, 1); j > 0 {
		// #nosec G404 -- jitter does not need cryptographic randomness.
		d += time.Duration(rand.Float64() * float64(d) * j)
	}

	var httpErr *HTTPError
	if errors.As(cause, &httpErr) && httpErr.RetryAfter > d {
		d = min(httpErr.RetryAfter, p.MaxDelay)
	}
	return d
}

// IsRetryable reports whether err is transient: a network timeout, a
// refused or reset connection, or an HTTP 408, 429 or 5xx. Context
// cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.ENETUNREACH)
}

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	StatusCode int
	Status     string
	RetryAfter time.Duration // zero when the server sent none
}

// FromResponse describes resp as an HTTPError, reading Retry-After when it
// is given in seconds.
func FromResponse(resp *http.Response) *HTTPError {
	e := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		e.RetryAfter = time.Duration(secs) * time.Second
	}
	return e
}

// Transient reports whether the status is worth retrying.
func (e *HTTPError) Transient() bool {
	switch {
	case e.StatusCode >= 500 && e.StatusCode < 600:
		return true
	case e.StatusCode == http.StatusTooManyRequests, e.StatusCode == http.StatusRequestTimeout:
		return true
	}
	return false
}

func (e *HTTPError) Error() string {
	if e.Status != "" {
		return "upstream responded " + e.Status
	}
	return fmt.Sprintf("upstream responded %d", e.StatusCode)
}
