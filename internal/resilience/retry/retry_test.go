package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Jitter: 0.1}
}

func TestDo_FirstCallSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "newsapi", func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RecoversAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), "newsapi", func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: http.StatusServiceUnavailable}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentFailureIsNotRetried(t *testing.T) {
	calls := 0
	unauthorized := &HTTPError{StatusCode: http.StatusUnauthorized, Status: "401 Unauthorized"}
	err := Do(context.Background(), fastPolicy(5), "newsapi", func() error {
		calls++
		return unauthorized
	})
	assert.Same(t, unauthorized, err)
	assert.Equal(t, 1, calls)
}

func TestDo_Exhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2), "feed", func() error {
		calls++
		return syscall.ECONNRESET
	})
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, syscall.ECONNRESET)
	assert.Contains(t, err.Error(), "feed")
	assert.Equal(t, 2, calls)
}

func TestDo_ZeroAttemptsStillCallsOnce(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Policy{}, "feed", func() error {
		calls++
		return syscall.ECONNREFUSED
	})
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := fastPolicy(3)
	p.BaseDelay, p.MaxDelay = time.Hour, time.Hour

	calls := 0
	err := Do(ctx, p, "content", func() error {
		calls++
		cancel()
		return &HTTPError{StatusCode: http.StatusBadGateway}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, p.delay(1, nil))
	assert.Equal(t, 2*time.Second, p.delay(2, nil))
	assert.Equal(t, 4*time.Second, p.delay(3, nil))
	assert.Equal(t, 5*time.Second, p.delay(4, nil), "capped at MaxDelay")
	assert.Equal(t, 5*time.Second, p.delay(80, nil), "shift overflow is capped")
}

func TestPolicy_DelayHonoursRetryAfter(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 30 * time.Second}

	assert.Equal(t, 7*time.Second, p.delay(1, &HTTPError{StatusCode: 429, RetryAfter: 7 * time.Second}))
	assert.Equal(t, 30*time.Second, p.delay(1, &HTTPError{StatusCode: 429, RetryAfter: time.Hour}))
	assert.Equal(t, 2*time.Second, p.delay(2, &HTTPError{StatusCode: 429, RetryAfter: time.Second}),
		"a shorter Retry-After keeps the backoff")
}

func TestPolicy_DelayJitterIsBounded(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: time.Minute, Jitter: 0.5}
	for i := 0; i < 50; i++ {
		d := p.delay(1, nil)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestFromResponse(t *testing.T) {
	resp := &http.Response{StatusCode: 429, Status: "429 Too Many Requests", Header: http.Header{}}
	resp.Header.Set("Retry-After", "12")

	e := FromResponse(resp)
	assert.Equal(t, 429, e.StatusCode)
	assert.Equal(t, 12*time.Second, e.RetryAfter)
	assert.Equal(t, "upstream responded 429 Too Many Requests", e.Error())

	resp.Header.Set("Retry-After", "Wed, 21 Oct 2015 07:28:00 GMT")
	assert.Zero(t, FromResponse(resp).RetryAfter)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "500", err: &HTTPError{StatusCode: 500}, want: true},
		{name: "429", err: &HTTPError{StatusCode: 429}, want: true},
		{name: "408", err: &HTTPError{StatusCode: 408}, want: true},
		{name: "401", err: &HTTPError{StatusCode: 401}, want: false},
		{name: "wrapped 502", err: fmt.Errorf("fetch: %w", &HTTPError{StatusCode: 502}), want: true},
		{name: "connection refused", err: syscall.ECONNREFUSED, want: true},
		{name: "deadline", err: context.DeadlineExceeded, want: false},
		{name: "plain", err: errors.New("decode failed"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
