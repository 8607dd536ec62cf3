// Package circuitbreaker isolates failing upstreams (news providers, feeds,
// article pages) behind github.com/sony/gobreaker so one outage does not
// stall every source that shares it.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"localfeed/internal/observability/metrics"
)

// Profile describes when a breaker trips and how long it stays open.
type Profile struct {
	Name string

	// HalfOpenProbes is how many calls may test a half-open breaker.
	HalfOpenProbes uint32
	// Window resets the closed-state counts; zero never resets.
	Window time.Duration
	// Cooldown is how long the breaker stays open.
	Cooldown time.Duration
	// TripRatio is the failure ratio that opens the breaker once
	// MinSamples calls were counted.
	TripRatio  float64
	MinSamples uint32
}

// Provider is for JSON news APIs, which fail in bursts when a quota runs out.
func Provider(name string) Profile {
	return Profile{
		Name:           name,
		HalfOpenProbes: 2,
		Window:         2 * time.Minute,
		Cooldown:       5 * time.Minute,
		TripRatio:      0.6,
		MinSamples:     4,
	}
}

// Feed is for RSS/Atom endpoints.
func Feed() Profile {
	return Profile{
		Name:           "rss-feed",
		HalfOpenProbes: 5,
		Window:         time.Minute,
		Cooldown:       2 * time.Minute,
		TripRatio:      0.7,
		MinSamples:     10,
	}
}

// Content is for article page downloads. Origins vary per call, so only a
// high failure ratio points at our side of the network.
func Content() Profile {
	return Profile{
		Name:           "content-fetch",
		HalfOpenProbes: 3,
		Window:         time.Minute,
		Cooldown:       10 * time.Minute,
		TripRatio:      0.8,
		MinSamples:     5,
	}
}

// Breaker guards calls to one upstream.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a closed breaker for p.
func New(p Profile) *Breaker {
	metrics.SetCircuitState(p.Name, int(gobreaker.StateClosed))
	return &Breaker{cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        p.Name,
		MaxRequests: p.HalfOpenProbes,
		Interval:    p.Window,
		Timeout:     p.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= p.MinSamples &&
				float64(c.TotalFailures)/float64(c.Requests) >= p.TripRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitState(name, int(to))
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})}
}

// Do runs fn through b. While b is open fn is not called and the error
// satisfies Rejected.
func Do[T any](b *Breaker, fn func() (T, error)) (T, error) {
	res, err := b.cb.Execute(func() (any, error) { return fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

// Rejected reports whether err came from an open or saturated breaker
// rather than from the upstream.
func Rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (b *Breaker) Name() string { return b.cb.Name() }

func (b *Breaker) State() gobreaker.State { return b.cb.State() }
