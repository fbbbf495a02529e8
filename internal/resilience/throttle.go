// Package resilience paces and bounds calls to external providers and
// classifies their failures.
package resilience

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Throttle combines a token bucket (pacing) with a cap on outstanding calls.
// One Throttle is shared by every component that talks to the same provider.
type Throttle struct {
	limiter *rate.Limiter
	sem     *semaphore.Weighted
}

// ThrottleConfig configures a Throttle. Zero values fall back to defaults.
type ThrottleConfig struct {
	// RatePerSecond is the sustained call rate. Default: 5 (one call per 200ms).
	RatePerSecond float64
	// Burst is the token bucket size. Default: 1.
	Burst int
	// MaxConcurrent caps outstanding calls. Default: 4.
	MaxConcurrent int
}

// NewThrottle creates a Throttle from cfg.
func NewThrottle(cfg ThrottleConfig) *Throttle {
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

// Unlimited returns a Throttle that never waits. Intended for tests.
func Unlimited() *Throttle {
	return &Throttle{
		limiter: rate.NewLimiter(rate.Inf, 1),
		sem:     semaphore.NewWeighted(1 << 20),
	}
}

// Do runs fn once a concurrency slot and a rate token are available.
// fn's error is returned unchanged; there are no retries.
func (t *Throttle) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return eris.Wrap(err, "throttle: acquire slot")
	}
	defer t.sem.Release(1)

	if err := t.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "throttle: rate limit wait")
	}
	return fn(ctx)
}

// Interval reports the steady-state spacing between calls.
func (t *Throttle) Interval() time.Duration {
	l := t.limiter.Limit()
	if l == rate.Inf || l <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(l))
}

// Call runs fn through t and returns its value.
func Call[T any](ctx context.Context, t *Throttle, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := t.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
