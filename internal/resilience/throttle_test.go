package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_Defaults(t *testing.T) {
	th := NewThrottle(ThrottleConfig{})
	assert.Equal(t, 200*time.Millisecond, th.Interval())
	assert.Equal(t, time.Duration(0), Unlimited().Interval())
}

func TestThrottle_PassesError(t *testing.T) {
	th := Unlimited()
	want := errors.New("boom")
	err := th.Do(context.Background(), func(context.Context) error { return want })
	assert.Equal(t, want, err)
}

func TestThrottle_Paces(t *testing.T) {
	th := NewThrottle(ThrottleConfig{RatePerSecond: 20, Burst: 1, MaxConcurrent: 8})
	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, th.Do(context.Background(), func(context.Context) error { return nil }))
	}
	// First token is immediate; three more at 50ms spacing.
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
}

func TestThrottle_CapsOutstanding(t *testing.T) {
	th := &Throttle{limiter: Unlimited().limiter, sem: NewThrottle(ThrottleConfig{MaxConcurrent: 2}).sem}

	var inFlight, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = th.Do(context.Background(), func(context.Context) error {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestThrottle_ContextCanceled(t *testing.T) {
	th := NewThrottle(ThrottleConfig{RatePerSecond: 0.001, Burst: 1})
	require.NoError(t, th.Do(context.Background(), func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err := th.Do(ctx, func(context.Context) error { called = true; return nil })
	assert.Error(t, err)
	assert.False(t, called)
}

func TestCall(t *testing.T) {
	v, err := Call(context.Background(), Unlimited(), func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	_, err = Call(context.Background(), Unlimited(), func(context.Context) (int, error) { return 0, errors.New("x") })
	assert.Error(t, err)
}
