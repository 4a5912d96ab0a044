package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func fail(b *Breaker) error {
	return b.Do(func() error { return errBoom })
}

func succeed(b *Breaker) error {
	return b.Do(func() error { return nil })
}

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		requests []bool // true = success, false = failure
		want     State
	}{
		{name: "stays closed on successes", requests: []bool{true, true, true}, want: StateClosed},
		{name: "opens after consecutive failures", requests: []bool{false, false, false}, want: StateOpen},
		{name: "success resets the streak", requests: []bool{false, false, true, false, false}, want: StateClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("test", Settings{
				ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
				Now:         newFakeClock().Now,
			})
			for _, ok := range tt.requests {
				if ok {
					_ = succeed(b)
				} else {
					_ = fail(b)
				}
			}
			assert.Equal(t, tt.want, b.State())
		})
	}
}

func TestBreakerOpenRejectsCalls(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		Timeout:     time.Minute,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})

	require.ErrorIs(t, fail(b), errBoom)
	require.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	clock := newFakeClock()
	var transitions []string
	b := New("classifier", Settings{
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 2 },
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
		Now: clock.Now,
	})

	_ = fail(b)
	_ = fail(b)
	require.Equal(t, StateOpen, b.State())

	clock.Advance(29 * time.Second)
	assert.Equal(t, StateOpen, b.State())

	clock.Advance(time.Second)
	assert.Equal(t, StateHalfOpen, b.State())

	require.NoError(t, succeed(b))
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, succeed(b))
	assert.Equal(t, StateClosed, b.State())

	assert.Equal(t, []string{
		"classifier:closed->open",
		"classifier:open->half-open",
		"classifier:half-open->closed",
	}, transitions)
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		Timeout:     time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})

	_ = fail(b)
	clock.Advance(time.Second)
	require.Equal(t, StateHalfOpen, b.State())

	_ = fail(b)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerHalfOpenLimitsTrials(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		MaxRequests: 1,
		Timeout:     time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		Now:         clock.Now,
	})

	_ = fail(b)
	clock.Advance(time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = b.Do(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.ErrorIs(t, succeed(b), ErrTooManyRequests)
	close(release)
}

func TestBreakerIntervalClearsCounts(t *testing.T) {
	clock := newFakeClock()
	b := New("test", Settings{
		Interval:    time.Minute,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
		Now:         clock.Now,
	})

	_ = fail(b)
	_ = fail(b)
	assert.Equal(t, uint32(2), b.Counts().ConsecutiveFailures)

	clock.Advance(time.Minute)
	_ = fail(b)
	assert.Equal(t, uint32(1), b.Counts().ConsecutiveFailures)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerIsFailure(t *testing.T) {
	b := New("test", Settings{
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, context.Canceled)
		},
		Now: newFakeClock().Now,
	})

	err := b.Do(func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, uint32(1), b.Counts().TotalSuccesses)
}

func TestExecuteReturnsValue(t *testing.T) {
	b := New("test", Settings{})

	got, err := Execute(b, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)

	got, err = Execute(b, func() (string, error) { return "", errBoom })
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, got)
	assert.Equal(t, uint32(2), b.Counts().Requests)
}

func TestExecutePanicCountsAsFailure(t *testing.T) {
	b := New("test", Settings{
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	assert.Panics(t, func() {
		_ = b.Do(func() error { panic("kaboom") })
	})
	assert.Equal(t, StateOpen, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(42).String())
}
