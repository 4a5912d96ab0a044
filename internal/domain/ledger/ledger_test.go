package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/utils"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestApproveAndIsApproved(t *testing.T) {
	l := New(30 * time.Second).WithClock(newClock().Now)

	entry, err := l.Approve("https://Example.com/login#section")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/login", entry.NormalizedURL)
	assert.Equal(t, "https://Example.com/login#section", entry.OriginalURL)

	assert.True(t, l.IsApproved("https://example.com/login"))
	assert.True(t, l.IsApproved("https://example.com/login#other"))
	assert.False(t, l.IsApproved("https://example.com/login?x=1"))

	// IsApproved does not consume
	assert.True(t, l.IsApproved("https://example.com/login"))
	assert.Equal(t, 1, l.Len())
}

func TestApproveRejectsInvalidURL(t *testing.T) {
	l := New(0)

	_, err := l.Approve("not a url")
	assert.ErrorIs(t, err, utils.ErrInvalidURL)
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, DefaultTTL, l.TTL())
}

func TestExpiryWithoutSweep(t *testing.T) {
	c := newClock()
	l := New(30 * time.Second).WithClock(c.Now)

	_, err := l.Approve("https://example.com/")
	require.NoError(t, err)

	c.Advance(29 * time.Second)
	assert.True(t, l.IsApproved("https://example.com/"))

	c.Advance(2 * time.Second) // T+31s
	assert.False(t, l.IsApproved("https://example.com/"))
	assert.Equal(t, 0, l.Len())
}

func TestApproveResetsDeadline(t *testing.T) {
	c := newClock()
	l := New(30 * time.Second).WithClock(c.Now)

	first, err := l.Approve("https://example.com/")
	require.NoError(t, err)

	c.Advance(20 * time.Second)
	second, err := l.Approve("https://example.com/")
	require.NoError(t, err)

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, second.ApprovedAt.Add(30*time.Second), second.Deadline)
	assert.Equal(t, first.Deadline.Add(20*time.Second), second.Deadline)

	// Not extended additively: live at T+49s, gone at T+51s.
	c.Advance(29 * time.Second)
	assert.True(t, l.IsApproved("https://example.com/"))
	c.Advance(2 * time.Second)
	assert.False(t, l.IsApproved("https://example.com/"))
}

func TestConsume(t *testing.T) {
	c := newClock()
	l := New(30 * time.Second).WithClock(c.Now)

	_, _ = l.Approve("https://example.com/a")
	assert.True(t, l.Consume("https://example.com/a#frag"))
	assert.False(t, l.IsApproved("https://example.com/a"))
	assert.False(t, l.Consume("https://example.com/a"))

	_, _ = l.Approve("https://example.com/b")
	c.Advance(time.Minute)
	assert.False(t, l.Consume("https://example.com/b"), "expired approval must not count")

	assert.False(t, l.Consume("::bad::"))
}

func TestSweep(t *testing.T) {
	c := newClock()
	l := New(30 * time.Second).WithClock(c.Now)

	_, _ = l.Approve("https://old.example.com/")
	c.Advance(20 * time.Second)
	_, _ = l.Approve("https://new.example.com/")
	c.Advance(15 * time.Second)

	assert.Equal(t, 1, l.Sweep())
	entries := l.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "https://new.example.com/", entries[0].NormalizedURL)
	assert.Equal(t, 0, l.Sweep())
}

func TestConcurrentApproveConsume(t *testing.T) {
	l := New(time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	consumed := 0
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = l.Approve("https://race.example.com/")
		}()
		go func() {
			defer wg.Done()
			if l.Consume("https://race.example.com/") {
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, consumed, 50)
	assert.LessOrEqual(t, l.Len(), 1)
}
