package tracker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

func TestTryBeginDeduplicates(t *testing.T) {
	tr := New(types.ChannelAddressBar)

	assert.True(t, tr.TryBegin(1, "https://example.com/a"))
	assert.False(t, tr.TryBegin(1, "https://example.com/a"))
	assert.False(t, tr.TryBegin(1, "https://example.com/a#frag"), "fragment must not create a new key")

	// Different tab or URL is independent
	assert.True(t, tr.TryBegin(2, "https://example.com/a"))
	assert.True(t, tr.TryBegin(1, "https://example.com/b"))
	assert.Equal(t, 3, tr.Len())
}

func TestEndIsIdempotent(t *testing.T) {
	tr := New(types.ChannelClick)

	require.True(t, tr.TryBegin(7, "https://example.com/"))
	assert.True(t, tr.End(7, "https://example.com/"))
	assert.False(t, tr.End(7, "https://example.com/"))
	assert.True(t, tr.TryBegin(7, "https://example.com/"))
}

func TestGet(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := New(types.ChannelClick).WithClock(func() time.Time { return at })

	require.True(t, tr.TryBegin(3, "https://example.com/x"))
	req, ok := tr.Get(3, "https://example.com/x")
	require.True(t, ok)
	assert.Equal(t, types.NavigationRequest{
		URL:       "https://example.com/x",
		TabID:     3,
		Channel:   types.ChannelClick,
		CreatedAt: at,
	}, req)

	_, ok = tr.Get(4, "https://example.com/x")
	assert.False(t, ok)
}

func TestUnparseableURLsStillTracked(t *testing.T) {
	tr := New(types.ChannelClick)

	assert.True(t, tr.TryBegin(1, "not a url"))
	assert.False(t, tr.TryBegin(1, "not a url"))
	assert.True(t, tr.End(1, "not a url"))
}

func TestSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := New(types.ChannelAddressBar).WithClock(func() time.Time { return now })

	require.True(t, tr.TryBegin(1, "https://old.example.com/"))
	now = now.Add(40 * time.Second)
	require.True(t, tr.TryBegin(1, "https://new.example.com/"))
	now = now.Add(25 * time.Second)

	// old is 65s, new is 25s
	assert.Equal(t, 1, tr.Sweep(60*time.Second))
	assert.Equal(t, 1, tr.Len())
	_, ok := tr.Get(1, "https://new.example.com/")
	assert.True(t, ok)

	// exactly at the bound is kept
	now = now.Add(35 * time.Second)
	assert.Equal(t, 0, tr.Sweep(60*time.Second))
}

func TestConcurrentTryBegin(t *testing.T) {
	tr := New(types.ChannelClick)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.TryBegin(9, "https://example.com/race") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
