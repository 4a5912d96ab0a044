package tracker

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/utils"
)

type key struct {
	tabID int
	url   string
}

// Tracker holds the in-flight checks of one interception channel.
type Tracker struct {
	mu      sync.Mutex
	channel types.Channel
	now     func() time.Time
	pending map[key]types.NavigationRequest
}

// New creates a tracker for channel.
func New(channel types.Channel) *Tracker {
	return &Tracker{
		channel: channel,
		now:     time.Now,
		pending: make(map[key]types.NavigationRequest),
	}
}

// WithClock replaces the time source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Channel returns the channel this tracker serves.
func (t *Tracker) Channel() types.Channel {
	return t.channel
}

// TryBegin registers a check for (tabID, url). It returns false when one
// is already in flight.
func (t *Tracker) TryBegin(tabID int, rawURL string) bool {
	k := makeKey(tabID, rawURL)

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.pending[k]; busy {
		return false
	}
	t.pending[k] = types.NavigationRequest{
		URL:       rawURL,
		TabID:     tabID,
		Channel:   t.channel,
		CreatedAt: t.now(),
	}
	return true
}

// End removes the entry for (tabID, url). Ending an absent entry is a no-op.
func (t *Tracker) End(tabID int, rawURL string) bool {
	k := makeKey(tabID, rawURL)

	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pending[k]
	delete(t.pending, k)
	return ok
}

// Get returns the in-flight request for (tabID, url).
func (t *Tracker) Get(tabID int, rawURL string) (types.NavigationRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	req, ok := t.pending[makeKey(tabID, rawURL)]
	return req, ok
}

// Sweep removes entries older than maxAge and returns how many it removed.
func (t *Tracker) Sweep(maxAge time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for k, req := range t.pending {
		if now.Sub(req.CreatedAt) > maxAge {
			delete(t.pending, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of in-flight checks.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.pending)
}

// Unparseable URLs are tracked by their raw text.
func makeKey(tabID int, rawURL string) key {
	if normalized, err := utils.NormalizeURL(rawURL); err == nil {
		return key{tabID: tabID, url: normalized}
	}
	return key{tabID: tabID, url: rawURL}
}
