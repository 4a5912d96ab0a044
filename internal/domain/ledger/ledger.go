package ledger

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/utils"
)

// DefaultTTL is how long an approval suppresses interception.
const DefaultTTL = 30 * time.Second

// Entry records that a user chose to proceed to a URL.
type Entry struct {
	NormalizedURL string    `json:"normalizedUrl"`
	OriginalURL   string    `json:"originalUrl"`
	ApprovedAt    time.Time `json:"approvedAt"`
	Deadline      time.Time `json:"deadline"`
}

// Ledger is a time-bounded set of user-approved URLs.
// Expiry is enforced on every read; Sweep only reclaims memory.
type Ledger struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]Entry // keyed by normalized URL
}

// New creates a ledger. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Ledger{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
}

// WithClock replaces the time source.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// TTL returns the approval lifetime.
func (l *Ledger) TTL() time.Duration {
	return l.ttl
}

// Approve records url with a fresh deadline. Approving again resets the
// deadline rather than extending it.
func (l *Ledger) Approve(rawURL string) (Entry, error) {
	key, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return Entry{}, err
	}

	now := l.now()
	entry := Entry{
		NormalizedURL: key,
		OriginalURL:   rawURL,
		ApprovedAt:    now,
		Deadline:      now.Add(l.ttl),
	}

	l.mu.Lock()
	l.entries[key] = entry
	l.mu.Unlock()

	return entry, nil
}

// IsApproved reports whether url holds a live approval. It does not consume it.
func (l *Ledger) IsApproved(rawURL string) bool {
	key, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.liveLocked(key, l.now())
	return ok
}

// Consume removes the approval for url and reports whether a live one existed.
func (l *Ledger) Consume(rawURL string) bool {
	key, err := utils.NormalizeURL(rawURL)
	if err != nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.liveLocked(key, l.now())
	delete(l.entries, key)
	return ok
}

// Sweep drops expired entries and returns how many were removed.
func (l *Ledger) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, entry := range l.entries {
		if !now.Before(entry.Deadline) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live approvals.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for _, entry := range l.entries {
		if now.Before(entry.Deadline) {
			n++
		}
	}
	return n
}

// Entries returns copies of all live approvals.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	out := make([]Entry, 0, len(l.entries))
	for _, entry := range l.entries {
		if now.Before(entry.Deadline) {
			out = append(out, entry)
		}
	}
	return out
}

// liveLocked returns the entry for key if its deadline has not passed,
// deleting it otherwise. Caller holds mu.
func (l *Ledger) liveLocked(key string, now time.Time) (Entry, bool) {
	entry, ok := l.entries[key]
	if !ok {
		return Entry{}, false
	}
	if !now.Before(entry.Deadline) {
		delete(l.entries, key)
		return Entry{}, false
	}
	return entry, true
}
