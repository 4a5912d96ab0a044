// Package id provides ID generation for the guard.
//
// Popup and bridge command IDs are prefixed ULIDs so they sort by
// creation time and read well in logs. Bridge connections use random
// UUIDs since nothing orders them.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// PopupID identifies a shown in-page confirmation popup.
type PopupID string

// CommandID correlates a command pushed to the extension with its ack.
type CommandID string

// ConnectionID identifies one extension bridge connection.
type ConnectionID string

const (
	PopupPrefix   = "popup"
	CommandPrefix = "cmd"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand with monotonic
// ordering inside the same millisecond.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy and clock.
// Useful for deterministic tests.
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{entropy: entropy, now: now}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a "<prefix>_<ulid>" string.
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewPopupID generates a popup ID.
func (g *Generator) NewPopupID() PopupID {
	return PopupID(g.GenerateWithPrefix(PopupPrefix))
}

// NewCommandID generates a bridge command ID.
func (g *Generator) NewCommandID() CommandID {
	return CommandID(g.GenerateWithPrefix(CommandPrefix))
}

func NewPopupID() PopupID     { return Default().NewPopupID() }
func NewCommandID() CommandID { return Default().NewCommandID() }

// NewConnectionID generates a random bridge connection ID.
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

func (id PopupID) String() string      { return string(id) }
func (id CommandID) String() string    { return string(id) }
func (id ConnectionID) String() string { return string(id) }

// Timestamp extracts the creation time from a prefixed or bare ULID.
func Timestamp(id string) (time.Time, error) {
	if i := strings.LastIndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse id %q: %w", id, err)
	}
	return ulid.Time(parsed.Time()), nil
}

// HasPrefix reports whether id was generated with the given prefix.
func HasPrefix(id, prefix string) bool {
	rest, ok := strings.CutPrefix(id, prefix+"_")
	if !ok {
		return false
	}
	_, err := ulid.Parse(rest)
	return err == nil
}
