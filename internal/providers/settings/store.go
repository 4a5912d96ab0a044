package settings

import (
	"context"
	"strconv"
	"sync"
)

// Keys of the persisted settings.
const (
	KeyCredential = "profileToken"
	KeyProtection = "safewatersActive"
)

// Store persists the credential and the protection flag.
type Store interface {
	Credential(ctx context.Context) (string, error)
	SetCredential(ctx context.Context, token string) error
	ProtectionEnabled(ctx context.Context) (bool, error)
	SetProtectionEnabled(ctx context.Context, enabled bool) error
	Close() error
}

// Memory keeps settings in process memory.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Credential(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[KeyCredential], nil
}

func (m *Memory) SetCredential(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyCredential] = token
	return nil
}

func (m *Memory) ProtectionEnabled(context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return parseFlag(m.values[KeyProtection]), nil
}

func (m *Memory) SetProtectionEnabled(_ context.Context, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyProtection] = strconv.FormatBool(enabled)
	return nil
}

func (m *Memory) Close() error { return nil }

// An absent or unreadable flag means protection is on.
func parseFlag(v string) bool {
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return enabled
}
