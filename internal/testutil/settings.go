package testutil

import (
	"context"
	"sync"
)

// Settings is an in-memory credential and protection flag.
type Settings struct {
	mu         sync.Mutex
	credential string
	disabled   bool
	err        error
}

// NewSettings returns settings holding credential with protection on.
func NewSettings(credential string) *Settings {
	return &Settings{credential: credential}
}

// SetCredential replaces the stored credential.
func (s *Settings) SetCredential(credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credential = credential
}

// SetProtection toggles the protection flag.
func (s *Settings) SetProtection(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled = !enabled
}

// FailWith makes every read return err until cleared with nil.
func (s *Settings) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *Settings) Credential(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.credential, nil
}

func (s *Settings) ProtectionEnabled(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	return !s.disabled, nil
}
