package id

import (
	"bytes"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGenerateUnique(t *testing.T) {
	gen := NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		s := gen.Generate().String()
		if seen[s] {
			t.Fatalf("duplicate id %s", s)
		}
		seen[s] = true
	}
}

func TestGenerateMonotonic(t *testing.T) {
	gen := NewGenerator()

	ids := make([]string, 100)
	for i := range ids {
		ids[i] = gen.Generate().String()
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("ids from one generator should sort in creation order")
	}
}

func TestPrefixedIDs(t *testing.T) {
	gen := NewGenerator()

	popup := gen.NewPopupID().String()
	if !strings.HasPrefix(popup, "popup_") {
		t.Errorf("popup id should start with popup_, got %s", popup)
	}
	if !HasPrefix(popup, PopupPrefix) {
		t.Errorf("HasPrefix should accept %s", popup)
	}
	if HasPrefix(popup, CommandPrefix) {
		t.Errorf("HasPrefix should reject %s for %s", popup, CommandPrefix)
	}

	cmd := gen.NewCommandID().String()
	if !HasPrefix(cmd, CommandPrefix) {
		t.Errorf("command id malformed: %s", cmd)
	}
	if HasPrefix("cmd_not-a-ulid", CommandPrefix) {
		t.Error("HasPrefix should reject a bad ulid")
	}
}

func TestTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	gen := NewGeneratorWithEntropy(bytes.NewReader(make([]byte, 64)), func() time.Time { return at })

	popup := gen.NewPopupID()
	got, err := Timestamp(popup.String())
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("Timestamp = %v, want %v", got, at)
	}

	if _, err := Timestamp("popup_garbage"); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestConnectionIDUnique(t *testing.T) {
	a, b := NewConnectionID(), NewConnectionID()
	if a == b {
		t.Error("connection ids should differ")
	}
	if len(a.String()) != 36 {
		t.Errorf("connection id should be a uuid, got %s", a)
	}
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()

	var mu sync.Mutex
	seen := make(map[PopupID]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p := gen.NewPopupID()
				mu.Lock()
				seen[p] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != 1000 {
		t.Errorf("expected 1000 unique ids, got %d", len(seen))
	}
}
