// Package browsertest provides a recording browser.Host for tests.
package browsertest

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/browser"
)

// Call is one recorded Host invocation.
type Call struct {
	Method string
	TabID  int
	URL    string
	Popup  browser.Popup
}

// Host records every command and can be told to fail per method.
type Host struct {
	mu        sync.Mutex
	calls     []Call
	errs      map[string]error
	nextTabID int

	// OnUpdateTab, when set, runs inside UpdateTab before it returns.
	OnUpdateTab func(tabID int, url string)
}

var _ browser.Host = (*Host)(nil)

// New creates a fake host whose CreateTab ids start at 100.
func New() *Host {
	return &Host{errs: make(map[string]error), nextTabID: 100}
}

// FailOn makes method return err until cleared with a nil err.
func (h *Host) FailOn(method string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.errs, method)
		return
	}
	h.errs[method] = err
}

func (h *Host) UpdateTab(_ context.Context, tabID int, url string) error {
	err := h.record(Call{Method: "UpdateTab", TabID: tabID, URL: url})
	if err == nil && h.OnUpdateTab != nil {
		h.OnUpdateTab(tabID, url)
	}
	return err
}

func (h *Host) CreateTab(_ context.Context, url string) (int, error) {
	if err := h.record(Call{Method: "CreateTab", URL: url}); err != nil {
		return 0, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextTabID++
	return h.nextTabID, nil
}

func (h *Host) ShowInterstitial(_ context.Context, tabID int, popup browser.Popup) error {
	return h.record(Call{Method: "ShowInterstitial", TabID: tabID, URL: popup.URL, Popup: popup})
}

func (h *Host) ShowConfirm(_ context.Context, tabID int, popup browser.Popup) error {
	return h.record(Call{Method: "ShowConfirm", TabID: tabID, URL: popup.URL, Popup: popup})
}

// Calls returns a copy of every recorded call in order.
func (h *Host) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// CallsTo returns the recorded calls to method.
func (h *Host) CallsTo(method string) []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Call
	for _, c := range h.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (h *Host) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = nil
}

func (h *Host) record(c Call) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, c)
	return h.errs[c.Method]
}
