package browser

import (
	"context"
	"errors"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

var (
	// ErrNotConnected is returned when no extension is attached to run a command.
	ErrNotConnected = errors.New("browser host not connected")
	// ErrTabGone is returned when the target tab no longer exists.
	ErrTabGone = errors.New("tab no longer exists")
)

// Host is the set of browser capabilities the guard drives. Production
// code talks to the extension over the bridge; tests use browsertest.
type Host interface {
	// UpdateTab replaces the URL loaded in a tab.
	UpdateTab(ctx context.Context, tabID int, url string) error
	// CreateTab opens a new tab and returns its id.
	CreateTab(ctx context.Context, url string) (int, error)
	// ShowInterstitial injects the styled in-page interstitial.
	ShowInterstitial(ctx context.Context, tabID int, popup Popup) error
	// ShowConfirm shows the minimal fallback confirmation.
	ShowConfirm(ctx context.Context, tabID int, popup Popup) error
}

// Popup describes an in-page interstitial. The user's answer comes back
// as a popupResponse message carrying ID.
type Popup struct {
	ID      string              `json:"popupId"`
	Type    string              `json:"type"`
	URL     string              `json:"url"`
	Domain  string              `json:"domain"`
	Reason  string              `json:"reason"`
	Actions []types.PopupAction `json:"actions"`
}

// ActionsFor returns the buttons offered for a decision: proceed and
// cancel when a bypass is allowed, otherwise only an acknowledgement.
func ActionsFor(decision types.Decision) []types.PopupAction {
	if decision.BypassAllowed() {
		return []types.PopupAction{types.PopupProceed, types.PopupCancel}
	}
	return []types.PopupAction{types.PopupUnderstood}
}
