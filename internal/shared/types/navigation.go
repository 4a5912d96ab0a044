package types

import "time"

// Channel is the interception layer that observed a navigation.
type Channel string

const (
	ChannelClick      Channel = "CLICK"
	ChannelAddressBar Channel = "ADDRESS_BAR"
)

// NavigationRequest is one accepted navigation attempt.
type NavigationRequest struct {
	URL       string    `json:"url"`
	TabID     int       `json:"tabId"`
	Channel   Channel   `json:"sourceChannel"`
	CreatedAt time.Time `json:"createdAt"`
}

// NavigationEventKind mirrors the webNavigation events the extension forwards.
type NavigationEventKind string

const (
	NavigationBefore    NavigationEventKind = "beforeNavigate"
	NavigationCommitted NavigationEventKind = "committed"
	NavigationCompleted NavigationEventKind = "completed"
	NavigationError     NavigationEventKind = "error"
)

// Valid reports whether k is a known event kind.
func (k NavigationEventKind) Valid() bool {
	switch k {
	case NavigationBefore, NavigationCommitted, NavigationCompleted, NavigationError:
		return true
	}
	return false
}

// NavigationEvent is a browser lifecycle event for one frame.
type NavigationEvent struct {
	Kind    NavigationEventKind `json:"kind" binding:"required"`
	URL     string              `json:"url" binding:"required"`
	TabID   int                 `json:"tabId"`
	FrameID int                 `json:"frameId"`
	Error   string              `json:"error,omitempty"`
}

// ClickAction tells the content script what to do with a click.
type ClickAction string

const (
	ClickAllow    ClickAction = "allow"
	ClickPopup    ClickAction = "popup"
	ClickRedirect ClickAction = "redirect"
)

// ClickResult answers a checkClickUrl message.
type ClickResult struct {
	Action      ClickAction `json:"action"`
	PopupType   string      `json:"popupType,omitempty"`
	PopupID     string      `json:"popupId,omitempty"`
	RedirectURL string      `json:"redirectUrl,omitempty"`
	Reason      string      `json:"reason,omitempty"`
}

// PopupAction is the user's button choice on an in-page interstitial.
type PopupAction string

const (
	PopupProceed    PopupAction = "proceed"
	PopupCancel     PopupAction = "cancel"
	PopupUnderstood PopupAction = "understood"
)
