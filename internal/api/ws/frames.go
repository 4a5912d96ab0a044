package ws

import (
	"github.com/tidwall/gjson"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/browser"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

// FrameType discriminates bridge frames.
type FrameType string

const (
	// Extension -> service.
	FrameMessage    FrameType = "message"
	FrameNavigation FrameType = "navigation"
	FrameAck        FrameType = "ack"
	FramePing       FrameType = "ping"

	// Service -> extension.
	FrameReply   FrameType = "reply"
	FrameCommand FrameType = "command"
	FramePong    FrameType = "pong"
	FrameError   FrameType = "error"
)

// Command names understood by the extension.
const (
	CommandUpdateTab        = "updateTab"
	CommandCreateTab        = "createTab"
	CommandShowInterstitial = "showInterstitial"
	CommandShowConfirm      = "showConfirm"
)

// AckCodeTabGone marks an ack for a tab that no longer exists.
const AckCodeTabGone = "tab_gone"

// outFrame is any frame the service sends.
type outFrame struct {
	Type    FrameType `json:"type"`
	ID      string    `json:"id,omitempty"`
	Payload any       `json:"payload,omitempty"`
}

// inFrame is a received frame with its payload left raw.
type inFrame struct {
	Type    FrameType
	ID      string
	Payload []byte
}

func parseFrame(data []byte) (inFrame, bool) {
	if !gjson.ValidBytes(data) {
		return inFrame{}, false
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return inFrame{}, false
	}
	f := inFrame{
		Type: FrameType(root.Get("type").String()),
		ID:   root.Get("id").String(),
	}
	if p := root.Get("payload"); p.Exists() {
		f.Payload = []byte(p.Raw)
	}
	return f, true
}

// Command is the payload of a command frame.
type Command struct {
	Command string         `json:"command"`
	TabID   int            `json:"tabId,omitempty"`
	URL     string         `json:"url,omitempty"`
	Popup   *browser.Popup `json:"popup,omitempty"`
}

// Ack is the extension's answer to a command.
type Ack struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Code  string `json:"code,omitempty"`
	TabID int    `json:"tabId,omitempty"`
}

// NavigationReply answers a navigation frame.
type NavigationReply struct {
	Decision types.Decision `json:"decision"`
	Error    string         `json:"error,omitempty"`
}
