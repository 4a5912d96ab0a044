package guard

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

var (
	// ErrUnknownAction is returned for an envelope whose action is not a
	// known message.
	ErrUnknownAction = errors.New("unknown action")
	// ErrMalformedMessage is returned for input that is not a JSON object.
	ErrMalformedMessage = errors.New("malformed message")
)

// Action names a message variant.
type Action string

const (
	ActionCheckClickURL      Action = "checkClickUrl"
	ActionPopupResponse      Action = "popupResponse"
	ActionApproveNavigation  Action = "approveNavigation"
	ActionOpenWelcomePage    Action = "openWelcomePage"
	ActionGetConfig          Action = "getConfig"
	ActionGetStats           Action = "getStats"
	ActionValidateToken      Action = "validateToken"
	ActionSetProtection      Action = "setProtection"
	ActionExtensionInstalled Action = "extensionInstalled"
)

// Message is one inbound request. The set of variants is closed.
type Message interface {
	Action() Action
	message()
}

// CheckClickURL asks what to do with a link click.
type CheckClickURL struct {
	URL string `json:"url"`
}

// PopupResponse carries the user's answer to an in-page interstitial.
type PopupResponse struct {
	PopupID    string            `json:"popupId"`
	UserAction types.PopupAction `json:"userAction"`
	URL        string            `json:"url"`
}

// ApproveNavigation is sent by a full-page interstitial on proceed.
type ApproveNavigation struct {
	URL string `json:"url"`
}

// OpenWelcomePage opens the onboarding page in a new tab.
type OpenWelcomePage struct {
	UpdateToken bool `json:"updateToken,omitempty"`
}

type GetConfig struct{}

type GetStats struct{}

// ValidateToken checks a credential and stores it when valid.
type ValidateToken struct {
	Token string `json:"token"`
}

// SetProtection turns checking on or off.
type SetProtection struct {
	Enabled bool `json:"enabled"`
}

// ExtensionInstalled is forwarded from the extension's install hook.
// Reason is "install", "update" or "browser_update".
type ExtensionInstalled struct {
	Reason string `json:"reason"`
}

func (CheckClickURL) Action() Action      { return ActionCheckClickURL }
func (PopupResponse) Action() Action      { return ActionPopupResponse }
func (ApproveNavigation) Action() Action  { return ActionApproveNavigation }
func (OpenWelcomePage) Action() Action    { return ActionOpenWelcomePage }
func (GetConfig) Action() Action          { return ActionGetConfig }
func (GetStats) Action() Action           { return ActionGetStats }
func (ValidateToken) Action() Action      { return ActionValidateToken }
func (SetProtection) Action() Action      { return ActionSetProtection }
func (ExtensionInstalled) Action() Action { return ActionExtensionInstalled }

func (CheckClickURL) message()      {}
func (PopupResponse) message()      {}
func (ApproveNavigation) message()  {}
func (OpenWelcomePage) message()    {}
func (GetConfig) message()          {}
func (GetStats) message()           {}
func (ValidateToken) message()      {}
func (SetProtection) message()      {}
func (ExtensionInstalled) message() {}

// Envelope is a decoded message plus the sender's tab.
type Envelope struct {
	TabID   int
	Message Message
}

// Decode parses {"action": ..., "tabId": ..., <payload fields>}.
func Decode(data []byte) (Envelope, error) {
	if !gjson.ValidBytes(data) {
		return Envelope{}, ErrMalformedMessage
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Envelope{}, ErrMalformedMessage
	}

	env := Envelope{TabID: int(root.Get("tabId").Int())}
	action := Action(root.Get("action").String())

	var err error
	switch action {
	case ActionCheckClickURL:
		env.Message, err = decodeAs[CheckClickURL](data)
	case ActionPopupResponse:
		env.Message, err = decodeAs[PopupResponse](data)
	case ActionApproveNavigation:
		env.Message, err = decodeAs[ApproveNavigation](data)
	case ActionOpenWelcomePage:
		env.Message, err = decodeAs[OpenWelcomePage](data)
	case ActionGetConfig:
		env.Message = GetConfig{}
	case ActionGetStats:
		env.Message = GetStats{}
	case ActionValidateToken:
		env.Message, err = decodeAs[ValidateToken](data)
	case ActionSetProtection:
		env.Message, err = decodeAs[SetProtection](data)
	case ActionExtensionInstalled:
		env.Message, err = decodeAs[ExtensionInstalled](data)
	default:
		return env, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err != nil {
		return env, fmt.Errorf("decode %s: %w", action, err)
	}
	return env, nil
}

func decodeAs[T Message](data []byte) (Message, error) {
	var m T
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
