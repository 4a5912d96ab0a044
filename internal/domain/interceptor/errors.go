package interceptor

import "errors"

var (
	// ErrUnknownPopup is returned for a response to a popup that was
	// already resolved, expired or never shown.
	ErrUnknownPopup = errors.New("unknown popup")
	// ErrInvalidAction is returned for a popup answer the popup does not offer.
	ErrInvalidAction = errors.New("action not offered by popup")
)
