package classifier

import (
	"context"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

// Classifier returns a verdict for a URL. Implementations never fail:
// transport problems come back as an uncertain verdict.
type Classifier interface {
	Classify(ctx context.Context, url, credential string) types.ClassificationResult
}

// TokenValidator checks a profile credential with the remote service.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) TokenValidation
}

// ErrorTypeUnavailable marks a validation that never reached the service.
const ErrorTypeUnavailable = "API_UNAVAILABLE"

// TokenValidation is the outcome of a credential check.
type TokenValidation struct {
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"errorType,omitempty"`
}

const (
	defaultReason   = "Security check"
	uncertainReason = "Could not verify site safety"
)
