package interceptor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/classifier"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

// Settings is the persisted state the interceptors read on every check.
type Settings interface {
	Credential(ctx context.Context) (string, error)
	ProtectionEnabled(ctx context.Context) (bool, error)
}

const protectionOffReason = "Protection disabled"

// checker turns a URL into a verdict, honouring the protection flag and
// the stored credential.
type checker struct {
	classifier classifier.Classifier
	settings   Settings
	logger     *logging.Logger
}

// verdict never panics and never returns an error. Storage failures read
// as protection on and no credential.
func (c *checker) verdict(ctx context.Context, rawURL string) (result types.ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Classification panicked",
				zap.String("url", rawURL),
				zap.String("panic", fmt.Sprint(r)))
			result = types.UncertainResult(uncertainFallback)
		}
	}()

	enabled, err := c.settings.ProtectionEnabled(ctx)
	if err != nil {
		c.logger.Warn("Reading protection flag failed", zap.Error(err))
		enabled = true
	}
	if !enabled {
		return types.ClassificationResult{Safe: true, Reason: protectionOffReason}
	}

	credential, err := c.settings.Credential(ctx)
	if err != nil {
		c.logger.Warn("Reading credential failed", zap.Error(err))
		credential = ""
	}

	return c.classifier.Classify(ctx, rawURL, credential)
}

const uncertainFallback = "Could not verify site safety"
