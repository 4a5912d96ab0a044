// Package testutil provides testing utilities shared by guard tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/domain/classifier"
	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

// MockClassifier is a mock implementation of classifier.Classifier.
type MockClassifier struct {
	mock.Mock
}

// Classify mocks the Classify method.
func (m *MockClassifier) Classify(ctx context.Context, url, credential string) types.ClassificationResult {
	args := m.Called(ctx, url, credential)
	return args.Get(0).(types.ClassificationResult)
}

// ValidateToken mocks the ValidateToken method.
func (m *MockClassifier) ValidateToken(ctx context.Context, token string) classifier.TokenValidation {
	args := m.Called(ctx, token)
	return args.Get(0).(classifier.TokenValidation)
}

// NewMockClassifier creates a mock whose expectations are asserted when
// the test finishes.
func NewMockClassifier(t *testing.T) *MockClassifier {
	t.Helper()
	m := new(MockClassifier)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// OnClassify registers a verdict for url.
func (m *MockClassifier) OnClassify(url string, result types.ClassificationResult) *mock.Call {
	return m.On("Classify", mock.Anything, url, mock.Anything).Return(result)
}
