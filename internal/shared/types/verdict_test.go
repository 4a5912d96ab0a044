package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecisionPrecedence(t *testing.T) {
	tests := []struct {
		name   string
		result ClassificationResult
		want   Decision
	}{
		{"safe", ClassificationResult{Safe: true}, DecisionAllow},
		{"malicious", ClassificationResult{Malicious: true}, DecisionShowWarning},
		{"blocked by rule", ClassificationResult{BlockedByRule: true}, DecisionShowBlocked},
		{"rule beats malicious", ClassificationResult{BlockedByRule: true, Malicious: true}, DecisionShowBlocked},
		{"uncertain", UncertainResult("timeout"), DecisionShowUncertain},
		{"malicious beats uncertain", ClassificationResult{Malicious: true, Uncertain: true}, DecisionShowWarning},
		{"setup beats malicious", ClassificationResult{NeedsConfiguration: true, Malicious: true}, DecisionRedirectToSetup},
		{"setup beats rule", ClassificationResult{NeedsConfiguration: true, BlockedByRule: true}, DecisionRedirectToSetup},
		{"unflagged but not safe", ClassificationResult{}, DecisionShowUncertain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.Decision())
		})
	}
}

func TestDecisionProperties(t *testing.T) {
	assert.False(t, DecisionShowBlocked.BypassAllowed())
	assert.True(t, DecisionShowWarning.BypassAllowed())
	assert.True(t, DecisionShowUncertain.BypassAllowed())

	assert.True(t, DecisionShowBlocked.Interstitial())
	assert.False(t, DecisionAllow.Interstitial())
	assert.False(t, DecisionRedirectToSetup.Interstitial())

	assert.Equal(t, "blocked", DecisionShowBlocked.PopupType())
	assert.Empty(t, DecisionAllow.PopupType())
}

func TestDefinitive(t *testing.T) {
	assert.True(t, ClassificationResult{Safe: true}.Definitive())
	assert.True(t, ClassificationResult{Malicious: true}.Definitive())
	assert.False(t, UncertainResult("x").Definitive())
	assert.False(t, NeedsConfigurationResult().Definitive())
}
