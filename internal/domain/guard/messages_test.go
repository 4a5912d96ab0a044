package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/types"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		tabID int
		want  Message
	}{
		{"check click", `{"action":"checkClickUrl","url":"https://a.test/","tabId":4}`, 4, CheckClickURL{URL: "https://a.test/"}},
		{"popup response", `{"action":"popupResponse","popupId":"popup_1","userAction":"proceed","url":"https://a.test/"}`, 0,
			PopupResponse{PopupID: "popup_1", UserAction: types.PopupProceed, URL: "https://a.test/"}},
		{"approve", `{"action":"approveNavigation","url":"https://a.test/"}`, 0, ApproveNavigation{URL: "https://a.test/"}},
		{"welcome", `{"action":"openWelcomePage","updateToken":true}`, 0, OpenWelcomePage{UpdateToken: true}},
		{"config", `{"action":"getConfig"}`, 0, GetConfig{}},
		{"stats", `{"action":"getStats","tabId":9}`, 9, GetStats{}},
		{"token", `{"action":"validateToken","token":"abc"}`, 0, ValidateToken{Token: "abc"}},
		{"protection", `{"action":"setProtection","enabled":false}`, 0, SetProtection{Enabled: false}},
		{"installed", `{"action":"extensionInstalled","reason":"install"}`, 0, ExtensionInstalled{Reason: "install"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.tabID, env.TabID)
			assert.Equal(t, tt.want, env.Message)
			assert.Equal(t, tt.want.Action(), env.Message.Action())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{"action":"launchMissiles"}`))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Decode([]byte(`{"url":"https://a.test/"}`))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = Decode([]byte(`["checkClickUrl"]`))
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = Decode([]byte(`{"action":"checkClickUrl","url":42}`))
	assert.Error(t, err)
}
