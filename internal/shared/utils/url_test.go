package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/a?b=1#frag", "https://example.com/a?b=1"},
		{"https://Example.COM", "https://example.com/"},
		{"HTTP://example.com:8080/x", "http://example.com:8080/x"},
		{"  https://example.com/path  ", "https://example.com/path"},
		{"https://example.com/a%20b", "https://example.com/a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeURLFragmentsShareKey(t *testing.T) {
	a, err := NormalizeURL("https://example.com/page#top")
	require.NoError(t, err)
	b, err := NormalizeURL("https://example.com/page#bottom")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalizeURLRejectsRelative(t *testing.T) {
	for _, in := range []string{"", "   ", "/relative/path", "example.com", "://nope"} {
		_, err := NormalizeURL(in)
		assert.ErrorIs(t, err, ErrInvalidURL, in)
	}
}

func TestHostname(t *testing.T) {
	assert.Equal(t, "example.com", Hostname("https://Example.com:443/x"))
	assert.Equal(t, "not a url", Hostname("not a url"))
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "bbc.co.uk", RegistrableDomain("news.bbc.co.uk"))
	assert.Equal(t, "github.com", RegistrableDomain("gist.GITHUB.com."))
	assert.Equal(t, "127.0.0.1", RegistrableDomain("127.0.0.1"))
}

func TestIsHTTP(t *testing.T) {
	assert.True(t, IsHTTP("https://example.com"))
	assert.True(t, IsHTTP("HTTP://example.com"))
	assert.False(t, IsHTTP("ftp://example.com"))
	assert.False(t, IsHTTP("data:text/html,hi"))
}
