package utils

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// ErrInvalidURL is returned for input that is not an absolute URL.
var ErrInvalidURL = errors.New("invalid url")

// NormalizeURL reduces an absolute URL to scheme://host/path?query.
// The fragment is dropped, scheme and host are lowercased and an empty
// http(s) path becomes "/", so equivalent spellings share one key.
func NormalizeURL(raw string) (string, error) {
	u, err := ParseAbsolute(raw)
	if err != nil {
		return "", err
	}

	scheme := strings.ToLower(u.Scheme)
	path := u.EscapedPath()
	if path == "" && (scheme == "http" || scheme == "https") {
		path = "/"
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(strings.ToLower(u.Host))
	b.WriteString(path)
	if u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	return b.String(), nil
}

// ParseAbsolute parses raw and requires a scheme and host.
func ParseAbsolute(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	return u, nil
}

// Hostname returns the lowercased host without port, or raw when it
// cannot be parsed.
func Hostname(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return strings.ToLower(u.Hostname())
}

// RegistrableDomain returns the eTLD+1 of host ("news.bbc.co.uk" -> "bbc.co.uk").
// Hosts without a registrable part (IPs, "localhost") are returned unchanged.
func RegistrableDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// IsHTTP reports whether raw uses the http or https scheme.
func IsHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}
