package interceptor

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/SafeWaters/backend/internal/shared/utils"
)

// Patterns are the ignore lists consulted before any classification.
type Patterns struct {
	// IgnoredPrefixes are skipped by both channels.
	IgnoredPrefixes []string `json:"ignored_prefixes" yaml:"ignored_prefixes" toml:"ignored_prefixes"`
	// SpecialProtocols are skipped by the navigation channel.
	SpecialProtocols []string `json:"special_protocols" yaml:"special_protocols" toml:"special_protocols"`
	// SearchPatterns are substrings marking search-engine result URLs.
	SearchPatterns []string `json:"search_patterns" yaml:"search_patterns" toml:"search_patterns"`
	// SearchQueryKeys mark a URL as a search submission rather than direct navigation.
	SearchQueryKeys []string `json:"search_query_keys" yaml:"search_query_keys" toml:"search_query_keys"`
	// MaxQueryParams is the most query parameters a direct navigation may carry.
	MaxQueryParams int `json:"max_query_params" yaml:"max_query_params" toml:"max_query_params"`
	// BrowserDomains are vendor store and settings hosts.
	BrowserDomains []string `json:"browser_domains" yaml:"browser_domains" toml:"browser_domains"`
	// TrustedDomains are never checked. Matched by host or registrable domain.
	TrustedDomains []string `json:"trusted_domains" yaml:"trusted_domains" toml:"trusted_domains"`
}

// DefaultPatterns returns the stock ignore lists.
func DefaultPatterns() *Patterns {
	return &Patterns{
		IgnoredPrefixes: []string{
			"chrome://", "chrome-extension://", "moz-extension://",
			"about:", "data:", "blob:", "javascript:",
		},
		SpecialProtocols: []string{
			"chrome://", "edge://", "about:", "moz-extension://", "chrome-extension://",
			"data:", "blob:", "file:", "ftp:", "javascript:",
		},
		SearchPatterns: []string{
			"google.com/search", "bing.com/search", "duckduckgo.com/", "search.yahoo.com",
			"/search?", "yandex.com/search", "baidu.com/s?", "ecosia.org/search",
			"startpage.com/search", "searx.org/search",
		},
		SearchQueryKeys: []string{"q", "query", "search", "s"},
		MaxQueryParams:  3,
		BrowserDomains: []string{
			"chrome.google.com", "chromewebstore.google.com",
			"microsoftedge.microsoft.com", "addons.mozilla.org",
		},
	}
}

// LoadPatterns reads overrides from a .yaml/.yml or .toml file on top of
// the defaults. Keys missing from the file keep their default value.
func LoadPatterns(path string) (*Patterns, error) {
	p := DefaultPatterns()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, p)
	case ".toml":
		err = toml.Unmarshal(data, p)
	default:
		return nil, fmt.Errorf("patterns file %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse patterns file %s: %w", path, err)
	}
	if p.MaxQueryParams < 0 {
		return nil, fmt.Errorf("patterns file %s: max_query_params must not be negative", path)
	}
	p.normalize()
	return p, nil
}

func (p *Patterns) normalize() {
	for i, d := range p.TrustedDomains {
		p.TrustedDomains[i] = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(d)), ".")
	}
	for i, d := range p.BrowserDomains {
		p.BrowserDomains[i] = strings.ToLower(strings.TrimSpace(d))
	}
}

// IsIgnored reports whether a click on rawURL skips checking: empty,
// a listed prefix, or not http(s).
func (p *Patterns) IsIgnored(rawURL string) bool {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return true
	}
	if hasAnyPrefix(rawURL, p.IgnoredPrefixes) {
		return true
	}
	return !utils.IsHTTP(rawURL)
}

// IsSpecialProtocol reports whether rawURL uses a protocol the
// navigation channel never intercepts.
func (p *Patterns) IsSpecialProtocol(rawURL string) bool {
	return hasAnyPrefix(strings.TrimSpace(rawURL), p.SpecialProtocols)
}

// IsSearch reports whether rawURL looks like a search-engine result page.
func (p *Patterns) IsSearch(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, pattern := range p.SearchPatterns {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// IsBrowserDomain reports whether rawURL points at a browser vendor page.
func (p *Patterns) IsBrowserDomain(rawURL string) bool {
	host := utils.Hostname(rawURL)
	for _, d := range p.BrowserDomains {
		if host == d {
			return true
		}
	}
	return false
}

// IsTrusted reports whether rawURL's host or registrable domain is trusted.
func (p *Patterns) IsTrusted(rawURL string) bool {
	if len(p.TrustedDomains) == 0 {
		return false
	}
	host := utils.Hostname(rawURL)
	registrable := utils.RegistrableDomain(host)
	for _, d := range p.TrustedDomains {
		if host == d || registrable == d {
			return true
		}
	}
	return false
}

// IsDirect reports whether rawURL looks like a typed destination rather
// than a search submission.
func (p *Patterns) IsDirect(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	query := u.Query()
	for _, key := range p.SearchQueryKeys {
		if query.Has(key) {
			return false
		}
	}
	return len(query) <= p.MaxQueryParams
}

func hasAnyPrefix(s string, prefixes []string) bool {
	lower := strings.ToLower(s)
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
