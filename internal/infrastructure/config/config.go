package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Classifier ClassifierConfig
	Storage    StorageConfig
	Guard      GuardConfig
	Bridge     BridgeConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8787"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// ClassifierConfig holds the remote reputation service settings.
type ClassifierConfig struct {
	BaseURL string        `envconfig:"CLASSIFIER_URL" default:"http://127.0.0.1:8000"`
	Timeout time.Duration `envconfig:"CLASSIFIER_TIMEOUT" default:"10s"`
	// RequestsPerSecond limits outbound checks; 0 means unlimited.
	RequestsPerSecond float64 `envconfig:"CLASSIFIER_RPS" default:"0"`
}

// StorageConfig holds settings persistence configuration.
type StorageConfig struct {
	// DSN is a sqlite file path. Empty keeps settings in memory.
	DSN string `envconfig:"STORAGE_DSN" default:""`
}

// GuardConfig holds navigation guard tuning.
type GuardConfig struct {
	ExtensionBaseURL string        `envconfig:"EXTENSION_BASE_URL" default:"chrome-extension://safewaters/"`
	ApprovalTTL      time.Duration `envconfig:"GUARD_APPROVAL_TTL" default:"30s"`
	SweepInterval    time.Duration `envconfig:"GUARD_SWEEP_INTERVAL" default:"2m"`
	ClickMaxAge      time.Duration `envconfig:"GUARD_CLICK_MAX_AGE" default:"30s"`
	NavigationMaxAge time.Duration `envconfig:"GUARD_NAVIGATION_MAX_AGE" default:"60s"`
	PatternsFile     string        `envconfig:"GUARD_PATTERNS_FILE" default:""`
	VerdictCacheTTL  time.Duration `envconfig:"GUARD_VERDICT_CACHE_TTL" default:"0s"`
}

// BridgeConfig holds extension bridge configuration.
type BridgeConfig struct {
	CommandTimeout time.Duration `envconfig:"BRIDGE_COMMAND_TIMEOUT" default:"5s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	File        string `envconfig:"LOG_FILE" default:""`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects settings the guard cannot run with.
func (c *Config) Validate() error {
	if c.Guard.ExtensionBaseURL == "" {
		return errors.New("EXTENSION_BASE_URL must not be empty")
	}
	if c.Classifier.BaseURL == "" {
		return errors.New("CLASSIFIER_URL must not be empty")
	}
	durations := map[string]time.Duration{
		"CLASSIFIER_TIMEOUT":       c.Classifier.Timeout,
		"GUARD_APPROVAL_TTL":       c.Guard.ApprovalTTL,
		"GUARD_SWEEP_INTERVAL":     c.Guard.SweepInterval,
		"GUARD_CLICK_MAX_AGE":      c.Guard.ClickMaxAge,
		"GUARD_NAVIGATION_MAX_AGE": c.Guard.NavigationMaxAge,
		"BRIDGE_COMMAND_TIMEOUT":   c.Bridge.CommandTimeout,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.Guard.VerdictCacheTTL < 0 {
		return fmt.Errorf("GUARD_VERDICT_CACHE_TTL must not be negative, got %s", c.Guard.VerdictCacheTTL)
	}
	return nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8787",
			Host: "127.0.0.1",
		},
		Classifier: ClassifierConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: 10 * time.Second,
		},
		Guard: GuardConfig{
			ExtensionBaseURL: "chrome-extension://safewaters/",
			ApprovalTTL:      30 * time.Second,
			SweepInterval:    2 * time.Minute,
			ClickMaxAge:      30 * time.Second,
			NavigationMaxAge: 60 * time.Second,
		},
		Bridge: BridgeConfig{
			CommandTimeout: 5 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
