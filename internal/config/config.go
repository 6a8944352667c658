// Package config loads and validates the textkit configuration: title-case
// exception lists, URL check behavior, and the HTTP serve mode.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/textkit/internal/titlecase"
)

// Config represents the application configuration
type Config struct {
	Title  titlecase.Exceptions `yaml:"title"`
	Check  CheckConfig          `yaml:"check"`
	Server ServerConfig         `yaml:"server"`
}

// CheckConfig configures the URL checker.
type CheckConfig struct {
	RequestTimeout  string `yaml:"request_timeout,omitempty"`
	FollowRedirects bool   `yaml:"follow_redirects"`
	MaxRedirects    int    `yaml:"max_redirects,omitempty"`
	MaxConcurrent   int    `yaml:"max_concurrent,omitempty"`
	RateLimitDelay  string `yaml:"rate_limit_delay,omitempty"`
	UserAgent       string `yaml:"user_agent,omitempty"`

	// CachePath is the SQLite result cache; empty disables persistence.
	CachePath string `yaml:"cache_path,omitempty"`
	CacheTTL  string `yaml:"cache_ttl,omitempty"`

	// NATS dead link event publishing; empty URL disables it.
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ServerConfig configures the HTTP serve mode.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`

	// PublicHost is the host used when deriving URLs from paths; when
	// empty, the request's Host header is used.
	PublicHost string `yaml:"public_host,omitempty"`
	HTTPS      bool   `yaml:"https"`

	// DocumentRoot and Prefix define the path-to-URL mapping.
	DocumentRoot string `yaml:"document_root,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`

	// RecheckInterval schedules periodic re-verification of cached URLs;
	// empty disables the job.
	RecheckInterval string `yaml:"recheck_interval,omitempty"`
}

// Load reads the configuration file at path, applies environment files and
// defaults, and validates the result. A missing file yields the defaults,
// still subject to environment overrides.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case os.IsNotExist(err):
		// File-less runs still honor environment overrides below.
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Check: CheckConfig{
			RequestTimeout: "10s",
			MaxRedirects:   10,
			MaxConcurrent:  10,
			RateLimitDelay: "100ms",
			CacheTTL:       "1h",
			Subject:        "textkit.deadlinks",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			RecheckInterval: "30m",
		},
	}
}

// Validate checks duration fields and numeric bounds.
func (c *Config) Validate() error {
	for name, d := range map[string]string{
		"check.request_timeout":   c.Check.RequestTimeout,
		"check.rate_limit_delay":  c.Check.RateLimitDelay,
		"check.cache_ttl":         c.Check.CacheTTL,
		"server.recheck_interval": c.Server.RecheckInterval,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid duration for %s: %q", name, d)
		}
	}
	if c.Check.MaxConcurrent < 0 {
		return fmt.Errorf("check.max_concurrent must not be negative")
	}
	if c.Check.MaxRedirects < 0 {
		return fmt.Errorf("check.max_redirects must not be negative")
	}
	return nil
}

// Duration parses a duration field, falling back when unset or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
