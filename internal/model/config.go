package model

import (
	"fmt"
	"time"
)

// Config holds the complete linkrot configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Robots      RobotsConfig      `yaml:"robots"`
	Extract     ExtractConfig     `yaml:"extract"`
	Output      OutputConfig      `yaml:"output"`
	LLM         LLMConfig         `yaml:"llm"`
}

// HTTPConfig controls the probe's HTTP behavior. Durations are carried
// as plain integers so the yaml file and the viper keys stay readable
// and identical.
type HTTPConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Per-request timeout
	MaxRedirects   int    `yaml:"max_redirects"`   // Redirects followed before giving up
	HTTPProxy      string `yaml:"http_proxy,omitempty"`
	HTTPSProxy     string `yaml:"https_proxy,omitempty"`
}

// Timeout returns the per-request timeout as a duration
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConcurrencyConfig controls the external-probe worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"` // Pool size for external probes
}

// RateLimitConfig controls per-host politeness limits
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// RobotsConfig controls the optional robots.txt advisory check
type RobotsConfig struct {
	Respect         bool `yaml:"respect"`           // Skip URLs disallowed for our user agent
	CacheTTLMinutes int  `yaml:"cache_ttl_minutes"` // Per-host robots.txt cache lifetime
}

// CacheTTL returns the robots.txt cache lifetime as a duration
func (c RobotsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// ExtractConfig controls the inventory step
type ExtractConfig struct {
	Mode string `yaml:"mode"` // "regex" (default) or "dom"
}

// OutputConfig controls report and progress output
type OutputConfig struct {
	Manifest string `yaml:"manifest"` // links-list.json path
	Report   string `yaml:"report"`   // links-dead.csv path
	Verbose  bool   `yaml:"verbose"`
}

// LLMConfig controls the optional triage summary
type LLMConfig struct {
	Provider  string `yaml:"provider,omitempty"` // "openai", "ollama", "" (disabled)
	Model     string `yaml:"model,omitempty"`
	APIKey    string `yaml:"-"` // Never persisted; env only
	BaseURL   string `yaml:"base_url,omitempty"`
	MaxTokens int    `yaml:"max_tokens,omitempty"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
			MaxRedirects:   10,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 32,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 8,
			Burst:             4,
		},
		Robots: RobotsConfig{
			Respect:         false,
			CacheTTLMinutes: 15,
		},
		Extract: ExtractConfig{
			Mode: "regex",
		},
		Output: OutputConfig{
			Manifest: "links-list.json",
			Report:   "links-dead.csv",
		},
		LLM: LLMConfig{
			MaxTokens: 800,
		},
	}
}

// Validate rejects configurations that must never reach the network
func (c *Config) Validate() error {
	if c.Concurrency.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Concurrency.Workers)
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.HTTP.TimeoutSeconds)
	}
	if c.HTTP.MaxRedirects <= 0 {
		return fmt.Errorf("max redirects must be positive, got %d", c.HTTP.MaxRedirects)
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %v", c.RateLimit.RequestsPerSecond)
	}
	switch c.Extract.Mode {
	case "regex", "dom":
	default:
		return fmt.Errorf("unknown extract mode %q (want regex or dom)", c.Extract.Mode)
	}
	return nil
}
