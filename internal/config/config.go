// Package config provides configuration loading and management for the milestone tracker.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for environment variables read through viper
	EnvPrefix = "MILESTONE"

	// DefaultPollingInterval is the fixed spacing between scheduled status checks
	DefaultPollingInterval = 10 * time.Second

	// DefaultMaxAttempts bounds a monitoring session to roughly five minutes
	DefaultMaxAttempts = 30

	// DefaultResumeDelay lets backend processing settle after the app returns to the foreground
	DefaultResumeDelay = 2 * time.Second

	// DefaultRequestTimeout is the transport timeout for backend calls
	DefaultRequestTimeout = 10 * time.Second

	// DefaultRecordMaxTries is how many times a completion recording is attempted
	DefaultRecordMaxTries = 3

	// DefaultRecordInitialInterval is the first backoff step between recording attempts
	DefaultRecordInitialInterval = 500 * time.Millisecond

	// DefaultBreakerFailures is the number of consecutive query failures that opens the breaker
	DefaultBreakerFailures = 5

	// DefaultBreakerOpenTimeout is how long the breaker stays open before probing again
	DefaultBreakerOpenTimeout = 30 * time.Second

	// DefaultLedgerPath is where dispatch ledger entries are written
	DefaultLedgerPath = "./data/ledger"

	// DefaultManualCheckRate is the sustained rate of manual checks accepted by the API, per second
	DefaultManualCheckRate = 1.0

	// DefaultManualCheckBurst is the burst of manual checks accepted by the API
	DefaultManualCheckBurst = 3

	// DefaultTracingEndpoint is the OTLP/HTTP collector used when tracing is enabled
	DefaultTracingEndpoint = "localhost:4318"

	// DefaultTracingSampling keeps every trace
	DefaultTracingSampling = 1.0
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks; this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Backend      BackendConfig       `yaml:"backend"`
	Polling      *PollingConfig      `yaml:"polling,omitempty"`
	Lifecycle    *LifecycleConfig    `yaml:"lifecycle,omitempty"`
	Recorder     *RecorderConfig     `yaml:"recorder,omitempty"`
	Presentation *PresentationConfig `yaml:"presentation,omitempty"`
	Ledger       *LedgerConfig       `yaml:"ledger,omitempty"`
	API          *APIConfig          `yaml:"api,omitempty"`
	Telemetry    *TelemetryConfig    `yaml:"telemetry,omitempty"`
}

// BackendConfig defines the remote milestone backend
type BackendConfig struct {
	// Endpoint is the base URL of the backend (without path)
	// Example: "https://api.example.com"
	Endpoint string `yaml:"endpoint"`

	// Timeout is the per-request transport timeout (e.g., "10s")
	Timeout string `yaml:"timeout,omitempty"`

	// CircuitBreaker guards status queries against a failing backend
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty"`
}

// CircuitBreakerConfig defines when status queries short-circuit
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32 `yaml:"consecutiveFailures,omitempty"`
	OpenTimeout         string `yaml:"openTimeout,omitempty"`
}

// PollingConfig defines the bounded polling schedule
type PollingConfig struct {
	Interval    string `yaml:"interval,omitempty"`
	MaxAttempts int    `yaml:"maxAttempts,omitempty"`
}

// LifecycleConfig defines how app lifecycle transitions trigger checks
type LifecycleConfig struct {
	ResumeDelay string `yaml:"resumeDelay,omitempty"`
}

// RecorderConfig defines retries for completion recording
type RecorderConfig struct {
	MaxTries        uint   `yaml:"maxTries,omitempty"`
	InitialInterval string `yaml:"initialInterval,omitempty"`
}

// PresentationConfig selects the presentation collaborator
type PresentationConfig struct {
	// WebhookURL receives celebration payloads as JSON. When empty, payloads are logged.
	WebhookURL string `yaml:"webhookURL,omitempty"`
}

// LedgerConfig defines where dispatch outcomes are persisted
type LedgerConfig struct {
	Path string `yaml:"path,omitempty"`
}

// APIConfig defines limits for the control API
type APIConfig struct {
	ManualCheckRate  float64 `yaml:"manualCheckRate,omitempty"`
	ManualCheckBurst int     `yaml:"manualCheckBurst,omitempty"`
}

// TelemetryConfig defines metrics and tracing settings
type TelemetryConfig struct {
	MetricsEnabled bool           `yaml:"metricsEnabled"`
	Tracing        *TracingConfig `yaml:"tracing,omitempty"`
}

// TracingConfig defines OTLP trace export
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP/HTTP collector host:port, e.g. "localhost:4318"
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure sends spans over plain HTTP
	Insecure bool `yaml:"insecure,omitempty"`

	// Sampling is the ratio of traces kept, between 0 and 1
	Sampling *float64 `yaml:"sampling,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates YAML configuration content
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.Backend.Endpoint == "" {
		return fmt.Errorf("backend.endpoint is required")
	}
	if err := validateURL(c.Backend.Endpoint); err != nil {
		return fmt.Errorf("backend.endpoint: %w", err)
	}
	if err := validateDuration(c.Backend.Timeout, "backend.timeout"); err != nil {
		return err
	}
	if cb := c.Backend.CircuitBreaker; cb != nil {
		if err := validateDuration(cb.OpenTimeout, "backend.circuitBreaker.openTimeout"); err != nil {
			return err
		}
	}

	if p := c.Polling; p != nil {
		if err := validateDuration(p.Interval, "polling.interval"); err != nil {
			return err
		}
		if p.MaxAttempts < 0 {
			return fmt.Errorf("polling.maxAttempts must not be negative, got %d", p.MaxAttempts)
		}
	}

	if l := c.Lifecycle; l != nil {
		if err := validateDuration(l.ResumeDelay, "lifecycle.resumeDelay"); err != nil {
			return err
		}
	}

	if r := c.Recorder; r != nil {
		if err := validateDuration(r.InitialInterval, "recorder.initialInterval"); err != nil {
			return err
		}
	}

	if p := c.Presentation; p != nil && p.WebhookURL != "" {
		if err := validateURL(p.WebhookURL); err != nil {
			return fmt.Errorf("presentation.webhookURL: %w", err)
		}
	}

	if t := c.Telemetry; t != nil && t.Tracing != nil {
		if s := t.Tracing.Sampling; s != nil && (*s < 0 || *s > 1) {
			return fmt.Errorf("telemetry.tracing.sampling must be between 0 and 1, got %v", *s)
		}
	}

	if a := c.API; a != nil {
		if a.ManualCheckRate < 0 || a.ManualCheckBurst < 0 {
			return fmt.Errorf("api.manualCheckRate and api.manualCheckBurst must not be negative")
		}
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL host is required")
	}
	return nil
}

// validateDuration accepts empty values, which fall back to defaults
func validateDuration(value, field string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s must be a valid duration (e.g., '10s', '2m'): %w", field, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return nil
}

// durationOr parses value, returning fallback when it is empty or invalid
func durationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetRequestTimeout returns the backend transport timeout
func (c *Config) GetRequestTimeout() time.Duration {
	return durationOr(c.Backend.Timeout, DefaultRequestTimeout)
}

// GetBreakerFailures returns the consecutive failure count that opens the breaker
func (c *Config) GetBreakerFailures() uint32 {
	if cb := c.Backend.CircuitBreaker; cb != nil && cb.ConsecutiveFailures > 0 {
		return cb.ConsecutiveFailures
	}
	return DefaultBreakerFailures
}

// GetBreakerOpenTimeout returns how long an open breaker rejects queries
func (c *Config) GetBreakerOpenTimeout() time.Duration {
	if cb := c.Backend.CircuitBreaker; cb != nil {
		return durationOr(cb.OpenTimeout, DefaultBreakerOpenTimeout)
	}
	return DefaultBreakerOpenTimeout
}

// GetPollingInterval returns the spacing between scheduled checks
func (c *Config) GetPollingInterval() time.Duration {
	if c.Polling != nil {
		return durationOr(c.Polling.Interval, DefaultPollingInterval)
	}
	return DefaultPollingInterval
}

// GetMaxAttempts returns the number of scheduled checks before polling stops
func (c *Config) GetMaxAttempts() int {
	if c.Polling != nil && c.Polling.MaxAttempts > 0 {
		return c.Polling.MaxAttempts
	}
	return DefaultMaxAttempts
}

// GetResumeDelay returns the delay between a foreground transition and its check
func (c *Config) GetResumeDelay() time.Duration {
	if c.Lifecycle != nil {
		return durationOr(c.Lifecycle.ResumeDelay, DefaultResumeDelay)
	}
	return DefaultResumeDelay
}

// GetRecordMaxTries returns how many times a recording is attempted
func (c *Config) GetRecordMaxTries() uint {
	if c.Recorder != nil && c.Recorder.MaxTries > 0 {
		return c.Recorder.MaxTries
	}
	return DefaultRecordMaxTries
}

// GetRecordInitialInterval returns the first backoff step between recording attempts
func (c *Config) GetRecordInitialInterval() time.Duration {
	if c.Recorder != nil {
		return durationOr(c.Recorder.InitialInterval, DefaultRecordInitialInterval)
	}
	return DefaultRecordInitialInterval
}

// GetWebhookURL returns the presentation webhook, or "" to log payloads instead
func (c *Config) GetWebhookURL() string {
	if c.Presentation != nil {
		return c.Presentation.WebhookURL
	}
	return ""
}

// GetLedgerPath returns the ledger directory
func (c *Config) GetLedgerPath() string {
	if c.Ledger != nil && c.Ledger.Path != "" {
		return c.Ledger.Path
	}
	return DefaultLedgerPath
}

// GetManualCheckRate returns the sustained manual check rate per second
func (c *Config) GetManualCheckRate() float64 {
	if c.API != nil && c.API.ManualCheckRate > 0 {
		return c.API.ManualCheckRate
	}
	return DefaultManualCheckRate
}

// GetManualCheckBurst returns the manual check burst size
func (c *Config) GetManualCheckBurst() int {
	if c.API != nil && c.API.ManualCheckBurst > 0 {
		return c.API.ManualCheckBurst
	}
	return DefaultManualCheckBurst
}

// MetricsEnabled reports whether metrics should be collected and exported
func (c *Config) MetricsEnabled() bool {
	return c.Telemetry != nil && c.Telemetry.MetricsEnabled
}

// TracingEnabled reports whether spans should be exported
func (c *Config) TracingEnabled() bool {
	return c.Telemetry != nil && c.Telemetry.Tracing != nil && c.Telemetry.Tracing.Enabled
}

// GetTracingEndpoint returns the OTLP collector endpoint
func (c *Config) GetTracingEndpoint() string {
	if c.TracingEnabled() && c.Telemetry.Tracing.Endpoint != "" {
		return c.Telemetry.Tracing.Endpoint
	}
	return DefaultTracingEndpoint
}

// GetTracingInsecure reports whether spans are sent without TLS
func (c *Config) GetTracingInsecure() bool {
	return c.TracingEnabled() && c.Telemetry.Tracing.Insecure
}

// GetTracingSampling returns the trace sampling ratio
func (c *Config) GetTracingSampling() float64 {
	if c.TracingEnabled() && c.Telemetry.Tracing.Sampling != nil {
		return *c.Telemetry.Tracing.Sampling
	}
	return DefaultTracingSampling
}
