// Package models defines the configuration structures shared by the kord
// binaries: the REST client settings, rate limiter tuning, logging, and
// observability. Defaults work out of the box and validation catches
// misconfigurations before anything connects.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration for a kord process.
type Config struct {
	REST          RESTConfig          `yaml:"rest" json:"rest"`                   // API endpoint and credentials
	RateLimit     RateLimitConfig     `yaml:"rate_limit" json:"rate_limit"`       // Proactive limiter tuning
	Logging       LoggingConfig       `yaml:"logging" json:"logging"`             // Structured logging
	Metrics       MetricsConfig       `yaml:"metrics" json:"metrics"`             // Prometheus metrics endpoint
	Observability ObservabilityConfig `yaml:"observability" json:"observability"` // Tracing
}

type RESTConfig struct {
	Token     string        `yaml:"token" json:"token"`
	BaseURL   string        `yaml:"base_url" json:"base_url"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

type RateLimitConfig struct {
	// GlobalRequestsPerSecond caps outbound throughput before any bucket
	// state is consulted. Zero disables the proactive cap.
	GlobalRequestsPerSecond float64 `yaml:"global_requests_per_second" json:"global_requests_per_second"`
	GlobalBurst             int     `yaml:"global_burst" json:"global_burst"`
}

type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`
	Format   string `yaml:"format" json:"format"`
	Output   string `yaml:"output" json:"output"`
	FilePath string `yaml:"file_path" json:"file_path"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	Port    int    `yaml:"port" json:"port"`
}

type ObservabilityConfig struct {
	ServiceName string        `yaml:"service_name" json:"service_name"`
	Tracing     TracingConfig `yaml:"tracing" json:"tracing"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	Exporter     string  `yaml:"exporter" json:"exporter"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" json:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" json:"sample_rate"`
}

// NewDefaultConfig creates a configuration with working defaults. The token
// has no default and must come from the config file or environment.
//
// The 50 requests per second global cap matches the limit Discord enforces
// per identity; staying under it proactively avoids tripping the server-wide
// gate at all.
func NewDefaultConfig() *Config {
	return &Config{
		REST: RESTConfig{
			BaseURL: "https://discord.com/api/v10",
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			GlobalRequestsPerSecond: 50,
			GlobalBurst:             50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
			Port:    9090,
		},
		Observability: ObservabilityConfig{
			ServiceName: "kord",
			Tracing: TracingConfig{
				Enabled:    false,
				Exporter:   "stdout",
				SampleRate: 1.0,
			},
		},
	}
}

func (c *Config) Validate() error {
	if err := c.REST.Validate(); err != nil {
		return fmt.Errorf("invalid rest config: %w", err)
	}

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("invalid rate limit config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("invalid metrics config: %w", err)
	}

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}

func (rc *RESTConfig) Validate() error {
	if rc.Token == "" {
		return errors.New("token is required")
	}

	if rc.BaseURL == "" {
		return errors.New("base URL cannot be empty")
	}

	if !strings.HasPrefix(rc.BaseURL, "http://") && !strings.HasPrefix(rc.BaseURL, "https://") {
		return fmt.Errorf("base URL must be an http(s) URL: %s", rc.BaseURL)
	}

	if rc.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}

	return nil
}

func (rl *RateLimitConfig) Validate() error {
	if rl.GlobalRequestsPerSecond < 0 {
		return errors.New("global requests per second cannot be negative")
	}

	if rl.GlobalBurst < 0 {
		return errors.New("global burst cannot be negative")
	}

	return nil
}

func (lc *LoggingConfig) Validate() error {
	validLevels := []string{"debug", "info", "warn", "error"}
	found := false
	for _, vl := range validLevels {
		if lc.Level == vl {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log level: %s", lc.Level)
	}

	validFormats := []string{"json", "text"}
	found = false
	for _, vf := range validFormats {
		if lc.Format == vf {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log format: %s", lc.Format)
	}

	validOutputs := []string{"stdout", "stderr", "file"}
	found = false
	for _, vo := range validOutputs {
		if lc.Output == vo {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid log output: %s", lc.Output)
	}

	if lc.Output == "file" && lc.FilePath == "" {
		return errors.New("file path is required when output is file")
	}

	return nil
}

func (mc *MetricsConfig) Validate() error {
	if !mc.Enabled {
		return nil
	}

	if mc.Path == "" {
		return errors.New("metrics path cannot be empty")
	}

	if mc.Port <= 0 || mc.Port > 65535 {
		return errors.New("metrics port must be between 1 and 65535")
	}

	return nil
}

func (oc *ObservabilityConfig) Validate() error {
	if !oc.Tracing.Enabled {
		return nil
	}

	if oc.ServiceName == "" {
		return errors.New("service name is required when tracing is enabled")
	}

	validExporters := []string{"stdout", "otlp"}
	found := false
	for _, ve := range validExporters {
		if oc.Tracing.Exporter == ve {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("invalid trace exporter: %s", oc.Tracing.Exporter)
	}

	if oc.Tracing.Exporter == "otlp" && oc.Tracing.OTLPEndpoint == "" {
		return errors.New("OTLP endpoint is required for the otlp exporter")
	}

	if oc.Tracing.SampleRate < 0 || oc.Tracing.SampleRate > 1 {
		return errors.New("sample rate must be between 0 and 1")
	}

	return nil
}
