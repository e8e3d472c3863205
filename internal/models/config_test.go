package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := NewDefaultConfig()
	cfg.REST.Token = "test-token"
	return cfg
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "https://discord.com/api/v10", cfg.REST.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.REST.Timeout)
	assert.Equal(t, 50.0, cfg.RateLimit.GlobalRequestsPerSecond)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.False(t, cfg.Observability.Tracing.Enabled)
}

func TestConfig_Validate_Valid(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestRESTConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*RESTConfig)
		wantErr string
	}{
		{name: "missing token", modify: func(rc *RESTConfig) { rc.Token = "" }, wantErr: "token is required"},
		{name: "empty base url", modify: func(rc *RESTConfig) { rc.BaseURL = "" }, wantErr: "base URL cannot be empty"},
		{name: "non-http base url", modify: func(rc *RESTConfig) { rc.BaseURL = "ftp://example.com" }, wantErr: "http(s)"},
		{name: "negative timeout", modify: func(rc *RESTConfig) { rc.Timeout = -time.Second }, wantErr: "timeout cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg.REST)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRateLimitConfig_Validate(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.GlobalRequestsPerSecond = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RateLimit.GlobalBurst = -1
	assert.Error(t, cfg.Validate())

	// Zero disables the proactive cap and is valid.
	cfg = validConfig()
	cfg.RateLimit.GlobalRequestsPerSecond = 0
	assert.NoError(t, cfg.Validate())
}

func TestLoggingConfig_Validate(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Output = "syslog"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = "/tmp/kord.log"
	assert.NoError(t, cfg.Validate())
}

func TestMetricsConfig_Validate(t *testing.T) {
	cfg := validConfig()
	cfg.Metrics.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Metrics.Path = ""
	assert.Error(t, cfg.Validate())

	// Disabled metrics skip validation entirely.
	cfg = validConfig()
	cfg.Metrics.Enabled = false
	cfg.Metrics.Port = 0
	assert.NoError(t, cfg.Validate())
}

func TestObservabilityConfig_Validate(t *testing.T) {
	cfg := validConfig()
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Tracing.Exporter = "jaeger"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Tracing.Exporter = "otlp"
	cfg.Observability.Tracing.OTLPEndpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Tracing.SampleRate = 1.5
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Observability.Tracing.Enabled = true
	cfg.Observability.Tracing.Exporter = "stdout"
	assert.NoError(t, cfg.Validate())
}
