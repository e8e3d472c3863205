package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "test_config.yaml")

	configContent := `
rest:
  token: "file-token"
  base_url: "https://discord.com/api/v10"
  timeout: 10s

rate_limit:
  global_requests_per_second: 25
  global_burst: 10

logging:
  level: "debug"
  format: "text"
  output: "stderr"

metrics:
  enabled: true
  path: "/metrics"
  port: 9191

observability:
  service_name: "kord-test"
  tracing:
    enabled: true
    exporter: "stdout"
    sample_rate: 0.5
`

	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0o644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.REST.Token)
	assert.Equal(t, 10*time.Second, cfg.REST.Timeout)
	assert.Equal(t, 25.0, cfg.RateLimit.GlobalRequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.GlobalBurst)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 9191, cfg.Metrics.Port)
	assert.True(t, cfg.Observability.Tracing.Enabled)
	assert.Equal(t, 0.5, cfg.Observability.Tracing.SampleRate)
}

func TestLoad_FileDefaultsPreserved(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "partial.yaml")

	// Only the token is set; everything else keeps its default.
	require.NoError(t, os.WriteFile(configFile, []byte("rest:\n  token: \"t\"\n"), 0o644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "https://discord.com/api/v10", cfg.REST.BaseURL)
	assert.Equal(t, 50.0, cfg.RateLimit.GlobalRequestsPerSecond)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "bad.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("rest: [not a mapping"), 0o644))

	_, err := Load(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("rest:\n  token: \"file-token\"\n"), 0o644))

	t.Setenv("KORD_TOKEN", "env-token")
	t.Setenv("KORD_BASE_URL", "http://localhost:8080/api")
	t.Setenv("KORD_REQUEST_TIMEOUT", "5s")
	t.Setenv("KORD_GLOBAL_RPS", "10")
	t.Setenv("KORD_LOG_LEVEL", "warn")
	t.Setenv("KORD_METRICS_ENABLED", "false")

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.REST.Token, "environment must win over the file")
	assert.Equal(t, "http://localhost:8080/api", cfg.REST.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.REST.Timeout)
	assert.Equal(t, 10.0, cfg.RateLimit.GlobalRequestsPerSecond)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("KORD_TOKEN", "env-token")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.REST.Token)
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	t.Setenv("KORD_TOKEN", "env-token")
	t.Setenv("KORD_REQUEST_TIMEOUT", "not-a-duration")
	t.Setenv("KORD_GLOBAL_RPS", "not-a-number")
	t.Setenv("KORD_METRICS_PORT", "not-a-port")

	cfg, err := Load("")
	require.NoError(t, err)

	// Unparseable values fall back to defaults instead of failing.
	assert.Equal(t, 30*time.Second, cfg.REST.Timeout)
	assert.Equal(t, 50.0, cfg.RateLimit.GlobalRequestsPerSecond)
	assert.Equal(t, 9090, cfg.Metrics.Port)
}

func TestLoad_ValidationFailure(t *testing.T) {
	// No token from any source.
	cfg, err := Load("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid configuration")
}
