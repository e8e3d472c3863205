// Package config loads kord configuration from a YAML file with environment
// variable overrides. Precedence: defaults, then file, then KORD_* variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/warriorzz/kord/internal/models"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*models.Config, error) {
	// Start with default configuration
	config := models.NewDefaultConfig()

	// Load from file if provided and exists
	if configPath != "" {
		if err := loadFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Override with environment variables
	loadFromEnvironment(config)

	// Validate the final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(config *models.Config, filePath string) error {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", filePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadFromEnvironment loads configuration from environment variables
func loadFromEnvironment(config *models.Config) {
	// REST configuration
	if token := os.Getenv("KORD_TOKEN"); token != "" {
		config.REST.Token = token
	}

	if baseURL := os.Getenv("KORD_BASE_URL"); baseURL != "" {
		config.REST.BaseURL = baseURL
	}

	if userAgent := os.Getenv("KORD_USER_AGENT"); userAgent != "" {
		config.REST.UserAgent = userAgent
	}

	if timeout := os.Getenv("KORD_REQUEST_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.REST.Timeout = d
		}
	}

	// Rate limiter configuration
	if rps := os.Getenv("KORD_GLOBAL_RPS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			config.RateLimit.GlobalRequestsPerSecond = v
		}
	}

	if burst := os.Getenv("KORD_GLOBAL_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			config.RateLimit.GlobalBurst = v
		}
	}

	// Logging configuration
	if level := os.Getenv("KORD_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if format := os.Getenv("KORD_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}

	if output := os.Getenv("KORD_LOG_OUTPUT"); output != "" {
		config.Logging.Output = output
	}

	if filePath := os.Getenv("KORD_LOG_FILE_PATH"); filePath != "" {
		config.Logging.FilePath = filePath
	}

	// Metrics configuration
	if enabled := os.Getenv("KORD_METRICS_ENABLED"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			config.Metrics.Enabled = v
		}
	}

	if port := os.Getenv("KORD_METRICS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Metrics.Port = p
		}
	}

	// Tracing configuration
	if enabled := os.Getenv("KORD_TRACING_ENABLED"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			config.Observability.Tracing.Enabled = v
		}
	}

	if exporter := os.Getenv("KORD_TRACE_EXPORTER"); exporter != "" {
		config.Observability.Tracing.Exporter = exporter
	}

	if endpoint := os.Getenv("KORD_OTLP_ENDPOINT"); endpoint != "" {
		config.Observability.Tracing.OTLPEndpoint = endpoint
	}
}
