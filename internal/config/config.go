package config

import (
	"encoding/json"
	"os"
	"strconv"

	"autopostq/internal/constants"
	"autopostq/internal/models"
)

var (
	ErrMissingDBPath = models.ConfigError{Message: "missing database path"}
)

// LoadConfig reads the JSON config file, fills defaults, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*models.Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	applyDefaults(&config)
	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func applyDefaults(c *models.Config) {
	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeout
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeout
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeout
	}

	if c.Queue.DefaultOwner == "" {
		c.Queue.DefaultOwner = constants.DefaultOwner
	}
	if c.Queue.ReleaseIntervalSec <= 0 {
		c.Queue.ReleaseIntervalSec = constants.DefaultReleaseIntervalSec
	}
	if c.Queue.RetentionDays <= 0 {
		c.Queue.RetentionDays = constants.DefaultRetentionDays
	}

	if c.Poller.Limit <= 0 {
		c.Poller.Limit = constants.DefaultPollLimit
	}
	if c.Poller.IntervalSec <= 0 {
		c.Poller.IntervalSec = constants.DefaultPollIntervalSec
	}
	if c.Poller.TimeoutSec <= 0 {
		c.Poller.TimeoutSec = constants.DefaultPollTimeoutSec
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "autopostq"
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = "dev"
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = "development"
	}
	if c.Tracing.OTLPEndpoint == "" {
		c.Tracing.OTLPEndpoint = "http://localhost:4318/v1/traces"
	}
	if c.Tracing.SampleRate <= 0 {
		c.Tracing.SampleRate = 0.1
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(c *models.Config) {
	if path := os.Getenv("AUTOPOSTQ_DB_PATH"); path != "" {
		c.Database.Path = path
	}
	if port := os.Getenv("AUTOPOSTQ_PORT"); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && parsed > 0 {
			c.Server.Port = parsed
		}
	}
	if owner := os.Getenv("AUTOPOSTQ_DEFAULT_OWNER"); owner != "" {
		c.Queue.DefaultOwner = owner
	}
	if level := os.Getenv("AUTOPOSTQ_LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if endpoint := os.Getenv("AUTOPOSTQ_OTLP_ENDPOINT"); endpoint != "" {
		c.Tracing.OTLPEndpoint = endpoint
		c.Tracing.UseStdout = false
	}
	if baseURL := os.Getenv("AUTOPOSTQ_POLLER_BASE_URL"); baseURL != "" {
		c.Poller.BaseURL = baseURL
		c.Poller.Enabled = true
	}
}

func validate(c *models.Config) error {
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}
	if c.Poller.Enabled && c.Poller.BaseURL == "" {
		return models.ConfigError{Message: "poller enabled without a base URL"}
	}
	return nil
}
