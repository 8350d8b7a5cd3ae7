package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"database": {"path": "/tmp/queue.db"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Server.ReadTimeoutSec)
	assert.Equal(t, "marai-business", cfg.Queue.DefaultOwner)
	assert.Equal(t, 60, cfg.Queue.ReleaseIntervalSec)
	assert.Equal(t, 30, cfg.Queue.RetentionDays)
	assert.Equal(t, 25, cfg.Poller.Limit)
	assert.Equal(t, 60, cfg.Poller.IntervalSec)
	assert.Equal(t, 1000, cfg.Retry.InitialBackoffMs)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, "autopostq", cfg.Tracing.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_ExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"path": "/tmp/queue.db"},
		"server": {"port": 9090},
		"queue": {"defaultOwner": "studio", "releaseIntervalSec": 5},
		"log_level": "debug"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "studio", cfg.Queue.DefaultOwner)
	assert.Equal(t, 5, cfg.Queue.ReleaseIntervalSec)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AUTOPOSTQ_DB_PATH", "/tmp/override.db")
	t.Setenv("AUTOPOSTQ_PORT", "7070")
	t.Setenv("AUTOPOSTQ_DEFAULT_OWNER", "env-owner")
	t.Setenv("AUTOPOSTQ_LOG_LEVEL", "warn")
	t.Setenv("AUTOPOSTQ_POLLER_BASE_URL", "http://localhost:7070")

	path := writeConfig(t, `{"database": {"path": "/tmp/file.db"}}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override.db", cfg.Database.Path)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "env-owner", cfg.Queue.DefaultOwner)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.Poller.Enabled)
	assert.Equal(t, "http://localhost:7070", cfg.Poller.BaseURL)
}

func TestLoadConfig_MissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrMissingDBPath)
}

func TestLoadConfig_PollerEnabledWithoutBaseURL(t *testing.T) {
	path := writeConfig(t, `{
		"database": {"path": "/tmp/queue.db"},
		"poller": {"enabled": true}
	}`)

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeConfig(t, `{not json`)
	_, err = LoadConfig(path)
	assert.Error(t, err)
}
