package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data/earnings", cfg.Storage.Earnings.Path)
	assert.Equal(t, 14*time.Minute, cfg.Earnings.GetFlushInterval())
	assert.Equal(t, 100000.0, cfg.Earnings.DefaultEndowment)
	assert.Equal(t, 3*time.Second, cfg.Oracle.GetTimeout())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paperhouse.toml")
	content := `
environment = "production"

[server]
port = 9090

[earnings]
flush_interval = "5m"
default_endowment = 50000.0

[oracle]
base_url = "http://quotes.local"
timeout = "1s"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Earnings.GetFlushInterval())
	assert.Equal(t, 50000.0, cfg.Earnings.DefaultEndowment)
	assert.Equal(t, "http://quotes.local", cfg.Oracle.BaseURL)
	assert.Equal(t, time.Second, cfg.Oracle.GetTimeout())

	// Untouched sections keep defaults
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PAPERHOUSE_PORT", "7070")
	t.Setenv("PAPERHOUSE_LOG_LEVEL", "debug")
	t.Setenv("PAPERHOUSE_DATA_PATH", "/var/lib/paperhouse")
	t.Setenv("PAPERHOUSE_FLUSH_INTERVAL", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, filepath.Join("/var/lib/paperhouse", "earnings"), cfg.Storage.Earnings.Path)
	assert.Equal(t, 30*time.Second, cfg.Earnings.GetFlushInterval())
}

func TestGetFlushInterval_InvalidFallsBack(t *testing.T) {
	c := EarningsConfig{FlushInterval: "not-a-duration"}
	assert.Equal(t, 14*time.Minute, c.GetFlushInterval())

	c = EarningsConfig{FlushInterval: "-5m"}
	assert.Equal(t, 14*time.Minute, c.GetFlushInterval())
}
