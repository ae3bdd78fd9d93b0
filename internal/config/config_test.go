package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "DEFAULT_MAX_PLAYERS", "LOG_LEVEL", "CONFIG_PATH"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 4, cfg.DefaultMaxPlayers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, float64(10), cfg.RateCapacity)
	assert.Equal(t, float64(5), cfg.RateRefillPerSec)
	assert.Equal(t, 30, cfg.HeartbeatSeconds)
	assert.Equal(t, 256, cfg.SendBuffer)
	assert.Equal(t, int64(4096), cfg.MaxMessageBytes)
	assert.Equal(t, 10, cfg.WriteTimeoutSeconds)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DEFAULT_MAX_PLAYERS", "6")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 6, cfg.DefaultMaxPlayers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadClampsDefaultMaxPlayers(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"99", 8},
		{"1", 2},
		{"-4", 2},
		{"abc", 4},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEFAULT_MAX_PLAYERS", tt.raw)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.DefaultMaxPlayers)
		})
	}
}

func TestLoadAppliesYAMLOverlay(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
rate:
  capacity: 20
  refillPerSec: 2.5
heartbeat:
  intervalSeconds: 5
connection:
  sendBuffer: 64
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, float64(20), cfg.RateCapacity)
	assert.Equal(t, float64(2.5), cfg.RateRefillPerSec)
	assert.Equal(t, 5, cfg.HeartbeatSeconds)
	assert.Equal(t, 64, cfg.SendBuffer)
	// fields the file does not mention keep their defaults
	assert.Equal(t, int64(4096), cfg.MaxMessageBytes)
	assert.Equal(t, 10, cfg.WriteTimeoutSeconds)
}

func TestLoadMissingConfigFileFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rate: ["), 0o644))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}
