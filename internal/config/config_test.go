package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chatflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 1000, cfg.Engine.MaxSteps)
	assert.False(t, cfg.Engine.Branching)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	path := writeFile(t, `
[server]
port = 9090

[engine]
max_steps = 50
branching = true

[storage]
driver = "redis"

[redis]
addr = "cache:6379"
ttl = "24h"
`)
	t.Setenv("CHATFLOW_SERVER_PORT", "7070")
	t.Setenv("CHATFLOW_API_TIMEOUT", "3s")
	t.Setenv("CHATFLOW_ENGINE_MAX_STEPS", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 25, cfg.Engine.MaxSteps)
	assert.True(t, cfg.Engine.Branching)
	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Unknown Driver", "[storage]\ndriver = \"sqlite\"\n"},
		{"Bad Log Level", "[log]\nlevel = \"loud\"\n"},
		{"Zero Max Steps", "[engine]\nmax_steps = 0\n"},
		{"Bad Redis Addr", "[redis]\naddr = \"no-port\"\n"},
		{"Postgres Without DSN", "[storage]\ndriver = \"postgres\"\n"},
		{"Key Not Base64", "[conversation]\nencryption_key = \"%%%\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatflow.toml")
	require.NoError(t, Init(path))
	assert.Error(t, Init(path), "existing file must not be overwritten")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}
