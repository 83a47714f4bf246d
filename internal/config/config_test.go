package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
server:
  port: ":8080"
store:
  driver: memory
`), 0o644))

	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("SERVER_PORT", ":9090")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 30, cfg.Server.ShutdownSeconds)
	assert.Equal(t, 100, cfg.Store.SlowQueryMS)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 86400, cfg.Redis.IdempotencyTTLSeconds)
}

func TestLocation(t *testing.T) {
	cfg := Default()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Server.TimeZone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Server.TimeZone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}
