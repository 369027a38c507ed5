package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  host: "127.0.0.1"
  port: 9000
  max_connections: 256
  allowed_origins:
    - "https://play.example.com"
redis:
  addr: "redis-prod:6379"
  db: 2
game:
  room_expiration: 12
  action_log_limit: 50
  write_queue_size: 32
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 256, cfg.Server.MaxConnections)
	assert.Equal(t, []string{"https://play.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "redis-prod:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 12, cfg.Game.RoomExpiration)
	assert.Equal(t, 12*time.Hour, cfg.Game.RoomExpirationDuration())
	assert.Equal(t, 50, cfg.Game.ActionLogLimit)
	assert.Equal(t, 32, cfg.Game.WriteQueueSize)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 1780, cfg.Server.Port)
	assert.Equal(t, 1024, cfg.Server.MaxConnections)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 48, cfg.Game.RoomExpiration)
	assert.Equal(t, 100, cfg.Game.ActionLogLimit)
	assert.Equal(t, 64, cfg.Game.WriteQueueSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9000
redis:
  addr: "file:6379"
`)

	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("REDIS_ADDR", "env:6379")
	t.Setenv("SERVER_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "env:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not a map")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefault_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 8100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host) // 未给出的字段保持默认
	assert.Equal(t, 48, cfg.Game.RoomExpiration)
}

func TestDefault_SecurityLimits(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10, cfg.Security.RateLimit.MaxPerSecond)
	assert.Equal(t, 120, cfg.Security.RateLimit.MaxPerMinute)
	assert.Equal(t, 20, cfg.Security.MessageLimit.MaxPerSecond)
}

func TestRateLimitConfig_BanDurationTime(t *testing.T) {
	cfg := &RateLimitConfig{BanDuration: 120}
	assert.Equal(t, 120*time.Second, cfg.BanDurationTime())
}
