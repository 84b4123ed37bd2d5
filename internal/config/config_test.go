package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Reads the yaml file", func(t *testing.T) {
		// Given: a config file overriding a few keys
		path := filepath.Join(t.TempDir(), "config.yml")
		content := `
log-level: debug
http-port: "8080"
redis:
  host: redis
  db: 2
rooms:
  code-length: 8
websocket:
  write-timeout: 3s
  allowed-origins:
    - https://play.example.com
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		// When: it is loaded
		conf, err := Load(path)

		// Then: the file values win and the rest falls back to defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "redis:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 2, conf.Redis.DB)
		assert.Equal(t, 8, conf.Rooms.CodeLength)
		assert.Equal(t, 16, conf.Rooms.MaxCodeAttempts)
		assert.Equal(t, 32, conf.WebSocket.SendBuffer)
		assert.Equal(t, 3*time.Second, conf.WebSocket.WriteTimeout)
		assert.Equal(t, []string{"https://play.example.com"}, conf.WebSocket.AllowedOrigins)
	})

	t.Run("Falls back to the environment without a file", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "7070")
		t.Setenv("REDIS_HOST", "cache")

		conf, err := Load(filepath.Join(t.TempDir(), "missing.yml"))

		require.NoError(t, err)
		assert.Equal(t, "7070", conf.HTTPPort)
		assert.Equal(t, "cache:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, 6, conf.Rooms.CodeLength)
		assert.Equal(t, 10*time.Second, conf.WebSocket.WriteTimeout)
		assert.Equal(t, []string{"*"}, conf.WebSocket.AllowedOrigins)
	})

	t.Run("MustLoad panics on a broken file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("http-port: [1, 2"), 0o600))

		assert.Panics(t, func() { MustLoad(path) })
	})
}
