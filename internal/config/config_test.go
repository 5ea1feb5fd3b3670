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
	t.Run("Falls back to defaults when the file is missing", func(t *testing.T) {
		// Given: a path that does not exist
		path := filepath.Join(t.TempDir(), "missing.yml")

		// When: loading the config
		conf, err := Load(path)

		// Then: defaults are applied
		require.NoError(t, err)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, "8080", conf.Port)
		assert.Equal(t, 64, conf.Relay.SendBuffer)
		assert.False(t, conf.Relay.StrictSymbols)
		assert.False(t, conf.Redis.Enabled)
		assert.Equal(t, time.Hour, conf.Redis.TTL)
	})

	t.Run("PORT env overrides the default port", func(t *testing.T) {
		// Given: PORT set in the environment
		t.Setenv("PORT", "9999")

		// When: loading without a file
		conf, err := Load("")

		// Then: the port comes from the environment
		require.NoError(t, err)
		assert.Equal(t, "9999", conf.Port)
	})

	t.Run("Reads values from a yaml file", func(t *testing.T) {
		// Given: a config file
		path := filepath.Join(t.TempDir(), "config.yml")
		content := []byte("log-level: debug\nport: \"7000\"\nrelay:\n  strict-symbols: true\n  send-buffer: 8\nredis:\n  enabled: true\n  host: cache\n")
		require.NoError(t, os.WriteFile(path, content, 0o600))

		// When: loading the file
		conf, err := Load(path)

		// Then: file values win over defaults
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "7000", conf.Port)
		assert.True(t, conf.Relay.StrictSymbols)
		assert.Equal(t, 8, conf.Relay.SendBuffer)
		assert.True(t, conf.Redis.Enabled)
		assert.Equal(t, "cache:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Returns an error for a broken file", func(t *testing.T) {
		// Given: a file that is not valid yaml
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("port: [unterminated"), 0o600))

		// When: loading the file
		_, err := Load(path)

		// Then: an error is returned
		require.Error(t, err)
	})
}
