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
	t.Setenv(EnvBotToken, "")
	t.Setenv(EnvChatID, "")
	t.Setenv(EnvFeedURL, "")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "@every 720h", cfg.Schedule.Sync)
	assert.Equal(t, "0 8 * * *", cfg.Schedule.Notify)
	assert.Equal(t, 30, cfg.Feed.TimeoutSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "tv_notifications.db", filepath.Base(cfg.Database.Path))
	assert.Equal(t, "tvmaze_followed.ics", filepath.Base(cfg.Feed.CachePath))
	assert.Error(t, cfg.RequireFeed())
	assert.Error(t, cfg.RequireTelegram())
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: file-token
  chat_id: 12345
feed:
  url: https://example.com/ical
  timeout_seconds: 10
database:
  path: /var/lib/tv/events.db
schedule:
  notify: "30 7 * * *"
logging:
  level: debug
  format: console
`), 0644))

	t.Setenv(EnvBotToken, "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Telegram.Token, "environment overrides file")
	assert.Equal(t, int64(12345), cfg.Telegram.ChatID)
	assert.Equal(t, "https://example.com/ical", cfg.Feed.URL)
	assert.Equal(t, 10, cfg.Feed.TimeoutSeconds)
	assert.Equal(t, "/var/lib/tv/events.db", cfg.Database.Path)
	assert.Equal(t, "30 7 * * *", cfg.Schedule.Notify)
	assert.Equal(t, "@every 720h", cfg.Schedule.Sync)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NoError(t, cfg.RequireFeed())
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoad_BadChatID(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvChatID, "not-a-number")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x", "y.db"), expandPath("~/x/y.db"))
	assert.Equal(t, "/abs/y.db", expandPath("/abs/y.db"))
}
