package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Feed     FeedConfig     `yaml:"feed"`
	Database DatabaseConfig `yaml:"database"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Logging  LoggingConfig  `yaml:"logging"`
	State    StateConfig    `yaml:"state"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
	// ChatID receives the daily reminders.
	ChatID int64 `yaml:"chat_id"`
}

type FeedConfig struct {
	URL            string `yaml:"url"`
	CachePath      string `yaml:"cache_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScheduleConfig holds cron specs for the two periodic jobs.
type ScheduleConfig struct {
	Sync   string `yaml:"sync"`
	Notify string `yaml:"notify"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

type StateConfig struct {
	Path string `yaml:"path"`
}

// Environment variables that override file values.
const (
	EnvBotToken = "TELEGRAM_BOT_TOKEN"
	EnvChatID   = "TELEGRAM_CHAT_ID"
	EnvFeedURL  = "ICAL_URL"
)

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tv-notifier")
}

// Load reads the YAML file at path, applies environment overrides and fills
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(expandPath(path))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvBotToken); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv(EnvFeedURL); v != "" {
		c.Feed.URL = v
	}
	if v := os.Getenv(EnvChatID); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvChatID, v, err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(dataDir(), "tv_notifications.db")
	} else {
		c.Database.Path = expandPath(c.Database.Path)
	}
	if c.Feed.CachePath == "" {
		c.Feed.CachePath = filepath.Join(dataDir(), "tvmaze_followed.ics")
	} else {
		c.Feed.CachePath = expandPath(c.Feed.CachePath)
	}
	if c.Feed.TimeoutSeconds == 0 {
		c.Feed.TimeoutSeconds = 30
	}
	if c.State.Path == "" {
		c.State.Path = filepath.Join(dataDir(), "state.json")
	} else {
		c.State.Path = expandPath(c.State.Path)
	}

	if c.Schedule.Sync == "" {
		c.Schedule.Sync = "@every 720h" // 30 days
	}
	if c.Schedule.Notify == "" {
		c.Schedule.Notify = "0 8 * * *"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Path != "" {
		c.Logging.Path = expandPath(c.Logging.Path)
	}
}

// RequireFeed checks the settings needed to synchronize.
func (c *Config) RequireFeed() error {
	if c.Feed.URL == "" {
		return fmt.Errorf("feed url is not set (feed.url or %s)", EnvFeedURL)
	}
	return nil
}

// RequireTelegram checks the settings needed to talk to Telegram.
func (c *Config) RequireTelegram() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram token is not set (telegram.token or %s)", EnvBotToken)
	}
	if c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat id is not set (telegram.chat_id or %s)", EnvChatID)
	}
	return nil
}
