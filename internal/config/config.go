package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nested keys: REMINDER_NOTIFY__EMAIL__HOST sets notify.email.host.
const EnvPrefix = "REMINDER_"

// Renewal modes.
const (
	RenewalManual    = "manual"
	RenewalScheduled = "scheduled"
)

// Notification channels.
const (
	ChannelEmail    = "email"
	ChannelDingTalk = "dingtalk"
	ChannelTelegram = "telegram"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Timezone  string          `koanf:"timezone"`
	Log       LogConfig       `koanf:"log"`
	Renewal   RenewalConfig   `koanf:"renewal"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Notify    NotifyConfig    `koanf:"notify"`
}

type ServerConfig struct {
	Addr         string `koanf:"addr"`
	ReadTimeout  int    `koanf:"read_timeout"`  // seconds
	WriteTimeout int    `koanf:"write_timeout"` // seconds
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Pretty bool   `koanf:"pretty"`
}

type RenewalConfig struct {
	Mode string `koanf:"mode"` // manual or scheduled
}

type SchedulerConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Cron       string `koanf:"cron"`
	RunOnStart bool   `koanf:"run_on_start"`
}

type NotifyConfig struct {
	Channels  []string        `koanf:"channels"`
	Subject   string          `koanf:"subject"`
	Templates TemplatesConfig `koanf:"templates"`
	Email     EmailConfig     `koanf:"email"`
	DingTalk  DingTalkConfig  `koanf:"dingtalk"`
	Telegram  TelegramConfig  `koanf:"telegram"`
}

type TemplatesConfig struct {
	Text     string `koanf:"text"`
	Markdown string `koanf:"markdown"`
}

type EmailConfig struct {
	Host       string `koanf:"host"`
	Port       int    `koanf:"port"` // 465 uses implicit TLS, anything else STARTTLS
	Username   string `koanf:"username"`
	Password   string `koanf:"password"`
	From       string `koanf:"from"`
	Recipients string `koanf:"recipients"` // comma separated
}

// Complete reports whether every field needed to send is set.
func (e EmailConfig) Complete() bool {
	return e.Host != "" && e.Port > 0 && e.Username != "" && e.Password != "" && e.From != "" && len(e.RecipientList()) > 0
}

// RecipientList splits Recipients on commas, dropping blanks.
func (e EmailConfig) RecipientList() []string {
	var out []string
	for _, r := range strings.Split(e.Recipients, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

type DingTalkConfig struct {
	Webhook string `koanf:"webhook"`
	Secret  string `koanf:"secret"` // optional signing secret
}

type TelegramConfig struct {
	BotToken string `koanf:"bot_token"`
	ChatID   string `koanf:"chat_id"`
	BaseURL  string `koanf:"base_url"`
}

func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		configPath = expandPath(configPath)

		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// REMINDER_DB_PATH predates the nested env names.
	if dbPath := os.Getenv("REMINDER_DB_PATH"); dbPath != "" {
		k.Set("database.path", dbPath)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Notify.Channels = splitChannels(cfg.Notify.Channels)

	return &cfg, nil
}

// splitChannels lowercases channel names and splits comma separated
// entries, the form an env var such as REMINDER_NOTIFY__CHANNELS yields.
func splitChannels(in []string) []string {
	out := []string{}
	for _, entry := range in {
		for _, ch := range strings.Split(entry, ",") {
			if ch = strings.ToLower(strings.TrimSpace(ch)); ch != "" {
				out = append(out, ch)
			}
		}
	}
	return out
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func (c *Config) Validate() error {
	switch c.Renewal.Mode {
	case RenewalManual, RenewalScheduled:
	default:
		return fmt.Errorf("unknown renewal mode: %s (supported: %s, %s)",
			c.Renewal.Mode, RenewalManual, RenewalScheduled)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.Cron); err != nil {
			return fmt.Errorf("invalid scheduler cron %q: %w", c.Scheduler.Cron, err)
		}
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	for _, ch := range c.Notify.Channels {
		switch ch {
		case ChannelEmail, ChannelDingTalk, ChannelTelegram:
		default:
			return fmt.Errorf("unknown notify channel: %s (supported: %s, %s, %s)",
				ch, ChannelEmail, ChannelDingTalk, ChannelTelegram)
		}
	}

	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	return nil
}

// Location resolves Timezone. Empty and "Local" mean the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// EnsureDatabaseDir creates the directory holding the database file.
func (c *Config) EnsureDatabaseDir() error {
	if c.Database.Path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}

	return path
}
