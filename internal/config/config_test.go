package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, RenewalManual, cfg.Renewal.Mode)
	assert.Equal(t, "0 9 * * *", cfg.Scheduler.Cron)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, 465, cfg.Notify.Email.Port)
	assert.Empty(t, cfg.Notify.Channels)
	assert.NotEmpty(t, cfg.Notify.Templates.Text)
	assert.True(t, filepath.IsAbs(cfg.Database.Path))
	assert.Equal(t, "reminders.db", filepath.Base(cfg.Database.Path))
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  path: /tmp/from-file.db
renewal:
  mode: scheduled
notify:
  channels: [Email, dingtalk]
  email:
    host: smtp.example.com
    port: 587
`), 0o644))

	t.Setenv("REMINDER_NOTIFY__EMAIL__HOST", "smtp.override.com")
	t.Setenv("REMINDER_SCHEDULER__CRON", "30 8 * * 1-5")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/tmp/from-file.db", cfg.Database.Path)
	assert.Equal(t, RenewalScheduled, cfg.Renewal.Mode)
	assert.Equal(t, []string{ChannelEmail, ChannelDingTalk}, cfg.Notify.Channels)
	assert.Equal(t, "smtp.override.com", cfg.Notify.Email.Host)
	assert.Equal(t, 587, cfg.Notify.Email.Port)
	assert.Equal(t, "30 8 * * 1-5", cfg.Scheduler.Cron)
}

func TestLoadChannelsFromEnv(t *testing.T) {
	t.Setenv("REMINDER_NOTIFY__CHANNELS", "email, DingTalk,,telegram")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{ChannelEmail, ChannelDingTalk, ChannelTelegram}, cfg.Notify.Channels)
}

func TestSplitChannels(t *testing.T) {
	assert.Equal(t, []string{"email", "dingtalk"}, splitChannels([]string{"Email", " dingtalk "}))
	assert.Equal(t, []string{"email", "dingtalk"}, splitChannels([]string{"email,dingtalk"}))
	assert.Equal(t, []string{}, splitChannels(nil))
}

func TestLoadLegacyDBPathEnv(t *testing.T) {
	t.Setenv("REMINDER_DB_PATH", "/var/lib/reminders.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/reminders.db", cfg.Database.Path)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, RenewalManual, cfg.Renewal.Mode)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"renewal mode", func(c *Config) { c.Renewal.Mode = "always" }, "renewal mode"},
		{"cron", func(c *Config) { c.Scheduler.Cron = "every day" }, "cron"},
		{"timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"channel", func(c *Config) { c.Notify.Channels = []string{"pager"} }, "notify channel"},
		{"db path", func(c *Config) { c.Database.Path = "" }, "database path"},
		{"timeouts", func(c *Config) { c.Server.ReadTimeout = 0 }, "timeouts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	cfg := valid()
	cfg.Scheduler.Enabled = false
	cfg.Scheduler.Cron = "ignored when disabled"
	assert.NoError(t, cfg.Validate())
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestEmailConfig(t *testing.T) {
	e := EmailConfig{
		Host: "smtp.example.com", Port: 465, Username: "u", Password: "p", From: "a@example.com",
		Recipients: " ops@example.com, ,legal@example.com ",
	}
	assert.Equal(t, []string{"ops@example.com", "legal@example.com"}, e.RecipientList())
	assert.True(t, e.Complete())

	e.Password = ""
	assert.False(t, e.Complete())
}
