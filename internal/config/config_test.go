package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CRaLFa/nikkei-bot/internal/disclosure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvBotToken, "")
	t.Setenv(EnvStoreDSN, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultSchedule, cfg.Schedule)
	assert.Equal(t, 35*time.Second, cfg.SettleDelay)
	assert.Equal(t, []string{disclosure.NikkeiSiteName}, cfg.Sites)
	assert.Equal(t, disclosure.DefaultKeywords, cfg.Keywords)
	assert.Equal(t, "一般", cfg.Discord.ChannelName)
	assert.NoError(t, cfg.Validate())
	assert.ErrorIs(t, cfg.RequireToken(), ErrMissingToken)
	assert.Equal(t, "Environment variable 'BOT_TOKEN' is not set", ErrMissingToken.Error())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
timezone: UTC
settle_delay: 5s
max_pages: 3
sites: [nikkei, tdnet]
keywords: ["決算"]
discord:
  channel_name: alerts
store:
  type: file
  dsn: /tmp/wm.json
email:
  smtp_user: bot@example.com
  to_email: me@example.com
`), 0o644))

	t.Setenv(EnvBotToken, " token ")
	t.Setenv(EnvSMTPPass, "secret")
	t.Setenv(EnvStoreDSN, "/tmp/override.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 5*time.Second, cfg.SettleDelay)
	assert.Equal(t, 3, cfg.MaxPages)
	assert.Equal(t, []string{"nikkei", "tdnet"}, cfg.Sites)
	assert.Equal(t, []string{"決算"}, cfg.Keywords)
	assert.Equal(t, "alerts", cfg.Discord.ChannelName)
	assert.Equal(t, "file", cfg.Store.Type)
	assert.Equal(t, "/tmp/override.json", cfg.Store.DSN)
	assert.Equal(t, "token", cfg.BotToken)
	assert.NoError(t, cfg.RequireToken())

	email := cfg.EmailSettings()
	assert.Equal(t, "secret", email.SMTPPass)
	assert.Equal(t, "smtp.gmail.com", email.SMTPServer)
	assert.True(t, email.Enabled())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sites: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLocationWithoutSystemZoneinfo(t *testing.T) {
	t.Setenv("ZONEINFO", t.TempDir())

	loc, err := Default().Location()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimezone, loc.String())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Sites = []string{"unknown"}
	cfg.Keywords = []string{"("}
	cfg.Timezone = "Not/AZone"
	cfg.EnrichConcurrency = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
	assert.Contains(t, err.Error(), "Not/AZone")
	assert.Contains(t, err.Error(), "enrich_concurrency")
}
