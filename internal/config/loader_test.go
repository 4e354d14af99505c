package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RELAY_DEBUG", "RELAY_LOG_FORMAT", "RELAY_LOG_FILE",
		"RELAY_DISCORD_TOKEN", "DISCORD_TOKEN", "RELAY_DISCORD_BOT",
		"RELAY_DISCORD_OWN_MESSAGES_ONLY", "RELAY_TELEGRAM_TOKEN",
		"TELEGRAM_TOKEN", "RELAY_TELEGRAM_TIMEOUT",
		"RELAY_WINDOW_MAX_WINDOW_SIZE", "RELAY_WINDOW_MIN_DELAY", "RELAY_PATHS_PRESETS",
		"RELAY_WEB_ADDR", "RELAY_WEB_TOKEN",
		"RELAY_SLACK_BOT_TOKEN", "SLACK_BOT_TOKEN",
		"RELAY_SLACK_APP_TOKEN", "SLACK_APP_TOKEN",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(WithConfigDir(dir), WithEnvFile(""))
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.Discord.OwnMessagesOnly)
	assert.False(t, cfg.Discord.Bot)
	assert.Equal(t, 60*time.Second, cfg.Telegram.Timeout)
	assert.Equal(t, uint64(1998), cfg.Window.MaxWindowSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Window.MinDelay)
	assert.Equal(t, filepath.Join(dir, "presets.json"), cfg.Paths.Presets)
	assert.Empty(t, cfg.ConfigFile)
	assert.Empty(t, cfg.Web.Addr)
	assert.ErrorIs(t, cfg.ValidateTransports(), ErrNoTransport)
}

func TestWebAddrIsATransport(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_WEB_ADDR", " :8787 ")
	t.Setenv("RELAY_WEB_TOKEN", "secret")

	cfg, err := Load(WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)

	assert.Equal(t, ":8787", cfg.Web.Addr)
	assert.Equal(t, "secret", cfg.Web.Token)
	assert.NoError(t, cfg.ValidateTransports())
}

func TestSlackNeedsAppToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-1")

	cfg, err := Load(WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)
	assert.Equal(t, "xoxb-1", cfg.Slack.BotToken)
	assert.ErrorIs(t, cfg.ValidateTransports(), ErrNoSlackAppToken)

	t.Setenv("RELAY_SLACK_APP_TOKEN", "xapp-1")
	cfg, err = Load(WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)
	assert.Equal(t, "xapp-1", cfg.Slack.AppToken)
	assert.NoError(t, cfg.ValidateTransports())
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	content := `
debug: true
logFormat: json
discord:
  token: " abc "
  bot: true
  ownMessagesOnly: false
telegram:
  timeout: 5s
window:
  maxWindowSize: 40
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))

	cfg, err := Load(WithConfigDir(dir), WithEnvFile(""))
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "abc", cfg.Discord.Token)
	assert.True(t, cfg.Discord.Bot)
	assert.False(t, cfg.Discord.OwnMessagesOnly)
	assert.Equal(t, 5*time.Second, cfg.Telegram.Timeout)
	assert.Equal(t, uint64(40), cfg.Window.MaxWindowSize)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
	assert.NoError(t, cfg.ValidateTransports())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("window:\n  maxWindowSize: 40\n"), 0600))

	t.Setenv("RELAY_WINDOW_MAX_WINDOW_SIZE", "12")
	t.Setenv("DISCORD_TOKEN", "legacy")

	cfg, err := Load(WithConfigDir(dir), WithEnvFile(""))
	require.NoError(t, err)
	assert.Equal(t, uint64(12), cfg.Window.MaxWindowSize)
	assert.Equal(t, "legacy", cfg.Discord.Token)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RELAY_TELEGRAM_TOKEN=from-dotenv\n"), 0600))
	// godotenv never overrides a variable that is already set, even to "".
	require.NoError(t, os.Unsetenv("RELAY_TELEGRAM_TOKEN"))
	t.Cleanup(func() { os.Unsetenv("RELAY_TELEGRAM_TOKEN") })

	cfg, err := Load(WithConfigDir(dir), WithEnvFile(envFile))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Telegram.Token)
}

func TestLoadOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_LOG_FORMAT", "json")

	cfg, err := Load(WithConfigDir(t.TempDir()), WithEnvFile(""), WithOverride("logFormat", "text"), WithOverride("debug", true))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.Debug)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(WithConfigFile(filepath.Join(t.TempDir(), "nope.yaml")), WithEnvFile(""))
	require.Error(t, err)
}

func TestLoadMinDelay(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_WINDOW_MIN_DELAY", "250ms")

	cfg, err := Load(WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Window.MinDelay)

	t.Setenv("RELAY_WINDOW_MIN_DELAY", "0s")
	_, err = Load(WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.ErrorContains(t, err, "window.minDelay")
}

func TestLoadInvalidFormat(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_LOG_FORMAT", "xml")

	_, err := Load(WithConfigDir(t.TempDir()), WithEnvFile(""))
	require.ErrorIs(t, err, ErrInvalidFormat)
}
