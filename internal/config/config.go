package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the resolved runtime configuration.
type Config struct {
	Debug     bool
	LogFormat string
	LogFile   string

	Discord  Discord
	Telegram Telegram
	Slack    Slack
	Web      Web
	Window   Window
	Paths    Paths

	// ConfigFile is the file the values were read from, if any.
	ConfigFile string
}

// Discord configures the Discord transport.
type Discord struct {
	Token string
	// Bot prefixes the token with "Bot ". Without it the token is used as a
	// user token and the bot acts on the account's own messages.
	Bot             bool
	OwnMessagesOnly bool
}

// Telegram configures the Telegram transport. It is disabled when Token is empty.
type Telegram struct {
	Token   string
	Timeout time.Duration
}

// Slack configures the Slack transport, which connects over Socket Mode.
// It is disabled when BotToken is empty.
type Slack struct {
	BotToken string
	AppToken string
}

// Web configures the websocket transport. It is disabled when Addr is empty.
type Web struct {
	Addr  string
	Token string
}

// Window bounds what a chat user may ask the window command for.
type Window struct {
	MaxWindowSize uint64
	// MinDelay is the shortest interval between two edits of a chat message,
	// whatever delay the line asks for.
	MinDelay time.Duration
}

type Paths struct {
	ConfigDir string
	Presets   string
}

var (
	ErrNoTransport   = errors.New("no transport configured: set discord.token, telegram.token, slack.botToken or web.addr")
	ErrInvalidFormat = errors.New("logFormat must be text or json")

	ErrNoSlackAppToken = errors.New("slack.appToken is required for socket mode")
)

// Validate reports settings that cannot work at runtime.
func (c *Config) Validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.LogFormat)
	}
	if c.Window.MaxWindowSize == 0 {
		return fmt.Errorf("window.maxWindowSize must be positive")
	}
	if c.Window.MinDelay <= 0 {
		return fmt.Errorf("window.minDelay must be positive")
	}
	return nil
}

// ValidateTransports is checked by the run command only; the offline
// commands work without any token.
func (c *Config) ValidateTransports() error {
	if c.Discord.Token == "" && c.Telegram.Token == "" && c.Slack.BotToken == "" && c.Web.Addr == "" {
		return ErrNoTransport
	}
	if c.Slack.BotToken != "" && c.Slack.AppToken == "" {
		return ErrNoSlackAppToken
	}
	return nil
}
