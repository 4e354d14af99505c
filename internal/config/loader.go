package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	appName   = "relay"
	envPrefix = "RELAY"

	// Discord rejects messages over 2000 characters; two go to the brackets.
	defaultMaxWindowSize = 1998
	defaultMinDelay      = 100 * time.Millisecond
)

// Load builds a Loader with opts and resolves the configuration.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg, err := NewLoader(opts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// Loader merges the config file, a .env file, environment variables and
// flag overrides, in increasing order of precedence.
type Loader struct {
	lock       sync.Mutex
	configFile string
	configDir  string
	envFile    string
	overrides  map[string]any
}

type LoaderOption func(*Loader)

// WithConfigFile reads the given file instead of searching the config dir.
func WithConfigFile(path string) LoaderOption {
	return func(l *Loader) {
		l.configFile = path
	}
}

// WithConfigDir replaces $XDG_CONFIG_HOME/relay.
func WithConfigDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.configDir = dir
	}
}

// WithEnvFile loads a dotenv file before reading the environment. A missing
// file is not an error.
func WithEnvFile(path string) LoaderOption {
	return func(l *Loader) {
		l.envFile = path
	}
}

// WithOverride sets a key after every other source, for command-line flags.
func WithOverride(key string, value any) LoaderOption {
	return func(l *Loader) {
		if l.overrides == nil {
			l.overrides = map[string]any{}
		}
		l.overrides[key] = value
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		configDir: filepath.Join(xdg.ConfigHome, appName),
		envFile:   ".env",
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// definition mirrors the file layout.
type definition struct {
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"logFormat"`
	LogFile   string `mapstructure:"logFile"`
	Discord   struct {
		Token           string `mapstructure:"token"`
		Bot             bool   `mapstructure:"bot"`
		OwnMessagesOnly bool   `mapstructure:"ownMessagesOnly"`
	} `mapstructure:"discord"`
	Telegram struct {
		Token   string        `mapstructure:"token"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"telegram"`
	Slack struct {
		BotToken string `mapstructure:"botToken"`
		AppToken string `mapstructure:"appToken"`
	} `mapstructure:"slack"`
	Web struct {
		Addr  string `mapstructure:"addr"`
		Token string `mapstructure:"token"`
	} `mapstructure:"web"`
	Window struct {
		MaxWindowSize uint64        `mapstructure:"maxWindowSize"`
		MinDelay      time.Duration `mapstructure:"minDelay"`
	} `mapstructure:"window"`
	Paths struct {
		Presets string `mapstructure:"presets"`
	} `mapstructure:"paths"`
}

func (l *Loader) Load() (*Config, error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", l.envFile, err)
		}
	}

	v := viper.New()
	l.configureViper(v)
	l.setDefaultValues(v)
	if err := l.bindEnvironmentVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	for key, value := range l.overrides {
		v.Set(key, value)
	}

	var def definition
	if err := v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg := l.buildConfig(def)
	cfg.ConfigFile = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) configureViper(v *viper.Viper) {
	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.AddConfigPath(l.configDir)
		v.SetConfigName("config")
	}
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func (l *Loader) setDefaultValues(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("logFormat", "text")
	v.SetDefault("logFile", "")

	v.SetDefault("discord.token", "")
	v.SetDefault("discord.bot", false)
	v.SetDefault("discord.ownMessagesOnly", true)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.timeout", 60*time.Second)

	v.SetDefault("slack.botToken", "")
	v.SetDefault("slack.appToken", "")

	v.SetDefault("web.addr", "")
	v.SetDefault("web.token", "")

	v.SetDefault("window.maxWindowSize", defaultMaxWindowSize)
	v.SetDefault("window.minDelay", defaultMinDelay)

	v.SetDefault("paths.presets", filepath.Join(l.configDir, "presets.json"))
}

func (l *Loader) bindEnvironmentVariables(v *viper.Viper) error {
	bindings := map[string][]string{
		"debug":                   {"RELAY_DEBUG"},
		"logFormat":               {"RELAY_LOG_FORMAT"},
		"logFile":                 {"RELAY_LOG_FILE"},
		"discord.token":           {"RELAY_DISCORD_TOKEN", "DISCORD_TOKEN"},
		"discord.bot":             {"RELAY_DISCORD_BOT"},
		"discord.ownMessagesOnly": {"RELAY_DISCORD_OWN_MESSAGES_ONLY"},
		"telegram.token":          {"RELAY_TELEGRAM_TOKEN", "TELEGRAM_TOKEN"},
		"telegram.timeout":        {"RELAY_TELEGRAM_TIMEOUT"},
		"slack.botToken":          {"RELAY_SLACK_BOT_TOKEN", "SLACK_BOT_TOKEN"},
		"slack.appToken":          {"RELAY_SLACK_APP_TOKEN", "SLACK_APP_TOKEN"},
		"web.addr":                {"RELAY_WEB_ADDR"},
		"web.token":               {"RELAY_WEB_TOKEN"},
		"window.maxWindowSize":    {"RELAY_WINDOW_MAX_WINDOW_SIZE"},
		"window.minDelay":         {"RELAY_WINDOW_MIN_DELAY"},
		"paths.presets":           {"RELAY_PATHS_PRESETS"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

func (l *Loader) buildConfig(def definition) *Config {
	return &Config{
		Debug:     def.Debug,
		LogFormat: def.LogFormat,
		LogFile:   expandHome(def.LogFile),
		Discord: Discord{
			Token:           strings.TrimSpace(def.Discord.Token),
			Bot:             def.Discord.Bot,
			OwnMessagesOnly: def.Discord.OwnMessagesOnly,
		},
		Telegram: Telegram{
			Token:   strings.TrimSpace(def.Telegram.Token),
			Timeout: def.Telegram.Timeout,
		},
		Slack: Slack{
			BotToken: strings.TrimSpace(def.Slack.BotToken),
			AppToken: strings.TrimSpace(def.Slack.AppToken),
		},
		Web: Web{
			Addr:  strings.TrimSpace(def.Web.Addr),
			Token: strings.TrimSpace(def.Web.Token),
		},
		Window: Window{
			MaxWindowSize: def.Window.MaxWindowSize,
			MinDelay:      def.Window.MinDelay,
		},
		Paths: Paths{
			ConfigDir: l.configDir,
			Presets:   expandHome(def.Paths.Presets),
		},
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
