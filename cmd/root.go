package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/guzus/relay/internal/config"
	"github.com/guzus/relay/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configFlag    string
	debugFlag     bool
	logFormatFlag string

	cfg     *config.Config
	appLog  logger.Logger
	logFile *os.File
)

// quietAnnotation marks commands that own the terminal. Their logs only go
// to the log file.
const quietAnnotation = "relay/quiet"

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Animated text windows for chat",
	Long: `relay edits chat messages into a text bouncing inside a window.

Send a line like the one below from your account (Discord), to the bot
(Telegram, Slack) or from the web page, and relay animates it in place.

  .window <delay ms> <window size> <square|squiggly|circle|none> '<background>' "<text>"

Examples:
  relay run                                             # serve every configured chat
  relay preview ".window 100 12 square '_' \"hi\""      # play it in the terminal
  relay frames --quote ".window 0 6 none ' ' \"ab\""    # print one cycle
  relay preset add wave ".window 80 20 circle '~' \"wave\""
  relay tui                                             # compose and preview`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "chat", Title: "Chat Commands:"},
		&cobra.Group{ID: "local", Title: "Local Commands:"},
	)

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"config file (default $XDG_CONFIG_HOME/relay/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"log at debug level")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"log format: text or json")
}

// setup loads the configuration and builds the logger every subcommand uses.
func setup(cmd *cobra.Command, _ []string) error {
	var opts []config.LoaderOption
	if configFlag != "" {
		opts = append(opts, config.WithConfigFile(configFlag))
	}
	if cmd.Flags().Changed("debug") {
		opts = append(opts, config.WithOverride("debug", debugFlag))
	}
	if logFormatFlag != "" {
		opts = append(opts, config.WithOverride("logFormat", logFormatFlag))
	}

	loaded, err := config.Load(opts...)
	if err != nil {
		return err
	}
	cfg = loaded

	logOpts := []logger.Option{logger.WithFormat(cfg.LogFormat)}
	if cfg.Debug {
		logOpts = append(logOpts, logger.WithDebug())
	}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
			return fmt.Errorf("creating log dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		logFile = f
		logOpts = append(logOpts, logger.WithWriter(f))
	}
	if cmd.Annotations[quietAnnotation] == "true" {
		logOpts = append(logOpts, logger.WithQuiet())
	}
	appLog = logger.NewLogger(logOpts...)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithLogger(ctx, appLog))

	if cfg.ConfigFile != "" {
		appLog.Debug("Loaded config", "file", cfg.ConfigFile)
	}
	return nil
}

func teardown(*cobra.Command, []string) error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
