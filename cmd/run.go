package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guzus/relay/internal/command"
	"github.com/guzus/relay/internal/config"
	"github.com/guzus/relay/internal/discord"
	"github.com/guzus/relay/internal/dispatch"
	"github.com/guzus/relay/internal/logger"
	"github.com/guzus/relay/internal/slack"
	"github.com/guzus/relay/internal/telegram"
	"github.com/guzus/relay/internal/web"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:     "run",
	Short:   "Connect to the configured chats and serve commands",
	Long:    "Start every transport that has credentials (discord.token, telegram.token, slack.botToken, web.addr) and run chat commands until interrupted.",
	GroupID: "chat",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateTransports(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, appLog)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// serve runs the configured transports until ctx is done or one of them
// fails, then stops the running commands.
func serve(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	d := dispatch.New(command.Default(cfg.Window.MaxWindowSize, cfg.Window.MinDelay), log)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := d.Shutdown(shutdownCtx); err != nil {
			log.Warn("Commands still running at exit", "err", err)
		}
	}()

	var (
		discordBot  *discord.Bot
		telegramBot *telegram.Bot
		slackBot    *slack.Bot
		webServer   *web.Server
		err         error
	)
	if cfg.Discord.Token != "" {
		if discordBot, err = discord.New(cfg.Discord, d, log); err != nil {
			return err
		}
	}
	if cfg.Telegram.Token != "" {
		if telegramBot, err = telegram.New(cfg.Telegram, d, log); err != nil {
			return err
		}
	}
	if cfg.Slack.BotToken != "" {
		if slackBot, err = slack.New(cfg.Slack, d, log); err != nil {
			return err
		}
	}
	if cfg.Web.Addr != "" {
		if webServer, err = web.New(cfg.Web, d, log); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if discordBot != nil {
		if err := discordBot.Open(); err != nil {
			return err
		}
		g.Go(func() error {
			<-ctx.Done()
			return discordBot.Close()
		})
	}
	if telegramBot != nil {
		g.Go(func() error { return telegramBot.Run(ctx) })
	}
	if slackBot != nil {
		g.Go(func() error { return slackBot.Run(ctx) })
	}
	if webServer != nil {
		g.Go(func() error { return webServer.Run(ctx) })
	}

	log.Info("Relay running",
		"discord", discordBot != nil,
		"telegram", telegramBot != nil,
		"slack", slackBot != nil,
		"web", webServer != nil,
	)
	err = g.Wait()
	log.Info("Relay stopping", "active", d.Active())
	return err
}
