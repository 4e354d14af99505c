package slack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guzus/relay/internal/config"
	"github.com/guzus/relay/internal/dispatch"
	"github.com/guzus/relay/internal/logger"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
)

// Bot receives messages over Socket Mode and feeds them to a dispatcher.
type Bot struct {
	api        *slack.Client
	client     *socketmode.Client
	dispatcher *dispatch.Dispatcher
	log        logger.Logger
	userID     string
}

func New(cfg config.Slack, d *dispatch.Dispatcher, log logger.Logger) (*Bot, error) {
	if cfg.BotToken == "" {
		return nil, errors.New("slack bot token is empty")
	}
	if cfg.AppToken == "" {
		return nil, config.ErrNoSlackAppToken
	}
	api := slack.New(cfg.BotToken, slack.OptionAppLevelToken(cfg.AppToken))
	return &Bot{
		api:        api,
		client:     socketmode.New(api),
		dispatcher: d,
		log:        log.With("transport", "slack"),
	}, nil
}

// Run holds the socket open until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	auth, err := b.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("connecting to slack: %w", err)
	}
	b.userID = auth.UserID
	b.log = b.log.With("user", auth.User, "team", auth.Team)

	errCh := make(chan error, 1)
	go func() {
		errCh <- b.client.RunContext(ctx)
	}()

	p := apiPoster{api: b.api}
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("slack socket mode: %w", err)
		case evt, ok := <-b.client.Events:
			if !ok {
				return errors.New("slack event channel closed")
			}
			b.handleEvent(p, evt)
		}
	}
}

func (b *Bot) handleEvent(p poster, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		b.log.Debug("Connecting to socket mode")
	case socketmode.EventTypeConnected:
		b.log.Info("Connected")
	case socketmode.EventTypeConnectionError:
		b.log.Warn("Socket mode connection failed, retrying")
	case socketmode.EventTypeEventsAPI:
		if evt.Request != nil {
			b.client.Ack(*evt.Request)
		}
		ev, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok || ev.Type != slackevents.CallbackEvent {
			return
		}
		if m, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent); ok {
			b.handle(p, m)
		}
	}
}

func (b *Bot) handle(p poster, m *slackevents.MessageEvent) {
	// Edits, joins and other subtypes are not new commands.
	if m.SubType != "" || m.BotID != "" || m.Text == "" {
		return
	}
	if b.userID != "" && m.User == b.userID {
		return
	}

	key := m.Channel + ":" + m.TimeStamp
	err := b.dispatcher.Dispatch(key, newMessage(p, m))
	switch {
	case err == nil:
		b.log.Debug("Dispatched", "message", key)
	case errors.Is(err, dispatch.ErrNoCommand):
	default:
		b.log.Warn("Message not dispatched", "message", key, "err", err)
	}
}

// unescaper reverses the only escaping Slack applies to message text.
var unescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">")
