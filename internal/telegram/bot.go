package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/guzus/relay/internal/config"
	"github.com/guzus/relay/internal/dispatch"
	"github.com/guzus/relay/internal/logger"
)

// sender is the part of *tgbotapi.BotAPI a message needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ sender = (*tgbotapi.BotAPI)(nil)

// Bot long-polls Telegram and feeds messages to a dispatcher.
type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *dispatch.Dispatcher
	timeout    time.Duration
	log        logger.Logger
}

func New(cfg config.Telegram, d *dispatch.Dispatcher, log logger.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is empty")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return &Bot{
		api:        api,
		dispatcher: d,
		timeout:    cfg.Timeout,
		log:        log.With("transport", "telegram", "user", api.Self.UserName),
	}, nil
}

// Run polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.timeout / time.Second)
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info("Polling for updates")
	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram update channel closed")
			}
			b.handle(b.api, update)
		}
	}
}

func (b *Bot) handle(s sender, update tgbotapi.Update) {
	m := update.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return
	}
	if m.From != nil && m.From.IsBot {
		return
	}

	key := fmt.Sprintf("%d:%d", m.Chat.ID, m.MessageID)
	err := b.dispatcher.Dispatch(key, newMessage(s, m))
	switch {
	case err == nil:
		b.log.Debug("Dispatched", "message", key)
	case errors.Is(err, dispatch.ErrNoCommand):
	default:
		b.log.Warn("Message not dispatched", "message", key, "err", err)
	}
}
