package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/guzus/relay/internal/config"
	"github.com/guzus/relay/internal/dispatch"
	"github.com/guzus/relay/internal/logger"
)

// Bot feeds Discord messages to a dispatcher.
type Bot struct {
	session    *discordgo.Session
	dispatcher *dispatch.Dispatcher
	cfg        config.Discord
	log        logger.Logger
	remove     func()
}

func New(cfg config.Discord, d *dispatch.Dispatcher, log logger.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("discord token is empty")
	}
	token := cfg.Token
	if cfg.Bot {
		token = "Bot " + token
	}
	session, err := discordgo.New(token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return &Bot{
		session:    session,
		dispatcher: d,
		cfg:        cfg,
		log:        log.With("transport", "discord"),
	}, nil
}

// Open connects to the gateway and starts handling messages.
func (b *Bot) Open() error {
	b.remove = b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if s.State == nil || s.State.User == nil {
			return
		}
		b.handle(s, s.State.User.ID, m.Message)
	})
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	b.log.Info("Connected", "user", b.session.State.User.Username)
	return nil
}

// Close disconnects from the gateway. Running commands are stopped by the
// dispatcher, not here.
func (b *Bot) Close() error {
	if b.remove != nil {
		b.remove()
	}
	return b.session.Close()
}

func (b *Bot) handle(api api, selfID string, m *discordgo.Message) {
	if m == nil || m.Author == nil {
		return
	}
	own := m.Author.ID == selfID
	if b.cfg.OwnMessagesOnly && !own {
		return
	}
	if !own && m.Author.Bot {
		return
	}

	msg := newMessage(api, m, own)
	err := b.dispatcher.Dispatch(m.ID, msg)
	switch {
	case err == nil:
		b.log.Debug("Dispatched", "message", m.ID, "channel", m.ChannelID)
	case errors.Is(err, dispatch.ErrNoCommand):
	default:
		b.log.Warn("Message not dispatched", "message", m.ID, "err", err)
	}
}
