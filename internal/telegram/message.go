package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/guzus/relay/internal/command"
)

// message adapts an incoming Telegram message to command.Message. Bots
// cannot edit what users wrote, so the first Edit sends a reply and later
// edits rewrite that reply.
type message struct {
	sender  sender
	chatID  int64
	id      int
	text    string
	replyID int
	last    string
}

var _ command.Message = (*message)(nil)

func newMessage(s sender, m *tgbotapi.Message) *message {
	return &message{
		sender: s,
		chatID: m.Chat.ID,
		id:     m.MessageID,
		text:   m.Text,
	}
}

func (m *message) Content() string { return m.text }

func (m *message) Edit(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.replyID == 0 {
		reply := tgbotapi.NewMessage(m.chatID, content)
		reply.ReplyToMessageID = m.id
		sent, err := m.sender.Send(reply)
		if err != nil {
			return err
		}
		m.replyID = sent.MessageID
		m.last = content
		return nil
	}
	// Telegram rejects an edit that leaves the text unchanged.
	if content == m.last {
		return nil
	}
	if _, err := m.sender.Send(tgbotapi.NewEditMessageText(m.chatID, m.replyID, content)); err != nil {
		return err
	}
	m.last = content
	return nil
}

func (m *message) Reply(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	reply := tgbotapi.NewMessage(m.chatID, content)
	reply.ReplyToMessageID = m.id
	_, err := m.sender.Send(reply)
	return err
}
