package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/guzus/relay/internal/command"
)

// api is the part of *discordgo.Session a message needs.
type api interface {
	ChannelMessageEdit(channelID, messageID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ api = (*discordgo.Session)(nil)

// message adapts a Discord message to command.Message. Only the author can
// edit a message, so for someone else's message the first Edit posts a
// reply and later edits go to that reply.
type message struct {
	api       api
	channelID string
	id        string
	content   string
	editable  bool
	reference *discordgo.MessageReference
	replyID   string
}

var _ command.Message = (*message)(nil)

func newMessage(api api, m *discordgo.Message, own bool) *message {
	return &message{
		api:       api,
		channelID: m.ChannelID,
		id:        m.ID,
		content:   m.ContentWithMentionsReplaced(),
		editable:  own,
		reference: m.Reference(),
	}
}

func (m *message) Content() string { return m.content }

func (m *message) Edit(ctx context.Context, content string) error {
	target := m.id
	if !m.editable {
		if m.replyID == "" {
			sent, err := m.api.ChannelMessageSendReply(m.channelID, content, m.reference, discordgo.WithContext(ctx))
			if err != nil {
				return err
			}
			m.replyID = sent.ID
			return nil
		}
		target = m.replyID
	}
	_, err := m.api.ChannelMessageEdit(m.channelID, target, content, discordgo.WithContext(ctx))
	return err
}

func (m *message) Reply(ctx context.Context, content string) error {
	_, err := m.api.ChannelMessageSendReply(m.channelID, content, m.reference, discordgo.WithContext(ctx))
	return err
}
