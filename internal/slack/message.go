package slack

import (
	"context"
	"errors"
	"time"

	"github.com/guzus/relay/internal/command"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
)

// poster is what a message needs from the Web API.
type poster interface {
	post(ctx context.Context, channel, thread, text string) (string, error)
	update(ctx context.Context, channel, ts, text string) error
}

type apiPoster struct {
	api *slack.Client
}

func (a apiPoster) post(ctx context.Context, channel, thread, text string) (string, error) {
	_, ts, err := a.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(thread),
	)
	return ts, err
}

// update waits out one rate limit before giving up on a frame.
func (a apiPoster) update(ctx context.Context, channel, ts, text string) error {
	_, _, _, err := a.api.UpdateMessageContext(ctx, channel, ts, slack.MsgOptionText(text, false))
	var limited *slack.RateLimitedError
	if !errors.As(err, &limited) {
		return err
	}

	t := time.NewTimer(limited.RetryAfter)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}
	_, _, _, err = a.api.UpdateMessageContext(ctx, channel, ts, slack.MsgOptionText(text, false))
	return err
}

// message adapts a Slack message to command.Message. Bots cannot edit user
// messages, so the first Edit posts a threaded reply and later edits update
// it. Frames go in a code block so runs of spaces survive.
type message struct {
	poster  poster
	channel string
	thread  string
	text    string
	replyTS string
	last    string
}

var _ command.Message = (*message)(nil)

func newMessage(p poster, m *slackevents.MessageEvent) *message {
	thread := m.ThreadTimeStamp
	if thread == "" {
		thread = m.TimeStamp
	}
	return &message{
		poster:  p,
		channel: m.Channel,
		thread:  thread,
		text:    unescaper.Replace(m.Text),
	}
}

func (m *message) Content() string { return m.text }

func (m *message) Edit(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := codeBlock(content)
	if m.replyTS == "" {
		ts, err := m.poster.post(ctx, m.channel, m.thread, text)
		if err != nil {
			return err
		}
		m.replyTS = ts
		m.last = text
		return nil
	}
	if text == m.last {
		return nil
	}
	if err := m.poster.update(ctx, m.channel, m.replyTS, text); err != nil {
		return err
	}
	m.last = text
	return nil
}

func (m *message) Reply(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.poster.post(ctx, m.channel, m.thread, content)
	return err
}

func codeBlock(s string) string {
	return "```" + s + "```"
}
