package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/guzus/relay/internal/animation"
	"github.com/guzus/relay/internal/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessage struct {
	mu      sync.Mutex
	content string
	edits   []string
	replies []string
	failAt  int
}

func (m *fakeMessage) Content() string { return m.content }

func (m *fakeMessage) Edit(_ context.Context, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, content)
	if m.failAt > 0 && len(m.edits) == m.failAt {
		return errors.New("403 forbidden")
	}
	return nil
}

func (m *fakeMessage) Reply(_ context.Context, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, content)
	return nil
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(`.window 500 10 circle ' ' "hi"`)
	require.NoError(t, err)
	assert.Equal(t, window.Options{
		Text:       "hi",
		Style:      window.Circle,
		Background: ' ',
		WindowSize: 10,
		Delay:      500 * time.Millisecond,
	}, opts)
}

func TestParseOptionsCases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  window.Options
		err   error
	}{
		{
			name:  "text keeps spaces and quotes",
			input: `.window 0 30 SQUARE '-' "say "hi" twice"`,
			want:  window.Options{Text: `say "hi" twice`, Style: window.Square, Background: '-', WindowSize: 30},
		},
		{
			name:  "multibyte background",
			input: `.window 250 6 none '█' "go"`,
			want:  window.Options{Text: "go", Style: window.None, Background: '█', WindowSize: 6, Delay: 250 * time.Millisecond},
		},
		{name: "unknown style", input: `.window 500 10 hexagon ' ' "hi"`, err: ErrInvalidBracketStyle},
		{name: "window not a number", input: `.window 500 ten circle ' ' "hi"`, err: ErrInvalidNumber},
		{name: "negative window", input: `.window 500 -3 circle ' ' "hi"`, err: ErrInvalidNumber},
		{name: "greedy window token", input: `.window 1 10 big circle ' ' "x"`, err: ErrInvalidNumber},
		{name: "delay overflow", input: `.window 99999999999999999999 10 circle ' ' "hi"`, err: ErrInvalidNumber},
		{name: "delay too long for a duration", input: `.window 18446744073709551 10 circle ' ' "hi"`, err: ErrInvalidNumber},
		{name: "delay not digits", input: `.window fast 10 circle ' ' "hi"`, err: ErrNoMatch},
		{name: "empty background", input: `.window 500 10 circle '' "hi"`, err: ErrNoMatch},
		{name: "two char background", input: `.window 500 10 circle 'ab' "hi"`, err: ErrNoMatch},
		{name: "empty text", input: `.window 500 10 circle ' ' ""`, err: ErrNoMatch},
		{name: "other command", input: `.ping`, err: ErrNoMatch},
		{name: "prefix only", input: `.windows 500 10 circle ' ' "hi"`, err: ErrNoMatch},
		{name: "not at start", input: `see .window 500 10 circle ' ' "hi"`, err: ErrNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOptions(tt.input)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				assert.Equal(t, tt.err != ErrNoMatch, MatchesWindow(tt.input))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, MatchesWindow(tt.input))
		})
	}
}

func TestParseOptionsWrapsStyleError(t *testing.T) {
	_, err := ParseOptions(`.window 500 10 hexagon ' ' "hi"`)
	require.ErrorIs(t, err, window.ErrUnknownBracketStyle)
	assert.True(t, IsUsage(err))
}

func TestTextWindowParseLimits(t *testing.T) {
	c := &TextWindow{MaxWindowSize: 20}

	_, err := c.Parse(`.window 10 21 square ' ' "hi"`)
	require.ErrorIs(t, err, ErrWindowTooLarge)

	_, err = c.Parse(`.window 10 1 square ' ' "hi"`)
	require.ErrorIs(t, err, window.ErrInvalidWindowSize)

	opts, err := c.Parse(`.window 10 20 square ' ' "hi"`)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), opts.WindowSize)

	unlimited := &TextWindow{}
	_, err = unlimited.Parse(`.window 10 5000 square ' ' "hi"`)
	require.NoError(t, err)
}

func TestTextWindowRunStopsOnEditFailure(t *testing.T) {
	msg := &fakeMessage{content: `.window 0 8 square ' ' "test"`, failAt: 3}

	err := (&TextWindow{}).Run(context.Background(), msg)

	require.ErrorIs(t, err, animation.ErrSink)
	assert.False(t, IsUsage(err))
	assert.Equal(t, []string{"[test    ]", "[ test   ]", "[  test  ]"}, msg.edits)
}

func TestTextWindowRunCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	msg := &fakeMessage{content: `.window 1 4 circle '.' "ab"`}

	err := (&TextWindow{}).Run(ctx, msg)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	msg.mu.Lock()
	defer msg.mu.Unlock()
	require.NotEmpty(t, msg.edits)
	frames := []string{"(ab..)", "(.ab.)", "(..ab)", "(.ab.)"}
	for i, e := range msg.edits {
		assert.Equal(t, frames[i%len(frames)], e)
	}
}

func TestTextWindowRunHoldsMinimumDelay(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *TextWindow
		maxEdits int
	}{
		{"configured floor", &TextWindow{MinDelay: 20 * time.Millisecond}, 7},
		{"default floor", &TextWindow{}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			msg := &fakeMessage{content: `.window 0 4 square ' ' "text"`}

			err := tt.cmd.Run(ctx, msg)

			require.ErrorIs(t, err, context.DeadlineExceeded)
			msg.mu.Lock()
			defer msg.mu.Unlock()
			assert.NotEmpty(t, msg.edits)
			assert.LessOrEqual(t, len(msg.edits), tt.maxEdits)
		})
	}
}

func TestTextWindowRunUsageError(t *testing.T) {
	msg := &fakeMessage{content: `.window 0 1 square ' ' "long"`}

	err := (&TextWindow{}).Run(context.Background(), msg)

	require.ErrorIs(t, err, window.ErrInvalidWindowSize)
	assert.True(t, IsUsage(err))
	assert.Empty(t, msg.edits)
}

func TestRegistryMatch(t *testing.T) {
	r := Default(1998, 0)

	c, ok := r.Match(".ping")
	require.True(t, ok)
	assert.Equal(t, "pong.", c.Info().Name)

	c, ok = r.Match(`.window 500 10 circle ' ' "hi"`)
	require.True(t, ok)
	assert.Equal(t, "text_window", c.Info().Name)

	_, ok = r.Match("hello there")
	assert.False(t, ok)

	_, ok = r.Match(`.window 500 10 circle`)
	assert.False(t, ok)
}

func TestPingReplies(t *testing.T) {
	msg := &fakeMessage{content: ".ping"}
	require.NoError(t, Ping{}.Run(context.Background(), msg))
	assert.Equal(t, []string{"pong!"}, msg.replies)
	assert.Empty(t, msg.edits)
}

func TestCommandsListsRegistry(t *testing.T) {
	r := Default(0, 0)
	c, ok := r.Match(".commands")
	require.True(t, ok)

	msg := &fakeMessage{content: ".commands"}
	require.NoError(t, c.Run(context.Background(), msg))
	require.Len(t, msg.replies, 1)
	assert.Contains(t, msg.replies[0], "pong.: `.ping`")
	assert.Contains(t, msg.replies[0], "text_window: `.window")
	assert.Contains(t, msg.replies[0], "commands: `.commands`")

	names := make([]string, 0)
	for _, info := range r.Infos() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"pong.", "text_window", "commands"}, names)
}
