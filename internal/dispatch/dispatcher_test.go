package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guzus/relay/internal/command"
	"github.com/guzus/relay/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeMessage struct {
	mu      sync.Mutex
	content string
	edits   []string
	replies []string
	editErr error
}

func (m *fakeMessage) Content() string { return m.content }

func (m *fakeMessage) Edit(_ context.Context, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, content)
	return m.editErr
}

func (m *fakeMessage) Reply(_ context.Context, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, content)
	return nil
}

func (m *fakeMessage) editCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.edits)
}

type panicking struct{}

func (panicking) Matches(text string) bool { return text == ".panic" }
func (panicking) Run(context.Context, command.Message) error {
	panic("assertion failed while editing")
}
func (panicking) Info() command.Info { return command.Info{Name: "panic"} }

func newTestDispatcher(t *testing.T, commands ...command.Command) (*Dispatcher, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewLogger(logger.WithConsole(&buf), logger.WithDebug())
	registry := command.Default(100, time.Millisecond)
	for _, c := range commands {
		registry.Register(c)
	}
	d := New(registry, log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = d.Shutdown(ctx)
	})
	return d, &buf
}

func TestDispatchPing(t *testing.T) {
	d, _ := newTestDispatcher(t)
	msg := &fakeMessage{content: ".ping"}

	require.NoError(t, d.Dispatch("m1", msg))
	d.Wait()

	assert.Equal(t, []string{"pong!"}, msg.replies)
	assert.Zero(t, d.Active())
}

func TestDispatchNoCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)
	err := d.Dispatch("m1", &fakeMessage{content: "just chatting"})
	require.ErrorIs(t, err, ErrNoCommand)
}

func TestDispatchRecoversPanic(t *testing.T) {
	d, buf := newTestDispatcher(t, panicking{})

	require.NoError(t, d.Dispatch("m1", &fakeMessage{content: ".panic"}))
	d.Wait()
	assert.Contains(t, buf.String(), "Command panicked")
	assert.Contains(t, buf.String(), "assertion failed while editing")

	msg := &fakeMessage{content: ".ping"}
	require.NoError(t, d.Dispatch("m2", msg))
	d.Wait()
	assert.Equal(t, []string{"pong!"}, msg.replies)
}

func TestDispatchSinkFailureIsIsolated(t *testing.T) {
	d, buf := newTestDispatcher(t)

	failing := &fakeMessage{content: `.window 0 6 square ' ' "x"`, editErr: errors.New("rate limited")}
	healthy := &fakeMessage{content: `.window 1 6 square ' ' "y"`}

	require.NoError(t, d.Dispatch("bad", failing))
	require.NoError(t, d.Dispatch("good", healthy))

	require.Eventually(t, func() bool { return healthy.editCount() >= 5 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return d.Active() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 1, failing.editCount())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))
	assert.Zero(t, d.Active())

	out := buf.String()
	assert.Contains(t, out, "Command failed")
	assert.Contains(t, out, "rate limited")
	assert.Contains(t, out, "Command stopped")
}

func TestDispatchBusyKey(t *testing.T) {
	d, _ := newTestDispatcher(t)
	msg := &fakeMessage{content: `.window 5 4 circle '.' "ab"`}

	require.NoError(t, d.Dispatch("m1", msg))
	err := d.Dispatch("m1", msg)
	require.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, d.Active())
}

func TestActiveWithPrefix(t *testing.T) {
	d, _ := newTestDispatcher(t)
	line := `.window 5000 4 circle '.' "ab"`

	require.NoError(t, d.Dispatch("web:a:1", &fakeMessage{content: line}))
	require.NoError(t, d.Dispatch("web:a:2", &fakeMessage{content: line}))
	require.NoError(t, d.Dispatch("web:b:1", &fakeMessage{content: line}))

	assert.Equal(t, 2, d.ActiveWithPrefix("web:a:"))
	assert.Equal(t, 1, d.ActiveWithPrefix("web:b:"))
	assert.Zero(t, d.ActiveWithPrefix("tg:"))
	assert.Equal(t, 3, d.ActiveWithPrefix(""))
}

func TestDispatchUsageErrorLogged(t *testing.T) {
	d, buf := newTestDispatcher(t)
	msg := &fakeMessage{content: `.window 5 500 circle '.' "ab"`}

	require.NoError(t, d.Dispatch("m1", msg))
	d.Wait()

	assert.Empty(t, msg.edits)
	assert.Contains(t, buf.String(), "Command rejected its input")
	assert.True(t, strings.Contains(buf.String(), "level=WARN"))
}

func TestShutdownRejectsNewCommands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Shutdown(ctx))

	err := d.Dispatch("m1", &fakeMessage{content: ".ping"})
	require.ErrorIs(t, err, ErrClosed)
}
