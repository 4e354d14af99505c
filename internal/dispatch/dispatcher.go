package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/guzus/relay/internal/command"
	"github.com/guzus/relay/internal/logger"
	"github.com/samber/lo"
)

var (
	// ErrNoCommand means no registered command matched the message.
	ErrNoCommand = errors.New("no matching command")
	// ErrBusy means a command is already running on the same message.
	ErrBusy = errors.New("message already has a running command")
	// ErrClosed is returned after Shutdown.
	ErrClosed = errors.New("dispatcher is shut down")
)

// Dispatcher runs each matched command on its own goroutine. A failing or
// panicking command only ends its own worker.
type Dispatcher struct {
	registry *command.Registry
	log      logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[string]string // message key -> command name
	closed bool
}

func New(registry *command.Registry, log logger.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		registry: registry,
		log:      log,
		ctx:      logger.WithLogger(ctx, log),
		cancel:   cancel,
		active:   make(map[string]string),
	}
}

// Dispatch starts the command matching msg. key identifies the message
// being mutated; two commands never run on the same key at once.
func (d *Dispatcher) Dispatch(key string, msg command.Message) error {
	cmd, ok := d.registry.Match(msg.Content())
	if !ok {
		return ErrNoCommand
	}
	name := cmd.Info().Name

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if running, busy := d.active[key]; busy {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBusy, running)
	}
	d.active[key] = name
	d.wg.Add(1)
	d.mu.Unlock()

	ctx := logger.WithValues(d.ctx, "command", name, "message", key)
	go d.work(ctx, key, cmd, msg)
	return nil
}

func (d *Dispatcher) work(ctx context.Context, key string, cmd command.Command, msg command.Message) {
	defer d.wg.Done()
	defer d.release(key)
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "Command panicked", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	logger.Debug(ctx, "Command started")
	err := cmd.Run(ctx, msg)
	switch {
	case err == nil:
		logger.Debug(ctx, "Command finished")
	case errors.Is(err, context.Canceled):
		logger.Info(ctx, "Command stopped")
	case command.IsUsage(err):
		logger.Warn(ctx, "Command rejected its input", "err", err, "input", msg.Content())
	default:
		logger.Error(ctx, "Command failed", "err", err)
	}
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.active, key)
}

// Active returns the number of running commands.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.active)
}

// ActiveWithPrefix returns the number of running commands whose message
// key starts with prefix.
func (d *Dispatcher) ActiveWithPrefix(prefix string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return lo.CountBy(lo.Keys(d.active), func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// Wait blocks until every running command has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting commands, cancels the running ones and waits
// for them until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %d commands: %w", d.Active(), ctx.Err())
	}
}
