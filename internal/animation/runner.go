package animation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/guzus/relay/internal/logger"
	"github.com/guzus/relay/internal/window"
)

// ErrSink wraps the error returned by a sink. It ends the run.
var ErrSink = errors.New("sink update failed")

// Sink is the surface an animation is drawn on, usually one chat message.
type Sink interface {
	SetContent(ctx context.Context, content string) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, content string) error

func (f SinkFunc) SetContent(ctx context.Context, content string) error {
	return f(ctx, content)
}

type runConfig struct {
	maxFrames int
	sleep     func(ctx context.Context, d time.Duration) error
}

type Option func(*runConfig)

// WithMaxFrames stops the run after n frames. Zero means run until the
// context is cancelled or the sink fails.
func WithMaxFrames(n int) Option {
	return func(c *runConfig) {
		c.maxFrames = n
	}
}

// WithSleep replaces the inter-frame wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *runConfig) {
		c.sleep = sleep
	}
}

// Run draws the bounce animation described by opts onto sink, one frame
// every opts.Delay, until ctx is done or the sink fails. Frames are sent
// strictly in order: a frame is sent only after the previous SetContent
// returned and the delay elapsed.
func Run(ctx context.Context, opts window.Options, sink Sink, options ...Option) error {
	cycle, err := window.Generate(opts)
	if err != nil {
		return err
	}
	return RunCycle(ctx, cycle, opts.Delay, sink, options...)
}

// RunCycle is Run over an already built cycle.
func RunCycle(ctx context.Context, cycle *window.Cycle, delay time.Duration, sink Sink, options ...Option) error {
	cfg := runConfig{sleep: sleep}
	for _, opt := range options {
		opt(&cfg)
	}

	log := logger.FromContext(ctx)
	log.Debug("Animation started", "frames", cycle.Len(), "delay", delay)

	for sent := 0; cfg.maxFrames == 0 || sent < cfg.maxFrames; sent++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frame := cycle.Next()
		if err := sink.SetContent(ctx, frame); err != nil {
			return fmt.Errorf("%w: frame %d: %w", ErrSink, sent+1, err)
		}
		if err := cfg.sleep(ctx, delay); err != nil {
			return err
		}
	}
	log.Debug("Animation finished", "frames", cfg.maxFrames)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
