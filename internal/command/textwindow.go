package command

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/guzus/relay/internal/animation"
	"github.com/guzus/relay/internal/logger"
	"github.com/guzus/relay/internal/window"
)

var (
	ErrInvalidBracketStyle = errors.New("invalid bracket style")
	ErrInvalidNumber       = errors.New("invalid number")
	ErrWindowTooLarge      = errors.New("window size exceeds the configured maximum")
)

// windowPattern is the whole grammar of the window command:
//
//	.window <delay ms> <window size> <bracket style> '<background>' "<text>"
var windowPattern = regexp.MustCompile(
	`^\.window (?P<delay>\d+) (?P<window_size>.+) (?P<bracket_style>.+) '(?P<background>.)' "(?P<text>.+)"$`,
)

var (
	delayGroup       = windowPattern.SubexpIndex("delay")
	windowSizeGroup  = windowPattern.SubexpIndex("window_size")
	bracketGroup     = windowPattern.SubexpIndex("bracket_style")
	backgroundGroup  = windowPattern.SubexpIndex("background")
	textGroup        = windowPattern.SubexpIndex("text")
	maxDelayMillisec = uint64(math.MaxInt64 / int64(time.Millisecond))
)

// ParseOptions extracts animation options from a window command line. The
// text between the double quotes is taken verbatim.
func ParseOptions(raw string) (window.Options, error) {
	m := windowPattern.FindStringSubmatch(raw)
	if m == nil {
		return window.Options{}, ErrNoMatch
	}

	style, err := window.ParseBracketStyle(m[bracketGroup])
	if err != nil {
		return window.Options{}, fmt.Errorf("%w: %w", ErrInvalidBracketStyle, err)
	}

	background, size := utf8.DecodeRuneInString(m[backgroundGroup])
	if size == 0 {
		panic("window command: grammar captured an empty background")
	}

	windowSize, err := strconv.ParseUint(m[windowSizeGroup], 10, 64)
	if err != nil {
		return window.Options{}, fmt.Errorf("%w: window size %q", ErrInvalidNumber, m[windowSizeGroup])
	}
	delay, err := strconv.ParseUint(m[delayGroup], 10, 64)
	if err != nil || delay > maxDelayMillisec {
		return window.Options{}, fmt.Errorf("%w: delay %q", ErrInvalidNumber, m[delayGroup])
	}

	return window.Options{
		Text:       m[textGroup],
		Style:      style,
		Background: background,
		WindowSize: windowSize,
		Delay:      time.Duration(delay) * time.Millisecond,
	}, nil
}

// MatchesWindow reports whether raw has the shape of a window command.
func MatchesWindow(raw string) bool {
	return windowPattern.MatchString(raw)
}

// DefaultMinDelay is the frame interval floor when TextWindow.MinDelay is
// zero. Transports skip unchanged frames, so a zero delay would otherwise
// loop without ever blocking.
const DefaultMinDelay = 100 * time.Millisecond

// TextWindow animates text bouncing inside a bracketed window by editing
// the invoking message once per frame.
type TextWindow struct {
	// MaxWindowSize caps the window a chat user may request. Zero means no cap.
	MaxWindowSize uint64
	// MinDelay is the shortest interval between two edits. Zero means
	// DefaultMinDelay.
	MinDelay time.Duration
}

var _ Command = (*TextWindow)(nil)

func (c *TextWindow) Matches(text string) bool {
	return MatchesWindow(text)
}

// Parse is ParseOptions plus the checks that need the command's settings.
func (c *TextWindow) Parse(raw string) (window.Options, error) {
	opts, err := ParseOptions(raw)
	if err != nil {
		return opts, err
	}
	if c.MaxWindowSize > 0 && opts.WindowSize > c.MaxWindowSize {
		return opts, fmt.Errorf("%w: %d > %d", ErrWindowTooLarge, opts.WindowSize, c.MaxWindowSize)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Run animates until ctx is cancelled or editing the message fails.
func (c *TextWindow) Run(ctx context.Context, msg Message) error {
	opts, err := c.Parse(msg.Content())
	if err != nil {
		return err
	}
	if floor := c.minDelay(); opts.Delay < floor {
		logger.Debug(ctx, "Raising frame delay", "requested", opts.Delay, "delay", floor)
		opts.Delay = floor
	}
	logger.Info(ctx, "Starting text window",
		"window", opts.WindowSize,
		"style", opts.Style.String(),
		"delay", opts.Delay,
	)
	return animation.Run(ctx, opts, animation.SinkFunc(msg.Edit))
}

func (c *TextWindow) minDelay() time.Duration {
	if c.MinDelay > 0 {
		return c.MinDelay
	}
	return DefaultMinDelay
}

func (c *TextWindow) Info() Info {
	return Info{
		Name:  "text_window",
		Usage: `.window <delay ms> <window size> <square|squiggly|circle|none> '<background>' "<text>"`,
	}
}

// IsUsage reports whether err comes from a malformed invocation rather
// than from running the command.
func IsUsage(err error) bool {
	for _, target := range []error{
		ErrNoMatch,
		ErrInvalidBracketStyle,
		ErrInvalidNumber,
		ErrWindowTooLarge,
		window.ErrInvalidWindowSize,
		window.ErrEmptyText,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
