package window

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrInvalidWindowSize is returned when the text does not fit the window.
	ErrInvalidWindowSize = errors.New("window size is smaller than the text")
	// ErrEmptyText is returned when there is nothing to animate.
	ErrEmptyText = errors.New("text is empty")
)

// Options are the parameters of one animation.
type Options struct {
	Text       string
	Style      BracketStyle
	Background rune
	WindowSize uint64
	Delay      time.Duration
}

// Validate checks that a frame sequence can be built from the options.
func (o Options) Validate() error {
	_, err := lastOffset(o.Text, o.WindowSize)
	return err
}

// Frames returns one bounce cycle: the text slides from flush left to flush
// right and back, stopping one step short of flush left so that repeating
// the slice never shows the same frame twice in a row.
//
// Widths are counted in runes. For "test" in a window of 8 that is
//
//	[test    ] [ test   ] [  test  ] [   test ] [    test]
//	[   test ] [  test  ] [ test   ]
func Frames(text string, background rune, windowSize uint64, style BracketStyle) ([]string, error) {
	last, err := lastOffset(text, windowSize)
	if err != nil {
		return nil, err
	}

	frames := make([]string, 0, frameCount(last))
	for offset := uint64(0); offset <= last; offset++ {
		frames = append(frames, Frame(text, background, offset, windowSize, style))
	}
	// Below 2 there is no return leg, and last-1 would underflow at 0.
	if last >= 2 {
		for offset := last - 1; offset >= 1; offset-- {
			frames = append(frames, Frame(text, background, offset, windowSize, style))
		}
	}
	return frames, nil
}

// Frame renders the text at offset inside the window. The caller guarantees
// offset+len(text) <= windowSize.
func Frame(text string, background rune, offset, windowSize uint64, style BracketStyle) string {
	open, closing := style.Delimiters()
	textLen := uint64(utf8.RuneCountInString(text))
	bg := string(background)

	var b strings.Builder
	b.Grow(int(windowSize)*utf8.RuneLen(background) + len(text) + 8)
	b.WriteRune(open)
	b.WriteString(strings.Repeat(bg, int(offset)))
	b.WriteString(text)
	b.WriteString(strings.Repeat(bg, int(windowSize-offset-textLen)))
	b.WriteRune(closing)
	return b.String()
}

// FrameCount returns the number of frames Frames would produce.
func FrameCount(text string, windowSize uint64) (int, error) {
	last, err := lastOffset(text, windowSize)
	if err != nil {
		return 0, err
	}
	return frameCount(last), nil
}

func frameCount(last uint64) int {
	if last < 2 {
		return int(last) + 1
	}
	return int(2 * last)
}

func lastOffset(text string, windowSize uint64) (uint64, error) {
	if text == "" {
		return 0, ErrEmptyText
	}
	textLen := uint64(utf8.RuneCountInString(text))
	if windowSize < textLen {
		return 0, fmt.Errorf("%w: window %d, text %d", ErrInvalidWindowSize, windowSize, textLen)
	}
	return windowSize - textLen, nil
}
