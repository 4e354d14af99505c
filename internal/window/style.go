package window

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownBracketStyle is returned when a style name is not one of the
// four known literals.
var ErrUnknownBracketStyle = errors.New("does not match any bracket style known")

// BracketStyle selects the delimiters drawn around every frame.
type BracketStyle int

const (
	Square BracketStyle = iota
	Squiggly
	Circle
	None
)

// ParseBracketStyle converts a style name to a BracketStyle, ignoring case.
func ParseBracketStyle(s string) (BracketStyle, error) {
	switch strings.ToLower(s) {
	case "square":
		return Square, nil
	case "squiggly":
		return Squiggly, nil
	case "circle":
		return Circle, nil
	case "none":
		return None, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid: square, squiggly, circle, none)", ErrUnknownBracketStyle, s)
	}
}

// Delimiters returns the opening and closing rune of the style.
// None renders NUL runes in place of the brackets, so frames keep the same
// width whatever the style.
func (b BracketStyle) Delimiters() (rune, rune) {
	switch b {
	case Square:
		return '[', ']'
	case Squiggly:
		return '{', '}'
	case Circle:
		return '(', ')'
	default:
		return '\x00', '\x00'
	}
}

func (b BracketStyle) String() string {
	switch b {
	case Square:
		return "square"
	case Squiggly:
		return "squiggly"
	case Circle:
		return "circle"
	case None:
		return "none"
	default:
		return fmt.Sprintf("BracketStyle(%d)", int(b))
	}
}
