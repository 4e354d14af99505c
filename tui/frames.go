package tui

import (
	"strings"

	"github.com/guzus/relay/internal/window"
)

const splashText = "r e l a y"

// splashFrames is the brand bouncing inside a squiggly window, built with
// the same generator the chat command uses.
var splashFrames []string

func init() {
	frames, err := window.Frames(splashText, ' ', 17, window.Squiggly)
	if err != nil {
		panic(err)
	}
	splashFrames = frames
}

// displayFrame makes a frame safe to print. The none style draws NUL
// delimiters, which terminals do not render; a space keeps the width.
func displayFrame(frame string) string {
	return strings.ReplaceAll(frame, "\x00", " ")
}
