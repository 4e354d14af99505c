package window

import "errors"

// ErrNoFrames is returned when a cycle is built from an empty sequence.
var ErrNoFrames = errors.New("no frames to cycle")

// Cycle repeats a frame sequence forever. The k-th call to Next returns
// frames[k mod len(frames)]. A Cycle is owned by a single goroutine.
type Cycle struct {
	frames []string
	pos    int
}

// NewCycle wraps frames in a restartable cycle. The slice is not copied and
// must not be modified afterwards.
func NewCycle(frames []string) (*Cycle, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return &Cycle{frames: frames}, nil
}

// Generate builds the frames described by opts and wraps them in a Cycle.
func Generate(opts Options) (*Cycle, error) {
	frames, err := Frames(opts.Text, opts.Background, opts.WindowSize, opts.Style)
	if err != nil {
		return nil, err
	}
	return NewCycle(frames)
}

// Next returns the current frame and advances, wrapping to the first frame
// after the last.
func (c *Cycle) Next() string {
	f := c.frames[c.pos]
	c.pos = (c.pos + 1) % len(c.frames)
	return f
}

// Take returns the next n frames.
func (c *Cycle) Take(n int) []string {
	out := make([]string, 0, max(n, 0))
	for i := 0; i < n; i++ {
		out = append(out, c.Next())
	}
	return out
}

// Reset rewinds the cycle to the first frame.
func (c *Cycle) Reset() { c.pos = 0 }

// Position is the index of the frame the next call to Next returns.
func (c *Cycle) Position() int { return c.pos }

// Len is the number of frames in one bounce cycle.
func (c *Cycle) Len() int { return len(c.frames) }

// Frames returns the underlying sequence.
func (c *Cycle) Frames() []string { return c.frames }
