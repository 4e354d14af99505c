package command

import (
	"context"
	"errors"

	"github.com/samber/lo"
)

// ErrNoMatch is returned when a line is not an invocation of the command.
// It is how the registry decides which command applies, not a failure.
var ErrNoMatch = errors.New("not a valid match")

// Message is one chat message a command was invoked from.
type Message interface {
	// Content is the text of the message with mentions resolved.
	Content() string
	// Edit replaces the content of the message.
	Edit(ctx context.Context, content string) error
	// Reply posts a new message in response.
	Reply(ctx context.Context, content string) error
}

// Info describes a command for listings.
type Info struct {
	Name  string
	Usage string
}

// Command is a chat command recognised by its text.
type Command interface {
	// Matches is a cheap check with no side effects.
	Matches(text string) bool
	// Run executes the command for msg. It may block for as long as the
	// command lasts; the dispatcher runs it on its own goroutine.
	Run(ctx context.Context, msg Message) error
	Info() Info
}

// Registry holds commands in priority order.
type Registry struct {
	commands []Command
}

func NewRegistry(commands ...Command) *Registry {
	return &Registry{commands: commands}
}

// Register appends a command with the lowest priority.
func (r *Registry) Register(c Command) {
	r.commands = append(r.commands, c)
}

// Match returns the first command that matches text.
func (r *Registry) Match(text string) (Command, bool) {
	return lo.Find(r.commands, func(c Command) bool {
		return c.Matches(text)
	})
}

// Infos lists the registered commands in order.
func (r *Registry) Infos() []Info {
	return lo.Map(r.commands, func(c Command, _ int) Info {
		return c.Info()
	})
}
