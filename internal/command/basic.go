package command

import (
	"context"
	"strings"
	"time"
)

// Ping answers ".ping" with "pong!".
type Ping struct{}

func (Ping) Matches(text string) bool {
	return strings.HasPrefix(text, ".ping")
}

func (Ping) Run(ctx context.Context, msg Message) error {
	return msg.Reply(ctx, "pong!")
}

func (Ping) Info() Info {
	return Info{Name: "pong.", Usage: ".ping"}
}

// Commands answers ".commands" with the usage of every registered command.
type Commands struct {
	Registry *Registry
}

func (c Commands) Matches(text string) bool {
	return strings.TrimSpace(text) == ".commands"
}

func (c Commands) Run(ctx context.Context, msg Message) error {
	var b strings.Builder
	for _, info := range c.Registry.Infos() {
		b.WriteString(info.Name)
		b.WriteString(": `")
		b.WriteString(info.Usage)
		b.WriteString("`\n")
	}
	return msg.Reply(ctx, strings.TrimRight(b.String(), "\n"))
}

func (c Commands) Info() Info {
	return Info{Name: "commands", Usage: ".commands"}
}

// Default returns the registry the bot serves.
func Default(maxWindowSize uint64, minDelay time.Duration) *Registry {
	r := NewRegistry(Ping{}, &TextWindow{MaxWindowSize: maxWindowSize, MinDelay: minDelay})
	r.Register(Commands{Registry: r})
	return r
}
