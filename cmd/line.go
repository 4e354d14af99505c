package cmd

import (
	"errors"

	"github.com/guzus/relay/internal/command"
	"github.com/guzus/relay/internal/store"
	"github.com/guzus/relay/internal/window"
)

func openStore() (*store.Store, error) {
	return store.OpenPath(cfg.Paths.Presets)
}

// parseLine applies the same rules a chat message gets.
func parseLine(line string) (window.Options, error) {
	parser := &command.TextWindow{MaxWindowSize: cfg.Window.MaxWindowSize}
	return parser.Parse(line)
}

// resolveLine returns the .window line from args or from the named preset,
// and a title for it. Using a preset counts as a use.
func resolveLine(args []string, preset string) (line, title string, err error) {
	if preset == "" {
		if len(args) == 0 {
			return "", "", errors.New("a .window line or --preset is required")
		}
		return args[0], "preview", nil
	}
	if len(args) > 0 {
		return "", "", errors.New("give either a .window line or --preset, not both")
	}

	st, err := openStore()
	if err != nil {
		return "", "", err
	}
	p, err := st.Get(preset)
	if err != nil {
		return "", "", err
	}
	if err := st.RecordUsage(preset); err != nil {
		return "", "", err
	}
	if err := st.Save(); err != nil {
		return "", "", err
	}
	return p.Line, p.Name, nil
}
