package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guzus/relay/tui"
	"github.com/spf13/cobra"
)

var previewPreset string

var previewCmd = &cobra.Command{
	Use:         "preview ['<.window line>']",
	Short:       "Play a .window line in the terminal",
	GroupID:     "local",
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{quietAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		line, title, err := resolveLine(args, previewPreset)
		if err != nil {
			return err
		}
		opts, err := parseLine(line)
		if err != nil {
			return err
		}

		m, err := tui.NewStandalonePreview(opts, title)
		if err != nil {
			return err
		}
		appLog.Debug("Previewing", "line", line)
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringVarP(&previewPreset, "preset", "p", "", "use a saved preset")
	rootCmd.AddCommand(previewCmd)
}
