package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guzus/relay/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:         "tui",
	Short:       "Launch the interactive terminal UI",
	Long:        "Compose .window lines, pick saved presets and preview the animation full-screen.",
	GroupID:     "local",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{quietAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		m := tui.NewMainModel(st.List(), cfg.Window.MaxWindowSize)
		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
