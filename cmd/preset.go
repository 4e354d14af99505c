package cmd

import (
	"fmt"

	"github.com/guzus/relay/internal/window"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var presetCmd = &cobra.Command{
	Use:     "preset",
	Short:   "Manage saved .window lines",
	Long:    "Add, remove, list and show named .window lines for preview, frames and the tui.",
	GroupID: "local",
}

var presetAddCmd = &cobra.Command{
	Use:   "add <name> '<.window line>'",
	Short: "Save a .window line under a name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, line := args[0], args[1]
		if _, err := parseLine(line); err != nil {
			return fmt.Errorf("invalid line: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		if err := st.Add(name, line); err != nil {
			return err
		}
		if err := st.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Preset %q added.\n", name)
		return nil
	},
}

var presetUpdateCmd = &cobra.Command{
	Use:   "update <name> '<.window line>'",
	Short: "Replace the line of an existing preset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, line := args[0], args[1]
		if _, err := parseLine(line); err != nil {
			return fmt.Errorf("invalid line: %w", err)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		if err := st.Update(name, line); err != nil {
			return err
		}
		if err := st.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Preset %q updated.\n", name)
		return nil
	},
}

var presetHeader = table.Row{"Name", "Uses", "Last Used", "Line"}

var presetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved presets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}

		presets := st.List()
		if len(presets) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No presets saved. Run: relay preset add <name> '<.window line>'")
			return nil
		}

		tw := table.NewWriter()
		tw.SetOutputMirror(cmd.OutOrStdout())
		tw.AppendHeader(presetHeader)
		for _, p := range presets {
			lastUsed := "-"
			if !p.LastUsed.IsZero() {
				lastUsed = p.LastUsed.Format("2006-01-02 15:04")
			}
			tw.AppendRow(table.Row{p.Name, p.UseCount, lastUsed, p.Line})
		}
		tw.Render()
		return nil
	},
}

var presetRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a preset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		if err := st.Remove(args[0]); err != nil {
			return err
		}
		if err := st.Save(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Preset %q removed.\n", args[0])
		return nil
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a preset and the options it parses to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		p, err := st.Get(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Name:   %s\n", p.Name)
		fmt.Fprintf(out, "Line:   %s\n", p.Line)
		fmt.Fprintf(out, "Added:  %s\n", p.AddedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(out, "Uses:   %d\n", p.UseCount)

		// A preset saved under a larger limit may no longer parse.
		opts, err := parseLine(p.Line)
		if err != nil {
			fmt.Fprintf(out, "Status: invalid (%v)\n", err)
			return nil
		}
		count, err := window.FrameCount(opts.Text, opts.WindowSize)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Style:  %s\n", opts.Style)
		fmt.Fprintf(out, "Window: %d, background %q, every %s\n", opts.WindowSize, opts.Background, opts.Delay)
		fmt.Fprintf(out, "Frames: %d per cycle\n", count)
		return nil
	},
}

func init() {
	presetCmd.AddCommand(presetAddCmd)
	presetCmd.AddCommand(presetUpdateCmd)
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetRemoveCmd)
	presetCmd.AddCommand(presetShowCmd)

	rootCmd.AddCommand(presetCmd)
}
