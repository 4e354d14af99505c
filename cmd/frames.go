package cmd

import (
	"fmt"
	"io"

	"github.com/guzus/relay/internal/window"
	"github.com/spf13/cobra"
)

var (
	framesQuote  bool
	framesCount  int
	framesPreset string
)

var framesCmd = &cobra.Command{
	Use:   "frames ['<.window line>']",
	Short: "Print the frames of one bounce cycle",
	Long: `Print the frames a .window line animates through, one per line.

With --count the cycle repeats until that many frames are printed.
With --quote each frame is Go-quoted so the none style's NUL delimiters show.`,
	GroupID: "local",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line, _, err := resolveLine(args, framesPreset)
		if err != nil {
			return err
		}
		opts, err := parseLine(line)
		if err != nil {
			return err
		}
		return writeFrames(cmd.OutOrStdout(), opts, framesCount, framesQuote)
	},
}

func writeFrames(w io.Writer, opts window.Options, count int, quote bool) error {
	cycle, err := window.Generate(opts)
	if err != nil {
		return err
	}

	frames := cycle.Frames()
	if count > 0 {
		frames = cycle.Take(count)
	}
	for _, f := range frames {
		if quote {
			fmt.Fprintf(w, "%q\n", f)
		} else {
			fmt.Fprintln(w, f)
		}
	}
	return nil
}

func init() {
	framesCmd.Flags().BoolVarP(&framesQuote, "quote", "q", false, "quote each frame")
	framesCmd.Flags().IntVarP(&framesCount, "count", "n", 0, "number of frames to print (default one cycle)")
	framesCmd.Flags().StringVarP(&framesPreset, "preset", "p", "", "use a saved preset")

	rootCmd.AddCommand(framesCmd)
}
