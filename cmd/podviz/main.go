// Command podviz renders the header/body/padding layout of an encoded
// POD buffer as a labeled PNG: one box per field, nested boxes for
// Struct/Object/Array/Choice bodies, labels drawn with freetype the
// same way cmd/memanim renders frame annotations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultFontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"

func main() {
	var (
		output   string
		fontPath string
		width    int
	)

	root := &cobra.Command{
		Use:   "podviz <pod-file>",
		Short: "Render the byte layout of an encoded POD buffer as a PNG diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			spans, err := layoutFile(buf)
			if err != nil && len(spans) == 0 {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "podviz: stopped early: %v\n", err)
			}

			r, err := newRenderer(len(buf), width, fontPath)
			if err != nil {
				return err
			}
			if err := r.Render(spans, output); err != nil {
				return fmt.Errorf("render %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}

	root.Flags().StringVarP(&output, "output", "o", "podviz.png", "output PNG `path`")
	root.Flags().StringVar(&fontPath, "font", defaultFontPath, "TrueType font `path` for labels")
	root.Flags().IntVarP(&width, "width", "w", 1024, "diagram `width` in pixels")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
