package cmd

import (
	"errors"
	"fmt"
	"os"

	"diamond-pattern/internal/app"
	"diamond-pattern/internal/render"
	"diamond-pattern/internal/source"

	"github.com/spf13/cobra"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		output   string
		size     int
		colors   int
		cellSize float64
	)

	cmd := &cobra.Command{
		Use:   "render <path|url>",
		Short: "Generate a pattern image without opening a window",
		Example: `  # Render with the configured defaults
  diamond-pattern render photo.jpg -o pattern.png

  # Render a 100 cell wide pattern with 12 colors
  diamond-pattern render photo.jpg --size 100 --colors 12 -o pattern.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load(cmd)
			if err != nil {
				return err
			}

			params := cfg.Pattern
			if cmd.Flags().Changed("size") {
				params.TargetSize = size
			}
			if cmd.Flags().Changed("colors") {
				params.ColorCount = colors
			}

			core := app.NewCore(cfg, log, nil)
			defer core.Shutdown.Shutdown()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}

			snap, err := core.Render(cmd.Context(), source.Parse(args[0]), params, cellSize, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return errors.Join(err, os.Remove(output))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d x %d cells, %d colors\n",
				output, snap.Pattern.Width, snap.Pattern.Height, len(snap.Pattern.Colors))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "pattern.png", "Output PNG path")
	cmd.Flags().IntVar(&size, "size", 0, "Pattern width in cells (default from config)")
	cmd.Flags().IntVar(&colors, "colors", 0, "Maximum palette size (default from config)")
	cmd.Flags().Float64Var(&cellSize, "cell", render.DefaultCellSize, "Pixels per cell in the output")

	return cmd
}
