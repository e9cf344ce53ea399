package cmd

import (
	"runtime"

	"diamond-pattern/internal/app"
	"diamond-pattern/internal/source"

	"github.com/spf13/cobra"
)

func newViewCmd(opts *rootOptions, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "view [path|url]",
		Short: "Open the pattern viewer",
		Long: `Opens the pattern viewer window. When a path or URL is given the image
is loaded and processed with the configured size and color count.`,
		Example: `  # Open an empty viewer
  diamond-pattern view

  # Open a local image
  diamond-pattern view photo.jpg

  # Fetch an image over HTTP
  diamond-pattern view https://example.com/photo.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts, version, args)
		},
	}
}

func runView(cmd *cobra.Command, opts *rootOptions, version string, args []string) error {
	cfg, log, err := opts.load(cmd)
	if err != nil {
		return err
	}

	initial := source.None
	if len(args) == 1 {
		initial = source.Parse(args[0])
	}

	log.Info("Main", "starting viewer", map[string]interface{}{
		"version":    version,
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
		"source":     initial.String(),
	})

	core := app.NewCore(cfg, log, nil)
	return app.NewApplication(core, version).Run(cmd.Context(), initial)
}
