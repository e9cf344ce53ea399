// Package cmd defines the command line interface.
package cmd

import (
	"fmt"

	"diamond-pattern/internal/config"
	"diamond-pattern/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCmd returns the root command. version is reported in the window
// metadata.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "diamond-pattern",
		Short: "Turn images into diamond painting patterns",
		Long: `Diamond Pattern pixelates an image into a grid of cells, reduces it to a
limited palette and shows the result in a zoomable viewer.

Run without arguments to open the viewer, or use the render command to
produce a pattern image without a window.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts, version, args)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newViewCmd(opts, version))
	cmd.AddCommand(newRenderCmd(opts))

	return cmd
}

// load reads the configuration and builds the logger it describes.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	return cfg, logger.New(logger.Options{
		Out:   cmd.ErrOrStderr(),
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
	}), nil
}
