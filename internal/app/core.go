// Package app wires configuration, logging, the processing pipeline and the
// user interface together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"diamond-pattern/internal/compute"
	"diamond-pattern/internal/config"
	"diamond-pattern/internal/logger"
	"diamond-pattern/internal/models"
	"diamond-pattern/internal/pipeline"
	"diamond-pattern/internal/render"
	"diamond-pattern/internal/resources"
	"diamond-pattern/internal/shutdown"
	"diamond-pattern/internal/source"
	"diamond-pattern/internal/state"

	"github.com/gogpu/gg"
	"github.com/rs/zerolog"
)

// ErrNoPattern is returned by Render when processing left nothing to export.
var ErrNoPattern = errors.New("no pattern was produced")

// Core is everything except the window: it serves both the GUI and the
// headless render command.
type Core struct {
	Config    config.Config
	Logger    logger.Logger
	Resources *resources.Manager
	Worker    *compute.Worker
	Store     *state.Store
	Pipeline  *pipeline.Pipeline
	Shutdown  *shutdown.Manager
}

// NewCore builds the processing stack. A nil unit selects the default
// generator.
func NewCore(cfg config.Config, log logger.Logger, unit compute.Unit) *Core {
	if log == nil {
		log = logger.NoOp{}
	}
	if s, ok := log.(interface{ Slog() *slog.Logger }); ok && logger.ParseLevel(cfg.Log.Level) <= zerolog.DebugLevel {
		gg.SetLogger(s.Slog())
	}
	if unit == nil {
		unit = compute.NewGenerator(cfg.Processing.Seed, log)
	}

	resourceManager := resources.NewManager(log)
	worker := compute.NewWorker(unit, cfg.Processing.Workers, log)
	resolver := source.NewResolver(cfg.Processing.FetchTimeout, cfg.Processing.MaxFetchBytes, log)
	store := state.NewStore(cfg.Pattern)

	p := pipeline.New(resolver, worker, store, resourceManager, pipeline.Options{
		Timeout:      cfg.Processing.Timeout,
		DiscardStale: cfg.Processing.DiscardStale,
	}, log)

	shutdownManager := shutdown.NewManager(0, log)
	shutdownManager.Register("resources", resourceManager)
	shutdownManager.Register("worker", worker)
	shutdownManager.Register("pipeline", p)

	log.Info("Core", "processing stack ready", map[string]interface{}{
		"workers":       cfg.Processing.Workers,
		"timeout":       cfg.Processing.Timeout.String(),
		"discard_stale": cfg.Processing.DiscardStale,
		"size":          cfg.Pattern.TargetSize,
		"colors":        cfg.Pattern.ColorCount,
	})

	return &Core{
		Config:    cfg,
		Logger:    log,
		Resources: resourceManager,
		Worker:    worker,
		Store:     store,
		Pipeline:  p,
		Shutdown:  shutdownManager,
	}
}

// Render processes src and writes the pattern as a PNG with cellSize pixels
// per cell.
func (c *Core) Render(ctx context.Context, src source.Source, params models.Params, cellSize float64, out io.Writer) (state.Snapshot, error) {
	c.Pipeline.Process(ctx, src, params)

	snap := c.Store.Snapshot()
	if snap.LastError != nil {
		return snap, snap.LastError
	}
	if snap.Pattern == nil {
		return snap, ErrNoPattern
	}

	if err := render.Export(out, snap.Pattern, cellSize, c.Config.Viewport.GridColor); err != nil {
		return snap, fmt.Errorf("failed to export pattern: %w", err)
	}
	return snap, nil
}
