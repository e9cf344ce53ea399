// Package pipeline turns an image source into a published pattern and owns
// the processing state machine.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"diamond-pattern/internal/compute"
	"diamond-pattern/internal/logger"
	"diamond-pattern/internal/models"
	"diamond-pattern/internal/resources"
	"diamond-pattern/internal/source"
	"diamond-pattern/internal/state"
)

type Options struct {
	// Timeout bounds a single compute round trip.
	Timeout time.Duration
	// DiscardStale publishes only the latest request's result. With it off,
	// whichever response arrives last wins.
	DiscardStale bool
}

func DefaultOptions() Options {
	return Options{Timeout: 60 * time.Second, DiscardStale: true}
}

type Pipeline struct {
	resolver Resolver
	worker   Dispatcher
	store    *state.Store
	original *resources.Slot
	pattern  *resources.Slot
	opts     Options
	logger   logger.Logger
	metrics  *metrics

	// mu orders generation changes against publication.
	mu         sync.Mutex
	generation atomic.Uint64
}

func New(resolver Resolver, worker Dispatcher, store *state.Store, mgr *resources.Manager, opts Options, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.NoOp{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	worker.SetDiscardStale(opts.DiscardStale)

	return &Pipeline{
		resolver: resolver,
		worker:   worker,
		store:    store,
		original: resources.NewSlot(mgr),
		pattern:  resources.NewSlot(mgr),
		opts:     opts,
		logger:   log,
		metrics:  newMetrics(),
	}
}

// Generation returns the id of the most recent Process or Reset call.
func (p *Pipeline) Generation() uint64 {
	return p.generation.Load()
}

// Stats returns request counters and average stage durations.
func (p *Pipeline) Stats() Stats {
	return p.metrics.snapshot()
}

// Process resolves src, runs the compute unit and publishes the pattern.
// It blocks until the request settles and never returns an error; the
// outcome is recorded in the store. A None source reuses the stored original.
func (p *Pipeline) Process(ctx context.Context, src source.Source, params models.Params) {
	p.mu.Lock()
	gen := p.generation.Add(1)
	p.store.Begin(params)
	p.mu.Unlock()

	start := time.Now()
	p.metrics.count(&p.metrics.stats.Requests)
	p.logger.Info("Pipeline", "processing started", map[string]interface{}{
		"generation": gen,
		"source":     src.String(),
		"size":       params.TargetSize,
		"colors":     params.ColorCount,
	})

	if err := params.Validate(); err != nil {
		p.fail(gen, err)
		return
	}

	img, err := p.resolver.Resolve(ctx, src)
	p.metrics.observe(stageResolve, time.Since(start))
	if err != nil {
		p.fail(gen, err)
		return
	}

	if img != nil {
		if err := describe(img); err != nil {
			p.fail(gen, err)
			return
		}
		p.publish(gen, func() {
			p.original.Replace(img.Name, img.Data, func(h *resources.Handle) {
				p.store.SetOriginal(img, h)
			})
		})
	} else {
		img = p.store.Snapshot().Original
	}

	if img == nil {
		p.logger.Debug("Pipeline", "no source available", map[string]interface{}{
			"generation": gen,
		})
		p.publish(gen, func() {
			p.store.SetState(models.StateIdle)
		})
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	// The generation doubles as the worker request id so both agree on
	// which request is newest.
	computeStart := time.Now()
	out, err := p.worker.Call(callCtx, gen, img.Data, params)
	p.metrics.observe(stageCompute, time.Since(computeStart))
	if errors.Is(err, compute.ErrStale) && p.generation.Load() != gen {
		p.metrics.count(&p.metrics.stats.Superseded)
		p.logger.Debug("Pipeline", "compute response superseded", map[string]interface{}{
			"generation": gen,
			"current":    p.generation.Load(),
		})
		return
	}
	if err != nil {
		p.fail(gen, computeError(err, p.opts.Timeout))
		return
	}

	result := out.Pattern()
	result.ProcessTime = time.Since(start)
	if err := result.Validate(); err != nil {
		p.fail(gen, fmt.Errorf("%w: %w", models.ErrCompute, err))
		return
	}

	published := p.publish(gen, func() {
		p.pattern.Replace("pattern.png", out.PNG, func(h *resources.Handle) {
			p.store.SetPattern(result, h)
		})
		p.store.SetState(models.StateSucceeded)
		p.store.SetState(models.StateIdle)
	})

	if !published {
		p.metrics.count(&p.metrics.stats.Superseded)
		return
	}
	p.metrics.count(&p.metrics.stats.Succeeded)
	p.metrics.observe(stageTotal, result.ProcessTime)
	p.logger.Info("Pipeline", "pattern published", map[string]interface{}{
		"generation":  gen,
		"width":       result.Width,
		"height":      result.Height,
		"colors":      len(result.Colors),
		"duration_ms": result.ProcessTime.Milliseconds(),
	})
}

// Reset clears the published data, releases every held display handle and
// invalidates requests still in flight.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	gen := p.generation.Add(1)
	p.pattern.Clear()
	p.original.Clear()
	p.store.Clear()

	p.logger.Info("Pipeline", "reset", map[string]interface{}{
		"generation": gen,
	})
}

func (p *Pipeline) Shutdown() {
	p.Reset()
}

// publish runs fn if gen is still current, or unconditionally when stale
// results are not discarded.
func (p *Pipeline) publish(gen uint64, fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.DiscardStale && p.generation.Load() != gen {
		p.logger.Debug("Pipeline", "dropping stale result", map[string]interface{}{
			"generation": gen,
			"current":    p.generation.Load(),
		})
		return false
	}
	fn()
	return true
}

func (p *Pipeline) fail(gen uint64, err error) {
	published := p.publish(gen, func() {
		p.store.Fail(err)
		p.store.SetState(models.StateIdle)
	})
	if !published {
		p.metrics.count(&p.metrics.stats.Superseded)
		return
	}
	p.metrics.count(&p.metrics.stats.Failed)
	p.logger.Error("Pipeline", err, map[string]interface{}{
		"generation": gen,
	})
}

// describe fills in the decoded dimensions of img.
func describe(img *models.ImageSource) error {
	cfg, format, err := compute.DecodeConfig(img.Data)
	if err != nil {
		return err
	}
	img.Width = cfg.Width
	img.Height = cfg.Height
	img.Format = format
	return nil
}

func computeError(err error, timeout time.Duration) error {
	switch {
	case errors.Is(err, models.ErrCompute), errors.Is(err, models.ErrDecode), errors.Is(err, models.ErrInvalidParams):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: no response within %s", models.ErrCompute, timeout)
	default:
		return fmt.Errorf("%w: %w", models.ErrCompute, err)
	}
}
