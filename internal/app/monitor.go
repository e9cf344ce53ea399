package app

import (
	"context"
	"runtime"
	"time"
)

const monitorInterval = 30 * time.Second

// monitor periodically logs memory, handle and pipeline statistics.
func (a *Application) monitor(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.core.logStats()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Core) logStats() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	handles := c.Resources.GetStats()
	requests := c.Pipeline.Stats()

	c.Logger.Debug("Monitor", "runtime statistics", map[string]interface{}{
		"go_memory_mb":      mem.Alloc / 1024 / 1024,
		"go_gc_runs":        mem.NumGC,
		"goroutines":        runtime.NumGoroutine(),
		"handles_active":    handles.Active,
		"handles_acquired":  handles.Acquired,
		"handles_released":  handles.Released,
		"handle_bytes":      handles.LiveBytes,
		"generation":        c.Pipeline.Generation(),
		"requests":          requests.Requests,
		"succeeded":         requests.Succeeded,
		"failed":            requests.Failed,
		"superseded":        requests.Superseded,
		"avg_compute_ms":    requests.Average["compute"].Milliseconds(),
		"compute_latest_id": c.Worker.Latest(),
	})
}
