package app

import (
	"io"

	"diamond-pattern/internal/models"
	"diamond-pattern/internal/render"
	"diamond-pattern/internal/source"
)

func (a *Application) process(src source.Source, params models.Params) {
	ctx := a.core.Shutdown.Context()
	go a.core.Pipeline.Process(ctx, src, params)
}

func (a *Application) params() models.Params {
	p, err := a.guiManager.Params()
	if err != nil {
		a.core.Logger.Warning("Application", "invalid settings, using last applied", map[string]interface{}{
			"error": err.Error(),
		})
		return a.core.Store.Snapshot().Params
	}
	return p
}

func (a *Application) handleLoad(name string, data []byte) {
	a.process(source.Blob(name, data), a.params())
}

func (a *Application) handleURL(ref string) {
	a.process(source.Parse(ref), a.params())
}

func (a *Application) handleApply(p models.Params) {
	a.process(source.None, p)
}

func (a *Application) handleClear() {
	a.core.Pipeline.Reset()
	a.controller.Reset()
}

func (a *Application) handleFit() {
	if w, h := a.painter.ContentSize(); w > 0 {
		a.controller.Fit(w, h)
		return
	}
	a.controller.Reset()
}

func (a *Application) handleGrid(show bool) {
	a.painter.SetGrid(show)
	a.controller.RequestRedraw()
}

func (a *Application) handleExport(w io.Writer) error {
	snap := a.core.Store.Snapshot()
	if snap.Pattern == nil {
		return ErrNoPattern
	}
	return render.Export(w, snap.Pattern, render.DefaultCellSize, a.core.Config.Viewport.GridColor)
}
