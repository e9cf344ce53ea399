package app

import (
	"context"

	"diamond-pattern/internal/gui"
	"diamond-pattern/internal/models"
	"diamond-pattern/internal/render"
	"diamond-pattern/internal/source"
	"diamond-pattern/internal/state"
	"diamond-pattern/internal/viewport"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
)

const (
	AppName = "Diamond Pattern"
	AppID   = "com.diamondpattern.viewer"

	MinWindowWidth  = 1100
	MinWindowHeight = 700
)

type Application struct {
	core       *Core
	fyneApp    fyne.App
	window     fyne.Window
	guiManager *gui.Manager
	controller *viewport.Controller
	painter    *render.Painter
	frames     *viewport.TickerSource

	lastPattern *models.PatternResult
}

func NewApplication(core *Core, version string) *Application {
	cfg := core.Config

	fyneapp.SetMetadata(fyne.AppMetadata{ID: AppID, Name: AppName, Version: version})
	fyneApp := fyneapp.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(MinWindowWidth, MinWindowHeight))
	window.CenterOnScreen()
	window.SetMaster()

	frames := viewport.NewTickerSource(cfg.Viewport.FrameInterval, fyne.Do)
	controller := viewport.NewController(frames, viewport.Options{
		Limits: viewport.Limits{
			MinScale: cfg.Viewport.MinScale,
			MaxScale: cfg.Viewport.MaxScale,
			ZoomStep: cfg.Viewport.ZoomStep,
		},
		Background: viewport.DefaultOptions().Background,
	}, core.Logger)

	a := &Application{
		core:       core,
		fyneApp:    fyneApp,
		window:     window,
		controller: controller,
		painter:    render.NewPainter(render.DefaultCellSize, cfg.Viewport.GridColor),
		frames:     frames,
		guiManager: gui.NewManager(window, controller, cfg.Pattern, cfg.Viewport.ResizeDebounce, core.Logger),
	}
	a.setupHandlers()
	a.setupMenus()

	// Registered after the core components so the UI stops first.
	core.Shutdown.Register("frames", frames)
	core.Shutdown.Register("gui", a.guiManager)

	core.Logger.Info("Application", "initialization complete", map[string]interface{}{
		"version":        version,
		"frame_interval": cfg.Viewport.FrameInterval.String(),
	})
	return a
}

func (a *Application) setupHandlers() {
	a.guiManager.SetLoadHandler(a.handleLoad)
	a.guiManager.SetURLHandler(a.handleURL)
	a.guiManager.SetApplyHandler(a.handleApply)
	a.guiManager.SetClearHandler(a.handleClear)
	a.guiManager.SetFitHandler(a.handleFit)
	a.guiManager.SetGridHandler(a.handleGrid)
	a.guiManager.SetExportHandler(a.handleExport)
	a.guiManager.SetFrameHandler(func() {
		a.guiManager.SetZoom(a.controller.Transform().Scale)
	})

	a.core.Store.Subscribe(func(snap state.Snapshot) {
		fyne.Do(func() { a.apply(snap) })
	})
}

// Run shows the window, optionally starts processing initial, and blocks
// until the window closes.
func (a *Application) Run(ctx context.Context, initial source.Source) error {
	log := a.core.Logger

	a.window.SetCloseIntercept(func() {
		log.Info("Application", "shutdown requested", nil)
		a.core.Shutdown.Shutdown()
		a.window.Close()
	})
	a.core.Shutdown.Listen(func() {
		fyne.Do(a.fyneApp.Quit)
	})

	a.window.SetContent(a.guiManager.GetMainContainer())
	a.window.Show()
	a.controller.Render(a.painter.Draw)

	if initial.Kind != source.KindNone {
		a.process(initial, a.core.Config.Pattern)
	}

	monitorCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.monitor(monitorCtx)

	log.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.core.Shutdown.Shutdown()
	return nil
}

// apply mirrors a store snapshot into the UI. It runs on the fyne goroutine.
func (a *Application) apply(snap state.Snapshot) {
	a.guiManager.Update(snap)

	if snap.Pattern == a.lastPattern {
		return
	}
	a.lastPattern = snap.Pattern

	if err := a.painter.SetPattern(snap.Pattern); err != nil {
		a.core.Logger.Error("Application", err, nil)
		return
	}
	if snap.Pattern != nil {
		a.controller.Fit(a.painter.ContentSize())
	}
	a.controller.RequestRedraw()
}
