// Package gui lays out the fyne window around the viewport and routes user
// actions to handlers installed by the application.
package gui

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"diamond-pattern/internal/gui/components"
	"diamond-pattern/internal/logger"
	"diamond-pattern/internal/models"
	"diamond-pattern/internal/source"
	"diamond-pattern/internal/state"
	"diamond-pattern/internal/viewport"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

const (
	LeftPanelWidth  = 240
	RightPanelWidth = 260
)

type Manager struct {
	window     fyne.Window
	logger     logger.Logger
	// isShutdown is set from the shutdown goroutine and read on the fyne one.
	isShutdown atomic.Bool

	viewport *components.ViewportWidget
	toolbar  *components.Toolbar
	settings *components.SettingsPanel
	info     *components.InfoPanel
	status   *components.StatusBar

	loadHandler   func(name string, data []byte)
	exportHandler func(w io.Writer) error
}

func NewManager(window fyne.Window, controller *viewport.Controller, params models.Params, resizeDebounce time.Duration, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NoOp{}
	}

	m := &Manager{
		window:   window,
		logger:   log,
		viewport: components.NewViewportWidget(controller, resizeDebounce),
		toolbar:  components.NewToolbar(),
		settings: components.NewSettingsPanel(params),
		info:     components.NewInfoPanel(),
		status:   components.NewStatusBar(),
	}

	m.toolbar.SetOpenHandler(m.ShowOpenDialog)
	m.toolbar.SetExportHandler(m.ShowExportDialog)
	window.SetOnDropped(m.handleDrop)

	log.Info("GUIManager", "initialized", map[string]interface{}{
		"viewport_width":  components.ViewportMinWidth,
		"viewport_height": components.ViewportMinHeight,
	})
	return m
}

func (m *Manager) GetMainContainer() fyne.CanvasObject {
	left := container.NewVScroll(m.settings.GetContainer())
	left.SetMinSize(fyne.NewSize(LeftPanelWidth, 0))
	right := container.NewVScroll(m.info.GetContainer())
	right.SetMinSize(fyne.NewSize(RightPanelWidth, 0))

	return container.NewBorder(
		m.toolbar.GetContainer(),
		m.status.GetContainer(),
		left, right,
		m.viewport,
	)
}

func (m *Manager) SetLoadHandler(h func(name string, data []byte)) { m.loadHandler = h }
func (m *Manager) SetExportHandler(h func(w io.Writer) error)      { m.exportHandler = h }
func (m *Manager) SetApplyHandler(h func(models.Params))           { m.settings.SetApplyHandler(h) }
func (m *Manager) SetURLHandler(h func(string))                    { m.settings.SetURLHandler(h) }
func (m *Manager) SetFitHandler(h func())                          { m.toolbar.SetFitHandler(h) }
func (m *Manager) SetClearHandler(h func())                        { m.toolbar.SetClearHandler(h) }
func (m *Manager) SetGridHandler(h func(bool))                     { m.toolbar.SetGridHandler(h) }

// Params returns the parameters currently entered in the settings panel.
func (m *Manager) Params() (models.Params, error) {
	return m.settings.Params()
}

// Update refreshes every panel from snap. It must run on the fyne goroutine.
func (m *Manager) Update(snap state.Snapshot) {
	if m.isShutdown.Load() {
		return
	}
	m.info.Update(snap)
	m.status.Update(snap)
	m.settings.SetBusy(snap.State == models.StateProcessing)
	m.toolbar.SetHasPattern(snap.Pattern != nil)
}

func (m *Manager) SetFrameHandler(h func()) { m.viewport.SetFrameHandler(h) }

func (m *Manager) SetZoom(scale float64) {
	m.status.SetZoom(scale)
}

// Reinitialize resizes the viewport surface immediately.
func (m *Manager) Reinitialize() {
	m.viewport.Reinitialize()
}

func (m *Manager) ShowError(err error) {
	if m.isShutdown.Load() {
		return
	}
	dialog.ShowError(err, m.window)
}

func (m *Manager) ShowInformation(title, message string) {
	if m.isShutdown.Load() {
		return
	}
	dialog.ShowInformation(title, message, m.window)
}

func (m *Manager) ShowOpenDialog() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			m.ShowError(err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()
		m.load(reader.URI().Name(), reader)
	}, m.window)
	open.SetFilter(storage.NewExtensionFileFilter(source.Extensions()))
	open.Show()
}

func (m *Manager) ShowExportDialog() {
	save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			m.ShowError(err)
			return
		}
		if writer == nil || m.exportHandler == nil {
			return
		}
		defer writer.Close()

		if err := m.exportHandler(writer); err != nil {
			m.logger.Error("GUIManager", err, map[string]interface{}{
				"path": writer.URI().Path(),
			})
			m.ShowError(err)
		}
	}, m.window)
	save.SetFileName("pattern.png")
	save.Show()
}

// handleDrop accepts the first dropped URI if it names an image.
func (m *Manager) handleDrop(_ fyne.Position, uris []fyne.URI) {
	if len(uris) == 0 {
		return
	}
	uri := uris[0]
	if len(uris) > 1 {
		m.logger.Warning("GUIManager", "multiple files dropped, using the first", map[string]interface{}{
			"count": len(uris),
		})
	}
	if !source.IsImageName(uri.Name()) {
		m.ShowError(fmt.Errorf("%s is not a supported image", uri.Name()))
		return
	}

	reader, err := storage.Reader(uri)
	if err != nil {
		m.ShowError(err)
		return
	}
	defer reader.Close()
	m.load(uri.Name(), reader)
}

func (m *Manager) load(name string, r io.Reader) {
	data, err := io.ReadAll(r)
	if err != nil {
		m.ShowError(fmt.Errorf("failed to read %s: %w", name, err))
		return
	}
	if len(data) == 0 {
		m.ShowError(errors.New(name + " is empty"))
		return
	}
	if m.loadHandler != nil {
		m.loadHandler(name, data)
	}
}

func (m *Manager) Shutdown() {
	m.isShutdown.Store(true)
	m.viewport.Stop()
	m.logger.Debug("GUIManager", "shutdown", nil)
}
