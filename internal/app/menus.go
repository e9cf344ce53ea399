package app

import (
	"fmt"
	"runtime"

	"diamond-pattern/internal/gui/components"

	"fyne.io/fyne/v2"
)

func (a *Application) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", a.guiManager.ShowOpenDialog),
		fyne.NewMenuItem("Export Pattern...", func() {
			if a.core.Store.Snapshot().Pattern == nil {
				a.guiManager.ShowError(ErrNoPattern)
				return
			}
			a.guiManager.ShowExportDialog()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear", a.handleClear),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Fit to Window", a.handleFit),
		fyne.NewMenuItem("Actual Size", a.controller.Reset),
	)

	debugMenu := fyne.NewMenu("Debug",
		fyne.NewMenuItem("Statistics", func() {
			a.guiManager.ShowInformation("Statistics", a.core.statsReport())
		}),
	)

	a.window.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, debugMenu))
}

func (c *Core) statsReport() string {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	handles := c.Resources.GetStats()

	return fmt.Sprintf("Go memory: %s\nGoroutines: %d\nHandles: %d live (%s)\nAcquired/released: %d/%d\nGeneration: %d",
		components.FormatBytes(int(mem.Alloc)),
		runtime.NumGoroutine(),
		handles.Active,
		components.FormatBytes(int(handles.LiveBytes)),
		handles.Acquired,
		handles.Released,
		c.Pipeline.Generation(),
	)
}
