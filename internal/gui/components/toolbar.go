package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type Toolbar struct {
	container    *fyne.Container
	OpenButton   *widget.Button
	ExportButton *widget.Button
	FitButton    *widget.Button
	ClearButton  *widget.Button
	GridCheck    *widget.Check

	openHandler   func()
	exportHandler func()
	fitHandler    func()
	clearHandler  func()
	gridHandler   func(bool)
}

func NewToolbar() *Toolbar {
	t := &Toolbar{}

	t.OpenButton = widget.NewButton("Open", func() { call(t.openHandler) })
	t.OpenButton.Importance = widget.HighImportance
	t.ExportButton = widget.NewButton("Export", func() { call(t.exportHandler) })
	t.ExportButton.Disable()
	t.FitButton = widget.NewButton("Fit", func() { call(t.fitHandler) })
	t.ClearButton = widget.NewButton("Clear", func() { call(t.clearHandler) })
	t.GridCheck = widget.NewCheck("Grid", func(on bool) {
		if t.gridHandler != nil {
			t.gridHandler(on)
		}
	})
	t.GridCheck.SetChecked(true)

	t.container = container.NewHBox(
		t.OpenButton,
		t.ExportButton,
		widget.NewSeparator(),
		t.FitButton,
		t.GridCheck,
		widget.NewSeparator(),
		t.ClearButton,
	)
	return t
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

func (t *Toolbar) SetOpenHandler(h func())     { t.openHandler = h }
func (t *Toolbar) SetExportHandler(h func())   { t.exportHandler = h }
func (t *Toolbar) SetFitHandler(h func())      { t.fitHandler = h }
func (t *Toolbar) SetClearHandler(h func())    { t.clearHandler = h }
func (t *Toolbar) SetGridHandler(h func(bool)) { t.gridHandler = h }

// SetHasPattern enables export when a pattern exists.
func (t *Toolbar) SetHasPattern(has bool) {
	if has {
		t.ExportButton.Enable()
	} else {
		t.ExportButton.Disable()
	}
}

func call(h func()) {
	if h != nil {
		h()
	}
}
