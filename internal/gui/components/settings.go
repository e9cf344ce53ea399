package components

import (
	"fmt"
	"strconv"
	"strings"

	"diamond-pattern/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// SettingsPanel edits the generation parameters and takes image URLs.
type SettingsPanel struct {
	container   *fyne.Container
	sizeEntry   *widget.Entry
	colorsEntry *widget.Entry
	urlEntry    *widget.Entry
	ApplyButton *widget.Button
	FetchButton *widget.Button

	applyHandler func(models.Params)
	urlHandler   func(string)
}

func NewSettingsPanel(initial models.Params) *SettingsPanel {
	sp := &SettingsPanel{}

	sp.sizeEntry = widget.NewEntry()
	sp.sizeEntry.Validator = positiveInt
	sp.colorsEntry = widget.NewEntry()
	sp.colorsEntry.Validator = positiveInt
	sp.SetParams(initial)

	sp.ApplyButton = widget.NewButton("Apply", sp.onApply)
	sp.ApplyButton.Importance = widget.HighImportance

	sp.urlEntry = widget.NewEntry()
	sp.urlEntry.SetPlaceHolder("https://example.com/image.png")
	sp.urlEntry.OnSubmitted = func(string) { sp.onFetch() }
	sp.FetchButton = widget.NewButton("Fetch", sp.onFetch)

	form := widget.NewForm(
		widget.NewFormItem("Size", sp.sizeEntry),
		widget.NewFormItem("Colors", sp.colorsEntry),
	)

	sp.container = container.NewVBox(
		widget.NewLabelWithStyle("Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		form,
		sp.ApplyButton,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Image URL", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		sp.urlEntry,
		sp.FetchButton,
	)
	return sp
}

func (sp *SettingsPanel) GetContainer() *fyne.Container {
	return sp.container
}

func (sp *SettingsPanel) SetApplyHandler(handler func(models.Params)) {
	sp.applyHandler = handler
}

func (sp *SettingsPanel) SetURLHandler(handler func(string)) {
	sp.urlHandler = handler
}

func (sp *SettingsPanel) SetParams(p models.Params) {
	sp.sizeEntry.SetText(strconv.Itoa(p.TargetSize))
	sp.colorsEntry.SetText(strconv.Itoa(p.ColorCount))
}

// Params returns the entered parameters.
func (sp *SettingsPanel) Params() (models.Params, error) {
	return ParseParams(sp.sizeEntry.Text, sp.colorsEntry.Text)
}

// SetBusy disables the action buttons while a request runs.
func (sp *SettingsPanel) SetBusy(busy bool) {
	if busy {
		sp.ApplyButton.Disable()
		sp.FetchButton.Disable()
		return
	}
	sp.ApplyButton.Enable()
	sp.FetchButton.Enable()
}

func (sp *SettingsPanel) onApply() {
	p, err := sp.Params()
	if err != nil || sp.applyHandler == nil {
		return
	}
	sp.applyHandler(p)
}

func (sp *SettingsPanel) onFetch() {
	ref := strings.TrimSpace(sp.urlEntry.Text)
	if ref == "" || sp.urlHandler == nil {
		return
	}
	sp.urlHandler(ref)
}

// ParseParams reads the size and colour count fields.
func ParseParams(size, colors string) (models.Params, error) {
	s, err := strconv.Atoi(strings.TrimSpace(size))
	if err != nil {
		return models.Params{}, fmt.Errorf("%w: size %q is not a number", models.ErrInvalidParams, size)
	}
	c, err := strconv.Atoi(strings.TrimSpace(colors))
	if err != nil {
		return models.Params{}, fmt.Errorf("%w: colors %q is not a number", models.ErrInvalidParams, colors)
	}
	p := models.Params{TargetSize: s, ColorCount: c}
	return p, p.Validate()
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
