package components

import (
	"fmt"

	"diamond-pattern/internal/models"
	"diamond-pattern/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	activity    *widget.ProgressBarInfinite
	zoomLabel   *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{
		statusLabel: widget.NewLabel("Ready"),
		activity:    widget.NewProgressBarInfinite(),
		zoomLabel:   widget.NewLabel("100%"),
	}
	sb.activity.Stop()
	sb.activity.Hide()

	sb.container = container.NewBorder(
		nil, nil,
		container.NewHBox(sb.statusLabel, sb.activity),
		sb.zoomLabel,
	)
	return sb
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) Update(snap state.Snapshot) {
	sb.statusLabel.SetText(StatusText(snap))
	if snap.State == models.StateProcessing {
		sb.activity.Show()
		sb.activity.Start()
	} else {
		sb.activity.Stop()
		sb.activity.Hide()
	}
}

func (sb *StatusBar) SetZoom(scale float64) {
	sb.zoomLabel.SetText(fmt.Sprintf("%.0f%%", scale*100))
}

// StatusText is the one-line state summary.
func StatusText(snap state.Snapshot) string {
	switch {
	case snap.State == models.StateProcessing:
		return "Processing..."
	case snap.LastError != nil:
		return "Error: " + snap.LastError.Error()
	case snap.Pattern != nil:
		return "Ready"
	default:
		return "Drop an image, open a file or fetch a URL"
	}
}
