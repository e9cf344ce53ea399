package components

import (
	"fmt"
	"image/color"
	"strconv"

	"diamond-pattern/internal/models"
	"diamond-pattern/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// InfoPanel summarises the original image and the pattern.
type InfoPanel struct {
	container     *fyne.Container
	originalLabel *widget.Label
	patternLabel  *widget.Label
	colorsBox     *fyne.Container
}

func NewInfoPanel() *InfoPanel {
	ip := &InfoPanel{
		originalLabel: widget.NewLabel("No image"),
		patternLabel:  widget.NewLabel("No pattern"),
		colorsBox:     container.NewVBox(),
	}

	ip.container = container.NewVBox(
		widget.NewLabelWithStyle("Original", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ip.originalLabel,
		widget.NewLabelWithStyle("Pattern", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ip.patternLabel,
		widget.NewLabelWithStyle("Colors", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ip.colorsBox,
	)
	return ip
}

func (ip *InfoPanel) GetContainer() *fyne.Container {
	return ip.container
}

// Update must run on the fyne goroutine.
func (ip *InfoPanel) Update(snap state.Snapshot) {
	ip.originalLabel.SetText(DescribeOriginal(snap.Original))
	ip.patternLabel.SetText(DescribePattern(snap.Pattern))

	ip.colorsBox.RemoveAll()
	for _, c := range snap.Colors() {
		swatch := canvas.NewRectangle(ParseHex(c.Key))
		swatch.SetMinSize(fyne.NewSize(16, 16))
		ip.colorsBox.Add(container.NewHBox(
			swatch,
			widget.NewLabel(c.Key),
			widget.NewLabel(strconv.Itoa(c.Count)),
		))
	}
	ip.colorsBox.Refresh()
}

func DescribeOriginal(src *models.ImageSource) string {
	if src == nil {
		return "No image"
	}
	return fmt.Sprintf("%s\n%d × %d px\n%s", src.Name, src.Width, src.Height, FormatBytes(src.Size))
}

func DescribePattern(p *models.PatternResult) string {
	if p == nil {
		return "No pattern"
	}
	return fmt.Sprintf("%d × %d cells\n%d cells total\n%d colors", p.Width, p.Height, p.CellCount(), len(p.Colors))
}

// FormatBytes renders n with a binary unit.
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGT"[exp])
}

// ParseHex reads a #RRGGBB key. Malformed keys yield transparent.
func ParseHex(key string) color.Color {
	var r, g, b uint8
	if len(key) != 7 || key[0] != '#' {
		return color.Transparent
	}
	if _, err := fmt.Sscanf(key[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Transparent
	}
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
