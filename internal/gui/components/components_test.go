package components

import (
	"errors"
	"image/color"
	"testing"

	"diamond-pattern/internal/models"
	"diamond-pattern/internal/state"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		size, colors string
		want         models.Params
		wantErr      bool
	}{
		{"150", "25", models.Params{TargetSize: 150, ColorCount: 25}, false},
		{" 80 ", "12", models.Params{TargetSize: 80, ColorCount: 12}, false},
		{"abc", "12", models.Params{}, true},
		{"80", "", models.Params{}, true},
		{"0", "12", models.Params{TargetSize: 0, ColorCount: 12}, true},
	}

	for _, tt := range tests {
		t.Run(tt.size+"/"+tt.colors, func(t *testing.T) {
			got, err := ParseParams(tt.size, tt.colors)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrInvalidParams) {
				t.Errorf("err = %v, want ErrInvalidParams", err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int]string{
		0:       "0 B",
		1023:    "1023 B",
		1024:    "1.0 KiB",
		1536:    "1.5 KiB",
		5 << 20: "5.0 MiB",
		3 << 30: "3.0 GiB",
	}
	for n, want := range tests {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestParseHex(t *testing.T) {
	if got := ParseHex("#C6B696"); got != (color.NRGBA{R: 0xC6, G: 0xB6, B: 0x96, A: 255}) {
		t.Errorf("ParseHex = %v", got)
	}
	for _, bad := range []string{"", "C6B696", "#C6B6", "#GGGGGG"} {
		if got := ParseHex(bad); got != color.Transparent {
			t.Errorf("ParseHex(%q) = %v, want transparent", bad, got)
		}
	}
}

func TestDescriptions(t *testing.T) {
	if got := DescribeOriginal(nil); got != "No image" {
		t.Errorf("DescribeOriginal(nil) = %q", got)
	}
	src := &models.ImageSource{Name: "cat.png", Width: 300, Height: 200, Size: 2048}
	if got, want := DescribeOriginal(src), "cat.png\n300 × 200 px\n2.0 KiB"; got != want {
		t.Errorf("DescribeOriginal = %q, want %q", got, want)
	}

	p := &models.PatternResult{Width: 150, Height: 100, Colors: map[string]int{"#000000": 15000}}
	if got, want := DescribePattern(p), "150 × 100 cells\n15000 cells total\n1 colors"; got != want {
		t.Errorf("DescribePattern = %q, want %q", got, want)
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name string
		snap state.Snapshot
		want string
	}{
		{"empty", state.Snapshot{}, "Drop an image, open a file or fetch a URL"},
		{"processing", state.Snapshot{State: models.StateProcessing, LastError: errors.New("old")}, "Processing..."},
		{"failed", state.Snapshot{LastError: errors.New("fetch failure: 404")}, "Error: fetch failure: 404"},
		{"ready", state.Snapshot{Pattern: &models.PatternResult{}}, "Ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusText(tt.snap); got != tt.want {
				t.Errorf("StatusText = %q, want %q", got, tt.want)
			}
		})
	}
}
