package models

import (
	"errors"
	"testing"
)

func TestPatternResultValidate(t *testing.T) {
	tests := []struct {
		name    string
		result  PatternResult
		wantErr bool
	}{
		{
			name: "consistent",
			result: PatternResult{
				Width: 2, Height: 2,
				Colors: map[string]int{"#000000": 3, "#FFFFFF": 1},
				Pixels: make([]byte, 16),
			},
		},
		{
			name: "histogram short",
			result: PatternResult{
				Width: 2, Height: 2,
				Colors: map[string]int{"#000000": 3},
				Pixels: make([]byte, 16),
			},
			wantErr: true,
		},
		{
			name: "buffer mismatch",
			result: PatternResult{
				Width: 2, Height: 1,
				Colors: map[string]int{"#000000": 2},
				Pixels: make([]byte, 4),
			},
			wantErr: true,
		},
		{
			name:    "empty",
			result:  PatternResult{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}

	err := Params{TargetSize: 0, ColorCount: 4}.Validate()
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}

	err = Params{TargetSize: 10, ColorCount: -1}.Validate()
	if !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestProcessingStateString(t *testing.T) {
	if StateProcessing.String() != "processing" {
		t.Errorf("got %q", StateProcessing.String())
	}
	if ProcessingState(42).String() != "state(42)" {
		t.Errorf("got %q", ProcessingState(42).String())
	}
}

func TestImageSourceDimensions(t *testing.T) {
	src := NewImageSource("photo.png", []byte{1, 2, 3})
	if src.Size != 3 {
		t.Errorf("Size = %d", src.Size)
	}
	if src.HasDimensions() {
		t.Error("fresh source should have no dimensions")
	}
	src.Width, src.Height = 4, 3
	if !src.HasDimensions() {
		t.Error("expected dimensions")
	}
}
