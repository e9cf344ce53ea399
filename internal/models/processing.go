package models

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Pipeline errors wrap one of these.
var (
	ErrFetch         = errors.New("fetch failure")
	ErrDecode        = errors.New("decode failure")
	ErrCompute       = errors.New("compute failure")
	ErrInvalidParams = errors.New("invalid processing parameters")
)

// ProcessingState is the pipeline state machine position.
type ProcessingState int

const (
	StateIdle ProcessingState = iota
	StateProcessing
	StateSucceeded
	StateFailed
)

func (s ProcessingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProcessing:
		return "processing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Params are the per-request generation settings.
type Params struct {
	// TargetSize is the grid width in cells.
	TargetSize int `yaml:"size"`
	// ColorCount is the palette size.
	ColorCount int `yaml:"colors"`
}

// DefaultParams mirrors the settings panel defaults.
func DefaultParams() Params {
	return Params{TargetSize: 150, ColorCount: 25}
}

func (p Params) Validate() error {
	if p.TargetSize <= 0 {
		return fmt.Errorf("%w: size must be positive, got %d", ErrInvalidParams, p.TargetSize)
	}
	if p.ColorCount <= 0 {
		return fmt.Errorf("%w: colors must be positive, got %d", ErrInvalidParams, p.ColorCount)
	}
	return nil
}
