package pipeline

import (
	"context"

	"diamond-pattern/internal/compute"
	"diamond-pattern/internal/models"
	"diamond-pattern/internal/source"
)

// Resolver turns a source reference into bytes.
type Resolver interface {
	Resolve(ctx context.Context, s source.Source) (*models.ImageSource, error)
}

// Dispatcher runs the compute unit off the caller's goroutine. id orders
// requests: a response whose id has been overtaken reports compute.ErrStale.
type Dispatcher interface {
	Call(ctx context.Context, id uint64, data []byte, params models.Params) (*compute.Output, error)
	SetDiscardStale(discard bool)
}
