package compute

import (
	"context"
	"errors"
	"testing"
	"time"

	"diamond-pattern/internal/models"
)

// gatedUnit blocks each request until its gate (keyed by TargetSize) is opened.
type gatedUnit struct {
	gates map[int]chan struct{}
}

func (u *gatedUnit) Generate(ctx context.Context, data []byte, p models.Params) (*Output, error) {
	select {
	case <-u.gates[p.TargetSize]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Output{Width: p.TargetSize, Height: 1}, nil
}

func TestWorkerDiscardsStaleResponse(t *testing.T) {
	unit := &gatedUnit{gates: map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}}
	w := NewWorker(unit, 2, nil)
	defer w.Shutdown()

	ctx := context.Background()
	const firstID, secondID = 1, 2
	first := w.Submit(ctx, firstID, nil, models.Params{TargetSize: 1, ColorCount: 1})
	second := w.Submit(ctx, secondID, nil, models.Params{TargetSize: 2, ColorCount: 1})

	if w.Latest() != secondID {
		t.Errorf("Latest = %d, want %d", w.Latest(), secondID)
	}

	// The newer request finishes first, the older one afterwards.
	close(unit.gates[2])
	resp := <-second
	if resp.Err != nil || resp.Output == nil || resp.Output.Width != 2 {
		t.Fatalf("latest response = %+v", resp)
	}

	close(unit.gates[1])
	resp = <-first
	if !errors.Is(resp.Err, ErrStale) || resp.Output != nil {
		t.Errorf("superseded response = %+v, want ErrStale", resp)
	}
	if resp.ID != firstID {
		t.Errorf("response id = %d, want %d", resp.ID, firstID)
	}
}

func TestWorkerOrdersByCallerID(t *testing.T) {
	unit := &gatedUnit{gates: map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}}
	w := NewWorker(unit, 2, nil)
	defer w.Shutdown()

	// The newer request reaches the worker before the older one.
	newer := w.Submit(context.Background(), 7, nil, models.Params{TargetSize: 2, ColorCount: 1})
	older := w.Submit(context.Background(), 6, nil, models.Params{TargetSize: 1, ColorCount: 1})

	if got := w.Latest(); got != 7 {
		t.Fatalf("Latest = %d, want 7", got)
	}

	close(unit.gates[1])
	close(unit.gates[2])

	if r := <-newer; r.Err != nil || r.Output == nil || r.Output.Width != 2 {
		t.Errorf("newer = %+v, want its output", r)
	}
	if r := <-older; !errors.Is(r.Err, ErrStale) {
		t.Errorf("older = %+v, want ErrStale", r)
	}
}

func TestWorkerDeliversEverythingWhenNotStrict(t *testing.T) {
	unit := &gatedUnit{gates: map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}}
	w := NewWorker(unit, 2, nil)
	defer w.Shutdown()
	w.SetDiscardStale(false)

	first := w.Submit(context.Background(), 1, nil, models.Params{TargetSize: 1, ColorCount: 1})
	second := w.Submit(context.Background(), 2, nil, models.Params{TargetSize: 2, ColorCount: 1})

	close(unit.gates[2])
	close(unit.gates[1])

	if r := <-first; r.Err != nil || r.Output.Width != 1 {
		t.Errorf("first = %+v", r)
	}
	if r := <-second; r.Err != nil || r.Output.Width != 2 {
		t.Errorf("second = %+v", r)
	}
}

func TestWorkerCallTimesOutOnHungUnit(t *testing.T) {
	release := make(chan struct{})
	hung := UnitFunc(func(ctx context.Context, data []byte, p models.Params) (*Output, error) {
		<-release
		return nil, nil
	})
	w := NewWorker(hung, 1, nil)
	t.Cleanup(func() {
		close(release)
		w.Shutdown()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	out, err := w.Call(ctx, 1, nil, models.DefaultParams())
	if !errors.Is(err, context.DeadlineExceeded) || out != nil {
		t.Errorf("Call = %v, %v; want deadline exceeded", out, err)
	}
}

func TestWorkerRecoversPanics(t *testing.T) {
	boom := UnitFunc(func(ctx context.Context, data []byte, p models.Params) (*Output, error) {
		panic("bad pixels")
	})
	w := NewWorker(boom, 1, nil)
	defer w.Shutdown()

	_, err := w.Call(context.Background(), 1, nil, models.DefaultParams())
	if !errors.Is(err, models.ErrCompute) {
		t.Errorf("got %v, want ErrCompute", err)
	}
}

func TestWorkerStopped(t *testing.T) {
	w := NewWorker(UnitFunc(func(ctx context.Context, data []byte, p models.Params) (*Output, error) {
		return &Output{}, nil
	}), 1, nil)
	w.Shutdown()

	_, err := w.Call(context.Background(), 1, nil, models.DefaultParams())
	if !errors.Is(err, ErrWorkerStopped) {
		t.Errorf("got %v, want ErrWorkerStopped", err)
	}
}
