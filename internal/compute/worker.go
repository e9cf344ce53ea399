package compute

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"diamond-pattern/internal/logger"
	"diamond-pattern/internal/models"
)

var (
	// ErrStale marks a response that was overtaken by a later request.
	ErrStale         = errors.New("response superseded by a newer request")
	ErrWorkerStopped = errors.New("compute worker stopped")
)

type Request struct {
	ID     uint64
	Data   []byte
	Params models.Params
}

type Response struct {
	ID     uint64
	Output *Output
	Err    error
}

type job struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Worker runs a Unit off the caller's goroutine. Callers stamp every request
// with an id from their own increasing sequence; only the highest id seen is
// answered with its output.
type Worker struct {
	unit   Unit
	jobs   chan job
	latest atomic.Uint64
	strict atomic.Bool
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(unit Unit, workers int, log logger.Logger) *Worker {
	if log == nil {
		log = logger.NoOp{}
	}
	ctx, cancel := context.WithCancel(context.Background())

	w := &Worker{
		unit:   unit,
		jobs:   make(chan job),
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
	w.strict.Store(true)

	for i := 0; i < max(1, workers); i++ {
		w.wg.Add(1)
		go w.run()
	}
	return w
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case j := <-w.jobs:
			j.reply <- w.execute(j)
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *Worker) execute(j job) (resp Response) {
	resp.ID = j.req.ID

	defer func() {
		if r := recover(); r != nil {
			resp.Output = nil
			resp.Err = errors.Join(models.ErrCompute, panicError{r})
		}
	}()

	out, err := w.unit.Generate(j.ctx, j.req.Data, j.req.Params)
	if latest := w.latest.Load(); latest != j.req.ID && w.strict.Load() {
		w.logger.Debug("ComputeWorker", "discarding stale response", map[string]interface{}{
			"request_id": j.req.ID,
			"latest_id":  latest,
		})
		return Response{ID: j.req.ID, Err: ErrStale}
	}

	resp.Output = out
	resp.Err = err
	return resp
}

// Submit dispatches request id and returns a channel that receives exactly
// one Response. An id lower than one already submitted is stale on arrival.
func (w *Worker) Submit(ctx context.Context, id uint64, data []byte, params models.Params) <-chan Response {
	w.observe(id)

	reply := make(chan Response, 1)
	j := job{ctx: ctx, req: Request{ID: id, Data: data, Params: params}, reply: reply}

	go func() {
		select {
		case w.jobs <- j:
		case <-ctx.Done():
			reply <- Response{ID: id, Err: ctx.Err()}
		case <-w.ctx.Done():
			reply <- Response{ID: id, Err: ErrWorkerStopped}
		}
	}()

	return reply
}

// observe raises latest to id if id is newer.
func (w *Worker) observe(id uint64) {
	for {
		cur := w.latest.Load()
		if id <= cur || w.latest.CompareAndSwap(cur, id) {
			return
		}
	}
}

// Call submits and waits for the response or for ctx to end, whichever
// comes first, so a unit that ignores cancellation cannot hang the caller.
func (w *Worker) Call(ctx context.Context, id uint64, data []byte, params models.Params) (*Output, error) {
	reply := w.Submit(ctx, id, data, params)
	select {
	case resp := <-reply:
		return resp.Output, resp.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SetDiscardStale toggles stale detection. With it off, every response is
// delivered and callers see completions in arrival order.
func (w *Worker) SetDiscardStale(discard bool) {
	w.strict.Store(discard)
}

// Latest returns the highest request id submitted so far.
func (w *Worker) Latest() uint64 {
	return w.latest.Load()
}

func (w *Worker) Shutdown() {
	w.cancel()
	w.wg.Wait()
}

type panicError struct{ v interface{} }

func (p panicError) Error() string {
	return "compute unit panicked: " + errorString(p.v)
}

func errorString(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return "unknown panic"
}
