package viewport

import (
	"sync"
	"sync/atomic"
	"time"
)

// FrameSource runs a callback at the next frame boundary.
type FrameSource interface {
	RequestFrame(fn func())
}

// FrameScheduler is a single-slot redraw scheduler: at most one frame is
// pending at any time, and the frame reads state when it runs.
type FrameScheduler struct {
	source  FrameSource
	frame   func()
	pending atomic.Bool
	frames  atomic.Uint64
}

func NewFrameScheduler(source FrameSource, frame func()) *FrameScheduler {
	return &FrameScheduler{source: source, frame: frame}
}

// Schedule requests a frame. It reports false when one is already pending.
func (s *FrameScheduler) Schedule() bool {
	if !s.pending.CompareAndSwap(false, true) {
		return false
	}
	s.source.RequestFrame(s.tick)
	return true
}

func (s *FrameScheduler) tick() {
	s.pending.Store(false)
	s.frames.Add(1)
	s.frame()
}

// isPending reports whether a frame is scheduled but not yet run.
func (s *FrameScheduler) isPending() bool {
	return s.pending.Load()
}

// Frames returns how many frames have run.
func (s *FrameScheduler) Frames() uint64 {
	return s.frames.Load()
}

// TickerSource fires frames after a fixed interval, handing each one to run
// so that a UI toolkit can move it onto its own goroutine.
type TickerSource struct {
	interval time.Duration
	run      func(func())

	mu      sync.Mutex
	stopped bool
	timers  map[*time.Timer]struct{}
}

func NewTickerSource(interval time.Duration, run func(func())) *TickerSource {
	if run == nil {
		run = func(fn func()) { fn() }
	}
	return &TickerSource{
		interval: interval,
		run:      run,
		timers:   make(map[*time.Timer]struct{}),
	}
}

func (s *TickerSource) RequestFrame(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(s.interval, func() {
		s.mu.Lock()
		delete(s.timers, t)
		stopped := s.stopped
		s.mu.Unlock()
		if !stopped {
			s.run(fn)
		}
	})
	s.timers[t] = struct{}{}
}

// Stop cancels pending frames; later requests are ignored.
func (s *TickerSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for t := range s.timers {
		t.Stop()
	}
	clear(s.timers)
}

func (s *TickerSource) Shutdown() {
	s.Stop()
}
