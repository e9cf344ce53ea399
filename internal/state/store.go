// Package state holds the application data shared between the pipeline,
// the viewport and the presentation layer.
package state

import (
	"sort"
	"sync"

	"diamond-pattern/internal/models"
	"diamond-pattern/internal/resources"
)

// Snapshot is an immutable copy of the store contents.
type Snapshot struct {
	Original  *models.ImageSource
	Pattern   *models.PatternResult
	State     models.ProcessingState
	LastError error
	Params    models.Params

	// OriginalURI and PatternURI name the display handles currently shown.
	OriginalURI string
	PatternURI  string
}

// Listener receives the store contents after every change. Listeners run
// outside the store lock, one at a time, and must not write to the store.
type Listener func(Snapshot)

// Store is the single mutable surface. The pipeline is its only writer.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot

	notifyMu  sync.Mutex
	listeners map[int]Listener
	nextID    int
}

func NewStore(params models.Params) *Store {
	return &Store{
		snap:      Snapshot{Params: params},
		listeners: make(map[int]Listener),
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers l and returns a function removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.notifyMu.Lock()
		delete(s.listeners, id)
		s.notifyMu.Unlock()
	}
}

func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	snap := s.snap
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s.listeners[id](snap)
	}
}

func (s *Store) SetState(st models.ProcessingState) {
	s.update(func(snap *Snapshot) { snap.State = st })
}

// Fail records err and moves to Failed.
func (s *Store) Fail(err error) {
	s.update(func(snap *Snapshot) {
		snap.State = models.StateFailed
		snap.LastError = err
	})
}

// Begin moves to Processing and clears the previous error.
func (s *Store) Begin(params models.Params) {
	s.update(func(snap *Snapshot) {
		snap.State = models.StateProcessing
		snap.LastError = nil
		snap.Params = params
	})
}

func (s *Store) SetOriginal(src *models.ImageSource, h *resources.Handle) {
	s.update(func(snap *Snapshot) {
		snap.Original = src
		snap.OriginalURI = uriOf(h)
	})
}

func (s *Store) SetPattern(p *models.PatternResult, h *resources.Handle) {
	s.update(func(snap *Snapshot) {
		snap.Pattern = p
		snap.PatternURI = uriOf(h)
	})
}

// Clear drops the image data and returns to Idle, keeping the params.
func (s *Store) Clear() {
	s.update(func(snap *Snapshot) {
		*snap = Snapshot{Params: snap.Params}
	})
}

// ColorCount is one histogram entry.
type ColorCount struct {
	Key   string
	Count int
}

// Colors returns the pattern histogram sorted by descending count, then key.
func (snap Snapshot) Colors() []ColorCount {
	if snap.Pattern == nil {
		return nil
	}
	out := make([]ColorCount, 0, len(snap.Pattern.Colors))
	for k, v := range snap.Pattern.Colors {
		out = append(out, ColorCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func uriOf(h *resources.Handle) string {
	if h == nil {
		return ""
	}
	return h.URI
}
