package resources

import "sync"

// Slot holds the single handle currently displayed for one kind of blob.
// Replacing the blob publishes the new handle before revoking the old one,
// so the displayed handle is never a revoked one.
type Slot struct {
	mu      sync.Mutex
	manager *Manager
	current *Handle
}

func NewSlot(m *Manager) *Slot {
	return &Slot{manager: m}
}

// Replace leases blob and makes it current. publish, if set, sees the new
// handle before the superseded one is released.
func (s *Slot) Replace(name string, blob []byte, publish func(*Handle)) *Handle {
	next := s.manager.Acquire(name, blob)

	s.mu.Lock()
	prev := s.current
	s.current = next
	s.mu.Unlock()

	if publish != nil {
		publish(next)
	}
	if prev != nil {
		_ = s.manager.Release(prev)
	}
	return next
}

// held returns the displayed handle, or nil.
func (s *Slot) held() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Clear releases the current handle, if any.
func (s *Slot) Clear() {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	s.mu.Unlock()

	if prev != nil {
		_ = s.manager.Release(prev)
	}
}
