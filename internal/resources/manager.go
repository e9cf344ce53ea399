// Package resources leases temporary in-memory URIs for blobs that are on
// screen and guarantees each lease is released exactly once.
package resources

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"diamond-pattern/internal/logger"

	"fyne.io/fyne/v2"
	"github.com/google/uuid"
)

var (
	ErrReleased      = errors.New("display handle already released")
	ErrUnknownHandle = errors.New("display handle not issued by this manager")
)

// Handle is a lease on a blob-to-URI mapping.
type Handle struct {
	ID        string
	Name      string
	URI       string
	CreatedAt time.Time

	owner    *Manager
	resource fyne.Resource
}

// Resource exposes the leased blob to fyne widgets.
func (h *Handle) Resource() fyne.Resource {
	return h.resource
}

// Bytes returns the leased blob.
func (h *Handle) Bytes() []byte {
	return h.resource.Content()
}

type allocationRecord struct {
	handle *Handle
	size   int64
}

type Stats struct {
	Acquired  int64
	Released  int64
	Active    int64
	LiveBytes int64
}

type Manager struct {
	mu          sync.RWMutex
	allocations map[string]*allocationRecord
	byURI       map[string]string
	stats       Stats
	logger      logger.Logger
}

func NewManager(log logger.Logger) *Manager {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Manager{
		allocations: make(map[string]*allocationRecord),
		byURI:       make(map[string]string),
		logger:      log,
	}
}

// Acquire registers blob under a fresh mem:// URI.
func (m *Manager) Acquire(name string, blob []byte) *Handle {
	id := uuid.NewString()
	h := &Handle{
		ID:        id,
		Name:      name,
		URI:       fmt.Sprintf("mem://%s/%s", id, name),
		CreatedAt: time.Now(),
		owner:     m,
		resource:  fyne.NewStaticResource(name, blob),
	}

	m.mu.Lock()
	m.allocations[id] = &allocationRecord{handle: h, size: int64(len(blob))}
	m.byURI[h.URI] = id
	m.stats.Acquired++
	m.stats.Active++
	m.stats.LiveBytes += int64(len(blob))
	m.mu.Unlock()

	m.logger.Debug("ResourceManager", "handle acquired", map[string]interface{}{
		"uri":  h.URI,
		"size": len(blob),
	})
	return h
}

// Release revokes h. A second release of the same handle returns ErrReleased.
func (m *Manager) Release(h *Handle) error {
	if h == nil {
		return nil
	}
	if h.owner != m {
		return ErrUnknownHandle
	}

	m.mu.Lock()
	record, exists := m.allocations[h.ID]
	if !exists {
		m.mu.Unlock()
		m.logger.Warning("ResourceManager", "attempting to release revoked handle", map[string]interface{}{
			"uri": h.URI,
		})
		return ErrReleased
	}
	delete(m.allocations, h.ID)
	delete(m.byURI, h.URI)
	m.stats.Released++
	m.stats.Active--
	m.stats.LiveBytes -= record.size
	m.mu.Unlock()

	m.logger.Debug("ResourceManager", "handle released", map[string]interface{}{
		"uri": h.URI,
	})
	return nil
}

// Lookup resolves a live URI back to its blob.
func (m *Manager) Lookup(uri string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byURI[uri]
	if !ok {
		return nil, false
	}
	return m.allocations[id].handle.Bytes(), true
}

// Outstanding returns the number of unreleased handles.
func (m *Manager) Outstanding() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.allocations)
}

func (m *Manager) GetStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Cleanup releases every outstanding handle.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	count := len(m.allocations)
	for id, record := range m.allocations {
		delete(m.byURI, record.handle.URI)
		delete(m.allocations, id)
		m.stats.Released++
		m.stats.Active--
		m.stats.LiveBytes -= record.size
	}
	m.mu.Unlock()

	if count > 0 {
		m.logger.Warning("ResourceManager", "released leaked handles", map[string]interface{}{
			"count": count,
		})
	}
}

func (m *Manager) Shutdown() {
	m.Cleanup()
}
