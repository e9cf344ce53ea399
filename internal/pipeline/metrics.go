package pipeline

import (
	"sync"
	"time"
)

const (
	stageResolve = "resolve"
	stageCompute = "compute"
	stageTotal   = "total"
)

// Stats summarizes the outcomes of past requests.
type Stats struct {
	Requests   int64
	Succeeded  int64
	Failed     int64
	Superseded int64
	// Average duration per stage: resolve, compute and total.
	Average map[string]time.Duration
}

type stageTiming struct {
	total time.Duration
	count int64
}

type metrics struct {
	mu     sync.Mutex
	stats  Stats
	stages map[string]*stageTiming
}

func newMetrics() *metrics {
	return &metrics{stages: make(map[string]*stageTiming)}
}

func (m *metrics) observe(stage string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.stages[stage]
	if t == nil {
		t = &stageTiming{}
		m.stages[stage] = t
	}
	t.total += d
	t.count++
}

func (m *metrics) count(field *int64) {
	m.mu.Lock()
	*field++
	m.mu.Unlock()
}

func (m *metrics) snapshot() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Average = make(map[string]time.Duration, len(m.stages))
	for stage, t := range m.stages {
		s.Average[stage] = t.total / time.Duration(t.count)
	}
	return s
}
