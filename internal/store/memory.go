package store

import (
	"context"
	"sync"
)

// Memory is the in-process store. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	enabled map[int64]bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{enabled: make(map[int64]bool)}
}

func (m *Memory) Enable(_ context.Context, groupID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled[groupID] = true
	return nil
}

func (m *Memory) Disable(_ context.Context, groupID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.enabled, groupID)
	return nil
}

func (m *Memory) Enabled(_ context.Context, groupID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled[groupID], nil
}

func (m *Memory) ListEnabled(_ context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int64, 0, len(m.enabled))
	for id := range m.enabled {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) Close() error { return nil }
