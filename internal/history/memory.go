package history

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu     sync.Mutex
	values map[Key]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[Key]int64)}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key Key, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Close() error { return nil }
