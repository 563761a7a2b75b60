package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu    sync.RWMutex
	trees map[string][]Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{trees: make(map[string][]Record)}
}

func (m *Memory) Save(_ context.Context, name string, records []Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(records) == 0 {
		delete(m.trees, name)
		return nil
	}
	m.trees[name] = slices.Clone(records)
	return nil
}

func (m *Memory) Load(_ context.Context, name string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records, ok := m.trees[name]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(records), nil
}

func (m *Memory) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trees[name]; !ok {
		return ErrNotFound
	}
	delete(m.trees, name)
	return nil
}

func (m *Memory) List(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.trees)), nil
}

func (m *Memory) Close(context.Context) error { return nil }

var _ Store = (*Memory)(nil)
