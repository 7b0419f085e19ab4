package store

import (
	"context"
	"sync"
)

// MemoryKV is an in-memory KV backend for tests and ephemeral runs.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string

	// FailSet, when set, is returned by every Set call. Tests use it to
	// exercise persistence-failure paths.
	FailSet error
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get implements KV.Get.
func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", NewStoreError("get", key, ErrNotFound)
	}
	return v, nil
}

// Set implements KV.Set.
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	if m.FailSet != nil {
		return NewStoreError("set", key, m.FailSet)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Close implements KV.Close.
func (m *MemoryKV) Close() error { return nil }
