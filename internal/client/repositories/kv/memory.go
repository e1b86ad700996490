package kv

import (
	"context"
	"sync"
)

// MemoryRepository keeps key/value pairs in process memory. It backs the
// ephemeral storage tier: values live for a single run and vanish on exit.
type MemoryRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{values: make(map[string]string)}
}

func (r *MemoryRepository) Get(_ context.Context, key string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[key], nil
}

func (r *MemoryRepository) Set(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = make(map[string]string)
	return nil
}
