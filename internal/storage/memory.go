package storage

import (
	"context"
	"sync"
)

// MemoryEngine is an in-process KVEngine. Contents are lost on exit.
type MemoryEngine struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{data: make(map[string][]byte)}
}

// Get retrieves a copy of the value stored under key.
func (e *MemoryEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil, ErrClosed
	}
	v, ok := e.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a key-value pair.
func (e *MemoryEngine) Set(ctx context.Context, key, value []byte) error {
	return e.Batch(ctx, []Mutation{{Key: key, Value: value}})
}

// Delete removes a key.
func (e *MemoryEngine) Delete(ctx context.Context, key []byte) error {
	return e.Batch(ctx, []Mutation{{Key: key, Delete: true}})
}

// Batch applies mutations under a single lock.
func (e *MemoryEngine) Batch(ctx context.Context, muts []Mutation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	for _, m := range muts {
		if m.Delete {
			delete(e.data, string(m.Key))
			continue
		}
		e.data[string(m.Key)] = append([]byte(nil), m.Value...)
	}
	return nil
}

// Close marks the engine closed.
func (e *MemoryEngine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}
