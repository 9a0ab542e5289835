package policystore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Backend persists chunks for a Store.
// Implementations must be thread-safe.
type Backend interface {
	// Name identifies the backend in errors and logs.
	Name() string

	// EnsureCollection creates the collection or verifies that an existing
	// one was created with the same dimensionality.
	EnsureCollection(ctx context.Context, collection string, dims int) error

	// LoadAll returns every chunk of the collection ordered by Seq.
	LoadAll(ctx context.Context, collection string) ([]StoredChunk, error)

	// Put inserts or replaces the chunks atomically. Seq and CreatedAt of
	// an existing row are left unchanged. Put must not return before the
	// write is durable.
	Put(ctx context.Context, collection string, chunks []StoredChunk) error

	// Delete removes the chunks with the given IDs atomically and returns
	// how many existed.
	Delete(ctx context.Context, collection string, ids []string) (int, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}

// MemoryBackend keeps chunks in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	closed      bool
}

type memoryCollection struct {
	dims   int
	chunks map[string]StoredChunk
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		collections: make(map[string]*memoryCollection),
	}
}

// Name implements Backend.
func (m *MemoryBackend) Name() string {
	return "memory"
}

// EnsureCollection implements Backend.
func (m *MemoryBackend) EnsureCollection(ctx context.Context, collection string, dims int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if c, ok := m.collections[collection]; ok {
		if c.dims != dims {
			return fmt.Errorf("%w: collection %q has %d dimensions, embedder has %d", errDimension, collection, c.dims, dims)
		}
		return nil
	}
	m.collections[collection] = &memoryCollection{
		dims:   dims,
		chunks: make(map[string]StoredChunk),
	}
	return nil
}

// LoadAll implements Backend.
func (m *MemoryBackend) LoadAll(ctx context.Context, collection string) ([]StoredChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	c, ok := m.collections[collection]
	if !ok {
		return nil, nil
	}

	out := make([]StoredChunk, 0, len(c.chunks))
	for _, sc := range c.chunks {
		out = append(out, StoredChunk{Chunk: sc.clone(), Seq: sc.Seq})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Put implements Backend.
func (m *MemoryBackend) Put(ctx context.Context, collection string, chunks []StoredChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	c, ok := m.collections[collection]
	if !ok {
		return fmt.Errorf("collection %q does not exist", collection)
	}

	for _, sc := range chunks {
		if prev, ok := c.chunks[sc.ID]; ok {
			sc.Seq = prev.Seq
			sc.CreatedAt = prev.CreatedAt
		}
		c.chunks[sc.ID] = StoredChunk{Chunk: sc.clone(), Seq: sc.Seq}
	}
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(ctx context.Context, collection string, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	c, ok := m.collections[collection]
	if !ok {
		return 0, nil
	}

	removed := 0
	for _, id := range ids {
		if _, ok := c.chunks[id]; ok {
			delete(c.chunks, id)
			removed++
		}
	}
	return removed, nil
}

// Ping implements Backend.
func (m *MemoryBackend) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
