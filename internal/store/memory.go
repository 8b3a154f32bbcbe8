package store

import (
	"context"
	"sync"
)

// MemoryBackend is an in-memory Backend with an optional byte quota. It is
// the default medium for tests and for ephemeral runs.
type MemoryBackend struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int64 // 0 means unlimited
	used  int64
}

// NewMemoryBackend creates an in-memory backend. quota is the maximum total
// size in bytes of all keys and values; 0 disables the limit.
func NewMemoryBackend(quota int64) *MemoryBackend {
	return &MemoryBackend{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	value, ok := b.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.used + entrySize(key, value)
	if prev, ok := b.data[key]; ok {
		next -= entrySize(key, prev)
	}
	if b.quota > 0 && next > b.quota {
		return ErrQuotaExceeded
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	b.data[key] = stored
	b.used = next
	return nil
}

func (b *MemoryBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, ok := b.data[key]
	if !ok {
		return ErrNotFound
	}
	b.used -= entrySize(key, value)
	delete(b.data, key)
	return nil
}

func (b *MemoryBackend) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (b *MemoryBackend) Close(_ context.Context) error {
	return nil
}

func entrySize(key string, value []byte) int64 {
	return int64(len(key) + len(value))
}
