package store

import "context"

// Backend is the raw key-value medium underneath the Store. Values are
// opaque byte slices; JSON encoding is handled a level up.
type Backend interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes the value for key, overwriting any previous value.
	// Returns ErrQuotaExceeded when the write would exceed the medium's
	// capacity.
	Set(ctx context.Context, key string, value []byte) error
	// Remove deletes the key, or returns ErrNotFound.
	Remove(ctx context.Context, key string) error
	// Keys lists all keys currently present.
	Keys(ctx context.Context) ([]string, error)
	// Close releases any resources held by the backend.
	Close(ctx context.Context) error
}
