package store

import "errors"

var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by a backend when a write would exceed
	// its storage quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	// ErrInvalidKey is returned for empty or reserved keys.
	ErrInvalidKey = errors.New("invalid key")
)
