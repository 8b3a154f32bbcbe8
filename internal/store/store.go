// Package store provides a JSON key-value store over pluggable backends
// (in-memory, file-per-key, MongoDB). The Store layer owns serialization,
// the schema-version marker and the quota eviction policy; backends only
// move bytes.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// SchemaVersion is the storage format version written under SchemaKey.
const SchemaVersion = "1.0.0"

// SchemaKey is the reserved key holding the storage format version. It is
// never evicted and survives Clear unless explicitly dropped.
const SchemaKey = "logbook:schema"

// Store is a JSON key-value store. All values pass through encoding/json on
// the way in and out.
type Store struct {
	backend Backend
}

// Open wraps the backend and ensures the schema-version marker is present
// and current, running the migration hook on a version mismatch.
func Open(ctx context.Context, backend Backend) (*Store, error) {
	s := &Store{backend: backend}

	version, err := s.Version(ctx)
	switch {
	case err == ErrNotFound:
		if err := s.setRaw(ctx, SchemaKey, SchemaVersion); err != nil {
			return nil, fmt.Errorf("failed to initialize schema version: %w", err)
		}
	case err != nil:
		return nil, err
	case version != SchemaVersion:
		if err := s.migrate(ctx, version); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// migrate upgrades stored data from an older schema version. The current
// format has a single version, so the hook only rewrites the marker.
func (s *Store) migrate(ctx context.Context, from string) error {
	log.WithFields(log.Fields{"from": from, "to": SchemaVersion}).Info("migrating store schema")
	if err := s.setRaw(ctx, SchemaKey, SchemaVersion); err != nil {
		return fmt.Errorf("failed to migrate schema version: %w", err)
	}
	return nil
}

// Version returns the stored schema version.
func (s *Store) Version(ctx context.Context) (string, error) {
	var version string
	if err := s.Get(ctx, SchemaKey, &version); err != nil {
		return "", err
	}
	return version, nil
}

// Get JSON-decodes the value stored under key into out. Returns ErrNotFound
// if the key is absent and a wrapped decode error if the stored bytes do not
// fit out.
func (s *Store) Get(ctx context.Context, key string, out interface{}) error {
	if key == "" {
		return ErrInvalidKey
	}
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode key %q: %w", key, err)
	}
	return nil
}

// Set JSON-encodes value and stores it under key. When the backend reports
// quota exhaustion, one arbitrary other key is evicted and the write retried
// once; a second failure is returned to the caller.
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	if key == "" || key == SchemaKey {
		return ErrInvalidKey
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode key %q: %w", key, err)
	}

	err = s.backend.Set(ctx, key, raw)
	if err != ErrQuotaExceeded {
		return err
	}

	victim, ok := s.pickEvictionVictim(ctx, key)
	if !ok {
		return ErrQuotaExceeded
	}
	log.WithFields(log.Fields{"victim": victim, "key": key}).Warn("store quota exceeded, evicting one key")
	if err := s.backend.Remove(ctx, victim); err != nil {
		return ErrQuotaExceeded
	}
	return s.backend.Set(ctx, key, raw)
}

// pickEvictionVictim returns some existing key other than the write target
// and the schema marker. The choice is deliberately arbitrary.
func (s *Store) pickEvictionVictim(ctx context.Context, target string) (string, bool) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return "", false
	}
	for _, k := range keys {
		if k != target && k != SchemaKey {
			return k, true
		}
	}
	return "", false
}

// Remove deletes the key. Returns ErrNotFound if it was not present.
func (s *Store) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return s.backend.Remove(ctx, key)
}

// Has reports whether key is present.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.backend.Get(ctx, key)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Keys lists every key in the store, including the schema marker.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	return s.backend.Keys(ctx)
}

// Clear removes every key. When preserveSchema is true the schema-version
// marker is kept.
func (s *Store) Clear(ctx context.Context, preserveSchema bool) error {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if preserveSchema && k == SchemaKey {
			continue
		}
		if err := s.backend.Remove(ctx, k); err != nil && err != ErrNotFound {
			return err
		}
	}
	return nil
}

// Export returns a snapshot of every key's raw JSON value.
func (s *Store) Export(ctx context.Context) (map[string]json.RawMessage, error) {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		raw, err := s.backend.Get(ctx, k)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		out[k] = json.RawMessage(raw)
	}
	return out, nil
}

// Import writes every entry of data verbatim, overwriting existing keys.
func (s *Store) Import(ctx context.Context, data map[string]json.RawMessage) error {
	for k, raw := range data {
		if k == "" {
			return ErrInvalidKey
		}
		if err := s.backend.Set(ctx, k, raw); err != nil {
			return fmt.Errorf("failed to import key %q: %w", k, err)
		}
	}
	return nil
}

// Close releases the underlying backend.
func (s *Store) Close(ctx context.Context) error {
	return s.backend.Close(ctx)
}

// setRaw stores a JSON-encoded value without the reserved-key guard, for the
// schema marker itself.
func (s *Store) setRaw(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, key, raw)
}
