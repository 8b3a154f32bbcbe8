package store

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), NewMemoryBackend(0))
	require.NoError(t, err)
	return s
}

func TestOpen_InitializesSchemaVersion(t *testing.T) {
	s := newTestStore(t)

	version, err := s.Version(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestOpen_MigratesOldSchemaVersion(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(0)
	require.NoError(t, backend.Set(ctx, SchemaKey, []byte(`"0.9.0"`)))

	s, err := Open(ctx, backend)
	require.NoError(t, err)

	version, err := s.Version(ctx)
	assert.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestStore_SetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, s.Set(ctx, "k", payload{Name: "oil filter", Count: 3}))

	var got payload
	require.NoError(t, s.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "oil filter", Count: 3}, got)
}

func TestStore_GetMissingKey(t *testing.T) {
	s := newTestStore(t)

	var out string
	err := s.Get(context.Background(), "missing", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetUndecodableValue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Set(ctx, "k", "a string"))

	var out int
	err := s.Get(ctx, "k", &out)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStore_HasAndRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Set(ctx, "k", 1))

	has, err := s.Has(ctx, "k")
	assert.NoError(t, err)
	assert.True(t, has)

	assert.NoError(t, s.Remove(ctx, "k"))
	has, err = s.Has(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, has)

	assert.ErrorIs(t, s.Remove(ctx, "k"), ErrNotFound)
}

func TestStore_RejectsReservedAndEmptyKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	assert.ErrorIs(t, s.Set(ctx, "", 1), ErrInvalidKey)
	assert.ErrorIs(t, s.Set(ctx, SchemaKey, "2.0.0"), ErrInvalidKey)

	var out string
	assert.ErrorIs(t, s.Get(ctx, "", &out), ErrInvalidKey)
}

func TestStore_ClearPreservesSchema(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Set(ctx, "a", 1))
	require.NoError(t, s.Set(ctx, "b", 2))

	require.NoError(t, s.Clear(ctx, true))

	keys, err := s.Keys(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{SchemaKey}, keys)

	require.NoError(t, s.Clear(ctx, false))
	keys, err = s.Keys(ctx)
	assert.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Set(ctx, "a", map[string]int{"x": 1}))
	require.NoError(t, s.Set(ctx, "b", []string{"first", "second"}))

	exported, err := s.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, exported, 3) // a, b and the schema marker

	dst := newTestStore(t)
	require.NoError(t, dst.Import(ctx, exported))

	var got map[string]int
	require.NoError(t, dst.Get(ctx, "a", &got))
	assert.Equal(t, map[string]int{"x": 1}, got)
}

func TestStore_QuotaEvictsOneKeyAndRetries(t *testing.T) {
	ctx := context.Background()
	// Schema marker uses 21 bytes; each 30-char value stored under a
	// 1-char key uses 33, so two of them cannot coexist under 64.
	s, err := Open(ctx, NewMemoryBackend(64))
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "a", strings.Repeat("x", 30)))
	require.NoError(t, s.Set(ctx, "b", strings.Repeat("y", 30)))

	hasA, err := s.Has(ctx, "a")
	require.NoError(t, err)
	assert.False(t, hasA, "expected a to be evicted")

	hasB, err := s.Has(ctx, "b")
	require.NoError(t, err)
	assert.True(t, hasB)

	version, err := s.Version(ctx)
	assert.NoError(t, err)
	assert.Equal(t, SchemaVersion, version, "schema marker must never be evicted")
}

func TestStore_QuotaFailsAfterSingleRetry(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, NewMemoryBackend(64))
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "a", strings.Repeat("x", 30)))

	// Even with "a" evicted this value cannot fit next to the schema marker.
	err = s.Set(ctx, "big", strings.Repeat("z", 60))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestStore_ImportRawValues(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Import(ctx, map[string]json.RawMessage{"k": json.RawMessage(`{"n":7}`)})
	require.NoError(t, err)

	var got struct {
		N int `json:"n"`
	}
	require.NoError(t, s.Get(ctx, "k", &got))
	assert.Equal(t, 7, got.N)
}
