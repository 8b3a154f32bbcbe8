package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileBackend(t.TempDir(), 0)
	require.NoError(t, err)

	require.NoError(t, backend.Set(ctx, "logbook:vehicles", []byte(`[1,2]`)))

	got, err := backend.Get(ctx, "logbook:vehicles")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2]`), got)

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"logbook:vehicles"}, keys)

	require.NoError(t, backend.Remove(ctx, "logbook:vehicles"))
	_, err = backend.Get(ctx, "logbook:vehicles")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, backend.Remove(ctx, "logbook:vehicles"), ErrNotFound)
}

func TestFileBackend_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	backend, err := NewFileBackend(dir, 0)
	require.NoError(t, err)
	require.NoError(t, backend.Set(ctx, "k", []byte(`"v"`)))
	require.NoError(t, backend.Close(ctx))

	reopened, err := NewFileBackend(dir, 0)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`"v"`), got)
}

func TestFileBackend_Quota(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileBackend(t.TempDir(), 10)
	require.NoError(t, err)

	require.NoError(t, backend.Set(ctx, "a", []byte(`12345`)))
	assert.ErrorIs(t, backend.Set(ctx, "b", []byte(`1234567`)), ErrQuotaExceeded)

	// Overwriting an existing key only counts the size difference.
	require.NoError(t, backend.Set(ctx, "a", []byte(`1234567890`)))
}

func TestFileBackend_IgnoresForeignFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	backend, err := NewFileBackend(dir, 0)
	require.NoError(t, err)
	require.NoError(t, backend.Set(ctx, "k", []byte(`1`)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "not-base64!.kv"), []byte("junk"), 0o644))

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)
}
