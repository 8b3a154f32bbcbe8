package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const fileExt = ".kv"

// FileBackend persists each key as one file under a directory. Keys are
// encoded into file names, so any key string is accepted.
type FileBackend struct {
	mu    sync.Mutex
	dir   string
	quota int64 // 0 means unlimited
}

// NewFileBackend creates a file-backed store rooted at dir, creating the
// directory if needed. quota is the maximum total size in bytes of all
// stored values; 0 disables the limit.
func NewFileBackend(dir string, quota int64) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileBackend{dir: dir, quota: quota}, nil
}

func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, err := os.ReadFile(b.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.quota > 0 {
		used, err := b.usedBytes()
		if err != nil {
			return err
		}
		next := used + int64(len(value))
		if prev, err := os.Stat(b.path(key)); err == nil {
			next -= prev.Size()
		}
		if next > b.quota {
			return ErrQuotaExceeded
		}
	}

	// Write-then-rename so a crash never leaves a half-written value.
	tmp := b.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	if err := os.Rename(tmp, b.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.Remove(b.path(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to remove key %q: %w", key, err)
	}
	return nil
}

func (b *FileBackend) Keys(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list store directory: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) {
			continue
		}
		decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimSuffix(name, fileExt))
		if err != nil {
			continue // not one of ours
		}
		keys = append(keys, string(decoded))
	}
	return keys, nil
}

func (b *FileBackend) Close(_ context.Context) error {
	return nil
}

func (b *FileBackend) path(key string) string {
	name := base64.RawURLEncoding.EncodeToString([]byte(key)) + fileExt
	return filepath.Join(b.dir, name)
}

func (b *FileBackend) usedBytes() (int64, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to list store directory: %w", err)
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
