// Package repository provides the durable snapshot store backing the
// debate service.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Medium is a durable key to string mapping, addressable by logical
// collection key, surviving restarts. It is the only thing the Store
// assumes about its storage; swapping in a real database means
// implementing these three methods.
type Medium interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set replaces the value under key.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// FileMedium implements Medium with one file per key under a directory.
type FileMedium struct {
	dir string
}

// NewFileMedium creates the backing directory if needed.
func NewFileMedium(dir string) (*FileMedium, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: empty data directory", ErrMedium)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %w", ErrMedium, err)
	}
	return &FileMedium{dir: dir}, nil
}

// Get reads the file for key. A missing file means the key was never set.
func (m *FileMedium) Get(_ context.Context, key string) (string, bool, error) {
	raw, err := os.ReadFile(m.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: read %s: %w", ErrMedium, key, err)
	}
	return string(raw), true, nil
}

// Set writes the value via a temp file and rename so a crash mid-write
// never leaves a half-written snapshot behind.
func (m *FileMedium) Set(_ context.Context, key, value string) error {
	path := m.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrMedium, key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: commit %s: %w", ErrMedium, key, err)
	}
	return nil
}

// Delete removes the file for key.
func (m *FileMedium) Delete(_ context.Context, key string) error {
	if err := os.Remove(m.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: delete %s: %w", ErrMedium, key, err)
	}
	return nil
}

func (m *FileMedium) path(key string) string {
	return filepath.Join(m.dir, key+".json")
}
