// Package storage keeps raw upload blobs on a filesystem abstraction so the
// same code path serves local disk in production and memory in tests.
package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/spf13/afero"

	"github.com/imanolz/gravelpass/internal/core/domain"
)

// Store implements ports.ObjectStore over an afero filesystem.
type Store struct {
	fs afero.Fs
}

// NewLocal returns a Store rooted at dir on the OS filesystem. The root is
// created if it does not exist.
func NewLocal(dir string) (*Store, error) {
	base := afero.NewOsFs()
	if err := base.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{fs: afero.NewBasePathFs(base, dir)}, nil
}

// NewMemory returns a Store backed by an in-memory filesystem.
func NewMemory() *Store {
	return &Store{fs: afero.NewMemMapFs()}
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := path.Dir(key); dir != "." && dir != "/" {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create blob dir %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(s.fs, key, data, 0o644); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exists, err := afero.Exists(s.fs, key)
	if err != nil {
		return nil, fmt.Errorf("stat blob %s: %w", key, err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}
	data, err := afero.ReadFile(s.fs, key)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(key); err != nil {
		exists, statErr := afero.Exists(s.fs, key)
		if statErr == nil && !exists {
			return nil
		}
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
