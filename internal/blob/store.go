package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store abstracts byte storage for uploaded documents. Once an upload
// completes, the pipeline reads document bytes exclusively through a Store.
type Store interface {
	// Store persists data and returns a locator for it.
	Store(ctx context.Context, name string, data []byte) (string, error)
	// Fetch returns the bytes behind a locator.
	Fetch(ctx context.Context, key string) ([]byte, error)
	// Delete removes the bytes behind a locator. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// FileStore implements Store on the local filesystem.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Store writes data under name and returns name as the locator. The name is
// flattened to its base so a crafted filename cannot escape the root.
func (s *FileStore) Store(_ context.Context, name string, data []byte) (string, error) {
	key := filepath.Base(name)
	if key == "." || key == string(filepath.Separator) {
		return "", fmt.Errorf("invalid blob name %q", name)
	}

	if err := os.WriteFile(filepath.Join(s.root, key), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	return key, nil
}

// Fetch returns the bytes behind a locator.
func (s *FileStore) Fetch(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.Base(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the bytes behind a locator.
func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.Base(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}
