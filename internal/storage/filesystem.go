package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/and161185/pocketfile/internal/errs"
)

// FileSystem stores objects as files directly under root.
type FileSystem struct {
	root string
}

var _ Store = (*FileSystem)(nil)

// NewFileSystem creates the root directory if needed.
func NewFileSystem(root string) (*FileSystem, error) {
	if root == "" {
		return nil, fmt.Errorf("filesystem store requires a root directory")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &FileSystem{root: root}, nil
}

// Root returns the directory objects are stored in.
func (s *FileSystem) Root() string { return s.root }

// Put writes r to a temp file in root and renames it into place.
// Existing objects are never overwritten.
func (s *FileSystem) Put(_ context.Context, name string, r io.Reader) (int64, error) {
	if !ValidName(name) {
		return 0, ErrInvalidName
	}
	dest := filepath.Join(s.root, name)
	if _, err := os.Lstat(dest); err == nil {
		return 0, fmt.Errorf("object %q already exists", name)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return 0, fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return written, nil
}

// Open opens the stored file for reading.
func (s *FileSystem) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, errs.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes the stored file, tolerating a file that is already gone.
func (s *FileSystem) Delete(_ context.Context, name string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	if err := os.Remove(filepath.Join(s.root, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
