// Package storage holds the blob stores that keep uploaded bytes.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// Store keeps uploaded objects addressed by a flat name.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes r under name and returns the number of bytes stored.
	Put(ctx context.Context, name string, r io.Reader) (int64, error)
	// Open returns the object's content. Missing objects yield errs.ErrNotFound.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error
}

// ErrInvalidName is returned for names that are not a single plain path element.
var ErrInvalidName = errors.New("invalid object name")

// ValidName reports whether name is safe to use as an object name.
func ValidName(name string) bool {
	if name == "" || len(name) > 255 {
		return false
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, "/\\\x00") {
		return false
	}
	return true
}
