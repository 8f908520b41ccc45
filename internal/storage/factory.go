package storage

import (
	"context"
	"fmt"
)

// Options selects and configures a Store backend.
type Options struct {
	Type string // "filesystem" (default), "s3" or "memory"
	Dir  string // filesystem root
	S3   S3Options
}

// New creates a Store implementation based on opts.Type.
func New(ctx context.Context, opts Options) (Store, error) {
	switch opts.Type {
	case "", "filesystem":
		if opts.Dir == "" {
			return nil, fmt.Errorf("filesystem storage requires an uploads directory")
		}
		return NewFileSystem(opts.Dir)
	case "s3":
		return NewS3(ctx, opts.S3)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", opts.Type)
	}
}
