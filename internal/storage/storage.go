package storage

import (
	"context"
	"io"
)

// Storage holds uploaded cover images. Keys are opaque object names; the
// public URL for a key is the caller's concern.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
