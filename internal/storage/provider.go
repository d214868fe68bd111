// Package storage defines where crawl output is written. Implementations live
// in subpackages: local disk, Google Cloud Storage and an in-memory store for
// tests and development.
package storage

import (
	"context"
	"io"
)

// BlobStore persists a named object and returns a URI describing where it
// landed.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}
