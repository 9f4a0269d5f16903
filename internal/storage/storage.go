// Package storage holds the physical side of uploaded workbooks. Keys are
// slash-separated paths generated by the slot service, never by clients.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidKey   = errors.New("invalid blob key")
)

type BlobInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}

type BlobStore interface {
	// Save writes r under key and returns the number of bytes stored.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	// Open returns ErrBlobNotFound when the key has no content.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
	// URL is the reference recorded in metadata for key.
	URL(key string) string
}
