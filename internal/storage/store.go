package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Get and Delete for unknown keys.
var ErrObjectNotFound = errors.New("object not found")

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Key         string
	ContentType string
	SizeBytes   int64
}

// ObjectStore abstracts blob storage for uploaded files. Keys are opaque
// slash-separated paths chosen by the caller.
type ObjectStore interface {
	// Put stores the object under key, replacing any existing object.
	Put(ctx context.Context, key, contentType string, r io.Reader) (ObjectInfo, error)

	// Get opens the object for reading. The caller must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object. Deleting an unknown key returns
	// ErrObjectNotFound.
	Delete(ctx context.Context, key string) error

	// List returns infos for all objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
