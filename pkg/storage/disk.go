// Package storage abstracts where the "disk" visitor store keeps its
// objects.
//
// Two drivers are available:
//   - "local": the local filesystem (default)
//   - "s3": S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
// Boot once at startup and pick a disk by name:
//
//	if err := storage.Connect(); err != nil { ... }
//	disk, err := storage.Use("s3")
//	err = disk.Put(ctx, "kv/9f0c.json", data)
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when path does not exist on the disk.
var ErrNotFound = errors.New("storage: not found")

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, creating parents as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the content at path or ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error

	// Files lists every file below directory, recursively, as
	// slash-separated paths relative to the disk root.
	Files(ctx context.Context, directory string) ([]string, error)
}
