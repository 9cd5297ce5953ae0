package storage

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	cfg "github.com/tripdiary/tripadmin/internal/config"
)

// ErrInvalidPath is returned for paths that would escape the storage root
var ErrInvalidPath = errors.New("invalid storage path")

// Storage defines the interface for file storage operations.
// Paths are slash-separated and relative to the storage root.
type Storage interface {
	// Save stores a file at the given path
	Save(path string, file io.Reader) error

	// Open returns a reader for the file at the given path
	Open(path string) (io.ReadCloser, error)

	// Delete removes a file at the given path; deleting a missing file is an error
	Delete(path string) error

	// URL returns the public URL for accessing the file
	URL(path string) string
}

// New creates the storage backend selected by STORAGE_DRIVER
func New(c *cfg.Config) (Storage, error) {
	switch c.StorageDriver {
	case cfg.StorageLocal:
		slog.Info("initializing local storage", "path", c.StoragePath, "url", c.ImageBaseURL)
		return NewLocalStorage(c.StoragePath, c.ImageBaseURL)
	case cfg.StorageS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}
