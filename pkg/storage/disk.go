// Package storage provides the object storage abstraction behind image
// uploads.
//
// Two drivers are available:
//   - "local" — local filesystem (default, development)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
package storage

import (
	"fmt"
	"io"

	"github.com/shashiranjanraj/maalgodam/config"
)

// Disk is the object storage driver interface.
type Disk interface {
	// Put writes content to path, creating parent directories as needed.
	Put(path string, content []byte) error

	// PutStream writes from r to path.
	PutStream(path string, r io.Reader) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(path string) bool

	// Size returns the byte size of the file.
	Size(path string) (int64, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error

	// URL returns the durable public URL for path.
	URL(path string) string
}

// FromConfig builds the disk selected by STORAGE_DISK.
func FromConfig() (Disk, error) {
	switch name := config.StorageDisk(); name {
	case "local":
		return NewLocalDisk(config.StorageLocalRoot(), config.StorageURL()), nil
	case "s3":
		return NewS3Disk(S3Options{
			Bucket:   config.StorageS3Bucket(),
			Region:   config.StorageS3Region(),
			Key:      config.StorageS3Key(),
			Secret:   config.StorageS3Secret(),
			Endpoint: config.StorageS3Endpoint(),
			BaseURL:  config.StorageS3URL(),
		})
	default:
		return nil, fmt.Errorf("storage: unsupported STORAGE_DISK %q (supported: local, s3)", name)
	}
}
