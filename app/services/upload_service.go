package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/shashiranjanraj/maalgodam/pkg/metrics"
	"github.com/shashiranjanraj/maalgodam/pkg/storage"
)

// MaxUploadBytes is the upload size cap (5 MiB).
const MaxUploadBytes = 5 << 20

// allowedImageTypes maps accepted mime types to the stored file extension.
var allowedImageTypes = map[string]string{
	"image/png":  ".png",
	"image/jpg":  ".jpg",
	"image/jpeg": ".jpeg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/avif": ".avif",
}

// UploadService validates and uploads item images to the object store,
// returning a durable public URL. Validation happens before any byte is
// written, so a rejected upload leaves no trace.
type UploadService struct {
	disk   storage.Disk
	folder string
}

// NewUploadService builds an upload gateway writing under folder on disk.
func NewUploadService(disk storage.Disk, folder string) *UploadService {
	return &UploadService{disk: disk, folder: strings.Trim(folder, "/")}
}

// Upload streams payload to the object store and returns its public URL.
// Fails with ErrInvalidMediaType, ErrPayloadTooLarge, or ErrUploadFailed.
func (s *UploadService) Upload(_ context.Context, payload io.Reader, mimeType string, size int64) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(mimeType)]
	if !ok {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: %s (allowed: png, jpg, jpeg, webp, gif, avif)", ErrInvalidMediaType, mimeType)
	}

	if size > MaxUploadBytes {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: %d bytes (limit %d)", ErrPayloadTooLarge, size, MaxUploadBytes)
	}

	path := s.folder + "/" + randomFileName() + ext
	if err := s.disk.PutStream(path, payload); err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	metrics.Uploads.WithLabelValues("ok").Inc()
	return s.disk.URL(path), nil
}

// randomFileName returns a 12-byte random hex name, unique enough that
// concurrent uploads never collide within the folder.
func randomFileName() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
