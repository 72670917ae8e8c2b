package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"biling/internal/config"
	"biling/internal/middleware"
	"biling/internal/models"
	"biling/internal/observability"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultUploadDir       = "/tmp/biling/uploads"
	DefaultMaxUploadSizeMB = 10
)

// DiskUploader stores media objects on the local filesystem under
// dir/namespace and serves them from baseURL/namespace. Object names are
// random UUIDs; callers own ordering via the returned URL slice.
type DiskUploader struct {
	dir          string
	baseURL      string
	maxSizeBytes int64
}

// NewDiskUploader creates a disk-backed uploader from configuration.
func NewDiskUploader(cfg *config.Config) *DiskUploader {
	dir := DefaultUploadDir
	baseURL := ""
	maxMB := DefaultMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			dir = cfg.UploadDir
		}
		baseURL = cfg.UploadBaseURL
		if cfg.UploadMaxMB > 0 {
			maxMB = cfg.UploadMaxMB
		}
	}

	return &DiskUploader{
		dir:          dir,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		maxSizeBytes: int64(maxMB) * 1024 * 1024,
	}
}

// UploadMany validates and stores every payload, returning public URLs in
// input order. On any failure the objects already written for this call are
// removed best-effort and an error is returned; no partial URL list escapes.
func (u *DiskUploader) UploadMany(ctx context.Context, files []File, namespace string) ([]string, error) {
	if namespace == "" {
		return nil, models.NewValidationError("Upload namespace is required")
	}

	destDir := filepath.Join(u.dir, filepath.FromSlash(namespace))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	urls := make([]string, 0, len(files))
	written := make([]string, 0, len(files))

	cleanup := func() {
		for _, p := range written {
			if err := os.Remove(p); err != nil {
				middleware.Logger.WarnContext(ctx, "failed to remove partial upload",
					slog.String("path", p), slog.String("error", err.Error()))
			}
		}
	}

	for i, f := range files {
		name, err := u.store(f, destDir)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("upload %d (%s): %w", i+1, f.Name, err)
		}
		written = append(written, filepath.Join(destDir, name))
		urls = append(urls, u.baseURL+"/"+path.Join(namespace, name))
		observability.UploadedObjects.WithLabelValues(namespaceKind(namespace)).Inc()
	}

	return urls, nil
}

func (u *DiskUploader) store(f File, destDir string) (string, error) {
	if len(f.Content) == 0 {
		return "", models.NewValidationError("No file content")
	}
	if int64(len(f.Content)) > u.maxSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", u.maxSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(f.Content)
	if !isAllowedImageMIME(detected) {
		return "", models.NewValidationError("Invalid image type")
	}

	_, format, err := image.Decode(bytes.NewReader(f.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	name := uuid.NewString() + extensionForFormat(format)
	if err := os.WriteFile(filepath.Join(destDir, name), f.Content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return name, nil
}

func isAllowedImageMIME(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func extensionForFormat(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	default:
		return "." + format
	}
}

// namespaceKind reduces "posts/42" to "posts" for metric labels.
func namespaceKind(namespace string) string {
	if i := strings.IndexByte(namespace, '/'); i > 0 {
		return namespace[:i]
	}
	return namespace
}
