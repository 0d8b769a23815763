package service

import (
	"context"
	"io"
	"strings"
)

// ImageStore holds uploaded image artifacts addressed by key.
type ImageStore interface {
	Save(ctx context.Context, prefix, filename string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// ImageUpload is one file received for an image slot.
type ImageUpload struct {
	Slot        string
	Filename    string
	ContentType string
	Body        io.Reader
}

// IsExternalImage reports whether path is a remote URL rather than a stored artifact.
func IsExternalImage(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
