// Package media stores profile images in object storage.
package media

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/circle/pkg/idx"
)

const (
	ProfilePrefix = "profile-images/"

	// MaxImageBytes caps a single upload.
	MaxImageBytes = 5 << 20
)

var (
	ErrEmpty     = errors.New("media: empty upload")
	ErrTooLarge  = errors.New("media: upload too large")
	ErrNotImage  = errors.New("media: upload is not an image")
	ErrNoStorage = errors.New("media: object storage not configured")
)

type Store interface {
	// Upload stores data and returns the object key it was written under.
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// ContentType resolves the MIME type from the extension, falling back to
// sniffing the bytes.
func ContentType(filename string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// prepare validates an image upload and picks a collision-free key.
func prepare(filename string, data []byte) (key, contentType string, err error) {
	if len(data) == 0 {
		return "", "", ErrEmpty
	}
	if len(data) > MaxImageBytes {
		return "", "", ErrTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return "", "", ErrNotImage
	}
	contentType = ContentType(filename, data)
	return ProfilePrefix + idx.New().String() + strings.ToLower(filepath.Ext(filename)), contentType, nil
}
