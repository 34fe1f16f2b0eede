// Package storage persists uploaded card images either on the local disk or
// in an S3-compatible bucket.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix is the directory (or key prefix) card images live under
const Prefix = "card_images"

var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// ImageStore saves an image under name and returns the reference stored on the card
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// AllowedImage reports whether the file name carries an accepted image extension
func AllowedImage(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return allowedExtensions[ext]
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// UniqueName strips any directory and unsafe characters from the uploaded
// file name and appends a timestamp and a random suffix before the extension.
func UniqueName(original string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.Trim(unsafeChars.ReplaceAllString(stem, "_"), "._")
	if stem == "" {
		stem = "image"
	}
	return stem + "_" + now.UTC().Format("20060102150405") + "_" + uuid.NewString()[:8] + ext
}
