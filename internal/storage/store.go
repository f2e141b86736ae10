// Package storage abstracts the object store backing uploaded images.
package storage

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is an object store keyed by flat string keys. Stored objects are
// addressed publicly as <baseURL>/<key>.
type Store interface {
	// Put writes data under key.
	Put(ctx context.Context, key string, data []byte) error
	// Get reads the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Copy duplicates the object at srcKey under a freshly generated key and
	// returns the new key. The original-name suffix of srcKey is preserved,
	// and the thumbnail sibling, when present, is copied alongside.
	Copy(ctx context.Context, srcKey string) (string, error)
	// Delete removes the object stored under key together with its thumbnail
	// sibling. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL for key.
	URL(key string) string
	// Owns reports whether url points at this store. External image URLs
	// (not store-hosted) are never copied or deleted.
	Owns(url string) bool
}

// ThumbSuffix is appended to a master key to address its thumbnail. Copy and
// Delete carry the thumbnail along with the master, so callers only ever track
// master keys.
const ThumbSuffix = ".thumb.webp"

// ThumbKey returns the thumbnail key for a master key.
func ThumbKey(key string) string {
	return key + ThumbSuffix
}

var keyPattern = regexp.MustCompile(`^[0-9a-f-]{36}-\d+-`)

// NewKey builds an object key of the form <uuid>-<unix ms>-<name>.
func NewKey(originalName string) string {
	return fmt.Sprintf("%s-%d-%s", uuid.NewString(), time.Now().UnixMilli(), SanitizeName(originalName))
}

// RekeyFrom derives a fresh key for a copy of srcKey, keeping the original
// filename (and so its extension) while replacing the uuid+timestamp prefix.
func RekeyFrom(srcKey string) string {
	name := srcKey
	if loc := keyPattern.FindStringIndex(srcKey); loc != nil {
		name = srcKey[loc[1]:]
	}
	return fmt.Sprintf("%s-%d-%s", uuid.NewString(), time.Now().UnixMilli(), name)
}

// KeyFromURL extracts the object key from a stored URL: the trailing path
// segment.
func KeyFromURL(url string) string {
	trimmed := strings.TrimSuffix(url, "/")
	return path.Base(trimmed)
}

// SanitizeName strips path separators and whitespace from an uploaded
// filename so it is safe to embed in a key.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
