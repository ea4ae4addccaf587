// Package storage provides the object storage drivers and the paging lister
// used by the storage audit.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrObjectNotFound is returned by drivers when an object is absent.
var ErrObjectNotFound = errors.New("object not found")

// Object is one listed object. Key is the full object path inside the bucket.
type Object struct {
	Key  string
	Size int64
}

// Page is one page of a listing. An empty NextToken means the listing is complete.
type Page struct {
	Objects   []Object
	NextToken string
}

// ObjectStore is the storage boundary. Every method must honor ctx cancellation.
type ObjectStore interface {
	// List returns one page of objects under prefix, resuming at token.
	List(ctx context.Context, prefix, token string) (Page, error)
	// Stat reports whether an object exists.
	Stat(ctx context.Context, path string) (bool, error)
	// Delete removes objects. The returned map holds per-path failures; the
	// error is set only when the whole call failed.
	Delete(ctx context.Context, paths []string) (map[string]error, error)
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	PublicURL(path string) string
}

// FolderOf returns the parent folder of an object key, or "" at the root.
func FolderOf(key string) string {
	dir := path.Dir(key)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// IsFolderPlaceholder reports whether a listed key is a zero-byte directory marker.
func IsFolderPlaceholder(obj Object) bool {
	return strings.HasSuffix(obj.Key, "/") && obj.Size == 0
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// HealthChecker is implemented by stores that can verify their connection.
type HealthChecker interface {
	CheckConnection(ctx context.Context) error
}
