package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
)

// SourceStorage is the source name used in audit errors for the bucket listing.
const SourceStorage = "storage"

// ListOptions bounds a full listing.
type ListOptions struct {
	CallTimeout time.Duration
	Logger      *logging.ChanneledLogger
}

// ScopePrefix turns a configured storage prefix into the folder prefix used
// for listing, so "uploads" covers "uploads/..." but not "uploads-archive/".
// An empty prefix means the whole bucket.
func ScopePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// InScope reports whether key would be returned by ListAll for prefix.
func InScope(key, prefix string) bool {
	return strings.HasPrefix(key, ScopePrefix(prefix))
}

// ListAll pages through the store under ScopePrefix(prefix) until the
// continuation token is empty. Any page failure aborts the listing with a
// *admin.SourceReadError naming the page; objects already read are discarded.
func ListAll(ctx context.Context, store ObjectStore, prefix string, opts ListOptions) ([]admin.StorageObject, error) {
	prefix = ScopePrefix(prefix)
	var objects []admin.StorageObject
	token := ""
	seenTokens := make(map[string]bool)

	for pageNumber := 1; ; pageNumber++ {
		page, err := listPage(ctx, store, prefix, token, opts.CallTimeout)
		if err != nil {
			if opts.Logger != nil {
				opts.Logger.Storage().Error("Storage listing failed", "page", pageNumber, "error", err.Error())
			}
			return nil, &admin.SourceReadError{Source: SourceStorage, Page: pageNumber, Err: err}
		}

		for _, obj := range page.Objects {
			if IsFolderPlaceholder(obj) {
				continue
			}
			objects = append(objects, admin.StorageObject{
				Path:      obj.Key,
				SizeBytes: obj.Size,
				Folder:    FolderOf(obj.Key),
			})
		}

		if page.NextToken == "" {
			break
		}
		if seenTokens[page.NextToken] {
			return nil, &admin.SourceReadError{
				Source: SourceStorage,
				Page:   pageNumber + 1,
				Err:    errors.New("continuation token repeated"),
			}
		}
		seenTokens[page.NextToken] = true
		token = page.NextToken
	}

	if opts.Logger != nil {
		opts.Logger.Storage().Debug("Storage listing complete", "prefix", prefix, "objects", len(objects))
	}
	return objects, nil
}

func listPage(ctx context.Context, store ObjectStore, prefix, token string, timeout time.Duration) (Page, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return store.List(ctx, prefix, token)
}
