package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
)

// ReferenceExtractor collects every media reference held by the content
// collections, drafts and inactive rows included.
type ReferenceExtractor struct {
	sources  []repositories.RowSource
	resolver *storage.PathResolver
	logger   *logging.ChanneledLogger
}

func NewReferenceExtractor(resolver *storage.PathResolver, logger *logging.ChanneledLogger, sources ...repositories.RowSource) *ReferenceExtractor {
	return &ReferenceExtractor{sources: sources, resolver: resolver, logger: logger}
}

// Extract reads all collections concurrently. Every collection is read to
// completion even if another fails; any failure yields an
// *admin.IncompleteAuditError naming all failed collections.
func (e *ReferenceExtractor) Extract(ctx context.Context) ([]admin.FileReference, error) {
	perSource := make([][]admin.FileReference, len(e.sources))
	failures := make([]*admin.SourceReadError, len(e.sources))

	var wg sync.WaitGroup
	for i, src := range e.sources {
		i, src := i, src
		wg.Add(1)
		go func() {
			defer wg.Done()
			refs, err := e.extractSource(ctx, src)
			if err != nil {
				e.logger.Audit().Error("Content collection read failed", "collection", src.Collection(), "error", err.Error())
				failures[i] = &admin.SourceReadError{Source: string(src.Collection()), Err: err}
				return
			}
			perSource[i] = refs
		}()
	}
	wg.Wait()

	if err := admin.NewIncompleteAuditError(failures...); err != nil {
		return nil, err
	}

	var refs []admin.FileReference
	for _, r := range perSource {
		refs = append(refs, r...)
	}
	return refs, nil
}

func (e *ReferenceExtractor) extractSource(ctx context.Context, src repositories.RowSource) ([]admin.FileReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := src.ListRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s rows: %w", src.Collection(), err)
	}

	var refs []admin.FileReference
	var ignored int
	for _, row := range rows {
		for _, raw := range row.MediaPaths() {
			key, ok := e.resolver.Resolve(raw)
			if !ok {
				ignored++
				e.logger.Audit().Debug("Ignoring reference outside bucket", "collection", row.Collection(), "id", row.RowID(), "value", raw)
				continue
			}
			refs = append(refs, admin.FileReference{
				Path:      key,
				OwnerType: string(row.Collection()),
				OwnerID:   row.RowID(),
			})
		}
	}
	e.logger.Audit().Debug("Collection scanned", "collection", src.Collection(), "rows", len(rows), "references", len(refs), "ignored", ignored)
	return refs, nil
}

// referenceSet is the normalized set of referenced paths used for deletion checks.
type referenceSet map[string]struct{}

func newReferenceSet(refs []admin.FileReference, normalize func(string) string) referenceSet {
	set := make(referenceSet, len(refs))
	for _, r := range refs {
		if key := normalize(r.Path); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}

func (s referenceSet) has(key string) bool {
	_, ok := s[key]
	return ok
}
