package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	domainservices "github.com/Diampra/octopus-server/internal/domain/services"
	"github.com/Diampra/octopus-server/internal/infrastructure/messaging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
)

// CleanupOptions bounds a delete batch.
type CleanupOptions struct {
	StorageOptions
	RevalidationWindow time.Duration
	Concurrency        int
}

// StorageCleanupService deletes caller-selected orphans. Each path is checked
// against a fresh reference snapshot right before its deletion, so an object
// that became referenced since the audit is never removed.
type StorageCleanupService struct {
	extractor   *ReferenceExtractor
	store       storage.ObjectStore
	publisher   messaging.Publisher
	options     CleanupOptions
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	now         func() time.Time
}

func NewStorageCleanupService(
	extractor *ReferenceExtractor,
	store storage.ObjectStore,
	publisher messaging.Publisher,
	options CleanupOptions,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *StorageCleanupService {
	if options.Concurrency <= 0 {
		options.Concurrency = 8
	}
	if options.RevalidationWindow <= 0 {
		options.RevalidationWindow = 5 * time.Second
	}
	return &StorageCleanupService{
		extractor:   extractor,
		store:       store,
		publisher:   publisher,
		options:     options,
		logger:      logger,
		perfTracker: perfTracker,
		now:         time.Now,
	}
}

// DeleteOrphans processes paths and reports one result per distinct path in
// input order. Only authorization and empty input fail the call; per-path
// problems are reported in the results.
func (s *StorageCleanupService) DeleteOrphans(ctx context.Context, sess *session.Session, paths []string) (*admin.DeleteBatchResult, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	targets := s.dedupe(paths)
	if len(targets) == 0 {
		return nil, invalid("no files to delete")
	}

	marker := s.perfTracker.StartOperation("storage:delete")
	defer marker.Complete()
	marker.AddMetadata("requested", len(targets))

	snap := &referenceSnapshot{
		extractor: s.extractor,
		window:    s.options.RevalidationWindow,
		normalize: s.compareKey,
		now:       s.now,
	}

	results := make([]admin.DeleteResult, len(targets))
	// Taken up front so the workers share it. If it cannot be read nothing
	// is deleted and the store is not touched.
	if _, err := snap.get(ctx); err != nil {
		s.logger.Storage().Error("Reference snapshot failed, rejecting delete batch", "error", err.Error())
		for i, t := range targets {
			results[i] = s.precheck(t)
			if results[i].Status == "" {
				results[i] = s.failed(t, fmt.Errorf("reference snapshot unavailable: %w", err))
			}
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(s.options.Concurrency)
		for i, t := range targets {
			i, t := i, t
			g.Go(func() error {
				results[i] = s.deleteOne(ctx, sess, snap, t)
				return nil
			})
		}
		// Per-path outcomes are carried in results; no worker returns an error.
		_ = g.Wait()
	}

	batch := &admin.DeleteBatchResult{Results: results}
	batch.Summarize()

	marker.AddMetadata("deleted", batch.Summary.Deleted)
	if batch.Summary.Failed > 0 {
		marker.SetSuccess(false)
	}
	s.logger.Audit().Info("Orphan delete batch finished",
		"subjectId", sess.SubjectID,
		"requested", batch.Summary.Requested,
		"deleted", batch.Summary.Deleted,
		"skipped", batch.Summary.Skipped,
		"failed", batch.Summary.Failed)
	return batch, nil
}

type deleteTarget struct {
	key     string // object key as sent to the store
	compare string // normalized key used against references
}

// dedupe keeps the first occurrence of every normalized path. The key sent
// to the store is the caller's path with only surrounding whitespace removed,
// so objects stored under unnormalized keys can still be deleted.
func (s *StorageCleanupService) dedupe(paths []string) []deleteTarget {
	seen := make(map[string]bool, len(paths))
	targets := make([]deleteTarget, 0, len(paths))
	for _, p := range paths {
		cmp := s.compareKey(p)
		if cmp == "" || seen[cmp] {
			continue
		}
		seen[cmp] = true
		targets = append(targets, deleteTarget{key: strings.TrimSpace(p), compare: cmp})
	}
	return targets
}

func (s *StorageCleanupService) compareKey(p string) string {
	return domainservices.NormalizePath(p, s.options.reconcile())
}

// precheck rejects targets the audit could never have classified as orphan.
// A zero Status means the target may proceed.
func (s *StorageCleanupService) precheck(t deleteTarget) admin.DeleteResult {
	if storage.InScope(t.key, s.options.Prefix) {
		return admin.DeleteResult{}
	}
	s.logger.Storage().Warn("Rejected delete outside storage prefix", "path", t.key, "prefix", s.options.Prefix)
	return admin.DeleteResult{
		File:   t.key,
		Status: admin.DeleteStatusRejectedOutOfScope,
		Error:  admin.ErrOutOfScope.Error(),
	}
}

func (s *StorageCleanupService) failed(t deleteTarget, err error) admin.DeleteResult {
	s.logger.Storage().Warn("Orphan delete failed", "path", t.key, "error", err.Error())
	return admin.DeleteResult{
		File:   t.key,
		Status: admin.DeleteStatusFailedStorageError,
		Error:  fmt.Errorf("%w: %v", admin.ErrStorageTransient, err).Error(),
	}
}

func (s *StorageCleanupService) deleteOne(ctx context.Context, sess *session.Session, snap *referenceSnapshot, t deleteTarget) admin.DeleteResult {
	if rejected := s.precheck(t); rejected.Status != "" {
		return rejected
	}
	result := admin.DeleteResult{File: t.key}

	refs, err := snap.get(ctx)
	if err != nil {
		return s.failed(t, fmt.Errorf("reference snapshot unavailable: %w", err))
	}
	if refs.has(t.compare) {
		result.Status = admin.DeleteStatusSkippedNowReferenced
		result.Error = admin.ErrDeleteConflict.Error()
		return result
	}

	exists, err := s.stat(ctx, t.key)
	if err != nil {
		return s.failed(t, err)
	}
	if !exists {
		result.Status = admin.DeleteStatusSkippedNotFound
		return result
	}

	// The stat may have outlived the window; check once more right before deleting.
	refs, err = snap.get(ctx)
	if err != nil {
		return s.failed(t, fmt.Errorf("reference snapshot unavailable: %w", err))
	}
	if refs.has(t.compare) {
		result.Status = admin.DeleteStatusSkippedNowReferenced
		result.Error = admin.ErrDeleteConflict.Error()
		return result
	}

	if err := s.remove(ctx, t.key); err != nil {
		return s.failed(t, err)
	}

	result.Status = admin.DeleteStatusDeleted
	s.logger.Storage().Info("Orphan deleted", "path", t.key, "subjectId", sess.SubjectID)
	if err := s.publisher.Publish(ctx, messaging.SubjectObjectDeleted, sess.SubjectID, map[string]string{"path": t.key}); err != nil {
		s.logger.Storage().Warn("Failed to publish delete event", "path", t.key, "error", err.Error())
	}
	return result
}

func (s *StorageCleanupService) stat(ctx context.Context, key string) (bool, error) {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	return s.store.Stat(ctx, key)
}

func (s *StorageCleanupService) remove(ctx context.Context, key string) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()
	failures, err := s.store.Delete(ctx, []string{key})
	if err != nil {
		return err
	}
	if ferr, ok := failures[key]; ok {
		return ferr
	}
	return nil
}

func (s *StorageCleanupService) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.options.CallTimeout > 0 {
		return context.WithTimeout(ctx, s.options.CallTimeout)
	}
	return context.WithCancel(ctx)
}

// referenceSnapshot caches the reference set for at most window. A stale
// snapshot is rebuilt by the next caller; concurrent callers wait for that
// rebuild instead of starting their own. A failed rebuild is remembered for
// the rest of the batch so the collections are not rescanned per path.
type referenceSnapshot struct {
	extractor *ReferenceExtractor
	window    time.Duration
	normalize func(string) string
	now       func() time.Time

	mu      sync.Mutex
	refs    referenceSet
	takenAt time.Time
	err     error
}

func (r *referenceSnapshot) get(ctx context.Context) (referenceSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	if r.refs != nil && r.now().Sub(r.takenAt) <= r.window {
		return r.refs, nil
	}

	refs, err := r.extractor.Extract(ctx)
	if err != nil {
		r.refs = nil
		r.err = err
		return nil, err
	}
	r.refs = newReferenceSet(refs, r.normalize)
	r.takenAt = r.now()
	return r.refs, nil
}
