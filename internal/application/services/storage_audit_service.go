package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	domainservices "github.com/Diampra/octopus-server/internal/domain/services"
	"github.com/Diampra/octopus-server/internal/infrastructure/email"
	"github.com/Diampra/octopus-server/internal/infrastructure/messaging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
)

// StorageOptions are the storage settings shared by the audit and cleanup services.
type StorageOptions struct {
	Prefix          string
	CallTimeout     time.Duration
	CaseInsensitive bool
}

func (o StorageOptions) reconcile() domainservices.ReconcileOptions {
	return domainservices.ReconcileOptions{CaseInsensitive: o.CaseInsensitive}
}

// StorageAuditService produces audit reports of the bucket against content references.
type StorageAuditService struct {
	extractor   *ReferenceExtractor
	store       storage.ObjectStore
	mailer      email.Service
	publisher   messaging.Publisher
	options     StorageOptions
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewStorageAuditService(
	extractor *ReferenceExtractor,
	store storage.ObjectStore,
	mailer email.Service,
	publisher messaging.Publisher,
	options StorageOptions,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *StorageAuditService {
	return &StorageAuditService{
		extractor:   extractor,
		store:       store,
		mailer:      mailer,
		publisher:   publisher,
		options:     options,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Audit lists the bucket and extracts content references concurrently, then
// classifies every path. If either input is incomplete no report is produced
// and the error is an *admin.IncompleteAuditError.
func (s *StorageAuditService) Audit(ctx context.Context, sess *session.Session) (*admin.AuditReport, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	marker := s.perfTracker.StartOperation("storage:audit")
	defer marker.Complete()
	start := time.Now()

	var (
		refs       []admin.FileReference
		objects    []admin.StorageObject
		refErr     error
		listingErr error
	)

	// Both inputs are always read to completion so a report of an incomplete
	// audit names every failed source.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		refs, refErr = s.extractor.Extract(ctx)
	}()
	go func() {
		defer wg.Done()
		objects, listingErr = storage.ListAll(ctx, s.store, s.options.Prefix, storage.ListOptions{
			CallTimeout: s.options.CallTimeout,
			Logger:      s.logger,
		})
	}()
	wg.Wait()

	if err := combineAuditErrors(refErr, listingErr); err != nil {
		marker.SetError(err)
		s.logger.Audit().Error("Storage audit incomplete", "error", err.Error(), "subjectId", sess.SubjectID)
		return nil, err
	}

	report := domainservices.ReconcileReferences(refs, objects, s.options.reconcile())
	report.GeneratedAt = time.Now().UTC()

	marker.AddMetadata("linked", report.Summary.Linked)
	marker.AddMetadata("orphan", report.Summary.Orphan)
	marker.AddMetadata("missing", report.Summary.Missing)
	s.logger.Audit().Info("Storage audit completed",
		"subjectId", sess.SubjectID,
		"linked", report.Summary.Linked,
		"orphan", report.Summary.Orphan,
		"missing", report.Summary.Missing,
		"orphanBytes", report.Summary.OrphanBytes,
		"duration", time.Since(start))

	s.notify(ctx, sess, report)
	return report, nil
}

func (s *StorageAuditService) notify(ctx context.Context, sess *session.Session, report *admin.AuditReport) {
	if err := s.publisher.Publish(ctx, messaging.SubjectAuditCompleted, sess.SubjectID, report.Summary); err != nil {
		s.logger.Audit().Warn("Failed to publish audit event", "error", err.Error())
	}

	if report.Summary.Missing == 0 {
		return
	}
	err := s.mailer.SendIntegrityAlert(email.IntegrityAlert{
		MissingPaths: admin.Paths(report.Missing),
		OrphanCount:  report.Summary.Orphan,
		LinkedCount:  report.Summary.Linked,
		GeneratedAt:  report.GeneratedAt,
	})
	if err != nil {
		s.logger.Audit().Warn("Failed to send integrity alert", "error", err.Error())
	}
}

// combineAuditErrors merges extractor and lister failures into one
// IncompleteAuditError. Errors of any other shape are wrapped as failures of
// their source.
func combineAuditErrors(refErr, listingErr error) error {
	var failures []*admin.SourceReadError

	if refErr != nil {
		var incomplete *admin.IncompleteAuditError
		if errors.As(refErr, &incomplete) {
			failures = append(failures, incomplete.Failures...)
		} else {
			failures = append(failures, &admin.SourceReadError{Source: "content", Err: refErr})
		}
	}
	if listingErr != nil {
		var srcErr *admin.SourceReadError
		if errors.As(listingErr, &srcErr) {
			failures = append(failures, srcErr)
		} else {
			failures = append(failures, &admin.SourceReadError{Source: storage.SourceStorage, Err: listingErr})
		}
	}
	return admin.NewIncompleteAuditError(failures...)
}
