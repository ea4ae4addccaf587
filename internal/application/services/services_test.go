package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/infrastructure/database/dbtest"
	"github.com/Diampra/octopus-server/internal/infrastructure/email"
	"github.com/Diampra/octopus-server/internal/infrastructure/messaging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	contentrepo "github.com/Diampra/octopus-server/internal/infrastructure/persistence/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
)

func adminSession() *session.Session {
	return &session.Session{ID: "s-admin", SubjectID: "u-admin", Email: "admin@example.com", IsAdmin: true, ExpiresAt: time.Now().Add(time.Hour)}
}

func editorSession() *session.Session {
	return &session.Session{ID: "s-editor", SubjectID: "u-editor", Email: "editor@example.com", ExpiresAt: time.Now().Add(time.Hour)}
}

func expiredSession() *session.Session {
	return &session.Session{ID: "s-old", SubjectID: "u-admin", IsAdmin: true, ExpiresAt: time.Now().Add(-time.Minute)}
}

func strPtr(s string) *string { return &s }

// env wires the application services against in-memory SQLite and storage.
type env struct {
	logger       *logging.ChanneledLogger
	tracker      *performance.Tracker
	posts        *contentrepo.PostRepository
	portfolio    *contentrepo.PortfolioRepository
	catalog      *contentrepo.ServiceRepository
	testimonials *contentrepo.TestimonialRepository
	categories   *contentrepo.CategoryRepository
	media        *contentrepo.MediaRepository
	store        *storage.MemoryStore
	mailer       *recordingMailer
	publisher    *recordingPublisher
	resolver     *storage.PathResolver
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.New(t)
	logger := logging.NewNopLogger()
	return &env{
		logger:       logger,
		tracker:      performance.NewTracker(nil),
		posts:        contentrepo.NewPostRepository(db, logger),
		portfolio:    contentrepo.NewPortfolioRepository(db, logger),
		catalog:      contentrepo.NewServiceRepository(db, logger),
		testimonials: contentrepo.NewTestimonialRepository(db, logger),
		categories:   contentrepo.NewCategoryRepository(db, logger),
		media:        contentrepo.NewMediaRepository(db, logger),
		store:        storage.NewMemoryStore(2, ""),
		mailer:       &recordingMailer{},
		publisher:    &recordingPublisher{},
		resolver:     storage.NewPathResolver("https://proj.supabase.co/storage/v1/object/public/media", "media"),
	}
}

func (e *env) extractor() *ReferenceExtractor {
	return NewReferenceExtractor(e.resolver, e.logger, e.posts, e.portfolio, e.catalog, e.testimonials, e.categories, e.media)
}

func (e *env) auditService(extractor *ReferenceExtractor) *StorageAuditService {
	return NewStorageAuditService(extractor, e.store, e.mailer, e.publisher,
		StorageOptions{CallTimeout: time.Second}, e.logger, e.tracker)
}

func (e *env) cleanupService(extractor *ReferenceExtractor) *StorageCleanupService {
	return NewStorageCleanupService(extractor, e.store, e.publisher, CleanupOptions{
		StorageOptions:     StorageOptions{CallTimeout: time.Second},
		RevalidationWindow: time.Nanosecond,
		Concurrency:        4,
	}, e.logger, e.tracker)
}

type recordingMailer struct {
	mu     sync.Mutex
	alerts []email.IntegrityAlert
}

func (m *recordingMailer) SendIntegrityAlert(a email.IntegrityAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, a)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, subject, _ string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

var _ messaging.Publisher = (*recordingPublisher)(nil)

// failingSource is a collection whose reads always fail.
type failingSource struct{ collection content.Collection }

func (f failingSource) Collection() content.Collection { return f.collection }
func (f failingSource) ListRows(context.Context) ([]content.Row, error) {
	return nil, errors.New("connection reset")
}

// scriptedSource returns the next row set on every read; the last one repeats.
type scriptedSource struct {
	mu    sync.Mutex
	reads int
	sets  [][]content.Row
}

func (s *scriptedSource) Collection() content.Collection { return content.CollectionPost }
func (s *scriptedSource) ListRows(context.Context) ([]content.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := min(s.reads, len(s.sets)-1)
	s.reads++
	return s.sets[i], nil
}
