package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/infrastructure/messaging"
)

func seedContent(t *testing.T, e *env) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, e.posts.Store(ctx, &content.Post{ID: "p1", Title: "Live", Slug: "live", Published: true,
		ImageURL: strPtr("https://proj.supabase.co/storage/v1/object/public/media/blog/live.jpg")}))
	require.NoError(t, e.posts.Store(ctx, &content.Post{ID: "p2", Title: "Draft", Slug: "draft",
		ImageURL: strPtr("blog/draft.jpg")}))
	require.NoError(t, e.portfolio.Store(ctx, &content.PortfolioItem{ID: "pf1", Title: "Reel",
		VideoURL: strPtr("portfolio/reel.mp4"), PosterURL: strPtr("portfolio/reel.jpg")}))
	require.NoError(t, e.catalog.Store(ctx, &content.Service{ID: "s1", Title: "Print", Slug: "print",
		ImageURL: strPtr("https://cdn.elsewhere.com/print.png")}))
	require.NoError(t, e.testimonials.Store(ctx, &content.Testimonial{ID: "t1", Name: "Ana", Content: "Great", Rating: 5,
		AvatarURL: strPtr("/avatars/ana.png")}))

	e.store.Seed(map[string]int64{
		"blog/live.jpg":      100,
		"blog/draft.jpg":     200,
		"portfolio/reel.mp4": 300,
		"avatars/ana.png":    50,
		"blog/old.jpg":       400,
		"media/stray.png":    25,
		"media/":             0,
	})
}

func TestAuditClassifiesEveryPath(t *testing.T) {
	e := newEnv(t)
	seedContent(t, e)

	report, err := e.auditService(e.extractor()).Audit(context.Background(), adminSession())
	require.NoError(t, err)

	assert.Equal(t, []string{"avatars/ana.png", "blog/draft.jpg", "blog/live.jpg", "portfolio/reel.mp4"}, admin.Paths(report.Linked))
	assert.Equal(t, []string{"blog/old.jpg", "media/stray.png"}, admin.Paths(report.Orphan))
	assert.Equal(t, []string{"portfolio/reel.jpg"}, admin.Paths(report.Missing))
	assert.Equal(t, int64(425), report.Summary.OrphanBytes)
	assert.False(t, report.GeneratedAt.IsZero())

	require.Len(t, report.Missing[0].Owners, 1)
	assert.Equal(t, admin.Owner{Type: "portfolio_item", ID: "pf1"}, report.Missing[0].Owners[0])

	require.Len(t, e.mailer.alerts, 1)
	assert.Equal(t, []string{"portfolio/reel.jpg"}, e.mailer.alerts[0].MissingPaths)
	assert.Equal(t, 1, e.publisher.count(messaging.SubjectAuditCompleted))
}

func TestAuditNothingOrphan(t *testing.T) {
	e := newEnv(t)

	report, err := e.auditService(e.extractor()).Audit(context.Background(), adminSession())
	require.NoError(t, err)
	assert.Empty(t, report.Linked)
	assert.Empty(t, report.Orphan)
	assert.Empty(t, report.Missing)
	assert.Zero(t, report.Summary.Orphan)
	assert.Empty(t, e.mailer.alerts)
}

func TestAuditRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	e.store.FailListPage(1, errors.New("must not be called"))
	svc := e.auditService(e.extractor())

	_, err := svc.Audit(context.Background(), nil)
	assert.ErrorIs(t, err, session.ErrAuthRequired)
	_, err = svc.Audit(context.Background(), expiredSession())
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	_, err = svc.Audit(context.Background(), editorSession())
	assert.ErrorIs(t, err, session.ErrForbidden)
}

func TestAuditIncompleteNamesAllFailedSources(t *testing.T) {
	e := newEnv(t)
	seedContent(t, e)
	e.store.FailListPage(2, errors.New("503"))

	extractor := NewReferenceExtractor(e.resolver, e.logger, e.posts, failingSource{content.CollectionTestimonial}, failingSource{content.CollectionCategory})
	report, err := e.auditService(extractor).Audit(context.Background(), adminSession())
	require.Error(t, err)
	assert.Nil(t, report)

	var incomplete *admin.IncompleteAuditError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []string{"category", "storage", "testimonial"}, incomplete.FailedSources())
	assert.Empty(t, e.mailer.alerts)
}

func TestAuditIncompleteOnStorageOnly(t *testing.T) {
	e := newEnv(t)
	seedContent(t, e)
	e.store.FailListPage(3, errors.New("timeout"))

	_, err := e.auditService(e.extractor()).Audit(context.Background(), adminSession())
	var incomplete *admin.IncompleteAuditError
	require.ErrorAs(t, err, &incomplete)
	require.Len(t, incomplete.Failures, 1)
	assert.Equal(t, 3, incomplete.Failures[0].Page)
}

func TestReferenceExtractorIgnoresForeignURLs(t *testing.T) {
	e := newEnv(t)
	seedContent(t, e)

	refs, err := e.extractor().Extract(context.Background())
	require.NoError(t, err)

	var paths []string
	for _, r := range refs {
		paths = append(paths, r.Path)
	}
	assert.ElementsMatch(t, []string{"blog/live.jpg", "blog/draft.jpg", "portfolio/reel.mp4", "portfolio/reel.jpg", "avatars/ana.png"}, paths)
}
