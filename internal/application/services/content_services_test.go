package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", Slugify("  Hello, World! "))
	assert.Equal(t, "offset-printing-2024", Slugify("Offset printing -- 2024"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestPostServiceLifecycle(t *testing.T) {
	e := newEnv(t)
	svc := NewPostService(e.posts, e.categories, e.logger)
	ctx := context.Background()

	post := &content.Post{Title: "First Post", ImageURL: strPtr(" blog/a.jpg ")}
	require.NoError(t, svc.Create(ctx, adminSession(), post))
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "first-post", post.Slug)
	assert.Equal(t, "blog/a.jpg", *post.ImageURL)

	_, err := svc.GetPublishedBySlug(ctx, "first-post")
	assert.ErrorIs(t, err, repositories.ErrNotFound, "drafts are hidden from public reads")

	post.Published = true
	require.NoError(t, svc.Update(ctx, adminSession(), post))
	got, err := svc.GetPublishedBySlug(ctx, "first-post")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	dup := &content.Post{Title: "First Post"}
	assert.ErrorIs(t, svc.Create(ctx, adminSession(), dup), repositories.ErrDuplicate)

	assert.ErrorIs(t, svc.Create(ctx, adminSession(), &content.Post{Title: " "}), ErrValidation)
	assert.ErrorIs(t, svc.Create(ctx, adminSession(), &content.Post{Title: "x", CategoryID: strPtr("missing")}), ErrValidation)

	require.NoError(t, svc.Delete(ctx, adminSession(), post.ID))
	assert.ErrorIs(t, svc.Delete(ctx, adminSession(), post.ID), repositories.ErrNotFound)
}

func TestMutationsRequireAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	posts := NewPostService(e.posts, e.categories, e.logger)
	catalog := NewCatalogService(e.catalog, e.logger)
	testimonials := NewTestimonialService(e.testimonials, e.logger)
	categories := NewCategoryService(e.categories, e.logger)
	media := NewMediaService(e.media, e.logger)
	portfolio := NewPortfolioService(e.portfolio, e.categories, e.logger)

	for _, sess := range []*session.Session{nil, expiredSession(), editorSession()} {
		assert.Error(t, posts.Create(ctx, sess, &content.Post{Title: "x"}))
		assert.Error(t, portfolio.Create(ctx, sess, &content.PortfolioItem{Title: "x", ImageURL: strPtr("a.jpg")}))
		assert.Error(t, catalog.Create(ctx, sess, &content.Service{Title: "x"}))
		assert.Error(t, testimonials.Create(ctx, sess, &content.Testimonial{Name: "x", Content: "y"}))
		assert.Error(t, categories.Create(ctx, sess, &content.Category{Name: "x", Kind: content.CategoryKindBlog}))
		_, err := media.List(ctx, sess)
		assert.Error(t, err)
	}

	all, err := e.posts.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	svcs, err := e.catalog.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, svcs)
}

func TestCatalogToggleAndFeatures(t *testing.T) {
	e := newEnv(t)
	svc := NewCatalogService(e.catalog, e.logger)
	ctx := context.Background()

	s := &content.Service{Title: "Large Format", Features: []string{" Banners ", "", "Posters"}, Active: true}
	require.NoError(t, svc.Create(ctx, adminSession(), s))
	assert.Equal(t, []string{"Banners", "Posters"}, s.Features)

	toggled, err := svc.Toggle(ctx, adminSession(), s.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	active, err := svc.ListActive(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = svc.Toggle(ctx, adminSession(), "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTestimonialRatingAndToggle(t *testing.T) {
	e := newEnv(t)
	svc := NewTestimonialService(e.testimonials, e.logger)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Create(ctx, adminSession(), &content.Testimonial{Name: "A", Content: "B", Rating: 6}), ErrValidation)

	tm := &content.Testimonial{Name: "Ana", Content: "Great work"}
	require.NoError(t, svc.Create(ctx, adminSession(), tm))
	assert.Equal(t, 5, tm.Rating)

	toggled, err := svc.Toggle(ctx, adminSession(), tm.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Published)

	pub, err := svc.ListPublished(ctx, false)
	require.NoError(t, err)
	assert.Len(t, pub, 1)
}

func TestCategoryKindsAreSeparate(t *testing.T) {
	e := newEnv(t)
	svc := NewCategoryService(e.categories, e.logger)
	portfolio := NewPortfolioService(e.portfolio, e.categories, e.logger)
	ctx := context.Background()

	blogCat := &content.Category{Name: "News", Kind: content.CategoryKindBlog}
	require.NoError(t, svc.Create(ctx, adminSession(), blogCat))
	assert.Equal(t, "news", blogCat.Slug)

	_, err := svc.Get(ctx, adminSession(), content.CategoryKindPortfolio, blogCat.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, adminSession(), content.CategoryKindPortfolio, blogCat.ID), repositories.ErrNotFound)

	err = portfolio.Create(ctx, adminSession(), &content.PortfolioItem{Title: "Reel", VideoURL: strPtr("p/r.mp4"), CategoryID: &blogCat.ID})
	assert.ErrorIs(t, err, ErrValidation, "a blog category cannot classify portfolio items")

	_, err = svc.List(ctx, "other")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Delete(ctx, adminSession(), content.CategoryKindBlog, blogCat.ID))
}
