package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/security"
)

// PostService orchestrates blog post operations.
type PostService struct {
	posts      repositories.PostRepository
	categories repositories.CategoryRepository
	logger     *logging.ChanneledLogger
}

func NewPostService(posts repositories.PostRepository, categories repositories.CategoryRepository, logger *logging.ChanneledLogger) *PostService {
	return &PostService{posts: posts, categories: categories, logger: logger}
}

// ListPublished returns published posts, newest first.
func (s *PostService) ListPublished(ctx context.Context) ([]*content.Post, error) {
	posts, err := s.posts.FindPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPublishedBySlug hides drafts from public readers.
func (s *PostService) GetPublishedBySlug(ctx context.Context, slug string) (*content.Post, error) {
	post, err := s.posts.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", slug, err)
	}
	if post == nil || !post.Published {
		return nil, notFound("post", slug)
	}
	return post, nil
}

// ListAll includes drafts.
func (s *PostService) ListAll(ctx context.Context, sess *session.Session) ([]*content.Post, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.posts.FindAll(ctx)
}

func (s *PostService) Get(ctx context.Context, sess *session.Session, id string) (*content.Post, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	if post == nil {
		return nil, notFound("post", id)
	}
	return post, nil
}

func (s *PostService) Create(ctx context.Context, sess *session.Session, post *content.Post) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.prepare(ctx, post); err != nil {
		return err
	}
	post.ID = security.GenerateULID()
	post.CreatedAt = time.Now().UTC()
	post.UpdatedAt = nil
	if err := s.posts.Store(ctx, post); err != nil {
		return err
	}
	s.logger.Content().Info("Post created", "id", post.ID, "subjectId", sess.SubjectID)
	return nil
}

func (s *PostService) Update(ctx context.Context, sess *session.Session, post *content.Post) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.prepare(ctx, post); err != nil {
		return err
	}
	post.UpdatedAt = nowPtr()
	if err := s.posts.Update(ctx, post); err != nil {
		return err
	}
	s.logger.Content().Info("Post updated", "id", post.ID, "subjectId", sess.SubjectID)
	return nil
}

// Delete removes the row only. Its image becomes an orphan for the next audit.
func (s *PostService) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Content().Info("Post deleted", "id", id, "subjectId", sess.SubjectID)
	return nil
}

func (s *PostService) prepare(ctx context.Context, post *content.Post) error {
	if post == nil {
		return invalid("post cannot be nil")
	}
	post.Title = strings.TrimSpace(post.Title)
	if post.Title == "" {
		return invalid("title is required")
	}
	slug, err := slugOrDerived(post.Slug, post.Title)
	if err != nil {
		return err
	}
	post.Slug = slug
	post.ImageURL = trimmedPtr(post.ImageURL)
	post.CategoryID = trimmedPtr(post.CategoryID)
	return checkCategory(ctx, s.categories, post.CategoryID, content.CategoryKindBlog)
}

// checkCategory verifies that an optional category reference exists and has the right kind.
func checkCategory(ctx context.Context, categories repositories.CategoryRepository, id *string, kind content.CategoryKind) error {
	if id == nil {
		return nil
	}
	cat, err := categories.FindByID(ctx, *id)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if cat == nil || cat.Kind != kind {
		return invalid("unknown %s category %q", kind, *id)
	}
	return nil
}
