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

// CategoryService manages blog and portfolio categories. Every method is
// scoped to one kind so a blog route cannot edit a portfolio category.
type CategoryService struct {
	categories repositories.CategoryRepository
	logger     *logging.ChanneledLogger
}

func NewCategoryService(categories repositories.CategoryRepository, logger *logging.ChanneledLogger) *CategoryService {
	return &CategoryService{categories: categories, logger: logger}
}

func (s *CategoryService) List(ctx context.Context, kind content.CategoryKind) ([]*content.Category, error) {
	if !kind.Valid() {
		return nil, invalid("unknown category kind %q", kind)
	}
	cats, err := s.categories.FindByKind(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, sess *session.Session, kind content.CategoryKind, id string) (*content.Category, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	cat, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category %s: %w", id, err)
	}
	if cat == nil || cat.Kind != kind {
		return nil, notFound("category", id)
	}
	return cat, nil
}

func (s *CategoryService) Create(ctx context.Context, sess *session.Session, cat *content.Category) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := prepareCategory(cat); err != nil {
		return err
	}
	cat.ID = security.GenerateULID()
	cat.CreatedAt = time.Now().UTC()
	if err := s.categories.Store(ctx, cat); err != nil {
		return err
	}
	s.logger.Content().Info("Category created", "id", cat.ID, "kind", cat.Kind, "subjectId", sess.SubjectID)
	return nil
}

func (s *CategoryService) Update(ctx context.Context, sess *session.Session, cat *content.Category) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := prepareCategory(cat); err != nil {
		return err
	}
	if err := s.categories.Update(ctx, cat); err != nil {
		return err
	}
	s.logger.Content().Info("Category updated", "id", cat.ID, "subjectId", sess.SubjectID)
	return nil
}

func (s *CategoryService) Delete(ctx context.Context, sess *session.Session, kind content.CategoryKind, id string) error {
	if _, err := s.Get(ctx, sess, kind, id); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Content().Info("Category deleted", "id", id, "subjectId", sess.SubjectID)
	return nil
}

func prepareCategory(cat *content.Category) error {
	if cat == nil {
		return invalid("category cannot be nil")
	}
	if !cat.Kind.Valid() {
		return invalid("unknown category kind %q", cat.Kind)
	}
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return invalid("name is required")
	}
	slug, err := slugOrDerived(cat.Slug, cat.Name)
	if err != nil {
		return err
	}
	cat.Slug = slug
	cat.IconPath = trimmedPtr(cat.IconPath)
	return nil
}
