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

// PortfolioService orchestrates portfolio item operations.
type PortfolioService struct {
	items      repositories.PortfolioRepository
	categories repositories.CategoryRepository
	logger     *logging.ChanneledLogger
}

func NewPortfolioService(items repositories.PortfolioRepository, categories repositories.CategoryRepository, logger *logging.ChanneledLogger) *PortfolioService {
	return &PortfolioService{items: items, categories: categories, logger: logger}
}

func (s *PortfolioService) ListPublished(ctx context.Context, featuredOnly bool) ([]*content.PortfolioItem, error) {
	items, err := s.items.FindPublished(ctx, featuredOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio: %w", err)
	}
	return items, nil
}

func (s *PortfolioService) ListAll(ctx context.Context, sess *session.Session) ([]*content.PortfolioItem, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.items.FindAll(ctx)
}

func (s *PortfolioService) Get(ctx context.Context, sess *session.Session, id string) (*content.PortfolioItem, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio item %s: %w", id, err)
	}
	if item == nil {
		return nil, notFound("portfolio item", id)
	}
	return item, nil
}

func (s *PortfolioService) Create(ctx context.Context, sess *session.Session, item *content.PortfolioItem) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.prepare(ctx, item); err != nil {
		return err
	}
	item.ID = security.GenerateULID()
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = nil
	if err := s.items.Store(ctx, item); err != nil {
		return err
	}
	s.logger.Content().Info("Portfolio item created", "id", item.ID, "subjectId", sess.SubjectID)
	return nil
}

func (s *PortfolioService) Update(ctx context.Context, sess *session.Session, item *content.PortfolioItem) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.prepare(ctx, item); err != nil {
		return err
	}
	item.UpdatedAt = nowPtr()
	if err := s.items.Update(ctx, item); err != nil {
		return err
	}
	s.logger.Content().Info("Portfolio item updated", "id", item.ID, "subjectId", sess.SubjectID)
	return nil
}

func (s *PortfolioService) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.items.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Content().Info("Portfolio item deleted", "id", id, "subjectId", sess.SubjectID)
	return nil
}

func (s *PortfolioService) prepare(ctx context.Context, item *content.PortfolioItem) error {
	if item == nil {
		return invalid("portfolio item cannot be nil")
	}
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return invalid("title is required")
	}
	item.ImageURL = trimmedPtr(item.ImageURL)
	item.VideoURL = trimmedPtr(item.VideoURL)
	item.PosterURL = trimmedPtr(item.PosterURL)
	if item.ImageURL == nil && item.VideoURL == nil {
		return invalid("an image or a video is required")
	}
	item.CategoryID = trimmedPtr(item.CategoryID)
	return checkCategory(ctx, s.categories, item.CategoryID, content.CategoryKindPortfolio)
}
