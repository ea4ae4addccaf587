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

// CatalogService manages the offered services shown on the services page.
type CatalogService struct {
	services repositories.ServiceRepository
	logger   *logging.ChanneledLogger
}

func NewCatalogService(services repositories.ServiceRepository, logger *logging.ChanneledLogger) *CatalogService {
	return &CatalogService{services: services, logger: logger}
}

// ListActive returns active services ordered by sort order.
func (s *CatalogService) ListActive(ctx context.Context, featuredOnly bool) ([]*content.Service, error) {
	services, err := s.services.FindActive(ctx, featuredOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) ListAll(ctx context.Context, sess *session.Session) ([]*content.Service, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.services.FindAll(ctx)
}

func (s *CatalogService) Get(ctx context.Context, sess *session.Session, id string) (*content.Service, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service %s: %w", id, err)
	}
	if svc == nil {
		return nil, notFound("service", id)
	}
	return svc, nil
}

func (s *CatalogService) Create(ctx context.Context, sess *session.Session, svc *content.Service) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := prepareService(svc); err != nil {
		return err
	}
	svc.ID = security.GenerateULID()
	svc.CreatedAt = time.Now().UTC()
	svc.UpdatedAt = nil
	if err := s.services.Store(ctx, svc); err != nil {
		return err
	}
	s.logger.Content().Info("Service created", "id", svc.ID, "subjectId", sess.SubjectID)
	return nil
}

func (s *CatalogService) Update(ctx context.Context, sess *session.Session, svc *content.Service) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := prepareService(svc); err != nil {
		return err
	}
	svc.UpdatedAt = nowPtr()
	if err := s.services.Update(ctx, svc); err != nil {
		return err
	}
	s.logger.Content().Info("Service updated", "id", svc.ID, "subjectId", sess.SubjectID)
	return nil
}

// Toggle flips the active flag and returns the updated service.
func (s *CatalogService) Toggle(ctx context.Context, sess *session.Session, id string) (*content.Service, error) {
	svc, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := s.services.SetActive(ctx, id, !svc.Active); err != nil {
		return nil, err
	}
	svc.Active = !svc.Active
	s.logger.Content().Info("Service toggled", "id", id, "active", svc.Active, "subjectId", sess.SubjectID)
	return svc, nil
}

func (s *CatalogService) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.services.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Content().Info("Service deleted", "id", id, "subjectId", sess.SubjectID)
	return nil
}

func prepareService(svc *content.Service) error {
	if svc == nil {
		return invalid("service cannot be nil")
	}
	svc.Title = strings.TrimSpace(svc.Title)
	if svc.Title == "" {
		return invalid("title is required")
	}
	slug, err := slugOrDerived(svc.Slug, svc.Title)
	if err != nil {
		return err
	}
	svc.Slug = slug
	svc.ImageURL = trimmedPtr(svc.ImageURL)

	features := make([]string, 0, len(svc.Features))
	for _, f := range svc.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	svc.Features = features
	return nil
}
