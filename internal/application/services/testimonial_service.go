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

type TestimonialService struct {
	testimonials repositories.TestimonialRepository
	logger       *logging.ChanneledLogger
}

func NewTestimonialService(testimonials repositories.TestimonialRepository, logger *logging.ChanneledLogger) *TestimonialService {
	return &TestimonialService{testimonials: testimonials, logger: logger}
}

func (s *TestimonialService) ListPublished(ctx context.Context, featuredOnly bool) ([]*content.Testimonial, error) {
	list, err := s.testimonials.FindPublished(ctx, featuredOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return list, nil
}

func (s *TestimonialService) ListAll(ctx context.Context, sess *session.Session) ([]*content.Testimonial, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.testimonials.FindAll(ctx)
}

func (s *TestimonialService) Get(ctx context.Context, sess *session.Session, id string) (*content.Testimonial, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	t, err := s.testimonials.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get testimonial %s: %w", id, err)
	}
	if t == nil {
		return nil, notFound("testimonial", id)
	}
	return t, nil
}

func (s *TestimonialService) Create(ctx context.Context, sess *session.Session, t *content.Testimonial) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := prepareTestimonial(t); err != nil {
		return err
	}
	t.ID = security.GenerateULID()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = nil
	if err := s.testimonials.Store(ctx, t); err != nil {
		return err
	}
	s.logger.Content().Info("Testimonial created", "id", t.ID, "subjectId", sess.SubjectID)
	return nil
}

func (s *TestimonialService) Update(ctx context.Context, sess *session.Session, t *content.Testimonial) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := prepareTestimonial(t); err != nil {
		return err
	}
	t.UpdatedAt = nowPtr()
	if err := s.testimonials.Update(ctx, t); err != nil {
		return err
	}
	s.logger.Content().Info("Testimonial updated", "id", t.ID, "subjectId", sess.SubjectID)
	return nil
}

// Toggle flips the published flag.
func (s *TestimonialService) Toggle(ctx context.Context, sess *session.Session, id string) (*content.Testimonial, error) {
	t, err := s.Get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := s.testimonials.SetPublished(ctx, id, !t.Published); err != nil {
		return nil, err
	}
	t.Published = !t.Published
	s.logger.Content().Info("Testimonial toggled", "id", id, "published", t.Published, "subjectId", sess.SubjectID)
	return t, nil
}

func (s *TestimonialService) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.testimonials.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Content().Info("Testimonial deleted", "id", id, "subjectId", sess.SubjectID)
	return nil
}

func prepareTestimonial(t *content.Testimonial) error {
	if t == nil {
		return invalid("testimonial cannot be nil")
	}
	t.Name = strings.TrimSpace(t.Name)
	t.Content = strings.TrimSpace(t.Content)
	if t.Name == "" || t.Content == "" {
		return invalid("name and content are required")
	}
	if t.Rating == 0 {
		t.Rating = 5
	}
	if t.Rating < 1 || t.Rating > 5 {
		return invalid("rating must be between 1 and 5")
	}
	t.AvatarURL = trimmedPtr(t.AvatarURL)
	return nil
}
