package services

import (
	"context"

	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
)

// MediaService exposes the media library. Rows are created by uploads.
type MediaService struct {
	media  repositories.MediaRepository
	logger *logging.ChanneledLogger
}

func NewMediaService(media repositories.MediaRepository, logger *logging.ChanneledLogger) *MediaService {
	return &MediaService{media: media, logger: logger}
}

func (s *MediaService) List(ctx context.Context, sess *session.Session) ([]*content.MediaItem, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	return s.media.FindAll(ctx)
}

// Delete removes the library row. The object stays in storage and shows up
// as an orphan in the next audit.
func (s *MediaService) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if err := s.media.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Content().Info("Media item deleted", "id", id, "subjectId", sess.SubjectID)
	return nil
}
