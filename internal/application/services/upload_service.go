package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/messaging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	"github.com/Diampra/octopus-server/internal/infrastructure/security"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
)

var (
	ErrUploadTooLarge       = errors.New("upload exceeds the size limit")
	ErrUnsupportedMediaType = errors.New("only image and video uploads are accepted")
)

const defaultUploadFolder = "media"

var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*(/[a-z0-9][a-z0-9_-]*)*$`)

// UploadInput describes one file to store.
type UploadInput struct {
	Folder      string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	// RecordMedia adds a media library row for the upload.
	RecordMedia bool
}

// UploadResult is returned to the admin UI. Path is what content rows store.
type UploadResult struct {
	Path  string             `json:"path"`
	URL   string             `json:"url"`
	Media *content.MediaItem `json:"media,omitempty"`
}

// UploadService stores admin uploads under generated names.
type UploadService struct {
	store       storage.ObjectStore
	media       repositories.MediaRepository
	publisher   messaging.Publisher
	maxBytes    int64
	prefix      string
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewUploadService(store storage.ObjectStore, media repositories.MediaRepository, publisher messaging.Publisher, maxBytes int64, prefix string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *UploadService {
	return &UploadService{
		store:       store,
		media:       media,
		publisher:   publisher,
		maxBytes:    maxBytes,
		prefix:      strings.Trim(prefix, "/"),
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Upload writes the file to <prefix>/<folder>/<uuid><ext>.
func (s *UploadService) Upload(ctx context.Context, sess *session.Session, in UploadInput) (*UploadResult, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}

	marker := s.perfTracker.StartOperation("storage:upload")
	defer marker.Complete()

	if s.maxBytes > 0 && in.Size > s.maxBytes {
		marker.SetError(ErrUploadTooLarge)
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrUploadTooLarge, in.Size, s.maxBytes)
	}

	mediaType, ok := mediaTypeOf(in.ContentType)
	if !ok {
		marker.SetError(ErrUnsupportedMediaType)
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMediaType, in.ContentType)
	}

	folder := strings.Trim(strings.ToLower(strings.TrimSpace(in.Folder)), "/")
	if folder == "" {
		folder = defaultUploadFolder
	}
	if !folderPattern.MatchString(folder) {
		return nil, invalid("folder %q may only contain lowercase letters, digits, '-', '_' and '/'", in.Folder)
	}
	if s.prefix != "" {
		folder = s.prefix + "/" + folder
	}

	key := folder + "/" + uuid.NewString() + extensionFor(in.FileName, in.ContentType)

	body := in.Body
	if s.maxBytes > 0 {
		body = &limitedReader{r: io.LimitReader(in.Body, s.maxBytes+1), limit: s.maxBytes}
	}
	if err := s.store.Put(ctx, key, body, in.Size, in.ContentType); err != nil {
		marker.SetError(err)
		if errors.Is(err, ErrUploadTooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	result := &UploadResult{Path: key, URL: s.store.PublicURL(key)}

	if in.RecordMedia {
		item := &content.MediaItem{
			ID:        security.GenerateULID(),
			FilePath:  key,
			Type:      mediaType,
			Folder:    folder,
			SizeBytes: in.Size,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.media.Store(ctx, item); err != nil {
			// The object is now an orphan; the next audit reports it.
			marker.SetError(err)
			return nil, fmt.Errorf("failed to record media item: %w", err)
		}
		result.Media = item
	}

	s.logger.Storage().Info("Upload stored", "path", key, "size", in.Size, "subjectId", sess.SubjectID)
	if err := s.publisher.Publish(ctx, messaging.SubjectObjectUploaded, sess.SubjectID, map[string]any{"path": key, "size": in.Size}); err != nil {
		s.logger.Storage().Warn("Failed to publish upload event", "path", key, "error", err.Error())
	}
	return result, nil
}

func mediaTypeOf(contentType string) (content.MediaType, bool) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", false
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return content.MediaTypeImage, true
	case strings.HasPrefix(mt, "video/"):
		return content.MediaTypeVideo, true
	}
	return "", false
}

var knownExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/avif":      ".avif",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"video/quicktime": ".mov",
}

func extensionFor(fileName, contentType string) string {
	if ext := strings.ToLower(path.Ext(fileName)); ext != "" && len(ext) <= 6 {
		return ext
	}
	mt, _, _ := mime.ParseMediaType(contentType)
	if ext, ok := knownExtensions[mt]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// limitedReader fails once more than limit bytes were read, for bodies whose
// declared size was wrong.
type limitedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.read > l.limit {
		return n, ErrUploadTooLarge
	}
	return n, err
}
