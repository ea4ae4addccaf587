package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/persistence/database"
)

type ServiceRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewServiceRepository(db *database.DB, logger *logging.ChanneledLogger) *ServiceRepository {
	return &ServiceRepository{db: db, logger: logger}
}

const serviceColumns = `id, title, slug, description, icon, image_url, features, featured, active, sort_order, created_at, updated_at`

func (r *ServiceRepository) Collection() content.Collection { return content.CollectionService }

// ListRows returns every service including inactive ones.
func (r *ServiceRepository) ListRows(ctx context.Context) ([]content.Row, error) {
	services, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]content.Row, len(services))
	for i, s := range services {
		rows[i] = s
	}
	return rows, nil
}

func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*content.Service, error) {
	s, err := scanService(r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	return s, nil
}

func (r *ServiceRepository) FindAll(ctx context.Context) ([]*content.Service, error) {
	return r.findMany(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY sort_order, title`)
}

func (r *ServiceRepository) FindActive(ctx context.Context, featuredOnly bool) ([]*content.Service, error) {
	if featuredOnly {
		return r.findMany(ctx, `SELECT `+serviceColumns+` FROM services WHERE active = ? AND featured = ? ORDER BY sort_order, title`, true, true)
	}
	return r.findMany(ctx, `SELECT `+serviceColumns+` FROM services WHERE active = ? ORDER BY sort_order, title`, true)
}

func (r *ServiceRepository) Store(ctx context.Context, s *content.Service) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO services (`+serviceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Title, s.Slug, s.Description, s.Icon, database.NullString(s.ImageURL),
		database.EncodeStrings(s.Features), s.Featured, s.Active, s.SortOrder,
		database.FormatTime(s.CreatedAt), database.FormatNullTime(s.UpdatedAt))
	if err != nil {
		return insertErr(err, "service "+s.Slug)
	}
	r.logger.Content().Info("Service stored", "id", s.ID, "slug", s.Slug)
	return nil
}

func (r *ServiceRepository) Update(ctx context.Context, s *content.Service) error {
	now := time.Now().UTC()
	s.UpdatedAt = &now
	res, err := r.db.Exec(ctx,
		`UPDATE services SET title = ?, slug = ?, description = ?, icon = ?, image_url = ?, features = ?,
		 featured = ?, active = ?, sort_order = ?, updated_at = ? WHERE id = ?`,
		s.Title, s.Slug, s.Description, s.Icon, database.NullString(s.ImageURL), database.EncodeStrings(s.Features),
		s.Featured, s.Active, s.SortOrder, database.FormatTime(now), s.ID)
	return checkAffected(res, err, "service "+s.ID)
}

func (r *ServiceRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.Exec(ctx, `UPDATE services SET active = ?, updated_at = ? WHERE id = ?`,
		active, database.FormatTime(time.Now()), id)
	return checkAffected(res, err, "service "+id)
}

func (r *ServiceRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "services", id)
}

func (r *ServiceRepository) findMany(ctx context.Context, query string, args ...any) ([]*content.Service, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var services []*content.Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func scanService(sc scanner) (*content.Service, error) {
	var s content.Service
	var image, updated sql.NullString
	var features, created string
	err := sc.Scan(&s.ID, &s.Title, &s.Slug, &s.Description, &s.Icon, &image, &features,
		&s.Featured, &s.Active, &s.SortOrder, &created, &updated)
	if err != nil {
		return nil, err
	}
	s.ImageURL = database.StringPtr(image)
	s.Features = database.DecodeStrings(features)
	s.CreatedAt = database.ParseTime(created)
	s.UpdatedAt = database.ParseNullTime(updated)
	return &s, nil
}
