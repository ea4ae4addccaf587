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

type TestimonialRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewTestimonialRepository(db *database.DB, logger *logging.ChanneledLogger) *TestimonialRepository {
	return &TestimonialRepository{db: db, logger: logger}
}

const testimonialColumns = `id, name, role, content, rating, avatar_url, published, featured, created_at, updated_at`

func (r *TestimonialRepository) Collection() content.Collection { return content.CollectionTestimonial }

func (r *TestimonialRepository) ListRows(ctx context.Context) ([]content.Row, error) {
	items, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]content.Row, len(items))
	for i, item := range items {
		rows[i] = item
	}
	return rows, nil
}

func (r *TestimonialRepository) FindByID(ctx context.Context, id string) (*content.Testimonial, error) {
	t, err := scanTestimonial(r.db.QueryRow(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load testimonial: %w", err)
	}
	return t, nil
}

func (r *TestimonialRepository) FindAll(ctx context.Context) ([]*content.Testimonial, error) {
	return r.findMany(ctx, `SELECT `+testimonialColumns+` FROM testimonials ORDER BY created_at DESC, id`)
}

func (r *TestimonialRepository) FindPublished(ctx context.Context, featuredOnly bool) ([]*content.Testimonial, error) {
	if featuredOnly {
		return r.findMany(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE published = ? AND featured = ? ORDER BY created_at DESC, id`, true, true)
	}
	return r.findMany(ctx, `SELECT `+testimonialColumns+` FROM testimonials WHERE published = ? ORDER BY created_at DESC, id`, true)
}

func (r *TestimonialRepository) Store(ctx context.Context, t *content.Testimonial) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO testimonials (`+testimonialColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Role, t.Content, t.Rating, database.NullString(t.AvatarURL), t.Published, t.Featured,
		database.FormatTime(t.CreatedAt), database.FormatNullTime(t.UpdatedAt))
	if err != nil {
		return insertErr(err, "testimonial")
	}
	r.logger.Content().Info("Testimonial stored", "id", t.ID)
	return nil
}

func (r *TestimonialRepository) Update(ctx context.Context, t *content.Testimonial) error {
	now := time.Now().UTC()
	t.UpdatedAt = &now
	res, err := r.db.Exec(ctx,
		`UPDATE testimonials SET name = ?, role = ?, content = ?, rating = ?, avatar_url = ?, published = ?,
		 featured = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Role, t.Content, t.Rating, database.NullString(t.AvatarURL), t.Published, t.Featured,
		database.FormatTime(now), t.ID)
	return checkAffected(res, err, "testimonial "+t.ID)
}

func (r *TestimonialRepository) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := r.db.Exec(ctx, `UPDATE testimonials SET published = ?, updated_at = ? WHERE id = ?`,
		published, database.FormatTime(time.Now()), id)
	return checkAffected(res, err, "testimonial "+id)
}

func (r *TestimonialRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "testimonials", id)
}

func (r *TestimonialRepository) findMany(ctx context.Context, query string, args ...any) ([]*content.Testimonial, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query testimonials: %w", err)
	}
	defer rows.Close()

	var items []*content.Testimonial
	for rows.Next() {
		t, err := scanTestimonial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func scanTestimonial(s scanner) (*content.Testimonial, error) {
	var t content.Testimonial
	var avatar, updated sql.NullString
	var created string
	err := s.Scan(&t.ID, &t.Name, &t.Role, &t.Content, &t.Rating, &avatar, &t.Published, &t.Featured, &created, &updated)
	if err != nil {
		return nil, err
	}
	t.AvatarURL = database.StringPtr(avatar)
	t.CreatedAt = database.ParseTime(created)
	t.UpdatedAt = database.ParseNullTime(updated)
	return &t, nil
}
