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

type PostRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewPostRepository(db *database.DB, logger *logging.ChanneledLogger) *PostRepository {
	return &PostRepository{db: db, logger: logger}
}

const postColumns = `id, title, slug, excerpt, content, category_id, image_url, author, read_time, published, created_at, updated_at`

func (r *PostRepository) Collection() content.Collection { return content.CollectionPost }

// ListRows returns every post including drafts.
func (r *PostRepository) ListRows(ctx context.Context) ([]content.Row, error) {
	posts, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]content.Row, len(posts))
	for i, p := range posts {
		rows[i] = p
	}
	return rows, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*content.Post, error) {
	return r.findOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
}

func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*content.Post, error) {
	return r.findOne(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
}

func (r *PostRepository) FindAll(ctx context.Context) ([]*content.Post, error) {
	return r.findMany(ctx, `SELECT `+postColumns+` FROM posts ORDER BY created_at DESC, id`)
}

func (r *PostRepository) FindPublished(ctx context.Context) ([]*content.Post, error) {
	return r.findMany(ctx, `SELECT `+postColumns+` FROM posts WHERE published = ? ORDER BY created_at DESC, id`, true)
}

func (r *PostRepository) Store(ctx context.Context, p *content.Post) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Slug, p.Excerpt, p.Content, database.NullString(p.CategoryID),
		database.NullString(p.ImageURL), p.Author, p.ReadTime, p.Published,
		database.FormatTime(p.CreatedAt), database.FormatNullTime(p.UpdatedAt))
	if err != nil {
		return insertErr(err, "post "+p.Slug)
	}
	r.logger.Content().Info("Post stored", "id", p.ID, "slug", p.Slug)
	return nil
}

func (r *PostRepository) Update(ctx context.Context, p *content.Post) error {
	now := time.Now().UTC()
	p.UpdatedAt = &now
	res, err := r.db.Exec(ctx,
		`UPDATE posts SET title = ?, slug = ?, excerpt = ?, content = ?, category_id = ?, image_url = ?,
		 author = ?, read_time = ?, published = ?, updated_at = ? WHERE id = ?`,
		p.Title, p.Slug, p.Excerpt, p.Content, database.NullString(p.CategoryID), database.NullString(p.ImageURL),
		p.Author, p.ReadTime, p.Published, database.FormatTime(now), p.ID)
	return checkAffected(res, err, "post "+p.ID)
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "posts", id)
}

func (r *PostRepository) findOne(ctx context.Context, query string, args ...any) (*content.Post, error) {
	p, err := scanPost(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return p, nil
}

func (r *PostRepository) findMany(ctx context.Context, query string, args ...any) ([]*content.Post, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var posts []*content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func scanPost(s scanner) (*content.Post, error) {
	var p content.Post
	var category, image, updated sql.NullString
	var created string
	err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &category, &image,
		&p.Author, &p.ReadTime, &p.Published, &created, &updated)
	if err != nil {
		return nil, err
	}
	p.CategoryID = database.StringPtr(category)
	p.ImageURL = database.StringPtr(image)
	p.CreatedAt = database.ParseTime(created)
	p.UpdatedAt = database.ParseNullTime(updated)
	return &p, nil
}
