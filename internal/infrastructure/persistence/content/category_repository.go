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

// CategoryRepository stores blog and portfolio categories in one table keyed by kind.
type CategoryRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewCategoryRepository(db *database.DB, logger *logging.ChanneledLogger) *CategoryRepository {
	return &CategoryRepository{db: db, logger: logger}
}

const categoryColumns = `id, name, slug, kind, icon_path, created_at`

func (r *CategoryRepository) Collection() content.Collection { return content.CollectionCategory }

func (r *CategoryRepository) ListRows(ctx context.Context) ([]content.Row, error) {
	cats, err := r.findMany(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY kind, name`)
	if err != nil {
		return nil, err
	}
	rows := make([]content.Row, len(cats))
	for i, c := range cats {
		rows[i] = c
	}
	return rows, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*content.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) FindByKind(ctx context.Context, kind content.CategoryKind) ([]*content.Category, error) {
	return r.findMany(ctx, `SELECT `+categoryColumns+` FROM categories WHERE kind = ? ORDER BY name`, string(kind))
}

func (r *CategoryRepository) Store(ctx context.Context, c *content.Category) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, string(c.Kind), database.NullString(c.IconPath), database.FormatTime(c.CreatedAt))
	if err != nil {
		return insertErr(err, "category "+c.Slug)
	}
	r.logger.Content().Info("Category stored", "id", c.ID, "kind", c.Kind)
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *content.Category) error {
	res, err := r.db.Exec(ctx,
		`UPDATE categories SET name = ?, slug = ?, icon_path = ? WHERE id = ? AND kind = ?`,
		c.Name, c.Slug, database.NullString(c.IconPath), c.ID, string(c.Kind))
	return checkAffected(res, err, "category "+c.ID)
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "categories", id)
}

func (r *CategoryRepository) findMany(ctx context.Context, query string, args ...any) ([]*content.Category, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var cats []*content.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func scanCategory(s scanner) (*content.Category, error) {
	var c content.Category
	var kind, created string
	var icon sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &c.Slug, &kind, &icon, &created); err != nil {
		return nil, err
	}
	c.Kind = content.CategoryKind(kind)
	c.IconPath = database.StringPtr(icon)
	c.CreatedAt = database.ParseTime(created)
	return &c, nil
}
