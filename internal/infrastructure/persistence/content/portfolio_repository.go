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

type PortfolioRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewPortfolioRepository(db *database.DB, logger *logging.ChanneledLogger) *PortfolioRepository {
	return &PortfolioRepository{db: db, logger: logger}
}

const portfolioColumns = `id, title, description, category_id, image_url, video_url, poster_url, featured, published, created_at, updated_at`

func (r *PortfolioRepository) Collection() content.Collection { return content.CollectionPortfolioItem }

func (r *PortfolioRepository) ListRows(ctx context.Context) ([]content.Row, error) {
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

func (r *PortfolioRepository) FindByID(ctx context.Context, id string) (*content.PortfolioItem, error) {
	item, err := scanPortfolio(r.db.QueryRow(ctx, `SELECT `+portfolioColumns+` FROM portfolio_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio item: %w", err)
	}
	return item, nil
}

func (r *PortfolioRepository) FindAll(ctx context.Context) ([]*content.PortfolioItem, error) {
	return r.findMany(ctx, `SELECT `+portfolioColumns+` FROM portfolio_items ORDER BY created_at DESC, id`)
}

func (r *PortfolioRepository) FindPublished(ctx context.Context, featuredOnly bool) ([]*content.PortfolioItem, error) {
	if featuredOnly {
		return r.findMany(ctx, `SELECT `+portfolioColumns+` FROM portfolio_items WHERE published = ? AND featured = ? ORDER BY created_at DESC, id`, true, true)
	}
	return r.findMany(ctx, `SELECT `+portfolioColumns+` FROM portfolio_items WHERE published = ? ORDER BY created_at DESC, id`, true)
}

func (r *PortfolioRepository) Store(ctx context.Context, item *content.PortfolioItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO portfolio_items (`+portfolioColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Description, database.NullString(item.CategoryID),
		database.NullString(item.ImageURL), database.NullString(item.VideoURL), database.NullString(item.PosterURL),
		item.Featured, item.Published, database.FormatTime(item.CreatedAt), database.FormatNullTime(item.UpdatedAt))
	if err != nil {
		return insertErr(err, "portfolio item")
	}
	r.logger.Content().Info("Portfolio item stored", "id", item.ID)
	return nil
}

func (r *PortfolioRepository) Update(ctx context.Context, item *content.PortfolioItem) error {
	now := time.Now().UTC()
	item.UpdatedAt = &now
	res, err := r.db.Exec(ctx,
		`UPDATE portfolio_items SET title = ?, description = ?, category_id = ?, image_url = ?, video_url = ?,
		 poster_url = ?, featured = ?, published = ?, updated_at = ? WHERE id = ?`,
		item.Title, item.Description, database.NullString(item.CategoryID), database.NullString(item.ImageURL),
		database.NullString(item.VideoURL), database.NullString(item.PosterURL), item.Featured, item.Published,
		database.FormatTime(now), item.ID)
	return checkAffected(res, err, "portfolio item "+item.ID)
}

func (r *PortfolioRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "portfolio_items", id)
}

func (r *PortfolioRepository) findMany(ctx context.Context, query string, args ...any) ([]*content.PortfolioItem, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio items: %w", err)
	}
	defer rows.Close()

	var items []*content.PortfolioItem
	for rows.Next() {
		item, err := scanPortfolio(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanPortfolio(s scanner) (*content.PortfolioItem, error) {
	var item content.PortfolioItem
	var category, image, video, poster, updated sql.NullString
	var created string
	err := s.Scan(&item.ID, &item.Title, &item.Description, &category, &image, &video, &poster,
		&item.Featured, &item.Published, &created, &updated)
	if err != nil {
		return nil, err
	}
	item.CategoryID = database.StringPtr(category)
	item.ImageURL = database.StringPtr(image)
	item.VideoURL = database.StringPtr(video)
	item.PosterURL = database.StringPtr(poster)
	item.CreatedAt = database.ParseTime(created)
	item.UpdatedAt = database.ParseNullTime(updated)
	return &item, nil
}
