// Package content provides the SQL repositories for content collections
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/persistence/database"
)

type scanner interface {
	Scan(dest ...any) error
}

type MediaRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewMediaRepository(db *database.DB, logger *logging.ChanneledLogger) *MediaRepository {
	return &MediaRepository{db: db, logger: logger}
}

const mediaColumns = `id, file_path, poster_path, type, folder, size_bytes, created_at`

func (r *MediaRepository) Collection() content.Collection { return content.CollectionMedia }

func (r *MediaRepository) ListRows(ctx context.Context) ([]content.Row, error) {
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

func (r *MediaRepository) FindByID(ctx context.Context, id string) (*content.MediaItem, error) {
	item, err := scanMedia(r.db.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media_items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load media item: %w", err)
	}
	return item, nil
}

func (r *MediaRepository) FindAll(ctx context.Context) ([]*content.MediaItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+mediaColumns+` FROM media_items ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query media items: %w", err)
	}
	defer rows.Close()

	var items []*content.MediaItem
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MediaRepository) Store(ctx context.Context, item *content.MediaItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO media_items (id, file_path, poster_path, type, folder, size_bytes, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.FilePath, database.NullString(item.PosterPath), string(item.Type), item.Folder,
		item.SizeBytes, database.FormatTime(item.CreatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("media item %s: %w", item.FilePath, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert media item: %w", err)
	}
	r.logger.Content().Info("Media item stored", "id", item.ID, "path", item.FilePath)
	return nil
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "media_items", id)
}

func scanMedia(s scanner) (*content.MediaItem, error) {
	var item content.MediaItem
	var poster sql.NullString
	var mediaType, created string
	if err := s.Scan(&item.ID, &item.FilePath, &poster, &mediaType, &item.Folder, &item.SizeBytes, &created); err != nil {
		return nil, err
	}
	item.PosterPath = database.StringPtr(poster)
	item.Type = content.MediaType(mediaType)
	item.CreatedAt = database.ParseTime(created)
	return &item, nil
}

// deleteByID removes one row and reports ErrNotFound when nothing matched.
func deleteByID(ctx context.Context, db *database.DB, table, id string) error {
	res, err := db.Exec(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// checkAffected turns a zero-row update into ErrNotFound.
func checkAffected(res sql.Result, err error, what string) error {
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
		}
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func insertErr(err error, what string) error {
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", what, repositories.ErrDuplicate)
	}
	return fmt.Errorf("failed to insert %s: %w", what, err)
}
