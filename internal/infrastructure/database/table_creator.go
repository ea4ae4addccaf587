// Package database provides schema creation for a new Octopus database
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	persistence "github.com/Diampra/octopus-server/internal/infrastructure/persistence/database"
	"github.com/Diampra/octopus-server/internal/infrastructure/security"
)

// TableCreator handles the creation of the database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
// Every statement is idempotent.
func (tc *TableCreator) CreateSchema(ctx context.Context, db *persistence.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(ctx, indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// SeedInitialContent adds the default categories the admin UI expects.
func (tc *TableCreator) SeedInitialContent(ctx context.Context, db *persistence.DB) error {
	defaults := []struct{ name, slug, kind string }{
		{"General", "general", "blog"},
		{"Printing", "printing", "portfolio"},
	}
	for _, d := range defaults {
		var id string
		err := db.QueryRow(ctx, `SELECT id FROM categories WHERE slug = ? AND kind = ?`, d.slug, d.kind).Scan(&id)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check for default category %s: %w", d.slug, err)
		}
		_, err = db.Exec(ctx, `INSERT INTO categories (id, name, slug, kind, icon_path, created_at) VALUES (?, ?, ?, ?, NULL, ?)`,
			security.GenerateULID(), d.name, d.slug, d.kind, persistence.FormatTime(time.Now()))
		if err != nil {
			return fmt.Errorf("failed to insert default category %s: %w", d.slug, err)
		}
	}
	return nil
}

// Column types are limited to TEXT, INTEGER, BIGINT and BOOLEAN so the same
// statements run on SQLite, libSQL and PostgreSQL.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (id TEXT PRIMARY KEY, email TEXT NOT NULL UNIQUE, password_hash TEXT NOT NULL, is_admin BOOLEAN NOT NULL DEFAULT FALSE, created_at TEXT NOT NULL)`,
	`CREATE TABLE IF NOT EXISTS sessions (id TEXT PRIMARY KEY, user_id TEXT NOT NULL REFERENCES users(id), created_at TEXT NOT NULL, expires_at TEXT NOT NULL, revoked_at TEXT)`,
	`CREATE TABLE IF NOT EXISTS categories (id TEXT PRIMARY KEY, name TEXT NOT NULL, slug TEXT NOT NULL, kind TEXT NOT NULL, icon_path TEXT, created_at TEXT NOT NULL, UNIQUE(kind, slug))`,
	`CREATE TABLE IF NOT EXISTS posts (id TEXT PRIMARY KEY, title TEXT NOT NULL, slug TEXT NOT NULL UNIQUE, excerpt TEXT NOT NULL DEFAULT '', content TEXT NOT NULL DEFAULT '', category_id TEXT, image_url TEXT, author TEXT NOT NULL DEFAULT '', read_time TEXT NOT NULL DEFAULT '', published BOOLEAN NOT NULL DEFAULT FALSE, created_at TEXT NOT NULL, updated_at TEXT)`,
	`CREATE TABLE IF NOT EXISTS portfolio_items (id TEXT PRIMARY KEY, title TEXT NOT NULL, description TEXT NOT NULL DEFAULT '', category_id TEXT, image_url TEXT, video_url TEXT, poster_url TEXT, featured BOOLEAN NOT NULL DEFAULT FALSE, published BOOLEAN NOT NULL DEFAULT TRUE, created_at TEXT NOT NULL, updated_at TEXT)`,
	`CREATE TABLE IF NOT EXISTS services (id TEXT PRIMARY KEY, title TEXT NOT NULL, slug TEXT NOT NULL UNIQUE, description TEXT NOT NULL DEFAULT '', icon TEXT NOT NULL DEFAULT '', image_url TEXT, features TEXT NOT NULL DEFAULT '[]', featured BOOLEAN NOT NULL DEFAULT FALSE, active BOOLEAN NOT NULL DEFAULT TRUE, sort_order INTEGER NOT NULL DEFAULT 0, created_at TEXT NOT NULL, updated_at TEXT)`,
	`CREATE TABLE IF NOT EXISTS testimonials (id TEXT PRIMARY KEY, name TEXT NOT NULL, role TEXT NOT NULL DEFAULT '', content TEXT NOT NULL, rating INTEGER NOT NULL DEFAULT 5, avatar_url TEXT, published BOOLEAN NOT NULL DEFAULT FALSE, featured BOOLEAN NOT NULL DEFAULT FALSE, created_at TEXT NOT NULL, updated_at TEXT)`,
	`CREATE TABLE IF NOT EXISTS media_items (id TEXT PRIMARY KEY, file_path TEXT NOT NULL UNIQUE, poster_path TEXT, type TEXT NOT NULL, folder TEXT NOT NULL DEFAULT '', size_bytes BIGINT NOT NULL DEFAULT 0, created_at TEXT NOT NULL)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_category_id ON posts(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_portfolio_items_category_id ON portfolio_items(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_services_active ON services(active)`,
	`CREATE INDEX IF NOT EXISTS idx_testimonials_published ON testimonials(published)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_kind ON categories(kind)`,
	`CREATE INDEX IF NOT EXISTS idx_media_items_folder ON media_items(folder)`,
}
