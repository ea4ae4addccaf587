// Package repositories defines the repository interfaces for content entities.
// These repositories abstract the data persistence details, ensuring the core
// application is clean and decoupled from the database.
package repositories

import (
	"context"
	"errors"

	"github.com/Diampra/octopus-server/internal/domain/entities/content"
)

// ErrNotFound is returned by FindBy* and mutations when no row matches.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique column such as a slug collides.
var ErrDuplicate = errors.New("duplicate")

// RowSource is the read side used by the storage audit. ListAll returns every
// row of the collection including drafts and inactive rows.
type RowSource interface {
	Collection() content.Collection
	ListRows(ctx context.Context) ([]content.Row, error)
}

type PostRepository interface {
	RowSource
	FindByID(ctx context.Context, id string) (*content.Post, error)
	FindBySlug(ctx context.Context, slug string) (*content.Post, error)
	FindAll(ctx context.Context) ([]*content.Post, error)
	FindPublished(ctx context.Context) ([]*content.Post, error)
	Store(ctx context.Context, post *content.Post) error
	Update(ctx context.Context, post *content.Post) error
	Delete(ctx context.Context, id string) error
}

type PortfolioRepository interface {
	RowSource
	FindByID(ctx context.Context, id string) (*content.PortfolioItem, error)
	FindAll(ctx context.Context) ([]*content.PortfolioItem, error)
	FindPublished(ctx context.Context, featuredOnly bool) ([]*content.PortfolioItem, error)
	Store(ctx context.Context, item *content.PortfolioItem) error
	Update(ctx context.Context, item *content.PortfolioItem) error
	Delete(ctx context.Context, id string) error
}

type ServiceRepository interface {
	RowSource
	FindByID(ctx context.Context, id string) (*content.Service, error)
	FindAll(ctx context.Context) ([]*content.Service, error)
	FindActive(ctx context.Context, featuredOnly bool) ([]*content.Service, error)
	Store(ctx context.Context, service *content.Service) error
	Update(ctx context.Context, service *content.Service) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type TestimonialRepository interface {
	RowSource
	FindByID(ctx context.Context, id string) (*content.Testimonial, error)
	FindAll(ctx context.Context) ([]*content.Testimonial, error)
	FindPublished(ctx context.Context, featuredOnly bool) ([]*content.Testimonial, error)
	Store(ctx context.Context, testimonial *content.Testimonial) error
	Update(ctx context.Context, testimonial *content.Testimonial) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepository interface {
	RowSource
	FindByID(ctx context.Context, id string) (*content.Category, error)
	FindByKind(ctx context.Context, kind content.CategoryKind) ([]*content.Category, error)
	Store(ctx context.Context, category *content.Category) error
	Update(ctx context.Context, category *content.Category) error
	Delete(ctx context.Context, id string) error
}

type MediaRepository interface {
	RowSource
	FindByID(ctx context.Context, id string) (*content.MediaItem, error)
	FindAll(ctx context.Context) ([]*content.MediaItem, error)
	Store(ctx context.Context, item *content.MediaItem) error
	Delete(ctx context.Context, id string) error
}
