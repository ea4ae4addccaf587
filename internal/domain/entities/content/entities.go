// Package content defines the application's core content-related domain entities.
package content

import "time"

// Collection names the content collection a row belongs to. The set is closed.
type Collection string

const (
	CollectionPost          Collection = "post"
	CollectionPortfolioItem Collection = "portfolio_item"
	CollectionService       Collection = "service"
	CollectionTestimonial   Collection = "testimonial"
	CollectionCategory      Collection = "category"
	CollectionMedia         Collection = "media"
)

// AllCollections lists every collection that can own media, in scan order.
var AllCollections = []Collection{
	CollectionPost,
	CollectionPortfolioItem,
	CollectionService,
	CollectionTestimonial,
	CollectionCategory,
	CollectionMedia,
}

// Row is implemented by every content entity that may reference stored media.
// MediaPaths returns the raw stored values of its media fields; unset fields
// are omitted.
type Row interface {
	Collection() Collection
	RowID() string
	MediaPaths() []string
}

type Post struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Excerpt    string     `json:"excerpt"`
	Content    string     `json:"content"`
	CategoryID *string    `json:"categoryId,omitempty"`
	ImageURL   *string    `json:"imageUrl,omitempty"`
	Author     string     `json:"author"`
	ReadTime   string     `json:"readTime"`
	Published  bool       `json:"published"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

func (p *Post) Collection() Collection { return CollectionPost }
func (p *Post) RowID() string          { return p.ID }
func (p *Post) MediaPaths() []string   { return collect(p.ImageURL) }

type PortfolioItem struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	VideoURL    *string    `json:"videoUrl,omitempty"`
	PosterURL   *string    `json:"posterUrl,omitempty"`
	Featured    bool       `json:"featured"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (p *PortfolioItem) Collection() Collection { return CollectionPortfolioItem }
func (p *PortfolioItem) RowID() string          { return p.ID }
func (p *PortfolioItem) MediaPaths() []string {
	return collect(p.ImageURL, p.VideoURL, p.PosterURL)
}

// Service is an offering shown on the services page.
type Service struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	Features    []string   `json:"features"`
	Featured    bool       `json:"featured"`
	Active      bool       `json:"active"`
	SortOrder   int        `json:"sortOrder"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (s *Service) Collection() Collection { return CollectionService }
func (s *Service) RowID() string          { return s.ID }
func (s *Service) MediaPaths() []string   { return collect(s.ImageURL) }

type Testimonial struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Rating    int        `json:"rating"`
	AvatarURL *string    `json:"avatarUrl,omitempty"`
	Published bool       `json:"published"`
	Featured  bool       `json:"featured"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (t *Testimonial) Collection() Collection { return CollectionTestimonial }
func (t *Testimonial) RowID() string          { return t.ID }
func (t *Testimonial) MediaPaths() []string   { return collect(t.AvatarURL) }

// CategoryKind separates blog categories from portfolio categories.
type CategoryKind string

const (
	CategoryKindBlog      CategoryKind = "blog"
	CategoryKindPortfolio CategoryKind = "portfolio"
)

// Valid reports whether k is a known category kind.
func (k CategoryKind) Valid() bool {
	return k == CategoryKindBlog || k == CategoryKindPortfolio
}

type Category struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Slug      string       `json:"slug"`
	Kind      CategoryKind `json:"kind"`
	IconPath  *string      `json:"iconPath,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (c *Category) Collection() Collection { return CollectionCategory }
func (c *Category) RowID() string          { return c.ID }
func (c *Category) MediaPaths() []string   { return collect(c.IconPath) }

// MediaType is the kind of an uploaded media library item.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaItem is a media library row. Video items may carry a poster image.
type MediaItem struct {
	ID         string    `json:"id"`
	FilePath   string    `json:"filePath"`
	PosterPath *string   `json:"posterPath,omitempty"`
	Type       MediaType `json:"type"`
	Folder     string    `json:"folder"`
	SizeBytes  int64     `json:"sizeBytes"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (m *MediaItem) Collection() Collection { return CollectionMedia }
func (m *MediaItem) RowID() string          { return m.ID }
func (m *MediaItem) MediaPaths() []string {
	return collect(&m.FilePath, m.PosterPath)
}

func collect(fields ...*string) []string {
	var paths []string
	for _, f := range fields {
		if f != nil && *f != "" {
			paths = append(paths, *f)
		}
	}
	return paths
}
