package blogservice

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// maxSlugAttempts bounds how often a write is retried after losing a slug race.
	maxSlugAttempts = 3
)

type Blog struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	// Content is stored in Markdown format.
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Slug      string    `json:"slug"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// BlogDetail is a single blog together with its owner.
type BlogDetail struct {
	Blog
	Owner userservice.Owner `json:"owner"`
}

// BlogSummary is the list projection of a blog. It carries no content.
type BlogSummary struct {
	ID        uuid.UUID         `json:"id"`
	Title     string            `json:"title"`
	Image     string            `json:"image"`
	Slug      string            `json:"slug"`
	Author    userservice.Owner `json:"author"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type BlogPage struct {
	Blogs      []BlogSummary `json:"blogs"`
	Pagination Pagination    `json:"pagination"`
}

type CreateBlogRequest struct {
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Image   string    `json:"image"`
	UserID  uuid.UUID `json:"-"`
}

// UpdateBlogRequest carries a partial update. Nil and blank fields are left unchanged.
type UpdateBlogRequest struct {
	ID      uuid.UUID `json:"-"`
	UserID  uuid.UUID `json:"-"`
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Image   *string   `json:"image"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	db      *sql.DB
	m       *BlogModel
	c       *common.Cache
	metrics *common.Metrics
	logger  *slog.Logger

	// cacheMu orders cache fills against invalidations. generation grows on
	// every invalidation so a fill that started before one is dropped.
	cacheMu    sync.Mutex
	generation uint64
}
