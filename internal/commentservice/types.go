package commentservice

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

type Comment struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Rating      int       `json:"rating"`
	UserID      uuid.UUID `json:"user_id"`
	BlogID      uuid.UUID `json:"blog_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CommentWithAuthor struct {
	Comment
	Author userservice.Owner `json:"author"`
}

// blogRef is the part of a blog the comment rules need.
type blogRef struct {
	ID         uuid.UUID
	Title      string
	Slug       string
	OwnerID    uuid.UUID
	OwnerName  string
	OwnerEmail string
}

type AddCommentRequest struct {
	UserID      uuid.UUID `json:"-"`
	BlogSlug    string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Rating      int       `json:"rating"`
}

// UpdateCommentRequest carries a partial update. Nil and blank fields are left unchanged.
type UpdateCommentRequest struct {
	UserID      uuid.UUID `json:"-"`
	BlogSlug    string    `json:"-"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Rating      *int      `json:"rating"`
}

type CommentModel struct {
	db *sql.DB
}

type CommentService struct {
	db      *sql.DB
	m       *CommentModel
	mb      common.MessageProducer
	metrics *common.Metrics
	logger  *slog.Logger
}
