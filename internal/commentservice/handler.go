package commentservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

var (
	ErrAlreadyReviewed = errors.New("you have already reviewed this blog")
)

func NewCommentService(db *sql.DB, mb common.MessageProducer, metrics *common.Metrics, logger *slog.Logger) *CommentService {
	return &CommentService{
		db:      db,
		m:       newCommentModel(db),
		mb:      mb,
		metrics: metrics,
		logger:  logger,
	}
}

// AddComment stores the first and only review of req.UserID on the blog identified by req.BlogSlug.
func (s *CommentService) AddComment(ctx context.Context, req *AddCommentRequest) (*Comment, error) {
	if req.UserID == uuid.Nil {
		return nil, common.ErrUnauthorized
	}

	c := Comment{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Rating:      req.Rating,
		UserID:      req.UserID,
	}

	v := common.NewValidator()
	validateTitle(v, c.Title)
	validateDescription(v, c.Description)
	validateRating(v, c.Rating)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.getBlogBySlug(ctx, req.BlogSlug)
	if err != nil {
		return nil, err
	}
	c.BlogID = blog.ID

	err = common.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		reviewed, err := s.m.exists(tx, ctx, c.UserID, c.BlogID)
		if err != nil {
			return err
		}

		if reviewed {
			return ErrAlreadyReviewed
		}

		return s.m.insert(tx, ctx, &c)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CounterComments.Inc()
	s.notifyOwner(ctx, blog, &c)

	return &c, nil
}

// UpdateComment changes the review req.UserID left on the blog identified by req.BlogSlug.
func (s *CommentService) UpdateComment(ctx context.Context, req *UpdateCommentRequest) (*Comment, error) {
	if req.UserID == uuid.Nil {
		return nil, common.ErrUnauthorized
	}

	blog, err := s.m.getBlogBySlug(ctx, req.BlogSlug)
	if err != nil {
		return nil, err
	}

	c, err := s.m.getByUserAndBlog(ctx, req.UserID, blog.ID)
	if err != nil {
		return nil, err
	}

	if err := userservice.AuthorizeMutation(req.UserID, c.UserID); err != nil {
		return nil, err
	}

	changed := map[string]any{}
	v := common.NewValidator()

	if title, ok := provided(req.Title); ok && title != c.Title {
		validateTitle(v, title)
		c.Title = title
		changed["title"] = title
	}

	if description, ok := provided(req.Description); ok && description != c.Description {
		validateDescription(v, description)
		c.Description = description
		changed["description"] = description
	}

	if req.Rating != nil {
		validateRating(v, *req.Rating)
		if *req.Rating != c.Rating {
			c.Rating = *req.Rating
			changed["rating"] = *req.Rating
		}
	}

	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if len(changed) == 0 {
		return c, nil
	}

	if err := s.m.update(ctx, c, changed); err != nil {
		return nil, err
	}

	return c, nil
}

// DeleteComment removes a comment. Its author and the owner of the blog it was left on may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return common.ErrUnauthorized
	}

	c, blogOwner, err := s.m.getByID(ctx, commentID)
	if err != nil {
		return err
	}

	if err := userservice.AuthorizeMutation(userID, c.UserID); err != nil {
		if err := userservice.AuthorizeMutation(userID, blogOwner); err != nil {
			return err
		}
	}

	return s.m.delete(ctx, c.ID)
}

// GetComments lists the comments of a blog, newest first. A blog without comments yields an empty slice.
func (s *CommentService) GetComments(ctx context.Context, blogSlug string) ([]CommentWithAuthor, error) {
	blog, err := s.m.getBlogBySlug(ctx, blogSlug)
	if err != nil {
		return nil, err
	}

	return s.m.listByBlog(ctx, blog.ID)
}

func (s *CommentService) notifyOwner(ctx context.Context, blog *blogRef, c *Comment) {
	if blog.OwnerID == c.UserID {
		return
	}

	msg, err := json.Marshal(common.CommentCreatedEvent{
		OwnerName:    blog.OwnerName,
		OwnerEmail:   blog.OwnerEmail,
		BlogTitle:    blog.Title,
		BlogSlug:     blog.Slug,
		CommentTitle: c.Title,
		Rating:       c.Rating,
	})
	if err == nil {
		err = s.mb.Publish(ctx, msg, common.CommentCreatedKey, common.BlogExchange)
	}
	if err != nil {
		s.logger.Warn("could not publish comment created event", slog.String("comment_id", c.ID.String()), slog.String("error", err.Error()))
	}
}

func provided(p *string) (string, bool) {
	if p == nil {
		return "", false
	}

	s := strings.TrimSpace(*p)

	return s, s != ""
}
