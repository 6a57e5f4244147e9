package commentservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/sushihentaime/bloghub/internal/common"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func newCommentModel(db *sql.DB) *CommentModel {
	return &CommentModel{db: db}
}

func (m *CommentModel) getBlogBySlug(ctx context.Context, slug string) (*blogRef, error) {
	query := `
		SELECT b.id, b.title, b.slug, u.id, u.name, u.email
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.slug = $1`

	var b blogRef
	err := m.db.QueryRowContext(ctx, query, slug).Scan(&b.ID, &b.Title, &b.Slug, &b.OwnerID, &b.OwnerName, &b.OwnerEmail)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &b, nil
}

func (m *CommentModel) exists(tx *sql.Tx, ctx context.Context, userID, blogID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM comments
			WHERE user_id = $1 AND blog_id = $2
		)`

	var exists bool
	err := tx.QueryRowContext(ctx, query, userID, blogID).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (m *CommentModel) insert(tx *sql.Tx, ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (title, description, rating, user_id, blog_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	args := []any{c.Title, c.Description, c.Rating, c.UserID, c.BlogID}

	err := tx.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case common.UniqueViolation(err, "comments_user_id_blog_id_key"):
			return ErrAlreadyReviewed
		case common.ForeignKeyError(err, "comments_user_id_fkey"):
			return fmt.Errorf("%w: author no longer exists", common.ErrUnauthorized)
		case common.ForeignKeyError(err, "comments_blog_id_fkey"):
			return common.ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *CommentModel) getByUserAndBlog(ctx context.Context, userID, blogID uuid.UUID) (*Comment, error) {
	query := `
		SELECT id, title, description, rating, user_id, blog_id, created_at, updated_at
		FROM comments
		WHERE user_id = $1 AND blog_id = $2`

	var c Comment
	err := m.db.QueryRowContext(ctx, query, userID, blogID).Scan(&c.ID, &c.Title, &c.Description, &c.Rating, &c.UserID, &c.BlogID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &c, nil
}

// getByID also returns the owner of the blog the comment belongs to.
func (m *CommentModel) getByID(ctx context.Context, id uuid.UUID) (*Comment, uuid.UUID, error) {
	query := `
		SELECT c.id, c.title, c.description, c.rating, c.user_id, c.blog_id, c.created_at, c.updated_at, b.user_id
		FROM comments c
		JOIN blogs b ON c.blog_id = b.id
		WHERE c.id = $1`

	var (
		c       Comment
		ownerID uuid.UUID
	)

	err := m.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Title, &c.Description, &c.Rating, &c.UserID, &c.BlogID, &c.CreatedAt, &c.UpdatedAt, &ownerID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, uuid.Nil, common.ErrRecordNotFound
		default:
			return nil, uuid.Nil, err
		}
	}

	return &c, ownerID, nil
}

func (m *CommentModel) update(ctx context.Context, c *Comment, changed map[string]any) error {
	query, args, err := psql.Update("comments").
		SetMap(changed).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": c.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return err
	}

	err = m.db.QueryRowContext(ctx, query, args...).Scan(&c.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *CommentModel) delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM comments
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return common.ErrRecordNotFound
	}

	return nil
}

// listByBlog returns the comments of a blog with their authors, newest first.
func (m *CommentModel) listByBlog(ctx context.Context, blogID uuid.UUID) ([]CommentWithAuthor, error) {
	query := `
		SELECT c.id, c.title, c.description, c.rating, c.user_id, c.blog_id, c.created_at, c.updated_at, u.id, u.name
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.blog_id = $1
		ORDER BY c.created_at DESC, c.id`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []CommentWithAuthor{}
	for rows.Next() {
		var c CommentWithAuthor
		err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Rating, &c.UserID, &c.BlogID, &c.CreatedAt, &c.UpdatedAt, &c.Author.ID, &c.Author.Name)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}
