package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/sushihentaime/bloghub/internal/common"
)

var (
	// errSlugTaken reports a lost race on blogs_slug_key. The service retries the whole write.
	errSlugTaken = errors.New("slug already taken")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// slugExists reports whether a blog other than exclude already holds slug.
func (m *BlogModel) slugExists(tx *sql.Tx, ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM blogs
			WHERE slug = $1 AND id <> $2
		)`

	var exists bool
	err := tx.QueryRowContext(ctx, query, slug, exclude).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (m *BlogModel) insert(tx *sql.Tx, ctx context.Context, blog *Blog) error {
	query := `
		INSERT INTO blogs (title, content, image, slug, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at, version`

	args := []any{blog.Title, blog.Content, blog.Image, blog.Slug, blog.UserID}

	err := tx.QueryRowContext(ctx, query, args...).Scan(&blog.ID, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case common.UniqueViolation(err, "blogs_slug_key"):
			return errSlugTaken
		case common.ForeignKeyError(err, "blogs_user_id_fkey"):
			return fmt.Errorf("%w: author no longer exists", common.ErrUnauthorized)
		default:
			return err
		}
	}

	return nil
}

// update writes the changed columns of blog. The row must still be at blog.Version, otherwise ErrEditConflict is returned.
func (m *BlogModel) update(tx *sql.Tx, ctx context.Context, blog *Blog, changed map[string]any) error {
	query, args, err := psql.Update("blogs").
		SetMap(changed).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": blog.ID, "version": blog.Version}).
		Suffix("RETURNING updated_at, version").
		ToSql()
	if err != nil {
		return err
	}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return common.ErrEditConflict
		case common.UniqueViolation(err, "blogs_slug_key"):
			return errSlugTaken
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *BlogModel) getByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := `
		SELECT id, title, content, image, slug, user_id, created_at, updated_at, version
		FROM blogs
		WHERE id = $1`

	var blog Blog
	err := m.db.QueryRowContext(ctx, query, id).Scan(&blog.ID, &blog.Title, &blog.Content, &blog.Image, &blog.Slug, &blog.UserID, &blog.CreatedAt, &blog.UpdatedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

// getBySlug joins the users table to fill in the owner.
func (m *BlogModel) getBySlug(ctx context.Context, slug string) (*BlogDetail, error) {
	query := `
		SELECT b.id, b.title, b.content, b.image, b.slug, b.user_id, b.created_at, b.updated_at, b.version, u.id, u.name, u.email
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.slug = $1`

	var d BlogDetail
	err := m.db.QueryRowContext(ctx, query, slug).Scan(
		&d.ID, &d.Title, &d.Content, &d.Image, &d.Slug, &d.UserID, &d.CreatedAt, &d.UpdatedAt, &d.Version,
		&d.Owner.ID, &d.Owner.Name, &d.Owner.Email,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &d, nil
}

func (m *BlogModel) listByUser(ctx context.Context, userID uuid.UUID) ([]BlogSummary, error) {
	query := `
		SELECT b.id, b.title, b.image, b.slug, b.created_at, b.updated_at, u.id, u.name
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC, b.id`

	return m.querySummaries(ctx, query, userID)
}

// list returns one page of blogs, newest first.
func (m *BlogModel) list(ctx context.Context, limit, offset int) ([]BlogSummary, error) {
	query := `
		SELECT b.id, b.title, b.image, b.slug, b.created_at, b.updated_at, u.id, u.name
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		ORDER BY b.created_at DESC, b.id
		LIMIT $1 OFFSET $2`

	return m.querySummaries(ctx, query, limit, offset)
}

func (m *BlogModel) count(ctx context.Context) (int, error) {
	var total int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs`).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (m *BlogModel) querySummaries(ctx context.Context, query string, args ...any) ([]BlogSummary, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []BlogSummary{}
	for rows.Next() {
		var b BlogSummary
		err := rows.Scan(&b.ID, &b.Title, &b.Image, &b.Slug, &b.CreatedAt, &b.UpdatedAt, &b.Author.ID, &b.Author.Name)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
