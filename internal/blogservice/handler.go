package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/slug"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

var (
	ErrSlugConflict = errors.New("could not reserve a unique slug, please retry")
)

func NewBlogService(db *sql.DB, c *common.Cache, metrics *common.Metrics, logger *slog.Logger) *BlogService {
	return &BlogService{
		db:      db,
		m:       newBlogModel(db),
		c:       c,
		metrics: metrics,
		logger:  logger,
	}
}

// CreateBlog stores a new blog owned by req.UserID under a freshly resolved slug.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	if req.UserID == uuid.Nil {
		return nil, common.ErrUnauthorized
	}

	blog := Blog{
		Title:   strings.TrimSpace(req.Title),
		Content: sanitizeMarkdown(req.Content),
		Image:   strings.TrimSpace(req.Image),
		UserID:  req.UserID,
	}

	v := common.NewValidator()
	validateTitle(v, blog.Title)
	validateContent(v, blog.Content)
	validateImage(v, blog.Image)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	base := slug.DeriveBase(blog.Title)

	err := s.withUniqueSlug(ctx, func(tx *sql.Tx) error {
		var err error
		blog.Slug, err = s.resolveSlug(tx, ctx, base, uuid.Nil)
		if err != nil {
			return err
		}

		return s.m.insert(tx, ctx, &blog)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.CounterBlogsCreated.Inc()
	s.invalidate(blog.Slug)

	return &blog, nil
}

// UpdateBlog applies the non-blank fields of req. A changed title gets a new slug.
func (s *BlogService) UpdateBlog(ctx context.Context, req *UpdateBlogRequest) (*Blog, error) {
	blog, err := s.m.getByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := userservice.AuthorizeMutation(req.UserID, blog.UserID); err != nil {
		return nil, err
	}

	oldSlug := blog.Slug
	changed := map[string]any{}
	titleChanged := false

	v := common.NewValidator()

	if title, ok := provided(req.Title); ok && title != blog.Title {
		validateTitle(v, title)
		blog.Title = title
		changed["title"] = title
		titleChanged = true
	}

	if req.Content != nil && strings.TrimSpace(*req.Content) != "" {
		content := sanitizeMarkdown(*req.Content)
		validateContent(v, content)
		if content != blog.Content {
			blog.Content = content
			changed["content"] = content
		}
	}

	if image, ok := provided(req.Image); ok && image != blog.Image {
		validateImage(v, image)
		blog.Image = image
		changed["image"] = image
	}

	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if len(changed) == 0 {
		return blog, nil
	}

	base := slug.DeriveBase(blog.Title)

	err = s.withUniqueSlug(ctx, func(tx *sql.Tx) error {
		if titleChanged {
			newSlug, err := s.resolveSlug(tx, ctx, base, blog.ID)
			if err != nil {
				return err
			}
			blog.Slug = newSlug
			changed["slug"] = newSlug
		}

		return s.m.update(tx, ctx, blog, changed)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(oldSlug, blog.Slug)

	return blog, nil
}

// DeleteBlog removes a blog and, through the foreign key, its comments.
func (s *BlogService) DeleteBlog(ctx context.Context, blogID, userID uuid.UUID) error {
	blog, err := s.m.getByID(ctx, blogID)
	if err != nil {
		return err
	}

	if err := userservice.AuthorizeMutation(userID, blog.UserID); err != nil {
		return err
	}

	if err := s.m.delete(ctx, blog.ID); err != nil {
		return err
	}

	s.invalidate(blog.Slug)

	return nil
}

// GetBlogBySlug returns a blog with its owner. Results are cached until the blog changes.
func (s *BlogService) GetBlogBySlug(ctx context.Context, blogSlug string) (*BlogDetail, error) {
	key := common.CacheKeyBlogBySlug(blogSlug)

	if cached, ok := s.c.Get(key); ok {
		if d, ok := cached.(*BlogDetail); ok {
			return d, nil
		}
	}

	gen := s.cacheGeneration()

	d, err := s.m.getBySlug(ctx, blogSlug)
	if err != nil {
		return nil, err
	}

	s.fillCache(key, gen, d)

	return d, nil
}

// GetMyBlogs lists the blogs of userID, newest first.
func (s *BlogService) GetMyBlogs(ctx context.Context, userID uuid.UUID) ([]BlogSummary, error) {
	if userID == uuid.Nil {
		return nil, common.ErrUnauthorized
	}

	return s.m.listByUser(ctx, userID)
}

// GetBlogs returns one page of blogs. page and limit below 1 fall back to the defaults and limit is capped at MaxLimit.
func (s *BlogService) GetBlogs(ctx context.Context, page, limit int) (*BlogPage, error) {
	page, limit = normalizePage(page, limit)

	key := common.CacheKeyBlogPage(page, limit)
	if cached, ok := s.c.Get(key); ok {
		if p, ok := cached.(*BlogPage); ok {
			return p, nil
		}
	}

	gen := s.cacheGeneration()

	total, err := s.m.count(ctx)
	if err != nil {
		return nil, err
	}

	blogs, err := s.m.list(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	p := &BlogPage{
		Blogs: blogs,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pageCount(total, limit),
		},
	}

	// pages past the last one are all empty and not worth an entry each
	if page <= max(p.Pagination.Pages, 1) {
		s.fillCache(key, gen, p)
	}

	return p, nil
}

// resolveSlug finds a free slug for base inside tx.
func (s *BlogService) resolveSlug(tx *sql.Tx, ctx context.Context, base string, exclude uuid.UUID) (string, error) {
	exists := func(ctx context.Context, candidate string, exclude uuid.UUID) (bool, error) {
		return s.m.slugExists(tx, ctx, candidate, exclude)
	}

	resolved, steps, err := slug.ResolveUnique(ctx, base, exists, exclude)
	if err != nil {
		return "", err
	}

	s.metrics.HistSlugResolveSteps.Observe(float64(steps))

	return resolved, nil
}

// withUniqueSlug runs fn in a transaction and reruns it when a concurrent writer claimed the same slug first.
func (s *BlogService) withUniqueSlug(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return s.retrySlug(func() error {
		return common.WithTx(ctx, s.db, fn)
	})
}

func (s *BlogService) retrySlug(write func() error) error {
	for attempt := 1; ; attempt++ {
		err := write()
		if !errors.Is(err, errSlugTaken) {
			return err
		}

		if attempt >= maxSlugAttempts {
			s.logger.Error("giving up on slug after repeated conflicts", slog.Int("attempts", attempt))
			return ErrSlugConflict
		}

		s.metrics.CounterSlugRetries.Inc()
		s.logger.Warn("slug taken by a concurrent write, retrying", slog.Int("attempt", attempt))
	}
}

// invalidate drops the cached detail views for slugs and every cached list page.
func (s *BlogService) invalidate(slugs ...string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.generation++
	for _, sl := range slugs {
		s.c.Delete(common.CacheKeyBlogBySlug(sl))
	}
	s.c.DeletePrefix(common.CacheKeyBlogPages())
}

// cacheGeneration is taken before a load from the store and handed to fillCache afterwards.
func (s *BlogService) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	return s.generation
}

// fillCache stores value under key unless an invalidation happened since gen was taken.
func (s *BlogService) fillCache(key string, gen uint64, value any) bool {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if gen != s.generation {
		return false
	}

	s.c.Set(key, value)

	return true
}

// provided returns the trimmed value of p and whether it counts as a change request.
func provided(p *string) (string, bool) {
	if p == nil {
		return "", false
	}

	s := strings.TrimSpace(*p)

	return s, s != ""
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}

	if limit < 1 {
		limit = DefaultLimit
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	// keeps (page-1)*limit from overflowing
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}

	return page, limit
}

func pageCount(total, limit int) int {
	if total == 0 {
		return 0
	}

	return (total + limit - 1) / limit
}
