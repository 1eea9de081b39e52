// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the query primitives the post
// aggregation service is built on: equality filters, declared sort orders,
// limit/offset pages, keyset continuation, and atomic counter updates.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Result order is exactly the declared
// sort; callers never re-sort.
//
// Error semantics:
//   - When a post is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// PostOrder selects the declared sort of a post query. Both orders carry the
// row id as tiebreak so keyset continuation stays stable across equal keys.
type PostOrder int

const (
	// OrderCreatedDesc sorts by creation time, newest first.
	OrderCreatedDesc PostOrder = iota
	// OrderViewsDesc sorts by view count, highest first.
	OrderViewsDesc
)

func (o PostOrder) clause() string {
	if o == OrderViewsDesc {
		return "views DESC, id DESC"
	}
	return "created_at DESC, id DESC"
}

// PostFilter narrows a post query by equality. Zero fields are ignored.
type PostFilter struct {
	CategoryID string
	CreatedBy  string
	Featured   bool
}

func (f PostFilter) apply(q *gorm.DB) *gorm.DB {
	if f.CategoryID != "" {
		q = q.Where("category = ?", f.CategoryID)
	}
	if f.CreatedBy != "" {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	if f.Featured {
		q = q.Where("is_featured = ?", true)
	}
	return q
}

// PostCursor is the stable sort-key position after which a keyset page
// resumes. CreatedAt is meaningful under OrderCreatedDesc, Views under
// OrderViewsDesc; ID is always the tiebreak.
type PostCursor struct {
	CreatedAt time.Time `json:"c,omitempty"`
	Views     int64     `json:"v,omitempty"`
	ID        string    `json:"id"`
}

// CursorFor extracts the continuation position from the last post of a page.
func CursorFor(p domain.Post) PostCursor {
	return PostCursor{CreatedAt: p.CreatedAt, Views: p.Views, ID: p.ID}
}

// ListPosts returns one page of posts matching f in the declared order,
// using a numeric offset. An empty page past the end is not an error.
func ListPosts(ctx context.Context, db *gorm.DB, f PostFilter, order PostOrder, offset, limit int) ([]domain.Post, error) {
	var out []domain.Post
	err := f.apply(db.WithContext(ctx).Model(&domain.Post{})).
		Order(order.clause()).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListPostsAfter returns the next page of posts matching f, resuming
// immediately after the cursor position under the declared order.
func ListPostsAfter(ctx context.Context, db *gorm.DB, f PostFilter, order PostOrder, after PostCursor, limit int) ([]domain.Post, error) {
	q := f.apply(db.WithContext(ctx).Model(&domain.Post{}))
	switch order {
	case OrderViewsDesc:
		q = q.Where("views < ? OR (views = ? AND id < ?)", after.Views, after.Views, after.ID)
	default:
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", after.CreatedAt, after.CreatedAt, after.ID)
	}
	var out []domain.Post
	err := q.Order(order.clause()).Limit(limit).Find(&out).Error
	return out, err
}

// GetPostBySlug fetches the single post carrying slug, or ErrNotFound.
// Slug uniqueness is an invariant established at write time; this query
// assumes it and returns the first match.
func GetPostBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Post, error) {
	var p domain.Post
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RecentPosts returns the n most recent posts. The search operation scans
// this bounded window in memory.
func RecentPosts(ctx context.Context, db *gorm.DB, n int) ([]domain.Post, error) {
	return ListPosts(ctx, db, PostFilter{}, OrderCreatedDesc, 0, n)
}

// IncrementViews atomically adds one to the view counter of the post
// carrying slug. Returns ErrNotFound when no row matches.
func IncrementViews(ctx context.Context, db *gorm.DB, slug string) error {
	res := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("slug = ?", slug).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLikes atomically adds delta (which may be negative) to the like
// counter of the post carrying slug. Returns ErrNotFound when no row
// matches. There is no version check; concurrent updates interleave as
// plain commutative increments.
func AddLikes(ctx context.Context, db *gorm.DB, slug string, delta int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("slug = ?", slug).
		UpdateColumn("likes", gorm.Expr("likes + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPostCreators returns the creator id of every post, newest first.
// The duplicate ids are the point: callers tally them to rank authors.
func ListPostCreators(ctx context.Context, db *gorm.DB) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.Post{}).
		Order("created_at DESC, id DESC").
		Pluck("created_by", &out).Error
	return out, err
}
