// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries feeding
// pagination metadata and the derived per-author post count. Each function
// is context-aware and safe to call from services or handlers.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/domain"
)

// CountPosts returns the total number of posts matching f. The service
// layer caches this per filter and derives total pages from it.
func CountPosts(ctx context.Context, db *gorm.DB, f PostFilter) (int64, error) {
	var total int64
	err := f.apply(db.WithContext(ctx).Model(&domain.Post{})).
		Count(&total).Error
	return total, err
}

// CountPostsByCreator returns how many posts carry uid as their creator.
// This backs the derived Author.TotalPosts, which is a view over the posts
// collection, never a persisted fact.
func CountPostsByCreator(ctx context.Context, db *gorm.DB, uid string) (int64, error) {
	return CountPosts(ctx, db, PostFilter{CreatedBy: uid})
}
