// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Author rows.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/domain"
)

// GetAuthor fetches a single author by uid, or ErrNotFound. The returned
// record carries TotalPosts zero; deriving it is the resolution service's
// job, not the repository's.
func GetAuthor(ctx context.Context, db *gorm.DB, uid string) (*domain.Author, error) {
	var a domain.Author
	err := db.WithContext(ctx).
		Where("uid = ?", uid).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}
