// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the category
// taxonomy. The set is small (tens of entries) and slow-changing, so it is
// only ever fetched in full; single-category lookups are derived from the
// cached list in the service layer.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/domain"
)

// ListCategories returns every category ordered by name.
func ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var out []domain.Category
	err := db.WithContext(ctx).
		Order("name").
		Find(&out).Error
	return out, err
}
