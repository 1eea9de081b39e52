// Package services – CategoryService
//
// Categories are a tiny, slow-moving taxonomy, so the whole list is cached
// as a single blob under a long TTL and single-slug lookups are derived from
// that list rather than issued as separate queries.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/cache"
	"github.com/shrawan7650/blog-user-client/internal/domain"
)

// CategoryRepo defines the repository contract required by CategoryService.
type CategoryRepo interface {
	// ListCategories returns all categories ordered by name.
	ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error)
}

// CategoryService serves the category taxonomy from a single cached list.
type CategoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the category repository used by this service.
	Repo CategoryRepo
	// Cache holds the category list blob.
	Cache *cache.Store
	// Flight collapses concurrent cold reads of the list.
	Flight *cache.Flight
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB, r CategoryRepo, c *cache.Store, f *cache.Flight) *CategoryService {
	return &CategoryService{DB: db, Repo: r, Cache: c, Flight: f}
}

// All returns every category, name-ordered.
func (s *CategoryService) All(ctx context.Context) ([]domain.Category, error) {
	return fetchThrough(s.Cache, s.Flight, categoriesKey, cache.LongTTL, func() ([]domain.Category, error) {
		return s.Repo.ListCategories(ctx, s.DB)
	})
}

// BySlug returns the category with the given slug, or nil when absent.
// It reads through the same cached list as All.
func (s *CategoryService) BySlug(ctx context.Context, slug string) (*domain.Category, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Slug == slug {
			return &all[i], nil
		}
	}
	return nil, nil
}
