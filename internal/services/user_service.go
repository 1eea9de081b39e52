// Package services – UserService
//
// This file implements author resolution for the read path. Lookups follow a
// deliberate degraded-mode contract: any failure (absent row, transport
// error) resolves to "author not available" rather than an error, because a
// post listing must never fail on account of its author metadata. Callers
// receive an explicit presence flag and substitute the placeholder author
// when it is false.
package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/cache"
	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/repo"
)

// AuthorRepo defines the repository contract required by UserService.
type AuthorRepo interface {
	// GetAuthor fetches a single author profile by uid.
	GetAuthor(ctx context.Context, db *gorm.DB, uid string) (*domain.Author, error)

	// CountPostsByCreator returns the number of posts attributed to uid.
	CountPostsByCreator(ctx context.Context, db *gorm.DB, uid string) (int64, error)

	// ListPostCreators returns the creator uid of every post, newest first,
	// one entry per post.
	ListPostCreators(ctx context.Context, db *gorm.DB) ([]string, error)
}

// UserService resolves author profiles, enriched with a derived post count
// and cached under a long TTL.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the author repository used by this service.
	Repo AuthorRepo
	// Cache holds resolved profiles keyed by uid.
	Cache *cache.Store
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, r AuthorRepo, c *cache.Store) *UserService {
	return &UserService{DB: db, Repo: r, Cache: c}
}

// Resolve returns the author profile for uid, with TotalPosts populated.
// The boolean reports presence; it is false for an empty uid, an unknown
// uid, or any lookup failure. Failures are logged and swallowed.
func (s *UserService) Resolve(ctx context.Context, uid string) (*domain.Author, bool) {
	if uid == "" {
		return nil, false
	}
	if v, ok := s.Cache.Get(userKey(uid)); ok {
		if a, ok := v.(domain.Author); ok {
			return &a, true
		}
	}

	a, err := s.Repo.GetAuthor(ctx, s.DB, uid)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			log.Warn().Err(err).Str("uid", uid).Msg("author lookup failed")
		}
		return nil, false
	}
	n, err := s.Repo.CountPostsByCreator(ctx, s.DB, uid)
	if err != nil {
		log.Warn().Err(err).Str("uid", uid).Msg("author post count failed")
		return nil, false
	}
	a.TotalPosts = n

	s.Cache.Set(userKey(uid), *a, cache.LongTTL)
	return a, true
}

// ResolveMany resolves a set of uids concurrently and returns the subset
// that could be resolved. Missing uids are simply absent from the map.
func (s *UserService) ResolveMany(ctx context.Context, uids []string) map[string]*domain.Author {
	out := make(map[string]*domain.Author, len(uids))
	if len(uids) == 0 {
		return out
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for _, uid := range uids {
		uid := uid
		g.Go(func() error {
			if a, ok := s.Resolve(ctx, uid); ok {
				mu.Lock()
				out[uid] = a
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// TopAuthors tallies post counts per creator and resolves the limit most
// prolific into full profiles, with TotalPosts set from the tally. Any
// failure yields an empty slice; the caller cannot distinguish "no authors"
// from "tally unavailable", which is acceptable for a decorative widget.
func (s *UserService) TopAuthors(ctx context.Context, limit int) []domain.Author {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "TopAuthors",
		trace.WithAttributes(attribute.Int("authors.limit", limit)),
	)
	defer span.End()

	if limit <= 0 {
		limit = 4
	}

	creators, err := s.Repo.ListPostCreators(ctx, s.DB)
	if err != nil {
		log.Warn().Err(err).Msg("top authors tally failed")
		return []domain.Author{}
	}

	counts := make(map[string]int64, len(creators))
	order := make([]string, 0, len(creators))
	for _, uid := range creators {
		if uid == "" {
			continue
		}
		if _, seen := counts[uid]; !seen {
			order = append(order, uid)
		}
		counts[uid]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	out := make([]domain.Author, 0, limit)
	for _, uid := range order {
		if len(out) == limit {
			break
		}
		a, ok := s.Resolve(ctx, uid)
		if !ok {
			continue
		}
		a.TotalPosts = counts[uid]
		out = append(out, *a)
	}
	return out
}
