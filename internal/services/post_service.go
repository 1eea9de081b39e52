// Package services – PostService
//
// This file implements the post read path: every query runs through the
// cache, collapses concurrent misses, loads from the repository, joins
// author profiles, and converts timestamps to their ISO-8601 wire form.
// Writes are limited to the two engagement counters (views, likes) and are
// followed by targeted cache invalidation so stale rankings never outlive
// their source data by more than one TTL window.
//
// Observability: the heavier public methods are OpenTelemetry-instrumented;
// spans carry the slug or page coordinates being served.
package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/cache"
	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/repo"
)

// PostRepo defines the repository contract required by PostService.
type PostRepo interface {
	// ListPosts returns a page of posts by offset.
	ListPosts(ctx context.Context, db *gorm.DB, f repo.PostFilter, order repo.PostOrder, offset, limit int) ([]domain.Post, error)

	// ListPostsAfter returns the page strictly after the given keyset position.
	ListPostsAfter(ctx context.Context, db *gorm.DB, f repo.PostFilter, order repo.PostOrder, after repo.PostCursor, limit int) ([]domain.Post, error)

	// CountPosts returns the number of posts matching the filter.
	CountPosts(ctx context.Context, db *gorm.DB, f repo.PostFilter) (int64, error)

	// GetPostBySlug fetches one post, repo.ErrNotFound when absent.
	GetPostBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Post, error)

	// RecentPosts returns the n most recently created posts.
	RecentPosts(ctx context.Context, db *gorm.DB, n int) ([]domain.Post, error)

	// IncrementViews atomically adds one to the view counter.
	IncrementViews(ctx context.Context, db *gorm.DB, slug string) error

	// AddLikes atomically adds delta (which may be negative) to the like counter.
	AddLikes(ctx context.Context, db *gorm.DB, slug string, delta int64) error

	// WatchPost emits the post's state on change until ctx is cancelled.
	WatchPost(ctx context.Context, db *gorm.DB, slug string, interval time.Duration) <-chan repo.PostChange
}

// AuthorResolver is the slice of UserService the post read path depends on.
type AuthorResolver interface {
	Resolve(ctx context.Context, uid string) (*domain.Author, bool)
	ResolveMany(ctx context.Context, uids []string) map[string]*domain.Author
}

// PostPage is a page of posts plus pagination metadata. NextCursor is an
// opaque continuation token; clients pass it back verbatim to fetch the
// following page without offset drift.
type PostPage struct {
	Posts      []domain.PostWithAuthor `json:"posts"`
	TotalPages int                     `json:"totalPages"`
	NextCursor string                  `json:"nextCursor,omitempty"`
}

// TrendingPage is a view-ranked page with a cheap has-more heuristic
// instead of a total count.
type TrendingPage struct {
	Posts      []domain.PostWithAuthor `json:"posts"`
	HasMore    bool                    `json:"hasMore"`
	NextCursor string                  `json:"nextCursor,omitempty"`
}

// PostService aggregates posts with their author profiles and serves all
// read-path queries through the cache pipeline.
type PostService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the post repository used by this service.
	Repo PostRepo
	// Users resolves creator uids into author profiles.
	Users AuthorResolver
	// Cache and Flight form the shared read pipeline.
	Cache  *cache.Store
	Flight *cache.Flight

	// FeaturedLimit caps the featured strip.
	FeaturedLimit int
	// SearchWindow is how many recent posts a search scans.
	SearchWindow int
	// SearchLimit caps search results.
	SearchLimit int
	// ViewCooldown is the per-slug window during which repeat view
	// reports are dropped.
	ViewCooldown time.Duration
	// WatchEvery is the poll interval for live subscriptions.
	WatchEvery time.Duration
}

// NewPostService constructs a PostService with production defaults.
func NewPostService(db *gorm.DB, r PostRepo, users AuthorResolver, c *cache.Store, f *cache.Flight) *PostService {
	return &PostService{
		DB:            db,
		Repo:          r,
		Users:         users,
		Cache:         c,
		Flight:        f,
		FeaturedLimit: 5,
		SearchWindow:  50,
		SearchLimit:   10,
		ViewCooldown:  time.Minute,
		WatchEvery:    repo.WatchInterval,
	}
}

func normPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return page, pageSize
}

// attachAuthors joins each post with its resolved author, substituting the
// placeholder profile for any creator that could not be resolved. The
// result length always equals the input length.
func (s *PostService) attachAuthors(ctx context.Context, posts []domain.Post) []domain.PostWithAuthor {
	uids := make([]string, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.CreatedBy]; ok {
			continue
		}
		seen[p.CreatedBy] = struct{}{}
		uids = append(uids, p.CreatedBy)
	}

	authors := s.Users.ResolveMany(ctx, uids)

	out := make([]domain.PostWithAuthor, 0, len(posts))
	for _, p := range posts {
		a := authors[p.CreatedBy]
		if a == nil {
			fallback := domain.UnknownAuthor(p.CreatedBy)
			a = &fallback
		}
		out = append(out, domain.NewPostWithAuthor(p, *a))
	}
	return out
}

// totalPages computes ceil(count/pageSize) for the filter, caching the raw
// count under a long TTL so every page of the same filter reuses it.
func (s *PostService) totalPages(ctx context.Context, f repo.PostFilter, pageSize int) (int, error) {
	key := postsTotalKey(f.CategoryID, f.CreatedBy)
	total, err := fetchThrough(s.Cache, s.Flight, key, cache.LongTTL, func() (int64, error) {
		return s.Repo.CountPosts(ctx, s.DB, f)
	})
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(float64(total) / float64(pageSize))), nil
}

// page runs the shared list pipeline for a recency-ordered, optionally
// filtered page request.
func (s *PostService) page(ctx context.Context, key string, f repo.PostFilter, page, pageSize int, cursor string) (PostPage, error) {
	return fetchThrough(s.Cache, s.Flight, key, cache.ShortTTL, func() (PostPage, error) {
		var (
			rows []domain.Post
			err  error
		)
		if cursor != "" {
			after, derr := decodeCursor(cursor)
			if derr != nil {
				return PostPage{}, derr
			}
			rows, err = s.Repo.ListPostsAfter(ctx, s.DB, f, repo.OrderCreatedDesc, after, pageSize)
		} else {
			rows, err = s.Repo.ListPosts(ctx, s.DB, f, repo.OrderCreatedDesc, (page-1)*pageSize, pageSize)
		}
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("post page query failed")
			return PostPage{}, err
		}

		totalPages, err := s.totalPages(ctx, f, pageSize)
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("post count query failed")
			return PostPage{}, err
		}

		out := PostPage{
			Posts:      s.attachAuthors(ctx, rows),
			TotalPages: totalPages,
		}
		if len(rows) == pageSize {
			out.NextCursor = encodeCursor(repo.CursorFor(rows[len(rows)-1]))
		}
		return out, nil
	})
}

// List returns a recency-ordered page of posts, optionally filtered by
// category. When cursor is non-empty it takes precedence over page.
func (s *PostService) List(ctx context.Context, page, pageSize int, categoryID, cursor string) (PostPage, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.String("category.id", categoryID),
		),
	)
	defer span.End()

	page, pageSize = normPage(page, pageSize)
	key := postsListKey(page, pageSize, categoryID, cursor)
	return s.page(ctx, key, repo.PostFilter{CategoryID: categoryID}, page, pageSize, cursor)
}

// ByAuthor returns a recency-ordered page of posts created by uid.
func (s *PostService) ByAuthor(ctx context.Context, uid string, page, pageSize int, cursor string) (PostPage, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "ByAuthor",
		trace.WithAttributes(
			attribute.String("author.uid", uid),
			attribute.Int("page", page),
		),
	)
	defer span.End()

	page, pageSize = normPage(page, pageSize)
	key := postsByAuthorKey(uid, page, pageSize, cursor)
	return s.page(ctx, key, repo.PostFilter{CreatedBy: uid}, page, pageSize, cursor)
}

// BySlug returns a single post with its author, or nil when the slug does
// not exist. Absence is cached only implicitly (not at all): a miss today
// may be a freshly published post tomorrow.
func (s *PostService) BySlug(ctx context.Context, slug string) (*domain.PostWithAuthor, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "BySlug",
		trace.WithAttributes(attribute.String("post.slug", slug)),
	)
	defer span.End()

	key := postKey(slug)
	if v, ok := s.Cache.Get(key); ok {
		if p, ok := v.(*domain.PostWithAuthor); ok {
			return p, nil
		}
	}

	v, err := s.Flight.Do(key, func() (any, error) {
		p, err := s.Repo.GetPostBySlug(ctx, s.DB, slug)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return (*domain.PostWithAuthor)(nil), nil
			}
			log.Error().Err(err).Str("slug", slug).Msg("post lookup failed")
			return nil, err
		}
		joined := s.attachAuthors(ctx, []domain.Post{*p})
		pw := &joined[0]
		// Single posts change rarely and invalidate on like updates, so the
		// detail entry gets the long class.
		s.Cache.Set(key, pw, cache.LongTTL)
		return pw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.PostWithAuthor), nil
}

// Featured returns the featured strip, recency-ordered, long-cached.
func (s *PostService) Featured(ctx context.Context) ([]domain.PostWithAuthor, error) {
	limit := s.FeaturedLimit
	if limit < 1 {
		limit = 5
	}
	return fetchThrough(s.Cache, s.Flight, featuredKey(limit), cache.LongTTL, func() ([]domain.PostWithAuthor, error) {
		rows, err := s.Repo.ListPosts(ctx, s.DB, repo.PostFilter{Featured: true}, repo.OrderCreatedDesc, 0, limit)
		if err != nil {
			log.Error().Err(err).Msg("featured query failed")
			return nil, err
		}
		return s.attachAuthors(ctx, rows), nil
	})
}

// Trending returns a view-ranked page. HasMore is heuristic: a full page
// is assumed to have a successor, which can over-report by exactly one
// empty page when the total is a multiple of pageSize.
func (s *PostService) Trending(ctx context.Context, page, pageSize int, cursor string) (TrendingPage, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Trending",
		trace.WithAttributes(attribute.Int("page", page)),
	)
	defer span.End()

	page, pageSize = normPage(page, pageSize)
	key := trendingKey(page, pageSize, cursor)
	return fetchThrough(s.Cache, s.Flight, key, cache.ShortTTL, func() (TrendingPage, error) {
		var (
			rows []domain.Post
			err  error
		)
		if cursor != "" {
			after, derr := decodeCursor(cursor)
			if derr != nil {
				return TrendingPage{}, derr
			}
			rows, err = s.Repo.ListPostsAfter(ctx, s.DB, repo.PostFilter{}, repo.OrderViewsDesc, after, pageSize)
		} else {
			rows, err = s.Repo.ListPosts(ctx, s.DB, repo.PostFilter{}, repo.OrderViewsDesc, (page-1)*pageSize, pageSize)
		}
		if err != nil {
			log.Error().Err(err).Msg("trending query failed")
			return TrendingPage{}, err
		}

		out := TrendingPage{
			Posts:   s.attachAuthors(ctx, rows),
			HasMore: len(rows) == pageSize,
		}
		if len(rows) == pageSize {
			out.NextCursor = encodeCursor(repo.CursorFor(rows[len(rows)-1]))
		}
		return out, nil
	})
}

// Popular returns the limit most-viewed posts, long-cached.
func (s *PostService) Popular(ctx context.Context, limit int) ([]domain.PostWithAuthor, error) {
	if limit < 1 {
		limit = 5
	}
	return fetchThrough(s.Cache, s.Flight, popularKey(limit), cache.LongTTL, func() ([]domain.PostWithAuthor, error) {
		rows, err := s.Repo.ListPosts(ctx, s.DB, repo.PostFilter{}, repo.OrderViewsDesc, 0, limit)
		if err != nil {
			log.Error().Err(err).Msg("popular query failed")
			return nil, err
		}
		return s.attachAuthors(ctx, rows), nil
	})
}

// Search scans the most recent SearchWindow posts for a case-insensitive
// substring match over title, excerpt, tags, and category, returning at
// most SearchLimit results. A blank query returns an empty slice.
func (s *PostService) Search(ctx context.Context, query string) ([]domain.PostWithAuthor, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(attribute.String("search.query", query)),
	)
	defer span.End()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.PostWithAuthor{}, nil
	}

	window := s.SearchWindow
	if window < 1 {
		window = 50
	}
	limit := s.SearchLimit
	if limit < 1 {
		limit = 10
	}

	return fetchThrough(s.Cache, s.Flight, searchKey(q), cache.SearchTTL, func() ([]domain.PostWithAuthor, error) {
		recent, err := s.Repo.RecentPosts(ctx, s.DB, window)
		if err != nil {
			log.Error().Err(err).Msg("search window query failed")
			return nil, err
		}
		matched := make([]domain.Post, 0, limit)
		for _, p := range recent {
			if matchesQuery(p, q) {
				matched = append(matched, p)
				if len(matched) == limit {
					break
				}
			}
		}
		return s.attachAuthors(ctx, matched), nil
	})
}

func matchesQuery(p domain.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Excerpt), q) {
		return true
	}
	if strings.Contains(strings.ToLower(p.CategoryID), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// IncrementViews records one view for slug, throttled to one increment per
// slug per ViewCooldown window. Throttled calls succeed silently. A real
// increment invalidates the view-ranked cache families.
func (s *PostService) IncrementViews(ctx context.Context, slug string) error {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "IncrementViews",
		trace.WithAttributes(attribute.String("post.slug", slug)),
	)
	defer span.End()

	mark := viewMarkKey(slug)
	if _, ok := s.Cache.Get(mark); ok {
		return nil
	}

	if err := s.Repo.IncrementViews(ctx, s.DB, slug); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPostNotFound
		}
		log.Error().Err(err).Str("slug", slug).Msg("view increment failed")
		return err
	}

	cooldown := s.ViewCooldown
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	s.Cache.Set(mark, struct{}{}, cooldown)
	s.Cache.Invalidate(keyFamilyTrending)
	s.Cache.Invalidate(keyFamilyPopular)
	return nil
}

// UpdateLikes applies a signed delta to the like counter and drops the
// cached detail entry for the slug so the next read reflects the change.
func (s *PostService) UpdateLikes(ctx context.Context, slug string, delta int64) error {
	if err := s.Repo.AddLikes(ctx, s.DB, slug, delta); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrPostNotFound
		}
		log.Error().Err(err).Str("slug", slug).Msg("like update failed")
		return err
	}
	s.Cache.Delete(postKey(slug))
	return nil
}

// PostSubscription is a live feed of one post's state. Updates delivers
// the joined post on every observed change, with nil marking deletion or
// absence. Close is idempotent and releases the underlying watcher; the
// Updates channel is closed once the watcher drains.
type PostSubscription struct {
	updates chan *domain.PostWithAuthor
	cancel  context.CancelFunc
	once    sync.Once
}

// Updates returns the receive side of the subscription.
func (ps *PostSubscription) Updates() <-chan *domain.PostWithAuthor {
	return ps.updates
}

// Close cancels the subscription. Safe to call multiple times.
func (ps *PostSubscription) Close() {
	ps.once.Do(ps.cancel)
}

// Subscribe opens a live subscription on slug. The first delivery reflects
// current state (nil when the slug does not exist); subsequent deliveries
// fire on observed changes. Every delivery refreshes the post's cache
// entry, so detail reads stay warm while someone is watching.
func (s *PostService) Subscribe(ctx context.Context, slug string) *PostSubscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &PostSubscription{
		updates: make(chan *domain.PostWithAuthor, 1),
		cancel:  cancel,
	}

	every := s.WatchEvery
	if every <= 0 {
		every = repo.WatchInterval
	}
	changes := s.Repo.WatchPost(ctx, s.DB, slug, every)

	go func() {
		defer close(sub.updates)
		for change := range changes {
			var pw *domain.PostWithAuthor
			if change.Post != nil {
				joined := s.attachAuthors(ctx, []domain.Post{*change.Post})
				pw = &joined[0]
				s.Cache.Set(postKey(slug), pw, cache.LongTTL)
			} else {
				s.Cache.Delete(postKey(slug))
			}
			select {
			case sub.updates <- pw:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sub
}
