// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, compression, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shrawan7650/blog-user-client/internal/cache"
	"github.com/shrawan7650/blog-user-client/internal/config"
	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/http/handlers"
	"github.com/shrawan7650/blog-user-client/internal/http/middleware"
	"github.com/shrawan7650/blog-user-client/internal/mail"
	"github.com/shrawan7650/blog-user-client/internal/render"
	"github.com/shrawan7650/blog-user-client/internal/repo"
	"github.com/shrawan7650/blog-user-client/internal/services"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// postRepoShim adapts the repository free functions to the services.PostRepo
// interface expected by the PostService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type postRepoShim struct{}

// ListPosts proxies repo.ListPosts.
func (postRepoShim) ListPosts(ctx context.Context, db *gorm.DB, f repo.PostFilter, order repo.PostOrder, offset, limit int) ([]domain.Post, error) {
	return repo.ListPosts(ctx, db, f, order, offset, limit)
}

// ListPostsAfter proxies repo.ListPostsAfter (keyset pagination support).
func (postRepoShim) ListPostsAfter(ctx context.Context, db *gorm.DB, f repo.PostFilter, order repo.PostOrder, after repo.PostCursor, limit int) ([]domain.Post, error) {
	return repo.ListPostsAfter(ctx, db, f, order, after, limit)
}

// CountPosts proxies repo.CountPosts (pagination support).
func (postRepoShim) CountPosts(ctx context.Context, db *gorm.DB, f repo.PostFilter) (int64, error) {
	return repo.CountPosts(ctx, db, f)
}

// GetPostBySlug proxies repo.GetPostBySlug.
func (postRepoShim) GetPostBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Post, error) {
	return repo.GetPostBySlug(ctx, db, slug)
}

// RecentPosts proxies repo.RecentPosts (search window support).
func (postRepoShim) RecentPosts(ctx context.Context, db *gorm.DB, n int) ([]domain.Post, error) {
	return repo.RecentPosts(ctx, db, n)
}

// IncrementViews proxies repo.IncrementViews.
func (postRepoShim) IncrementViews(ctx context.Context, db *gorm.DB, slug string) error {
	return repo.IncrementViews(ctx, db, slug)
}

// AddLikes proxies repo.AddLikes.
func (postRepoShim) AddLikes(ctx context.Context, db *gorm.DB, slug string, delta int64) error {
	return repo.AddLikes(ctx, db, slug, delta)
}

// WatchPost proxies repo.WatchPost (live subscription support).
func (postRepoShim) WatchPost(ctx context.Context, db *gorm.DB, slug string, interval time.Duration) <-chan repo.PostChange {
	return repo.WatchPost(ctx, db, slug, interval)
}

// authorRepoShim adapts the repository free functions to the
// services.AuthorRepo interface expected by the UserService.
type authorRepoShim struct{}

// GetAuthor proxies repo.GetAuthor.
func (authorRepoShim) GetAuthor(ctx context.Context, db *gorm.DB, uid string) (*domain.Author, error) {
	return repo.GetAuthor(ctx, db, uid)
}

// CountPostsByCreator proxies repo.CountPostsByCreator.
func (authorRepoShim) CountPostsByCreator(ctx context.Context, db *gorm.DB, uid string) (int64, error) {
	return repo.CountPostsByCreator(ctx, db, uid)
}

// ListPostCreators proxies repo.ListPostCreators (top-author tally support).
func (authorRepoShim) ListPostCreators(ctx context.Context, db *gorm.DB) ([]string, error) {
	return repo.ListPostCreators(ctx, db)
}

// categoryRepoShim adapts the repository free functions to the
// services.CategoryRepo interface expected by the CategoryService.
type categoryRepoShim struct{}

// ListCategories proxies repo.ListCategories.
func (categoryRepoShim) ListCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	return repo.ListCategories(ctx, db)
}

// inboxRepoShim adapts the repository free functions to the
// services.InboxRepo interface expected by the InboxService.
type inboxRepoShim struct{}

// CreateSubscriber proxies repo.CreateSubscriber.
func (inboxRepoShim) CreateSubscriber(ctx context.Context, db *gorm.DB, name, email string) (*domain.Subscriber, error) {
	return repo.CreateSubscriber(ctx, db, name, email)
}

// CreateContactMessage proxies repo.CreateContactMessage.
func (inboxRepoShim) CreateContactMessage(ctx context.Context, db *gorm.DB, name, email, message string) (*domain.ContactMessage, error) {
	return repo.CreateContactMessage(ctx, db, name, email, message)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression and
// rate limiting, CORS and security headers, health and metrics endpoints,
// and then mounts the versioned public API under /api/v*.
//
// The cache store and mailer are injected so the caller owns their lifetime
// and tests can substitute their own.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. Gzip compression for response bodies
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, store *cache.Store, mailer mail.Mailer, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. The inbox forms carry subscriber
	// PII; mask those fields wholesale wherever they show up in a query.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskParams: []string{"name", "email", "message"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) Compress rendered HTML and large list payloads
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db/cache
	flight := &cache.Flight{}
	userSvc := services.NewUserService(db, authorRepoShim{}, store)
	postSvc := services.NewPostService(db, postRepoShim{}, userSvc, store, flight)
	postSvc.ViewCooldown = cfg.Cache.ViewCooldown
	catSvc := services.NewCategoryService(db, categoryRepoShim{}, store, flight)
	inboxSvc := services.NewInboxService(db, inboxRepoShim{}, mailer)

	h := handlers.New(postSvc, userSvc, catSvc, inboxSvc, render.New())

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Posts
		api.GET("/posts", h.ListPosts)
		api.GET("/posts/featured", h.FeaturedPosts)
		api.GET("/posts/trending", h.TrendingPosts)
		api.GET("/posts/popular", h.PopularPosts)
		api.GET("/posts/search", h.SearchPosts)
		api.GET("/posts/:slug", h.GetPost)
		api.GET("/posts/:slug/html", h.GetPostHTML)
		api.POST("/posts/:slug/views", h.RecordView)
		api.POST("/posts/:slug/likes", h.UpdateLikes)

		// Taxonomy
		api.GET("/categories", h.ListCategories)
		api.GET("/categories/:slug", h.GetCategory)
		api.GET("/authors/top", h.TopAuthors)
		api.GET("/authors/:uid", h.GetAuthor)
		api.GET("/authors/:uid/posts", h.ListAuthorPosts)

		// Inbox
		api.POST("/newsletter/subscribe", h.Subscribe)
		api.POST("/contact", h.Contact)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
