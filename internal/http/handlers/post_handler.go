// Post HTTP handlers.
//
// This file exposes REST endpoints for post resources:
//   - GET    /posts                 (list, paginated, optional category filter)
//   - GET    /posts/featured        (featured strip)
//   - GET    /posts/trending        (view-ranked page)
//   - GET    /posts/popular         (top N by views)
//   - GET    /posts/search          (recent-window substring search)
//   - GET    /posts/{slug}          (detail with author)
//   - GET    /posts/{slug}/html     (content blocks rendered to sanitized HTML)
//   - POST   /posts/{slug}/views    (throttled view counter)
//   - POST   /posts/{slug}/likes    (signed like delta)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/services"
	"github.com/shrawan7650/blog-user-client/internal/utils"
)

//
// Service contracts (context-aware)
//

// PostService defines the post read-path operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PostService interface {
	// List returns a recency-ordered page, optionally filtered by category.
	List(ctx context.Context, page, pageSize int, categoryID, cursor string) (services.PostPage, error)
	// ByAuthor returns a recency-ordered page of one creator's posts.
	ByAuthor(ctx context.Context, uid string, page, pageSize int, cursor string) (services.PostPage, error)
	// BySlug returns one post with author, nil when absent.
	BySlug(ctx context.Context, slug string) (*domain.PostWithAuthor, error)
	// Featured returns the featured strip.
	Featured(ctx context.Context) ([]domain.PostWithAuthor, error)
	// Trending returns a view-ranked page.
	Trending(ctx context.Context, page, pageSize int, cursor string) (services.TrendingPage, error)
	// Popular returns the top posts by views.
	Popular(ctx context.Context, limit int) ([]domain.PostWithAuthor, error)
	// Search scans recent posts for a case-insensitive substring match.
	Search(ctx context.Context, query string) ([]domain.PostWithAuthor, error)
	// IncrementViews records a view, throttled per slug.
	IncrementViews(ctx context.Context, slug string) error
	// UpdateLikes applies a signed delta to the like counter.
	UpdateLikes(ctx context.Context, slug string, delta int64) error
}

// UserService defines the author operations consumed by HTTP handlers.
type UserService interface {
	// Resolve returns an author profile; the bool reports presence.
	Resolve(ctx context.Context, uid string) (*domain.Author, bool)
	// TopAuthors returns the most prolific authors.
	TopAuthors(ctx context.Context, limit int) []domain.Author
}

// CategoryService defines the taxonomy operations consumed by HTTP handlers.
type CategoryService interface {
	// All returns every category.
	All(ctx context.Context) ([]domain.Category, error)
	// BySlug returns one category, nil when absent.
	BySlug(ctx context.Context, slug string) (*domain.Category, error)
}

// InboxService defines the write-side form operations consumed by HTTP handlers.
type InboxService interface {
	// SubscribeNewsletter stores a signup and notifies by mail.
	SubscribeNewsletter(ctx context.Context, name, email string) (*domain.Subscriber, error)
	// SubmitContact stores a contact message and notifies by mail.
	SubmitContact(ctx context.Context, name, email, message string) (*domain.ContactMessage, error)
}

// HTMLRenderer converts content blocks to sanitized HTML.
type HTMLRenderer interface {
	Blocks(blocks []domain.Block) string
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for posts, taxonomy, and inbox forms.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	postSvc  PostService
	userSvc  UserService
	catSvc   CategoryService
	inboxSvc InboxService
	renderer HTMLRenderer
}

// New constructs and returns a Handlers instance bound to the given services.
func New(postSvc PostService, userSvc UserService, catSvc CategoryService, inboxSvc InboxService, renderer HTMLRenderer) *Handlers {
	return &Handlers{
		postSvc:  postSvc,
		userSvc:  userSvc,
		catSvc:   catSvc,
		inboxSvc: inboxSvc,
		renderer: renderer,
	}
}

//
// DTOs
//

// UpdateLikesRequest is the JSON payload for adjusting a post's like counter.
type UpdateLikesRequest struct {
	// Delta is the signed adjustment; negative values retract likes.
	Delta int64 `json:"delta" binding:"required" example:"1"`
}

// PostListResponse wraps a page of posts for list-style endpoints.
type PostListResponse struct {
	Posts []domain.PostWithAuthor `json:"posts"`
}

// PostHTMLResponse carries a post body rendered to sanitized HTML.
type PostHTMLResponse struct {
	Slug string `json:"slug"`
	HTML string `json:"html"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 10
		maxPageSize     = 50
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// ListPosts godoc
// @ID          listPosts
// @Summary     List posts (paginated)
// @Description Returns a recency-ordered page of posts with authors attached.
// @Tags        Posts
// @Produce     json
//
// @Param       page       query  int     false "Page number"      minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"   minimum(1) maximum(50) default(10)
// @Param       category   query  string  false "Category id filter"
// @Param       cursor     query  string  false "Opaque continuation token from a previous page"
//
// @Success     200  {object} services.PostPage
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts [get]
func (h *Handlers) ListPosts(c *gin.Context) {
	page, pageSize := clampPagination(c)
	out, err := h.postSvc.List(c.Request.Context(), page, pageSize, c.Query("category"), c.Query("cursor"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCursor) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid cursor")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}

// FeaturedPosts godoc
// @ID          featuredPosts
// @Summary     Featured posts
// @Description Returns the current featured strip, newest first.
// @Tags        Posts
// @Produce     json
//
// @Success     200  {object} handlers.PostListResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts/featured [get]
func (h *Handlers) FeaturedPosts(c *gin.Context) {
	posts, err := h.postSvc.Featured(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, PostListResponse{Posts: posts})
}

// TrendingPosts godoc
// @ID          trendingPosts
// @Summary     Trending posts (paginated)
// @Description Returns a view-ranked page with a has-more hint.
// @Tags        Posts
// @Produce     json
//
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(50) default(10)
// @Param       cursor     query  string  false "Opaque continuation token"
//
// @Success     200  {object} services.TrendingPage
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts/trending [get]
func (h *Handlers) TrendingPosts(c *gin.Context) {
	page, pageSize := clampPagination(c)
	out, err := h.postSvc.Trending(c.Request.Context(), page, pageSize, c.Query("cursor"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCursor) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid cursor")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}

// PopularPosts godoc
// @ID          popularPosts
// @Summary     Popular posts
// @Description Returns the N most-viewed posts.
// @Tags        Posts
// @Produce     json
//
// @Param       limit  query  int  false "Number of posts"  minimum(1) maximum(50) default(5)
//
// @Success     200  {object} handlers.PostListResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts/popular [get]
func (h *Handlers) PopularPosts(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 5)
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	posts, err := h.postSvc.Popular(c.Request.Context(), limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, PostListResponse{Posts: posts})
}

// SearchPosts godoc
// @ID          searchPosts
// @Summary     Search recent posts
// @Description Case-insensitive substring search over title, excerpt, tags, and category.
// @Tags        Posts
// @Produce     json
//
// @Param       q  query  string  true "Search query"
//
// @Success     200  {object} handlers.PostListResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts/search [get]
func (h *Handlers) SearchPosts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter q is required")
		return
	}
	posts, err := h.postSvc.Search(c.Request.Context(), q)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeSearchFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, PostListResponse{Posts: posts})
}

// GetPost godoc
// @ID          getPost
// @Summary     Get one post
// @Description Returns one post by slug with its author attached.
// @Tags        Posts
// @Produce     json
//
// @Param       slug  path  string  true "Post slug"
//
// @Success     200  {object} domain.PostWithAuthor
// @Failure     404  {object} handlers.ErrorResponse "Post not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts/{slug} [get]
func (h *Handlers) GetPost(c *gin.Context) {
	post, err := h.postSvc.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if post == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
		return
	}
	ok(c, http.StatusOK, post)
}

// GetPostHTML godoc
// @ID          getPostHTML
// @Summary     Get one post rendered to HTML
// @Description Returns the post body blocks rendered to a sanitized HTML fragment.
// @Tags        Posts
// @Produce     json
//
// @Param       slug  path  string  true "Post slug"
//
// @Success     200  {object} handlers.PostHTMLResponse
// @Failure     404  {object} handlers.ErrorResponse "Post not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts/{slug}/html [get]
func (h *Handlers) GetPostHTML(c *gin.Context) {
	post, err := h.postSvc.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if post == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
		return
	}
	ok(c, http.StatusOK, PostHTMLResponse{
		Slug: post.Slug,
		HTML: h.renderer.Blocks(post.Blocks),
	})
}

// RecordView godoc
// @ID          recordView
// @Summary     Record a post view
// @Description Increments the view counter, throttled per slug. Repeat views inside
// @Description the cooldown window succeed without counting.
// @Tags        Posts
//
// @Param       slug  path  string  true "Post slug"
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Post not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts/{slug}/views [post]
func (h *Handlers) RecordView(c *gin.Context) {
	if err := h.postSvc.IncrementViews(c.Request.Context(), c.Param("slug")); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// UpdateLikes godoc
// @ID          updateLikes
// @Summary     Adjust a post's like counter
// @Description Applies a signed delta to the like counter. Negative deltas retract likes.
// @Tags        Posts
// @Accept      json
//
// @Param       slug  path  string                       true "Post slug"
// @Param       body  body  handlers.UpdateLikesRequest  true "Signed like delta"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Post not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /posts/{slug}/likes [post]
func (h *Handlers) UpdateLikes(c *gin.Context) {
	var req UpdateLikesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "delta must be a non-zero integer")
		return
	}

	if err := h.postSvc.UpdateLikes(c.Request.Context(), c.Param("slug"), req.Delta); err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
