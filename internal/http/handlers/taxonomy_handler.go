// Taxonomy HTTP handlers.
//
// This file exposes REST endpoints for categories and authors:
//   - GET  /categories             (full taxonomy)
//   - GET  /categories/{slug}      (single category)
//   - GET  /authors/top            (most prolific authors)
//   - GET  /authors/{uid}          (single profile)
//   - GET  /authors/{uid}/posts    (author's posts, paginated)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/services"
	"github.com/shrawan7650/blog-user-client/internal/utils"
)

// CategoryListResponse wraps the full category taxonomy.
type CategoryListResponse struct {
	Categories []domain.Category `json:"categories"`
}

// AuthorListResponse wraps a set of author profiles.
type AuthorListResponse struct {
	Authors []domain.Author `json:"authors"`
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List categories
// @Description Returns every category, name-ordered.
// @Tags        Taxonomy
// @Produce     json
//
// @Success     200  {object} handlers.CategoryListResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	cats, err := h.catSvc.All(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, CategoryListResponse{Categories: cats})
}

// GetCategory godoc
// @ID          getCategory
// @Summary     Get one category
// @Description Returns one category by slug.
// @Tags        Taxonomy
// @Produce     json
//
// @Param       slug  path  string  true "Category slug"
//
// @Success     200  {object} domain.Category
// @Failure     404  {object} handlers.ErrorResponse "Category not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /categories/{slug} [get]
func (h *Handlers) GetCategory(c *gin.Context) {
	cat, err := h.catSvc.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if cat == nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "category not found")
		return
	}
	ok(c, http.StatusOK, cat)
}

// TopAuthors godoc
// @ID          topAuthors
// @Summary     Top authors
// @Description Returns the most prolific authors ranked by post count.
// @Tags        Taxonomy
// @Produce     json
//
// @Param       limit  query  int  false "Number of authors"  minimum(1) maximum(20) default(4)
//
// @Success     200  {object} handlers.AuthorListResponse
// @Router      /authors/top [get]
func (h *Handlers) TopAuthors(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 4)
	if limit < 1 {
		limit = 1
	}
	if limit > 20 {
		limit = 20
	}
	ok(c, http.StatusOK, AuthorListResponse{Authors: h.userSvc.TopAuthors(c.Request.Context(), limit)})
}

// GetAuthor godoc
// @ID          getAuthor
// @Summary     Get one author
// @Description Returns one author profile by uid with the derived post count.
// @Tags        Taxonomy
// @Produce     json
//
// @Param       uid  path  string  true "Author uid"
//
// @Success     200  {object} domain.Author
// @Failure     404  {object} handlers.ErrorResponse "Author not found"
// @Router      /authors/{uid} [get]
func (h *Handlers) GetAuthor(c *gin.Context) {
	a, found := h.userSvc.Resolve(c.Request.Context(), c.Param("uid"))
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "author not found")
		return
	}
	ok(c, http.StatusOK, a)
}

// ListAuthorPosts godoc
// @ID          listAuthorPosts
// @Summary     List an author's posts (paginated)
// @Description Returns a recency-ordered page of posts created by the author.
// @Tags        Taxonomy
// @Produce     json
//
// @Param       uid        path   string  true  "Author uid"
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(50) default(10)
// @Param       cursor     query  string  false "Opaque continuation token"
//
// @Success     200  {object} services.PostPage
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /authors/{uid}/posts [get]
func (h *Handlers) ListAuthorPosts(c *gin.Context) {
	page, pageSize := clampPagination(c)
	out, err := h.postSvc.ByAuthor(c.Request.Context(), c.Param("uid"), page, pageSize, c.Query("cursor"))
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
