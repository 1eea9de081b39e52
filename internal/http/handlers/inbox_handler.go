// Inbox HTTP handlers.
//
// This file exposes the two write-side forms:
//   - POST /newsletter/subscribe   (newsletter signup)
//   - POST /contact                (contact form)
//
// Both store the submission durably and then fire best-effort notification
// emails; a mail failure never turns a stored submission into an HTTP error.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shrawan7650/blog-user-client/internal/services"
)

// SubscribeRequest is the JSON payload for a newsletter signup.
type SubscribeRequest struct {
	Name  string `json:"name" binding:"required" example:"Ada Lovelace"`
	Email string `json:"email" binding:"required" example:"ada@example.com"`
}

// ContactRequest is the JSON payload for a contact form submission.
type ContactRequest struct {
	Name    string `json:"name" binding:"required" example:"Ada Lovelace"`
	Email   string `json:"email" binding:"required" example:"ada@example.com"`
	Message string `json:"message" binding:"required" example:"Loved the deep dive on schedulers."`
}

// SubmittedResponse acknowledges a stored submission.
type SubmittedResponse struct {
	Status string `json:"status" example:"ok"`
}

func inboxStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrMissingField):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, services.ErrInvalidEmail):
		return http.StatusBadRequest, ErrCodeBadRequest
	default:
		return http.StatusInternalServerError, ErrCodeSubmitFailed
	}
}

// Subscribe godoc
// @ID          subscribeNewsletter
// @Summary     Subscribe to the newsletter
// @Description Stores the signup and sends confirmation/alert emails best-effort.
// @Tags        Inbox
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SubscribeRequest  true "Signup payload"
//
// @Success     201  {object} handlers.SubmittedResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /newsletter/subscribe [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name and email are required")
		return
	}

	if _, err := h.inboxSvc.SubscribeNewsletter(c.Request.Context(), req.Name, req.Email); err != nil {
		status, code := inboxStatus(err)
		fail(c, status, code, err.Error())
		return
	}
	ok(c, http.StatusCreated, SubmittedResponse{Status: "ok"})
}

// Contact godoc
// @ID          submitContact
// @Summary     Submit a contact message
// @Description Stores the message and sends confirmation/alert emails best-effort.
// @Tags        Inbox
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ContactRequest  true "Contact payload"
//
// @Success     201  {object} handlers.SubmittedResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contact [post]
func (h *Handlers) Contact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, email, and message are required")
		return
	}

	if _, err := h.inboxSvc.SubmitContact(c.Request.Context(), req.Name, req.Email, req.Message); err != nil {
		status, code := inboxStatus(err)
		fail(c, status, code, err.Error())
		return
	}
	ok(c, http.StatusCreated, SubmittedResponse{Status: "ok"})
}
