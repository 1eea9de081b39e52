package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/services"
)

func newInboxRouter(inbox stubInboxSvc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(stubPostSvc{}, stubUserSvc{}, stubCatSvc{}, inbox, stubRenderer{})
	r := gin.New()
	r.POST("/newsletter/subscribe", h.Subscribe)
	r.POST("/contact", h.Contact)
	return r
}

func TestSubscribe_Created(t *testing.T) {
	inbox := stubInboxSvc{subscribe: func(ctx context.Context, name, email string) (*domain.Subscriber, error) {
		if name != "Ada" || email != "ada@example.com" {
			t.Fatalf("payload not forwarded: %q %q", name, email)
		}
		return &domain.Subscriber{ID: "s1"}, nil
	}}
	w := doReq(newInboxRouter(inbox), http.MethodPost, "/newsletter/subscribe",
		[]byte(`{"name":"Ada","email":"ada@example.com"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var resp SubmittedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Status != "ok" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestSubscribe_MissingFieldsAre400(t *testing.T) {
	r := newInboxRouter(stubInboxSvc{subscribe: func(context.Context, string, string) (*domain.Subscriber, error) {
		t.Fatalf("service should not be called on binding error")
		return nil, nil
	}})
	if w := doReq(r, http.MethodPost, "/newsletter/subscribe", []byte(`{"name":"Ada"}`)); w.Code != http.StatusBadRequest {
		t.Fatalf("missing email expected 400, got %d", w.Code)
	}
}

func TestSubscribe_InvalidEmailIs400(t *testing.T) {
	inbox := stubInboxSvc{subscribe: func(context.Context, string, string) (*domain.Subscriber, error) {
		return nil, services.ErrInvalidEmail
	}}
	w := doReq(newInboxRouter(inbox), http.MethodPost, "/newsletter/subscribe",
		[]byte(`{"name":"Ada","email":"nope"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeBadRequest {
		t.Fatalf("expected code %q, got %q", ErrCodeBadRequest, er.Code)
	}
}

func TestContact_CreatedAndStoreFailure(t *testing.T) {
	inbox := stubInboxSvc{contact: func(ctx context.Context, name, email, message string) (*domain.ContactMessage, error) {
		if message == "boom" {
			return nil, errors.New("insert failed")
		}
		return &domain.ContactMessage{ID: "m1"}, nil
	}}
	r := newInboxRouter(inbox)

	w := doReq(r, http.MethodPost, "/contact",
		[]byte(`{"name":"Ada","email":"ada@example.com","message":"hello"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	w = doReq(r, http.MethodPost, "/contact",
		[]byte(`{"name":"Ada","email":"ada@example.com","message":"boom"}`))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on store failure, got %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeSubmitFailed {
		t.Fatalf("expected code %q, got %q", ErrCodeSubmitFailed, er.Code)
	}
}
