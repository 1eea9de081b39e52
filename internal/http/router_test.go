package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shrawan7650/blog-user-client/internal/cache"
	"github.com/shrawan7650/blog-user-client/internal/config"
	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/mail"
	"github.com/shrawan7650/blog-user-client/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// schema so handlers don't explode on list endpoints
	if err := db.AutoMigrate(
		&domain.Post{}, &domain.Author{}, &domain.Category{},
		&domain.Subscriber{}, &domain.ContactMessage{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func baseCfg() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   10,
		CORS:        config.CORSConfig{AllowedOrigins: nil}, // triggers AllowAllOrigins branch
		Security:    config.SecurityConfig{EnableHSTS: false, HSTSMaxAge: 0},
		OTEL:        config.OTELConfig{ServiceName: "test-svc"},
		Cache:       config.CacheConfig{MaxEntries: 64, ViewCooldown: time.Minute},
	}
}

func newTestRouter(t *testing.T, db *gorm.DB, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, db, cache.NewStore(cfg.Cache.MaxEntries), mail.Noop{}, cfg)
	return r
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	db := newTestDB(t, "routerdb")
	r := newTestRouter(t, db, baseCfg())

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || len(w.Body.Bytes()) == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (POST /health)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := baseCfg()
	cfg.APIBasePath = "/api/v2"
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	db := newTestDB(t, "routerdb_cors")
	r := newTestRouter(t, db, cfg)

	// Any request runs through CORS middleware; header should reflect origin.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")) // 12 bytes
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	// "/" and "" should mount at root
	root1 := groupWithPrefix(r, "/")
	root1.GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	root2 := groupWithPrefix(r, "")
	root2.GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })

	// non-root prefix
	api := groupWithPrefix(r, "/api")
	api.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	// Hit all three
	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}

// Smoke test that a request traverses ratelimit + otel + security headers pipeline.
func TestPipeline_Smoke(t *testing.T) {
	cfg := baseCfg()
	cfg.Security = config.SecurityConfig{EnableHSTS: true, HSTSMaxAge: time.Hour} // enabled (but only set on https)
	db := newTestDB(t, "routerdb_pipe")
	r := newTestRouter(t, db, cfg)

	// Any request goes through the middleware stack
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	// simulate https so HSTS could be eligible if middleware checks scheme
	req.URL.Scheme = "https"
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("pipeline GET /health = %d", w.Code)
	}
	// RequestID header should be present (from RequestID middleware)
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

// End-to-end over a seeded database: list, detail, views, and inbox routes
// all reach real services backed by the repo shims.
func TestRoutes_EndToEnd_SeededDB(t *testing.T) {
	db := newTestDB(t, "routerdb_e2e")

	seedAuthor := domain.Author{UID: "u1", Name: "Ada"}
	if err := db.Create(&seedAuthor).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	seedPost := domain.Post{
		ID: "11111111-1111-1111-1111-111111111111", Slug: "go-generics",
		Title: "Generics in practice", CategoryID: "cat-1", CreatedBy: "u1",
		CreatedAt: time.Now().Add(-time.Hour),
	}
	if err := db.Create(&seedPost).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	r := newTestRouter(t, db, baseCfg())

	// List includes the seeded post joined with its author.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/posts = %d body=%s", w.Code, w.Body.String())
	}
	var page struct {
		Posts []struct {
			Slug   string `json:"slug"`
			Author struct {
				Name string `json:"name"`
			} `json:"author"`
		} `json:"posts"`
		TotalPages int `json:"totalPages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(page.Posts) != 1 || page.Posts[0].Slug != "go-generics" || page.Posts[0].Author.Name != "Ada" {
		t.Fatalf("unexpected list page: %+v", page)
	}
	if page.TotalPages != 1 {
		t.Fatalf("TotalPages = %d, want 1", page.TotalPages)
	}

	// Detail by slug.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/posts/go-generics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET detail = %d", w.Code)
	}

	// Unknown slug is a 404, not a 500.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/posts/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET missing detail = %d, want 404", w.Code)
	}

	// View counter accepts the seeded slug.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/posts/go-generics/views", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("POST views = %d, want 204", w.Code)
	}
	var views int64
	if err := db.Model(&domain.Post{}).Where("slug = ?", "go-generics").
		Select("views").Scan(&views).Error; err != nil {
		t.Fatalf("read views: %v", err)
	}
	if views != 1 {
		t.Fatalf("views = %d, want 1", views)
	}

	// Newsletter signup lands in the subscribers table.
	body := bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/newsletter/subscribe", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST subscribe = %d body=%s", w.Code, w.Body.String())
	}
	var subs int64
	if err := db.Model(&domain.Subscriber{}).Count(&subs).Error; err != nil {
		t.Fatalf("count subscribers: %v", err)
	}
	if subs != 1 {
		t.Fatalf("subscribers = %d, want 1", subs)
	}
}

func Test_postRepoShim_Proxies(t *testing.T) {
	db := newTestDB(t, "routerdb_shim")
	shim := postRepoShim{}
	ctx := context.Background()

	seed := domain.Post{
		ID: "22222222-2222-2222-2222-222222222222", Slug: "shim-post",
		Title: "Shim", CategoryID: "cat-1", CreatedBy: "u1",
		CreatedAt: time.Now().Add(-time.Minute),
	}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	// --- ListPosts / CountPosts ---
	rows, err := shim.ListPosts(ctx, db, repo.PostFilter{}, repo.OrderCreatedDesc, 0, 10)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(rows) != 1 || rows[0].Slug != "shim-post" {
		t.Fatalf("ListPosts got %+v", rows)
	}
	n, err := shim.CountPosts(ctx, db, repo.PostFilter{})
	if err != nil || n != 1 {
		t.Fatalf("CountPosts = %d, %v", n, err)
	}

	// --- GetPostBySlug / RecentPosts ---
	got, err := shim.GetPostBySlug(ctx, db, "shim-post")
	if err != nil || got == nil || got.ID != seed.ID {
		t.Fatalf("GetPostBySlug got %+v, %v", got, err)
	}
	recent, err := shim.RecentPosts(ctx, db, 5)
	if err != nil || len(recent) != 1 {
		t.Fatalf("RecentPosts got %d rows, %v", len(recent), err)
	}

	// --- IncrementViews / AddLikes ---
	if err := shim.IncrementViews(ctx, db, "shim-post"); err != nil {
		t.Fatalf("IncrementViews: %v", err)
	}
	if err := shim.AddLikes(ctx, db, "shim-post", 2); err != nil {
		t.Fatalf("AddLikes: %v", err)
	}
	got, err = shim.GetPostBySlug(ctx, db, "shim-post")
	if err != nil {
		t.Fatalf("GetPostBySlug after counters: %v", err)
	}
	if got.Views != 1 || got.Likes != 2 {
		t.Fatalf("counters views=%d likes=%d, want 1/2", got.Views, got.Likes)
	}

	// --- WatchPost delivers the initial state and stops on cancel ---
	wctx, cancel := context.WithCancel(ctx)
	ch := shim.WatchPost(wctx, db, "shim-post", 10*time.Millisecond)
	select {
	case c := <-ch:
		if c.Post == nil || c.Post.Slug != "shim-post" {
			t.Fatalf("WatchPost initial change = %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WatchPost: no initial notification")
	}
	cancel()
}

func Test_taxonomyAndInboxShims_Proxy(t *testing.T) {
	db := newTestDB(t, "routerdb_shim2")
	ctx := context.Background()

	if err := db.Create(&domain.Author{UID: "u9", Name: "Grace"}).Error; err != nil {
		t.Fatalf("seed author: %v", err)
	}
	if err := db.Create(&domain.Category{ID: "c1", Name: "Tech", Slug: "tech"}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if err := db.Create(&domain.Post{
		ID: "33333333-3333-3333-3333-333333333333", Slug: "by-grace",
		Title: "T", CategoryID: "c1", CreatedBy: "u9", CreatedAt: time.Now(),
	}).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}

	a, err := authorRepoShim{}.GetAuthor(ctx, db, "u9")
	if err != nil || a == nil || a.Name != "Grace" {
		t.Fatalf("GetAuthor got %+v, %v", a, err)
	}
	n, err := authorRepoShim{}.CountPostsByCreator(ctx, db, "u9")
	if err != nil || n != 1 {
		t.Fatalf("CountPostsByCreator = %d, %v", n, err)
	}
	creators, err := authorRepoShim{}.ListPostCreators(ctx, db)
	if err != nil || len(creators) != 1 || creators[0] != "u9" {
		t.Fatalf("ListPostCreators got %v, %v", creators, err)
	}

	cats, err := categoryRepoShim{}.ListCategories(ctx, db)
	if err != nil || len(cats) != 1 || cats[0].Slug != "tech" {
		t.Fatalf("ListCategories got %+v, %v", cats, err)
	}

	sub, err := inboxRepoShim{}.CreateSubscriber(ctx, db, "Grace", "grace@example.com")
	if err != nil || sub == nil || sub.ID == "" {
		t.Fatalf("CreateSubscriber got %+v, %v", sub, err)
	}
	msg, err := inboxRepoShim{}.CreateContactMessage(ctx, db, "Grace", "grace@example.com", "hello")
	if err != nil || msg == nil || msg.ID == "" {
		t.Fatalf("CreateContactMessage got %+v, %v", msg, err)
	}
}
