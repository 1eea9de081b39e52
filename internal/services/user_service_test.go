package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/cache"
	"github.com/shrawan7650/blog-user-client/internal/domain"
	"github.com/shrawan7650/blog-user-client/internal/repo"
)

// ----- Fake repo -----

type fakeAuthorRepo struct {
	authors  map[string]domain.Author
	counts   map[string]int64
	creators []string

	getCalls   int32
	getErr     error
	countErr   error
	creatorErr error
}

func (r *fakeAuthorRepo) GetAuthor(ctx context.Context, db *gorm.DB, uid string) (*domain.Author, error) {
	atomic.AddInt32(&r.getCalls, 1)
	if r.getErr != nil {
		return nil, r.getErr
	}
	a, ok := r.authors[uid]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &a, nil
}

func (r *fakeAuthorRepo) CountPostsByCreator(ctx context.Context, db *gorm.DB, uid string) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return r.counts[uid], nil
}

func (r *fakeAuthorRepo) ListPostCreators(ctx context.Context, db *gorm.DB) ([]string, error) {
	if r.creatorErr != nil {
		return nil, r.creatorErr
	}
	return r.creators, nil
}

func newUserSvc(r *fakeAuthorRepo) *UserService {
	return NewUserService(nil, r, cache.NewStore(64))
}

// ----- Tests -----

func TestResolve_PopulatesTotalPosts(t *testing.T) {
	r := &fakeAuthorRepo{
		authors: map[string]domain.Author{"u1": {UID: "u1", Name: "Alice"}},
		counts:  map[string]int64{"u1": 7},
	}
	s := newUserSvc(r)

	a, ok := s.Resolve(context.Background(), "u1")
	if !ok || a == nil {
		t.Fatalf("expected present author")
	}
	if a.TotalPosts != 7 {
		t.Fatalf("expected derived TotalPosts 7, got %d", a.TotalPosts)
	}
}

func TestResolve_CachedSecondCallSkipsRepo(t *testing.T) {
	r := &fakeAuthorRepo{
		authors: map[string]domain.Author{"u1": {UID: "u1", Name: "Alice"}},
		counts:  map[string]int64{"u1": 2},
	}
	s := newUserSvc(r)

	ctx := context.Background()
	if _, ok := s.Resolve(ctx, "u1"); !ok {
		t.Fatalf("first resolve failed")
	}
	if _, ok := s.Resolve(ctx, "u1"); !ok {
		t.Fatalf("cached resolve failed")
	}
	if got := atomic.LoadInt32(&r.getCalls); got != 1 {
		t.Fatalf("expected 1 repo lookup, got %d", got)
	}
}

func TestResolve_AbsentAndFailure(t *testing.T) {
	cases := []struct {
		name string
		repo *fakeAuthorRepo
		uid  string
	}{
		{"empty uid", &fakeAuthorRepo{}, ""},
		{"unknown uid", &fakeAuthorRepo{authors: map[string]domain.Author{}}, "ghost"},
		{"lookup error", &fakeAuthorRepo{getErr: errors.New("timeout")}, "u1"},
		{"count error", &fakeAuthorRepo{
			authors:  map[string]domain.Author{"u1": {UID: "u1"}},
			countErr: errors.New("timeout"),
		}, "u1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newUserSvc(tc.repo)
			if a, ok := s.Resolve(context.Background(), tc.uid); ok || a != nil {
				t.Fatalf("expected absent author, got %+v", a)
			}
		})
	}
}

func TestResolveMany_ReturnsOnlyResolved(t *testing.T) {
	r := &fakeAuthorRepo{
		authors: map[string]domain.Author{
			"u1": {UID: "u1", Name: "Alice"},
			"u2": {UID: "u2", Name: "Bob"},
		},
		counts: map[string]int64{"u1": 1, "u2": 2},
	}
	s := newUserSvc(r)

	got := s.ResolveMany(context.Background(), []string{"u1", "u2", "ghost"})
	if len(got) != 2 {
		t.Fatalf("expected 2 resolved, got %d", len(got))
	}
	if got["u1"].Name != "Alice" || got["u2"].Name != "Bob" {
		t.Fatalf("wrong profiles: %+v", got)
	}
	if _, ok := got["ghost"]; ok {
		t.Fatalf("unresolvable uid must be absent from the map")
	}
}

func TestTopAuthors_TallyAndOrder(t *testing.T) {
	r := &fakeAuthorRepo{
		authors: map[string]domain.Author{
			"u1": {UID: "u1", Name: "Alice"},
			"u2": {UID: "u2", Name: "Bob"},
			"u3": {UID: "u3", Name: "Cara"},
		},
		counts:   map[string]int64{"u1": 1, "u2": 1, "u3": 1},
		creators: []string{"u2", "u1", "u2", "u3", "u2", "u1", "", "ghost"},
	}
	s := newUserSvc(r)

	got := s.TopAuthors(context.Background(), 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 authors, got %d", len(got))
	}
	if got[0].UID != "u2" || got[0].TotalPosts != 3 {
		t.Fatalf("expected u2 with tally 3 first, got %+v", got[0])
	}
	if got[1].UID != "u1" || got[1].TotalPosts != 2 {
		t.Fatalf("expected u1 with tally 2 second, got %+v", got[1])
	}
}

func TestTopAuthors_SkipsUnresolvable(t *testing.T) {
	r := &fakeAuthorRepo{
		authors:  map[string]domain.Author{"u1": {UID: "u1", Name: "Alice"}},
		counts:   map[string]int64{"u1": 1},
		creators: []string{"ghost", "ghost", "u1"},
	}
	s := newUserSvc(r)

	got := s.TopAuthors(context.Background(), 4)
	if len(got) != 1 || got[0].UID != "u1" {
		t.Fatalf("expected only u1, got %+v", got)
	}
}

func TestTopAuthors_TallyFailureYieldsEmpty(t *testing.T) {
	s := newUserSvc(&fakeAuthorRepo{creatorErr: errors.New("down")})
	if got := s.TopAuthors(context.Background(), 4); len(got) != 0 {
		t.Fatalf("expected empty slice on failure, got %+v", got)
	}
}
