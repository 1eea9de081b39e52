package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shrawan7650/blog-user-client/internal/domain"
)

func recvChange(t *testing.T, ch <-chan PostChange) PostChange {
	t.Helper()
	select {
	case c, ok := <-ch:
		if !ok {
			t.Fatalf("watch channel closed early")
		}
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for change notification")
	}
	return PostChange{}
}

func TestWatchPost_InitialStateAndChanges(t *testing.T) {
	db := newTestDB(t)
	seedPost(t, db, "live", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), func(p *domain.Post) { p.Likes = 1 })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := WatchPost(ctx, db, "live", 10*time.Millisecond)

	first := recvChange(t, ch)
	if first.Post == nil || first.Post.Likes != 1 {
		t.Fatalf("initial notification = %+v", first)
	}

	if err := AddLikes(context.Background(), db, "live", 2); err != nil {
		t.Fatalf("AddLikes: %v", err)
	}
	next := recvChange(t, ch)
	if next.Post == nil || next.Post.Likes != 3 {
		t.Fatalf("change notification = %+v", next)
	}

	cancel()
	for range ch {
		// drain until closed
	}
}

func TestWatchPost_AbsentSlugReportsNil(t *testing.T) {
	db := newTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := WatchPost(ctx, db, "ghost", 10*time.Millisecond)

	first := recvChange(t, ch)
	if first.Post != nil {
		t.Fatalf("expected nil post for absent slug, got %+v", first.Post)
	}
	cancel()
}
