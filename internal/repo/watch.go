// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the change watcher behind live post
// subscriptions: a polling loop that re-reads one slug and emits the row
// whenever it observes a different revision.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shrawan7650/blog-user-client/internal/domain"
)

// WatchInterval is the default poll period for WatchPost.
const WatchInterval = 2 * time.Second

// PostChange is one notification from WatchPost. Post is nil when the row
// does not exist (deleted, or never present).
type PostChange struct {
	Post *domain.Post
}

// revision is the subset of a post that marks it as changed.
type revision struct {
	updatedAt time.Time
	views     int64
	likes     int64
}

// WatchPost polls the post carrying slug every interval and sends a
// notification for the initial state and for every observed change
// (updated timestamp or either counter moving). Absence is reported as a
// nil post, once per transition. Transient store failures are skipped and
// polling continues. The channel is closed when ctx is done; cancelling
// the context is the only way to release the watcher.
func WatchPost(ctx context.Context, db *gorm.DB, slug string, interval time.Duration) <-chan PostChange {
	if interval <= 0 {
		interval = WatchInterval
	}
	ch := make(chan PostChange, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		notified := false
		var last *revision

		send := func(c PostChange) bool {
			select {
			case ch <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		poll := func() bool {
			p, err := GetPostBySlug(ctx, db, slug)
			switch {
			case err == nil:
				rev := revision{updatedAt: p.UpdatedAt, views: p.Views, likes: p.Likes}
				if !notified || last == nil || *last != rev {
					notified = true
					last = &rev
					return send(PostChange{Post: p})
				}
			case errors.Is(err, ErrNotFound):
				if !notified || last != nil {
					notified = true
					last = nil
					return send(PostChange{Post: nil})
				}
			}
			return true
		}

		if !poll() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !poll() {
					return
				}
			}
		}
	}()
	return ch
}
