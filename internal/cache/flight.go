// Package cache – request deduplication.
//
// A Flight collapses concurrent identical fetches into one underlying call:
// the first caller for a key runs the factory, every caller that arrives
// while it is in flight attaches to the same pending result, and the key is
// forgotten unconditionally when the call settles. A failed fetch therefore
// never blocks a fresh attempt; all waiters of one flight observe the same
// value or the same error. There is no backoff or circuit breaking here.
package cache

import (
	"golang.org/x/sync/singleflight"
)

// Flight deduplicates in-flight fetches by cache key. The zero value is
// ready to use and safe for concurrent use.
type Flight struct {
	group singleflight.Group
}

// Do returns the result of factory for key, running it at most once per
// in-flight window regardless of how many callers arrive concurrently.
// The second return of singleflight ("shared") is intentionally dropped;
// callers cannot tell whether they attached to an existing flight, and the
// contract does not let them.
func (f *Flight) Do(key string, factory func() (any, error)) (any, error) {
	v, err, _ := f.group.Do(key, factory)
	return v, err
}
