// Package services – cached fetch pipeline
//
// fetchThrough is the shared read path: consult the cache, collapse
// concurrent misses for the same key into a single loader invocation,
// store the result, and hand the value back typed. Loader failures are
// never cached, so the next caller retries naturally.
package services

import (
	"fmt"
	"time"

	"github.com/shrawan7650/blog-user-client/internal/cache"
)

func fetchThrough[T any](store *cache.Store, flight *cache.Flight, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if v, ok := store.Get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := flight.Do(key, func() (any, error) {
		t, err := load()
		if err != nil {
			return nil, err
		}
		store.Set(key, t, ttl)
		return t, nil
	})
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache entry %q holds %T", key, v)
	}
	return t, nil
}
