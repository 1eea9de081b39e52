// Package cache implements the in-memory read-path cache placed in front of
// the document store, together with the request deduplicator (flight.go).
//
// The store maps string keys to arbitrary values with a per-entry TTL.
// Expired entries are treated as absent and evicted lazily on the next
// access; there is no background sweep. On top of TTL expiry the store
// carries an LRU backstop so total entries stay bounded even under key
// churn (paginated listing keys, per-slug throttle markers).
//
// Instances are explicitly constructed and injected into the service layer;
// there is no package-level singleton, so tests get isolation with a fresh
// store per test and can substitute the clock.
package cache

import (
	"container/list"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TTL classes used by the service layer. Listing queries take the short
// class, expensive or slow-changing composites the long one; search results
// are cached even more briefly.
const (
	ShortTTL  = 5 * time.Minute
	LongTTL   = 30 * time.Minute
	SearchTTL = 2 * time.Minute
)

// DefaultMaxEntries caps the store when no explicit bound is given.
const DefaultMaxEntries = 4096

var (
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_cache_requests_total",
			Help: "Cache lookups by outcome (hit, miss, expired).",
		},
		[]string{"outcome"},
	)
	cacheEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_cache_evictions_total",
			Help: "Entries evicted by the LRU backstop.",
		},
	)
)

func init() {
	prometheus.MustRegister(cacheHits, cacheEvictions)
}

// entry is one cached value. An entry is valid iff now-storedAt <= ttl.
type entry struct {
	key      string
	value    any
	storedAt time.Time
	ttl      time.Duration
}

// Store is a TTL key/value cache with substring invalidation and an LRU
// entry cap. It is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*list.Element // key -> element holding *entry
	order      *list.List               // front = most recently used
	maxEntries int
	now        func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock substitutes the time source. Tests use this to simulate TTL
// expiry and throttle windows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty Store bounded to maxEntries (DefaultMaxEntries
// when maxEntries <= 0).
func NewStore(maxEntries int, opts ...Option) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	s := &Store{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the cached value for key. Expired entries are deleted and
// reported as absent.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		cacheHits.WithLabelValues("miss").Inc()
		return nil, false
	}
	e := el.Value.(*entry)
	if s.now().Sub(e.storedAt) > e.ttl {
		s.removeLocked(el)
		cacheHits.WithLabelValues("expired").Inc()
		return nil, false
	}
	s.order.MoveToFront(el)
	cacheHits.WithLabelValues("hit").Inc()
	return e.value, true
}

// Set stores value under key for ttl (ShortTTL when ttl <= 0), replacing any
// previous entry. When the store is full the least-recently-used entry is
// evicted first.
func (s *Store) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = ShortTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		e := el.Value.(*entry)
		e.value = value
		e.storedAt = s.now()
		e.ttl = ttl
		s.order.MoveToFront(el)
		return
	}
	for s.order.Len() >= s.maxEntries {
		s.removeLocked(s.order.Back())
		cacheEvictions.Inc()
	}
	el := s.order.PushFront(&entry{key: key, value: value, storedAt: s.now(), ttl: ttl})
	s.entries[key] = el
}

// Delete removes the exact key if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[key]; ok {
		s.removeLocked(el)
	}
}

// Invalidate removes every entry whose key contains pattern as a substring.
// A write to one entity can this way drop all cached composites that embed
// it without a global flush. It returns the number of entries removed.
func (s *Store) Invalidate(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, el := range s.entries {
		if strings.Contains(key, pattern) {
			s.removeLocked(el)
			removed++
		}
	}
	return removed
}

// Purge drops every entry.
func (s *Store) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*list.Element)
	s.order.Init()
}

// Len reports the current number of entries, including any not yet lazily
// expired.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *Store) removeLocked(el *list.Element) {
	e := el.Value.(*entry)
	s.order.Remove(el)
	delete(s.entries, e.key)
}
