package cache

import (
	"sort"
	"sync"
	"time"
)

// Entry is a cached extraction result with the time it was stored.
type Entry[T any] struct {
	Value     T
	FetchedAt time.Time
}

// Snapshot is a point-in-time copy of a cache's metadata.
type Snapshot struct {
	Count      int                  `json:"count"`
	Addresses  []string             `json:"addresses"`
	Timestamps map[string]time.Time `json:"timestamps"`
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now        func() time.Time
	maxEntries int
	ttl        time.Duration
}

// WithClock overrides the clock used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMaxEntries caps the number of entries. When the cache is full an
// arbitrary entry is evicted to make room. n <= 0 means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithTTL makes entries older than ttl read as misses. Expired entries are
// dropped lazily on Get. ttl <= 0 disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// Cache maps a source address to the last value extracted from it.
// It is safe for concurrent use. Get never waits on a fetch: fetches run
// outside the lock and only Put takes the write lock.
type Cache[T any] struct {
	mu    sync.RWMutex
	store map[string]Entry[T]
	opts  options
}

// New creates an empty Cache. Without options it is unbounded and entries
// live until Clear or Delete.
func New[T any](opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, fn := range opts {
		fn(&o)
	}
	return &Cache[T]{
		store: make(map[string]Entry[T]),
		opts:  o,
	}
}

// Get returns the entry stored for address, if any.
func (c *Cache[T]) Get(address string) (Entry[T], bool) {
	c.mu.RLock()
	e, ok := c.store[address]
	c.mu.RUnlock()

	if !ok {
		return Entry[T]{}, false
	}
	if c.opts.ttl > 0 && c.opts.now().Sub(e.FetchedAt) > c.opts.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Put may have refreshed it.
		if cur, still := c.store[address]; still && cur.FetchedAt.Equal(e.FetchedAt) {
			delete(c.store, address)
		}
		c.mu.Unlock()
		return Entry[T]{}, false
	}
	return e, true
}

// Put stores value for address stamped with the current time, replacing
// any previous entry. It returns the stored entry.
func (c *Cache[T]) Put(address string, value T) Entry[T] {
	now := c.opts.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[address]; !exists && c.opts.maxEntries > 0 && len(c.store) >= c.opts.maxEntries {
		// Map iteration order is random, so this drops an arbitrary entry.
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	e := Entry[T]{Value: value, FetchedAt: now}
	c.store[address] = e
	return e
}

// Clear removes every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.store = make(map[string]Entry[T])
	c.mu.Unlock()
}

// Delete removes the entry for address. It is a no-op when absent.
func (c *Cache[T]) Delete(address string) {
	c.mu.Lock()
	delete(c.store, address)
	c.mu.Unlock()
}

// Len returns the number of entries.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Snapshot returns a copy of the cache metadata. Addresses are sorted.
func (c *Cache[T]) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Count:      len(c.store),
		Addresses:  make([]string, 0, len(c.store)),
		Timestamps: make(map[string]time.Time, len(c.store)),
	}
	for addr, e := range c.store {
		s.Addresses = append(s.Addresses, addr)
		s.Timestamps[addr] = e.FetchedAt
	}
	sort.Strings(s.Addresses)
	return s
}
