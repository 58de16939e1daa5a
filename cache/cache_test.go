package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestPutThenGet(t *testing.T) {
	clock := newClock()
	c := New[string](WithClock(clock.Now))

	c.Put("https://a.example/1", "first")

	e, ok := c.Get("https://a.example/1")
	require.True(t, ok)
	assert.Equal(t, "first", e.Value)
	assert.Equal(t, clock.Now(), e.FetchedAt)

	_, ok = c.Get("https://a.example/2")
	assert.False(t, ok)
}

func TestPutReplacesEntry(t *testing.T) {
	clock := newClock()
	c := New[string](WithClock(clock.Now))

	c.Put("https://a.example/1", "old")
	clock.Advance(time.Minute)
	c.Put("https://a.example/1", "new")

	e, ok := c.Get("https://a.example/1")
	require.True(t, ok)
	assert.Equal(t, "new", e.Value)
	assert.Equal(t, clock.Now(), e.FetchedAt)
	assert.Equal(t, 1, c.Len())
}

func TestClear(t *testing.T) {
	c := New[int]()
	c.Put("a", 1)
	c.Put("b", 2)

	c.Clear()

	assert.Equal(t, 0, c.Snapshot().Count)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestDeleteRemovesOnlyOne(t *testing.T) {
	c := New[int]()
	c.Put("a", 1)
	c.Put("b", 2)

	c.Delete("a")
	c.Delete("missing")

	_, ok := c.Get("a")
	assert.False(t, ok)
	e, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, e.Value)
}

func TestSnapshotIsSortedCopy(t *testing.T) {
	clock := newClock()
	c := New[int](WithClock(clock.Now))
	c.Put("c", 3)
	clock.Advance(time.Second)
	c.Put("a", 1)
	c.Put("b", 2)

	s := c.Snapshot()
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, []string{"a", "b", "c"}, s.Addresses)
	assert.Equal(t, clock.Now().Add(-time.Second), s.Timestamps["c"])

	// Mutating the snapshot must not leak into the cache.
	s.Addresses[0] = "zzz"
	delete(s.Timestamps, "b")
	again := c.Snapshot()
	assert.Equal(t, []string{"a", "b", "c"}, again.Addresses)
	assert.Len(t, again.Timestamps, 3)
}

func TestMaxEntriesEvicts(t *testing.T) {
	c := New[int](WithMaxEntries(2))
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10) // replacing an existing key never evicts
	assert.Equal(t, 2, c.Len())

	c.Put("c", 3)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("c")
	assert.True(t, ok)
}

func TestUnboundedByDefault(t *testing.T) {
	c := New[int]()
	for i := 0; i < 5000; i++ {
		c.Put(fmt.Sprintf("addr-%d", i), i)
	}
	assert.Equal(t, 5000, c.Len())
}

func TestTTLExpiry(t *testing.T) {
	clock := newClock()
	c := New[string](WithClock(clock.Now), WithTTL(time.Hour))
	c.Put("a", "v")

	clock.Advance(59 * time.Minute)
	_, ok := c.Get("a")
	assert.True(t, ok)

	clock.Advance(2 * time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			addr := fmt.Sprintf("addr-%d", n%4)
			for j := 0; j < 200; j++ {
				c.Put(addr, j)
				c.Get(addr)
				if j%50 == 0 {
					c.Snapshot()
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, c.Len())
}
