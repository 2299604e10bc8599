package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache is the base container: a bounded key/value store with per-entry TTL
// and least-recently-used eviction. Both Get and Set touch recency; when an
// insert would exceed capacity, the entry least recently touched is evicted.
// Among entries never touched since insertion, the one inserted earliest is
// evicted first.
type Cache[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	clock    clockwork.Clock

	entries map[string]*list.Element
	order   *list.List // front = most recently used

	hits      uint64
	misses    uint64
	evictions uint64

	// onEvict, when set, receives every entry removed by capacity
	// eviction. Used by HierarchicalCache to demote L1 evictees into L2.
	// Called while the cache lock is held; must not call back into this
	// cache.
	onEvict func(key string, entry Entry[T])
}

type lruItem[T any] struct {
	key   string
	entry Entry[T]
}

// New creates a Cache with the given capacity. Capacity must be positive;
// values below one are raised to one.
func New[T any](capacity int, opts ...Option) *Cache[T] {
	cfg := buildConfig(opts)
	if capacity < 1 {
		capacity = 1
	}
	return &Cache[T]{
		capacity: capacity,
		ttl:      cfg.defaultTTL,
		clock:    cfg.clock,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// Get returns the value for key if present and not expired. A hit moves the
// entry to the most-recently-used position and increments its access count.
// An expired entry is removed as a side effect and reported as a miss.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	item := elem.Value.(*lruItem[T])
	now := c.clock.Now()
	if item.entry.Expired(now) {
		c.removeElement(elem)
		c.misses++
		return zero, false
	}

	item.entry.AccessCount++
	item.entry.LastAccessed = now
	c.order.MoveToFront(elem)
	c.hits++
	return item.entry.Value, true
}

// Set inserts or overwrites key with the cache's default TTL.
func (c *Cache[T]) Set(key string, value T) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL inserts or overwrites key with an explicit TTL. A non-positive ttl
// stores the entry without expiration. If the key is new and the cache is at
// capacity, exactly one entry is evicted before the insert.
func (c *Cache[T]) SetTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	entry := Entry[T]{
		Value:        value,
		CreatedAt:    now,
		ExpiresAt:    expiresAt(now, ttl),
		LastAccessed: now,
		AccessCount:  1,
	}
	c.insertEntry(key, entry)
}

// Delete removes key if present and reports whether it was present.
func (c *Cache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

// Contains reports whether key is present and not expired, without touching
// recency or access counts.
func (c *Cache[T]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	return !elem.Value.(*lruItem[T]).entry.Expired(c.clock.Now())
}

// Clear empties the cache and resets its statistics counters.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// CleanupExpired removes every expired entry and returns the number removed.
func (c *Cache[T]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if elem.Value.(*lruItem[T]).entry.Expired(now) {
			c.removeElement(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Keys returns the keys of all non-expired entries, most recently used first.
func (c *Cache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	keys := make([]string, 0, len(c.entries))
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		item := elem.Value.(*lruItem[T])
		if !item.entry.Expired(now) {
			keys = append(keys, item.key)
		}
	}
	return keys
}

// Len returns the number of physically stored entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache's counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Size:      len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// insertEntry stores an entry under key, evicting the LRU entry first when
// the key is new and the cache is full. Callers must hold the lock.
func (c *Cache[T]) insertEntry(key string, entry Entry[T]) {
	if elem, ok := c.entries[key]; ok {
		elem.Value.(*lruItem[T]).entry = entry
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictLRU()
	}
	c.entries[key] = c.order.PushFront(&lruItem[T]{key: key, entry: entry})
}

// evictLRU removes the entry at the back of the recency list. Callers must
// hold the lock.
func (c *Cache[T]) evictLRU() {
	elem := c.order.Back()
	if elem == nil {
		return
	}
	item := elem.Value.(*lruItem[T])
	c.removeElement(elem)
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(item.key, item.entry)
	}
}

func (c *Cache[T]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.entries, elem.Value.(*lruItem[T]).key)
}

// take removes and returns the entry for key if present and fresh. An
// expired entry is removed and reported as a miss. Used by HierarchicalCache
// to transfer entries between tiers with their metadata intact.
func (c *Cache[T]) take(key string) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return Entry[T]{}, false
	}

	item := elem.Value.(*lruItem[T])
	now := c.clock.Now()
	if item.entry.Expired(now) {
		c.removeElement(elem)
		c.misses++
		return Entry[T]{}, false
	}

	item.entry.AccessCount++
	item.entry.LastAccessed = now
	entry := item.entry
	c.removeElement(elem)
	c.hits++
	return entry, true
}

// putEntry inserts an entry preserving its existing metadata, evicting per
// policy when the key is new and the cache is full. Used for promotion and
// demotion between tiers.
func (c *Cache[T]) putEntry(key string, entry Entry[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertEntry(key, entry)
}
