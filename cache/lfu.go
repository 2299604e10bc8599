package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LFUCache evicts the entry with the lowest access count; ties are broken by
// evicting the least recently accessed entry among those with the lowest
// count. Unlike Cache, a hit does not change an entry's standing relative to
// entries with other access counts; only frequency governs eviction.
//
// Internally entries are kept in frequency buckets, each bucket ordered by
// recency, so lookups, inserts, and evictions are all O(1).
type LFUCache[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	clock    clockwork.Clock

	entries map[string]*lfuNode[T]
	buckets map[uint64]*list.List // access count -> nodes, front = most recently touched
	minFreq uint64

	hits      uint64
	misses    uint64
	evictions uint64
}

type lfuNode[T any] struct {
	key   string
	entry Entry[T]
	elem  *list.Element
}

// NewLFU creates an LFUCache with the given capacity. Capacity must be
// positive; values below one are raised to one.
func NewLFU[T any](capacity int, opts ...Option) *LFUCache[T] {
	cfg := buildConfig(opts)
	if capacity < 1 {
		capacity = 1
	}
	return &LFUCache[T]{
		capacity: capacity,
		ttl:      cfg.defaultTTL,
		clock:    cfg.clock,
		entries:  make(map[string]*lfuNode[T]),
		buckets:  make(map[uint64]*list.List),
	}
}

// Get returns the value for key if present and not expired. A hit increments
// the entry's access count, moving it to the next frequency bucket. An
// expired entry is removed as a side effect and reported as a miss.
func (c *LFUCache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}

	now := c.clock.Now()
	if node.entry.Expired(now) {
		c.removeNode(node)
		c.misses++
		return zero, false
	}

	c.bump(node)
	node.entry.LastAccessed = now
	c.hits++
	return node.entry.Value, true
}

// Set inserts or overwrites key with the cache's default TTL.
func (c *LFUCache[T]) Set(key string, value T) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL inserts or overwrites key with an explicit TTL. Overwriting resets
// the entry's access count to one. If the key is new and the cache is at
// capacity, the least frequently used entry is evicted before the insert.
func (c *LFUCache[T]) SetTTL(key string, value T, ttl time.Duration) {
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

	if node, ok := c.entries[key]; ok {
		c.detach(node)
		node.entry = entry
		c.attach(node)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evictLFU()
	}

	node := &lfuNode[T]{key: key, entry: entry}
	c.entries[key] = node
	c.attach(node)
}

// Delete removes key if present and reports whether it was present.
func (c *LFUCache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		return false
	}
	c.removeNode(node)
	return true
}

// Contains reports whether key is present and not expired, without touching
// frequency or recency.
func (c *LFUCache[T]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.entries[key]
	if !ok {
		return false
	}
	return !node.entry.Expired(c.clock.Now())
}

// Clear empties the cache and resets its statistics counters.
func (c *LFUCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*lfuNode[T])
	c.buckets = make(map[uint64]*list.List)
	c.minFreq = 0
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// CleanupExpired removes every expired entry and returns the number removed.
func (c *LFUCache[T]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for _, node := range c.entries {
		if node.entry.Expired(now) {
			c.removeNode(node)
			removed++
		}
	}
	return removed
}

// Keys returns the keys of all non-expired entries in unspecified order.
func (c *LFUCache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	keys := make([]string, 0, len(c.entries))
	for key, node := range c.entries {
		if !node.entry.Expired(now) {
			keys = append(keys, key)
		}
	}
	return keys
}

// Len returns the number of physically stored entries.
func (c *LFUCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache's counters.
func (c *LFUCache[T]) Stats() Stats {
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

// Frequencies returns the access count of every stored entry, for
// diagnostics.
func (c *LFUCache[T]) Frequencies() map[string]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	freqs := make(map[string]uint64, len(c.entries))
	for key, node := range c.entries {
		freqs[key] = node.entry.AccessCount
	}
	return freqs
}

// bump moves a node to the next frequency bucket. Callers must hold the
// lock.
func (c *LFUCache[T]) bump(node *lfuNode[T]) {
	c.detach(node)
	node.entry.AccessCount++
	c.attach(node)
}

// attach inserts a node into the bucket matching its access count and lowers
// minFreq if needed. Callers must hold the lock.
func (c *LFUCache[T]) attach(node *lfuNode[T]) {
	freq := node.entry.AccessCount
	bucket, ok := c.buckets[freq]
	if !ok {
		bucket = list.New()
		c.buckets[freq] = bucket
	}
	node.elem = bucket.PushFront(node)
	if c.minFreq == 0 || freq < c.minFreq {
		c.minFreq = freq
	}
}

// detach removes a node from its bucket, advancing minFreq past an emptied
// minimum bucket. Callers must hold the lock.
func (c *LFUCache[T]) detach(node *lfuNode[T]) {
	freq := node.entry.AccessCount
	bucket := c.buckets[freq]
	bucket.Remove(node.elem)
	node.elem = nil
	if bucket.Len() == 0 {
		delete(c.buckets, freq)
		if c.minFreq == freq {
			c.minFreq = c.nextMinFreq(freq)
		}
	}
}

// nextMinFreq finds the smallest populated frequency at or above from.
// Callers must hold the lock.
func (c *LFUCache[T]) nextMinFreq(from uint64) uint64 {
	if len(c.buckets) == 0 {
		return 0
	}
	// A bump moves a node exactly one bucket up, so the next populated
	// bucket is usually from+1. Deletes can leave gaps, so fall back to a
	// scan over the remaining buckets.
	if _, ok := c.buckets[from+1]; ok {
		return from + 1
	}
	var minimum uint64
	for freq := range c.buckets {
		if minimum == 0 || freq < minimum {
			minimum = freq
		}
	}
	return minimum
}

// evictLFU removes the least recently accessed node in the minimum-frequency
// bucket. Callers must hold the lock.
func (c *LFUCache[T]) evictLFU() {
	bucket, ok := c.buckets[c.minFreq]
	if !ok || bucket.Len() == 0 {
		return
	}
	node := bucket.Back().Value.(*lfuNode[T])
	c.removeNode(node)
	c.evictions++
}

func (c *LFUCache[T]) removeNode(node *lfuNode[T]) {
	c.detach(node)
	delete(c.entries, node.key)
}
