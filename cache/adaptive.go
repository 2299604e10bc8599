package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	defaultWindowSize      = 100
	defaultSwitchThreshold = 0.5
)

// Mode identifies the eviction behavior an AdaptiveCache is currently
// applying.
type Mode string

const (
	ModeLRU Mode = "lru"
	ModeLFU Mode = "lfu"
)

// victimPolicy selects the element to evict from a recency-ordered list whose
// items carry access counts. Implementations are consulted only at eviction
// time; they never mutate the cache.
type victimPolicy interface {
	Mode() Mode
	Victim(order *list.List) *list.Element
}

// lruPolicy evicts the least recently used element: the back of the recency
// list.
type lruPolicy[T any] struct{}

func (lruPolicy[T]) Mode() Mode { return ModeLRU }

func (lruPolicy[T]) Victim(order *list.List) *list.Element {
	return order.Back()
}

// lfuPolicy evicts the element with the lowest access count, breaking ties
// by oldest last access.
type lfuPolicy[T any] struct{}

func (lfuPolicy[T]) Mode() Mode { return ModeLFU }

func (lfuPolicy[T]) Victim(order *list.List) *list.Element {
	var victim *list.Element
	for elem := order.Front(); elem != nil; elem = elem.Next() {
		if victim == nil {
			victim = elem
			continue
		}
		cand, best := &elem.Value.(*lruItem[T]).entry, &victim.Value.(*lruItem[T]).entry
		if cand.AccessCount < best.AccessCount ||
			(cand.AccessCount == best.AccessCount && cand.LastAccessed.Before(best.LastAccessed)) {
			victim = elem
		}
	}
	return victim
}

// AdaptiveCache behaves as an LRU cache under scan-heavy workloads and as an
// LFU cache under repeat-heavy ones. It records the keys of the last N
// accesses; at each eviction event it compares the ratio of repeat-key
// accesses to unique keys in that window against a threshold and picks the
// governing policy accordingly. The decision is made per eviction, not per
// access, to bound overhead.
//
// The window size and threshold are tuning knobs, not contracts; only the
// qualitative favor-recency versus favor-frequency behavior is guaranteed.
type AdaptiveCache[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	clock    clockwork.Clock

	entries map[string]*list.Element
	order   *list.List // front = most recently used

	window    []string // ring buffer of recently accessed keys
	windowPos int
	windowLen int
	threshold float64

	policy   victimPolicy
	switches uint64

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewAdaptive creates an AdaptiveCache with the given capacity. It starts in
// LRU mode. Capacity must be positive; values below one are raised to one.
func NewAdaptive[T any](capacity int, opts ...Option) *AdaptiveCache[T] {
	cfg := buildConfig(opts)
	if capacity < 1 {
		capacity = 1
	}
	return &AdaptiveCache[T]{
		capacity:  capacity,
		ttl:       cfg.defaultTTL,
		clock:     cfg.clock,
		entries:   make(map[string]*list.Element),
		order:     list.New(),
		window:    make([]string, cfg.windowSize),
		threshold: cfg.switchThreshold,
		policy:    lruPolicy[T]{},
	}
}

// Get returns the value for key if present and not expired. Hits and misses
// both count as accesses in the adaptation window.
func (c *AdaptiveCache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.Lock()
	defer c.mu.Unlock()

	c.recordAccess(key)

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
func (c *AdaptiveCache[T]) Set(key string, value T) {
	c.SetTTL(key, value, c.ttl)
}

// SetTTL inserts or overwrites key with an explicit TTL. If the key is new
// and the cache is at capacity, the governing policy is re-evaluated and one
// entry is evicted before the insert.
func (c *AdaptiveCache[T]) SetTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.recordAccess(key)

	now := c.clock.Now()
	entry := Entry[T]{
		Value:        value,
		CreatedAt:    now,
		ExpiresAt:    expiresAt(now, ttl),
		LastAccessed: now,
		AccessCount:  1,
	}

	if elem, ok := c.entries[key]; ok {
		elem.Value.(*lruItem[T]).entry = entry
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evict()
	}
	c.entries[key] = c.order.PushFront(&lruItem[T]{key: key, entry: entry})
}

// Delete removes key if present and reports whether it was present.
func (c *AdaptiveCache[T]) Delete(key string) bool {
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
// recency, access counts, or the adaptation window.
func (c *AdaptiveCache[T]) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}
	return !elem.Value.(*lruItem[T]).entry.Expired(c.clock.Now())
}

// Clear empties the cache, resets its statistics counters, and returns it to
// LRU mode with an empty adaptation window.
func (c *AdaptiveCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.windowPos = 0
	c.windowLen = 0
	c.policy = lruPolicy[T]{}
	c.switches = 0
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

// CleanupExpired removes every expired entry and returns the number removed.
func (c *AdaptiveCache[T]) CleanupExpired() int {
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
func (c *AdaptiveCache[T]) Keys() []string {
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
func (c *AdaptiveCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache's counters.
func (c *AdaptiveCache[T]) Stats() Stats {
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

// Mode returns the eviction behavior currently governing the cache.
func (c *AdaptiveCache[T]) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.policy.Mode()
}

// Switches returns how many times the cache has changed mode since
// construction or the last Clear.
func (c *AdaptiveCache[T]) Switches() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switches
}

// recordAccess appends a key to the trailing access window. Callers must
// hold the lock.
func (c *AdaptiveCache[T]) recordAccess(key string) {
	c.window[c.windowPos] = key
	c.windowPos = (c.windowPos + 1) % len(c.window)
	if c.windowLen < len(c.window) {
		c.windowLen++
	}
}

// evict re-evaluates the governing policy from the access window and removes
// the entry it selects. Callers must hold the lock.
func (c *AdaptiveCache[T]) evict() {
	next := c.choosePolicy()
	if next.Mode() != c.policy.Mode() {
		c.policy = next
		c.switches++
	}
	if elem := c.policy.Victim(c.order); elem != nil {
		c.removeElement(elem)
		c.evictions++
	}
}

// choosePolicy inspects the trailing window: when repeat accesses dominate
// unique keys the workload rewards keeping frequent entries (LFU), otherwise
// recent ones (LRU). Callers must hold the lock.
func (c *AdaptiveCache[T]) choosePolicy() victimPolicy {
	if c.windowLen == 0 {
		return lruPolicy[T]{}
	}
	seen := make(map[string]struct{}, c.windowLen)
	for i := 0; i < c.windowLen; i++ {
		seen[c.window[i]] = struct{}{}
	}
	unique := len(seen)
	repeats := c.windowLen - unique
	if float64(repeats)/float64(unique) > c.threshold {
		return lfuPolicy[T]{}
	}
	return lruPolicy[T]{}
}

func (c *AdaptiveCache[T]) removeElement(elem *list.Element) {
	c.order.Remove(elem)
	delete(c.entries, elem.Value.(*lruItem[T]).key)
}
