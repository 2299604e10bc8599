package cache

import (
	"sync"
	"time"
)

// HierarchicalCache composes two LRU tiers: a small L1 for the hot working
// set and a larger L2 behind it. Inserts land in L1; an entry evicted from L1
// is demoted into L2 rather than lost, and an L2 hit promotes the entry back
// into L1. Promotion and demotion transfer entries with their TTL and access
// metadata intact, so a key is never stored in both tiers at once. Only an
// L2 eviction is a true loss.
//
// This bounds the cost of frequent lookups to L1 while retaining a working
// set of up to l1+l2 entries, without sizing a single tier that large.
type HierarchicalCache[T any] struct {
	mu sync.Mutex
	l1 *Cache[T]
	l2 *Cache[T]

	l1Hits     uint64
	l2Hits     uint64
	misses     uint64
	promotions uint64
	demotions  uint64
}

// NewHierarchical creates a two-tier cache with the given per-tier
// capacities. Options apply to both tiers.
func NewHierarchical[T any](l1Capacity, l2Capacity int, opts ...Option) *HierarchicalCache[T] {
	h := &HierarchicalCache[T]{
		l1: New[T](l1Capacity, opts...),
		l2: New[T](l2Capacity, opts...),
	}
	// Demote L1 evictees into L2. The hook runs under L1's lock; it only
	// touches L2, so lock order is always L1 then L2.
	h.l1.onEvict = func(key string, entry Entry[T]) {
		h.demotions++
		h.l2.putEntry(key, entry)
	}
	return h
}

// Get checks L1 first and returns immediately on a hit. On an L1 miss it
// checks L2; an L2 hit transfers the entry into L1 (possibly demoting an L1
// entry back into L2) before returning.
func (h *HierarchicalCache[T]) Get(key string) (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if v, ok := h.l1.Get(key); ok {
		h.l1Hits++
		return v, true
	}

	entry, ok := h.l2.take(key)
	if !ok {
		h.misses++
		var zero T
		return zero, false
	}

	h.l2Hits++
	h.promotions++
	h.l1.putEntry(key, entry)
	return entry.Value, true
}

// Set inserts or overwrites key in L1 with the default TTL.
func (h *HierarchicalCache[T]) Set(key string, value T) {
	h.SetTTL(key, value, h.l1.ttl)
}

// SetTTL inserts or overwrites key in L1 with an explicit TTL. If L1 is full
// the demoted entry moves into L2, which may in turn evict for good.
func (h *HierarchicalCache[T]) SetTTL(key string, value T, ttl time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// An overwrite must not leave a stale copy behind in L2.
	h.l2.Delete(key)
	h.l1.SetTTL(key, value, ttl)
}

// Delete removes key from whichever tier holds it and reports whether it was
// present.
func (h *HierarchicalCache[T]) Delete(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	deleted := h.l1.Delete(key)
	if h.l2.Delete(key) {
		deleted = true
	}
	return deleted
}

// Contains reports whether key is present and not expired in either tier,
// without promotion or access tracking.
func (h *HierarchicalCache[T]) Contains(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.l1.Contains(key) || h.l2.Contains(key)
}

// Clear empties both tiers and resets all counters.
func (h *HierarchicalCache[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.l1.Clear()
	h.l2.Clear()
	h.l1Hits = 0
	h.l2Hits = 0
	h.misses = 0
	h.promotions = 0
	h.demotions = 0
}

// CleanupExpired removes expired entries from both tiers and returns the
// total removed.
func (h *HierarchicalCache[T]) CleanupExpired() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.l1.CleanupExpired() + h.l2.CleanupExpired()
}

// Keys returns the non-expired keys of both tiers, L1 first.
func (h *HierarchicalCache[T]) Keys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append(h.l1.Keys(), h.l2.Keys()...)
}

// Len returns the union size across both tiers.
func (h *HierarchicalCache[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.l1.Len() + h.l2.Len()
}

// Stats returns combined counters: hits are L1 plus L2 hits, and evictions
// count only true losses out of L2.
func (h *HierarchicalCache[T]) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		Size:      h.l1.Len() + h.l2.Len(),
		Capacity:  h.l1.capacity + h.l2.capacity,
		Hits:      h.l1Hits + h.l2Hits,
		Misses:    h.misses,
		Evictions: h.l2.Stats().Evictions,
	}
}

// TierStats reports per-tier hit counts alongside promotion and demotion
// totals.
type TierStats struct {
	L1         Stats
	L2         Stats
	L1Hits     uint64
	L2Hits     uint64
	Misses     uint64
	Promotions uint64
	Demotions  uint64
}

// Tiers returns per-tier statistics.
func (h *HierarchicalCache[T]) Tiers() TierStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return TierStats{
		L1:         h.l1.Stats(),
		L2:         h.l2.Stats(),
		L1Hits:     h.l1Hits,
		L2Hits:     h.l2Hits,
		Misses:     h.misses,
		Promotions: h.promotions,
		Demotions:  h.demotions,
	}
}
