package cache

import "time"

// Store is the capability set shared by every cache container in this
// package. Cache, LFUCache, AdaptiveCache, and HierarchicalCache all
// implement it; the managers address their role caches through it.
type Store[T any] interface {
	// Get returns the value for key if present and not expired. A hit
	// updates the entry's access metadata and its position in the
	// container's eviction order.
	Get(key string) (T, bool)

	// Set inserts or overwrites key with the container's default TTL.
	Set(key string, value T)

	// SetTTL inserts or overwrites key with an explicit TTL. A
	// non-positive ttl stores the entry without expiration.
	SetTTL(key string, value T, ttl time.Duration)

	// Delete removes key if present and reports whether it was present.
	Delete(key string) bool

	// Contains reports whether key is present and not expired. It is a
	// pure query: it does not promote the entry or touch its access count.
	Contains(key string) bool

	// Clear empties the container and resets its statistics counters.
	Clear()

	// CleanupExpired removes every expired entry and returns the number
	// removed.
	CleanupExpired() int

	// Keys returns the keys of all non-expired entries.
	Keys() []string

	// Len returns the number of physically stored entries. This may
	// transiently include entries whose TTL has passed but which have not
	// been touched since; see the package documentation.
	Len() int

	// Stats returns a snapshot of the container's counters.
	Stats() Stats
}

// Stats is a snapshot of a cache's counters since construction or the last
// Clear.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 when no accesses have been
// recorded.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

var (
	_ Store[any] = (*Cache[any])(nil)
	_ Store[any] = (*LFUCache[any])(nil)
	_ Store[any] = (*AdaptiveCache[any])(nil)
	_ Store[any] = (*HierarchicalCache[any])(nil)
)
