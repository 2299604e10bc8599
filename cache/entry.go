package cache

import "time"

// Entry is a cached value together with its expiration and access metadata.
// The cache is the only mutator of an entry once inserted; callers must treat
// values returned from Get as read-mostly.
type Entry[T any] struct {
	Value        T
	CreatedAt    time.Time
	ExpiresAt    time.Time // zero means the entry never expires by TTL
	LastAccessed time.Time
	AccessCount  uint64
}

// Expired reports whether the entry's TTL has passed at the given instant.
// Entries without a TTL never expire.
func (e *Entry[T]) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// expiresAt computes the absolute expiration for a ttl relative to now.
// A non-positive ttl means no expiration.
func expiresAt(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}
