// Package cache provides in-memory caching of template artifacts with
// TTL expiration and pluggable eviction strategies.
//
// # Overview
//
// The package is built around a small set of interchangeable containers and a
// manager that composes them:
//
//  1. Cache: the base container with per-entry TTL and LRU eviction
//  2. LFUCache, AdaptiveCache, HierarchicalCache: alternative containers with
//     the same capability set but different eviction behavior
//  3. Manager: a fixed set of role-named caches (package, template,
//     compilation, module) with unified access, statistics, and memory
//     estimation
//  4. AdvancedManager: a Manager whose role caches use a configurable
//     eviction strategy, optionally with a two-tier template cache
//
// # Usage
//
// Create a cache and use it directly:
//
//	c := cache.New[string](1000, cache.WithTTL(5*time.Minute))
//	c.Set("greeting.html", compiled)
//	if v, ok := c.Get("greeting.html"); ok {
//	    // cache hit
//	}
//
// Or go through a manager, which owns one cache per role:
//
//	m := cache.NewManager()
//	m.Set(cache.RoleTemplate, "greeting.html", compiled)
//	v, ok, err := m.Get(cache.RoleTemplate, "greeting.html")
//
// Isolated managers for tests or tenants share no state with their parent:
//
//	scoped := m.CreateScoped()
//
// # Expiration
//
// TTL is checked lazily on Get and Contains; there is no per-cache background
// sweeper. Len may therefore transiently count entries whose TTL has passed
// but which have not been touched since. Callers that want proactive
// reclamation call CleanupExpired, or start a periodic sweep at the manager
// level with Manager.StartCleanup.
//
// # Concurrency
//
// All containers and the managers are safe for concurrent use. No public
// method blocks on I/O or calls out while holding internal locks, so a
// Get/Set pair never observes a half-updated entry. Producing a value on a
// miss (compiling a template, resolving a package) is the caller's job and
// happens entirely outside the cache.
package cache
