package templatecache

import (
	"github.com/lesleslie/templatecache/bccache"
	"github.com/lesleslie/templatecache/cache"
)

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithManager replaces the resolver's private cache manager with a shared
// one, typically to pool templates across resolvers or to pick an eviction
// strategy via cache.NewAdvancedManager.
func WithManager(m *cache.Manager) ResolverOption {
	return func(r *Resolver) {
		if m != nil {
			r.manager = m
		}
	}
}

// WithBytecodeCache adds persistent bytecode storage. Compilation results
// are looked up there before compiling and stored after.
func WithBytecodeCache(bcc bccache.BytecodeCache) ResolverOption {
	return func(r *Resolver) {
		r.bcc = bcc
	}
}

// WithAutoReload makes cache hits consult the source's Uptodate check, so
// edited templates are recompiled instead of served stale. Off by default;
// production deployments with immutable templates should leave it off.
func WithAutoReload(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.autoReload = enabled
	}
}
