package templatecache

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/lesleslie/templatecache/bccache"
	"github.com/lesleslie/templatecache/cache"
)

// cachedTemplate is what the resolver stores under the template cache role:
// the compiled template plus the staleness check captured at load time.
type cachedTemplate struct {
	tpl      Template
	uptodate func(ctx context.Context) (bool, error)
}

// Resolver turns template names into compiled templates, caching the result.
//
// Lookups hit the manager's template cache first. On a miss the resolver
// loads source, consults the bytecode cache if one is configured, compiles,
// and caches the template; concurrent misses for the same name share a
// single compilation.
type Resolver struct {
	loader     Loader
	compiler   Compiler
	manager    *cache.Manager
	bcc        bccache.BytecodeCache
	autoReload bool
	group      singleflight.Group
}

// NewResolver creates a resolver over a loader and compiler. Without
// WithManager it uses a private manager with default settings.
func NewResolver(loader Loader, compiler Compiler, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		loader:   loader,
		compiler: compiler,
		manager:  cache.NewManager(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Manager exposes the resolver's cache manager for statistics, warming, and
// cleanup scheduling.
func (r *Resolver) Manager() *cache.Manager {
	return r.manager
}

// GetTemplate resolves a template by name.
//
// A cached template is returned as-is unless auto-reload is enabled and its
// source reports out of date, in which case it is evicted and recompiled.
// Cancelling ctx before the compiled template is cached leaves all caches
// untouched.
func (r *Resolver) GetTemplate(ctx context.Context, name string) (Template, error) {
	if tpl, ok, err := r.cachedLookup(ctx, name); err != nil {
		return nil, err
	} else if ok {
		return tpl, nil
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		// Another flight may have populated the cache while this call
		// waited for the flight lock.
		if tpl, ok, err := r.cachedLookup(ctx, name); err != nil {
			return nil, err
		} else if ok {
			return tpl, nil
		}
		return r.loadAndCompile(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(Template), nil
}

// cachedLookup checks the template cache, applying the auto-reload staleness
// check on hits.
func (r *Resolver) cachedLookup(ctx context.Context, name string) (Template, bool, error) {
	v, ok, err := r.manager.Get(cache.RoleTemplate, name)
	if err != nil || !ok {
		return nil, false, err
	}

	ct, isTemplate := v.(cachedTemplate)
	if !isTemplate {
		// Foreign value under the template role reads as a miss.
		return nil, false, nil
	}
	if !r.autoReload || ct.uptodate == nil {
		return ct.tpl, true, nil
	}

	current, err := ct.uptodate(ctx)
	if err != nil {
		return nil, false, err
	}
	if current {
		return ct.tpl, true, nil
	}

	if _, err := r.manager.Delete(cache.RoleTemplate, name); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

func (r *Resolver) loadAndCompile(ctx context.Context, name string) (Template, error) {
	src, err := r.loader.GetSource(ctx, name)
	if err != nil {
		return nil, err
	}

	var bucket *bccache.Bucket
	var hint []byte
	if r.bcc != nil {
		bucket, err = r.bcc.GetBucket(ctx, name, src.Path, []byte(src.Code))
		if err != nil {
			return nil, err
		}
		hint = bucket.Code
	}

	tpl, code, err := r.compiler.Compile(ctx, src, hint)
	if err != nil {
		return nil, err
	}

	if r.bcc != nil && bucket.Code == nil && len(code) > 0 {
		bucket.Code = code
		if err := r.bcc.SetBucket(ctx, bucket); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.manager.Set(cache.RoleTemplate, name, cachedTemplate{tpl: tpl, uptodate: src.Uptodate}); err != nil {
		return nil, err
	}
	return tpl, nil
}

// Invalidate evicts a template from the cache, reporting whether it was
// cached. The next GetTemplate recompiles it.
func (r *Resolver) Invalidate(name string) bool {
	removed, err := r.manager.Delete(cache.RoleTemplate, name)
	if err != nil {
		return false
	}
	return removed
}

// ListTemplates enumerates the names the underlying loader can serve.
func (r *Resolver) ListTemplates(ctx context.Context) ([]string, error) {
	return r.loader.ListTemplates(ctx)
}
