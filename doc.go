// Package templatecache resolves named templates through a layered cache.
//
// # Overview
//
// Template rendering systems pay for the same work over and over: finding a
// template's source, compiling it, and holding on to the compiled form. This
// package separates those concerns. A Loader locates source, a Compiler turns
// source into a renderable Template, and a Resolver coordinates the two
// behind the cache subsystem in the cache package, with optional persistent
// bytecode storage from the bccache package.
//
// # Usage
//
//	loader := templatecache.NewFileSystemLoader(osfs.New("."), "templates")
//	resolver := templatecache.NewResolver(loader, compiler,
//		templatecache.WithAutoReload(true),
//	)
//
//	tpl, err := resolver.GetTemplate(ctx, "index.html")
//	if err != nil {
//		return err
//	}
//	return tpl.Render(ctx, w, data)
//
// Concurrent requests for the same uncached template compile it once; the
// other callers wait for and share the result.
//
// # Loaders
//
// Four loaders cover the common source locations: DictLoader for in-memory
// mappings, FileSystemLoader for directories on a billy.Filesystem,
// FunctionLoader for arbitrary lookup functions, and ChoiceLoader for
// consulting several loaders in order.
package templatecache
