package templatecache

import (
	"context"
	"io"
)

// Source is a template's raw text plus enough metadata to cache it.
//
// Path is empty for sources with no filesystem identity (dict and function
// loaders). Uptodate reports whether the source the template was loaded from
// is still current; nil means always current.
type Source struct {
	Code     string
	Name     string
	Path     string
	Uptodate func(ctx context.Context) (bool, error)
}

// Loader locates template source by name.
//
// GetSource returns ErrTemplateNotFound (matchable with errors.Is or
// IsTemplateNotFound) when the loader has no template by that name.
// ListTemplates enumerates every name the loader can serve, sorted; loaders
// that cannot enumerate return ErrNoListing.
type Loader interface {
	GetSource(ctx context.Context, name string) (Source, error)
	ListTemplates(ctx context.Context) ([]string, error)
}

// Template is a compiled template ready to render. The concrete
// representation belongs to the engine that compiled it.
type Template interface {
	Name() string
	Render(ctx context.Context, w io.Writer, data any) error
}

// Compiler turns source into a renderable template.
//
// The bytecode argument is a hint from a previous compilation of identical
// source, nil when none is available; implementations that cannot use it
// simply compile from source. The returned bytecode, if non-nil, is stored
// for future hints. Engines with no serializable form return nil bytecode.
type Compiler interface {
	Compile(ctx context.Context, src Source, bytecode []byte) (Template, []byte, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ctx context.Context, src Source, bytecode []byte) (Template, []byte, error)

// Compile implements Compiler.
func (f CompilerFunc) Compile(ctx context.Context, src Source, bytecode []byte) (Template, []byte, error) {
	return f(ctx, src, bytecode)
}
