package templatecache

import (
	"context"
	"sort"
	"sync"
)

var (
	_ Loader = (*DictLoader)(nil)
	_ Loader = (*FunctionLoader)(nil)
	_ Loader = (*ChoiceLoader)(nil)
	_ Loader = (*FileSystemLoader)(nil)
)

// DictLoader serves templates from an in-memory mapping of name to source.
// The mapping is mutable and safe for concurrent use; a template's Uptodate
// reflects later changes to its entry.
type DictLoader struct {
	mu      sync.RWMutex
	mapping map[string]string
}

// NewDictLoader creates a loader over a copy of the given mapping. A nil
// mapping yields an empty loader.
func NewDictLoader(mapping map[string]string) *DictLoader {
	l := &DictLoader{mapping: make(map[string]string, len(mapping))}
	for name, code := range mapping {
		l.mapping[name] = code
	}
	return l
}

// GetSource implements Loader. The returned Uptodate reports false once the
// entry is removed or its source replaced.
func (l *DictLoader) GetSource(_ context.Context, name string) (Source, error) {
	l.mu.RLock()
	code, ok := l.mapping[name]
	l.mu.RUnlock()
	if !ok {
		return Source{}, notFound(name)
	}

	return Source{
		Code: code,
		Name: name,
		Uptodate: func(context.Context) (bool, error) {
			l.mu.RLock()
			current, ok := l.mapping[name]
			l.mu.RUnlock()
			return ok && current == code, nil
		},
	}, nil
}

// ListTemplates implements Loader.
func (l *DictLoader) ListTemplates(context.Context) ([]string, error) {
	l.mu.RLock()
	names := make([]string, 0, len(l.mapping))
	for name := range l.mapping {
		names = append(names, name)
	}
	l.mu.RUnlock()

	sort.Strings(names)
	return names, nil
}

// Add stores or replaces a template.
func (l *DictLoader) Add(name, code string) {
	l.mu.Lock()
	l.mapping[name] = code
	l.mu.Unlock()
}

// Update merges another mapping into the loader.
func (l *DictLoader) Update(mapping map[string]string) {
	l.mu.Lock()
	for name, code := range mapping {
		l.mapping[name] = code
	}
	l.mu.Unlock()
}

// Remove deletes a template, reporting whether it existed.
func (l *DictLoader) Remove(name string) bool {
	l.mu.Lock()
	_, ok := l.mapping[name]
	delete(l.mapping, name)
	l.mu.Unlock()
	return ok
}

// Has reports whether a template is present.
func (l *DictLoader) Has(name string) bool {
	l.mu.RLock()
	_, ok := l.mapping[name]
	l.mu.RUnlock()
	return ok
}

// Clear removes all templates.
func (l *DictLoader) Clear() {
	l.mu.Lock()
	l.mapping = make(map[string]string)
	l.mu.Unlock()
}

// LoadFunc resolves a template name to its source. It returns an error
// matching ErrTemplateNotFound for unknown names.
type LoadFunc func(ctx context.Context, name string) (Source, error)

// FunctionLoader delegates source lookup to a function. It cannot enumerate
// templates.
type FunctionLoader struct {
	fn LoadFunc
}

// NewFunctionLoader creates a loader backed by fn.
func NewFunctionLoader(fn LoadFunc) *FunctionLoader {
	return &FunctionLoader{fn: fn}
}

// GetSource implements Loader. The source's Name is filled in from the
// request when the function leaves it empty.
func (l *FunctionLoader) GetSource(ctx context.Context, name string) (Source, error) {
	src, err := l.fn(ctx, name)
	if err != nil {
		return Source{}, err
	}
	if src.Name == "" {
		src.Name = name
	}
	return src, nil
}

// ListTemplates implements Loader by returning ErrNoListing.
func (l *FunctionLoader) ListTemplates(context.Context) ([]string, error) {
	return nil, ErrNoListing
}

// ChoiceLoader consults an ordered list of loaders and serves the first
// match. The list is mutable and safe for concurrent use.
type ChoiceLoader struct {
	mu      sync.RWMutex
	loaders []Loader
}

// NewChoiceLoader creates a loader that tries each given loader in order.
func NewChoiceLoader(loaders ...Loader) *ChoiceLoader {
	return &ChoiceLoader{loaders: append([]Loader(nil), loaders...)}
}

// GetSource implements Loader. Loaders that report a missing template are
// skipped; any other error stops the search.
func (l *ChoiceLoader) GetSource(ctx context.Context, name string) (Source, error) {
	l.mu.RLock()
	loaders := l.loaders
	l.mu.RUnlock()

	for _, loader := range loaders {
		src, err := loader.GetSource(ctx, name)
		if err == nil {
			return src, nil
		}
		if !IsTemplateNotFound(err) {
			return Source{}, err
		}
	}
	return Source{}, notFound(name)
}

// ListTemplates implements Loader, returning the sorted union of all child
// listings. Children that cannot enumerate are skipped.
func (l *ChoiceLoader) ListTemplates(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	loaders := l.loaders
	l.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, loader := range loaders {
		names, err := loader.ListTemplates(ctx)
		if err != nil {
			if IsNoListing(err) {
				continue
			}
			return nil, err
		}
		for _, name := range names {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Add appends a loader to the end of the search order.
func (l *ChoiceLoader) Add(loader Loader) {
	l.mu.Lock()
	l.loaders = append(append([]Loader(nil), l.loaders...), loader)
	l.mu.Unlock()
}

// Insert places a loader at the front of the search order, giving it
// priority over existing loaders.
func (l *ChoiceLoader) Insert(loader Loader) {
	l.mu.Lock()
	l.loaders = append([]Loader{loader}, l.loaders...)
	l.mu.Unlock()
}

// Remove drops a loader from the search order, reporting whether it was
// present.
func (l *ChoiceLoader) Remove(loader Loader) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, candidate := range l.loaders {
		if candidate == loader {
			next := make([]Loader, 0, len(l.loaders)-1)
			next = append(next, l.loaders[:i]...)
			next = append(next, l.loaders[i+1:]...)
			l.loaders = next
			return true
		}
	}
	return false
}
