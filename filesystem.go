package templatecache

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// FileSystemLoader serves templates from one or more directories on a
// billy.Filesystem. Search paths are consulted in order and the first match
// wins, so earlier paths can shadow later ones.
//
// Template names use forward slashes regardless of the host platform and may
// not escape the search paths: absolute names and names containing "." or
// ".." segments are rejected as not found.
type FileSystemLoader struct {
	fs          billy.Filesystem
	searchpaths []string
}

// NewFileSystemLoader creates a loader over the given search paths. At least
// one path is required for the loader to serve anything.
func NewFileSystemLoader(fs billy.Filesystem, searchpaths ...string) *FileSystemLoader {
	return &FileSystemLoader{
		fs:          fs,
		searchpaths: append([]string(nil), searchpaths...),
	}
}

// splitTemplateName validates a template name and splits it into path
// segments. Names that could resolve outside a search path are rejected.
func splitTemplateName(name string) ([]string, bool) {
	if name == "" || strings.HasPrefix(name, "/") || strings.ContainsRune(name, '\\') {
		return nil, false
	}

	segments := strings.Split(name, "/")
	for _, segment := range segments {
		if segment == "" || segment == "." || segment == ".." {
			return nil, false
		}
	}
	return segments, true
}

// GetSource implements Loader. The returned Uptodate compares the file's
// modification time against the time it had at load.
func (l *FileSystemLoader) GetSource(ctx context.Context, name string) (Source, error) {
	if err := ctx.Err(); err != nil {
		return Source{}, err
	}

	segments, ok := splitTemplateName(name)
	if !ok {
		return Source{}, notFound(name)
	}

	for _, searchpath := range l.searchpaths {
		path := l.fs.Join(append([]string{searchpath}, segments...)...)

		info, err := l.fs.Stat(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return Source{}, fmt.Errorf("failed to stat template %q: %w", name, err)
		}
		if info.IsDir() {
			continue
		}

		code, err := util.ReadFile(l.fs, path)
		if err != nil {
			return Source{}, fmt.Errorf("failed to read template %q: %w", name, err)
		}

		loadedAt := info.ModTime()
		return Source{
			Code:     string(code),
			Name:     name,
			Path:     path,
			Uptodate: l.uptodate(path, loadedAt),
		}, nil
	}

	return Source{}, notFound(name)
}

func (l *FileSystemLoader) uptodate(path string, loadedAt time.Time) func(context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		info, err := l.fs.Stat(path)
		if err != nil {
			// A deleted file is out of date, not an error.
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, fmt.Errorf("failed to stat template file %q: %w", path, err)
		}
		return info.ModTime().Equal(loadedAt), nil
	}
}

// ListTemplates implements Loader, walking every search path and returning
// the sorted, deduplicated set of template names found.
func (l *FileSystemLoader) ListTemplates(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	for _, searchpath := range l.searchpaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, err := l.fs.Stat(searchpath); os.IsNotExist(err) {
			continue
		}

		prefix := searchpath + "/"
		err := util.Walk(l.fs, searchpath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			name := strings.TrimPrefix(path, prefix)
			seen[strings.ReplaceAll(name, string(os.PathSeparator), "/")] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk search path %q: %w", searchpath, err)
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
