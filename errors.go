package templatecache

import (
	"errors"
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"
)

// ErrTemplateNotFound is returned when no loader can supply source for a
// requested template name.
var ErrTemplateNotFound = platformerrors.New(platformerrors.CodeNotFound, "template not found")

// ErrNoListing is returned by ListTemplates on loaders that cannot enumerate
// their templates, such as FunctionLoader.
var ErrNoListing = platformerrors.New(platformerrors.CodeInvalidInput, "loader cannot list templates")

// notFound wraps ErrTemplateNotFound with the template name so the sentinel
// stays matchable via errors.Is.
func notFound(name string) error {
	return fmt.Errorf("template %q: %w", name, ErrTemplateNotFound)
}

// IsTemplateNotFound reports whether err indicates a missing template.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsNoListing reports whether err indicates a loader without enumeration.
func IsNoListing(err error) bool {
	return errors.Is(err, ErrNoListing)
}
