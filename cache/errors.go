package cache

import (
	"errors"
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"
)

// ErrUnknownRole is returned by manager operations given a role outside the
// closed enumeration. It signals a programming error (misconfiguration), not
// a cache miss: callers should let it propagate rather than retry, because
// silently defaulting would fragment the cache namespace.
var ErrUnknownRole = platformerrors.New(platformerrors.CodeInvalidInput, "unknown cache role")

// unknownRole wraps ErrUnknownRole with the offending role name so the
// sentinel stays matchable via errors.Is.
func unknownRole(role Role) error {
	return fmt.Errorf("cache role %q: %w", string(role), ErrUnknownRole)
}

// IsUnknownRole reports whether err indicates a role outside the closed set.
func IsUnknownRole(err error) bool {
	return errors.Is(err, ErrUnknownRole)
}
