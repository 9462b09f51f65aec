package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrCacheCorrupt marks a stored cache value that is not valid JSON.
	ErrCacheCorrupt = errors.New("cache entry corrupt")
	// ErrProviderUnavailable marks a failed call to an external provider.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrInvalidSelection marks a selection or query the user has to fix.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Unavailable wraps a provider failure so that errors.Is matches both
// ErrProviderUnavailable and the underlying cause.
func Unavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProviderUnavailable, what, err)
}

// Invalid builds a validation error carrying a user-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSelection, fmt.Sprintf(format, args...))
}

// Messages flattens an error (possibly a multierror) into one string per cause.
// It returns nil for a nil error.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	type multi interface{ WrappedErrors() []error }
	if m, ok := err.(multi); ok {
		out := make([]string, 0, len(m.WrappedErrors()))
		for _, e := range m.WrappedErrors() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
