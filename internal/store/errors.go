package store

import "errors"

// Sentinel errors for store access. Callers check them with errors.Is.
var (
	// ErrNotFound is returned when a key or field does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermission is returned when the requested access is denied.
	ErrPermission = errors.New("permission denied")

	// ErrInvalidPath is returned for paths with an unknown hive or empty segments.
	ErrInvalidPath = errors.New("invalid key path")

	// ErrClosed is returned by operations on a closed key.
	ErrClosed = errors.New("key is closed")

	// ErrAlreadyClosed is returned when a key is closed twice.
	ErrAlreadyClosed = errors.New("already closed")

	// ErrNoMoreItems ends a field enumeration.
	ErrNoMoreItems = errors.New("no more items")

	// ErrNoFields is returned for field operations on the root key.
	ErrNoFields = errors.New("root key has no fields")

	// ErrInvalidType is returned when a value does not fit the field type.
	ErrInvalidType = errors.New("invalid field type")

	// ErrUnsupported is returned when the backend lacks an optional operation.
	ErrUnsupported = errors.New("not supported by backend")
)

// PathError records the operation and path that failed.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return e.Op + " " + quotePath(e.Path) + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func quotePath(p string) string {
	if p == Root {
		return "<root>"
	}
	return p
}
