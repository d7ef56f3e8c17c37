// Package navigator holds the active key path and announces changes to it.
package navigator

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/eventor"
	"github.com/oakwood-commons/hivedit/internal/store"
)

// Events notified with the navigator as argument.
const (
	PathChangeSoon = "PATH_CHANGE_SOON"
	PathChangeDone = "PATH_CHANGE_DONE"
)

var (
	// ErrPathNotFound is returned by checked navigation to a path that does not resolve.
	ErrPathNotFound = errors.New("key path not found")

	// ErrChanging is returned when navigation is requested while a change is being announced.
	ErrChanging = errors.New("path change in progress")
)

// Navigator owns one key path of a store.
type Navigator struct {
	*eventor.Eventor

	store    *store.Store
	path     string
	changing bool
	log      logr.Logger
}

// New returns a navigator positioned at path without notifying.
func New(s *store.Store, path string, log logr.Logger) *Navigator {
	n := &Navigator{store: s, path: path, log: log}
	n.Eventor = eventor.New(n).WithLogger(log)
	return n
}

// Path returns the active path.
func (n *Navigator) Path() string {
	return n.path
}

// Store returns the store paths are resolved against.
func (n *Navigator) Store() *store.Store {
	return n.store
}

// IsRoot reports whether the active path is the root.
func (n *Navigator) IsRoot() bool {
	return n.path == store.Root
}

// Changing reports whether a path change is being announced.
func (n *Navigator) Changing() bool {
	return n.changing
}

// ParentPath returns the parent of the active path.
func (n *Navigator) ParentPath() string {
	return store.ParentPath(n.path)
}

// ChildPath returns the path of the named child of the active path.
func (n *Navigator) ChildPath(name string) string {
	return store.JoinPath(n.path, name)
}

// ChildNames lists the children of the active path in native order.
func (n *Navigator) ChildNames() ([]string, error) {
	return n.store.ChildNames(n.path)
}

// Key opens the active path. The caller closes the key.
func (n *Navigator) Key(mask store.Access) (*store.Key, error) {
	return n.store.Open(n.path, mask)
}

// GoTo makes path active, announcing PathChangeSoon before and
// PathChangeDone after. With check, a path that does not resolve is
// rejected before anything changes.
func (n *Navigator) GoTo(path string, check bool) (string, error) {
	if n.changing {
		return n.path, ErrChanging
	}
	if check {
		k, err := n.store.Open(path, store.AccessRead)
		if err != nil {
			return n.path, fmt.Errorf("%w: %w", ErrPathNotFound, err)
		}
		if err := k.Close(); err != nil {
			n.log.V(1).Info("close key failed", "path", path, "error", err.Error())
		}
	}
	n.changing = true
	defer func() { n.changing = false }()

	n.Notify(PathChangeSoon, n)
	old := n.path
	n.path = path
	n.log.V(1).Info("path changed", "from", old, "to", path)
	n.Notify(PathChangeDone, n)
	return n.path, nil
}

// GoRoot goes to the root path.
func (n *Navigator) GoRoot(check bool) (string, error) {
	return n.GoTo(store.Root, check)
}

// GoParent goes to the parent of the active path.
func (n *Navigator) GoParent(check bool) (string, error) {
	return n.GoTo(n.ParentPath(), check)
}

// GoChild goes to the named child of the active path.
func (n *Navigator) GoChild(name string, check bool) (string, error) {
	return n.GoTo(n.ChildPath(name), check)
}
