// Package menutree addresses the entries of a menu hierarchy by string ids
// (like "/File/Exit") instead of positions, and keeps the positions of
// every id in step with the native menus as entries come and go.
package menutree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oakwood-commons/hivedit/internal/widget/menu"
)

// Top is the id of the top-level menu.
const Top = "/"

// DefaultSeparator joins parent and child ids.
const DefaultSeparator = "/"

var (
	ErrIDExists     = errors.New("menu item id exists")
	ErrUnknownID    = errors.New("menu item id does not exist")
	ErrNotMenu      = errors.New("menu item is not a menu")
	ErrInvalidIndex = errors.New("menu item index is not valid")
	ErrRemoveTop    = errors.New("cannot remove the top menu")

	// ErrModifiedOutside is the panic value when a native menu was changed
	// without going through the tree.
	ErrModifiedOutside = errors.New("menu modified outside the tree")
)

type item struct {
	id     string
	parent string
	index  int
	kind   menu.Kind
	menu   *menu.Menu // KindCascade and the top item
}

// Tree maps ids to menu entries.
type Tree struct {
	// IDToFull builds a full id from a relative id. Defaults to FullID.
	IDToFull func(id, parent, sep string) string
	// IDToLabel derives a label from a full id. Defaults to the last segment.
	IDToLabel func(id, sep string) string

	sep   string
	top   *menu.Menu
	items map[string]*item
	order []string
}

// New returns a tree holding only the top menu.
func New() *Tree {
	top := menu.New()
	return &Tree{
		IDToFull:  FullID,
		IDToLabel: LastSegment,
		sep:       DefaultSeparator,
		top:       top,
		items:     map[string]*item{Top: {id: Top, index: -1, kind: menu.KindCascade, menu: top}},
		order:     []string{Top},
	}
}

// FullID joins parent and id with sep; directly under the top menu with the
// default separator the separator is not doubled ("/" + "File" = "/File").
func FullID(id, parent, sep string) string {
	if parent == Top && sep == Top {
		return parent + id
	}
	return parent + sep + id
}

// LastSegment returns the text after the last sep.
func LastSegment(id, sep string) string {
	if i := strings.LastIndex(id, sep); i >= 0 {
		return id[i+len(sep):]
	}
	return id
}

// Option adjusts an Add call.
type Option func(*addOptions)

type addOptions struct {
	full     bool
	sep      string
	index    int
	indexSet bool
	label    string
	labelSet bool
	disabled bool
}

// IDIsFull uses the id as given instead of joining it to the parent.
func IDIsFull() Option { return func(o *addOptions) { o.full = true } }

// WithSeparator overrides the separator for this id.
func WithSeparator(sep string) Option { return func(o *addOptions) { o.sep = sep } }

// AtIndex inserts at position i of the parent instead of appending.
func AtIndex(i int) Option { return func(o *addOptions) { o.index, o.indexSet = i, true } }

// WithLabel overrides the derived label.
func WithLabel(l string) Option { return func(o *addOptions) { o.label, o.labelSet = l, true } }

// Disabled adds the entry greyed out.
func Disabled() Option { return func(o *addOptions) { o.disabled = true } }

// TopMenu returns the native top menu.
func (t *Tree) TopMenu() *menu.Menu { return t.top }

// ItemIDs returns every id, top first, in insertion order.
func (t *Tree) ItemIDs() []string { return append([]string(nil), t.order...) }

// Exists reports whether id is in the tree.
func (t *Tree) Exists(id string) bool {
	_, ok := t.items[id]
	return ok
}

func (t *Tree) lookup(id string) (*item, error) {
	it, ok := t.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownID, id)
	}
	return it, nil
}

// IsMenu reports whether id refers to a menu.
func (t *Tree) IsMenu(id string) (bool, error) {
	it, err := t.lookup(id)
	if err != nil {
		return false, err
	}
	return it.menu != nil, nil
}

// Menu returns the native menu of id.
func (t *Tree) Menu(id string) (*menu.Menu, error) {
	it, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if it.menu == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotMenu, id)
	}
	return it.menu, nil
}

// Index returns the position of id within its parent; -1 for the top menu.
func (t *Tree) Index(id string) (int, error) {
	it, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	return it.index, nil
}

// Parent returns the parent id; empty for the top menu.
func (t *Tree) Parent(id string) (string, error) {
	it, err := t.lookup(id)
	if err != nil {
		return "", err
	}
	return it.parent, nil
}

// Kind returns what id is.
func (t *Tree) Kind(id string) (menu.Kind, error) {
	it, err := t.lookup(id)
	if err != nil {
		return 0, err
	}
	return it.kind, nil
}

// Children returns the child ids of a menu ordered by position.
func (t *Tree) Children(id string) ([]string, error) {
	if _, err := t.Menu(id); err != nil {
		return nil, err
	}
	var ids []string
	for _, cid := range t.order {
		if c := t.items[cid]; c.id != Top && c.parent == id {
			ids = append(ids, cid)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool { return t.items[ids[i]].index < t.items[ids[j]].index })
	return ids, nil
}

// LastChildIndex returns the highest child position recorded for a menu, or -1.
func (t *Tree) LastChildIndex(id string) (int, error) {
	ids, err := t.Children(id)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return -1, nil
	}
	return t.items[ids[len(ids)-1]].index, nil
}

func (t *Tree) entry(id string) (menu.Entry, error) {
	it, err := t.lookup(id)
	if err != nil {
		return menu.Entry{}, err
	}
	if it.id == Top {
		return menu.Entry{Kind: menu.KindCascade, Submenu: t.top, Enabled: true}, nil
	}
	return t.items[it.parent].menu.Entry(it.index)
}

// Label returns the label shown for id.
func (t *Tree) Label(id string) (string, error) {
	e, err := t.entry(id)
	if err != nil {
		return "", err
	}
	return e.Label, nil
}

// SetEnabled greys id out or back in.
func (t *Tree) SetEnabled(id string, enabled bool) error {
	it, err := t.lookup(id)
	if err != nil {
		return err
	}
	if it.id == Top {
		return nil
	}
	return t.items[it.parent].menu.SetEnabled(it.index, enabled)
}

// Invoke runs the command of id.
func (t *Tree) Invoke(id string) error {
	e, err := t.entry(id)
	if err != nil {
		return err
	}
	if e.Kind != menu.KindCommand {
		return fmt.Errorf("menu item %q is a %s, not a command", id, e.Kind)
	}
	if e.Command != nil {
		e.Command()
	}
	return nil
}

// AddMenu adds a submenu under parent and returns its full id.
func (t *Tree) AddMenu(parent, id string, opts ...Option) (string, error) {
	return t.add(parent, id, menu.KindCascade, nil, opts)
}

// AddCommand adds a command under parent and returns its full id.
func (t *Tree) AddCommand(parent, id string, command func(), opts ...Option) (string, error) {
	return t.add(parent, id, menu.KindCommand, command, opts)
}

// AddSeparator adds a separator under parent and returns its full id.
func (t *Tree) AddSeparator(parent, id string, opts ...Option) (string, error) {
	return t.add(parent, id, menu.KindSeparator, nil, append(opts, WithLabel("")))
}

func (t *Tree) add(parent, id string, kind menu.Kind, command func(), opts []Option) (string, error) {
	pm, err := t.Menu(parent)
	if err != nil {
		if errors.Is(err, ErrUnknownID) {
			return "", fmt.Errorf("%w: %q", ErrNotMenu, parent)
		}
		return "", err
	}
	o := addOptions{sep: t.sep}
	for _, opt := range opts {
		opt(&o)
	}
	full := id
	if !o.full {
		full = t.IDToFull(id, parent, o.sep)
	}
	if t.Exists(full) {
		return "", fmt.Errorf("%w: %q", ErrIDExists, full)
	}
	label := o.label
	if !o.labelSet {
		label = t.IDToLabel(full, o.sep)
	}

	last, err := t.LastChildIndex(parent)
	if err != nil {
		return "", err
	}
	if last != pm.LastIndex() {
		panic(fmt.Errorf("%w: %q", ErrModifiedOutside, parent))
	}
	index := last + 1
	if o.indexSet {
		index = o.index
	}
	if index < 0 || index > last+1 {
		return "", fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	e := menu.Entry{Kind: kind, Label: label, Command: command, Enabled: !o.disabled}
	it := &item{id: full, parent: parent, index: index, kind: kind}
	if kind == menu.KindCascade {
		it.menu = menu.New()
		e.Submenu = it.menu
	}
	if err := pm.Insert(index, e); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIndex, err)
	}
	for _, other := range t.items {
		if other.id != Top && other.parent == parent && other.index >= index {
			other.index++
		}
	}
	t.items[full] = it
	t.order = append(t.order, full)
	return full, nil
}

// RemoveItem removes id and, for menus, everything below it. Later siblings
// move up one position.
func (t *Tree) RemoveItem(id string) error {
	if id == Top {
		return ErrRemoveTop
	}
	it, err := t.lookup(id)
	if err != nil {
		return err
	}
	if err := t.items[it.parent].menu.Delete(it.index); err != nil {
		panic(fmt.Errorf("%w: %q", ErrModifiedOutside, it.parent))
	}
	t.forget(it)
	for _, other := range t.items {
		if other.id != Top && other.parent == it.parent && other.index > it.index {
			other.index--
		}
	}
	return nil
}

// forget drops it and its descendants from the bookkeeping.
func (t *Tree) forget(it *item) {
	for _, cid := range append([]string(nil), t.order...) {
		if c, ok := t.items[cid]; ok && c.id != Top && c.parent == it.id {
			t.forget(c)
		}
	}
	delete(t.items, it.id)
	for i, oid := range t.order {
		if oid == it.id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
