// Package memstore is an in-memory registry backend for tests and demo sessions.
package memstore

import (
	"strings"
	"sync"

	"github.com/oakwood-commons/hivedit/internal/store"
)

type field struct {
	name  string
	value store.Value
}

type node struct {
	name     string
	children []*node
	fields   []field
	readOnly bool
	denied   bool
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

func (n *node) fieldIndex(name string) int {
	for i, f := range n.fields {
		if strings.EqualFold(f.name, name) {
			return i
		}
	}
	return -1
}

// Backend keeps every hive in memory. Names are matched case-insensitively.
type Backend struct {
	mu           sync.Mutex
	hives        map[string]*node
	broadcasts   int
	broadcastErr error
	closeErr     error
}

// New returns a backend with empty hives.
func New() *Backend {
	b := &Backend{hives: map[string]*node{}}
	for _, h := range store.Hives {
		b.hives[h] = &node{name: h}
	}
	return b
}

func (b *Backend) lookup(path string) *node {
	hive, rest := store.SplitHive(path)
	n := b.hives[hive]
	if n == nil || rest == "" {
		return n
	}
	for _, seg := range strings.Split(rest, store.Sep) {
		if n = n.child(seg); n == nil {
			return nil
		}
	}
	return n
}

// CreateKey makes path and any missing ancestors.
func (b *Backend) CreateKey(path string) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	if path == store.Root {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	hive, rest := store.SplitHive(path)
	n := b.hives[hive]
	if rest == "" {
		return nil
	}
	for _, seg := range strings.Split(rest, store.Sep) {
		c := n.child(seg)
		if c == nil {
			c = &node{name: seg}
			n.children = append(n.children, c)
		}
		n = c
	}
	return nil
}

// DeleteKey removes path and its subtree.
func (b *Backend) DeleteKey(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	parent := b.lookup(store.ParentPath(path))
	if parent == nil || store.IsHive(path) || path == store.Root {
		return &store.PathError{Op: "delete key", Path: path, Err: store.ErrNotFound}
	}
	name := store.BaseName(path)
	for i, c := range parent.children {
		if strings.EqualFold(c.name, name) {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			return nil
		}
	}
	return &store.PathError{Op: "delete key", Path: path, Err: store.ErrNotFound}
}

// Set writes a field directly, creating the key when needed. Meant for fixtures.
func (b *Backend) Set(path, name string, v store.Value) error {
	if err := b.CreateKey(path); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	setField(b.lookup(path), name, v)
	return nil
}

// SetReadOnly makes opens of path with write access fail with ErrPermission.
func (b *Backend) SetReadOnly(path string, readOnly bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := b.lookup(path); n != nil {
		n.readOnly = readOnly
	}
}

// SetDenied makes every open of path fail with ErrPermission.
func (b *Backend) SetDenied(path string, denied bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n := b.lookup(path); n != nil {
		n.denied = denied
	}
}

// FailBroadcast makes Broadcast return err.
func (b *Backend) FailBroadcast(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcastErr = err
}

// FailClose makes every handle Close return err.
func (b *Backend) FailClose(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeErr = err
}

// Broadcasts counts Broadcast calls.
func (b *Backend) Broadcasts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.broadcasts
}

// Broadcast implements store.Backend.
func (b *Backend) Broadcast() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcasts++
	return b.broadcastErr
}

// OpenKey implements store.Backend.
func (b *Backend) OpenKey(path string, mask store.Access) (store.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := b.lookup(path)
	if n == nil {
		return nil, store.ErrNotFound
	}
	if n.denied || (n.readOnly && mask&store.AccessWrite != 0) {
		return nil, store.ErrPermission
	}
	return &handle{b: b, n: n, mask: mask}, nil
}

func setField(n *node, name string, v store.Value) {
	if i := n.fieldIndex(name); i >= 0 {
		n.fields[i].value = v
		return
	}
	n.fields = append(n.fields, field{name: name, value: v})
}

type handle struct {
	b    *Backend
	n    *node
	mask store.Access
}

func (h *handle) SubKeyNames() ([]string, error) {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	names := make([]string, len(h.n.children))
	for i, c := range h.n.children {
		names[i] = c.name
	}
	return names, nil
}

func (h *handle) EnumField(index int) (string, store.FieldType, error) {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	if index < 0 || index >= len(h.n.fields) {
		return "", store.TypeNone, store.ErrNoMoreItems
	}
	f := h.n.fields[index]
	return f.name, f.value.Type, nil
}

func (h *handle) ReadField(name string) (store.Value, error) {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	i := h.n.fieldIndex(name)
	if i < 0 {
		return store.Value{}, store.ErrNotFound
	}
	v := h.n.fields[i].value
	v.Strings = append([]string(nil), v.Strings...)
	v.Binary = append([]byte(nil), v.Binary...)
	return v, nil
}

func (h *handle) WriteField(name string, v store.Value) error {
	if h.mask&store.AccessWrite == 0 {
		return store.ErrPermission
	}
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	setField(h.n, name, v)
	return nil
}

func (h *handle) DeleteField(name string) error {
	if h.mask&store.AccessWrite == 0 {
		return store.ErrPermission
	}
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	i := h.n.fieldIndex(name)
	if i < 0 {
		return store.ErrNotFound
	}
	h.n.fields = append(h.n.fields[:i], h.n.fields[i+1:]...)
	return nil
}

func (h *handle) Close() error {
	h.b.mu.Lock()
	defer h.b.mu.Unlock()
	return h.b.closeErr
}
