// Package store is the access layer over a hierarchical key/value registry.
// Backends supply the native operations; Store adds path validation, the
// synthetic root key and the change broadcast after writes.
package store

import (
	"errors"
	"strings"

	"github.com/go-logr/logr"
)

// Backend is a native registry implementation.
type Backend interface {
	// OpenKey opens a key below a hive. path is never Root and its hive is valid.
	OpenKey(path string, mask Access) (Handle, error)
	// Broadcast tells other processes that the store changed.
	Broadcast() error
}

// KeyCreator is implemented by backends that can create keys.
type KeyCreator interface {
	// CreateKey makes path and its missing ancestors. An existing key is not an error.
	CreateKey(path string) error
}

// Handle is an open native key.
type Handle interface {
	SubKeyNames() ([]string, error)
	// EnumField returns the field at index or ErrNoMoreItems.
	EnumField(index int) (name string, typ FieldType, err error)
	ReadField(name string) (Value, error)
	WriteField(name string, v Value) error
	DeleteField(name string) error
	Close() error
}

// Store resolves paths to keys.
type Store struct {
	backend Backend
	log     logr.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for broadcast failures and tracing.
func WithLogger(log logr.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New wraps backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend, log: logr.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the wrapped backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Open resolves path with the access mask. Root always succeeds.
func (s *Store) Open(path string, mask Access) (*Key, error) {
	if path == Root {
		return &Key{store: s, path: Root, root: true}, nil
	}
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	h, err := s.backend.OpenKey(path, mask)
	if err != nil {
		var pe *PathError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &PathError{Op: "open", Path: path, Err: err}
	}
	s.log.V(3).Info("open key", "path", path, "access", mask.String())
	return &Key{store: s, path: path, h: h}, nil
}

// Exists reports whether path resolves with read access.
func (s *Store) Exists(path string) bool {
	k, err := s.Open(path, AccessRead)
	if err != nil {
		return false
	}
	if err := k.Close(); err != nil {
		s.log.V(1).Info("close key failed", "path", path, "error", err.Error())
	}
	return true
}

// CreateKey creates path and its missing ancestors when the backend
// supports it.
func (s *Store) CreateKey(path string) error {
	if path == Root {
		return nil
	}
	if err := ValidatePath(path); err != nil {
		return err
	}
	kc, ok := s.backend.(KeyCreator)
	if !ok {
		return &PathError{Op: "create", Path: path, Err: ErrUnsupported}
	}
	if err := kc.CreateKey(path); err != nil {
		return &PathError{Op: "create", Path: path, Err: err}
	}
	s.log.V(1).Info("key created", "path", path)
	s.broadcast("create", path)
	return nil
}

// ChildNames lists the subkeys of path in native order. Root lists the hives.
func (s *Store) ChildNames(path string) ([]string, error) {
	k, err := s.Open(path, AccessRead)
	if err != nil {
		return nil, err
	}
	defer k.Close()
	return k.ChildNames()
}

// ParentPath is the package-level ParentPath.
func (s *Store) ParentPath(path string) string {
	return ParentPath(path)
}

func (s *Store) broadcast(op, path string) {
	if err := s.backend.Broadcast(); err != nil {
		s.log.V(1).Info("change broadcast failed", "op", op, "path", path, "error", err.Error())
	}
}

// Key is an open key. One owner closes it.
type Key struct {
	store  *Store
	path   string
	h      Handle
	root   bool
	closed bool
}

// Path returns the key path.
func (k *Key) Path() string {
	return k.path
}

// IsRoot reports whether this is the synthetic root key.
func (k *Key) IsRoot() bool {
	return k.root
}

func (k *Key) String() string {
	return k.path
}

// Closed reports whether Close was called.
func (k *Key) Closed() bool {
	return k.closed
}

func (k *Key) check(op string) error {
	if k.closed {
		return &PathError{Op: op, Path: k.path, Err: ErrClosed}
	}
	if k.root && op != "children" {
		return &PathError{Op: op, Path: k.path, Err: ErrNoFields}
	}
	return nil
}

// ChildNames lists subkey names in native enumeration order.
func (k *Key) ChildNames() ([]string, error) {
	if err := k.check("children"); err != nil {
		return nil, err
	}
	if k.root {
		return append([]string(nil), Hives...), nil
	}
	names, err := k.h.SubKeyNames()
	if err != nil {
		return nil, &PathError{Op: "children", Path: k.path, Err: err}
	}
	return names, nil
}

// ChildPaths lists the full paths of the subkeys.
func (k *Key) ChildPaths() ([]string, error) {
	names, err := k.ChildNames()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = JoinPath(k.path, n)
	}
	return paths, nil
}

// Fields enumerates fields by increasing index until the backend runs out.
// The root key has none.
func (k *Key) Fields() ([]*Field, error) {
	if k.closed {
		return nil, &PathError{Op: "fields", Path: k.path, Err: ErrClosed}
	}
	if k.root {
		return nil, nil
	}
	var fields []*Field
	for i := 0; ; i++ {
		name, typ, err := k.h.EnumField(i)
		if errors.Is(err, ErrNoMoreItems) {
			return fields, nil
		}
		if err != nil {
			return fields, &PathError{Op: "fields", Path: k.path, Err: err}
		}
		fields = append(fields, &Field{key: k, name: name, typ: typ})
	}
}

// Field looks up a field by name, case-insensitively.
func (k *Key) Field(name string) (*Field, error) {
	fields, err := k.Fields()
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if strings.EqualFold(f.name, name) {
			return f, nil
		}
	}
	return nil, &PathError{Op: "field", Path: k.path + FieldPointer + name, Err: ErrNotFound}
}

// ReadField reads the current data of a field.
func (k *Key) ReadField(name string) (Value, error) {
	if err := k.check("read"); err != nil {
		return Value{}, err
	}
	v, err := k.h.ReadField(name)
	if err != nil {
		return Value{}, &PathError{Op: "read", Path: k.path + FieldPointer + name, Err: err}
	}
	return v, nil
}

// WriteField creates or replaces a field, then broadcasts the change.
func (k *Key) WriteField(name string, v Value) error {
	if err := k.check("write"); err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return &PathError{Op: "write", Path: k.path + FieldPointer + name, Err: err}
	}
	if err := k.h.WriteField(name, v); err != nil {
		return &PathError{Op: "write", Path: k.path + FieldPointer + name, Err: err}
	}
	k.store.broadcast("write", k.path)
	return nil
}

// DeleteField removes a field, then broadcasts the change.
func (k *Key) DeleteField(name string) error {
	if err := k.check("delete"); err != nil {
		return err
	}
	if err := k.h.DeleteField(name); err != nil {
		return &PathError{Op: "delete", Path: k.path + FieldPointer + name, Err: err}
	}
	k.store.broadcast("delete", k.path)
	return nil
}

// Close releases the native handle. Closing root is a no-op; closing twice
// returns ErrAlreadyClosed.
func (k *Key) Close() error {
	if k.root {
		return nil
	}
	if k.closed {
		return &PathError{Op: "close", Path: k.path, Err: ErrAlreadyClosed}
	}
	k.closed = true
	if err := k.h.Close(); err != nil {
		return &PathError{Op: "close", Path: k.path, Err: err}
	}
	return nil
}

// Field is a named value of a key. Its data is read from the store on every call.
type Field struct {
	key  *Key
	name string
	typ  FieldType
}

// NewField describes a field of key that may not exist yet.
func NewField(key *Key, name string, typ FieldType) *Field {
	return &Field{key: key, name: name, typ: typ}
}

func (f *Field) Name() string    { return f.name }
func (f *Field) Type() FieldType { return f.typ }
func (f *Field) Key() *Key       { return f.key }
func (f *Field) String() string  { return f.name }

// Data reads the field from the store.
func (f *Field) Data() (Value, error) {
	return f.key.ReadField(f.name)
}

// SetData writes text with the field's string type.
func (f *Field) SetData(text string) error {
	if !f.typ.IsString() {
		return &PathError{Op: "write", Path: f.key.path + FieldPointer + f.name, Err: ErrInvalidType}
	}
	return f.key.WriteField(f.name, StringValue(f.typ, text))
}

// Delete removes the field from its key.
func (f *Field) Delete() error {
	return f.key.DeleteField(f.name)
}
