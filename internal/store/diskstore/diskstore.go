// Package diskstore is a portable registry backend. Every key is a directory
// below a base directory and the fields of a key live in one YAML document
// inside it.
package diskstore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/peterbourgon/diskv/v3"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/hivedit/internal/store"
)

const (
	// DefaultBaseDir is used when no base directory is configured.
	DefaultBaseDir = "~/.hivedit"

	fieldsFile = ".fields.yaml"
	stampFile  = ".changed"
)

// Backend stores keys under BasePath.
type Backend struct {
	d        *diskv.Diskv
	basePath string
	id       string // tags the stamps this Backend writes
}

// New opens (creating when needed) a store rooted at base. A leading ~ is
// expanded to the home directory.
func New(base string) (*Backend, error) {
	if base == "" {
		base = DefaultBaseDir
	}
	expanded, err := homedir.Expand(base)
	if err != nil {
		return nil, fmt.Errorf("diskstore: expand base path: %w", err)
	}
	expanded = filepath.Clean(expanded)
	for _, h := range store.Hives {
		if err := os.MkdirAll(filepath.Join(expanded, h), 0o755); err != nil {
			return nil, fmt.Errorf("diskstore: ensure hive directory: %w", err)
		}
	}
	return &Backend{
		d: diskv.New(diskv.Options{
			BasePath:          expanded,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			// Field data is re-read on every access so edits by other
			// processes are visible.
			CacheSizeMax: 0,
		}),
		basePath: expanded,
		id:       uuid.NewString(),
	}, nil
}

// BasePath returns the expanded base directory.
func (b *Backend) BasePath() string {
	return b.basePath
}

// OpenKey implements store.Backend.
func (b *Backend) OpenKey(path string, mask store.Access) (store.Handle, error) {
	resolved, err := b.resolve(path)
	if err != nil {
		return nil, err
	}
	if mask&store.AccessWrite != 0 {
		if err := checkWritable(b.dir(resolved)); err != nil {
			return nil, err
		}
	}
	return &handle{b: b, path: resolved, mask: mask}, nil
}

// CreateKey makes path and its missing ancestors.
func (b *Backend) CreateKey(path string) error {
	if err := store.ValidatePath(path); err != nil {
		return err
	}
	if path == store.Root {
		return nil
	}
	hive, rest := store.SplitHive(path)
	resolved := hive
	if rest != "" {
		for _, seg := range strings.Split(rest, store.Sep) {
			next := store.JoinPath(resolved, seg)
			if r, err := b.resolve(next); err == nil {
				resolved = r
				continue
			}
			resolved = next
			if err := os.MkdirAll(b.dir(resolved), 0o755); err != nil {
				return mapFSError(err)
			}
		}
	}
	return nil
}

// Broadcast implements store.Backend by replacing a stamp file that watchers
// see. The stamp names this Backend so its own watcher can skip it.
func (b *Backend) Broadcast() error {
	stamp := []byte(time.Now().UTC().Format(time.RFC3339Nano) + " " + b.id + "\n")
	tmp := filepath.Join(b.basePath, stampFile+".tmp")
	if err := os.WriteFile(tmp, stamp, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(b.basePath, stampFile))
}

// ownStamp reports whether name is the stamp file (or its temporary) and the
// current stamp was written by b.
func (b *Backend) ownStamp(name string) bool {
	if filepath.Dir(filepath.Clean(name)) != b.basePath ||
		!strings.HasPrefix(filepath.Base(name), stampFile) {
		return false
	}
	data, err := os.ReadFile(filepath.Join(b.basePath, stampFile))
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.TrimSpace(string(data)), b.id)
}

func (b *Backend) dir(path string) string {
	pk := keyToPathTransform(path)
	return filepath.Join(append([]string{b.basePath}, pk.Path...)...)
}

// resolve maps path to the stored spelling of every segment; names compare
// case-insensitively.
func (b *Backend) resolve(path string) (string, error) {
	hive, rest := store.SplitHive(path)
	if !store.IsHive(hive) {
		return "", store.ErrInvalidPath
	}
	resolved := hive
	if rest == "" {
		return resolved, nil
	}
	for _, seg := range strings.Split(rest, store.Sep) {
		parent := b.dir(resolved)
		if info, err := os.Stat(filepath.Join(parent, escapeSegment(seg))); err == nil && info.IsDir() {
			resolved = store.JoinPath(resolved, seg)
			continue
		}
		names, err := subDirNames(parent)
		if err != nil {
			return "", err
		}
		found := ""
		for _, n := range names {
			if strings.EqualFold(n, seg) {
				found = n
				break
			}
		}
		if found == "" {
			return "", store.ErrNotFound
		}
		resolved = store.JoinPath(resolved, found)
	}
	return resolved, nil
}

func (b *Backend) readFields(path string) ([]fieldDoc, error) {
	if !b.d.Has(path) {
		return nil, nil
	}
	data, err := b.d.Read(path)
	if err != nil {
		return nil, mapFSError(err)
	}
	var docs []fieldDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("diskstore: decode %s: %w", path, err)
	}
	return docs, nil
}

func (b *Backend) writeFields(path string, docs []fieldDoc) error {
	data, err := yaml.Marshal(docs)
	if err != nil {
		return err
	}
	return mapFSError(b.d.Write(path, data))
}

func subDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, mapFSError(err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, unescapeSegment(e.Name()))
	}
	return names, nil
}

func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return mapFSError(err)
	}
	if info.Mode().Perm()&0o200 == 0 {
		return store.ErrPermission
	}
	return nil
}

func mapFSError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", store.ErrPermission, err)
	default:
		return err
	}
}

// escapeSegment keeps key names usable as directory names. Names never
// start with a dot on disk, so dot files are free for bookkeeping.
func escapeSegment(seg string) string {
	esc := url.PathEscape(seg)
	if strings.HasPrefix(esc, ".") {
		esc = "%2E" + esc[1:]
	}
	return esc
}

func unescapeSegment(name string) string {
	seg, err := url.PathUnescape(name)
	if err != nil {
		return name
	}
	return seg
}

func keyToPathTransform(key string) *diskv.PathKey {
	segs := strings.Split(key, store.Sep)
	for i, s := range segs {
		segs[i] = escapeSegment(s)
	}
	return &diskv.PathKey{Path: segs, FileName: fieldsFile}
}

func pathToKeyTransform(pk *diskv.PathKey) string {
	segs := make([]string, len(pk.Path))
	for i, s := range pk.Path {
		segs[i] = unescapeSegment(s)
	}
	return strings.Join(segs, store.Sep)
}

type fieldDoc struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	String  string   `yaml:"string,omitempty"`
	Strings []string `yaml:"strings,omitempty"`
	Integer uint64   `yaml:"integer,omitempty"`
	Binary  string   `yaml:"binary,omitempty"`
}

func (d fieldDoc) fieldType() store.FieldType {
	t, err := store.ParseFieldType(d.Type)
	if err != nil {
		return store.TypeNone
	}
	return t
}

func (d fieldDoc) value() (store.Value, error) {
	v := store.Value{Type: d.fieldType(), String: d.String, Strings: d.Strings, Integer: d.Integer}
	if d.Binary != "" {
		bin, err := hex.DecodeString(d.Binary)
		if err != nil {
			return store.Value{}, fmt.Errorf("%w: field %s: %v", store.ErrInvalidType, d.Name, err)
		}
		v.Binary = bin
	}
	return v, nil
}

func docFor(name string, v store.Value) fieldDoc {
	d := fieldDoc{Name: name, Type: v.Type.String(), String: v.String, Strings: v.Strings, Integer: v.Integer}
	if len(v.Binary) > 0 {
		d.Binary = hex.EncodeToString(v.Binary)
	}
	return d
}

type handle struct {
	b    *Backend
	path string
	mask store.Access
}

func (h *handle) SubKeyNames() ([]string, error) {
	return subDirNames(h.b.dir(h.path))
}

func (h *handle) EnumField(index int) (string, store.FieldType, error) {
	docs, err := h.b.readFields(h.path)
	if err != nil {
		return "", store.TypeNone, err
	}
	if index < 0 || index >= len(docs) {
		return "", store.TypeNone, store.ErrNoMoreItems
	}
	return docs[index].Name, docs[index].fieldType(), nil
}

func (h *handle) ReadField(name string) (store.Value, error) {
	docs, err := h.b.readFields(h.path)
	if err != nil {
		return store.Value{}, err
	}
	for _, d := range docs {
		if strings.EqualFold(d.Name, name) {
			return d.value()
		}
	}
	return store.Value{}, store.ErrNotFound
}

func (h *handle) WriteField(name string, v store.Value) error {
	if h.mask&store.AccessWrite == 0 {
		return store.ErrPermission
	}
	docs, err := h.b.readFields(h.path)
	if err != nil {
		return err
	}
	for i, d := range docs {
		if strings.EqualFold(d.Name, name) {
			docs[i] = docFor(d.Name, v)
			return h.b.writeFields(h.path, docs)
		}
	}
	return h.b.writeFields(h.path, append(docs, docFor(name, v)))
}

func (h *handle) DeleteField(name string) error {
	if h.mask&store.AccessWrite == 0 {
		return store.ErrPermission
	}
	docs, err := h.b.readFields(h.path)
	if err != nil {
		return err
	}
	for i, d := range docs {
		if strings.EqualFold(d.Name, name) {
			return h.b.writeFields(h.path, append(docs[:i], docs[i+1:]...))
		}
	}
	return store.ErrNotFound
}

func (h *handle) Close() error { return nil }
