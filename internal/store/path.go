package store

import "strings"

const (
	// Root is the path of the synthetic key whose children are the hives.
	Root = ""

	// Sep separates path segments.
	Sep = `\`

	// FieldPointer separates a key path from a field name in menu definitions.
	FieldPointer = "->"
)

// Hives are the top-level keys, in the order the root key lists them.
var Hives = []string{
	"HKEY_CLASSES_ROOT",
	"HKEY_CURRENT_CONFIG",
	"HKEY_CURRENT_USER",
	"HKEY_LOCAL_MACHINE",
	"HKEY_USERS",
}

// IsHive reports whether name is one of Hives.
func IsHive(name string) bool {
	for _, h := range Hives {
		if h == name {
			return true
		}
	}
	return false
}

// SplitHive splits a path into its hive and the remainder below the hive.
func SplitHive(path string) (hive, rest string) {
	hive, rest, _ = strings.Cut(path, Sep)
	return hive, rest
}

// ParentPath returns the parent of path. Root and the hives map to Root.
func ParentPath(path string) string {
	if path == Root || IsHive(path) {
		return Root
	}
	i := strings.LastIndex(path, Sep)
	if i < 0 {
		return Root
	}
	return path[:i]
}

// BaseName returns the last segment of path.
func BaseName(path string) string {
	return path[strings.LastIndex(path, Sep)+1:]
}

// JoinPath appends a child name to path.
func JoinPath(path, name string) string {
	if path == Root {
		return name
	}
	return path + Sep + name
}

// SplitFieldPointer splits `key->field`. ok is false when path has no field pointer.
func SplitFieldPointer(path string) (key, field string, ok bool) {
	i := strings.Index(path, FieldPointer)
	if i < 0 {
		return path, "", false
	}
	return path[:i], path[i+len(FieldPointer):], true
}

// ValidatePath checks that path names a known hive and has no empty segments.
func ValidatePath(path string) error {
	if path == Root {
		return nil
	}
	hive, rest := SplitHive(path)
	if !IsHive(hive) {
		return &PathError{Op: "open", Path: path, Err: ErrInvalidPath}
	}
	if rest == "" && strings.HasSuffix(path, Sep) {
		return &PathError{Op: "open", Path: path, Err: ErrInvalidPath}
	}
	if rest != "" {
		for _, seg := range strings.Split(rest, Sep) {
			if seg == "" {
				return &PathError{Op: "open", Path: path, Err: ErrInvalidPath}
			}
		}
	}
	return nil
}
