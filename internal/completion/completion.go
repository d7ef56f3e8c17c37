// Package completion suggests key paths and field pointers for shell completion.
package completion

import (
	"slices"
	"strings"

	"github.com/oakwood-commons/hivedit/internal/store"
)

// Kind says what a completion names.
type Kind int

const (
	KindKey   Kind = iota // key path
	KindField             // KEY->FIELD pointer
)

// Completion is a single suggestion.
type Completion struct {
	Text string
	Kind Kind
}

// Engine completes against a store.
type Engine struct {
	store *store.Store
}

// NewEngine returns an engine over s.
func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Keys completes input as a key path. The segment after the last separator
// is matched as a case-insensitive prefix of the child names of its parent.
func (e *Engine) Keys(input string) []Completion {
	parent, partial := store.Root, input
	if i := strings.LastIndex(input, store.Sep); i >= 0 {
		parent, partial = input[:i], input[i+1:]
	}
	names, err := e.store.ChildNames(parent)
	if err != nil {
		return nil
	}
	var out []Completion
	for _, name := range sortedMatches(names, partial) {
		out = append(out, Completion{Text: store.JoinPath(parent, name), Kind: KindKey})
	}
	return out
}

// Pointers completes input as KEY->FIELD. Before the arrow it completes key
// paths, and offers `KEY->` once input names an existing key.
func (e *Engine) Pointers(input string) []Completion {
	key, partial, ok := store.SplitFieldPointer(input)
	if !ok {
		out := e.Keys(input)
		if input != store.Root && e.store.Exists(input) {
			out = append([]Completion{{Text: input + store.FieldPointer, Kind: KindField}}, out...)
		}
		return out
	}
	k, err := e.store.Open(key, store.AccessRead)
	if err != nil {
		return nil
	}
	defer k.Close()
	fields, err := k.Fields()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name())
	}
	var out []Completion
	for _, name := range sortedMatches(names, partial) {
		out = append(out, Completion{Text: key + store.FieldPointer + name, Kind: KindField})
	}
	return out
}

// Texts returns the text of each completion.
func Texts(cs []Completion) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text
	}
	return out
}

func sortedMatches(names []string, prefix string) []string {
	lower := strings.ToLower(prefix)
	var out []string
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), lower) {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}
