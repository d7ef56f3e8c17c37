// Package menu is a plain hierarchical menu: ordered entries, some of which
// open submenus. It knows nothing about ids; menutree layers those on top.
package menu

import (
	"errors"
	"fmt"
)

// Kind tells what an entry does.
type Kind int

const (
	KindCommand Kind = iota
	KindCascade
	KindSeparator
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindCascade:
		return "menu"
	case KindSeparator:
		return "separator"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ErrIndex is returned for positions outside the menu.
var ErrIndex = errors.New("menu index out of range")

// Entry is one row of a menu.
type Entry struct {
	Kind    Kind
	Label   string
	Submenu *Menu  // KindCascade only
	Command func() // KindCommand only
	Enabled bool
}

// Menu is an ordered list of entries.
type Menu struct {
	entries []Entry
}

// New returns an empty menu.
func New() *Menu {
	return &Menu{}
}

// Len returns the number of entries.
func (m *Menu) Len() int { return len(m.entries) }

// LastIndex returns the index of the last entry, or -1 when empty.
func (m *Menu) LastIndex() int { return len(m.entries) - 1 }

// Entries returns the entries. Callers must not modify the slice.
func (m *Menu) Entries() []Entry { return m.entries }

// Entry returns the entry at index.
func (m *Menu) Entry(index int) (Entry, error) {
	if index < 0 || index >= len(m.entries) {
		return Entry{}, fmt.Errorf("%w: %d", ErrIndex, index)
	}
	return m.entries[index], nil
}

// Insert places e at index, shifting later entries down. index may equal Len.
func (m *Menu) Insert(index int, e Entry) error {
	if index < 0 || index > len(m.entries) {
		return fmt.Errorf("%w: %d", ErrIndex, index)
	}
	m.entries = append(m.entries, Entry{})
	copy(m.entries[index+1:], m.entries[index:])
	m.entries[index] = e
	return nil
}

// Append adds e at the end.
func (m *Menu) Append(e Entry) {
	m.entries = append(m.entries, e)
}

// Delete removes the entry at index.
func (m *Menu) Delete(index int) error {
	if index < 0 || index >= len(m.entries) {
		return fmt.Errorf("%w: %d", ErrIndex, index)
	}
	m.entries = append(m.entries[:index], m.entries[index+1:]...)
	return nil
}

// SetEnabled toggles the entry at index.
func (m *Menu) SetEnabled(index int, enabled bool) error {
	if index < 0 || index >= len(m.entries) {
		return fmt.Errorf("%w: %d", ErrIndex, index)
	}
	m.entries[index].Enabled = enabled
	return nil
}

// Selectable reports whether the entry at index can be activated.
func (m *Menu) Selectable(index int) bool {
	if index < 0 || index >= len(m.entries) {
		return false
	}
	e := m.entries[index]
	return e.Kind != KindSeparator && e.Enabled
}

// NextSelectable walks from index in direction dir (+1 or -1), wrapping, and
// returns the first selectable index or -1.
func (m *Menu) NextSelectable(index, dir int) int {
	n := len(m.entries)
	if n == 0 {
		return -1
	}
	i := index
	for step := 0; step < n; step++ {
		i = ((i+dir)%n + n) % n
		if m.Selectable(i) {
			return i
		}
	}
	return -1
}
