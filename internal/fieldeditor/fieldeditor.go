// Package fieldeditor provides the pane that edits the data of the selected
// field. Editors are created by a Factory so the data transform and the
// widget can be swapped without touching the editor orchestrator.
package fieldeditor

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/widget"
)

// FieldEditor edits the data of one field at a time.
type FieldEditor interface {
	// Supports reports whether field's type can be edited.
	Supports(field *store.Field) bool
	// Field returns the field being edited, or nil.
	Field() *store.Field
	// SetField points the editor at another field without loading its data.
	SetField(field *store.Field)
	// Data returns the editor content in store form.
	Data() string
	// SetData loads store-form data into the editor.
	SetData(data string)
	Enable(enabled bool)
	Enabled() bool
	Focus() tea.Cmd
	Blur()
	Update(msg tea.Msg) tea.Cmd
	View(width, height int, focused bool) string
	// Close releases the editor. The orchestrator calls it when a factory
	// returns a different editor.
	Close()
}

// Frame is what an editor is created inside of.
type Frame struct {
	Styles widget.Styles
	Log    logr.Logger
}

// Factory returns the editor for field. old is the current editor, possibly
// nil, and may be returned again after SetField. field is nil when no field
// is selected.
type Factory func(field *store.Field, old FieldEditor, frame Frame) FieldEditor

// Filter transforms editor text.
type Filter func(string) string

// Identity leaves text unchanged.
func Identity(s string) string { return s }

// SplitToLines returns a filter that puts every sep-separated item on its own line.
func SplitToLines(sep string) Filter {
	if sep == "" {
		return Identity
	}
	return func(s string) string { return strings.ReplaceAll(s, sep, "\n") }
}

// JoinLines returns a filter that joins lines with sep.
func JoinLines(sep string) Filter {
	if sep == "" {
		return Identity
	}
	return func(s string) string { return strings.ReplaceAll(s, "\n", sep) }
}

// SemicolonToNewline and NewlineToSemicolon are the filters of the default editor.
var (
	SemicolonToNewline = SplitToLines(";")
	NewlineToSemicolon = JoinLines(";")
)

// StringTypes are the field types the default editor supports.
var StringTypes = []store.FieldType{store.TypeString, store.TypeExpandString}

// Default creates a semicolon-splitting editor for string fields, reusing old when there is one.
func Default(field *store.Field, old FieldEditor, frame Frame) FieldEditor {
	if old != nil {
		old.SetField(field)
		return old
	}
	return NewFiltered(field, NewlineToSemicolon, SemicolonToNewline, frame, StringTypes...)
}
