package ui

import (
	tea "charm.land/bubbletea/v2"
)

// Action represents an action triggered by a global keybinding.
type Action string

const (
	ActionNone      Action = ""
	ActionFocusNext Action = "focus_next"
	ActionFocusPrev Action = "focus_prev"
	ActionOpen      Action = "open"
	ActionParent    Action = "parent"
	ActionAdd       Action = "add"
	ActionDelete    Action = "delete"
	ActionLoad      Action = "load"
	ActionSave      Action = "save"
	ActionReload    Action = "reload"
	ActionMenu      Action = "menu"
	ActionQuit      Action = "quit"
)

// GlobalKeyBindings work in every pane. They are checked before the focused
// widget sees the key, so they must not be keys a text widget needs.
var GlobalKeyBindings = map[string]Action{
	"tab":       ActionFocusNext,
	"shift+tab": ActionFocusPrev,
	"ctrl+r":    ActionLoad,
	"ctrl+s":    ActionSave,
	"f5":        ActionReload,
	"f10":       ActionMenu,
	"alt+m":     ActionMenu,
	"ctrl+c":    ActionQuit,
	"ctrl+q":    ActionQuit,
}

// ChildKeysBindings apply while the child key list has focus.
var ChildKeysBindings = map[string]Action{
	"enter":     ActionOpen,
	"right":     ActionOpen,
	"l":         ActionOpen,
	"backspace": ActionParent,
	"left":      ActionParent,
	"h":         ActionParent,
}

// FieldsBindings apply while the field list has focus.
var FieldsBindings = map[string]Action{
	"a":         ActionAdd,
	"insert":    ActionAdd,
	"d":         ActionDelete,
	"delete":    ActionDelete,
	"enter":     ActionFocusNext,
	"backspace": ActionParent,
	"left":      ActionParent,
}

// actionFor resolves a key against the global bindings and then the bindings
// of the focused pane.
func actionFor(msg tea.KeyPressMsg, focus Focus) Action {
	key := msg.String()
	if a, ok := GlobalKeyBindings[key]; ok {
		return a
	}
	switch focus {
	case FocusChildKeys:
		return ChildKeysBindings[key]
	case FocusFields:
		return FieldsBindings[key]
	}
	return ActionNone
}
