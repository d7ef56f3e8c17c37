package ui

import (
	"slices"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/editor"
	"github.com/oakwood-commons/hivedit/internal/store"
)

type dialogKind int

const (
	dialogWarn dialogKind = iota
	dialogConfirm
	dialogAskField
)

// Controls of the add field dialog in tab order.
const (
	askName = iota
	askType
	askOK
	askCancel
	askControls
)

type dialog struct {
	kind    dialogKind
	title   string
	message string

	onOK     func()
	onSubmit func(name string, typ store.FieldType) bool

	// confirm: 0 is OK, 1 is Cancel. ask field: one of the ask constants.
	control   int
	name      textinput.Model
	typeIndex int
}

// Dialogs is a stack of modal dialogs. The top dialog owns the keyboard.
// It implements editor.Dialogs.
type Dialogs struct {
	stack []*dialog
	log   logr.Logger
}

var _ editor.Dialogs = (*Dialogs)(nil)

// NewDialogs returns an empty dialog stack.
func NewDialogs(log logr.Logger) *Dialogs {
	return &Dialogs{log: log}
}

// Active reports whether a dialog is open.
func (d *Dialogs) Active() bool { return len(d.stack) > 0 }

// Len returns the number of open dialogs.
func (d *Dialogs) Len() int { return len(d.stack) }

func (d *Dialogs) top() *dialog {
	if len(d.stack) == 0 {
		return nil
	}
	return d.stack[len(d.stack)-1]
}

// Title returns the title of the top dialog.
func (d *Dialogs) Title() string {
	if t := d.top(); t != nil {
		return t.title
	}
	return ""
}

// Message returns the message of the top dialog.
func (d *Dialogs) Message() string {
	if t := d.top(); t != nil {
		return t.message
	}
	return ""
}

func (d *Dialogs) remove(dlg *dialog) {
	d.stack = slices.DeleteFunc(d.stack, func(x *dialog) bool { return x == dlg })
}

// Warn shows a message with an OK button.
func (d *Dialogs) Warn(title, message string) {
	d.log.V(1).Info("warning", "title", title, "message", message)
	d.stack = append(d.stack, &dialog{kind: dialogWarn, title: title, message: message})
}

// Confirm asks an OK/Cancel question; onOK runs after the dialog closes.
func (d *Dialogs) Confirm(title, message string, onOK func()) {
	d.stack = append(d.stack, &dialog{kind: dialogConfirm, title: title, message: message, onOK: onOK})
}

// AskField asks for a field name and type. It stays open while onSubmit
// returns false.
func (d *Dialogs) AskField(onSubmit func(name string, typ store.FieldType) bool) {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "name"
	ti.CharLimit = 255
	ti.SetWidth(32)
	ti.Focus()
	d.stack = append(d.stack, &dialog{
		kind:     dialogAskField,
		title:    "Add field",
		onSubmit: onSubmit,
		name:     ti,
	})
}

// Update forwards msg to the top dialog.
func (d *Dialogs) Update(msg tea.Msg) tea.Cmd {
	dlg := d.top()
	if dlg == nil {
		return nil
	}
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if dlg.kind == dialogAskField {
			var cmd tea.Cmd
			dlg.name, cmd = dlg.name.Update(msg)
			return cmd
		}
		return nil
	}
	switch dlg.kind {
	case dialogWarn:
		switch key.String() {
		case "enter", "esc", "space":
			d.remove(dlg)
		}
	case dialogConfirm:
		return d.updateConfirm(dlg, key)
	case dialogAskField:
		return d.updateAskField(dlg, key)
	}
	return nil
}

func (d *Dialogs) updateConfirm(dlg *dialog, key tea.KeyPressMsg) tea.Cmd {
	switch key.String() {
	case "left", "right", "tab", "shift+tab":
		dlg.control = 1 - dlg.control
	case "y":
		d.accept(dlg)
	case "n", "esc":
		d.remove(dlg)
	case "enter", "space":
		if dlg.control == 0 {
			d.accept(dlg)
		} else {
			d.remove(dlg)
		}
	}
	return nil
}

func (d *Dialogs) accept(dlg *dialog) {
	d.remove(dlg)
	if dlg.onOK != nil {
		dlg.onOK()
	}
}

func (d *Dialogs) updateAskField(dlg *dialog, key tea.KeyPressMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		d.remove(dlg)
		return nil
	case "tab", "down":
		return dlg.focusControl((dlg.control + 1) % askControls)
	case "shift+tab", "up":
		return dlg.focusControl((dlg.control + askControls - 1) % askControls)
	case "enter":
		if dlg.control == askCancel {
			d.remove(dlg)
			return nil
		}
		d.submit(dlg)
		return nil
	}
	switch dlg.control {
	case askName:
		var cmd tea.Cmd
		dlg.name, cmd = dlg.name.Update(key)
		return cmd
	case askType:
		switch key.String() {
		case "left", "h":
			dlg.typeIndex = (dlg.typeIndex + len(editor.AddableTypes) - 1) % len(editor.AddableTypes)
		case "right", "l", "space":
			dlg.typeIndex = (dlg.typeIndex + 1) % len(editor.AddableTypes)
		}
	case askOK, askCancel:
		switch key.String() {
		case "left", "right":
			dlg.control = askOK + askCancel - dlg.control
		}
	}
	return nil
}

func (d *Dialogs) submit(dlg *dialog) {
	name := strings.TrimSpace(dlg.name.Value())
	typ := editor.AddableTypes[dlg.typeIndex]
	if dlg.onSubmit == nil || dlg.onSubmit(name, typ) {
		d.remove(dlg)
	}
}

func (dlg *dialog) focusControl(control int) tea.Cmd {
	dlg.control = control
	if control == askName {
		return dlg.name.Focus()
	}
	dlg.name.Blur()
	return nil
}

func button(label string, highlighted bool, st styles) string {
	text := "[ " + label + " ]"
	if highlighted {
		return st.menuActive.Render(text)
	}
	return text
}

// View renders the top dialog box, or "" when none is open.
func (d *Dialogs) View(maxWidth int, st styles) string {
	dlg := d.top()
	if dlg == nil {
		return ""
	}
	width := min(max(maxWidth-4, 20), 60)
	title := st.title.Render(dlg.title)
	if dlg.kind == dialogWarn {
		title = st.warning.Render(dlg.title)
	}
	var body []string
	switch dlg.kind {
	case dialogWarn:
		body = append(body, wrap(dlg.message, width), "", button("OK", true, st))
	case dialogConfirm:
		body = append(body, wrap(dlg.message, width), "",
			button("OK", dlg.control == 0, st)+" "+button("Cancel", dlg.control == 1, st))
	case dialogAskField:
		name := "Name: " + dlg.name.View()
		if dlg.control == askName {
			name = st.enabled.Render("Name: ") + dlg.name.View()
		}
		typ := "Type: < " + editor.TypeLabel(editor.AddableTypes[dlg.typeIndex]) + " >"
		if dlg.control == askType {
			typ = st.menuActive.Render(typ)
		}
		body = append(body, name, typ, "",
			button("OK", dlg.control == askOK, st)+" "+button("Cancel", dlg.control == askCancel, st))
	}
	content := title + "\n\n" + strings.Join(body, "\n")
	return st.dialog.Render(content)
}

// wrap breaks text into lines of at most width cells on spaces.
func wrap(text string, width int) string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			switch {
			case line == "":
				line = word
			case ansi.StringWidth(line)+1+ansi.StringWidth(word) > width:
				lines = append(lines, line)
				line = word
			default:
				line += " " + word
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
