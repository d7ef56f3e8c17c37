// Package editor wires the navigator, the path bar, the child key and field
// lists and the field editor together. The parts never call each other: all
// coordination goes through eventor subscriptions set up in New.
package editor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/eventor"
	"github.com/oakwood-commons/hivedit/internal/fieldeditor"
	"github.com/oakwood-commons/hivedit/internal/navigator"
	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/widget/listbox"
	"github.com/oakwood-commons/hivedit/internal/widget/textentry"
	"github.com/oakwood-commons/hivedit/pkg/logger"
)

// StatusChangeDone is notified with the new status text.
const StatusChangeDone = "STATUS_CHANGE_DONE"

// ParentEntry is the first child key entry off the root; opening it goes up.
const ParentEntry = ".."

// Dialogs shows modal dialogs. Callbacks run when the user confirms.
type Dialogs interface {
	Warn(title, message string)
	Confirm(title, message string, onOK func())
	// AskField asks for the name and type of a new field. The dialog stays
	// open while onSubmit returns false.
	AskField(onSubmit func(name string, typ store.FieldType) bool)
}

// Options configure an Editor.
type Options struct {
	Factory fieldeditor.Factory // defaults to fieldeditor.Default
	Dialogs Dialogs
	Frame   fieldeditor.Frame
	Log     logr.Logger
}

// Editor is the registry editor without its terminal rendering.
type Editor struct {
	*eventor.Eventor

	PathBar   *textentry.Entry
	ChildKeys *listbox.Listbox[string]
	Fields    *listbox.Listbox[*store.Field]

	store   *store.Store
	nav     *navigator.Navigator
	dialogs Dialogs
	factory fieldeditor.Factory
	frame   fieldeditor.Frame
	log     logr.Logger

	fieldEditor fieldeditor.FieldEditor
	editorTitle string
	loaded      string // field editor data as last loaded or saved
	holdEditor  bool   // keep the field editor while lists refresh
	fieldsKey   *store.Key // owner of the Fields items

	// memo maps a key path to the child key selected there. It is never pruned
	// except on recovery, so it grows with every visited path.
	memo map[string]int

	addEnabled  bool
	delEnabled  bool
	loadEnabled bool
	saveEnabled bool

	status string
}

// New builds an editor over s and opens the root key.
func New(s *store.Store, opts Options) (*Editor, error) {
	if opts.Factory == nil {
		opts.Factory = fieldeditor.Default
	}
	if opts.Dialogs == nil {
		opts.Dialogs = logDialogs{log: opts.Log}
	}
	if opts.Frame.Log.GetSink() == nil {
		opts.Frame.Log = opts.Log
	}
	e := &Editor{
		store:   s,
		nav:     navigator.New(s, store.Root, opts.Log.WithName("navigator")),
		dialogs: opts.Dialogs,
		factory: opts.Factory,
		frame:   opts.Frame,
		log:     opts.Log,
		memo:    map[string]int{},
	}
	e.Eventor = eventor.New(e).WithLogger(opts.Log)
	e.PathBar = textentry.New(store.Root, nil, opts.Log.WithName("pathbar"))
	e.PathBar.SetPlaceholder("<root>")
	e.ChildKeys = listbox.New[string](opts.Log.WithName("childkeys"))
	e.ChildKeys.Placeholder = "(no child keys)"
	e.Fields = listbox.New[*store.Field](opts.Log.WithName("fields"))
	e.Fields.ItemText = func(f *store.Field) string { return f.Name() }
	e.Fields.Placeholder = "(no fields)"

	if err := e.bind(); err != nil {
		return nil, err
	}
	if _, err := e.nav.GoRoot(false); err != nil {
		return nil, err
	}
	return e, nil
}

type binding struct {
	source interface {
		Subscribe(string, eventor.Handler, ...eventor.Option) error
	}
	event   string
	handler func()
}

func (e *Editor) bind() error {
	bindings := []binding{
		{e.PathBar, textentry.TextChangeDone, e.onPathBarText},
		{e.nav, navigator.PathChangeDone, e.syncPathBar},
		{e.nav, navigator.PathChangeDone, e.refreshChildKeys},
		{e.nav, navigator.PathChangeDone, e.refreshFields},
		{e.Fields, listbox.ItemsChangeDone, e.refreshFieldEditor},
		{e.Fields, listbox.SelectionChangeDone, e.refreshFieldEditor},
		{e.ChildKeys, listbox.ItemsChangeDone, e.updateAdd},
		{e.ChildKeys, listbox.SelectionChangeDone, e.updateAdd},
		{e.Fields, listbox.ItemsChangeDone, e.updateDelete},
		{e.Fields, listbox.SelectionChangeDone, e.updateDelete},
	}
	for _, b := range bindings {
		fn := b.handler
		if err := b.source.Subscribe(b.event, eventor.Func(func(any) { fn() })); err != nil {
			return fmt.Errorf("bind %s: %w", b.event, err)
		}
	}
	return nil
}

// Store returns the store being edited.
func (e *Editor) Store() *store.Store { return e.store }

// Navigator returns the navigator holding the active path.
func (e *Editor) Navigator() *navigator.Navigator { return e.nav }

// Path returns the active key path.
func (e *Editor) Path() string { return e.nav.Path() }

// FieldEditor returns the current field editor, which is nil before the first
// field list refresh.
func (e *Editor) FieldEditor() fieldeditor.FieldEditor { return e.fieldEditor }

// FieldEditorTitle names the field being edited.
func (e *Editor) FieldEditorTitle() string { return e.editorTitle }

// Status returns the status line.
func (e *Editor) Status() string { return e.status }

// AddEnabled reports whether a field can be added to the active key.
func (e *Editor) AddEnabled() bool { return e.addEnabled }

// DeleteEnabled reports whether a field is selected for deletion.
func (e *Editor) DeleteEnabled() bool { return e.delEnabled }

// LoadEnabled reports whether the field editor can be reloaded.
func (e *Editor) LoadEnabled() bool { return e.loadEnabled }

// SaveEnabled reports whether the field editor content can be saved.
func (e *Editor) SaveEnabled() bool { return e.saveEnabled }

// Memo returns the remembered child key selection of path.
func (e *Editor) Memo(path string) (int, bool) {
	i, ok := e.memo[path]
	return i, ok
}

// Close releases the open key and the field editor.
func (e *Editor) Close() error {
	if e.fieldEditor != nil {
		e.fieldEditor.Close()
		e.fieldEditor = nil
	}
	if e.fieldsKey == nil {
		return nil
	}
	err := e.fieldsKey.Close()
	e.fieldsKey = nil
	return err
}

func (e *Editor) setStatus(msg string) {
	e.status = msg
	e.Notify(StatusChangeDone, msg)
}

func (e *Editor) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.log.V(1).Info("warning", "message", msg, logger.PathKey, e.nav.Path())
	e.dialogs.Warn("Error", msg)
}

func (e *Editor) logErr(err error, msg string) {
	if err != nil {
		e.log.Error(err, msg, logger.PathKey, e.nav.Path())
	}
}

// Open navigates to path. Failures are reported through a warning dialog.
func (e *Editor) Open(path string) bool {
	e.rememberSelection()
	if _, err := e.nav.GoTo(path, true); err != nil {
		e.log.V(1).Info("open failed", logger.PathKey, path, "error", err.Error())
		e.warn("Cannot open key: `%s`.", path)
		return false
	}
	return true
}

// SelectChildKey selects the child key at index and remembers it for the active path.
func (e *Editor) SelectChildKey(index int) {
	e.logErr(e.ChildKeys.SetSelection(index), "select child key")
	e.rememberSelection()
}

// EnterChild opens the selected child key. The ParentEntry goes to the parent
// and reselects the key we came from.
func (e *Editor) EnterChild() {
	e.rememberSelection()
	old := e.nav.Path()
	if !e.nav.IsRoot() && e.ChildKeys.Selection() == 0 {
		if !e.Open(e.nav.ParentPath()) {
			return
		}
		name := store.BaseName(old)
		if name == "" {
			return
		}
		for i, child := range e.ChildKeys.Items() {
			if child == name {
				e.logErr(e.ChildKeys.SetSelection(i), "reselect child key")
				break
			}
		}
		return
	}
	name, ok := e.ChildKeys.Selected()
	if !ok {
		return
	}
	e.Open(e.nav.ChildPath(name))
}

// GoParent opens the parent of the active key.
func (e *Editor) GoParent() {
	if e.nav.IsRoot() {
		return
	}
	e.Open(e.nav.ParentPath())
}

// Reload re-reads the active key, keeping the selected field when it still
// exists. A key that disappeared is left for its nearest existing ancestor.
func (e *Editor) Reload() {
	selected := ""
	if f, ok := e.Fields.Selected(); ok {
		selected = f.Name()
	}
	path := e.nav.Path()
	for path != store.Root && !e.store.Exists(path) {
		path = store.ParentPath(path)
	}
	if !e.Open(path) {
		return
	}
	if selected != "" {
		e.selectField(selected, false)
	}
}

// Dirty reports whether the field editor holds edits that were not saved.
func (e *Editor) Dirty() bool {
	fe := e.fieldEditor
	return fe != nil && fe.Enabled() && fe.Data() != e.loaded
}

// Refresh follows a change made outside the editor. A clean editor reloads;
// a dirty one refreshes the lists only and keeps the unsaved field data as
// long as its field still exists.
func (e *Editor) Refresh() {
	path := e.nav.Path()
	if !e.Dirty() || !e.store.Exists(path) {
		e.Reload()
		return
	}
	field, ok := e.Fields.Selected()
	if !ok {
		e.Reload()
		return
	}
	name := field.Name()
	e.holdEditor = true
	e.refreshChildKeys()
	e.refreshFields()
	kept := e.selectField(name, false)
	e.holdEditor = false
	if !kept {
		e.refreshFieldEditor()
		e.warn("Field `%s` was removed outside the editor; unsaved edits are lost.", name)
		return
	}
	if f, ok := e.Fields.Selected(); ok {
		e.fieldEditor.SetField(f)
	}
	e.setStatus(fmt.Sprintf("Key `%s` changed outside the editor; unsaved edits kept", path))
}

func (e *Editor) rememberSelection() {
	path := e.nav.Path()
	index := e.ChildKeys.Selection()
	if path != store.Root && index == 0 {
		return
	}
	e.memo[path] = index
}

func (e *Editor) recoverSelection() {
	path := e.nav.Path()
	index, ok := e.memo[path]
	if !ok || index == e.ChildKeys.Selection() {
		return
	}
	if index > e.ChildKeys.LastIndex() {
		delete(e.memo, path)
		return
	}
	e.logErr(e.ChildKeys.SetSelection(index), "recover child key selection")
}

func (e *Editor) onPathBarText() {
	path := e.PathBar.Text()
	exists := e.store.Exists(path)
	e.PathBar.SetInvalid(!exists)
	if exists {
		e.Open(path)
	}
}

func (e *Editor) syncPathBar() {
	if e.PathBar.Changing() {
		return
	}
	path := e.nav.Path()
	if path != e.PathBar.Text() {
		e.logErr(e.PathBar.SetText(path, textentry.WithoutNotify()), "sync path bar")
	}
	e.PathBar.SetInvalid(!e.store.Exists(path))
}

func (e *Editor) refreshChildKeys() {
	path := e.nav.Path()
	names, err := e.nav.ChildNames()
	if err != nil {
		e.log.V(1).Info("read child keys failed", logger.PathKey, path, "error", err.Error())
		e.warn("Cannot read child keys of key: `%s`", path)
		names = nil
	}
	e.setStatus(fmt.Sprintf("Key: `%s`", path))

	items := make([]string, 0, len(names)+1)
	if path != store.Root {
		items = append(items, ParentEntry)
	}
	sorted := slices.Clone(names)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	items = append(items, sorted...)
	e.logErr(e.ChildKeys.SetItems(items), "set child keys")
	e.recoverSelection()
}

func (e *Editor) openFieldsKey() (*store.Key, error) {
	var err error
	for _, mask := range []store.Access{store.AccessAll, store.AccessWrite, store.AccessRead} {
		var k *store.Key
		if k, err = e.nav.Key(mask); err == nil {
			return k, nil
		}
	}
	return nil, err
}

func (e *Editor) refreshFields() {
	path := e.nav.Path()
	old := e.fieldsKey
	defer func() {
		if old != nil && old != e.fieldsKey {
			e.logErr(old.Close(), "close key")
		}
	}()

	key, err := e.openFieldsKey()
	var fields []*store.Field
	if err == nil {
		fields, err = key.Fields()
	}
	if err != nil {
		e.log.V(1).Info("read fields failed", logger.PathKey, path, "error", err.Error())
		if key != nil {
			if cerr := key.Close(); cerr != nil {
				e.log.V(1).Info("close key failed", logger.PathKey, path, "error", cerr.Error())
			}
		}
		e.fieldsKey = nil
		e.warn("Cannot read fields of key: `%s`", path)
		e.logErr(e.Fields.SetItems(nil), "clear fields")
		return
	}
	e.fieldsKey = key
	slices.SortStableFunc(fields, func(a, b *store.Field) int {
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})
	e.logErr(e.Fields.SetItems(fields), "set fields")
	if len(fields) > 0 {
		e.logErr(e.Fields.SetSelection(0), "select first field")
	}
}

func (e *Editor) refreshFieldEditor() {
	if e.holdEditor {
		return
	}
	old := e.fieldEditor
	field, ok := e.Fields.Selected()
	if !ok {
		field = nil
	}
	e.fieldEditor = e.factory(field, old, e.frame)

	enabled := false
	readFailed := false
	data := ""
	if field != nil {
		e.setStatus(fmt.Sprintf("Key: `%s%s%s`", e.nav.Path(), store.FieldPointer, field.Name()))
		if e.fieldEditor.Supports(field) {
			v, err := field.Data()
			if err != nil {
				e.log.V(1).Info("read field failed", logger.FieldKey, field.Name(), "error", err.Error())
				readFailed = true
			} else {
				data, enabled = v.Text(), true
			}
		}
	}

	if enabled {
		e.editorTitle = fmt.Sprintf("Field `%s`", field.Name())
		e.fieldEditor.Enable(true)
		e.fieldEditor.SetData(data)
	} else {
		e.editorTitle = "Field"
		e.fieldEditor.SetData("")
		e.fieldEditor.Enable(false)
	}
	e.loaded = e.fieldEditor.Data()
	e.loadEnabled, e.saveEnabled = enabled, enabled

	if old != nil && old != e.fieldEditor {
		old.Close()
	}
	if readFailed {
		e.warn("Failed reading field data.")
	}
}

func (e *Editor) updateAdd() {
	e.addEnabled = !e.nav.IsRoot()
}

func (e *Editor) updateDelete() {
	e.delEnabled = e.Fields.Selection() != listbox.NoSelection
}

// logDialogs stands in when no dialogs are given: warnings are logged and
// questions are declined.
type logDialogs struct{ log logr.Logger }

func (d logDialogs) Warn(title, message string) {
	d.log.Info(message, "title", title)
}

func (d logDialogs) Confirm(title, message string, _ func()) {
	d.log.V(1).Info("declined", "title", title, "message", message)
}

func (d logDialogs) AskField(func(string, store.FieldType) bool) {}
