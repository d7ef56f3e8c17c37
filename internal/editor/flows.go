package editor

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/widget/listbox"
	"github.com/oakwood-commons/hivedit/pkg/logger"
)

// AddableTypes are offered by the add field dialog.
var AddableTypes = []store.FieldType{store.TypeString, store.TypeExpandString}

// TypeLabel is the add dialog's name for an addable type.
func TypeLabel(t store.FieldType) string {
	switch t {
	case store.TypeString:
		return "String"
	case store.TypeExpandString:
		return "Extended String"
	}
	return t.String()
}

// RequestAdd asks for a new field of the active key.
func (e *Editor) RequestAdd() {
	if !e.addEnabled || e.nav.IsRoot() {
		return
	}
	e.dialogs.AskField(e.AddField)
}

// AddField creates an empty field and selects it. It reports whether the add
// dialog can close; on a duplicate name or a failed write it stays open.
func (e *Editor) AddField(name string, typ store.FieldType) bool {
	if e.nav.IsRoot() {
		return true
	}
	if !typ.IsString() {
		e.warn("Field type is not supported: `%s`.", typ)
		return false
	}
	if name == "" {
		e.warn("Field name is empty.")
		return false
	}
	for _, f := range e.Fields.Items() {
		if strings.EqualFold(f.Name(), name) {
			e.warn("Field name exists: `%s`.", name)
			return false
		}
	}
	if err := e.writeNewField(name, typ); err != nil {
		e.log.V(1).Info("create field failed", logger.FieldKey, name, "error", err.Error())
		e.warn("Failed creating field: `%s`.", name)
		return false
	}
	e.log.V(1).Info("field created", logger.PathKey, e.nav.Path(), logger.FieldKey, name, "type", typ.String())
	e.refreshFields()
	e.selectField(name, false)
	return true
}

func (e *Editor) writeNewField(name string, typ store.FieldType) error {
	key := e.fieldsKey
	if key == nil || key.Closed() {
		k, err := e.nav.Key(store.AccessWrite)
		if err != nil {
			return err
		}
		defer k.Close()
		key = k
	}
	return key.WriteField(name, store.StringValue(typ, ""))
}

// RequestDelete asks to delete the selected field.
func (e *Editor) RequestDelete() {
	field, ok := e.Fields.Selected()
	if !ok {
		return
	}
	e.dialogs.Confirm("Delete field", fmt.Sprintf("Delete field `%s`?", field.Name()), func() {
		e.DeleteField(field)
	})
}

// DeleteField deletes field and keeps the selection at the same index, clamped.
func (e *Editor) DeleteField(field *store.Field) {
	old := e.Fields.Selection()
	if err := field.Delete(); err != nil {
		e.log.V(1).Info("delete field failed", logger.FieldKey, field.Name(), "error", err.Error())
		e.warn("Failed deleting field `%s`.", field.Name())
		return
	}
	e.log.V(1).Info("field deleted", logger.PathKey, e.nav.Path(), logger.FieldKey, field.Name())
	e.refreshFields()
	index := min(old, e.Fields.LastIndex())
	e.logErr(e.Fields.SetSelection(index), "select field after delete")
}

// Load re-reads the selected field into the field editor.
func (e *Editor) Load() {
	if !e.loadEnabled {
		return
	}
	e.refreshFieldEditor()
}

// Save writes the field editor content to the selected field.
func (e *Editor) Save() {
	if !e.saveEnabled || e.fieldEditor == nil {
		return
	}
	field, ok := e.Fields.Selected()
	if !ok {
		return
	}
	if err := field.SetData(e.fieldEditor.Data()); err != nil {
		e.log.V(1).Info("write field failed", logger.FieldKey, field.Name(), "error", err.Error())
		e.warn("Failed writing data to registry.")
		return
	}
	e.loaded = e.fieldEditor.Data()
	e.setStatus(fmt.Sprintf("Saved `%s%s%s`", e.nav.Path(), store.FieldPointer, field.Name()))
}

// selectField selects the named field, case-insensitively.
func (e *Editor) selectField(name string, focus bool) bool {
	for i, f := range e.Fields.Items() {
		if strings.EqualFold(f.Name(), name) {
			var opts []listbox.Option
			if focus {
				opts = append(opts, listbox.WithFocus())
			}
			e.logErr(e.Fields.SetSelection(i, opts...), "select field")
			return true
		}
	}
	return false
}
