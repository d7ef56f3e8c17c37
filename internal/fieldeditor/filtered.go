package fieldeditor

import (
	"slices"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/widget"
)

// Filtered edits text in a textarea. The get filter is applied to the
// textarea content when the data is read and the set filter to data loaded
// into it.
type Filtered struct {
	field   *store.Field
	area    textarea.Model
	get     Filter
	set     Filter
	types   []store.FieldType
	enabled bool
	styles  widget.Styles
	log     logr.Logger

	// rule names the configuration rule that built the editor, if any.
	rule string
}

// NewFiltered returns an enabled editor for field supporting types.
func NewFiltered(field *store.Field, get, set Filter, frame Frame, types ...store.FieldType) *Filtered {
	if get == nil {
		get = Identity
	}
	if set == nil {
		set = Identity
	}
	ta := textarea.New()
	ta.Prompt = ""
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	return &Filtered{
		field:   field,
		area:    ta,
		get:     get,
		set:     set,
		types:   types,
		enabled: true,
		styles:  frame.Styles,
		log:     frame.Log,
	}
}

// Rule returns the name of the configuration rule that built the editor.
func (f *Filtered) Rule() string { return f.rule }

func (f *Filtered) Supports(field *store.Field) bool {
	return field != nil && slices.Contains(f.types, field.Type())
}

func (f *Filtered) Field() *store.Field { return f.field }

func (f *Filtered) SetField(field *store.Field) { f.field = field }

func (f *Filtered) Data() string { return f.get(f.area.Value()) }

func (f *Filtered) SetData(data string) {
	f.area.SetValue(f.set(data))
}

// Enable switches editing on or off. A disabled editor ignores input.
func (f *Filtered) Enable(enabled bool) {
	f.enabled = enabled
	if !enabled {
		f.area.Blur()
	}
}

func (f *Filtered) Enabled() bool { return f.enabled }

func (f *Filtered) Focus() tea.Cmd {
	if !f.enabled {
		return nil
	}
	return f.area.Focus()
}

func (f *Filtered) Blur() { f.area.Blur() }

func (f *Filtered) Update(msg tea.Msg) tea.Cmd {
	if !f.enabled {
		return nil
	}
	var cmd tea.Cmd
	f.area, cmd = f.area.Update(msg)
	return cmd
}

func (f *Filtered) View(width, height int, focused bool) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	f.area.SetWidth(width)
	f.area.SetHeight(height)
	style := f.styles.Normal
	if !f.enabled {
		style = f.styles.Disabled
	}
	return style.Width(width).MaxWidth(width).Render(f.area.View())
}

func (f *Filtered) Close() {
	f.area.Blur()
	f.area.Reset()
	f.field = nil
	f.log.V(2).Info("field editor closed", "rule", f.rule)
}
