// Package textentry is a single-line text input whose value is guarded by a
// validator and whose changes are announced before and after they happen.
package textentry

import (
	"errors"
	"fmt"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/eventor"
	"github.com/oakwood-commons/hivedit/internal/widget"
)

// Events. Handlers always receive an eventor.Event whose Arg is the notify argument.
const (
	TextChangeSoon = "TEXT_CHANGE_SOON"
	TextChangeDone = "TEXT_CHANGE_DONE"
)

var (
	// ErrInvalid is returned when the validator rejects a text.
	ErrInvalid = errors.New("text is not valid")

	// ErrChanging is returned when the text is set while a change is being announced.
	ErrChanging = errors.New("text change in progress")

	// ErrInconsistent is returned when the display does not show the text that was set.
	ErrInconsistent = errors.New("display out of sync with text")
)

// Validator accepts or rejects a candidate text.
type Validator func(text string) bool

// AcceptAll is the default validator.
func AcceptAll(string) bool { return true }

type options struct {
	notify    bool
	notifyArg any
}

// Option adjusts a single SetText call.
type Option func(*options)

// WithoutNotify suppresses events.
func WithoutNotify() Option { return func(o *options) { o.notify = false } }

// WithNotifyArg sets the Arg of the announced events.
func WithNotifyArg(arg any) Option { return func(o *options) { o.notifyArg = arg } }

// Entry pairs a cached text with a bubbles textinput that displays it.
type Entry struct {
	*eventor.Eventor

	// Styles used by View.
	Styles widget.Styles

	input     textinput.Model
	text      string
	validator Validator
	changing  bool
	disabled  bool
	invalid   bool
}

// New returns an entry showing text. A nil validator accepts everything.
// text is not validated.
func New(text string, validator Validator, log logr.Logger) *Entry {
	if validator == nil {
		validator = AcceptAll
	}
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.SetWidth(80)
	ti.SetValue(text)
	ti.CursorEnd()
	e := &Entry{
		Styles:    widget.DefaultStyles(),
		input:     ti,
		text:      text,
		validator: validator,
	}
	e.Eventor = eventor.New(e).WithLogger(log)
	return e
}

// Text returns the cached text. While a keystroke is being announced it
// already holds the new text.
func (e *Entry) Text() string { return e.text }

// Display returns what the input widget shows.
func (e *Entry) Display() string { return e.input.Value() }

// Changing reports whether a change is being announced.
func (e *Entry) Changing() bool { return e.changing }

// SetPlaceholder sets the text shown while empty.
func (e *Entry) SetPlaceholder(p string) { e.input.Placeholder = p }

// SetCharLimit caps the input length; 0 means unlimited.
func (e *Entry) SetCharLimit(n int) { e.input.CharLimit = n }

// Enabled reports whether keystrokes are accepted.
func (e *Entry) Enabled() bool { return !e.disabled }

// SetEnabled enables or disables keystrokes. SetText works either way.
func (e *Entry) SetEnabled(enabled bool) {
	e.disabled = !enabled
	if !enabled {
		e.input.Blur()
	}
}

// Invalid reports whether the owner marked the text invalid.
func (e *Entry) Invalid() bool { return e.invalid }

// SetInvalid marks the text as not acceptable to the owner (shown by View).
func (e *Entry) SetInvalid(invalid bool) { e.invalid = invalid }

// Valid runs the validator. A panicking validator rejects the text.
func (e *Entry) Valid(text string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return e.validator(text)
}

// SetText validates text, announces TextChangeSoon, updates the cache and the
// display, checks they agree and announces TextChangeDone.
func (e *Entry) SetText(text string, opts ...Option) error {
	if !e.Valid(text) {
		return fmt.Errorf("%w: %q", ErrInvalid, text)
	}
	if e.changing {
		return ErrChanging
	}
	o := options{notify: true}
	for _, opt := range opts {
		opt(&o)
	}

	e.changing = true
	defer func() { e.changing = false }()
	if o.notify {
		e.NotifyWithInfo(TextChangeSoon, o.notifyArg)
	}
	oldText, oldDisplay := e.text, e.input.Value()
	e.text = text
	e.input.SetValue(text)
	e.input.CursorEnd()
	if got := e.input.Value(); got != text {
		e.text = oldText
		e.input.SetValue(oldDisplay)
		return fmt.Errorf("%w: %q != %q", ErrInconsistent, text, got)
	}
	if o.notify {
		e.NotifyWithInfo(TextChangeDone, o.notifyArg)
	}
	return nil
}

// Focus gives the input the cursor.
func (e *Entry) Focus() tea.Cmd {
	if e.disabled {
		return nil
	}
	return e.input.Focus()
}

// Blur removes the cursor.
func (e *Entry) Blur() { e.input.Blur() }

// Focused reports whether the input has the cursor.
func (e *Entry) Focused() bool { return e.input.Focused() }

// Update applies a keystroke. The key runs against a copy of the input; the
// candidate text is validated and, when accepted, becomes the cached text and
// is announced while the display still shows the old text. Only then is the
// display committed. Rejected keystrokes change nothing.
func (e *Entry) Update(msg tea.Msg) (tea.Cmd, error) {
	if _, ok := msg.(tea.KeyPressMsg); !ok {
		var cmd tea.Cmd
		e.input, cmd = e.input.Update(msg)
		return cmd, nil
	}
	if e.disabled {
		return nil, nil
	}
	if e.changing {
		return nil, ErrChanging
	}
	old, pos := e.input.Value(), e.input.Position()
	scratch, cmd := e.input.Update(msg)
	candidate := scratch.Value()
	if candidate == old {
		e.input = scratch
		return cmd, nil
	}
	if !e.Valid(candidate) {
		// the scratch copy may share storage with the input
		e.input.SetValue(old)
		e.input.SetCursor(pos)
		return nil, nil
	}

	e.announce(candidate)
	e.input = scratch
	return cmd, nil
}

func (e *Entry) announce(candidate string) {
	e.changing = true
	defer func() { e.changing = false }()
	e.NotifyWithInfo(TextChangeSoon, nil)
	e.text = candidate
	e.NotifyWithInfo(TextChangeDone, nil)
}

// View renders the input in width cells.
func (e *Entry) View(width int) string {
	if width <= 0 {
		return ""
	}
	e.input.SetWidth(width - 1)
	style := e.Styles.Normal
	switch {
	case e.disabled:
		style = e.Styles.Disabled
	case e.invalid:
		style = e.Styles.Invalid
	}
	return style.Width(width).MaxWidth(width).Render(e.input.View())
}
