// Package listbox is a selectable list that remembers its selection while
// unfocused and announces changes before and after they happen.
package listbox

import (
	"errors"
	"fmt"
	"slices"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/eventor"
	"github.com/oakwood-commons/hivedit/internal/widget"
)

// Events. Selection events carry the notify argument, item events carry nil.
const (
	ItemsChangeSoon     = "ITEMS_CHANGE_SOON"
	ItemsChangeDone     = "ITEMS_CHANGE_DONE"
	SelectionChangeSoon = "SELECTION_CHANGE_SOON"
	SelectionChangeDone = "SELECTION_CHANGE_DONE"
)

// NoSelection is the selection of a list with nothing selected.
const NoSelection = -1

var (
	// ErrInvalidIndex is returned for indexes outside the list.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrDisabled is returned by mutators while the list is disabled.
	ErrDisabled = errors.New("listbox is disabled")

	// ErrChanging is returned when a mutator runs while another is announcing.
	ErrChanging = errors.New("listbox change in progress")
)

type options struct {
	notify    bool
	keep      bool
	keepSet   bool
	index     int
	indexSet  bool
	focus     bool
	notifyArg any
}

// Option adjusts a single mutation.
type Option func(*options)

// WithoutNotify suppresses events.
func WithoutNotify() Option { return func(o *options) { o.notify = false } }

// KeepSelection keeps (true) or clears (false) the selection when items change.
func KeepSelection(keep bool) Option {
	return func(o *options) { o.keep, o.keepSet = keep, true }
}

// At picks the index Insert uses.
func At(index int) Option { return func(o *options) { o.index, o.indexSet = index, true } }

// WithFocus asks the owner to focus the list after the change.
func WithFocus() Option { return func(o *options) { o.focus = true } }

// WithNotifyArg sets the argument passed to selection handlers.
func WithNotifyArg(arg any) Option { return func(o *options) { o.notifyArg = arg } }

func collect(opts []Option, keepDefault bool) options {
	o := options{notify: true, keep: keepDefault}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Listbox holds items of any type and at most one selected index.
type Listbox[T any] struct {
	*eventor.Eventor

	// ItemText renders an item. Defaults to fmt.Sprint.
	ItemText func(T) string
	// Styles used by View.
	Styles widget.Styles
	// Placeholder is shown when the list is empty.
	Placeholder string

	items      []T
	selection  int
	disabled   bool
	changing   bool
	resetting  bool
	wantsFocus bool
	offset     int
	pageSize   int
}

// New returns an enabled, empty list.
func New[T any](log logr.Logger) *Listbox[T] {
	l := &Listbox[T]{
		ItemText:  func(v T) string { return fmt.Sprint(v) },
		Styles:    widget.DefaultStyles(),
		selection: NoSelection,
		pageSize:  10,
	}
	l.Eventor = eventor.New(l).WithLogger(log)
	return l
}

// Len returns the number of items.
func (l *Listbox[T]) Len() int { return len(l.items) }

// Items returns a copy of the items.
func (l *Listbox[T]) Items() []T { return slices.Clone(l.items) }

// Item returns the item at index.
func (l *Listbox[T]) Item(index int) (T, error) {
	var zero T
	if !l.validIndex(index) {
		return zero, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	return l.items[index], nil
}

// Selection returns the selected index or NoSelection.
func (l *Listbox[T]) Selection() int { return l.selection }

// Selected returns the selected item; ok is false when nothing is selected.
func (l *Listbox[T]) Selected() (item T, ok bool) {
	if !l.validIndex(l.selection) {
		return item, false
	}
	return l.items[l.selection], true
}

// LastIndex returns the last valid index, or NoSelection for an empty list.
func (l *Listbox[T]) LastIndex() int { return len(l.items) - 1 }

// Enabled reports whether mutators are allowed.
func (l *Listbox[T]) Enabled() bool { return !l.disabled }

// SetEnabled enables or disables the list.
func (l *Listbox[T]) SetEnabled(enabled bool) { l.disabled = !enabled }

// Changing reports whether a mutation is being announced.
func (l *Listbox[T]) Changing() bool { return l.changing }

// Resetting reports whether the selection being announced equals the old one.
func (l *Listbox[T]) Resetting() bool { return l.resetting }

// TakeFocusRequest reports (once) whether the last mutation asked for focus.
func (l *Listbox[T]) TakeFocusRequest() bool {
	f := l.wantsFocus
	l.wantsFocus = false
	return f
}

func (l *Listbox[T]) validIndex(i int) bool { return i >= 0 && i < len(l.items) }

func (l *Listbox[T]) guard() error {
	if l.disabled {
		return ErrDisabled
	}
	if l.changing {
		return ErrChanging
	}
	return nil
}

func (l *Listbox[T]) clampSelection() {
	if l.selection >= len(l.items) {
		l.selection = len(l.items) - 1
	}
	if l.selection < NoSelection {
		l.selection = NoSelection
	}
}

// SetItems replaces the items with a copy of items. The selection is cleared unless KeepSelection(true)
// is given, in which case it is clamped to the new bounds.
func (l *Listbox[T]) SetItems(items []T, opts ...Option) error {
	if err := l.guard(); err != nil {
		return err
	}
	o := collect(opts, false)
	l.changing = true
	defer func() { l.changing = false }()

	if o.notify {
		l.Notify(ItemsChangeSoon, nil)
	}
	l.items = slices.Clone(items)
	if !o.keep {
		l.selection = NoSelection
		l.offset = 0
	}
	l.clampSelection()
	if o.focus {
		l.wantsFocus = true
	}
	if o.notify {
		l.Notify(ItemsChangeDone, nil)
	}
	return nil
}

// SetSelection selects index, or clears the selection with NoSelection.
func (l *Listbox[T]) SetSelection(index int, opts ...Option) error {
	if index != NoSelection && !l.validIndex(index) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	if err := l.guard(); err != nil {
		return err
	}
	o := collect(opts, true)
	l.changing = true
	l.resetting = index == l.selection
	defer func() {
		l.resetting = false
		l.changing = false
	}()

	if o.notify {
		l.Notify(SelectionChangeSoon, o.notifyArg)
	}
	l.selection = index
	if o.focus {
		l.wantsFocus = true
	}
	if o.notify {
		l.Notify(SelectionChangeDone, o.notifyArg)
	}
	return nil
}

// Insert puts item at At(index), defaulting to the selection or the end when
// nothing is selected. A selection at or after the index moves up by one.
func (l *Listbox[T]) Insert(item T, opts ...Option) (int, error) {
	if err := l.guard(); err != nil {
		return NoSelection, err
	}
	o := collect(opts, true)
	index := o.index
	if !o.indexSet {
		index = l.selection
		if index == NoSelection {
			index = len(l.items)
		}
	}
	if index < 0 || index > len(l.items) {
		return NoSelection, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	l.changing = true
	defer func() { l.changing = false }()
	if o.notify {
		l.Notify(SelectionChangeSoon, o.notifyArg)
		l.Notify(ItemsChangeSoon, nil)
	}
	l.items = append(l.items, item)
	copy(l.items[index+1:], l.items[index:])
	l.items[index] = item
	if l.selection != NoSelection && l.selection >= index {
		l.selection++
	}
	if !o.keep {
		l.selection = NoSelection
	}
	if o.notify {
		l.Notify(ItemsChangeDone, nil)
		l.Notify(SelectionChangeDone, o.notifyArg)
	}
	return index, nil
}

// Remove deletes the item at index. A selection after the index moves down by
// one and is clamped to the last index, so Remove undoes Insert.
func (l *Listbox[T]) Remove(index int, opts ...Option) error {
	if !l.validIndex(index) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	if err := l.guard(); err != nil {
		return err
	}
	o := collect(opts, true)
	l.changing = true
	defer func() { l.changing = false }()
	if o.notify {
		l.Notify(SelectionChangeSoon, o.notifyArg)
		l.Notify(ItemsChangeSoon, nil)
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	if l.selection > index {
		l.selection--
	}
	l.clampSelection()
	if !o.keep {
		l.selection = NoSelection
	}
	if o.notify {
		l.Notify(ItemsChangeDone, nil)
		l.Notify(SelectionChangeDone, o.notifyArg)
	}
	return nil
}

// Move shifts the selection by delta, clamped to the list; an empty list or a
// move that lands on the current selection still announces a reset.
func (l *Listbox[T]) Move(delta int, opts ...Option) error {
	if len(l.items) == 0 {
		return nil
	}
	target := l.selection + delta
	if l.selection == NoSelection {
		if delta > 0 {
			target = 0
		} else {
			target = len(l.items) - 1
		}
	}
	if target < 0 {
		target = 0
	}
	if target >= len(l.items) {
		target = len(l.items) - 1
	}
	return l.SetSelection(target, opts...)
}

// HandleKey moves the selection for navigation keys and reports whether the
// key was consumed.
func (l *Listbox[T]) HandleKey(msg tea.KeyMsg) (bool, error) {
	switch msg.String() {
	case "up", "k":
		return true, l.Move(-1)
	case "down", "j":
		return true, l.Move(1)
	case "pgup":
		return true, l.Move(-l.pageSize)
	case "pgdown":
		return true, l.Move(l.pageSize)
	case "home", "g":
		return true, l.Move(-len(l.items))
	case "end", "G":
		return true, l.Move(len(l.items))
	}
	return false, nil
}
