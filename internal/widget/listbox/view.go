package listbox

import (
	"github.com/oakwood-commons/hivedit/internal/widget"
)

// View renders the visible window of items, scrolled so the selection stays
// on screen.
func (l *Listbox[T]) View(width, height int, focused bool) string {
	if height <= 0 || width <= 0 {
		return ""
	}
	l.pageSize = height
	if len(l.items) == 0 {
		line := l.Styles.Placeholder.Render(widget.Fit(l.Placeholder, width))
		return widget.Lines([]string{line}, width, height)
	}
	l.scrollTo(height)

	end := l.offset + height
	if end > len(l.items) {
		end = len(l.items)
	}
	lines := make([]string, 0, height)
	for i := l.offset; i < end; i++ {
		text := widget.Fit(l.ItemText(l.items[i]), width)
		style := l.Styles.Normal
		switch {
		case l.disabled:
			style = l.Styles.Disabled
		case i == l.selection && focused:
			style = l.Styles.Selected
		case i == l.selection:
			style = l.Styles.SelectedBlurred
		}
		lines = append(lines, style.Render(text))
	}
	return widget.Lines(lines, width, height)
}

// Offset returns the index of the first visible item.
func (l *Listbox[T]) Offset() int { return l.offset }

// IndexAt maps a row of the rendered view to an item index, or NoSelection.
func (l *Listbox[T]) IndexAt(row int) int {
	i := l.offset + row
	if row < 0 || !l.validIndex(i) {
		return NoSelection
	}
	return i
}

func (l *Listbox[T]) scrollTo(height int) {
	if l.selection != NoSelection {
		if l.selection < l.offset {
			l.offset = l.selection
		}
		if l.selection >= l.offset+height {
			l.offset = l.selection - height + 1
		}
	}
	if last := len(l.items) - height; l.offset > last {
		l.offset = last
	}
	if l.offset < 0 {
		l.offset = 0
	}
}
