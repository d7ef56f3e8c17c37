// Package widget holds what the terminal widgets share: styles and width helpers.
package widget

import (
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
)

// Styles are the lipgloss styles widgets render with. The UI builds them from the theme.
type Styles struct {
	Normal          lipgloss.Style
	Selected        lipgloss.Style // selection while the widget has focus
	SelectedBlurred lipgloss.Style // selection while another widget has focus
	Disabled        lipgloss.Style
	Invalid         lipgloss.Style
	Placeholder     lipgloss.Style
}

// DefaultStyles returns colourless styles that still show the selection.
func DefaultStyles() Styles {
	return Styles{
		Normal:          lipgloss.NewStyle(),
		Selected:        lipgloss.NewStyle().Reverse(true),
		SelectedBlurred: lipgloss.NewStyle().Underline(true),
		Disabled:        lipgloss.NewStyle().Faint(true),
		Invalid:         lipgloss.NewStyle().Bold(true),
		Placeholder:     lipgloss.NewStyle().Faint(true),
	}
}

// Fit truncates s to width display cells and pads it with spaces to exactly width.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// Lines pads or cuts lines to height rows.
func Lines(lines []string, width, height int) string {
	if height <= 0 {
		return ""
	}
	out := make([]string, height)
	blank := strings.Repeat(" ", intMax(width, 0))
	for i := range out {
		if i < len(lines) {
			out[i] = lines[i]
		} else {
			out[i] = blank
		}
	}
	return strings.Join(out, "\n")
}

func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}
