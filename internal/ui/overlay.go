package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// block cuts or pads s to exactly width cells and height lines.
func block(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		out[i] = fitLine(line, width)
	}
	return strings.Join(out, "\n")
}

func fitLine(line string, width int) string {
	w := ansi.StringWidth(line)
	if w > width {
		return ansi.Truncate(line, width, "")
	}
	return line + strings.Repeat(" ", width-w)
}

// placeOverlay draws fg over bg with its top left corner at x, y. Lines of
// fg that fall outside bg are dropped.
func placeOverlay(bg, fg string, x, y int) string {
	if fg == "" {
		return bg
	}
	base := strings.Split(bg, "\n")
	for i, line := range strings.Split(fg, "\n") {
		row := y + i
		if row < 0 || row >= len(base) {
			continue
		}
		under := base[row]
		if w := ansi.StringWidth(under); w < x {
			under += strings.Repeat(" ", x-w)
		}
		left := ansi.Truncate(under, x, "")
		right := ansi.TruncateLeft(under, x+ansi.StringWidth(line), "")
		base[row] = left + ansi.ResetStyle + line + ansi.ResetStyle + right
	}
	return strings.Join(base, "\n")
}
