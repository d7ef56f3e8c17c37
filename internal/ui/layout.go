package ui

import (
	"github.com/oakwood-commons/hivedit/internal/config"
)

// Constants for component heights
const (
	MenuBarLineCount = 1
	PathBarLineCount = 1
	StatusLineCount  = 1
	FooterLineCount  = 1
	PaneBorderLines  = 2 // top and bottom border
	PaneHeaderLines  = 1 // title row inside the border
	PaneBorderWidth  = 2 // left and right border
	MinPaneWidth     = 8
	MinBodyHeight    = 1
	PathBarLabel     = "Path: "
)

// Rect is a screen area in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the cell x, y lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Pane is a bordered pane: the outer box, its header row and its body.
type Pane struct {
	Outer  Rect
	Header Rect
	Body   Rect
}

// Layout is the position of every component for one window size.
type Layout struct {
	MenuBar   Rect
	PathBar   Rect // the entry, after the label
	ChildKeys Pane
	Fields    Pane
	Editor    Pane
	Status    Rect
	Footer    Rect
}

// LayoutManager manages the layout calculations for the TUI
type LayoutManager struct {
	width   int
	height  int
	weights config.LayoutConfig
}

// NewLayoutManager creates a new layout manager. Non-positive weights count as 1.
func NewLayoutManager(width, height int, weights config.LayoutConfig) *LayoutManager {
	return &LayoutManager{width: width, height: height, weights: weights}
}

// SetDimensions updates the layout manager dimensions
func (lm *LayoutManager) SetDimensions(width, height int) {
	lm.width = width
	lm.height = height
}

// PaneWidths splits the window width between the three panes by weight. The
// last pane takes the rounding remainder.
func (lm *LayoutManager) PaneWidths() (childKeys, fields, editor int) {
	w := [3]int{lm.weights.ChildKeys, lm.weights.Fields, lm.weights.Editor}
	total := 0
	for i := range w {
		if w[i] <= 0 {
			w[i] = 1
		}
		total += w[i]
	}
	width := max(lm.width, 3*MinPaneWidth)
	childKeys = max(width*w[0]/total, MinPaneWidth)
	fields = max(width*w[1]/total, MinPaneWidth)
	editor = max(width-childKeys-fields, MinPaneWidth)
	return childKeys, fields, editor
}

// Calculate computes the layout for the current dimensions.
func (lm *LayoutManager) Calculate() Layout {
	var l Layout
	l.MenuBar = Rect{X: 0, Y: 0, W: lm.width, H: MenuBarLineCount}
	l.PathBar = Rect{X: len(PathBarLabel), Y: MenuBarLineCount, W: max(lm.width-len(PathBarLabel), 1), H: PathBarLineCount}

	top := MenuBarLineCount + PathBarLineCount
	fixed := top + StatusLineCount + FooterLineCount
	outerH := max(lm.height-fixed, PaneBorderLines+PaneHeaderLines+MinBodyHeight)

	ck, fw, ew := lm.PaneWidths()
	x := 0
	for _, p := range []struct {
		pane  *Pane
		width int
	}{{&l.ChildKeys, ck}, {&l.Fields, fw}, {&l.Editor, ew}} {
		*p.pane = newPane(x, top, p.width, outerH)
		x += p.width
	}

	l.Status = Rect{X: 0, Y: top + outerH, W: lm.width, H: StatusLineCount}
	l.Footer = Rect{X: 0, Y: top + outerH + StatusLineCount, W: lm.width, H: FooterLineCount}
	return l
}

func newPane(x, y, w, h int) Pane {
	inner := max(w-PaneBorderWidth, 1)
	return Pane{
		Outer:  Rect{X: x, Y: y, W: w, H: h},
		Header: Rect{X: x + 1, Y: y + 1, W: inner, H: PaneHeaderLines},
		Body:   Rect{X: x + 1, Y: y + 1 + PaneHeaderLines, W: inner, H: max(h-PaneBorderLines-PaneHeaderLines, MinBodyHeight)},
	}
}
