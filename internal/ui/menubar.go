package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/oakwood-commons/hivedit/internal/widget/menu"
	"github.com/oakwood-commons/hivedit/internal/widget/menutree"
)

// FileMenuID is the id of the File menu added when the UI config asks for it.
const FileMenuID = menutree.Top + "File"

// AddFileMenu puts a File menu holding Exit first on the bar. When the tree
// already has a File menu, Exit is appended to it.
func AddFileMenu(tree *menutree.Tree, exit func()) error {
	if !tree.Exists(FileMenuID) {
		if _, err := tree.AddMenu(menutree.Top, "File", menutree.AtIndex(0)); err != nil {
			return fmt.Errorf("add file menu: %w", err)
		}
	}
	if _, err := tree.AddCommand(FileMenuID, "Exit", exit); err != nil && !errors.Is(err, menutree.ErrIDExists) {
		return fmt.Errorf("add exit command: %w", err)
	}
	return nil
}

// MenuBar renders a menutree as a one line bar with drop-down submenus.
// While active it owns the keyboard.
type MenuBar struct {
	tree   *menutree.Tree
	active bool
	// stack holds the highlighted index per open level, the bar first.
	stack []int
}

// NewMenuBar returns an inactive bar over tree. A nil tree gives an empty bar.
func NewMenuBar(tree *menutree.Tree) *MenuBar {
	if tree == nil {
		tree = menutree.New()
	}
	return &MenuBar{tree: tree}
}

// Tree returns the menu tree shown by the bar.
func (b *MenuBar) Tree() *menutree.Tree { return b.tree }

// Active reports whether the bar has the keyboard.
func (b *MenuBar) Active() bool { return b.active }

// Open activates the bar on its first selectable entry and drops it down.
func (b *MenuBar) Open() {
	b.OpenAt(b.tree.TopMenu().NextSelectable(-1, 1))
}

// OpenAt activates the bar on top level entry index.
func (b *MenuBar) OpenAt(index int) {
	if !b.tree.TopMenu().Selectable(index) {
		b.Close()
		return
	}
	b.active = true
	b.stack = []int{index}
	b.dropDown()
}

// Close deactivates the bar.
func (b *MenuBar) Close() {
	b.active = false
	b.stack = nil
}

// Highlighted returns the highlighted index of every open level.
func (b *MenuBar) Highlighted() []int { return append([]int(nil), b.stack...) }

// menuAt returns the menu shown at level; level 0 is the bar itself.
func (b *MenuBar) menuAt(level int) *menu.Menu {
	m := b.tree.TopMenu()
	for i := 0; i < level; i++ {
		e, err := m.Entry(b.stack[i])
		if err != nil || e.Kind != menu.KindCascade {
			return nil
		}
		m = e.Submenu
	}
	return m
}

func (b *MenuBar) current() (menu.Entry, bool) {
	level := len(b.stack) - 1
	if level < 0 {
		return menu.Entry{}, false
	}
	e, err := b.menuAt(level).Entry(b.stack[level])
	return e, err == nil
}

// dropDown opens the submenu of the highlighted entry when it is a menu.
func (b *MenuBar) dropDown() bool {
	e, ok := b.current()
	if !ok || e.Kind != menu.KindCascade {
		return false
	}
	first := e.Submenu.NextSelectable(-1, 1)
	if first < 0 {
		return false
	}
	b.stack = append(b.stack, first)
	return true
}

func (b *MenuBar) moveTop(dir int) {
	next := b.tree.TopMenu().NextSelectable(b.stack[0], dir)
	if next >= 0 {
		b.OpenAt(next)
	}
}

// activate runs the highlighted command or opens the highlighted submenu.
func (b *MenuBar) activate() {
	e, ok := b.current()
	if !ok {
		return
	}
	switch e.Kind {
	case menu.KindCascade:
		b.dropDown()
	case menu.KindCommand:
		b.Close()
		if e.Command != nil {
			e.Command()
		}
	}
}

// HandleKey processes a key while the bar is active and reports whether it
// was consumed.
func (b *MenuBar) HandleKey(msg tea.KeyPressMsg) bool {
	if !b.active {
		return false
	}
	last := len(b.stack) - 1
	switch msg.String() {
	case "esc":
		if last >= 2 {
			b.stack = b.stack[:last]
		} else {
			b.Close()
		}
	case "f10", "alt+m":
		b.Close()
	case "left", "h":
		if last >= 2 {
			b.stack = b.stack[:last]
		} else {
			b.moveTop(-1)
		}
	case "right", "l":
		if last >= 1 && b.dropDown() {
			break
		}
		b.moveTop(1)
	case "up", "k":
		if last >= 1 {
			b.stack[last] = b.menuAt(last).NextSelectable(b.stack[last], -1)
		}
	case "down", "j":
		if last >= 1 {
			b.stack[last] = b.menuAt(last).NextSelectable(b.stack[last], 1)
		} else {
			b.dropDown()
		}
	case "enter", "space":
		b.activate()
	}
	return true
}

func barLabel(label string) string { return " " + label + " " }

// TopIndexAt maps a column of the bar to a top level entry, or -1.
func (b *MenuBar) TopIndexAt(x int) int {
	pos := 0
	for i, e := range b.tree.TopMenu().Entries() {
		w := ansi.StringWidth(barLabel(e.Label))
		if x >= pos && x < pos+w {
			return i
		}
		pos += w
	}
	return -1
}

// Click handles a left click at x on the bar row: it toggles the clicked menu.
func (b *MenuBar) Click(x int) {
	i := b.TopIndexAt(x)
	if i < 0 || (b.active && b.stack[0] == i) {
		b.Close()
		return
	}
	if e, err := b.tree.TopMenu().Entry(i); err == nil && e.Kind == menu.KindCommand {
		b.stack = []int{i}
		b.activate()
		return
	}
	b.OpenAt(i)
}

// ClickDropDown activates the row of drop-down level hit at x, y and reports
// whether a drop-down was hit.
func (b *MenuBar) ClickDropDown(x, y int, st styles) bool {
	dds := b.dropDowns(st)
	for level := len(dds) - 1; level >= 0; level-- {
		d := dds[level]
		if !d.rect.Contains(x, y) {
			continue
		}
		row := y - d.rect.Y - 1
		m := b.menuAt(level + 1)
		if !m.Selectable(row) {
			return true
		}
		b.stack = append(b.stack[:level+1], row)
		b.activate()
		return true
	}
	return false
}

// View renders the bar in width cells with title at the right edge.
func (b *MenuBar) View(width int, title string, st styles) string {
	var sb strings.Builder
	for i, e := range b.tree.TopMenu().Entries() {
		label := barLabel(e.Label)
		switch {
		case b.active && len(b.stack) > 0 && b.stack[0] == i:
			sb.WriteString(st.menuActive.Render(label))
		case !e.Enabled:
			sb.WriteString(st.disabled.Render(label))
		default:
			sb.WriteString(st.menuItem.Render(label))
		}
	}
	line := sb.String()
	if pad := width - ansi.StringWidth(line) - ansi.StringWidth(title) - 1; title != "" && pad > 0 {
		line += st.menuBar.Render(strings.Repeat(" ", pad)) + st.title.Render(title) + st.menuBar.Render(" ")
	}
	return st.menuBar.Render(fitLine(line, width))
}

type dropDown struct {
	rect Rect
	view string
}

// dropDowns renders every open submenu with its screen position.
func (b *MenuBar) dropDowns(st styles) []dropDown {
	if !b.active {
		return nil
	}
	var out []dropDown
	x, y := 0, MenuBarLineCount
	for i := 0; i < b.stack[0]; i++ {
		e, _ := b.tree.TopMenu().Entry(i)
		x += ansi.StringWidth(barLabel(e.Label))
	}
	for level := 1; level < len(b.stack); level++ {
		m := b.menuAt(level)
		if m == nil {
			break
		}
		view, w := renderDropDown(m, b.stack[level], st)
		out = append(out, dropDown{rect: Rect{X: x, Y: y, W: w, H: m.Len() + 2}, view: view})
		x += w
		y += b.stack[level] + 1
	}
	return out
}

func renderDropDown(m *menu.Menu, highlighted int, st styles) (string, int) {
	inner := 1
	for _, e := range m.Entries() {
		w := ansi.StringWidth(e.Label) + 2
		if e.Kind == menu.KindCascade {
			w += 2
		}
		inner = max(inner, w)
	}
	lines := make([]string, 0, m.Len())
	for i, e := range m.Entries() {
		var text string
		switch e.Kind {
		case menu.KindSeparator:
			lines = append(lines, st.menuItem.Render(strings.Repeat("─", inner)))
			continue
		case menu.KindCascade:
			text = fitLine(" "+e.Label, inner-2) + "▸ "
		default:
			text = fitLine(" "+e.Label, inner)
		}
		switch {
		case i == highlighted:
			text = st.menuActive.Render(text)
		case !e.Enabled:
			text = st.disabled.Render(text)
		default:
			text = st.menuItem.Render(text)
		}
		lines = append(lines, text)
	}
	box := st.pane.Render(strings.Join(lines, "\n"))
	return box, inner + PaneBorderWidth
}
