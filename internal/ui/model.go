package ui

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/hivedit/internal/config"
	"github.com/oakwood-commons/hivedit/internal/editor"
	"github.com/oakwood-commons/hivedit/internal/fieldeditor"
	"github.com/oakwood-commons/hivedit/internal/store/diskstore"
	"github.com/oakwood-commons/hivedit/internal/widget/menutree"
)

// Focus identifies the component receiving keys.
type Focus int

const (
	FocusPathBar Focus = iota
	FocusChildKeys
	FocusFields
	FocusEditor
	focusCount
)

func (f Focus) String() string {
	switch f {
	case FocusPathBar:
		return "path"
	case FocusChildKeys:
		return "child_keys"
	case FocusFields:
		return "fields"
	case FocusEditor:
		return "editor"
	default:
		return fmt.Sprintf("focus(%d)", int(f))
	}
}

// DoubleClickInterval is the longest gap between two clicks of a double-click.
const DoubleClickInterval = 400 * time.Millisecond

type click struct {
	focus Focus
	index int
	at    time.Time
}

// Model is the bubbletea model of the editor window.
type Model struct {
	Editor  *editor.Editor
	Menu    *MenuBar
	Dialogs *Dialogs
	Focus   Focus

	WinWidth  int
	WinHeight int
	NoColor   bool
	Title     string

	layout   *LayoutManager
	styles   styles
	changes  <-chan diskstore.Change
	focusFE  fieldeditor.FieldEditor
	last     click
	now      func() time.Time
	quitting bool
	log      logr.Logger
}

// Options configure NewModel.
type Options struct {
	Editor  *editor.Editor
	Dialogs *Dialogs // must be the dialogs the editor was built with
	Menu    *menutree.Tree
	Config  config.UIConfig
	NoColor bool
	// Changes reloads the current key when the store changes underneath.
	Changes <-chan diskstore.Change
	Log     logr.Logger
}

// NewModel builds the window around an editor.
func NewModel(opts Options) (*Model, error) {
	if opts.Editor == nil {
		return nil, fmt.Errorf("ui: editor is required")
	}
	themeCfg, err := opts.Config.ActiveTheme()
	if err != nil {
		return nil, err
	}
	dialogs := opts.Dialogs
	if dialogs == nil {
		dialogs = NewDialogs(opts.Log)
	}
	m := &Model{
		Editor:    opts.Editor,
		Menu:      NewMenuBar(opts.Menu),
		Dialogs:   dialogs,
		Focus:     FocusChildKeys,
		WinWidth:  80,
		WinHeight: 24,
		NoColor:   opts.NoColor,
		Title:     opts.Config.Title,
		layout:    NewLayoutManager(80, 24, opts.Config.Layout),
		styles:    newStyles(ThemeFromConfig(themeCfg), opts.NoColor),
		changes:   opts.Changes,
		now:       time.Now,
		log:       opts.Log,
	}
	if opts.Config.ShowFileMenu() {
		if err := AddFileMenu(m.Menu.Tree(), m.quit); err != nil {
			return nil, err
		}
	}
	ws := m.styles.widget
	m.Editor.PathBar.Styles = ws
	m.Editor.ChildKeys.Styles = ws
	m.Editor.Fields.Styles = ws
	return m, nil
}

// Frame returns what field editors need from the UI for cfg.
func Frame(cfg config.UIConfig, noColor bool, log logr.Logger) (fieldeditor.Frame, error) {
	themeCfg, err := cfg.ActiveTheme()
	if err != nil {
		return fieldeditor.Frame{}, err
	}
	return fieldeditor.Frame{Styles: ThemeFromConfig(themeCfg).WidgetStyles(noColor), Log: log}, nil
}

func (m *Model) quit() { m.quitting = true }

// Quitting reports whether the user asked to leave.
func (m *Model) Quitting() bool { return m.quitting }

// Init starts watching for store changes.
func (m *Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Update handles a message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.WinWidth, m.WinHeight = msg.Width, msg.Height
		m.layout.SetDimensions(msg.Width, msg.Height)
	case storeChangedMsg:
		cmd = m.handleStoreChange(msg)
	case tea.KeyPressMsg:
		cmd = m.handleKey(msg)
	case tea.MouseClickMsg:
		cmd = m.handleClick(msg.Mouse())
	case tea.MouseWheelMsg:
		m.handleWheel(msg.Mouse())
	default:
		cmd = m.forward(msg)
	}
	if m.quitting {
		return m, tea.Quit
	}
	return m, tea.Batch(cmd, m.syncFocus())
}

// forward passes non-key messages, such as cursor blinks, to text widgets.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	if m.Dialogs.Active() {
		return m.Dialogs.Update(msg)
	}
	switch m.Focus {
	case FocusPathBar:
		cmd, err := m.Editor.PathBar.Update(msg)
		m.logErr(err)
		return cmd
	case FocusEditor:
		if fe := m.Editor.FieldEditor(); fe != nil {
			return fe.Update(msg)
		}
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.Dialogs.Active() {
		if msg.String() == "ctrl+c" {
			m.quit()
			return nil
		}
		return m.Dialogs.Update(msg)
	}
	if m.Menu.Active() {
		m.Menu.HandleKey(msg)
		return nil
	}

	switch actionFor(msg, m.Focus) {
	case ActionQuit:
		m.quit()
		return nil
	case ActionFocusNext:
		return m.SetFocus((m.Focus + 1) % focusCount)
	case ActionFocusPrev:
		return m.SetFocus((m.Focus + focusCount - 1) % focusCount)
	case ActionOpen:
		m.Editor.EnterChild()
		return nil
	case ActionParent:
		m.Editor.GoParent()
		return nil
	case ActionAdd:
		if m.Editor.AddEnabled() {
			m.Editor.RequestAdd()
		}
		return nil
	case ActionDelete:
		if m.Editor.DeleteEnabled() {
			m.Editor.RequestDelete()
		}
		return nil
	case ActionLoad:
		if m.Editor.LoadEnabled() {
			m.Editor.Load()
		}
		return nil
	case ActionSave:
		if m.Editor.SaveEnabled() {
			m.Editor.Save()
		}
		return nil
	case ActionReload:
		m.Editor.Reload()
		return nil
	case ActionMenu:
		m.Menu.Open()
		return nil
	}

	switch m.Focus {
	case FocusPathBar:
		if msg.String() == "enter" {
			return m.SetFocus(FocusChildKeys)
		}
		cmd, err := m.Editor.PathBar.Update(msg)
		m.logErr(err)
		return cmd
	case FocusChildKeys:
		_, err := m.Editor.ChildKeys.HandleKey(msg)
		m.logErr(err)
	case FocusFields:
		_, err := m.Editor.Fields.HandleKey(msg)
		m.logErr(err)
	case FocusEditor:
		if msg.String() == "esc" {
			return m.SetFocus(FocusFields)
		}
		if fe := m.Editor.FieldEditor(); fe != nil {
			return fe.Update(msg)
		}
	}
	return nil
}

func (m *Model) logErr(err error) {
	if err != nil {
		m.log.V(1).Info("widget rejected input", "error", err.Error())
	}
}

// SetFocus moves the keyboard to f.
func (m *Model) SetFocus(f Focus) tea.Cmd {
	if f == m.Focus {
		return nil
	}
	switch m.Focus {
	case FocusPathBar:
		m.Editor.PathBar.Blur()
	case FocusEditor:
		if m.focusFE != nil {
			m.focusFE.Blur()
		}
		m.focusFE = nil
	}
	m.Focus = f
	switch f {
	case FocusPathBar:
		return m.Editor.PathBar.Focus()
	case FocusEditor:
		return m.focusEditor()
	}
	return nil
}

func (m *Model) focusEditor() tea.Cmd {
	m.focusFE = m.Editor.FieldEditor()
	if m.focusFE == nil {
		return nil
	}
	return m.focusFE.Focus()
}

// syncFocus honours focus requests from the field list and refocuses the
// field editor after it has been replaced.
func (m *Model) syncFocus() tea.Cmd {
	if m.Editor.Fields.TakeFocusRequest() {
		return m.SetFocus(FocusFields)
	}
	if m.Focus == FocusEditor && m.Editor.FieldEditor() != m.focusFE {
		return m.focusEditor()
	}
	return nil
}

func (m *Model) handleStoreChange(msg storeChangedMsg) tea.Cmd {
	if !msg.ok {
		m.log.V(1).Info("store watch ended")
		return nil
	}
	if affects(m.Editor.Path(), msg.change.Path) {
		m.log.V(1).Info("store changed, refreshing", "path", msg.change.Path, "dirty", m.Editor.Dirty())
		m.Editor.Refresh()
	}
	return waitForChange(m.changes)
}

func (m *Model) handleWheel(mouse tea.Mouse) {
	l := m.layout.Calculate()
	dir := 1
	if mouse.Button == tea.MouseWheelUp {
		dir = -1
	}
	switch {
	case l.ChildKeys.Body.Contains(mouse.X, mouse.Y):
		m.logErr(m.Editor.ChildKeys.Move(dir))
	case l.Fields.Body.Contains(mouse.X, mouse.Y):
		m.logErr(m.Editor.Fields.Move(dir))
	}
}

func (m *Model) handleClick(mouse tea.Mouse) tea.Cmd {
	if m.Dialogs.Active() {
		return nil
	}
	l := m.layout.Calculate()
	if m.Menu.Active() {
		if m.Menu.ClickDropDown(mouse.X, mouse.Y, m.styles) {
			return nil
		}
		if !l.MenuBar.Contains(mouse.X, mouse.Y) {
			m.Menu.Close()
			return nil
		}
	}
	switch {
	case l.MenuBar.Contains(mouse.X, mouse.Y):
		if mouse.Button == tea.MouseLeft {
			m.Menu.Click(mouse.X)
		}
	case l.PathBar.Contains(mouse.X, mouse.Y):
		return m.SetFocus(FocusPathBar)
	case l.ChildKeys.Outer.Contains(mouse.X, mouse.Y):
		cmd := m.SetFocus(FocusChildKeys)
		if mouse.Button == tea.MouseRight {
			m.Editor.GoParent()
			return cmd
		}
		if !l.ChildKeys.Body.Contains(mouse.X, mouse.Y) {
			return cmd
		}
		i := m.Editor.ChildKeys.IndexAt(mouse.Y - l.ChildKeys.Body.Y)
		if i < 0 {
			return cmd
		}
		m.Editor.SelectChildKey(i)
		if m.doubleClick(FocusChildKeys, i) {
			m.Editor.EnterChild()
		}
		return cmd
	case l.Fields.Outer.Contains(mouse.X, mouse.Y):
		cmd := m.SetFocus(FocusFields)
		if l.Fields.Header.Contains(mouse.X, mouse.Y) {
			m.clickButton(fieldButtons(m.Editor), l.Fields.Header, mouse.X)
			return cmd
		}
		if !l.Fields.Body.Contains(mouse.X, mouse.Y) {
			return cmd
		}
		if i := m.Editor.Fields.IndexAt(mouse.Y - l.Fields.Body.Y); i >= 0 {
			m.logErr(m.Editor.Fields.SetSelection(i))
		}
		return cmd
	case l.Editor.Outer.Contains(mouse.X, mouse.Y):
		if l.Editor.Header.Contains(mouse.X, mouse.Y) {
			m.clickButton(editorButtons(m.Editor), l.Editor.Header, mouse.X)
			return nil
		}
		return m.SetFocus(FocusEditor)
	}
	return nil
}

func (m *Model) doubleClick(f Focus, index int) bool {
	now := m.now()
	double := m.last.focus == f && m.last.index == index && now.Sub(m.last.at) <= DoubleClickInterval
	m.last = click{focus: f, index: index, at: now}
	if double {
		m.last = click{}
	}
	return double
}

func (m *Model) clickButton(btns []headerButton, header Rect, x int) {
	for i, r := range buttonRects(btns, header) {
		if r.Contains(x, header.Y) && btns[i].enabled {
			btns[i].run()
			return
		}
	}
}

// headerButton is a clickable affordance at the right of a pane header.
type headerButton struct {
	label   string
	enabled bool
	run     func()
}

func fieldButtons(e *editor.Editor) []headerButton {
	return []headerButton{
		{label: "[+]", enabled: e.AddEnabled(), run: e.RequestAdd},
		{label: "[-]", enabled: e.DeleteEnabled(), run: e.RequestDelete},
	}
}

func editorButtons(e *editor.Editor) []headerButton {
	return []headerButton{
		{label: "[Load]", enabled: e.LoadEnabled(), run: e.Load},
		{label: "[Save]", enabled: e.SaveEnabled(), run: e.Save},
	}
}

// buttonRects places btns right-aligned in header, one space apart.
func buttonRects(btns []headerButton, header Rect) []Rect {
	rects := make([]Rect, len(btns))
	x := header.X + header.W
	for i := len(btns) - 1; i >= 0; i-- {
		w := ansi.StringWidth(btns[i].label)
		x -= w
		rects[i] = Rect{X: x, Y: header.Y, W: w, H: 1}
		x--
	}
	return rects
}

// View renders the window.
func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.KeyboardEnhancements.ReportEventTypes = true
	return v
}

func (m *Model) render() string {
	st := m.styles
	l := m.layout.Calculate()
	e := m.Editor

	pathLabel := PathBarLabel
	if m.Focus == FocusPathBar {
		pathLabel = st.enabled.Render(PathBarLabel)
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderPane(l.ChildKeys, "Child keys", nil, FocusChildKeys,
			e.ChildKeys.View(l.ChildKeys.Body.W, l.ChildKeys.Body.H, m.Focus == FocusChildKeys)),
		m.renderPane(l.Fields, "Fields", fieldButtons(e), FocusFields,
			e.Fields.View(l.Fields.Body.W, l.Fields.Body.H, m.Focus == FocusFields)),
		m.renderPane(l.Editor, e.FieldEditorTitle(), editorButtons(e), FocusEditor, m.editorView(l.Editor.Body)),
	)

	screen := strings.Join([]string{
		m.Menu.View(l.MenuBar.W, m.Title, st),
		pathLabel + e.PathBar.View(l.PathBar.W),
		panes,
		st.status.Render(fitLine(e.Status(), l.Status.W)),
		st.footer.Render(fitLine(m.footerText(), l.Footer.W)),
	}, "\n")

	for _, d := range m.Menu.dropDowns(st) {
		screen = placeOverlay(screen, d.view, d.rect.X, d.rect.Y)
	}
	if box := m.Dialogs.View(l.MenuBar.W, st); box != "" {
		x := max((m.WinWidth-lipgloss.Width(box))/2, 0)
		y := max((m.WinHeight-lipgloss.Height(box))/2, 0)
		screen = placeOverlay(screen, box, x, y)
	}
	return screen
}

func (m *Model) editorView(body Rect) string {
	fe := m.Editor.FieldEditor()
	if fe == nil {
		return block("", body.W, body.H)
	}
	return block(fe.View(body.W, body.H, m.Focus == FocusEditor), body.W, body.H)
}

func (m *Model) renderPane(p Pane, title string, btns []headerButton, f Focus, body string) string {
	st := m.styles
	var right []string
	for _, b := range btns {
		if b.enabled {
			right = append(right, st.enabled.Render(b.label))
		} else {
			right = append(right, st.disabled.Render(b.label))
		}
	}
	buttons := strings.Join(right, " ")
	titleW := max(p.Header.W-ansi.StringWidth(buttons)-1, 0)
	header := st.title.Render(fitLine(title, titleW))
	if buttons != "" {
		header += " " + buttons
	}
	content := block(header, p.Header.W, p.Header.H) + "\n" + block(body, p.Body.W, p.Body.H)
	style := st.pane
	if m.Focus == f {
		style = st.paneFocus
	}
	return style.Render(content)
}

func (m *Model) footerText() string {
	switch {
	case m.Dialogs.Active():
		return "enter confirm • esc cancel • tab next"
	case m.Menu.Active():
		return "←/→ menus • ↑/↓ items • enter select • esc close"
	}
	hints := []string{"tab focus", "f10 menu"}
	switch m.Focus {
	case FocusChildKeys:
		hints = append(hints, "enter open", "backspace parent")
	case FocusFields:
		hints = append(hints, "a add", "d delete", "enter edit")
	case FocusEditor:
		hints = append(hints, "ctrl+s save", "ctrl+r load", "esc fields")
	case FocusPathBar:
		hints = append(hints, "type a key path")
	}
	return strings.Join(append(hints, "ctrl+q quit"), " • ")
}
