package ui

import (
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/hivedit/internal/config"
	"github.com/oakwood-commons/hivedit/internal/widget"
)

// Theme defines the colors used across the UI.
type Theme struct {
	Accent      color.Color // Titles and the active menu
	Foreground  color.Color // Normal text
	Muted       color.Color // Footer and placeholders
	SelectedFG  color.Color // Selected row foreground
	SelectedBG  color.Color // Selected row background
	BlurredFG   color.Color // Selected row of an unfocused pane
	DisabledFG  color.Color // Disabled widgets and affordances
	InvalidFG   color.Color // Path bar text that does not resolve
	Border      color.Color // Pane borders
	BorderStyle string      // normal|rounded
	StatusFG    color.Color
	StatusBG    color.Color
	WarningFG   color.Color // Warning dialogs
	MenuFG      color.Color
	MenuBG      color.Color
}

// fallbackDefaultTheme is used for colors a config leaves out.
func fallbackDefaultTheme() Theme {
	return Theme{
		Accent:      lipgloss.Color("81"),
		Foreground:  lipgloss.Color("252"),
		Muted:       lipgloss.Color("244"),
		SelectedFG:  lipgloss.Color("250"),
		SelectedBG:  lipgloss.Color("24"),
		BlurredFG:   lipgloss.Color("81"),
		DisabledFG:  lipgloss.Color("240"),
		InvalidFG:   lipgloss.Color("203"),
		Border:      lipgloss.Color("238"),
		BorderStyle: "rounded",
		StatusFG:    lipgloss.Color("81"),
		StatusBG:    lipgloss.Color("236"),
		WarningFG:   lipgloss.Color("203"),
		MenuFG:      lipgloss.Color("252"),
		MenuBG:      lipgloss.Color("236"),
	}
}

// ThemeFromConfig builds a Theme from a ThemeConfig, falling back to defaults when fields are empty.
func ThemeFromConfig(cfg config.ThemeConfig) Theme {
	th := fallbackDefaultTheme()
	set := func(val config.ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.Accent, &th.Accent)
	set(cfg.Foreground, &th.Foreground)
	set(cfg.Muted, &th.Muted)
	set(cfg.SelectedFG, &th.SelectedFG)
	set(cfg.SelectedBG, &th.SelectedBG)
	set(cfg.BlurredFG, &th.BlurredFG)
	set(cfg.DisabledFG, &th.DisabledFG)
	set(cfg.InvalidFG, &th.InvalidFG)
	set(cfg.Border, &th.Border)
	set(cfg.StatusFG, &th.StatusFG)
	set(cfg.StatusBG, &th.StatusBG)
	set(cfg.WarningFG, &th.WarningFG)
	set(cfg.MenuFG, &th.MenuFG)
	set(cfg.MenuBG, &th.MenuBG)
	if cfg.BorderStyle != "" {
		th.BorderStyle = cfg.BorderStyle
	}
	th.BorderStyle = normalizeBorderStyle(th.BorderStyle)
	return th
}

// WidgetStyles derives the widget styles. Without color only attributes are used.
func (th Theme) WidgetStyles(noColor bool) widget.Styles {
	if noColor {
		return widget.DefaultStyles()
	}
	return widget.Styles{
		Normal:          lipgloss.NewStyle().Foreground(th.Foreground),
		Selected:        lipgloss.NewStyle().Foreground(th.SelectedFG).Background(th.SelectedBG).Bold(true),
		SelectedBlurred: lipgloss.NewStyle().Foreground(th.BlurredFG).Underline(true),
		Disabled:        lipgloss.NewStyle().Foreground(th.DisabledFG),
		Invalid:         lipgloss.NewStyle().Foreground(th.InvalidFG),
		Placeholder:     lipgloss.NewStyle().Foreground(th.Muted).Italic(true),
	}
}

func normalizeBorderStyle(val string) string {
	v := strings.TrimSpace(strings.ToLower(val))
	switch v {
	case "", "normal", "square":
		return "normal"
	case "rounded", "round":
		return "rounded"
	default:
		return "normal"
	}
}

func borderForStyle(style string) lipgloss.Border {
	switch normalizeBorderStyle(style) {
	case "rounded":
		return lipgloss.RoundedBorder()
	default:
		return lipgloss.NormalBorder()
	}
}

// styles are the lipgloss styles of the UI chrome.
type styles struct {
	widget     widget.Styles
	pane       lipgloss.Style
	paneFocus  lipgloss.Style
	title      lipgloss.Style
	enabled    lipgloss.Style
	disabled   lipgloss.Style
	status     lipgloss.Style
	footer     lipgloss.Style
	menuBar    lipgloss.Style
	menuActive lipgloss.Style
	menuItem   lipgloss.Style
	dialog     lipgloss.Style
	warning    lipgloss.Style
}

func newStyles(th Theme, noColor bool) styles {
	border := borderForStyle(th.BorderStyle)
	s := styles{
		widget:     th.WidgetStyles(noColor),
		pane:       lipgloss.NewStyle().Border(border),
		paneFocus:  lipgloss.NewStyle().Border(lipgloss.ThickBorder()),
		title:      lipgloss.NewStyle().Bold(true),
		enabled:    lipgloss.NewStyle().Bold(true),
		disabled:   lipgloss.NewStyle().Faint(true),
		status:     lipgloss.NewStyle(),
		footer:     lipgloss.NewStyle().Faint(true),
		menuBar:    lipgloss.NewStyle(),
		menuActive: lipgloss.NewStyle().Reverse(true),
		menuItem:   lipgloss.NewStyle(),
		dialog:     lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 1),
		warning:    lipgloss.NewStyle().Bold(true),
	}
	if noColor {
		return s
	}
	s.pane = s.pane.BorderForeground(th.Border)
	s.paneFocus = lipgloss.NewStyle().Border(border).BorderForeground(th.Accent)
	s.title = s.title.Foreground(th.Accent)
	s.enabled = s.enabled.Foreground(th.Accent)
	s.disabled = lipgloss.NewStyle().Foreground(th.DisabledFG)
	s.status = s.status.Foreground(th.StatusFG).Background(th.StatusBG)
	s.footer = lipgloss.NewStyle().Foreground(th.Muted)
	s.menuBar = s.menuBar.Foreground(th.MenuFG).Background(th.MenuBG)
	s.menuActive = lipgloss.NewStyle().Foreground(th.SelectedFG).Background(th.SelectedBG).Bold(true)
	s.menuItem = s.menuItem.Foreground(th.MenuFG).Background(th.MenuBG)
	s.dialog = s.dialog.BorderForeground(th.Accent)
	s.warning = s.warning.Foreground(th.WarningFG)
	return s
}
