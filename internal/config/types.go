// Package config holds the menu, UI and field editor documents and their
// embedded defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/hivedit/internal/fieldeditor"
	"github.com/oakwood-commons/hivedit/internal/store"
)

var (
	// ErrInvalidMenuItem is returned for a menu item missing its parent or id, or with an unknown type.
	ErrInvalidMenuItem = errors.New("invalid menu item")

	// ErrUnknownTheme is returned when the selected theme is not defined.
	ErrUnknownTheme = errors.New("unknown theme")
)

// Menu item types.
const (
	ItemMenu      = "menu"
	ItemCommand   = "command"
	ItemSeparator = "separator"
)

// MenuConfig is the menu bar definition.
type MenuConfig struct {
	Separator string     `yaml:"separator,omitempty" toml:"separator,omitempty"`
	Items     []MenuItem `yaml:"items" toml:"items"`
}

// MenuItem is one entry of the menu bar definition.
type MenuItem struct {
	Parent   string  `yaml:"parent" toml:"parent"`
	ID       string  `yaml:"id" toml:"id"`
	Type     string  `yaml:"type,omitempty" toml:"type,omitempty"`
	Key      *string `yaml:"key,omitempty" toml:"key,omitempty"`
	Label    string  `yaml:"label,omitempty" toml:"label,omitempty"`
	IDIsFull bool    `yaml:"id_is_full,omitempty" toml:"id_is_full,omitempty"`
}

// UnmarshalYAML accepts a bare list of items as well as the mapping form.
func (c *MenuConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return value.Decode(&c.Items)
	}
	type plain MenuConfig
	return value.Decode((*plain)(c))
}

// Kind returns the item type, defaulting to command.
func (m MenuItem) Kind() string {
	if m.Type == "" {
		return ItemCommand
	}
	return m.Type
}

// KeyPath returns the path a command opens, which defaults to its id.
func (m MenuItem) KeyPath() string {
	if m.Key == nil {
		return m.ID
	}
	return *m.Key
}

// Validate checks the fields every item needs.
func (m MenuItem) Validate() error {
	if m.Parent == "" || m.ID == "" {
		return fmt.Errorf("%w: parent and id are required (parent %q, id %q)", ErrInvalidMenuItem, m.Parent, m.ID)
	}
	switch m.Kind() {
	case ItemMenu, ItemCommand, ItemSeparator:
		return nil
	}
	return fmt.Errorf("%w: %q has type %q", ErrInvalidMenuItem, m.ID, m.Type)
}

// Validate checks every item.
func (c MenuConfig) Validate() error {
	for i, item := range c.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// UIConfig is the look and layout of the terminal UI.
type UIConfig struct {
	Title    string                 `yaml:"title,omitempty" toml:"title,omitempty"`
	FileMenu *bool                  `yaml:"file_menu,omitempty" toml:"file_menu,omitempty"`
	Layout   LayoutConfig           `yaml:"layout" toml:"layout"`
	Theme    ThemeSelection         `yaml:"theme" toml:"theme"`
	Themes   map[string]ThemeConfig `yaml:"themes" toml:"themes"`
}

// ThemeSelection names the active theme.
type ThemeSelection struct {
	Default string `yaml:"default" toml:"default"`
}

// LayoutConfig holds the relative widths of the three panes.
type LayoutConfig struct {
	ChildKeys int `yaml:"child_keys,omitempty" toml:"child_keys,omitempty"`
	Fields    int `yaml:"fields,omitempty" toml:"fields,omitempty"`
	Editor    int `yaml:"editor,omitempty" toml:"editor,omitempty"`
}

// ColorValue stores a color token (ANSI number, hex or name).
type ColorValue string

// UnmarshalYAML accepts ints and strings and keeps the literal.
func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is a YAML-friendly theme (colors accept ints or strings).
type ThemeConfig struct {
	Accent      ColorValue `yaml:"accent,omitempty" toml:"accent,omitempty"`
	Foreground  ColorValue `yaml:"foreground,omitempty" toml:"foreground,omitempty"`
	Muted       ColorValue `yaml:"muted,omitempty" toml:"muted,omitempty"`
	SelectedFG  ColorValue `yaml:"selected_fg,omitempty" toml:"selected_fg,omitempty"`
	SelectedBG  ColorValue `yaml:"selected_bg,omitempty" toml:"selected_bg,omitempty"`
	BlurredFG   ColorValue `yaml:"blurred_fg,omitempty" toml:"blurred_fg,omitempty"`
	DisabledFG  ColorValue `yaml:"disabled_fg,omitempty" toml:"disabled_fg,omitempty"`
	InvalidFG   ColorValue `yaml:"invalid_fg,omitempty" toml:"invalid_fg,omitempty"`
	Border      ColorValue `yaml:"border,omitempty" toml:"border,omitempty"`
	BorderStyle string     `yaml:"border_style,omitempty" toml:"border_style,omitempty"`
	StatusFG    ColorValue `yaml:"status_fg,omitempty" toml:"status_fg,omitempty"`
	StatusBG    ColorValue `yaml:"status_bg,omitempty" toml:"status_bg,omitempty"`
	WarningFG   ColorValue `yaml:"warning_fg,omitempty" toml:"warning_fg,omitempty"`
	MenuFG      ColorValue `yaml:"menu_fg,omitempty" toml:"menu_fg,omitempty"`
	MenuBG      ColorValue `yaml:"menu_bg,omitempty" toml:"menu_bg,omitempty"`
}

// ActiveTheme returns the theme named by Theme.Default.
func (c UIConfig) ActiveTheme() (ThemeConfig, error) {
	name := strings.TrimSpace(c.Theme.Default)
	if th, ok := c.Themes[name]; ok {
		return th, nil
	}
	return ThemeConfig{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// ShowFileMenu reports whether a File menu with Exit is prepended to the menu bar.
func (c UIConfig) ShowFileMenu() bool {
	return c.FileMenu == nil || *c.FileMenu
}

// FieldEditorConfig lists the field editor rules in priority order.
type FieldEditorConfig struct {
	Rules []FieldEditorRule `yaml:"rules" toml:"rules"`
}

// FieldEditorRule is the document form of fieldeditor.Rule. A missing split
// defaults to ";"; an empty one disables splitting.
type FieldEditorRule struct {
	Name  string   `yaml:"name" toml:"name"`
	When  string   `yaml:"when,omitempty" toml:"when,omitempty"`
	Split *string  `yaml:"split,omitempty" toml:"split,omitempty"`
	Types []string `yaml:"types,omitempty" toml:"types,omitempty"`
}

// EditorRules converts the rules. A rule without types supports the string types.
func (c FieldEditorConfig) EditorRules() ([]fieldeditor.Rule, error) {
	out := make([]fieldeditor.Rule, 0, len(c.Rules))
	for i, r := range c.Rules {
		rule := fieldeditor.Rule{Name: r.Name, When: r.When, Split: ";", Types: fieldeditor.StringTypes}
		if rule.Name == "" {
			rule.Name = fmt.Sprintf("rule%d", i+1)
		}
		if r.Split != nil {
			rule.Split = *r.Split
		}
		if len(r.Types) > 0 {
			rule.Types = make([]store.FieldType, 0, len(r.Types))
			for _, s := range r.Types {
				t, err := store.ParseFieldType(s)
				if err != nil {
					return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
				}
				rule.Types = append(rule.Types, t)
			}
		}
		out = append(out, rule)
	}
	return out, nil
}
