package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Decode parses data as TOML when path ends in .toml and as YAML otherwise.
func Decode(path string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, v)
	default:
		return yaml.Unmarshal(data, v)
	}
}

func readFile(path string) ([]byte, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(expanded)
}

// LoadMenu returns the menu config in path, or the default when path is empty.
// A file replaces the default menu.
func LoadMenu(path string) (MenuConfig, error) {
	if path == "" {
		return DefaultMenu()
	}
	data, err := readFile(path)
	if err != nil {
		return MenuConfig{}, fmt.Errorf("read menu config: %w", err)
	}
	var cfg MenuConfig
	if err := Decode(path, data, &cfg); err != nil {
		return MenuConfig{}, fmt.Errorf("decode menu config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return MenuConfig{}, fmt.Errorf("menu config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadUI returns the default UI config merged with the one in path, if any.
func LoadUI(path string) (UIConfig, error) {
	cfg, err := DefaultUI()
	if err != nil {
		return UIConfig{}, err
	}
	if path != "" {
		data, err := readFile(path)
		if err != nil {
			return UIConfig{}, fmt.Errorf("read ui config: %w", err)
		}
		var over UIConfig
		if err := Decode(path, data, &over); err != nil {
			return UIConfig{}, fmt.Errorf("decode ui config %s: %w", path, err)
		}
		cfg = MergeUI(cfg, over)
	}
	if _, err := cfg.ActiveTheme(); err != nil {
		return UIConfig{}, err
	}
	return cfg, nil
}

// LoadFieldEditor returns the field editor rules in path, or the default when
// path is empty. A file replaces the default rules.
func LoadFieldEditor(path string) (FieldEditorConfig, error) {
	if path == "" {
		return DefaultFieldEditor()
	}
	data, err := readFile(path)
	if err != nil {
		return FieldEditorConfig{}, fmt.Errorf("read field editor config: %w", err)
	}
	var cfg FieldEditorConfig
	if err := Decode(path, data, &cfg); err != nil {
		return FieldEditorConfig{}, fmt.Errorf("decode field editor config %s: %w", path, err)
	}
	return cfg, nil
}

// MergeUI overlays the set fields of over on base. Themes merge colour by colour.
func MergeUI(base, over UIConfig) UIConfig {
	if over.Title != "" {
		base.Title = over.Title
	}
	if over.FileMenu != nil {
		base.FileMenu = over.FileMenu
	}
	if over.Layout.ChildKeys > 0 {
		base.Layout.ChildKeys = over.Layout.ChildKeys
	}
	if over.Layout.Fields > 0 {
		base.Layout.Fields = over.Layout.Fields
	}
	if over.Layout.Editor > 0 {
		base.Layout.Editor = over.Layout.Editor
	}
	if over.Theme.Default != "" {
		base.Theme.Default = over.Theme.Default
	}
	if len(over.Themes) > 0 {
		merged := make(map[string]ThemeConfig, len(base.Themes)+len(over.Themes))
		for name, th := range base.Themes {
			merged[name] = th
		}
		for name, th := range over.Themes {
			merged[name] = mergeThemeConfig(merged[name], th)
		}
		base.Themes = merged
	}
	return base
}

func mergeThemeConfig(base, over ThemeConfig) ThemeConfig {
	set := func(dst *ColorValue, v ColorValue) {
		if v != "" {
			*dst = v
		}
	}
	set(&base.Accent, over.Accent)
	set(&base.Foreground, over.Foreground)
	set(&base.Muted, over.Muted)
	set(&base.SelectedFG, over.SelectedFG)
	set(&base.SelectedBG, over.SelectedBG)
	set(&base.BlurredFG, over.BlurredFG)
	set(&base.DisabledFG, over.DisabledFG)
	set(&base.InvalidFG, over.InvalidFG)
	set(&base.Border, over.Border)
	set(&base.StatusFG, over.StatusFG)
	set(&base.StatusBG, over.StatusBG)
	set(&base.WarningFG, over.WarningFG)
	set(&base.MenuFG, over.MenuFG)
	set(&base.MenuBG, over.MenuBG)
	if over.BorderStyle != "" {
		base.BorderStyle = over.BorderStyle
	}
	return base
}
