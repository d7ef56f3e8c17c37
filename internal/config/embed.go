package config

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed defaults/menu.yaml
	embeddedMenu []byte

	//go:embed defaults/ui.yaml
	embeddedUI []byte

	//go:embed defaults/field_editor.yaml
	embeddedFieldEditor []byte
)

// DefaultMenuYAML returns a copy of the embedded default menu document.
func DefaultMenuYAML() []byte { return append([]byte(nil), embeddedMenu...) }

// DefaultUIYAML returns a copy of the embedded default UI document.
func DefaultUIYAML() []byte { return append([]byte(nil), embeddedUI...) }

// DefaultFieldEditorYAML returns a copy of the embedded default field editor document.
func DefaultFieldEditorYAML() []byte { return append([]byte(nil), embeddedFieldEditor...) }

var (
	defaultsOnce sync.Once
	defaultMenu  MenuConfig
	defaultUI    UIConfig
	defaultRules FieldEditorConfig
	defaultsErr  error
)

func parseDefaults() error {
	defaultsOnce.Do(func() {
		if err := yaml.Unmarshal(embeddedMenu, &defaultMenu); err != nil {
			defaultsErr = fmt.Errorf("decode embedded menu config: %w", err)
			return
		}
		if err := yaml.Unmarshal(embeddedUI, &defaultUI); err != nil {
			defaultsErr = fmt.Errorf("decode embedded ui config: %w", err)
			return
		}
		if err := yaml.Unmarshal(embeddedFieldEditor, &defaultRules); err != nil {
			defaultsErr = fmt.Errorf("decode embedded field editor config: %w", err)
		}
	})
	return defaultsErr
}

// DefaultMenu returns the parsed embedded menu config.
func DefaultMenu() (MenuConfig, error) {
	if err := parseDefaults(); err != nil {
		return MenuConfig{}, err
	}
	c := defaultMenu
	c.Items = append([]MenuItem(nil), defaultMenu.Items...)
	return c, nil
}

// DefaultUI returns the parsed embedded UI config.
func DefaultUI() (UIConfig, error) {
	if err := parseDefaults(); err != nil {
		return UIConfig{}, err
	}
	c := defaultUI
	c.Themes = make(map[string]ThemeConfig, len(defaultUI.Themes))
	for name, th := range defaultUI.Themes {
		c.Themes[name] = th
	}
	return c, nil
}

// DefaultFieldEditor returns the parsed embedded field editor config.
func DefaultFieldEditor() (FieldEditorConfig, error) {
	if err := parseDefaults(); err != nil {
		return FieldEditorConfig{}, err
	}
	return FieldEditorConfig{Rules: append([]FieldEditorRule(nil), defaultRules.Rules...)}, nil
}
