package cmd

import (
	"fmt"
	"io"

	"github.com/oakwood-commons/hivedit/internal/cel"
	"github.com/oakwood-commons/hivedit/internal/config"
	"github.com/oakwood-commons/hivedit/internal/fieldeditor"
	"github.com/oakwood-commons/hivedit/pkg/settings"
)

// editorConfig is everything the interactive editor is configured with.
type editorConfig struct {
	menu    config.MenuConfig
	ui      config.UIConfig
	factory fieldeditor.Factory
}

// loadEditorConfig reads the three config documents named in run, falling
// back to the embedded defaults.
func loadEditorConfig(run *settings.Run) (editorConfig, error) {
	menu, err := config.LoadMenu(run.MenuConfigPath)
	if err != nil {
		return editorConfig{}, err
	}
	uiCfg, err := config.LoadUI(run.UIConfigPath)
	if err != nil {
		return editorConfig{}, err
	}
	factory, err := loadFieldEditorFactory(run.FieldEditorConfigPath)
	if err != nil {
		return editorConfig{}, err
	}
	return editorConfig{menu: menu, ui: uiCfg, factory: factory}, nil
}

func loadFieldEditorFactory(path string) (fieldeditor.Factory, error) {
	feCfg, err := config.LoadFieldEditor(path)
	if err != nil {
		return nil, err
	}
	rules, err := feCfg.EditorRules()
	if err != nil {
		return nil, fmt.Errorf("field editor config: %w", err)
	}
	eval, err := cel.NewEvaluator()
	if err != nil {
		return nil, err
	}
	factory, err := fieldeditor.RuleFactory(eval, rules)
	if err != nil {
		return nil, fmt.Errorf("field editor config: %w", err)
	}
	return factory, nil
}

// dumpDefaults prints the embedded default documents that were asked for.
func (o *rootOptions) dumpDefaults(w io.Writer) error {
	docs := []struct {
		want bool
		data []byte
	}{
		{o.dumpMenu, config.DefaultMenuYAML()},
		{o.dumpUI, config.DefaultUIYAML()},
		{o.dumpFieldEditor, config.DefaultFieldEditorYAML()},
	}
	first := true
	for _, d := range docs {
		if !d.want {
			continue
		}
		if !first {
			if _, err := io.WriteString(w, "---\n"); err != nil {
				return err
			}
		}
		first = false
		if _, err := w.Write(d.data); err != nil {
			return err
		}
	}
	return nil
}
