package editor

import (
	"fmt"

	"github.com/oakwood-commons/hivedit/internal/config"
	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/widget/menutree"
)

// OpenPointer opens the key of a "KEY" or "KEY->FIELD" path and selects the
// field, matched case-insensitively, with focus.
func (e *Editor) OpenPointer(pointer string) bool {
	key, field, hasField := store.SplitFieldPointer(pointer)
	if !e.Open(key) {
		return false
	}
	if hasField {
		e.selectField(field, true)
	}
	return true
}

// BuildMenu creates a menu tree from cfg. Commands open their key path.
func (e *Editor) BuildMenu(cfg config.MenuConfig) (*menutree.Tree, error) {
	tree := menutree.New()
	if err := e.AddMenuItems(tree, cfg); err != nil {
		return nil, err
	}
	return tree, nil
}

// AddMenuItems adds the items of cfg to tree in order.
func (e *Editor) AddMenuItems(tree *menutree.Tree, cfg config.MenuConfig) error {
	sep := cfg.Separator
	if sep == "" {
		sep = menutree.DefaultSeparator
	}
	for i, item := range cfg.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("menu item %d: %w", i, err)
		}
		opts := []menutree.Option{menutree.WithSeparator(sep)}
		if item.IDIsFull {
			opts = append(opts, menutree.IDIsFull())
		}
		if item.Label != "" {
			opts = append(opts, menutree.WithLabel(item.Label))
		}

		var err error
		switch item.Kind() {
		case config.ItemMenu:
			_, err = tree.AddMenu(item.Parent, item.ID, opts...)
		case config.ItemSeparator:
			_, err = tree.AddSeparator(item.Parent, item.ID, opts...)
		default:
			pointer := item.KeyPath()
			_, err = tree.AddCommand(item.Parent, item.ID, func() { e.OpenPointer(pointer) }, opts...)
		}
		if err != nil {
			return fmt.Errorf("menu item %d %q: %w", i, item.ID, err)
		}
	}
	return nil
}
