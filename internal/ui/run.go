package ui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
)

// Run starts the Bubble Tea TUI and blocks until the user quits or ctx is
// cancelled. Extra ProgramOptions (e.g., custom IO) are passed to tea.NewProgram.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	prog := tea.NewProgram(m, progOpts...)
	if _, err := prog.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
