package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/store/diskstore"
)

// storeChangedMsg carries one change from the store watcher. ok is false
// once the watcher has stopped.
type storeChangedMsg struct {
	change diskstore.Change
	ok     bool
}

// waitForChange blocks on the next change. A nil channel means no watcher.
func waitForChange(changes <-chan diskstore.Change) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-changes
		return storeChangedMsg{change: c, ok: ok}
	}
}

// affects reports whether a change at changed can alter what is shown for
// the key at current: the key itself, its children, or an ancestor.
func affects(current, changed string) bool {
	if changed == "" {
		return true
	}
	cur, chg := strings.ToLower(current), strings.ToLower(changed)
	if cur == chg || cur == store.Root || chg == store.Root {
		return true
	}
	sep := store.Sep
	return strings.HasPrefix(chg, cur+sep) || strings.HasPrefix(cur, chg+sep)
}
