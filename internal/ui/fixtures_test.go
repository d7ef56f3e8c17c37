package ui

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/hivedit/internal/config"
	"github.com/oakwood-commons/hivedit/internal/editor"
	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/store/memstore"
)

const (
	hkcu     = `HKEY_CURRENT_USER`
	env      = `HKEY_CURRENT_USER\Environment`
	software = `HKEY_CURRENT_USER\Software`
)

// testModel creates a Model over a small in-memory registry.
func testModel(t *testing.T) (*Model, *memstore.Backend) {
	t.Helper()
	b := memstore.New()
	require.NoError(t, b.Set(env, "Path", store.StringValue(store.TypeExpandString, `C:\a;C:\b`)))
	require.NoError(t, b.Set(env, "temp", store.StringValue(store.TypeString, `C:\tmp`)))
	require.NoError(t, b.CreateKey(software+`\Alpha`))

	uiCfg, err := config.DefaultUI()
	require.NoError(t, err)
	menuCfg, err := config.DefaultMenu()
	require.NoError(t, err)

	dialogs := NewDialogs(logr.Discard())
	frame, err := Frame(uiCfg, true, logr.Discard())
	require.NoError(t, err)
	e, err := editor.New(store.New(b), editor.Options{Dialogs: dialogs, Frame: frame, Log: logr.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	tree, err := e.BuildMenu(menuCfg)
	require.NoError(t, err)

	m, err := NewModel(Options{Editor: e, Dialogs: dialogs, Menu: tree, Config: uiCfg, NoColor: true, Log: logr.Discard()})
	require.NoError(t, err)
	clock := time.Unix(0, 0)
	m.now = func() time.Time { return clock }
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, b
}

func key(code rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: code} }

func char(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func ctrl(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl} }

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(char(r))
	}
}

func fieldNames(m *Model) []string {
	var names []string
	for _, f := range m.Editor.Fields.Items() {
		names = append(names, f.Name())
	}
	return names
}
