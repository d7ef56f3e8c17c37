package ui

import (
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/hivedit/internal/config"
)

func TestThemeFromConfigOverridesColors(t *testing.T) {
	th := ThemeFromConfig(config.ThemeConfig{Accent: "201", BorderStyle: "ROUND"})
	assert.Equal(t, lipgloss.Color("201"), th.Accent)
	assert.Equal(t, fallbackDefaultTheme().Foreground, th.Foreground)
	assert.Equal(t, "rounded", th.BorderStyle)
}

func TestNormalizeBorderStyle(t *testing.T) {
	tests := map[string]string{
		"":        "normal",
		"square":  "normal",
		"Rounded": "rounded",
		"bogus":   "normal",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeBorderStyle(in), in)
	}
}

func TestDefaultThemesBuild(t *testing.T) {
	cfg, err := config.DefaultUI()
	require.NoError(t, err)
	for name, tc := range cfg.Themes {
		th := ThemeFromConfig(tc)
		assert.NotNil(t, th.SelectedBG, name)
	}
}

func TestWidgetStylesNoColor(t *testing.T) {
	ws := fallbackDefaultTheme().WidgetStyles(true)
	assert.True(t, ws.Selected.GetReverse())
}

func TestFrameUnknownTheme(t *testing.T) {
	cfg, err := config.DefaultUI()
	require.NoError(t, err)
	cfg.Theme.Default = "missing"
	_, err = Frame(cfg, false, discard())
	assert.ErrorIs(t, err, config.ErrUnknownTheme)
}
