package textentry

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/hivedit/internal/eventor"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func noDigits(s string) bool {
	return !strings.ContainsAny(s, "0123456789")
}

type seen struct {
	name    string
	text    string
	display string
	arg     any
}

func record(t *testing.T, e *Entry) *[]seen {
	t.Helper()
	var got []seen
	h := eventor.Func(func(arg any) {
		ev := arg.(eventor.Event)
		got = append(got, seen{name: ev.Name, text: e.Text(), display: e.Display(), arg: ev.Arg})
	})
	require.NoError(t, e.Subscribe(eventor.All, h))
	return &got
}

func TestSetTextAnnounces(t *testing.T) {
	e := New("a", nil, logr.Discard())
	got := record(t, e)

	require.NoError(t, e.SetText("b", WithNotifyArg("why")))
	assert.Equal(t, "b", e.Text())
	assert.Equal(t, "b", e.Display())
	assert.Equal(t, []seen{
		{name: TextChangeSoon, text: "a", display: "a", arg: "why"},
		{name: TextChangeDone, text: "b", display: "b", arg: "why"},
	}, *got)
}

func TestSetTextRejectedByValidator(t *testing.T) {
	e := New("abc", noDigits, logr.Discard())
	got := record(t, e)
	assert.ErrorIs(t, e.SetText("a1"), ErrInvalid)
	assert.Equal(t, "abc", e.Text())
	assert.Empty(t, *got)
}

func TestSetTextWithoutNotify(t *testing.T) {
	e := New("", nil, logr.Discard())
	got := record(t, e)
	require.NoError(t, e.SetText("x", WithoutNotify()))
	assert.Equal(t, "x", e.Text())
	assert.Empty(t, *got)
}

func TestSetTextReentrant(t *testing.T) {
	e := New("", nil, logr.Discard())
	var nested error
	require.NoError(t, e.Subscribe(TextChangeDone, eventor.Func(func(any) {
		nested = e.SetText("inner")
	})))
	require.NoError(t, e.SetText("outer"))
	assert.ErrorIs(t, nested, ErrChanging)
	assert.Equal(t, "outer", e.Text())
	assert.False(t, e.Changing())
}

func TestSetTextInconsistentDisplay(t *testing.T) {
	e := New("ab", nil, logr.Discard())
	e.SetCharLimit(3)
	err := e.SetText("abcdef")
	assert.ErrorIs(t, err, ErrInconsistent)
	assert.Equal(t, "ab", e.Text())
	assert.Equal(t, "ab", e.Display())
}

func TestKeystrokeAnnouncesBeforeDisplayCommit(t *testing.T) {
	e := New("ab", noDigits, logr.Discard())
	e.Focus()
	got := record(t, e)

	_, err := e.Update(key('c'))
	require.NoError(t, err)
	assert.Equal(t, "abc", e.Text())
	assert.Equal(t, "abc", e.Display())
	assert.Equal(t, []seen{
		{name: TextChangeSoon, text: "ab", display: "ab"},
		{name: TextChangeDone, text: "abc", display: "ab"},
	}, *got)
}

func TestKeystrokeRejected(t *testing.T) {
	e := New("ab", noDigits, logr.Discard())
	e.Focus()
	got := record(t, e)

	_, err := e.Update(key('7'))
	require.NoError(t, err)
	assert.Equal(t, "ab", e.Text())
	assert.Equal(t, "ab", e.Display())
	assert.Empty(t, *got)

	// still editable afterwards
	_, err = e.Update(key('c'))
	require.NoError(t, err)
	assert.Equal(t, "abc", e.Display())
}

func TestPanickingValidatorRejects(t *testing.T) {
	e := New("", func(s string) bool {
		if s == "boom" {
			panic("validator failure")
		}
		return true
	}, logr.Discard())
	assert.ErrorIs(t, e.SetText("boom"), ErrInvalid)
	assert.NoError(t, e.SetText("fine"))
}

func TestDisabledIgnoresKeys(t *testing.T) {
	e := New("ab", nil, logr.Discard())
	e.Focus()
	e.SetEnabled(false)
	_, err := e.Update(key('c'))
	require.NoError(t, err)
	assert.Equal(t, "ab", e.Display())
	assert.False(t, e.Enabled())
	require.NoError(t, e.SetText("set works"))
	assert.Equal(t, "set works", e.Text())
}

func TestViewRendersValue(t *testing.T) {
	e := New(`HKEY_USERS`, nil, logr.Discard())
	e.SetInvalid(true)
	assert.True(t, e.Invalid())
	assert.Contains(t, e.View(30), "HKEY_USERS")
}
