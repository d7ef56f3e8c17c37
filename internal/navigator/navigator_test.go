package navigator

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/oakwood-commons/hivedit/internal/eventor"
	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/store/memstore"
)

func newNavigator(t *testing.T) *Navigator {
	t.Helper()
	b := memstore.New()
	require.NoError(t, b.CreateKey(`HKEY_CURRENT_USER\Environment`))
	require.NoError(t, b.CreateKey(`HKEY_CURRENT_USER\Software`))
	return New(store.New(b), store.Root, logr.Discard())
}

func TestGoToNotifiesSoonThenDone(t *testing.T) {
	n := newNavigator(t)
	var seen []string
	require.NoError(t, n.Subscribe(PathChangeSoon, eventor.Func(func(arg any) {
		seen = append(seen, "soon:"+arg.(*Navigator).Path())
	})))
	require.NoError(t, n.Subscribe(PathChangeDone, eventor.Func(func(arg any) {
		seen = append(seen, "done:"+arg.(*Navigator).Path())
	})))

	got, err := n.GoTo("HKEY_CURRENT_USER", true)
	require.NoError(t, err)
	assert.Equal(t, "HKEY_CURRENT_USER", got)
	assert.Equal(t, []string{"soon:", "done:HKEY_CURRENT_USER"}, seen)
}

func TestCheckedGoToMissingPath(t *testing.T) {
	n := newNavigator(t)
	calls := 0
	require.NoError(t, n.Subscribe(eventor.All, eventor.Func(func(any) { calls++ })))

	_, err := n.GoTo(`HKEY_CURRENT_USER\Missing`, true)
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, store.Root, n.Path())
	assert.Zero(t, calls)

	// unchecked navigation always moves
	got, err := n.GoTo(`HKEY_CURRENT_USER\Missing`, false)
	require.NoError(t, err)
	assert.Equal(t, `HKEY_CURRENT_USER\Missing`, got)
	assert.Equal(t, 2, calls)
}

func TestChildAndParent(t *testing.T) {
	n := newNavigator(t)
	assert.True(t, n.IsRoot())
	assert.Equal(t, "HKEY_USERS", n.ChildPath("HKEY_USERS"))

	_, err := n.GoChild("HKEY_CURRENT_USER", true)
	require.NoError(t, err)
	assert.Equal(t, `HKEY_CURRENT_USER\Environment`, n.ChildPath("Environment"))

	names, err := n.ChildNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Environment", "Software"}, names)

	_, err = n.GoChild("Environment", true)
	require.NoError(t, err)
	assert.Equal(t, "HKEY_CURRENT_USER", n.ParentPath())

	_, err = n.GoParent(true)
	require.NoError(t, err)
	assert.Equal(t, "HKEY_CURRENT_USER", n.Path())
	_, err = n.GoParent(true)
	require.NoError(t, err)
	assert.True(t, n.IsRoot())
	_, err = n.GoParent(true)
	require.NoError(t, err)
	assert.True(t, n.IsRoot())
}

func TestReentrantNavigationIsRejected(t *testing.T) {
	n := newNavigator(t)
	var nested error
	require.NoError(t, n.Subscribe(PathChangeDone, eventor.Func(func(any) {
		_, nested = n.GoRoot(false)
	})))
	_, err := n.GoTo("HKEY_USERS", false)
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrChanging)
	assert.Equal(t, "HKEY_USERS", n.Path())
	assert.False(t, n.Changing())
}

func TestKeyOpensActivePath(t *testing.T) {
	n := newNavigator(t)
	k, err := n.Key(store.AccessRead)
	require.NoError(t, err)
	assert.True(t, k.IsRoot())

	_, _ = n.GoTo(`HKEY_CURRENT_USER\Missing`, false)
	_, err = n.Key(store.AccessRead)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCheckedGoToLogsCloseFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := memstore.New()
	require.NoError(t, b.CreateKey(`HKEY_CURRENT_USER\Environment`))
	n := New(store.New(b), store.Root, zapr.NewLogger(zap.New(core)))
	b.FailClose(errors.New("handle leaked"))

	path, err := n.GoTo(`HKEY_CURRENT_USER\Environment`, true)
	require.NoError(t, err)
	assert.Equal(t, `HKEY_CURRENT_USER\Environment`, path)
	entries := logs.FilterMessage("close key failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, `HKEY_CURRENT_USER\Environment`, entries[0].ContextMap()["path"])
}
