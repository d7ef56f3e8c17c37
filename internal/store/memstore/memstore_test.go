package memstore

import (
	"testing"

	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndLookupCaseInsensitive(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateKey(`HKEY_CURRENT_USER\Software\Foo`))
	h, err := b.OpenKey(`HKEY_CURRENT_USER\software\FOO`, store.AccessRead)
	require.NoError(t, err)
	require.NoError(t, h.Close())

	names, err := mustOpen(t, b, `HKEY_CURRENT_USER`).SubKeyNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Software"}, names)
}

func TestOpenMissing(t *testing.T) {
	b := New()
	_, err := b.OpenKey(`HKEY_CURRENT_USER\Nope`, store.AccessRead)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPermissions(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateKey(`HKEY_LOCAL_MACHINE\Locked`))
	b.SetReadOnly(`HKEY_LOCAL_MACHINE\Locked`, true)

	_, err := b.OpenKey(`HKEY_LOCAL_MACHINE\Locked`, store.AccessAll)
	assert.ErrorIs(t, err, store.ErrPermission)
	h := mustOpen(t, b, `HKEY_LOCAL_MACHINE\Locked`)
	assert.ErrorIs(t, h.WriteField("x", store.StringValue(store.TypeString, "y")), store.ErrPermission)

	b.SetDenied(`HKEY_LOCAL_MACHINE\Locked`, true)
	_, err = b.OpenKey(`HKEY_LOCAL_MACHINE\Locked`, store.AccessRead)
	assert.ErrorIs(t, err, store.ErrPermission)
}

func TestFieldsKeepInsertionOrder(t *testing.T) {
	b := New()
	require.NoError(t, b.Set(`HKEY_USERS\k`, "b", store.StringValue(store.TypeString, "1")))
	require.NoError(t, b.Set(`HKEY_USERS\k`, "a", store.StringValue(store.TypeString, "2")))
	require.NoError(t, b.Set(`HKEY_USERS\k`, "B", store.StringValue(store.TypeString, "3")))

	h := mustOpen(t, b, `HKEY_USERS\k`)
	name, _, err := h.EnumField(0)
	require.NoError(t, err)
	assert.Equal(t, "b", name)
	v, err := h.ReadField("b")
	require.NoError(t, err)
	assert.Equal(t, "3", v.String)
	_, _, err = h.EnumField(2)
	assert.ErrorIs(t, err, store.ErrNoMoreItems)
}

func TestDeleteKey(t *testing.T) {
	b := New()
	require.NoError(t, b.CreateKey(`HKEY_USERS\a\b`))
	require.NoError(t, b.DeleteKey(`HKEY_USERS\a`))
	_, err := b.OpenKey(`HKEY_USERS\a\b`, store.AccessRead)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, b.DeleteKey(`HKEY_USERS`), store.ErrNotFound)
}

func TestDemoSeed(t *testing.T) {
	s := store.New(NewDemo())
	assert.True(t, s.Exists(`HKEY_CURRENT_USER\Environment`))
	k, err := s.Open(`HKEY_CURRENT_USER\Software\hivedit`, store.AccessRead)
	require.NoError(t, err)
	defer k.Close()
	fields, err := k.Fields()
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, store.TypeDWord, fields[0].Type())
}

func mustOpen(t *testing.T, b *Backend, path string) store.Handle {
	t.Helper()
	h, err := b.OpenKey(path, store.AccessRead)
	require.NoError(t, err)
	return h
}
