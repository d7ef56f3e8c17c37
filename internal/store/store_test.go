package store_test

import (
	"errors"
	"testing"

	"github.com/go-logr/zapr"
	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/store/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newStore(t *testing.T) (*store.Store, *memstore.Backend) {
	t.Helper()
	b := memstore.New()
	require.NoError(t, b.Set(`HKEY_CURRENT_USER\Environment`, "PATH", store.StringValue(store.TypeExpandString, `C:\bin`)))
	require.NoError(t, b.Set(`HKEY_CURRENT_USER\Environment`, "TEMP", store.StringValue(store.TypeString, `C:\tmp`)))
	require.NoError(t, b.CreateKey(`HKEY_CURRENT_USER\Environment\Sub`))
	return store.New(b), b
}

func TestOpenRoot(t *testing.T) {
	s, _ := newStore(t)
	k, err := s.Open(store.Root, store.AccessAll)
	require.NoError(t, err)
	assert.True(t, k.IsRoot())

	names, err := k.ChildNames()
	require.NoError(t, err)
	assert.Equal(t, store.Hives, names)

	fields, err := k.Fields()
	require.NoError(t, err)
	assert.Empty(t, fields)

	_, err = k.ReadField("x")
	assert.ErrorIs(t, err, store.ErrNoFields)
	assert.NoError(t, k.Close())
	assert.NoError(t, k.Close())
}

func TestOpenErrors(t *testing.T) {
	s, b := newStore(t)
	tests := []struct {
		name string
		path string
		want error
	}{
		{"unknown hive", `HKEY_NOPE\x`, store.ErrInvalidPath},
		{"empty segment", `HKEY_USERS\\x`, store.ErrInvalidPath},
		{"trailing separator", `HKEY_USERS\`, store.ErrInvalidPath},
		{"missing key", `HKEY_USERS\missing`, store.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Open(tt.path, store.AccessRead)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var pe *store.PathError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.path, pe.Path)
		})
	}

	b.SetReadOnly(`HKEY_CURRENT_USER\Environment`, true)
	_, err := s.Open(`HKEY_CURRENT_USER\Environment`, store.AccessAll)
	assert.ErrorIs(t, err, store.ErrPermission)
	assert.True(t, s.Exists(`HKEY_CURRENT_USER\Environment`))
}

func TestExistsAndChildNames(t *testing.T) {
	s, _ := newStore(t)
	assert.True(t, s.Exists(store.Root))
	assert.True(t, s.Exists(`HKEY_CURRENT_USER\Environment`))
	assert.False(t, s.Exists(`HKEY_CURRENT_USER\Missing`))
	assert.False(t, s.Exists(`NOT_A_HIVE`))

	names, err := s.ChildNames(store.Root)
	require.NoError(t, err)
	assert.Len(t, names, 5)

	names, err = s.ChildNames(`HKEY_CURRENT_USER\Environment`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sub"}, names)

	_, err = s.ChildNames(`HKEY_CURRENT_USER\Missing`)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestParentPath(t *testing.T) {
	tests := map[string]string{
		store.Root:                        store.Root,
		"HKEY_USERS":                      store.Root,
		`HKEY_USERS\a`:                    "HKEY_USERS",
		`HKEY_CURRENT_USER\Environment\x`: `HKEY_CURRENT_USER\Environment`,
	}
	for in, want := range tests {
		assert.Equal(t, want, store.ParentPath(in), in)
	}
}

func TestSplitFieldPointer(t *testing.T) {
	key, field, ok := store.SplitFieldPointer(`HKEY_CURRENT_USER\Environment->PATH`)
	assert.True(t, ok)
	assert.Equal(t, `HKEY_CURRENT_USER\Environment`, key)
	assert.Equal(t, "PATH", field)

	key, field, ok = store.SplitFieldPointer(`HKEY_USERS`)
	assert.False(t, ok)
	assert.Equal(t, "HKEY_USERS", key)
	assert.Empty(t, field)
}

func TestFieldsReadWriteDelete(t *testing.T) {
	s, b := newStore(t)
	k, err := s.Open(`HKEY_CURRENT_USER\Environment`, store.AccessAll)
	require.NoError(t, err)
	defer k.Close()

	fields, err := k.Fields()
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "PATH", fields[0].Name())
	assert.Equal(t, store.TypeExpandString, fields[0].Type())

	v, err := fields[0].Data()
	require.NoError(t, err)
	assert.Equal(t, `C:\bin`, v.String)

	require.NoError(t, fields[0].SetData(`C:\bin;D:\bin`))
	assert.Equal(t, 1, b.Broadcasts())
	v, err = fields[0].Data()
	require.NoError(t, err)
	assert.Equal(t, `C:\bin;D:\bin`, v.String, "data is read from the store on every call")

	require.NoError(t, fields[1].Delete())
	assert.Equal(t, 2, b.Broadcasts())
	_, err = fields[1].Data()
	assert.ErrorIs(t, err, store.ErrNotFound)

	f, err := k.Field("path")
	require.NoError(t, err)
	assert.Equal(t, "PATH", f.Name())
}

func TestSetDataRejectsNonStringTypes(t *testing.T) {
	s, b := newStore(t)
	require.NoError(t, b.Set(`HKEY_USERS\n`, "count", store.Value{Type: store.TypeDWord, Integer: 1}))
	k, err := s.Open(`HKEY_USERS\n`, store.AccessAll)
	require.NoError(t, err)
	f, err := k.Field("count")
	require.NoError(t, err)
	assert.ErrorIs(t, f.SetData("2"), store.ErrInvalidType)
	assert.Zero(t, b.Broadcasts())
}

func TestBroadcastFailureIsSwallowed(t *testing.T) {
	s, b := newStore(t)
	b.FailBroadcast(errors.New("hung"))
	k, err := s.Open(`HKEY_CURRENT_USER\Environment`, store.AccessAll)
	require.NoError(t, err)
	assert.NoError(t, k.WriteField("NEW", store.StringValue(store.TypeString, "v")))
	assert.Equal(t, 1, b.Broadcasts())
}

func TestFailedWriteDoesNotBroadcast(t *testing.T) {
	s, b := newStore(t)
	k, err := s.Open(`HKEY_CURRENT_USER\Environment`, store.AccessRead)
	require.NoError(t, err)
	err = k.WriteField("x", store.StringValue(store.TypeString, "y"))
	assert.ErrorIs(t, err, store.ErrPermission)
	assert.Zero(t, b.Broadcasts())
}

func TestCloseTwice(t *testing.T) {
	s, _ := newStore(t)
	k, err := s.Open(`HKEY_CURRENT_USER\Environment`, store.AccessRead)
	require.NoError(t, err)
	require.NoError(t, k.Close())
	assert.ErrorIs(t, k.Close(), store.ErrAlreadyClosed)
	_, err = k.Fields()
	assert.ErrorIs(t, err, store.ErrClosed)
	_, err = k.ChildNames()
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestFieldType(t *testing.T) {
	assert.Equal(t, "REG_SZ", store.TypeString.String())
	assert.Equal(t, "REG_99", store.FieldType(99).String())
	for _, in := range []string{"REG_EXPAND_SZ", "expand_sz", "2"} {
		got, err := store.ParseFieldType(in)
		require.NoError(t, err, in)
		assert.Equal(t, store.TypeExpandString, got, in)
	}
	_, err := store.ParseFieldType("bogus")
	assert.ErrorIs(t, err, store.ErrInvalidType)
}

func TestValueText(t *testing.T) {
	assert.Equal(t, "a\nb", store.Value{Type: store.TypeMultiString, Strings: []string{"a", "b"}}.Text())
	assert.Equal(t, "0x2a (42)", store.Value{Type: store.TypeDWord, Integer: 42}.Text())
	assert.Equal(t, "de ad", store.Value{Type: store.TypeBinary, Binary: []byte{0xde, 0xad}}.Text())
	assert.ErrorIs(t, store.Value{Type: store.TypeDWord, Integer: 1 << 40}.Validate(), store.ErrInvalidType)
}

// openOnly hides the optional interfaces of the wrapped backend.
type openOnly struct{ store.Backend }

func TestCreateKey(t *testing.T) {
	s, b := newStore(t)
	require.NoError(t, s.CreateKey(`HKEY_CURRENT_USER\Software\New\Deep`))
	assert.True(t, s.Exists(`HKEY_CURRENT_USER\Software\New`))
	assert.True(t, s.Exists(`HKEY_CURRENT_USER\Software\New\Deep`))
	assert.Equal(t, 1, b.Broadcasts())

	require.NoError(t, s.CreateKey(`HKEY_CURRENT_USER\Software\New`))
	require.NoError(t, s.CreateKey(store.Root))
	assert.ErrorIs(t, s.CreateKey(`HKEY_NOWHERE\X`), store.ErrInvalidPath)

	err := store.New(openOnly{b}).CreateKey(`HKEY_CURRENT_USER\Other`)
	assert.ErrorIs(t, err, store.ErrUnsupported)
	var pe *store.PathError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "create", pe.Op)
	assert.False(t, s.Exists(`HKEY_CURRENT_USER\Other`))
}

func TestExistsLogsCloseFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := memstore.New()
	require.NoError(t, b.CreateKey(`HKEY_CURRENT_USER\Environment`))
	b.FailClose(errors.New("handle leaked"))
	s := store.New(b, store.WithLogger(zapr.NewLogger(zap.New(core))))

	assert.True(t, s.Exists(`HKEY_CURRENT_USER\Environment`))
	entries := logs.FilterMessage("close key failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, `HKEY_CURRENT_USER\Environment`, entries[0].ContextMap()["path"])
	assert.Contains(t, entries[0].ContextMap()["error"], "handle leaked")
}
