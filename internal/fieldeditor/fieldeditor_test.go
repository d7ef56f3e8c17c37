package fieldeditor

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/hivedit/internal/cel"
	"github.com/oakwood-commons/hivedit/internal/store"
	"github.com/oakwood-commons/hivedit/internal/store/memstore"
	"github.com/oakwood-commons/hivedit/internal/widget"
)

var frame = Frame{Styles: widget.DefaultStyles(), Log: logr.Discard()}

func envKey(t *testing.T) *store.Key {
	t.Helper()
	b := memstore.New()
	require.NoError(t, b.CreateKey(`HKEY_CURRENT_USER\Environment`))
	require.NoError(t, b.Set(`HKEY_CURRENT_USER\Environment`, "Path", store.StringValue(store.TypeExpandString, `C:\a;C:\b`)))
	require.NoError(t, b.Set(`HKEY_CURRENT_USER\Environment`, "Count", store.Value{Type: store.TypeDWord, Integer: 3}))
	s := store.New(b)
	k, err := s.Open(`HKEY_CURRENT_USER\Environment`, store.AccessAll)
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })
	return k
}

func TestFilters(t *testing.T) {
	assert.Equal(t, "a\nb\n", SemicolonToNewline("a;b;"))
	assert.Equal(t, "a;b", NewlineToSemicolon("a\nb"))
	assert.Equal(t, "a;b", JoinLines("")("a;b"))
	assert.Equal(t, "a,b", SplitToLines("")("a,b"))
}

func TestDefaultEditorRoundTrip(t *testing.T) {
	k := envKey(t)
	path := store.NewField(k, "Path", store.TypeExpandString)

	ed := Default(path, nil, frame)
	require.NotNil(t, ed)
	assert.True(t, ed.Supports(path))
	assert.False(t, ed.Supports(store.NewField(k, "Count", store.TypeDWord)))
	assert.False(t, ed.Supports(nil))

	ed.SetData(`C:\a;C:\b`)
	assert.Equal(t, `C:\a;C:\b`, ed.Data())
	assert.Contains(t, ed.View(20, 3, false), `C:\a`)

	again := Default(nil, ed, frame)
	assert.Same(t, ed, again)
	assert.Nil(t, again.Field())
}

func TestEnableGatesInput(t *testing.T) {
	ed := NewFiltered(nil, nil, nil, frame)
	assert.True(t, ed.Enabled())
	ed.Enable(false)
	assert.False(t, ed.Enabled())
	assert.Nil(t, ed.Focus())
	assert.Nil(t, ed.Update(nil))
}

func TestRuleFactory(t *testing.T) {
	eval, err := cel.NewEvaluator()
	require.NoError(t, err)
	k := envKey(t)

	rules := []Rule{
		{Name: "pathext", When: `field.name.lowerAscii() == "pathext"`, Split: ";", Types: StringTypes},
		{Name: "lines", When: `field.type_name == "REG_EXPAND_SZ" && key.endsWith("Environment")`, Split: ";", Types: StringTypes},
		{Name: "plain", When: `field.type == 1`, Types: StringTypes},
	}
	factory, err := RuleFactory(eval, rules)
	require.NoError(t, err)

	path := store.NewField(k, "Path", store.TypeExpandString)
	ed := factory(path, nil, frame)
	filtered, ok := ed.(*Filtered)
	require.True(t, ok)
	assert.Equal(t, "lines", filtered.Rule())
	assert.True(t, ed.Supports(path))

	// same rule: the old editor is reused
	other := store.NewField(k, "PSModulePath", store.TypeExpandString)
	assert.Same(t, ed, factory(other, ed, frame))
	assert.Same(t, other, ed.Field())

	// different rule: a new editor
	plain := store.NewField(k, "Name", store.TypeString)
	ed2 := factory(plain, ed, frame)
	assert.NotSame(t, ed, ed2)
	assert.Equal(t, "plain", ed2.(*Filtered).Rule())
	ed2.SetData("a;b")
	assert.Equal(t, "a;b", ed2.Data())

	// no rule matches: nothing is supported
	count := store.NewField(k, "Count", store.TypeDWord)
	ed3 := factory(count, ed2, frame)
	assert.False(t, ed3.Supports(count))
}

func TestRuleFactoryRejectsBadRules(t *testing.T) {
	eval, err := cel.NewEvaluator()
	require.NoError(t, err)

	_, err = RuleFactory(eval, nil)
	assert.ErrorIs(t, err, ErrNoRules)

	_, err = RuleFactory(eval, []Rule{{Name: "broken", When: "field.name =="}})
	assert.ErrorContains(t, err, `"broken"`)

	factory, err := RuleFactory(eval, DefaultRules())
	require.NoError(t, err)
	ed := factory(nil, nil, frame)
	assert.Equal(t, "default", ed.(*Filtered).Rule())
}
