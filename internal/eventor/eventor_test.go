package eventor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name string
	log  *[]string
	args []any
}

func (r *recorder) HandleEvent(arg any) {
	*r.log = append(*r.log, r.name)
	r.args = append(r.args, arg)
}

type valueHandler struct {
	fn func(any)
}

func (v valueHandler) HandleEvent(arg any) { v.fn(arg) }

func TestNotifyOrder(t *testing.T) {
	var log []string
	e := New("owner")
	a := &recorder{name: "a", log: &log}
	b := &recorder{name: "b", log: &log}
	all := &recorder{name: "all", log: &log}

	require.NoError(t, e.Subscribe(All, all))
	require.NoError(t, e.Subscribe("x", a))
	require.NoError(t, e.Subscribe("x", b))

	e.Notify("x", 42)
	assert.Equal(t, []string{"a", "b", "all"}, log)
	assert.Equal(t, []any{42}, a.args)
	assert.Equal(t, []any{42}, all.args)

	log = nil
	e.Notify("y", nil)
	assert.Equal(t, []string{"all"}, log)
}

func TestNotifyWithoutHandlersIsNoop(t *testing.T) {
	e := New(nil)
	assert.NotPanics(t, func() { e.Notify("nothing", 1) })
	var zero Eventor
	assert.NotPanics(t, func() { zero.Notify("nothing", 1) })
}

func TestSubscribeDuplicate(t *testing.T) {
	var log []string
	e := New(nil)
	h := &recorder{name: "h", log: &log}
	require.NoError(t, e.Subscribe("x", h))
	assert.ErrorIs(t, e.Subscribe("x", h), ErrDuplicateHandler)
	// same handler on another event is fine
	assert.NoError(t, e.Subscribe("y", h))
	assert.NoError(t, e.Subscribe(All, h))
}

func TestSubscribeRejectsBadHandlers(t *testing.T) {
	e := New(nil)
	assert.ErrorIs(t, e.Subscribe("x", nil), ErrNilHandler)
	err := e.Subscribe("x", valueHandler{fn: func(any) {}})
	assert.ErrorIs(t, err, ErrHandlerNotComparable)
}

func TestFuncHandlersHaveIdentity(t *testing.T) {
	e := New(nil)
	calls := 0
	fn := func(any) { calls++ }
	h1, h2 := Func(fn), Func(fn)
	require.NoError(t, e.Subscribe("x", h1))
	require.NoError(t, e.Subscribe("x", h2))
	e.Notify("x", nil)
	assert.Equal(t, 2, calls)

	e.Unsubscribe(h1)
	e.Notify("x", nil)
	assert.Equal(t, 3, calls)
}

func TestUnsubscribeRemovesFromEveryEvent(t *testing.T) {
	var log []string
	e := New(nil)
	h := &recorder{name: "h", log: &log}
	require.NoError(t, e.Subscribe("x", h))
	require.NoError(t, e.Subscribe("y", h))
	require.NoError(t, e.Subscribe(All, h))

	e.Unsubscribe(h)
	e.Notify("x", nil)
	e.Notify("y", nil)
	assert.Empty(t, log)
	assert.Zero(t, e.Len("x"))

	// unknown handler is ignored
	e.Unsubscribe(&recorder{log: &log})
}

func TestUnsubscribeAll(t *testing.T) {
	var log []string
	e := New(nil)
	require.NoError(t, e.Subscribe("x", &recorder{name: "a", log: &log}))
	require.NoError(t, e.Subscribe(All, &recorder{name: "b", log: &log}))
	e.UnsubscribeAll()
	e.Notify("x", nil)
	assert.Empty(t, log)
}

func TestWithEventInfo(t *testing.T) {
	e := New("me")
	var got []any
	h := Func(func(arg any) { got = append(got, arg) })
	require.NoError(t, e.Subscribe("x", h, WithEventInfo()))

	e.Notify("x", "payload")
	require.Len(t, got, 1)
	ev, ok := got[0].(Event)
	require.True(t, ok)
	assert.Equal(t, "x", ev.Name)
	assert.Equal(t, "payload", ev.Arg)
	assert.Equal(t, "me", ev.Notifier)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "me", e.Owner())
}

func TestReentrantSubscriptionAppliesNextTime(t *testing.T) {
	e := New(nil)
	lateCalls := 0
	late := Func(func(any) { lateCalls++ })
	var first *FuncHandler
	first = Func(func(any) {
		_ = e.Subscribe("x", late)
		e.Unsubscribe(first)
	})
	require.NoError(t, e.Subscribe("x", first))

	e.Notify("x", nil)
	assert.Equal(t, 0, lateCalls)
	e.Notify("x", nil)
	assert.Equal(t, 1, lateCalls)
	assert.Equal(t, 1, e.Len("x"))
}

func TestNestedNotify(t *testing.T) {
	e := New(nil)
	var order []string
	require.NoError(t, e.Subscribe("outer", Func(func(any) {
		order = append(order, "outer")
		e.Notify("inner", nil)
	})))
	require.NoError(t, e.Subscribe("inner", Func(func(any) {
		order = append(order, "inner")
	})))
	e.Notify("outer", nil)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestNotifyWithInfoWrapsForEveryHandler(t *testing.T) {
	e := New("owner")
	var plain, info []any
	require.NoError(t, e.Subscribe("x", Func(func(arg any) { plain = append(plain, arg) })))
	require.NoError(t, e.Subscribe("x", Func(func(arg any) { info = append(info, arg) }), WithEventInfo()))

	e.NotifyWithInfo("x", 7)
	require.Len(t, plain, 1)
	require.Len(t, info, 1)
	assert.Equal(t, 7, plain[0].(Event).Arg)
	assert.Equal(t, plain[0], info[0])
}
