// Package eventor is a small synchronous observer used to wire widgets,
// the navigator and the editor together.
package eventor

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// All subscribes a handler to every event an Eventor notifies.
const All = ""

var (
	// ErrDuplicateHandler is returned when a handler is subscribed twice to the same event.
	ErrDuplicateHandler = errors.New("handler already subscribed")

	// ErrHandlerNotComparable is returned for handlers whose dynamic type cannot be compared.
	ErrHandlerNotComparable = errors.New("handler is not comparable")

	// ErrNilHandler is returned when a nil handler is subscribed.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// Handler receives notifications. Implementations must be comparable
// (pointers are the usual choice) so they can be unsubscribed later.
type Handler interface {
	HandleEvent(arg any)
}

// FuncHandler adapts a function to Handler. Use Func to get a pointer with a
// stable identity.
type FuncHandler struct {
	fn func(arg any)
}

// Func wraps fn. Every call returns a distinct handler.
func Func(fn func(arg any)) *FuncHandler {
	return &FuncHandler{fn: fn}
}

// HandleEvent implements Handler.
func (h *FuncHandler) HandleEvent(arg any) {
	if h != nil && h.fn != nil {
		h.fn(arg)
	}
}

// Event is delivered instead of the raw argument to handlers subscribed
// with WithEventInfo.
type Event struct {
	Name     string
	Arg      any
	Notifier any
	// ID is unique per Notify call; nested notifications get their own.
	ID string
}

// Option configures a subscription.
type Option func(*subscription)

// WithEventInfo makes the handler receive an Event.
func WithEventInfo() Option {
	return func(s *subscription) { s.needInfo = true }
}

type subscription struct {
	handler  Handler
	needInfo bool
}

// Eventor keeps per-event handler lists. It is not safe for concurrent use;
// notifications run synchronously on the caller's goroutine.
type Eventor struct {
	owner    any
	handlers map[string][]subscription
	log      logr.Logger
}

// New returns an Eventor whose events name owner as notifier.
func New(owner any) *Eventor {
	return &Eventor{
		owner:    owner,
		handlers: map[string][]subscription{},
		log:      logr.Discard(),
	}
}

// WithLogger attaches a logger; notifications are logged at V(2).
func (e *Eventor) WithLogger(log logr.Logger) *Eventor {
	e.log = log
	return e
}

// Owner returns the notifier recorded in events.
func (e *Eventor) Owner() any {
	return e.owner
}

// Subscribe adds handler for the named event. Use All for every event.
func (e *Eventor) Subscribe(name string, handler Handler, opts ...Option) error {
	if handler == nil {
		return ErrNilHandler
	}
	if !reflect.TypeOf(handler).Comparable() {
		return fmt.Errorf("%w: %T", ErrHandlerNotComparable, handler)
	}
	if e.handlers == nil {
		e.handlers = map[string][]subscription{}
	}
	for _, s := range e.handlers[name] {
		if s.handler == handler {
			return fmt.Errorf("%w: %T for event %q", ErrDuplicateHandler, handler, name)
		}
	}
	sub := subscription{handler: handler}
	for _, opt := range opts {
		opt(&sub)
	}
	e.handlers[name] = append(e.handlers[name], sub)
	return nil
}

// Unsubscribe removes handler from every event it is subscribed to.
// Unknown handlers are ignored.
func (e *Eventor) Unsubscribe(handler Handler) {
	if handler == nil || !reflect.TypeOf(handler).Comparable() {
		return
	}
	for name, subs := range e.handlers {
		kept := subs[:0:0]
		for _, s := range subs {
			if s.handler != handler {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(e.handlers, name)
			continue
		}
		e.handlers[name] = kept
	}
}

// UnsubscribeAll drops every handler.
func (e *Eventor) UnsubscribeAll() {
	e.handlers = map[string][]subscription{}
}

// Len reports the number of handlers subscribed to name.
func (e *Eventor) Len(name string) int {
	return len(e.handlers[name])
}

// Notify calls the handlers of name in subscription order, then the All
// handlers. Handlers may subscribe or unsubscribe during the call; the
// change applies to the next notification.
func (e *Eventor) Notify(name string, arg any) {
	e.dispatch(name, arg, false)
}

// NotifyWithInfo is Notify, except every handler receives an Event whether or
// not it was subscribed with WithEventInfo.
func (e *Eventor) NotifyWithInfo(name string, arg any) {
	e.dispatch(name, arg, true)
}

func (e *Eventor) dispatch(name string, arg any, forceInfo bool) {
	named := append([]subscription(nil), e.handlers[name]...)
	var all []subscription
	if name != All {
		all = append([]subscription(nil), e.handlers[All]...)
	}
	if len(named) == 0 && len(all) == 0 {
		return
	}

	ev := Event{Name: name, Arg: arg, Notifier: e.owner, ID: uuid.NewString()}
	e.log.V(2).Info("notify", "event", name, "id", ev.ID, "handlers", len(named)+len(all))
	for _, group := range [][]subscription{named, all} {
		for _, s := range group {
			if s.needInfo || forceInfo {
				s.handler.HandleEvent(ev)
			} else {
				s.handler.HandleEvent(arg)
			}
		}
	}
}
