// Package bus implements the compositor's synchronous, in-process event
// bus: the single channel through which surface/output/input state changes
// reach an embedding host. Every emission runs on the caller's goroutine —
// there is no internal queue or buffering — so listeners must not block.
package bus

import (
	"reflect"
	"sync"
)

// EventName identifies a bus event. The API boundary is deliberately
// stringly-typed (an embedder subscribes by name, the same way it would
// subscribe to a DOM or EventEmitter-style event) while payloads stay
// statically typed at the call site — callers type-assert args themselves.
type EventName string

// Listener receives an event's payload as a variadic arg list. The
// concrete types and order are documented per EventName in events.go.
type Listener func(args ...any)

// Bus is a registration-ordered multi-listener event dispatcher. The zero
// value is not usable; use New.
type Bus struct {
	mu        sync.Mutex
	listeners map[EventName][]Listener
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{listeners: make(map[EventName][]Listener)}
}

// Add registers cb for name, appended after any existing listeners for
// that name. The same Bus may hold multiple listeners per name; Emit
// invokes them in registration order.
func (b *Bus) Add(name EventName, cb Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], cb)
}

// Remove removes the first listener registered for name whose function
// value is cb, identified by code-pointer equality (reflect.ValueOf(cb).
// Pointer()). This matches the common caller pattern of storing the
// callback once and passing the same value to both Add and Remove; it
// cannot distinguish two structurally-identical-but-distinct closures, a
// known and accepted limitation of comparing Go func values this way.
func (b *Bus) Remove(name EventName, cb Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	target := reflect.ValueOf(cb).Pointer()
	list := b.listeners[name]
	for i, l := range list {
		if reflect.ValueOf(l).Pointer() == target {
			b.listeners[name] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Emit invokes every listener currently registered for name, in
// registration order, passing args to each. Emit takes a snapshot of the
// listener slice before invoking so a listener that calls Add/Remove
// during its own invocation doesn't perturb this Emit call.
func (b *Bus) Emit(name EventName, args ...any) {
	b.mu.Lock()
	snapshot := append([]Listener(nil), b.listeners[name]...)
	b.mu.Unlock()

	for _, l := range snapshot {
		l(args...)
	}
}

// ListenerCount returns the number of listeners currently registered for
// name, primarily useful in tests.
func (b *Bus) ListenerCount(name EventName) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[name])
}
