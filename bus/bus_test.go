package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitInvokesInRegistrationOrder(t *testing.T) {
	b := New()
	var order []int

	b.Add(Map, func(args ...any) { order = append(order, 1) })
	b.Add(Map, func(args ...any) { order = append(order, 2) })
	b.Add(Map, func(args ...any) { order = append(order, 3) })

	b.Emit(Map, uint64(1), "title", "app", int32(4), int32(2))

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestEmitPassesPayloadPositionally(t *testing.T) {
	b := New()
	var gotWid uint64
	var gotTitle string

	b.Add(Map, func(args ...any) {
		gotWid = args[0].(uint64)
		gotTitle = args[1].(string)
	})

	b.Emit(Map, uint64(42), "hello", "", int32(4), int32(2))

	assert.Equal(t, uint64(42), gotWid)
	assert.Equal(t, "hello", gotTitle)
}

func TestRemoveRemovesFirstMatch(t *testing.T) {
	b := New()
	calls := 0
	cb := func(args ...any) { calls++ }

	b.Add(Unmap, cb)
	require.Equal(t, 1, b.ListenerCount(Unmap))

	b.Remove(Unmap, cb)
	assert.Equal(t, 0, b.ListenerCount(Unmap))

	b.Emit(Unmap, uint64(1))
	assert.Equal(t, 0, calls)
}

func TestAddThenRemoveRestoresPriorState(t *testing.T) {
	b := New()
	existing := func(args ...any) {}
	b.Add(Destroy, existing)
	before := b.ListenerCount(Destroy)

	added := func(args ...any) {}
	b.Add(Destroy, added)
	b.Remove(Destroy, added)

	assert.Equal(t, before, b.ListenerCount(Destroy))
}

func TestRemoveIsIdempotent(t *testing.T) {
	b := New()
	cb := func(args ...any) {}
	b.Add(Destroy, cb)

	b.Remove(Destroy, cb)
	assert.NotPanics(t, func() { b.Remove(Destroy, cb) })
	assert.Equal(t, 0, b.ListenerCount(Destroy))
}

func TestRemoveOnlyRemovesFirstMatchingListener(t *testing.T) {
	b := New()
	calls := 0
	cb := func(args ...any) { calls++ }

	b.Add(Maximize, cb)
	b.Add(Maximize, cb)
	require.Equal(t, 2, b.ListenerCount(Maximize))

	b.Remove(Maximize, cb)
	assert.Equal(t, 1, b.ListenerCount(Maximize))

	b.Emit(Maximize, uint64(1))
	assert.Equal(t, 1, calls)
}

func TestEmitSnapshotsListenersBeforeInvoking(t *testing.T) {
	b := New()
	var secondCalled bool
	var first, second Listener
	first = func(args ...any) { b.Remove(Move, second) }
	second = func(args ...any) { secondCalled = true }

	b.Add(Move, first)
	b.Add(Move, second)

	b.Emit(Move, uint64(1), uint32(0))

	assert.True(t, secondCalled, "listener removed mid-emit by an earlier listener should still run for this Emit call")
	assert.Equal(t, 1, b.ListenerCount(Move), "only second was removed; first stays registered")
}

func TestEmitOnUnknownEventNameIsANoOp(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() { b.Emit(EventName("nonexistent")) })
}
