// Package input implements the seat-facing input facade: synthetic
// pointer and keyboard devices that inject events into the native seat.
// Method surface mirrors wayland_input.go's client-side virtual-input
// wrapper, adapted here to the server side: a Pointer/Keyboard bound
// directly to the compositor's own seat rather than a remote
// compositor's protocol extension.
package input

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/wlhost/compositor/wlnative"
)

// Pointer wraps wlnative.Pointer with the mutex-guarded, ordered-close
// discipline every native device wrapper in this package applies.
type Pointer struct {
	mu     sync.Mutex
	native wlnative.Pointer
	logger *slog.Logger
	closed bool
}

// NewPointer constructs the seat's virtual pointer device.
func NewPointer(backend wlnative.Backend, logger *slog.Logger) (*Pointer, error) {
	native, err := backend.NewPointer()
	if err != nil {
		return nil, fmt.Errorf("input: create pointer device: %w", err)
	}
	return &Pointer{native: native, logger: logger}, nil
}

// Move injects a relative pointer motion.
func (p *Pointer) Move(dx, dy float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.native.Move(dx, dy)
}

// MoveAbsolute injects an absolute pointer position within a
// screenWidth x screenHeight coordinate space.
func (p *Pointer) MoveAbsolute(x, y float64, screenWidth, screenHeight int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.native.MoveAbsolute(x, y, screenWidth, screenHeight)
}

// ButtonDown presses a pointer button identified by a Linux input event
// code (e.g. BTN_LEFT = 0x110).
func (p *Pointer) ButtonDown(code uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.native.Button(code, true)
}

// ButtonUp releases a pointer button.
func (p *Pointer) ButtonUp(code uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.native.Button(code, false)
}

// Click presses then releases a pointer button.
func (p *Pointer) Click(code uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.native.Button(code, true)
	p.native.Button(code, false)
}

// Scroll injects a scroll/wheel event along both axes.
func (p *Pointer) Scroll(deltaHoriz, deltaVert float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.native.Scroll(deltaHoriz, deltaVert)
}

// SetFocus enters pointer focus on the given native surface at (x,y), or
// clears it when h is the zero handle.
func (p *Pointer) SetFocus(h wlnative.SurfaceHandle, x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.native.SetFocus(h, x, y)
}

// Close releases the native pointer device. Idempotent.
func (p *Pointer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.native.Close()
}

// moduleStart anchors PressKey's timestamp to package initialization;
// time.Since reads the monotonic clock, so the timestamps are unaffected by
// wall-clock changes.
var moduleStart = time.Now()

// Keyboard wraps wlnative.Keyboard. Unlike wayland_input.go's keyboard
// field, which is declared but never assigned by its constructor
// (guaranteeing a nil-pointer fault on first use), every Keyboard value
// returned by NewKeyboard here has a live, bound native handle.
type Keyboard struct {
	mu         sync.Mutex
	native     wlnative.Keyboard
	logger     *slog.Logger
	closed     bool
	layoutName string
}

// NewKeyboard constructs the seat's virtual keyboard device. backend.
// NewKeyboard either returns a usable device or an error; there is no
// partially-constructed state for callers to trip over.
func NewKeyboard(backend wlnative.Backend, logger *slog.Logger) (*Keyboard, error) {
	native, err := backend.NewKeyboard()
	if err != nil {
		return nil, fmt.Errorf("input: create keyboard device: %w", err)
	}
	return &Keyboard{native: native, logger: logger}, nil
}

// SetLayout builds an XKB keymap from the given rule names and binds it
// to the virtual keyboard.
func (k *Keyboard) SetLayout(layout, model, variant, options string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return fmt.Errorf("input: keyboard closed")
	}
	if err := k.native.SetLayout(layout, model, variant, options); err != nil {
		return fmt.Errorf("input: set layout %q: %w", layout, err)
	}
	k.layoutName = layout
	return nil
}

// LayoutName returns the layout name passed to the most recent successful
// SetLayout call, or "" before one has succeeded. xkbcommon keymaps are
// write-only once bound, so this is the only read path an embedder has
// for "what layout is currently active".
func (k *Keyboard) LayoutName() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.layoutName
}

// PressKey notifies the seat of a key event, stamped with a monotonic
// millisecond timestamp measured from module init.
func (k *Keyboard) PressKey(keycode uint32, pressed bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return
	}
	ts := uint32(time.Since(moduleStart).Milliseconds())
	k.native.PressKey(keycode, pressed, ts)
}

// SetRepeatRate sets the seat's key repeat delay/interval.
func (k *Keyboard) SetRepeatRate(delayMS, intervalMS int32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return
	}
	k.native.SetRepeatRate(delayMS, intervalMS)
}

// UpdateModifiers pushes a modifier state to the seat.
func (k *Keyboard) UpdateModifiers(depressed, latched, locked, group uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return
	}
	k.native.UpdateModifiers(depressed, latched, locked, group)
}

// Focus notifies the seat of keyboard enter on h, or clears seat focus if
// h is the zero handle.
func (k *Keyboard) Focus(h wlnative.SurfaceHandle) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return
	}
	if h == 0 {
		k.native.ClearFocus()
		return
	}
	k.native.Focus(h)
}

// ClearKeysPressed is a no-op: the virtual keyboard has no autonomous
// pressed-key state to clear.
func (k *Keyboard) ClearKeysPressed() {}

// GetKeycodesDown always returns an empty slice, for the same reason as
// ClearKeysPressed.
func (k *Keyboard) GetKeycodesDown() []uint32 { return nil }

// GetLayoutGroup always returns group 0: a virtual keyboard has no
// autonomous layout-group state of its own.
func (k *Keyboard) GetLayoutGroup() uint32 { return 0 }

// Close releases the native keyboard device. Idempotent.
func (k *Keyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	return k.native.Close()
}
