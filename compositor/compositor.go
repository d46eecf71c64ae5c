// Package compositor implements the headless compositor core: the surface
// registry, output pipeline, damage/readback, decoration policy, and
// lifecycle described for the underlying native display-server stack. It
// is built entirely against the wlnative.Backend interface, never against
// cgo directly, so every piece of domain logic here is unit-testable
// without a real display server.
package compositor

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wlhost/compositor/bus"
	"github.com/wlhost/compositor/wlnative"
)

// Config configures a Compositor before Initialize. Zero values apply the
// same defaults the native layer itself would pick.
type Config struct {
	// OutputWidth/OutputHeight size the sole headless output. Zero
	// selects 1920x1080 (the native backend's own default).
	OutputWidth  int32
	OutputHeight int32

	// Logger receives structured log output for every non-fatal failure
	// and debug trace in this package. Defaults to slog.Default().
	Logger *slog.Logger

	// NewBackend constructs the native backend Initialize will drive.
	// Defaults to wlnative.NewBackend, the real (or cgo-stub) backend;
	// tests override it with a fake.
	NewBackend func() wlnative.Backend
}

// Compositor is the single-process entry point this core exposes to an
// embedder: one headless Wayland compositor instance, its surface
// registry, output manager, and event bus.
type Compositor struct {
	cfg     Config
	logger  *slog.Logger
	backend wlnative.Backend
	bus     *bus.Bus

	registry *registry
	outputs  *outputManager

	socketName    string
	initialized   bool
}

// New constructs a Compositor. Initialize must be called before any other
// method (besides AddEventListener/RemoveEventListener, which may be
// registered ahead of time).
func New(cfg Config) *Compositor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.NewBackend == nil {
		cfg.NewBackend = wlnative.NewBackend
	}
	return &Compositor{
		cfg:    cfg,
		logger: cfg.Logger,
		bus:    bus.New(),
	}
}

// Initialize performs the native backend's ordered startup sequence and
// returns the published socket name. On success it also sets
// WAYLAND_DISPLAY in the calling process's environment.
func (c *Compositor) Initialize() (string, error) {
	if c.initialized {
		return "", ErrAlreadyInitialized
	}

	backend := c.cfg.NewBackend()
	c.backend = backend
	c.registry = newRegistry(backend, c.bus, c.logger)
	c.outputs = newOutputManager(backend, c.bus, c.logger)

	socket, err := backend.Initialize(wlnative.Config{
		OutputWidth:  c.cfg.OutputWidth,
		OutputHeight: c.cfg.OutputHeight,
	}, wlnative.Callbacks{
		OnNewXDGSurface:         c.registry.onNewXDGSurface,
		OnMap:                   c.registry.onMap,
		OnUnmap:                 c.registry.onUnmap,
		OnDestroy:               c.registry.onDestroy,
		OnCommit:                c.registry.onCommit,
		OnRequestMove:           c.registry.onRequestMove,
		OnRequestResize:         c.registry.onRequestResize,
		OnRequestMaximize:       c.registry.onRequestMaximize,
		OnRequestFullscreen:     c.registry.onRequestFullscreen,
		OnRequestMinimize:       c.registry.onRequestMinimize,
		OnSetTitle:              c.registry.onSetTitle,
		OnSetAppID:              c.registry.onSetAppID,
		OnNewOutput:             c.outputs.onNewOutput,
		OnOutputFrame:           c.outputs.onFrame,
		OnOutputDestroy:         c.outputs.onDestroy,
		OnNewToplevelDecoration: c.onNewToplevelDecoration,
		OnKeyboardLED: func(mask uint32) {
			c.bus.Emit(bus.KeyboardLED, mask)
		},
	})
	if err != nil {
		return "", fmt.Errorf("initialize native compositor: %w", err)
	}

	if err := os.Setenv("WAYLAND_DISPLAY", socket); err != nil {
		c.logger.Warn("set WAYLAND_DISPLAY", "err", err)
	}

	c.socketName = socket
	c.initialized = true
	return socket, nil
}

// SocketName returns the socket name assigned by the most recent
// successful Initialize. Empty before Initialize succeeds.
func (c *Compositor) SocketName() string {
	return c.socketName
}

// GetEventLoopFD returns the native event loop's pollable file descriptor,
// for embedders driving their own reactor instead of calling Run.
func (c *Compositor) GetEventLoopFD() (int, error) {
	if !c.initialized {
		return -1, ErrNotInitialized
	}
	return c.backend.EventLoopFD()
}

// Run enters the native library's blocking dispatch loop, returning when
// ctx is cancelled or Cleanup is called from another goroutine.
// Cancelling ctx triggers the same shutdown path as an embedder calling
// Cleanup directly.
func (c *Compositor) Run(ctx context.Context) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.backend.RunBlocking()
	}()
	select {
	case <-ctx.Done():
		return c.Cleanup()
	case <-done:
		return nil
	}
}

// ProcessEvents performs one non-blocking dispatch plus a client flush,
// for embedders driving their own reactor over GetEventLoopFD.
func (c *Compositor) ProcessEvents() error {
	if !c.initialized {
		return ErrNotInitialized
	}
	return c.backend.DispatchOnce()
}

// Cleanup tears down the native compositor stack. Idempotent: calling it
// more than once, or before a successful Initialize, is a no-op.
func (c *Compositor) Cleanup() error {
	if !c.initialized {
		return nil
	}
	err := c.backend.Cleanup()
	c.initialized = false
	return err
}

// Resize drives a toplevel size configure for wid. Returns
// ErrUnknownSurface if wid is not currently live, rather than the
// undefined behavior an untracked wid would otherwise invite.
func (c *Compositor) Resize(wid uint64, width, height int32) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	return c.registry.resize(wid, width, height)
}

// Focus sets a toplevel's activated state for wid.
func (c *Compositor) Focus(wid uint64, focused bool) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	return c.registry.focus(wid, focused)
}

// GetPointerDevice constructs a new virtual pointer bound to the seat.
func (c *Compositor) GetPointerDevice() (wlnative.Pointer, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	return c.backend.NewPointer()
}

// GetKeyboardDevice constructs a new virtual keyboard bound to the seat.
// Unlike wayland_input.go's keyboard wrapper, which never assigns its
// keyboard member, this always returns either a usable device or an
// error — there is no path that hands back a facade with a nil native
// handle.
func (c *Compositor) GetKeyboardDevice() (wlnative.Keyboard, error) {
	if !c.initialized {
		return nil, ErrNotInitialized
	}
	return c.backend.NewKeyboard()
}

// AddEventListener registers cb for name. Safe to call before Initialize.
func (c *Compositor) AddEventListener(name bus.EventName, cb bus.Listener) {
	c.bus.Add(name, cb)
}

// RemoveEventListener removes the first listener registered for name
// matching cb.
func (c *Compositor) RemoveEventListener(name bus.EventName, cb bus.Listener) {
	c.bus.Remove(name, cb)
}
