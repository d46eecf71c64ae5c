// Package wlnative declares the bindings surface for the underlying native
// compositor library (a wlroots-shaped display-server stack: backend,
// renderer, allocator, scene graph, seat, XDG shell, XDG decoration).
//
// This package is the leaf dependency: it only describes handles, signal
// callbacks, and the operations the compositor package drives them with. It
// never makes a decision about window lifecycle, damage, or event fan-out —
// that logic lives in package compositor, which is built against the Backend
// interface here rather than against CGO directly so it can be exercised in
// tests without a real display server.
package wlnative

import "errors"

// ErrCGORequired is returned by every native entry point when the package
// was built without CGO (or not on Linux), matching the CGO/no-CGO split
// used throughout api/pkg/desktop (wayland_cursor.go, xkb.go, ...).
var ErrCGORequired = errors.New("wlnative: native compositor backend requires cgo and linux")

// SurfaceHandle identifies a live XDG surface on the native side. It is
// opaque to callers; the concrete backend may represent it as a pointer, an
// index, or anything else load-bearing only to itself.
type SurfaceHandle uintptr

// OutputHandle identifies a live (headless) output.
type OutputHandle uintptr

// DecorationHandle identifies a toplevel decoration object.
type DecorationHandle uintptr

// Geometry mirrors an xdg_surface's current window geometry, in
// surface-local coordinates.
type Geometry struct {
	X, Y          int32
	Width, Height int32
}

// Config configures the headless backend's sole output and any other
// native-side parameters the caller does not otherwise control.
type Config struct {
	OutputWidth  int32
	OutputHeight int32
}

// Callbacks are invoked synchronously, on the thread driving the native
// event loop (RunBlocking or DispatchOnce), once for every native signal.
// None of them may block — compositor wires these directly to its
// registry/output-manager methods, which only touch in-process state and
// the event bus.
type Callbacks struct {
	OnNewXDGSurface         func(h SurfaceHandle, isToplevel bool, title, appID string, geom Geometry)
	OnMap                   func(h SurfaceHandle)
	OnUnmap                 func(h SurfaceHandle)
	OnDestroy               func(h SurfaceHandle)
	OnCommit                func(h SurfaceHandle)
	OnRequestMove           func(h SurfaceHandle, serial uint32)
	OnRequestResize         func(h SurfaceHandle, serial uint32, edges uint32)
	OnRequestMaximize       func(h SurfaceHandle)
	OnRequestFullscreen     func(h SurfaceHandle)
	OnRequestMinimize       func(h SurfaceHandle)
	OnSetTitle              func(h SurfaceHandle, title string)
	OnSetAppID              func(h SurfaceHandle, appID string)
	OnNewOutput             func(h OutputHandle)
	OnOutputFrame           func(h OutputHandle)
	OnOutputDestroy         func(h OutputHandle)
	OnNewToplevelDecoration func(h DecorationHandle, requestedSSD bool)
	OnKeyboardLED           func(mask uint32)
}

// Backend is the full surface the native compositor library exposes to
// package compositor. One concrete implementation binds to the real
// library via CGO (binding_cgo.go); another is a build-tag stub returning
// ErrCGORequired (binding_nocgo.go); tests use a third, in-memory fake.
type Backend interface {
	// Initialize performs the ordered native startup steps (display,
	// event loop, headless backend + output, renderer, allocator,
	// compositor, output layout, scene, XDG shell, seat, cursor,
	// decoration manager, socket) and returns the published socket name.
	Initialize(cfg Config, cb Callbacks) (socketName string, err error)

	// EventLoopFD returns the native event loop's pollable file
	// descriptor, for embedders that drive their own reactor.
	EventLoopFD() (int, error)

	// RunBlocking enters the native library's blocking dispatch loop.
	RunBlocking()

	// DispatchOnce performs one non-blocking dispatch plus a client
	// flush.
	DispatchOnce() error

	// Cleanup destroys the connected clients, then the scene, allocator,
	// renderer and backend (the reverse of their creation order), then the
	// display. Idempotent.
	Cleanup() error

	// SceneAttach creates the scene-tree node for a newly tracked XDG
	// surface, parented under the root scene tree.
	SceneAttach(h SurfaceHandle) error

	// IsToplevel reports whether the XDG surface is tracked as a
	// toplevel: true for role Toplevel and for role None, false for
	// Popup.
	IsToplevel(h SurfaceHandle) bool

	// IsConfigured reports whether an initial configure has already
	// been sent for this (toplevel) surface.
	IsConfigured(h SurfaceHandle) bool

	// SendInitialConfigure sends a toplevel's first size configure.
	SendInitialConfigure(h SurfaceHandle, width, height int32)

	// SurfaceGeometry returns the surface's current window geometry.
	SurfaceGeometry(h SurfaceHandle) Geometry

	// SurfaceTitleAppID returns the toplevel's current title/app_id
	// (empty strings before either has been set, or for role-None
	// surfaces).
	SurfaceTitleAppID(h SurfaceHandle) (title, appID string)

	// IsMapped reports whether the surface is currently mapped.
	IsMapped(h SurfaceHandle) bool

	// DamageRects returns the surface's accumulated buffer-damage
	// rectangles since the previous commit, as (x1,y1,x2,y2) tuples.
	DamageRects(h SurfaceHandle) [][4]int32

	// ReadSurfaceTexture reads the mapped surface's client buffer back
	// into a BGRA (DRM_FORMAT_ABGR8888) pixel buffer. Returns an error
	// if the surface has no buffer/texture or the GPU readback fails.
	ReadSurfaceTexture(h SurfaceHandle) (width, height int32, bgra []byte, err error)

	// InitOutputRendering initializes rendering for a newly created
	// output using the compositor's allocator and renderer.
	InitOutputRendering(h OutputHandle) error

	// CreateSceneOutput binds a scene-output to the native output and
	// auto-places it in the output layout.
	CreateSceneOutput(h OutputHandle) error

	// CommitSceneOutput commits the scene for one output, producing a
	// rendered composite frame.
	CommitSceneOutput(h OutputHandle) error

	// ScheduleNextFrame requests the next frame callback for an output.
	ScheduleNextFrame(h OutputHandle)

	// SetDecorationServerSide unconditionally forces a toplevel
	// decoration object into server-side mode.
	SetDecorationServerSide(h DecorationHandle)

	// Resize drives a toplevel size configure.
	Resize(h SurfaceHandle, width, height int32) error

	// Focus sets a toplevel's activated state.
	Focus(h SurfaceHandle, focused bool) error

	// NewPointer constructs the seat's virtual pointer device.
	NewPointer() (Pointer, error)

	// NewKeyboard constructs the seat's virtual keyboard device. This
	// must return a usable, non-nil device or an error — there is no
	// partially-constructed state.
	NewKeyboard() (Keyboard, error)
}

// Pointer is the native pointer device bound to the seat and cursor.
type Pointer interface {
	Move(dx, dy float64)
	MoveAbsolute(x, y float64, screenWidth, screenHeight int32)
	Button(code uint32, pressed bool)
	Scroll(deltaHoriz, deltaVert float64)
	SetFocus(h SurfaceHandle, x, y float64)
	Close() error
}

// Keyboard is the native virtual keyboard device bound to the seat.
type Keyboard interface {
	// SetLayout builds an XKB context/keymap from the rule names and
	// binds it to the virtual keyboard.
	SetLayout(layout, model, variant, options string) error
	PressKey(keycode uint32, pressed bool, timestampMS uint32)
	SetRepeatRate(delayMS, intervalMS int32)
	UpdateModifiers(depressed, latched, locked, group uint32)
	Focus(h SurfaceHandle)
	ClearFocus()
	Close() error
}
