package bus

// Event names published by package compositor. Payload shapes are
// documented per constant; Emit passes them positionally as `any`.
const (
	// NewSurface: (surface uintptr, wid uint64, title, appID string, w, h int32)
	// where surface is the surface's opaque wlnative.SurfaceHandle value.
	NewSurface EventName = "new-surface"
	// Map: (wid uint64, title, appID string, w, h int32)
	Map EventName = "map"
	// Unmap: (wid uint64)
	Unmap EventName = "unmap"
	// Destroy: (wid uint64)
	Destroy EventName = "destroy"
	// Commit: (wid uint64, mapped bool, rects []DamageRect)
	Commit EventName = "commit"
	// SurfaceImage: (wid uint64, image PixelFrame)
	SurfaceImage EventName = "surface-image"
	// Move: (wid uint64, serial uint32)
	Move EventName = "move"
	// Resize: (wid uint64, serial uint32)
	Resize EventName = "resize"
	// Maximize: (wid uint64)
	Maximize EventName = "maximize"
	// Fullscreen: (wid uint64)
	Fullscreen EventName = "fullscreen"
	// Minimize: (wid uint64)
	Minimize EventName = "minimize"
	// SSD: (decoration uintptr, clientRequestedSSD bool) where decoration
	// is the decoration object's opaque wlnative.DecorationHandle value;
	// the payload does not identify the toplevel or its wid.
	SSD EventName = "ssd"

	// SetTitle: (wid uint64, title string)
	SetTitle EventName = "set-title"
	// SetAppID: (wid uint64, appID string)
	SetAppID EventName = "set-app-id"
	// KeyboardLED: (mask uint32), emitted whenever the backend reports an
	// LED change through Callbacks.OnKeyboardLED. The cgo backend registers
	// no LED callback, so it never emits this event.
	KeyboardLED EventName = "keyboard-led"
)
