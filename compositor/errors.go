package compositor

import "errors"

var (
	// ErrUnknownSurface is returned by Resize/Focus when called with a wid
	// that is not (or is no longer) live.
	ErrUnknownSurface = errors.New("compositor: unknown or destroyed surface")
	// ErrAlreadyInitialized is returned by Initialize on a Compositor that
	// has already completed a successful Initialize without an
	// intervening Cleanup.
	ErrAlreadyInitialized = errors.New("compositor: already initialized")
	// ErrNotInitialized is returned by operations that require a live
	// native backend.
	ErrNotInitialized = errors.New("compositor: not initialized")
)
