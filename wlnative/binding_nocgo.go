//go:build !cgo || !linux

package wlnative

// NewBackend returns a Backend whose error-returning methods report
// ErrCGORequired (Cleanup, which has nothing to tear down, returns nil);
// the remaining methods do nothing or return zero values.
// Mirrors the xkb_nocgo.go / wayland_cursor_nocgo.go split: a binary
// built without cgo (or off Linux) still links, it just can't host a
// real compositor.
func NewBackend() Backend {
	return stubBackend{}
}

type stubBackend struct{}

func (stubBackend) Initialize(Config, Callbacks) (string, error)    { return "", ErrCGORequired }
func (stubBackend) EventLoopFD() (int, error)                       { return -1, ErrCGORequired }
func (stubBackend) RunBlocking()                                    {}
func (stubBackend) DispatchOnce() error                             { return ErrCGORequired }
func (stubBackend) Cleanup() error                                  { return nil }
func (stubBackend) SceneAttach(SurfaceHandle) error                  { return ErrCGORequired }
func (stubBackend) IsToplevel(SurfaceHandle) bool                   { return false }
func (stubBackend) IsConfigured(SurfaceHandle) bool                 { return false }
func (stubBackend) SendInitialConfigure(SurfaceHandle, int32, int32) {}
func (stubBackend) SurfaceGeometry(SurfaceHandle) Geometry           { return Geometry{} }
func (stubBackend) SurfaceTitleAppID(SurfaceHandle) (string, string) { return "", "" }
func (stubBackend) IsMapped(SurfaceHandle) bool                      { return false }
func (stubBackend) DamageRects(SurfaceHandle) [][4]int32              { return nil }
func (stubBackend) ReadSurfaceTexture(SurfaceHandle) (int32, int32, []byte, error) {
	return 0, 0, nil, ErrCGORequired
}
func (stubBackend) InitOutputRendering(OutputHandle) error      { return ErrCGORequired }
func (stubBackend) CreateSceneOutput(OutputHandle) error        { return ErrCGORequired }
func (stubBackend) CommitSceneOutput(OutputHandle) error        { return ErrCGORequired }
func (stubBackend) ScheduleNextFrame(OutputHandle)               {}
func (stubBackend) SetDecorationServerSide(DecorationHandle)     {}
func (stubBackend) Resize(SurfaceHandle, int32, int32) error     { return ErrCGORequired }
func (stubBackend) Focus(SurfaceHandle, bool) error              { return ErrCGORequired }
func (stubBackend) NewPointer() (Pointer, error)                 { return nil, ErrCGORequired }
func (stubBackend) NewKeyboard() (Keyboard, error)               { return nil, ErrCGORequired }
