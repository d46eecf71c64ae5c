package compositor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/wlhost/compositor/wlnative"
)

var errNoTexture = errors.New("fake: surface has no current buffer")

// fakeBackend is an in-memory wlnative.Backend used to exercise the
// domain logic in this package without a real display server, the same
// way wayland_cursor.go and pipewire_cursor.go keep PipeWire/GStreamer
// behind a small interface their HTTP handlers are tested against.
type fakeBackend struct {
	mu  sync.Mutex
	cb  wlnative.Callbacks
	cfg wlnative.Config

	nextSurface wlnative.SurfaceHandle
	nextOutput  wlnative.OutputHandle

	roles      map[wlnative.SurfaceHandle]string // "toplevel", "none", "popup"
	configured map[wlnative.SurfaceHandle]bool
	mapped     map[wlnative.SurfaceHandle]bool
	geometry   map[wlnative.SurfaceHandle]wlnative.Geometry
	titleAppID map[wlnative.SurfaceHandle][2]string
	damage     map[wlnative.SurfaceHandle][][4]int32
	texture    map[wlnative.SurfaceHandle]fakeTexture

	configureCalls  map[wlnative.SurfaceHandle]int
	sceneCommits    map[wlnative.OutputHandle]int
	framesScheduled map[wlnative.OutputHandle]int
	forcedSSD       []wlnative.DecorationHandle

	initialized bool
	cleanedUp   bool
	socketSeq   int
}

type fakeTexture struct {
	width, height int32
	data          []byte
	err           error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		roles:      make(map[wlnative.SurfaceHandle]string),
		configured: make(map[wlnative.SurfaceHandle]bool),
		mapped:     make(map[wlnative.SurfaceHandle]bool),
		geometry:   make(map[wlnative.SurfaceHandle]wlnative.Geometry),
		titleAppID: make(map[wlnative.SurfaceHandle][2]string),
		damage:     make(map[wlnative.SurfaceHandle][][4]int32),
		texture:    make(map[wlnative.SurfaceHandle]fakeTexture),

		configureCalls:  make(map[wlnative.SurfaceHandle]int),
		sceneCommits:    make(map[wlnative.OutputHandle]int),
		framesScheduled: make(map[wlnative.OutputHandle]int),
	}
}

func (f *fakeBackend) Initialize(cfg wlnative.Config, cb wlnative.Callbacks) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
	f.cb = cb
	f.initialized = true
	f.cleanedUp = false
	f.socketSeq++
	return fmt.Sprintf("wayland-test-%d", f.socketSeq), nil
}

func (f *fakeBackend) EventLoopFD() (int, error) { return 42, nil }
func (f *fakeBackend) RunBlocking()               {}
func (f *fakeBackend) DispatchOnce() error        { return nil }

func (f *fakeBackend) Cleanup() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanedUp = true
	f.initialized = false
	return nil
}

func (f *fakeBackend) SceneAttach(wlnative.SurfaceHandle) error { return nil }

func (f *fakeBackend) IsToplevel(h wlnative.SurfaceHandle) bool {
	return f.roles[h] != "popup"
}

func (f *fakeBackend) IsConfigured(h wlnative.SurfaceHandle) bool { return f.configured[h] }

func (f *fakeBackend) SendInitialConfigure(h wlnative.SurfaceHandle, width, height int32) {
	f.configured[h] = true
	f.configureCalls[h]++
	g := f.geometry[h]
	g.Width, g.Height = width, height
	f.geometry[h] = g
}

func (f *fakeBackend) SurfaceGeometry(h wlnative.SurfaceHandle) wlnative.Geometry {
	return f.geometry[h]
}

func (f *fakeBackend) SurfaceTitleAppID(h wlnative.SurfaceHandle) (string, string) {
	v := f.titleAppID[h]
	return v[0], v[1]
}

func (f *fakeBackend) IsMapped(h wlnative.SurfaceHandle) bool { return f.mapped[h] }

func (f *fakeBackend) DamageRects(h wlnative.SurfaceHandle) [][4]int32 { return f.damage[h] }

func (f *fakeBackend) ReadSurfaceTexture(h wlnative.SurfaceHandle) (int32, int32, []byte, error) {
	tex, ok := f.texture[h]
	if !ok {
		return 0, 0, nil, fmt.Errorf("fake: no texture for %v", h)
	}
	if tex.err != nil {
		return 0, 0, nil, tex.err
	}
	return tex.width, tex.height, tex.data, nil
}

func (f *fakeBackend) InitOutputRendering(wlnative.OutputHandle) error { return nil }
func (f *fakeBackend) CreateSceneOutput(wlnative.OutputHandle) error   { return nil }
func (f *fakeBackend) CommitSceneOutput(h wlnative.OutputHandle) error {
	f.sceneCommits[h]++
	return nil
}
func (f *fakeBackend) ScheduleNextFrame(h wlnative.OutputHandle) { f.framesScheduled[h]++ }
func (f *fakeBackend) SetDecorationServerSide(h wlnative.DecorationHandle) {
	f.forcedSSD = append(f.forcedSSD, h)
}

func (f *fakeBackend) Resize(h wlnative.SurfaceHandle, width, height int32) error {
	if _, ok := f.roles[h]; !ok {
		return fmt.Errorf("fake: unknown surface")
	}
	g := f.geometry[h]
	g.Width, g.Height = width, height
	f.geometry[h] = g
	return nil
}

func (f *fakeBackend) Focus(h wlnative.SurfaceHandle, focused bool) error {
	if _, ok := f.roles[h]; !ok {
		return fmt.Errorf("fake: unknown surface")
	}
	return nil
}

func (f *fakeBackend) NewPointer() (wlnative.Pointer, error) { return &fakePointer{}, nil }
func (f *fakeBackend) NewKeyboard() (wlnative.Keyboard, error) {
	return &fakeKeyboard{}, nil
}

// --- test-driver helpers, called from the test itself to simulate native
// signals arriving (mirrors a mock client driving the protocol) ---------

func (f *fakeBackend) createSurface(role string, title, appID string, geom wlnative.Geometry) wlnative.SurfaceHandle {
	f.nextSurface++
	h := f.nextSurface
	f.roles[h] = role
	f.titleAppID[h] = [2]string{title, appID}
	f.geometry[h] = geom
	isToplevel := role != "popup"
	f.cb.OnNewXDGSurface(h, isToplevel, title, appID, geom)
	return h
}

func (f *fakeBackend) mapSurface(h wlnative.SurfaceHandle) {
	f.mapped[h] = true
	f.cb.OnMap(h)
}

func (f *fakeBackend) unmapSurface(h wlnative.SurfaceHandle) {
	f.mapped[h] = false
	f.cb.OnUnmap(h)
}

func (f *fakeBackend) destroySurface(h wlnative.SurfaceHandle) {
	delete(f.roles, h)
	f.cb.OnDestroy(h)
}

func (f *fakeBackend) commitSurface(h wlnative.SurfaceHandle, rects [][4]int32, width, height int32, pixels []byte, texErr error) {
	f.damage[h] = rects
	f.texture[h] = fakeTexture{width: width, height: height, data: pixels, err: texErr}
	f.cb.OnCommit(h)
}

func (f *fakeBackend) createOutput() wlnative.OutputHandle {
	f.nextOutput++
	h := f.nextOutput
	f.cb.OnNewOutput(h)
	return h
}

func (f *fakeBackend) frameOutput(h wlnative.OutputHandle) {
	f.cb.OnOutputFrame(h)
}

func (f *fakeBackend) createDecoration(requestedSSD bool) wlnative.DecorationHandle {
	f.cb.OnNewToplevelDecoration(1, requestedSSD)
	return 1
}

type fakePointer struct{}

func (fakePointer) Move(dx, dy float64)                                       {}
func (fakePointer) MoveAbsolute(x, y float64, screenWidth, screenHeight int32) {}
func (fakePointer) Button(code uint32, pressed bool)                          {}
func (fakePointer) Scroll(deltaHoriz, deltaVert float64)                      {}
func (fakePointer) SetFocus(h wlnative.SurfaceHandle, x, y float64)           {}
func (fakePointer) Close() error                                              { return nil }

type fakeKeyboard struct{}

func (fakeKeyboard) SetLayout(layout, model, variant, options string) error { return nil }
func (fakeKeyboard) PressKey(keycode uint32, pressed bool, timestampMS uint32) {}
func (fakeKeyboard) SetRepeatRate(delayMS, intervalMS int32)                {}
func (fakeKeyboard) UpdateModifiers(depressed, latched, locked, group uint32) {}
func (fakeKeyboard) Focus(h wlnative.SurfaceHandle)                         {}
func (fakeKeyboard) ClearFocus()                                            {}
func (fakeKeyboard) Close() error                                           { return nil }
