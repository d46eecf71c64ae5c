package input

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wlhost/compositor/wlnative"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeBackend struct {
	pointer  *fakePointer
	keyboard *fakeKeyboard
	failPtr  bool
	failKbd  bool
}

func (f *fakeBackend) Initialize(wlnative.Config, wlnative.Callbacks) (string, error) { return "", nil }
func (f *fakeBackend) EventLoopFD() (int, error)                                      { return 0, nil }
func (f *fakeBackend) RunBlocking()                                                   {}
func (f *fakeBackend) DispatchOnce() error                                            { return nil }
func (f *fakeBackend) Cleanup() error                                                 { return nil }
func (f *fakeBackend) SceneAttach(wlnative.SurfaceHandle) error                       { return nil }
func (f *fakeBackend) IsToplevel(wlnative.SurfaceHandle) bool                         { return true }
func (f *fakeBackend) IsConfigured(wlnative.SurfaceHandle) bool                       { return false }
func (f *fakeBackend) SendInitialConfigure(wlnative.SurfaceHandle, int32, int32)      {}
func (f *fakeBackend) SurfaceGeometry(wlnative.SurfaceHandle) wlnative.Geometry       { return wlnative.Geometry{} }
func (f *fakeBackend) SurfaceTitleAppID(wlnative.SurfaceHandle) (string, string)      { return "", "" }
func (f *fakeBackend) IsMapped(wlnative.SurfaceHandle) bool                           { return false }
func (f *fakeBackend) DamageRects(wlnative.SurfaceHandle) [][4]int32                  { return nil }
func (f *fakeBackend) ReadSurfaceTexture(wlnative.SurfaceHandle) (int32, int32, []byte, error) {
	return 0, 0, nil, nil
}
func (f *fakeBackend) InitOutputRendering(wlnative.OutputHandle) error   { return nil }
func (f *fakeBackend) CreateSceneOutput(wlnative.OutputHandle) error     { return nil }
func (f *fakeBackend) CommitSceneOutput(wlnative.OutputHandle) error     { return nil }
func (f *fakeBackend) ScheduleNextFrame(wlnative.OutputHandle)           {}
func (f *fakeBackend) SetDecorationServerSide(wlnative.DecorationHandle) {}
func (f *fakeBackend) Resize(wlnative.SurfaceHandle, int32, int32) error { return nil }
func (f *fakeBackend) Focus(wlnative.SurfaceHandle, bool) error          { return nil }

func (f *fakeBackend) NewPointer() (wlnative.Pointer, error) {
	if f.failPtr {
		return nil, assertErr
	}
	f.pointer = &fakePointer{}
	return f.pointer, nil
}

func (f *fakeBackend) NewKeyboard() (wlnative.Keyboard, error) {
	if f.failKbd {
		return nil, assertErr
	}
	f.keyboard = &fakeKeyboard{}
	return f.keyboard, nil
}

var assertErr = &testErr{"fake: construction failed"}

type testErr struct{ s string }

func (e *testErr) Error() string { return e.s }

type fakePointer struct {
	moves   [][2]float64
	buttons []uint32
	focused wlnative.SurfaceHandle
	closed  bool
}

func (p *fakePointer) Move(dx, dy float64) { p.moves = append(p.moves, [2]float64{dx, dy}) }
func (p *fakePointer) MoveAbsolute(x, y float64, sw, sh int32) {
	p.moves = append(p.moves, [2]float64{x, y})
}
func (p *fakePointer) Button(code uint32, pressed bool) { p.buttons = append(p.buttons, code) }
func (p *fakePointer) Scroll(dh, dv float64)             {}
func (p *fakePointer) SetFocus(h wlnative.SurfaceHandle, x, y float64) { p.focused = h }
func (p *fakePointer) Close() error                                    { p.closed = true; return nil }

type fakeKeyboard struct {
	layoutErr   error
	pressed     []uint32
	focused     wlnative.SurfaceHandle
	focusCalled bool
	clearCalled bool
	closed      bool
}

func (k *fakeKeyboard) SetLayout(layout, model, variant, options string) error { return k.layoutErr }
func (k *fakeKeyboard) PressKey(keycode uint32, pressed bool, ts uint32)       { k.pressed = append(k.pressed, keycode) }
func (k *fakeKeyboard) SetRepeatRate(delayMS, intervalMS int32)                {}
func (k *fakeKeyboard) UpdateModifiers(depressed, latched, locked, group uint32) {}
func (k *fakeKeyboard) Focus(h wlnative.SurfaceHandle)                         { k.focused = h; k.focusCalled = true }
func (k *fakeKeyboard) ClearFocus()                                           { k.clearCalled = true }
func (k *fakeKeyboard) Close() error                                          { k.closed = true; return nil }

func TestNewPointerFailsWhenBackendFails(t *testing.T) {
	_, err := NewPointer(&fakeBackend{failPtr: true}, testLogger())
	assert.Error(t, err)
}

func TestPointerMethodsDelegateToNative(t *testing.T) {
	fb := &fakeBackend{}
	p, err := NewPointer(fb, testLogger())
	require.NoError(t, err)

	p.Move(1, 2)
	p.Click(0x110)
	p.SetFocus(5, 1, 1)

	assert.Equal(t, [][2]float64{{1, 2}}, fb.pointer.moves)
	assert.Equal(t, []uint32{0x110, 0x110}, fb.pointer.buttons)
	assert.Equal(t, wlnative.SurfaceHandle(5), fb.pointer.focused)
}

func TestPointerIsNoOpAfterClose(t *testing.T) {
	fb := &fakeBackend{}
	p, err := NewPointer(fb, testLogger())
	require.NoError(t, err)
	require.NoError(t, p.Close())

	p.Move(1, 1)
	assert.Empty(t, fb.pointer.moves)
}

func TestPointerCloseIsIdempotent(t *testing.T) {
	fb := &fakeBackend{}
	p, err := NewPointer(fb, testLogger())
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.NoError(t, p.Close())
	assert.True(t, fb.pointer.closed)
}

func TestNewKeyboardFailsWhenBackendFails(t *testing.T) {
	_, err := NewKeyboard(&fakeBackend{failKbd: true}, testLogger())
	assert.Error(t, err)
}

func TestKeyboardSetLayoutRecordsLayoutName(t *testing.T) {
	fb := &fakeBackend{}
	kb, err := NewKeyboard(fb, testLogger())
	require.NoError(t, err)

	require.NoError(t, kb.SetLayout("us", "", "", ""))
	assert.Equal(t, "us", kb.LayoutName())
}

func TestKeyboardFocusZeroHandleClearsFocus(t *testing.T) {
	fb := &fakeBackend{}
	kb, err := NewKeyboard(fb, testLogger())
	require.NoError(t, err)

	kb.Focus(0)
	assert.True(t, fb.keyboard.clearCalled)
	assert.False(t, fb.keyboard.focusCalled)

	kb.Focus(7)
	assert.True(t, fb.keyboard.focusCalled)
	assert.Equal(t, wlnative.SurfaceHandle(7), fb.keyboard.focused)
}

func TestKeyboardHasNoAutonomousState(t *testing.T) {
	fb := &fakeBackend{}
	kb, err := NewKeyboard(fb, testLogger())
	require.NoError(t, err)

	kb.ClearKeysPressed()
	assert.Empty(t, kb.GetKeycodesDown())
	assert.Equal(t, uint32(0), kb.GetLayoutGroup())
}
