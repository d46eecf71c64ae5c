//go:build cgo && linux

// Package wlnative's cgo-backed implementation binds directly to a
// wlroots-shaped native compositor library: backend, renderer, allocator,
// compositor, XDG shell, scene graph, output layout, seat, and XDG
// decoration manager. Unlike wayland_cursor.go's client-side binding (which
// hand-rolls wl_interface/wl_message tables for an unstaged protocol), the
// server-side wlr_* API used here is a real, stable C ABI, so the cgo
// preamble only needs struct/function declarations, not protocol tables.
package wlnative

/*
#cgo pkg-config: wlroots-0.18 wayland-server xkbcommon
#cgo CFLAGS: -DWLR_USE_UNSTABLE

#include <stdlib.h>
#include <string.h>
#include <wayland-server-core.h>
#include <wlr/backend.h>
#include <wlr/backend/headless.h>
#include <wlr/render/allocator.h>
#include <wlr/render/wlr_renderer.h>
#include <wlr/types/wlr_compositor.h>
#include <wlr/types/wlr_cursor.h>
#include <wlr/types/wlr_data_device.h>
#include <wlr/types/wlr_output.h>
#include <wlr/types/wlr_output_layout.h>
#include <wlr/types/wlr_scene.h>
#include <wlr/types/wlr_seat.h>
#include <wlr/types/wlr_xdg_shell.h>
#include <wlr/types/wlr_xdg_decoration_v1.h>

// wlhost_surface wraps a single tracked xdg_surface. Its wl_listener
// members are embedded (not heap-pointers-to-listener). Each handler below
// recovers the wlhost_surface with wl_container_of and passes its stable
// Go-minted handle (from goAllocSurfaceHandle) to the exported Go
// callback, so no pointer arithmetic happens on the Go side.
typedef struct {
	struct wlr_xdg_surface *xdg_surface;
	struct wlr_scene_tree *scene_tree;
	struct wl_listener map;
	struct wl_listener unmap;
	struct wl_listener destroy;
	struct wl_listener commit;
	struct wl_listener new_popup;
	struct wl_listener request_move;
	struct wl_listener request_resize;
	struct wl_listener request_maximize;
	struct wl_listener request_fullscreen;
	struct wl_listener request_minimize;
	struct wl_listener set_title;
	struct wl_listener set_app_id;
	unsigned long handle;
	int configured;
} wlhost_surface;

typedef struct {
	struct wlr_output *output;
	struct wlr_scene_output *scene_output;
	struct wl_listener frame;
	struct wl_listener destroy;
	unsigned long handle;
} wlhost_output;

typedef struct {
	struct wlr_xdg_toplevel_decoration_v1 *deco;
	struct wl_listener destroy;
	unsigned long handle;
} wlhost_decoration;

typedef struct {
	struct wl_display *display;
	struct wl_event_loop *event_loop;
	struct wlr_backend *backend;
	struct wlr_renderer *renderer;
	struct wlr_allocator *allocator;
	struct wlr_compositor *compositor;
	struct wlr_xdg_shell *xdg_shell;
	struct wlr_scene *scene;
	struct wlr_scene_tree *scene_root;
	struct wlr_output_layout *output_layout;
	struct wlr_scene_output_layout *scene_layout;
	struct wlr_seat *seat;
	struct wlr_cursor *cursor;
	struct wlr_xdg_decoration_manager_v1 *deco_manager;
	struct wlr_data_device_manager *data_device_manager;

	struct wl_listener new_xdg_surface;
	struct wl_listener new_output;
	struct wl_listener new_decoration;

	int32_t out_w, out_h;
} wlhost_state;

extern void goNewXDGSurface(unsigned long id, int is_toplevel, char *title, char *app_id,
	int32_t gx, int32_t gy, int32_t gw, int32_t gh);
extern void goSurfaceMap(unsigned long id);
extern void goSurfaceUnmap(unsigned long id);
extern void goSurfaceDestroy(unsigned long id);
extern void goSurfaceCommit(unsigned long id);
extern void goRequestMove(unsigned long id, unsigned int serial);
extern void goRequestResize(unsigned long id, unsigned int serial, unsigned int edges);
extern void goRequestMaximize(unsigned long id);
extern void goRequestFullscreen(unsigned long id);
extern void goRequestMinimize(unsigned long id);
extern void goSetTitle(unsigned long id, char *title);
extern void goSetAppID(unsigned long id, char *app_id);
extern void goNewOutput(unsigned long id);
extern void goOutputFrame(unsigned long id);
extern void goOutputDestroy(unsigned long id);
extern void goNewToplevelDecoration(unsigned long id, int requested_ssd);
extern void goUnregisterDecoration(unsigned long id);
extern void goKeyboardLED(unsigned int mask);

static void handle_map(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, map);
	goSurfaceMap(s->handle);
}
static void handle_unmap(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, unmap);
	goSurfaceUnmap(s->handle);
}
static void handle_destroy(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, destroy);
	goSurfaceDestroy(s->handle);
}
static void handle_commit(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, commit);
	goSurfaceCommit(s->handle);
}
static void handle_request_move(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, request_move);
	struct wlr_xdg_toplevel_move_event *event = data;
	goRequestMove(s->handle, event->serial);
}
static void handle_request_resize(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, request_resize);
	struct wlr_xdg_toplevel_resize_event *event = data;
	goRequestResize(s->handle, event->serial, event->edges);
}
static void handle_request_maximize(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, request_maximize);
	goRequestMaximize(s->handle);
}
static void handle_request_fullscreen(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, request_fullscreen);
	goRequestFullscreen(s->handle);
}
static void handle_request_minimize(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, request_minimize);
	goRequestMinimize(s->handle);
}
static void handle_set_title(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, set_title);
	goSetTitle(s->handle, (char *)(s->xdg_surface->toplevel ? s->xdg_surface->toplevel->title : ""));
}
static void handle_set_app_id(struct wl_listener *l, void *data) {
	wlhost_surface *s = wl_container_of(l, s, set_app_id);
	goSetAppID(s->handle, (char *)(s->xdg_surface->toplevel ? s->xdg_surface->toplevel->app_id : ""));
}

static void handle_output_frame(struct wl_listener *l, void *data) {
	wlhost_output *o = wl_container_of(l, o, frame);
	goOutputFrame(o->handle);
}
static void handle_output_destroy(struct wl_listener *l, void *data) {
	wlhost_output *o = wl_container_of(l, o, destroy);
	goOutputDestroy(o->handle);
}
static void handle_decoration_destroy(struct wl_listener *l, void *data) {
	wlhost_decoration *d = wl_container_of(l, d, destroy);
	goUnregisterDecoration(d->handle);
}

extern unsigned long goAllocSurfaceHandle(void);
extern unsigned long goAllocOutputHandle(void);
extern unsigned long goAllocDecorationHandle(void);
extern void goRegisterSurface(unsigned long id, wlhost_surface *s);
extern void goRegisterOutput(unsigned long id, wlhost_output *o);
extern void goRegisterDecoration(unsigned long id, wlhost_decoration *d);

static void wlhost_bind_surface_signals(wlhost_surface *s) {
	struct wlr_xdg_surface *xdg_surface = s->xdg_surface;
	s->map.notify = handle_map;
	s->unmap.notify = handle_unmap;
	s->destroy.notify = handle_destroy;
	s->commit.notify = handle_commit;
	wl_signal_add(&xdg_surface->surface->events.map, &s->map);
	wl_signal_add(&xdg_surface->surface->events.unmap, &s->unmap);
	wl_signal_add(&xdg_surface->events.destroy, &s->destroy);
	wl_signal_add(&xdg_surface->surface->events.commit, &s->commit);
	if (xdg_surface->toplevel) {
		s->request_move.notify = handle_request_move;
		s->request_resize.notify = handle_request_resize;
		s->request_maximize.notify = handle_request_maximize;
		s->request_fullscreen.notify = handle_request_fullscreen;
		s->request_minimize.notify = handle_request_minimize;
		s->set_title.notify = handle_set_title;
		s->set_app_id.notify = handle_set_app_id;
		wl_signal_add(&xdg_surface->toplevel->events.request_move, &s->request_move);
		wl_signal_add(&xdg_surface->toplevel->events.request_resize, &s->request_resize);
		wl_signal_add(&xdg_surface->toplevel->events.request_maximize, &s->request_maximize);
		wl_signal_add(&xdg_surface->toplevel->events.request_fullscreen, &s->request_fullscreen);
		wl_signal_add(&xdg_surface->toplevel->events.request_minimize, &s->request_minimize);
		wl_signal_add(&xdg_surface->toplevel->events.set_title, &s->set_title);
		wl_signal_add(&xdg_surface->toplevel->events.set_app_id, &s->set_app_id);
	}
	goRegisterSurface(s->handle, s);
}

static void handle_new_xdg_surface(struct wl_listener *l, void *data) {
	struct wlr_xdg_surface *xdg_surface = data;
	wlhost_surface *s = calloc(1, sizeof(wlhost_surface));
	s->xdg_surface = xdg_surface;
	s->handle = goAllocSurfaceHandle();
	wlhost_bind_surface_signals(s);

	int is_toplevel = xdg_surface->toplevel != NULL;
	struct wlr_box geo;
	wlr_xdg_surface_get_geometry(xdg_surface, &geo);
	const char *title = (is_toplevel && xdg_surface->toplevel->title) ? xdg_surface->toplevel->title : "";
	const char *app_id = (is_toplevel && xdg_surface->toplevel->app_id) ? xdg_surface->toplevel->app_id : "";
	goNewXDGSurface(s->handle, is_toplevel, (char *)title, (char *)app_id, geo.x, geo.y, geo.width, geo.height);
}

static void handle_new_output(struct wl_listener *l, void *data) {
	struct wlr_output *output = data;
	wlhost_output *o = calloc(1, sizeof(wlhost_output));
	o->output = output;
	o->handle = goAllocOutputHandle();
	o->frame.notify = handle_output_frame;
	o->destroy.notify = handle_output_destroy;
	wl_signal_add(&output->events.frame, &o->frame);
	wl_signal_add(&output->events.destroy, &o->destroy);
	goRegisterOutput(o->handle, o);
	goNewOutput(o->handle);
}

static void handle_new_decoration(struct wl_listener *l, void *data) {
	struct wlr_xdg_toplevel_decoration_v1 *deco = data;
	wlhost_decoration *d = calloc(1, sizeof(wlhost_decoration));
	d->deco = deco;
	d->handle = goAllocDecorationHandle();
	d->destroy.notify = handle_decoration_destroy;
	wl_signal_add(&deco->events.destroy, &d->destroy);
	goRegisterDecoration(d->handle, d);
	goNewToplevelDecoration(d->handle, deco->requested_mode == WLR_XDG_TOPLEVEL_DECORATION_V1_MODE_SERVER_SIDE);
}

// wlhost_output_enable commits a minimal output_state that just flips the
// output on. wlr_output_init_render only prepares the output to be
// rendered to; nothing is actually displayed until a state commit with
// enabled=true goes through.
static int wlhost_output_enable(struct wlr_output *output) {
	struct wlr_output_state state;
	wlr_output_state_init(&state);
	wlr_output_state_set_enabled(&state, true);
	bool ok = wlr_output_commit_state(output, &state);
	wlr_output_state_finish(&state);
	return ok ? 0 : -1;
}

static wlhost_state *wlhost_state_new(int32_t out_w, int32_t out_h) {
	wlhost_state *st = calloc(1, sizeof(wlhost_state));
	if (!st) return NULL;
	st->out_w = out_w;
	st->out_h = out_h;
	return st;
}

static void wlhost_state_free(wlhost_state *st) {
	free(st);
}

// Narrow helpers exported so Go never needs to know wlr_* struct layouts
// beyond the opaque pointer itself.
static int wlhost_init(wlhost_state *st) {
	st->display = wl_display_create();
	if (!st->display) return -1;
	st->event_loop = wl_display_get_event_loop(st->display);

	st->backend = wlr_headless_backend_create(st->event_loop);
	if (!st->backend) return -2;

	struct wlr_output *output = wlr_headless_add_output(st->backend, st->out_w, st->out_h);
	if (!output) return -3;

	st->renderer = wlr_renderer_autocreate(st->backend);
	if (!st->renderer) return -4;
	wlr_renderer_init_wl_display(st->renderer, st->display);

	st->allocator = wlr_allocator_autocreate(st->backend, st->renderer);
	if (!st->allocator) return -5;

	st->compositor = wlr_compositor_create(st->display, 5, st->renderer);
	if (!st->compositor) return -6;
	wlr_subcompositor_create(st->display);
	st->data_device_manager = wlr_data_device_manager_create(st->display);

	st->output_layout = wlr_output_layout_create(st->display);
	if (!st->output_layout) return -7;

	st->scene = wlr_scene_create();
	if (!st->scene) return -8;
	st->scene_root = &st->scene->tree;
	st->scene_layout = wlr_scene_attach_output_layout(st->scene, st->output_layout);

	st->xdg_shell = wlr_xdg_shell_create(st->display, 3);
	if (!st->xdg_shell) return -9;
	st->new_xdg_surface.notify = handle_new_xdg_surface;
	wl_signal_add(&st->xdg_shell->events.new_surface, &st->new_xdg_surface);

	st->seat = wlr_seat_create(st->display, "seat0");
	if (!st->seat) return -10;

	st->cursor = wlr_cursor_create();
	if (!st->cursor) return -11;
	wlr_cursor_attach_output_layout(st->cursor, st->output_layout);

	st->new_output.notify = handle_new_output;
	wl_signal_add(&st->backend->events.new_output, &st->new_output);

	st->deco_manager = wlr_xdg_decoration_manager_v1_create(st->display);
	if (st->deco_manager) {
		st->new_decoration.notify = handle_new_decoration;
		wl_signal_add(&st->deco_manager->events.new_toplevel_decoration, &st->new_decoration);
	}

	return 0;
}

static const char *wlhost_add_socket(wlhost_state *st) {
	return wl_display_add_socket_auto(st->display);
}

static void wlhost_cleanup(wlhost_state *st) {
	if (st->display) {
		wl_display_destroy_clients(st->display);
		if (st->scene) wlr_scene_node_destroy(&st->scene->tree.node);
		wlr_xcursor_manager_destroy(NULL);
		if (st->allocator) wlr_allocator_destroy(st->allocator);
		if (st->renderer) wlr_renderer_destroy(st->renderer);
		if (st->backend) wlr_backend_destroy(st->backend);
		wl_display_destroy(st->display);
		st->display = NULL;
	}
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

type cgoBackend struct {
	mu    sync.Mutex
	state *C.wlhost_state
	cb    Callbacks
	surfs map[uintptr]*C.wlhost_surface
	outs  map[uintptr]*C.wlhost_output
	decos map[uintptr]*C.wlhost_decoration

	nextWid uint64
	nextOid uint64
	nextDid uint64
}

// NewBackend constructs the real, cgo-backed compositor backend.
func NewBackend() Backend {
	return &cgoBackend{
		surfs: make(map[uintptr]*C.wlhost_surface),
		outs:  make(map[uintptr]*C.wlhost_output),
		decos: make(map[uintptr]*C.wlhost_decoration),
	}
}

// active is the single cgoBackend the static C trampolines above dispatch
// into. A file-scope global keyed by compositor identity would be a smell
// if more than one Compositor could run in a process; this repo's
// lifecycle (one headless compositor per embedder process) makes that
// case moot in practice, so a single slot replaces what would otherwise
// be a pointer-keyed registry.
var activeMu sync.Mutex
var active *cgoBackend

func (b *cgoBackend) Initialize(cfg Config, cb Callbacks) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, h := cfg.OutputWidth, cfg.OutputHeight
	if w <= 0 {
		w = 1920
	}
	if h <= 0 {
		h = 1080
	}

	st := C.wlhost_state_new(C.int32_t(w), C.int32_t(h))
	if st == nil {
		return "", fmt.Errorf("wlnative: allocate native state: out of memory")
	}

	// active must be set, and cb assigned, before wlhost_init runs: the
	// headless backend's sole output is created synchronously inside it
	// and fires new_output before this call returns.
	b.state = st
	b.cb = cb
	activeMu.Lock()
	active = b
	activeMu.Unlock()

	if rc := C.wlhost_init(st); rc != 0 {
		activeMu.Lock()
		active = nil
		activeMu.Unlock()
		C.wlhost_state_free(st)
		b.state = nil
		return "", fmt.Errorf("wlnative: initialize native compositor stack: step %d failed", int(rc))
	}

	socket := C.wlhost_add_socket(st)
	if socket == nil {
		C.wlhost_cleanup(st)
		activeMu.Lock()
		active = nil
		activeMu.Unlock()
		return "", fmt.Errorf("wlnative: add wayland socket: auto-naming exhausted")
	}
	return C.GoString(socket), nil
}

func (b *cgoBackend) EventLoopFD() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil {
		return -1, fmt.Errorf("wlnative: not initialized")
	}
	return int(C.wl_event_loop_get_fd(b.state.event_loop)), nil
}

func (b *cgoBackend) RunBlocking() {
	b.mu.Lock()
	st := b.state
	b.mu.Unlock()
	if st == nil {
		return
	}
	C.wl_display_run(st.display)
}

func (b *cgoBackend) DispatchOnce() error {
	b.mu.Lock()
	st := b.state
	b.mu.Unlock()
	if st == nil {
		return fmt.Errorf("wlnative: not initialized")
	}
	C.wl_event_loop_dispatch(st.event_loop, 0)
	C.wl_display_flush_clients(st.display)
	return nil
}

func (b *cgoBackend) Cleanup() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil {
		return nil
	}
	activeMu.Lock()
	if active == b {
		active = nil
	}
	activeMu.Unlock()

	C.wlhost_cleanup(b.state)
	C.wlhost_state_free(b.state)
	b.state = nil
	return nil
}

func (b *cgoBackend) SceneAttach(h SurfaceHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok {
		return fmt.Errorf("wlnative: unknown surface handle")
	}
	tree := C.wlr_scene_xdg_surface_create(b.state.scene_root, s.xdg_surface)
	if tree == nil {
		return fmt.Errorf("wlnative: create scene node for surface")
	}
	s.scene_tree = tree
	return nil
}

func (b *cgoBackend) IsToplevel(h SurfaceHandle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok {
		return false
	}
	return s.xdg_surface.role == C.WLR_XDG_SURFACE_ROLE_TOPLEVEL || s.xdg_surface.role == C.WLR_XDG_SURFACE_ROLE_NONE
}

func (b *cgoBackend) IsConfigured(h SurfaceHandle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	return ok && s.configured != 0
}

func (b *cgoBackend) SendInitialConfigure(h SurfaceHandle, width, height int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok || s.xdg_surface.toplevel == nil {
		return
	}
	C.wlr_xdg_toplevel_set_size(s.xdg_surface.toplevel, C.int(width), C.int(height))
	C.wlr_xdg_surface_schedule_configure(s.xdg_surface)
	s.configured = 1
}

func (b *cgoBackend) SurfaceGeometry(h SurfaceHandle) Geometry {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok {
		return Geometry{}
	}
	var box C.struct_wlr_box
	C.wlr_xdg_surface_get_geometry(s.xdg_surface, &box)
	return Geometry{X: int32(box.x), Y: int32(box.y), Width: int32(box.width), Height: int32(box.height)}
}

func (b *cgoBackend) SurfaceTitleAppID(h SurfaceHandle) (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok || s.xdg_surface.toplevel == nil {
		return "", ""
	}
	t := s.xdg_surface.toplevel
	title, appID := "", ""
	if t.title != nil {
		title = C.GoString(t.title)
	}
	if t.app_id != nil {
		appID = C.GoString(t.app_id)
	}
	return title, appID
}

func (b *cgoBackend) IsMapped(h SurfaceHandle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	return ok && bool(s.xdg_surface.surface.mapped)
}

func (b *cgoBackend) DamageRects(h SurfaceHandle) [][4]int32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok {
		return nil
	}
	region := &s.xdg_surface.surface.buffer_damage
	n := int(C.pixman_region32_n_rects(region))
	if n == 0 {
		return nil
	}
	rectsPtr := C.pixman_region32_rectangles(region, nil)
	rects := unsafe.Slice(rectsPtr, n)
	out := make([][4]int32, 0, n)
	for _, r := range rects {
		out = append(out, [4]int32{int32(r.x1), int32(r.y1), int32(r.x2), int32(r.y2)})
	}
	return out
}

func (b *cgoBackend) ReadSurfaceTexture(h SurfaceHandle) (int32, int32, []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok {
		return 0, 0, nil, fmt.Errorf("wlnative: unknown surface handle")
	}
	surface := s.xdg_surface.surface
	if !bool(surface.mapped) || surface.buffer == nil {
		return 0, 0, nil, fmt.Errorf("wlnative: surface has no current buffer")
	}
	tex := surface.buffer.texture
	if tex == nil {
		return 0, 0, nil, fmt.Errorf("wlnative: surface buffer has no texture")
	}
	width := int32(tex.width)
	height := int32(tex.height)
	stride := width * 4
	buf := make([]byte, int(stride)*int(height))
	opts := C.struct_wlr_texture_read_pixels_options{
		data:   unsafe.Pointer(&buf[0]),
		format: C.DRM_FORMAT_ABGR8888,
		stride: C.uint32_t(stride),
	}
	if !bool(C.wlr_texture_read_pixels(tex, &opts)) {
		return 0, 0, nil, fmt.Errorf("wlnative: texture readback failed")
	}
	return width, height, buf, nil
}

func (b *cgoBackend) InitOutputRendering(h OutputHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.outs[uintptr(h)]
	if !ok {
		return fmt.Errorf("wlnative: unknown output handle")
	}
	if !bool(C.wlr_output_init_render(o.output, b.state.allocator, b.state.renderer)) {
		return fmt.Errorf("wlnative: init output render")
	}
	if C.wlhost_output_enable(o.output) != 0 {
		return fmt.Errorf("wlnative: commit output state: enable output")
	}
	return nil
}

func (b *cgoBackend) CreateSceneOutput(h OutputHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.outs[uintptr(h)]
	if !ok {
		return fmt.Errorf("wlnative: unknown output handle")
	}
	layoutOut := C.wlr_output_layout_add_auto(b.state.output_layout, o.output)
	if layoutOut == nil {
		return fmt.Errorf("wlnative: add output to layout")
	}
	so := C.wlr_scene_output_create(b.state.scene, o.output)
	if so == nil {
		return fmt.Errorf("wlnative: create scene output")
	}
	o.scene_output = so
	C.wlr_scene_output_layout_add_output(b.state.scene_layout, layoutOut, so)
	return nil
}

func (b *cgoBackend) CommitSceneOutput(h OutputHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.outs[uintptr(h)]
	if !ok || o.scene_output == nil {
		return fmt.Errorf("wlnative: scene output not ready")
	}
	if !bool(C.wlr_scene_output_commit(o.scene_output, nil)) {
		return fmt.Errorf("wlnative: commit scene output")
	}
	return nil
}

func (b *cgoBackend) ScheduleNextFrame(h OutputHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.outs[uintptr(h)]
	if !ok {
		return
	}
	// send_frame_done flushes wl_surface.frame presentation callbacks to
	// clients; it does not re-arm the output's own frame signal.
	// schedule_frame is the call that does that.
	var now C.struct_timespec
	C.clock_gettime(C.CLOCK_MONOTONIC, &now)
	C.wlr_scene_output_send_frame_done(o.scene_output, &now)
	C.wlr_output_schedule_frame(o.output)
}

func (b *cgoBackend) SetDecorationServerSide(h DecorationHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.decos[uintptr(h)]
	if !ok {
		return
	}
	C.wlr_xdg_toplevel_decoration_v1_set_mode(d.deco, C.WLR_XDG_TOPLEVEL_DECORATION_V1_MODE_SERVER_SIDE)
}

func (b *cgoBackend) Resize(h SurfaceHandle, width, height int32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok || s.xdg_surface.toplevel == nil {
		return fmt.Errorf("wlnative: unknown or non-toplevel surface")
	}
	C.wlr_xdg_toplevel_set_size(s.xdg_surface.toplevel, C.int(width), C.int(height))
	return nil
}

func (b *cgoBackend) Focus(h SurfaceHandle, focused bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.surfs[uintptr(h)]
	if !ok || s.xdg_surface.toplevel == nil {
		return fmt.Errorf("wlnative: unknown or non-toplevel surface")
	}
	C.wlr_xdg_toplevel_set_activated(s.xdg_surface.toplevel, C.bool(focused))
	return nil
}

func (b *cgoBackend) NewPointer() (Pointer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil {
		return nil, fmt.Errorf("wlnative: not initialized")
	}
	return &cgoPointer{backend: b}, nil
}

func (b *cgoBackend) NewKeyboard() (Keyboard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil {
		return nil, fmt.Errorf("wlnative: not initialized")
	}
	dev := C.wlr_keyboard_create_virtual(b.state.seat)
	if dev == nil {
		return nil, fmt.Errorf("wlnative: create virtual keyboard device")
	}
	return &cgoKeyboard{backend: b, dev: dev}, nil
}

type cgoPointer struct {
	backend *cgoBackend
}

func (p *cgoPointer) Move(dx, dy float64) {
	p.backend.mu.Lock()
	defer p.backend.mu.Unlock()
	C.wlr_cursor_move(p.backend.state.cursor, nil, C.double(dx), C.double(dy))
}

func (p *cgoPointer) MoveAbsolute(x, y float64, sw, sh int32) {
	p.backend.mu.Lock()
	defer p.backend.mu.Unlock()
	if sw <= 0 || sh <= 0 {
		return
	}
	C.wlr_cursor_warp_absolute(p.backend.state.cursor, nil, C.double(x)/C.double(sw), C.double(y)/C.double(sh))
}

func (p *cgoPointer) Button(code uint32, pressed bool) {
	p.backend.mu.Lock()
	defer p.backend.mu.Unlock()
	state := C.WL_POINTER_BUTTON_STATE_RELEASED
	if pressed {
		state = C.WL_POINTER_BUTTON_STATE_PRESSED
	}
	C.wlr_seat_pointer_notify_button(p.backend.state.seat, 0, C.uint32_t(code), C.uint32_t(state))
}

func (p *cgoPointer) Scroll(dh, dv float64) {
	p.backend.mu.Lock()
	defer p.backend.mu.Unlock()
	if dv != 0 {
		C.wlr_seat_pointer_notify_axis(p.backend.state.seat, 0, C.WLR_AXIS_ORIENTATION_VERTICAL,
			C.double(dv), C.int32_t(0), C.WLR_AXIS_SOURCE_WHEEL, C.WL_POINTER_AXIS_RELATIVE_DIRECTION_IDENTICAL)
	}
	if dh != 0 {
		C.wlr_seat_pointer_notify_axis(p.backend.state.seat, 0, C.WLR_AXIS_ORIENTATION_HORIZONTAL,
			C.double(dh), C.int32_t(0), C.WLR_AXIS_SOURCE_WHEEL, C.WL_POINTER_AXIS_RELATIVE_DIRECTION_IDENTICAL)
	}
}

func (p *cgoPointer) SetFocus(h SurfaceHandle, x, y float64) {
	p.backend.mu.Lock()
	defer p.backend.mu.Unlock()
	if h == 0 {
		C.wlr_seat_pointer_notify_clear_focus(p.backend.state.seat)
		return
	}
	s, ok := p.backend.surfs[uintptr(h)]
	if !ok {
		return
	}
	C.wlr_seat_pointer_notify_enter(p.backend.state.seat, s.xdg_surface.surface, C.double(x), C.double(y))
}

func (p *cgoPointer) Close() error { return nil }

type cgoKeyboard struct {
	backend *cgoBackend
	dev     *C.struct_wlr_keyboard
}

func (k *cgoKeyboard) SetLayout(layout, model, variant, options string) error {
	cLayout, cModel, cVariant, cOptions := C.CString(layout), C.CString(model), C.CString(variant), C.CString(options)
	defer C.free(unsafe.Pointer(cLayout))
	defer C.free(unsafe.Pointer(cModel))
	defer C.free(unsafe.Pointer(cVariant))
	defer C.free(unsafe.Pointer(cOptions))

	ctx := C.xkb_context_new(C.XKB_CONTEXT_NO_FLAGS)
	if ctx == nil {
		return fmt.Errorf("wlnative: create xkb context")
	}
	defer C.xkb_context_unref(ctx)

	names := C.struct_xkb_rule_names{
		layout:  cLayout,
		model:   cModel,
		variant: cVariant,
		options: cOptions,
	}
	keymap := C.xkb_keymap_new_from_names(ctx, &names, C.XKB_KEYMAP_COMPILE_NO_FLAGS)
	if keymap == nil {
		return fmt.Errorf("wlnative: compile xkb keymap for layout %q", layout)
	}
	defer C.xkb_keymap_unref(keymap)

	k.backend.mu.Lock()
	defer k.backend.mu.Unlock()
	C.wlr_keyboard_set_keymap(k.dev, keymap)
	return nil
}

func (k *cgoKeyboard) PressKey(keycode uint32, pressed bool, timestampMS uint32) {
	k.backend.mu.Lock()
	defer k.backend.mu.Unlock()
	state := C.WL_KEYBOARD_KEY_STATE_RELEASED
	if pressed {
		state = C.WL_KEYBOARD_KEY_STATE_PRESSED
	}
	C.wlr_seat_keyboard_notify_key(k.backend.state.seat, C.uint32_t(timestampMS), C.uint32_t(keycode), C.uint32_t(state))
}

func (k *cgoKeyboard) SetRepeatRate(delayMS, intervalMS int32) {
	k.backend.mu.Lock()
	defer k.backend.mu.Unlock()
	// wlroots takes a repeat rate in Hz, not an interval; 0 disables repeat.
	var rateHz int32
	if intervalMS > 0 {
		rateHz = 1000 / intervalMS
	}
	C.wlr_keyboard_set_repeat_info(k.dev, C.int32_t(rateHz), C.int32_t(delayMS))
}

func (k *cgoKeyboard) UpdateModifiers(depressed, latched, locked, group uint32) {
	k.backend.mu.Lock()
	defer k.backend.mu.Unlock()
	C.wlr_keyboard_notify_modifiers(k.dev, C.uint32_t(depressed), C.uint32_t(latched), C.uint32_t(locked), C.uint32_t(group))
}

func (k *cgoKeyboard) Focus(h SurfaceHandle) {
	k.backend.mu.Lock()
	defer k.backend.mu.Unlock()
	s, ok := k.backend.surfs[uintptr(h)]
	if !ok {
		return
	}
	C.wlr_seat_keyboard_notify_enter(k.backend.state.seat, s.xdg_surface.surface, nil, 0, nil)
}

func (k *cgoKeyboard) ClearFocus() {
	k.backend.mu.Lock()
	defer k.backend.mu.Unlock()
	C.wlr_seat_keyboard_notify_clear_focus(k.backend.state.seat)
}

func (k *cgoKeyboard) Close() error { return nil }

// --- C-callable trampolines -------------------------------------------
//
// Every new_xdg_surface/new_output/new_toplevel_decoration handler in the
// cgo preamble above allocates its wrapper struct and mints a stable Go
// handle for it through the three goAlloc* functions, then registers the
// wrapper's C pointer through the matching goRegister* function before
// invoking the corresponding goNewXDGSurface/goNewOutput/
// goNewToplevelDecoration dispatcher. The handle itself (not a
// container_of cast) is what every later lookup in cgoBackend keys off of.

//export goAllocSurfaceHandle
func goAllocSurfaceHandle() C.ulong {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active == nil {
		return 0
	}
	active.nextWid++
	return C.ulong(active.nextWid)
}

//export goAllocOutputHandle
func goAllocOutputHandle() C.ulong {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active == nil {
		return 0
	}
	active.nextOid++
	return C.ulong(active.nextOid)
}

//export goAllocDecorationHandle
func goAllocDecorationHandle() C.ulong {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active == nil {
		return 0
	}
	active.nextDid++
	return C.ulong(active.nextDid)
}

//export goRegisterSurface
func goRegisterSurface(id C.ulong, s *C.wlhost_surface) {
	withActive(func(b *cgoBackend) { b.surfs[uintptr(id)] = s })
}

//export goRegisterOutput
func goRegisterOutput(id C.ulong, o *C.wlhost_output) {
	withActive(func(b *cgoBackend) { b.outs[uintptr(id)] = o })
}

//export goRegisterDecoration
func goRegisterDecoration(id C.ulong, d *C.wlhost_decoration) {
	withActive(func(b *cgoBackend) { b.decos[uintptr(id)] = d })
}

//export goNewXDGSurface
func goNewXDGSurface(id C.ulong, isToplevel C.int, title, appID *C.char, gx, gy, gw, gh C.int32_t) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnNewXDGSurface != nil {
			b.cb.OnNewXDGSurface(SurfaceHandle(id), isToplevel != 0, cStr(title), cStr(appID),
				Geometry{X: int32(gx), Y: int32(gy), Width: int32(gw), Height: int32(gh)})
		}
	})
}

//export goSurfaceMap
func goSurfaceMap(id C.ulong) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnMap != nil {
			b.cb.OnMap(SurfaceHandle(id))
		}
	})
}

//export goSurfaceUnmap
func goSurfaceUnmap(id C.ulong) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnUnmap != nil {
			b.cb.OnUnmap(SurfaceHandle(id))
		}
	})
}

//export goSurfaceDestroy
func goSurfaceDestroy(id C.ulong) {
	withActive(func(b *cgoBackend) {
		delete(b.surfs, uintptr(id))
		if b.cb.OnDestroy != nil {
			b.cb.OnDestroy(SurfaceHandle(id))
		}
	})
}

//export goSurfaceCommit
func goSurfaceCommit(id C.ulong) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnCommit != nil {
			b.cb.OnCommit(SurfaceHandle(id))
		}
	})
}

//export goRequestMove
func goRequestMove(id C.ulong, serial C.uint) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnRequestMove != nil {
			b.cb.OnRequestMove(SurfaceHandle(id), uint32(serial))
		}
	})
}

//export goRequestResize
func goRequestResize(id C.ulong, serial, edges C.uint) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnRequestResize != nil {
			b.cb.OnRequestResize(SurfaceHandle(id), uint32(serial), uint32(edges))
		}
	})
}

//export goRequestMaximize
func goRequestMaximize(id C.ulong) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnRequestMaximize != nil {
			b.cb.OnRequestMaximize(SurfaceHandle(id))
		}
	})
}

//export goRequestFullscreen
func goRequestFullscreen(id C.ulong) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnRequestFullscreen != nil {
			b.cb.OnRequestFullscreen(SurfaceHandle(id))
		}
	})
}

//export goRequestMinimize
func goRequestMinimize(id C.ulong) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnRequestMinimize != nil {
			b.cb.OnRequestMinimize(SurfaceHandle(id))
		}
	})
}

//export goSetTitle
func goSetTitle(id C.ulong, title *C.char) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnSetTitle != nil {
			b.cb.OnSetTitle(SurfaceHandle(id), cStr(title))
		}
	})
}

//export goSetAppID
func goSetAppID(id C.ulong, appID *C.char) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnSetAppID != nil {
			b.cb.OnSetAppID(SurfaceHandle(id), cStr(appID))
		}
	})
}

//export goNewOutput
func goNewOutput(id C.ulong) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnNewOutput != nil {
			b.cb.OnNewOutput(OutputHandle(id))
		}
	})
}

//export goOutputFrame
func goOutputFrame(id C.ulong) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnOutputFrame != nil {
			b.cb.OnOutputFrame(OutputHandle(id))
		}
	})
}

//export goOutputDestroy
func goOutputDestroy(id C.ulong) {
	withActive(func(b *cgoBackend) {
		delete(b.outs, uintptr(id))
		if b.cb.OnOutputDestroy != nil {
			b.cb.OnOutputDestroy(OutputHandle(id))
		}
	})
}

//export goNewToplevelDecoration
func goNewToplevelDecoration(id C.ulong, requestedSSD C.int) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnNewToplevelDecoration != nil {
			b.cb.OnNewToplevelDecoration(DecorationHandle(id), requestedSSD != 0)
		}
	})
}

//export goUnregisterDecoration
func goUnregisterDecoration(id C.ulong) {
	withActive(func(b *cgoBackend) {
		delete(b.decos, uintptr(id))
	})
}

//export goKeyboardLED
func goKeyboardLED(mask C.uint) {
	withActive(func(b *cgoBackend) {
		if b.cb.OnKeyboardLED != nil {
			b.cb.OnKeyboardLED(uint32(mask))
		}
	})
}

func cStr(s *C.char) string {
	if s == nil {
		return ""
	}
	return C.GoString(s)
}

func withActive(fn func(b *cgoBackend)) {
	activeMu.Lock()
	b := active
	activeMu.Unlock()
	if b == nil {
		return
	}
	fn(b)
}
