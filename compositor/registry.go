package compositor

import (
	"log/slog"

	"github.com/wlhost/compositor/bus"
	"github.com/wlhost/compositor/wlnative"
)

const (
	defaultConfigureWidth  = 800
	defaultConfigureHeight = 600
)

// surface is this core's record of one live XDG surface. It never
// outlives the native handle it wraps: onDestroy removes it from the
// registry in the same call that emits bus.Destroy.
type surface struct {
	wid     uint64
	handle  wlnative.SurfaceHandle
	toplevel bool
	mapped  bool
	title   string
	appID   string
	width   int32
	height  int32
}

// registry tracks every live surface, keyed both by its stable wid (the
// identity the bus and embedders use) and by its native handle (the
// identity wlnative callbacks arrive keyed by). wid is strictly increasing
// and never reused.
type registry struct {
	backend wlnative.Backend
	bus     *bus.Bus
	logger  *slog.Logger

	nextWid uint64
	byWid   map[uint64]*surface
	byHandle map[wlnative.SurfaceHandle]*surface
}

func newRegistry(backend wlnative.Backend, b *bus.Bus, logger *slog.Logger) *registry {
	return &registry{
		backend:  backend,
		bus:      b,
		logger:   logger,
		byWid:    make(map[uint64]*surface),
		byHandle: make(map[wlnative.SurfaceHandle]*surface),
	}
}

// onNewXDGSurface handles new_xdg_surface. Role-None surfaces are treated
// as Toplevel here, preserving the upstream behavior: wlnative.Backend.
// IsToplevel reports true for both WLR_XDG_SURFACE_ROLE_NONE and
// WLR_XDG_SURFACE_ROLE_TOPLEVEL, and only Popup-role surfaces are the
// ones actually filtered out below.
func (r *registry) onNewXDGSurface(h wlnative.SurfaceHandle, isToplevel bool, title, appID string, geom wlnative.Geometry) {
	if !r.backend.IsToplevel(h) {
		// Popup role: silently skipped, no record, no events.
		return
	}

	r.nextWid++
	s := &surface{
		wid:      r.nextWid,
		handle:   h,
		toplevel: isToplevel,
		width:    geom.Width,
		height:   geom.Height,
	}
	r.byWid[s.wid] = s
	r.byHandle[h] = s

	if err := r.backend.SceneAttach(h); err != nil {
		r.logger.Warn("attach scene node", "wid", s.wid, "err", err)
	}

	r.bus.Emit(bus.NewSurface, uintptr(h), s.wid, title, appID, geom.Width, geom.Height)
}

func (r *registry) onMap(h wlnative.SurfaceHandle) {
	s, ok := r.byHandle[h]
	if !ok {
		return
	}
	s.mapped = true
	s.title, s.appID = r.backend.SurfaceTitleAppID(h)
	geom := r.backend.SurfaceGeometry(h)
	s.width, s.height = geom.Width, geom.Height
	r.bus.Emit(bus.Map, s.wid, s.title, s.appID, s.width, s.height)
}

func (r *registry) onUnmap(h wlnative.SurfaceHandle) {
	s, ok := r.byHandle[h]
	if !ok {
		return
	}
	s.mapped = false
	r.bus.Emit(bus.Unmap, s.wid)
}

func (r *registry) onDestroy(h wlnative.SurfaceHandle) {
	s, ok := r.byHandle[h]
	if !ok {
		return
	}
	delete(r.byHandle, h)
	delete(r.byWid, s.wid)
	r.bus.Emit(bus.Destroy, s.wid)
}

func (r *registry) onCommit(h wlnative.SurfaceHandle) {
	s, ok := r.byHandle[h]
	if !ok {
		return
	}

	if s.toplevel && !r.backend.IsConfigured(h) {
		r.backend.SendInitialConfigure(h, defaultConfigureWidth, defaultConfigureHeight)
	}

	rects := damageRectsFromBoxes(r.backend.DamageRects(h))
	mapped := r.backend.IsMapped(h)
	r.bus.Emit(bus.Commit, s.wid, mapped, rects)

	if mapped {
		r.readback(s, h)
	}
}

// readback runs on a mapped surface's commit: read the client buffer's
// texture back into an owned BGRA buffer and emit surface-image. Failure
// is logged and the frame is dropped; the surface itself stays alive (a
// recoverable runtime failure, not an init failure).
func (r *registry) readback(s *surface, h wlnative.SurfaceHandle) {
	width, height, data, err := r.backend.ReadSurfaceTexture(h)
	if err != nil {
		r.logger.Warn("texture readback failed", "wid", s.wid, "err", err)
		return
	}
	frame, err := NewPixelFrame(width, height, data)
	if err != nil {
		r.logger.Warn("drop malformed readback", "wid", s.wid, "err", err)
		return
	}
	r.bus.Emit(bus.SurfaceImage, s.wid, frame)
}

func (r *registry) onRequestMove(h wlnative.SurfaceHandle, serial uint32) {
	if s, ok := r.byHandle[h]; ok {
		r.bus.Emit(bus.Move, s.wid, serial)
	}
}

// onRequestResize emits only (wid, serial): the resize edges are logged,
// not forwarded — the remote side decides geometry.
func (r *registry) onRequestResize(h wlnative.SurfaceHandle, serial, edges uint32) {
	s, ok := r.byHandle[h]
	if !ok {
		return
	}
	r.logger.Debug("resize requested", "wid", s.wid, "edges", edges)
	r.bus.Emit(bus.Resize, s.wid, serial)
}

func (r *registry) onRequestMaximize(h wlnative.SurfaceHandle) {
	if s, ok := r.byHandle[h]; ok {
		r.bus.Emit(bus.Maximize, s.wid)
	}
}

func (r *registry) onRequestFullscreen(h wlnative.SurfaceHandle) {
	if s, ok := r.byHandle[h]; ok {
		r.bus.Emit(bus.Fullscreen, s.wid)
	}
}

func (r *registry) onRequestMinimize(h wlnative.SurfaceHandle) {
	if s, ok := r.byHandle[h]; ok {
		r.bus.Emit(bus.Minimize, s.wid)
	}
}

// onSetTitle and onSetAppID log the change and additionally promote it
// onto the bus as set-title / set-app-id, purely additive events an
// embedder may ignore.
func (r *registry) onSetTitle(h wlnative.SurfaceHandle, title string) {
	s, ok := r.byHandle[h]
	if !ok {
		return
	}
	s.title = title
	r.logger.Debug("title changed", "wid", s.wid, "title", title)
	r.bus.Emit(bus.SetTitle, s.wid, title)
}

func (r *registry) onSetAppID(h wlnative.SurfaceHandle, appID string) {
	s, ok := r.byHandle[h]
	if !ok {
		return
	}
	s.appID = appID
	r.logger.Debug("app_id changed", "wid", s.wid, "app_id", appID)
	r.bus.Emit(bus.SetAppID, s.wid, appID)
}

// resize and focus back Compositor.Resize/Focus: they validate the wid is
// still live and return a typed error instead of the undefined behavior
// an unchecked call against a destroyed or unknown wid would invite.
func (r *registry) resize(wid uint64, width, height int32) error {
	s, ok := r.byWid[wid]
	if !ok {
		return ErrUnknownSurface
	}
	return r.backend.Resize(s.handle, width, height)
}

func (r *registry) focus(wid uint64, focused bool) error {
	s, ok := r.byWid[wid]
	if !ok {
		return ErrUnknownSurface
	}
	return r.backend.Focus(s.handle, focused)
}
