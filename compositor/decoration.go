package compositor

import (
	"github.com/wlhost/compositor/bus"
	"github.com/wlhost/compositor/wlnative"
)

// onNewToplevelDecoration unconditionally forces server-side decorations,
// regardless of what the client requested, while still telling embedders
// what was requested via the ssd event so a host UI can reflect the
// client's original preference if it wants to.
func (c *Compositor) onNewToplevelDecoration(h wlnative.DecorationHandle, requestedSSD bool) {
	c.backend.SetDecorationServerSide(h)
	c.bus.Emit(bus.SSD, uintptr(h), requestedSSD)
}
