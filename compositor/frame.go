package compositor

import "fmt"

// bytesPerPixel is fixed by the pixel format this core emits: BGRA,
// DRM_FORMAT_ABGR8888, 32 bpp, no padding rows.
const bytesPerPixel = 4

// DamageRect is a surface-local damage rectangle. Width and height are
// always positive; a region with no damage yields an empty slice, never a
// zero-sized rect.
type DamageRect struct {
	X, Y          int32
	Width, Height int32
}

// damageRectsFromBoxes converts (x1,y1,x2,y2) box tuples, as returned by
// wlnative.Backend.DamageRects, into the rectangles this core publishes on
// the bus. Degenerate boxes (x2<=x1 or y2<=y1) are dropped rather than
// emitted as a zero/negative-size rect.
func damageRectsFromBoxes(boxes [][4]int32) []DamageRect {
	rects := make([]DamageRect, 0, len(boxes))
	for _, b := range boxes {
		x1, y1, x2, y2 := b[0], b[1], b[2], b[3]
		w, h := x2-x1, y2-y1
		if w <= 0 || h <= 0 {
			continue
		}
		rects = append(rects, DamageRect{X: x1, Y: y1, Width: w, Height: h})
	}
	return rects
}

// PixelFrame is a readback of one surface's client buffer: BGRA pixels,
// stride = 4*width, no padding. The buffer is transferred to the bus
// listener on emission; the core keeps no reference after surface-image
// fires.
type PixelFrame struct {
	Width  int32
	Height int32
	Stride int32
	Bytes  []byte
}

// NewPixelFrame validates and wraps a readback buffer. It returns an error
// rather than panicking so a native-layer readback bug surfaces as a
// recoverable per-frame failure, handled the same way as any other failed
// readback in the compositor's commit handler: logged and dropped, the
// surface stays alive.
func NewPixelFrame(width, height int32, data []byte) (PixelFrame, error) {
	if width <= 0 || height <= 0 {
		return PixelFrame{}, fmt.Errorf("compositor: invalid frame dimensions %dx%d", width, height)
	}
	stride := width * bytesPerPixel
	want := int(stride) * int(height)
	if len(data) != want {
		return PixelFrame{}, fmt.Errorf("compositor: frame buffer length %d, want %d (stride %d * height %d)",
			len(data), want, stride, height)
	}
	return PixelFrame{Width: width, Height: height, Stride: stride, Bytes: data}, nil
}
