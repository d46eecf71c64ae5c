package compositor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDamageRectsFromBoxesDropsDegenerateBoxes(t *testing.T) {
	boxes := [][4]int32{
		{0, 0, 4, 2},
		{5, 5, 5, 10}, // zero width
		{5, 5, 10, 5}, // zero height
		{10, 10, 8, 20}, // negative width
		{2, 2, 6, 6},
	}
	rects := damageRectsFromBoxes(boxes)
	assert.Equal(t, []DamageRect{
		{X: 0, Y: 0, Width: 4, Height: 2},
		{X: 2, Y: 2, Width: 4, Height: 4},
	}, rects)
}

func TestDamageRectsFromBoxesEmptyInputYieldsEmptySlice(t *testing.T) {
	rects := damageRectsFromBoxes(nil)
	assert.Empty(t, rects)
}

func TestNewPixelFrameComputesStride(t *testing.T) {
	data := make([]byte, 4*3*2)
	frame, err := NewPixelFrame(3, 2, data)
	assert.NoError(t, err)
	assert.Equal(t, int32(12), frame.Stride)
	assert.Equal(t, len(data), len(frame.Bytes))
}

func TestNewPixelFrameRejectsMismatchedLength(t *testing.T) {
	_, err := NewPixelFrame(4, 2, make([]byte, 10))
	assert.Error(t, err)
}

func TestNewPixelFrameRejectsNonPositiveDimensions(t *testing.T) {
	_, err := NewPixelFrame(0, 2, nil)
	assert.Error(t, err)

	_, err = NewPixelFrame(4, -1, nil)
	assert.Error(t, err)
}
