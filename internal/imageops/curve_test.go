package imageops

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyCurveInvertingLUT(t *testing.T) {
	lut := make([]uint8, 256)
	for i := range lut {
		lut[i] = uint8(255 - i)
	}

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 200})

	out := ApplyCurve(img, lut)
	r, g, b, a := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(245), r>>8)
	assert.Equal(t, uint32(235), g>>8)
	assert.Equal(t, uint32(225), b>>8)
	assert.Equal(t, uint32(200), a>>8)
}

func TestApplyCurveWrongLengthPassesThrough(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 200})

	out := ApplyCurve(img, []uint8{1, 2, 3})
	assert.Same(t, image.Image(img), out)
}
