package imageops

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeExactDimensionsWithoutKeepRatio(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 20))
	out, preResized := Resize(img, 32, 32, FilterNearest, false, color.Black)
	require.False(t, preResized)
	assert.Equal(t, 32, out.Bounds().Dx())
	assert.Equal(t, 32, out.Bounds().Dy())
}

func TestResizeKeepRatioCentersOnBackground(t *testing.T) {
	// Wide source, square target: expect vertical letterboxing.
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))
	bg := color.RGBA{R: 1, G: 2, B: 3, A: 255}
	out, _ := Resize(img, 32, 32, FilterNearest, true, bg)
	assert.Equal(t, 32, out.Bounds().Dx())
	assert.Equal(t, 32, out.Bounds().Dy())

	r, g, b, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(1), r>>8)
	assert.Equal(t, uint32(2), g>>8)
	assert.Equal(t, uint32(3), b>>8)
}

func TestResizeFiresPreResizeAboveThreshold(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1000, 1000))
	_, preResized := Resize(img, 32, 32, FilterLanczos3, false, color.Black)
	assert.True(t, preResized)
}

func TestResizeMaskMirrorsImageFraming(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 100, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 100; x++ {
			mask.SetGray(x, y, color.Gray{Y: 0})
		}
	}

	out := ResizeMask(mask, 32, 32, true)
	assert.Equal(t, 32, out.Bounds().Dx())
	assert.Equal(t, 32, out.Bounds().Dy())

	// Corner should default to 255 (outside the scaled rectangle).
	assert.Equal(t, uint8(255), out.GrayAt(0, 0).Y)
}
