package imageops

import (
	"image"
	"image/color"
)

// ApplyCurve applies a 256-entry per-channel lookup to every RGB triple in
// the image, leaving alpha untouched. Per spec.md §4.3, a lookup of any
// length other than 256 passes the image through unchanged.
func ApplyCurve(img image.Image, lut []uint8) image.Image {
	if len(lut) != 256 {
		return img
	}

	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			out.Set(x, y, color.RGBA{
				R: lut[uint8(r>>8)],
				G: lut[uint8(g>>8)],
				B: lut[uint8(b>>8)],
				A: uint8(a >> 8),
			})
		}
	}
	return out
}
