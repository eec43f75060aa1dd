package imageops

import (
	"image"
	"image/color"

	"github.com/ochrefield/pcetile/internal/colorops"
)

// QuantizeRGB333 folds every pixel onto the RGB333 lattice. Fully-transparent
// pixels (alpha==0) are forced to background; every other pixel is forced
// fully opaque. Per spec.md §4.4.
func QuantizeRGB333(img image.Image, background color.Color) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	bgR, bgG, bgB, _ := background.RGBA()
	bg := color.RGBA{R: uint8(bgR >> 8), G: uint8(bgG >> 8), B: uint8(bgB >> 8), A: 255}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			ox, oy := x-bounds.Min.X, y-bounds.Min.Y
			if a == 0 {
				out.SetRGBA(ox, oy, bg)
				continue
			}
			out.SetRGBA(ox, oy, color.RGBA{
				R: colorops.Quantize3(uint8(r >> 8)),
				G: colorops.Quantize3(uint8(g >> 8)),
				B: colorops.Quantize3(uint8(b >> 8)),
				A: 255,
			})
		}
	}
	return out
}

// QuantizeRGB333Dithered applies an optional whole-image Floyd-Steinberg
// pass against the RGB333 lattice. Per spec.md §4.4 this path is supported
// but not used by the main pipeline: dithering happens per-tile, later,
// against chosen palettes (see internal/pce.Dither).
func QuantizeRGB333Dithered(img image.Image, background color.Color) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	type errPixel struct{ r, g, b float64 }
	buf := make([][]errPixel, h)
	for y := 0; y < h; y++ {
		buf[y] = make([]errPixel, w)
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			buf[y][x] = errPixel{r: float64(r >> 8), g: float64(g >> 8), b: float64(b >> 8)}
		}
	}

	bgR, bgG, bgB, _ := background.RGBA()
	bg := color.RGBA{R: uint8(bgR >> 8), G: uint8(bgG >> 8), B: uint8(bgB >> 8), A: 255}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	clampf := func(v float64) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if a == 0 {
				out.SetRGBA(x, y, bg)
				continue
			}

			p := buf[y][x]
			nr := colorops.Quantize3(clampf(p.r))
			ng := colorops.Quantize3(clampf(p.g))
			nb := colorops.Quantize3(clampf(p.b))
			out.SetRGBA(x, y, color.RGBA{R: nr, G: ng, B: nb, A: 255})

			errR := p.r - float64(nr)
			errG := p.g - float64(ng)
			errB := p.b - float64(nb)

			if x+1 < w {
				buf[y][x+1].r += errR * 7 / 16
				buf[y][x+1].g += errG * 7 / 16
				buf[y][x+1].b += errB * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					buf[y+1][x-1].r += errR * 3 / 16
					buf[y+1][x-1].g += errG * 3 / 16
					buf[y+1][x-1].b += errB * 3 / 16
				}
				buf[y+1][x].r += errR * 5 / 16
				buf[y+1][x].g += errG * 5 / 16
				buf[y+1][x].b += errB * 5 / 16
				if x+1 < w {
					buf[y+1][x+1].r += errR * 1 / 16
					buf[y+1][x+1].g += errG * 1 / 16
					buf[y+1][x+1].b += errB * 1 / 16
				}
			}
		}
	}

	return out
}
