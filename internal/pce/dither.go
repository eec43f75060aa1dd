package pce

import (
	"image"
	"image/color"

	"github.com/ochrefield/pcetile/internal/colorops"
)

// DitherMode selects the remap strategy applied independently to each tile.
type DitherMode string

const (
	DitherNone    DitherMode = "none"
	DitherFloyd   DitherMode = "floyd"
	DitherOrdered DitherMode = "ordered"
)

// bayer8x8 is the classical ordered-dithering threshold matrix, expressed
// the same way makew0rld-dither's OrderedDitherMatrix shapes a matrix:
// plain indices over a fixed Max, here fixed at 64 (8x8).
var bayer8x8 = [8][8]int{
	{0, 48, 12, 60, 3, 51, 15, 63},
	{32, 16, 44, 28, 35, 19, 47, 31},
	{8, 56, 4, 52, 11, 59, 7, 55},
	{40, 24, 36, 20, 43, 27, 39, 23},
	{2, 50, 14, 62, 1, 49, 13, 61},
	{34, 18, 46, 30, 33, 17, 45, 29},
	{10, 58, 6, 54, 9, 57, 5, 53},
	{42, 26, 38, 22, 41, 25, 37, 21},
}

// floydWeights mirrors makew0rld-dither's ErrorDiffusionMatrix shape: the
// classic Floyd-Steinberg kernel, with the current pixel at [0][1].
var floydWeights = [2][3]float64{
	{0, 0, 7.0 / 16.0},
	{3.0 / 16.0, 5.0 / 16.0, 1.0 / 16.0},
}

// Remap applies one tile's chosen palette to its pixels, independently of
// every other tile, per spec.md §4.8. Empty tiles are skipped: the returned
// tile is left all-zero (transparent black). tile must be exactly
// TileSize x TileSize.
func Remap(tile image.Image, palette []string, mode DitherMode, isEmpty bool) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	if isEmpty {
		return out
	}

	switch mode {
	case DitherFloyd:
		return remapFloyd(tile, palette)
	case DitherOrdered:
		return remapOrdered(tile, palette)
	default:
		return remapNone(tile, palette)
	}
}

func remapNone(tile image.Image, palette []string) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			r, g, b, _ := tile.At(x, y).RGBA()
			token := colorops.Format(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			nr, ng, nb, _ := colorops.Parse(nearestTokenOnly(token, palette))
			out.SetRGBA(x, y, color.RGBA{R: nr, G: ng, B: nb, A: 255})
		}
	}
	return out
}

func nearestTokenOnly(token string, palette []string) string {
	if len(palette) == 0 {
		return token
	}
	best, bestDist := palette[0], colorops.DistSquaredToken(token, palette[0])
	for _, c := range palette[1:] {
		d := colorops.DistSquaredToken(token, c)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// remapFloyd diffuses error within this 8x8 tile only: the error buffer is
// allocated per call and never shared across tiles, preventing the seams
// that a whole-image error buffer would create when neighboring tiles use
// different palettes (spec.md §4.8, §9).
type ditherAcc struct{ r, g, b float64 }

func remapFloyd(tile image.Image, palette []string) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))

	buf := [TileSize][TileSize]ditherAcc{}
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			r, g, b, _ := tile.At(x, y).RGBA()
			buf[y][x] = ditherAcc{r: float64(r >> 8), g: float64(g >> 8), b: float64(b >> 8)}
		}
	}

	clamp := func(v float64) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}

	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			p := buf[y][x]
			token := colorops.Format(clamp(p.r), clamp(p.g), clamp(p.b))
			nearest := nearestTokenOnly(token, palette)
			nr, ng, nb, _ := colorops.Parse(nearest)
			out.SetRGBA(x, y, color.RGBA{R: nr, G: ng, B: nb, A: 255})

			errR := p.r - float64(nr)
			errG := p.g - float64(ng)
			errB := p.b - float64(nb)

			if x+1 < TileSize {
				diffuse(&buf[y][x+1], errR, errG, errB, floydWeights[0][2])
			}
			if y+1 < TileSize {
				if x > 0 {
					diffuse(&buf[y+1][x-1], errR, errG, errB, floydWeights[1][0])
				}
				diffuse(&buf[y+1][x], errR, errG, errB, floydWeights[1][1])
				if x+1 < TileSize {
					diffuse(&buf[y+1][x+1], errR, errG, errB, floydWeights[1][2])
				}
			}
		}
	}

	return out
}

func diffuse(a *ditherAcc, errR, errG, errB, w float64) {
	a.r += errR * w
	a.g += errG * w
	a.b += errB * w
}

// remapOrdered applies the classical 8x8 Bayer threshold: for each pixel,
// threshold = (M[y][x]/64 - 0.5) * 32 is added to each channel before
// nearest-color lookup, per spec.md §4.8.
func remapOrdered(tile image.Image, palette []string) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	clamp := func(v float64) uint8 {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return uint8(v)
	}

	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			r, g, b, _ := tile.At(x, y).RGBA()
			threshold := (float64(bayer8x8[y][x])/64.0 - 0.5) * 32.0

			token := colorops.Format(
				clamp(float64(r>>8)+threshold),
				clamp(float64(g>>8)+threshold),
				clamp(float64(b>>8)+threshold),
			)
			nearest := nearestTokenOnly(token, palette)
			nr, ng, nb, _ := colorops.Parse(nearest)
			out.SetRGBA(x, y, color.RGBA{R: nr, G: ng, B: nb, A: 255})
		}
	}
	return out
}

// CompositeWithMask blends a dithered and a flat remap of the same tile
// using a per-pixel mask: mask values <128 select dithered, >=128 select
// flat, per spec.md §4.8.
func CompositeWithMask(dithered, flat *image.RGBA, mask *image.Gray) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			if mask.GrayAt(x, y).Y < 128 {
				out.SetRGBA(x, y, dithered.RGBAAt(x, y))
			} else {
				out.SetRGBA(x, y, flat.RGBAAt(x, y))
			}
		}
	}
	return out
}
