// Package pce implements the hardware-facing half of the conversion
// pipeline: tile scanning, per-tile palette clustering, dithering, planar
// tile encoding, tile deduplication, and BAT assembly.
package pce

import (
	"image"
	"sort"

	"github.com/ochrefield/pcetile/internal/colorops"
)

// TileSize is the fixed PCE tile dimension.
const TileSize = 8

// TileInfo holds one 8x8 tile's color set and per-color pixel counts.
type TileInfo struct {
	TX, TY int
	Colors []string
	Counts map[string]int
}

// IsEmpty reports whether the tile's only color is bg.
func (t *TileInfo) IsEmpty(bg string) bool {
	return len(t.Colors) == 1 && t.Colors[0] == bg
}

// ScanTiles partitions an RGB333-quantized image into TileSize x TileSize
// tiles, row-major, per spec.md §4.5. The image's dimensions are assumed to
// be multiples of TileSize.
func ScanTiles(img image.Image) []TileInfo {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tilesX := w / TileSize
	tilesY := h / TileSize

	tiles := make([]TileInfo, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			counts := make(map[string]int, 8)
			for y := 0; y < TileSize; y++ {
				for x := 0; x < TileSize; x++ {
					px := bounds.Min.X + tx*TileSize + x
					py := bounds.Min.Y + ty*TileSize + y
					r, g, b, _ := img.At(px, py).RGBA()
					token := colorops.Format(uint8(r>>8), uint8(g>>8), uint8(b>>8))
					counts[token]++
				}
			}
			colorsList := make([]string, 0, len(counts))
			for c := range counts {
				colorsList = append(colorsList, c)
			}
			sort.Strings(colorsList)

			tiles = append(tiles, TileInfo{TX: tx, TY: ty, Colors: colorsList, Counts: counts})
		}
	}
	return tiles
}
