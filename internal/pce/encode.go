package pce

import (
	"image"

	"github.com/ochrefield/pcetile/internal/colorops"
)

// EncodedTileSize is the fixed size, in bytes, of one planar-encoded tile.
const EncodedTileSize = 32

// EncodeTile encodes one 8x8 tile to the 32-byte 4-plane format of
// spec.md §4.9. For each pixel the palette index is the arg-min of
// dist² against pal (palette must be non-empty; it is always the caller's
// 16-entry finalized, exported palette). Layout: bytes[2y]=plane1,
// bytes[2y+1]=plane2, bytes[16+2y]=plane3, bytes[16+2y+1]=plane4.
func EncodeTile(tile image.Image, pal []string) [EncodedTileSize]byte {
	var out [EncodedTileSize]byte

	for y := 0; y < TileSize; y++ {
		var p1, p2, p3, p4 byte
		for x := 0; x < TileSize; x++ {
			r, g, b, _ := tile.At(x, y).RGBA()
			idx := nearestPaletteIndex(uint8(r>>8), uint8(g>>8), uint8(b>>8), pal)
			bit := byte(7 - x)
			if idx&0x1 != 0 {
				p1 |= 1 << bit
			}
			if idx&0x2 != 0 {
				p2 |= 1 << bit
			}
			if idx&0x4 != 0 {
				p3 |= 1 << bit
			}
			if idx&0x8 != 0 {
				p4 |= 1 << bit
			}
		}
		out[2*y] = p1
		out[2*y+1] = p2
		out[16+2*y] = p3
		out[16+2*y+1] = p4
	}

	return out
}

// nearestPaletteIndex returns the index (0..15) of the palette entry
// nearest to the given RGB triple.
func nearestPaletteIndex(r, g, b uint8, pal []string) int {
	bestIdx, bestDist := 0, -1
	for i, token := range pal {
		pr, pg, pb, err := colorops.Parse(token)
		if err != nil {
			pr, pg, pb = 0, 0, 0
		}
		d := colorops.DistSquared(r, g, b, pr, pg, pb)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestIdx = i
		}
	}
	return bestIdx
}
