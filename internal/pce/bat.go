package pce

import "image"

// UniqueTileTable is a deduplicated planar-tile library. Index 0 is always
// the synthetic all-zero empty tile.
type UniqueTileTable [][EncodedTileSize]byte

// NewUniqueTileTable returns a table seeded with the all-zero tile at
// index 0, per spec.md §4.10.
func NewUniqueTileTable() UniqueTileTable {
	var empty [EncodedTileSize]byte
	return UniqueTileTable{empty}
}

// Intern returns the index of tile within the table, appending it if no
// byte-equal entry already exists.
func (u *UniqueTileTable) Intern(tile [EncodedTileSize]byte) int {
	for i, existing := range *u {
		if existing == tile {
			return i
		}
	}
	*u = append(*u, tile)
	return len(*u) - 1
}

// BATCell is one decoded BAT word: a (palette, unique-tile) pair.
type BATCell struct {
	Palette int
	Unique  int
}

// BAT is a W x H grid of cells.
type BAT struct {
	W, H  int
	Cells []BATCell
}

func (b *BAT) at(x, y int) *BATCell { return &b.Cells[y*b.W+x] }

// EncodeTiles walks tiles row-major, interning each non-empty tile's planar
// encoding into uniqueTiles and mapping empty tiles to index 0, per
// spec.md §4.10. tilesX is the image's tile-grid width, used to recover
// (tx,ty) for each entry of the parallel emptyTiles/tilePaletteMap slices.
func EncodeTiles(image *image.RGBA, tilesX int, emptyTiles []bool, tilePaletteMap []int, palettes [MaxPalettes][]string, uniqueTiles *UniqueTileTable) (tileToUnique []int) {
	tileToUnique = make([]int, len(emptyTiles))
	for i := range emptyTiles {
		if emptyTiles[i] {
			tileToUnique[i] = 0
			continue
		}
		tx := i % tilesX
		ty := i / tilesX
		sub := subImage(image, tx, ty)
		pal := palettes[tilePaletteMap[i]]
		encoded := EncodeTile(sub, pal)
		tileToUnique[i] = uniqueTiles.Intern(encoded)
	}
	return tileToUnique
}

// subImage extracts one 8x8 tile into a freshly-allocated image whose
// bounds start at (0,0), so callers can always index it as tile.At(x,y)
// for x,y in [0,TileSize).
func subImage(img *image.RGBA, tx, ty int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	baseX, baseY := img.Bounds().Min.X+tx*TileSize, img.Bounds().Min.Y+ty*TileSize
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			out.Set(x, y, img.At(baseX+x, baseY+y))
		}
	}
	return out
}

// BuildBAT assembles the W x H BAT canvas of spec.md §4.10/§6.3, placing
// the image's tile grid at (offsetX, offsetY) inside an otherwise-empty
// canvas (cells pointing at unique tile 0, palette 0). vramBase and the
// unique-tile index determine each occupied cell's address.
func BuildBAT(tilesX, tilesY, offsetX, offsetY, batW, batH int, tileToUnique []int, tilePaletteMap []int) BAT {
	bat := BAT{W: batW, H: batH, Cells: make([]BATCell, batW*batH)}

	for by := 0; by < batH; by++ {
		for bx := 0; bx < batW; bx++ {
			ix, iy := bx-offsetX, by-offsetY
			if ix < 0 || ix >= tilesX || iy < 0 || iy >= tilesY {
				continue
			}
			idx := iy*tilesX + ix
			*bat.at(bx, by) = BATCell{Palette: tilePaletteMap[idx], Unique: tileToUnique[idx]}
		}
	}

	return bat
}

// Word encodes a BAT cell as the 16-bit hardware word: (palette<<12) |
// ((vramBase + unique*16) >> 4 & 0x0FFF), per spec.md §6.2.
func (c BATCell) Word(vramBase int) uint16 {
	addr := (vramBase + c.Unique*16) >> 4 & 0x0FFF
	return uint16(c.Palette)<<12 | uint16(addr)
}
