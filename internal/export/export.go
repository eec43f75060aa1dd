// Package export renders a completed conversion into hardware-ready output:
// commented assembly text (.dw/.db sections) or raw per-blob binaries, and
// writes binaries to a sibling directory named after the source file stem.
package export

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochrefield/pcetile/internal/colorops"
	"github.com/ochrefield/pcetile/internal/pce"
	"github.com/ochrefield/pcetile/internal/pceerr"
)

// Dimensions reports the exported blobs' sizes, per spec.md §6.1's
// export_plain_text/export_binaries return shape.
type Dimensions struct {
	TileCount       int
	UniqueTileCount int
	BATSizeBytes    int
}

// PaletteWord packs a hex color token into the 16-bit PCE palette word:
// (G3<<6) | (R3<<3) | B3, taking each channel's top 3 bits, per spec.md §6.2.
func PaletteWord(token string) (uint16, error) {
	r, g, b, err := colorops.Parse(token)
	if err != nil {
		return 0, pceerr.Wrap(pceerr.InvalidParameter, fmt.Sprintf("invalid palette token %q", token), err)
	}
	r3 := uint16(r>>5) & 0x7
	g3 := uint16(g>>5) & 0x7
	b3 := uint16(b>>5) & 0x7
	return g3<<6 | r3<<3 | b3, nil
}

// AssemblyText renders the BAT, palette bank, and unique-tile library as
// commented .dw/.db assembly sections, per spec.md §6.1/§4.11.
func AssemblyText(palettes [pce.MaxPalettes][]string, tileToUnique []int, tilePaletteMap []int, uniqueTiles pce.UniqueTileTable, vramBase, batW, batH, offsetX, offsetY, tilesX, tilesY int) (string, Dimensions, error) {
	bat := pce.BuildBAT(tilesX, tilesY, offsetX, offsetY, batW, batH, tileToUnique, tilePaletteMap)

	var b strings.Builder
	b.WriteString("; PCE display list\n")
	b.WriteString(fmt.Sprintf("; bat %dx%d, vram_base $%04X\n\n", batW, batH, vramBase))

	b.WriteString("; --- BAT ---\n")
	for y := 0; y < batH; y++ {
		b.WriteString("\t.dw ")
		row := make([]string, batW)
		for x := 0; x < batW; x++ {
			word := bat.Cells[y*batW+x].Word(vramBase)
			row[x] = fmt.Sprintf("$%04X", word)
		}
		b.WriteString(strings.Join(row, ", "))
		b.WriteString(fmt.Sprintf(" ; row %d\n", y))
	}
	b.WriteString("\n; --- Palettes ---\n")
	for p, pal := range palettes {
		words := make([]string, len(pal))
		for i, token := range pal {
			word, err := PaletteWord(token)
			if err != nil {
				return "", Dimensions{}, err
			}
			words[i] = fmt.Sprintf("$%04X", word)
		}
		b.WriteString(fmt.Sprintf("\t.dw %s ; palette %d\n", strings.Join(words, ", "), p))
	}

	b.WriteString("\n; --- Tiles ---\n")
	for i, tile := range uniqueTiles {
		bytesList := make([]string, len(tile))
		for j, by := range tile {
			bytesList[j] = fmt.Sprintf("$%02X", by)
		}
		b.WriteString(fmt.Sprintf("\t.db %s ; tile %d\n", strings.Join(bytesList, ", "), i))
	}

	dims := Dimensions{
		TileCount:       len(tilePaletteMap),
		UniqueTileCount: len(uniqueTiles),
		BATSizeBytes:    batW * batH * 2,
	}
	return b.String(), dims, nil
}

// Binaries renders the BAT, palette bank, and unique-tile library as raw
// byte blobs, one endianness flag per blob, per spec.md §6.1/§6.2.
func Binaries(palettes [pce.MaxPalettes][]string, tileToUnique []int, tilePaletteMap []int, uniqueTiles pce.UniqueTileTable, vramBase, batW, batH, offsetX, offsetY, tilesX, tilesY int, batBigEndian, palBigEndian, tilesBigEndian bool) (bat, tiles, pal []byte, dims Dimensions, err error) {
	batGrid := pce.BuildBAT(tilesX, tilesY, offsetX, offsetY, batW, batH, tileToUnique, tilePaletteMap)

	bat = make([]byte, 0, batW*batH*2)
	for _, cell := range batGrid.Cells {
		bat = appendWord(bat, cell.Word(vramBase), batBigEndian)
	}

	pal = make([]byte, 0, pce.MaxPalettes*pce.MaxPaletteColors*2)
	for _, p := range palettes {
		for _, token := range p {
			word, werr := PaletteWord(token)
			if werr != nil {
				return nil, nil, nil, Dimensions{}, werr
			}
			pal = appendWord(pal, word, palBigEndian)
		}
	}

	tiles = make([]byte, 0, len(uniqueTiles)*pce.EncodedTileSize)
	for _, t := range uniqueTiles {
		tiles = append(tiles, encodeTileBytes(t, tilesBigEndian)...)
	}

	dims = Dimensions{
		TileCount:       len(tilePaletteMap),
		UniqueTileCount: len(uniqueTiles),
		BATSizeBytes:    batW * batH * 2,
	}
	return bat, tiles, pal, dims, nil
}

// appendWord appends a 16-bit word in big-endian (PCE native) order, or
// swapped (little-endian flag) order.
func appendWord(dst []byte, word uint16, bigEndian bool) []byte {
	var buf [2]byte
	if bigEndian {
		binary.BigEndian.PutUint16(buf[:], word)
	} else {
		binary.LittleEndian.PutUint16(buf[:], word)
	}
	return append(dst, buf[:]...)
}

// encodeTileBytes emits one 32-byte planar tile, swapping each line's
// (plane1,plane2) and (plane3,plane4) byte pair when bigEndian is false,
// per spec.md §6.2: native order is big-endian per line pair.
func encodeTileBytes(tile [pce.EncodedTileSize]byte, bigEndian bool) []byte {
	out := make([]byte, pce.EncodedTileSize)
	copy(out, tile[:])
	if bigEndian {
		return out
	}
	for y := 0; y < pce.TileSize; y++ {
		out[2*y], out[2*y+1] = out[2*y+1], out[2*y]
		out[16+2*y], out[16+2*y+1] = out[16+2*y+1], out[16+2*y]
	}
	return out
}

// SaveToDisk writes bat/tiles/pal to a sibling directory named after
// basePath's file stem, as <stem>.bat, <stem>.tiles, <stem>.pal, per
// spec.md §6.1.
func SaveToDisk(basePath string, bat, tiles, pal []byte) error {
	dir := filepath.Dir(basePath)
	stem := strings.TrimSuffix(filepath.Base(basePath), filepath.Ext(basePath))
	outDir := filepath.Join(dir, stem)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return pceerr.Wrap(pceerr.IOFailure, fmt.Sprintf("failed to create output directory %s", outDir), err)
	}

	writes := []struct {
		name string
		data []byte
	}{
		{stem + ".bat", bat},
		{stem + ".tiles", tiles},
		{stem + ".pal", pal},
	}
	for _, w := range writes {
		path := filepath.Join(outDir, w.name)
		if err := os.WriteFile(path, w.data, 0o644); err != nil {
			return pceerr.Wrap(pceerr.IOFailure, fmt.Sprintf("failed to write %s", path), err)
		}
	}
	return nil
}
