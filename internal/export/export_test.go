package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ochrefield/pcetile/internal/pce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatPalettes(bg, fg string) [pce.MaxPalettes][]string {
	var palettes [pce.MaxPalettes][]string
	for i := range palettes {
		pal := make([]string, pce.MaxPaletteColors)
		pal[0] = bg
		for j := 1; j < len(pal); j++ {
			pal[j] = fg
		}
		palettes[i] = pal
	}
	return palettes
}

func TestPaletteWordPacking(t *testing.T) {
	word, err := PaletteWord("#FF0000")
	require.NoError(t, err)
	// R3=7 -> bits [3..5], G3=0, B3=0: word = 7<<3 = 0x38
	assert.Equal(t, uint16(0x38), word)
}

func TestPaletteWordInvalidToken(t *testing.T) {
	_, err := PaletteWord("not-a-color")
	require.Error(t, err)
}

func TestAssemblyTextContainsSections(t *testing.T) {
	palettes := flatPalettes("#000000", "#FF0000")
	uniqueTiles := pce.NewUniqueTileTable()
	tileToUnique := []int{0}
	tilePaletteMap := []int{0}

	text, dims, err := AssemblyText(palettes, tileToUnique, tilePaletteMap, uniqueTiles, 0x1000, 1, 1, 0, 0, 1, 1)
	require.NoError(t, err)
	assert.Contains(t, text, "--- BAT ---")
	assert.Contains(t, text, "--- Palettes ---")
	assert.Contains(t, text, "--- Tiles ---")
	assert.Equal(t, 1, dims.TileCount)
	assert.Equal(t, 1, dims.UniqueTileCount)
	assert.Equal(t, 2, dims.BATSizeBytes)
}

func TestBinariesEndiannessSwapsTileBytePairs(t *testing.T) {
	palettes := flatPalettes("#000000", "#FF0000")
	uniqueTiles := pce.NewUniqueTileTable()
	var solid [pce.EncodedTileSize]byte
	for y := 0; y < pce.TileSize; y++ {
		solid[2*y] = 0xAA
		solid[2*y+1] = 0xBB
	}
	uniqueTiles.Intern(solid)
	tileToUnique := []int{1}
	tilePaletteMap := []int{0}

	_, tilesBE, _, _, err := Binaries(palettes, tileToUnique, tilePaletteMap, uniqueTiles, 0, 1, 1, 0, 0, 1, 1, true, true, true)
	require.NoError(t, err)
	_, tilesLE, _, _, err := Binaries(palettes, tileToUnique, tilePaletteMap, uniqueTiles, 0, 1, 1, 0, 0, 1, 1, true, true, false)
	require.NoError(t, err)

	// second unique tile (index 1) starts at byte 32.
	assert.Equal(t, byte(0xAA), tilesBE[32])
	assert.Equal(t, byte(0xBB), tilesBE[33])
	assert.Equal(t, byte(0xBB), tilesLE[32])
	assert.Equal(t, byte(0xAA), tilesLE[33])
}

func TestBinariesDimensions(t *testing.T) {
	palettes := flatPalettes("#000000", "#FF0000")
	uniqueTiles := pce.NewUniqueTileTable()
	tileToUnique := []int{0, 0}
	tilePaletteMap := []int{0, 0}

	bat, tiles, pal, dims, err := Binaries(palettes, tileToUnique, tilePaletteMap, uniqueTiles, 0x2000, 2, 1, 0, 0, 2, 1, true, true, true)
	require.NoError(t, err)
	assert.Len(t, bat, 2*1*2)
	assert.Len(t, tiles, len(uniqueTiles)*pce.EncodedTileSize)
	assert.Len(t, pal, pce.MaxPalettes*pce.MaxPaletteColors*2)
	assert.Equal(t, 2, dims.TileCount)
}

func TestSaveToDiskWritesSiblingDirectory(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "level1.png")

	bat := []byte{0x01, 0x02}
	tiles := []byte{0x03, 0x04}
	pal := []byte{0x05, 0x06}

	err := SaveToDisk(basePath, bat, tiles, pal)
	require.NoError(t, err)

	outDir := filepath.Join(dir, "level1")
	batBytes, err := os.ReadFile(filepath.Join(outDir, "level1.bat"))
	require.NoError(t, err)
	assert.Equal(t, bat, batBytes)

	tilesBytes, err := os.ReadFile(filepath.Join(outDir, "level1.tiles"))
	require.NoError(t, err)
	assert.Equal(t, tiles, tilesBytes)

	palBytes, err := os.ReadFile(filepath.Join(outDir, "level1.pal"))
	require.NoError(t, err)
	assert.Equal(t, pal, palBytes)
}
