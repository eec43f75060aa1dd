package tools

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ochrefield/pcetile/internal/export"
	"github.com/ochrefield/pcetile/internal/pce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatExportPalettes(bg, fg string) [pce.MaxPalettes][]string {
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

func encodeSolidPNG(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDeriveTilesSingleTile(t *testing.T) {
	pngB64 := encodeSolidPNG(t, 8, 8, color.RGBA{R: 255, A: 255})

	params := exportParams{
		ImagePNGBase64: pngB64,
		Palettes:       flatExportPalettes("#000000", "#FF0000"),
		TilePaletteMap: []int{0},
		EmptyTiles:     []bool{false},
	}

	tileToUnique, uniqueTiles, tilesX, tilesY, err := deriveTiles(params)
	require.NoError(t, err)
	assert.Equal(t, 1, tilesX)
	assert.Equal(t, 1, tilesY)
	require.Len(t, tileToUnique, 1)
	// index 0 of the unique table is always the reserved all-zero tile, so a
	// non-empty solid tile interns to index 1.
	assert.Equal(t, 1, tileToUnique[0])
	assert.Len(t, uniqueTiles, 2)
}

func TestDeriveTilesRejectsTileCountMismatch(t *testing.T) {
	pngB64 := encodeSolidPNG(t, 16, 8, color.RGBA{A: 255})

	params := exportParams{
		ImagePNGBase64: pngB64,
		Palettes:       flatExportPalettes("#000000", "#FFFFFF"),
		TilePaletteMap: []int{0}, // should be length 2 for a 16x8 image
		EmptyTiles:     []bool{true},
	}

	_, _, _, _, err := deriveTiles(params)
	assert.Error(t, err)
}

func TestDeriveTilesRejectsInvalidBase64(t *testing.T) {
	params := exportParams{
		ImagePNGBase64: "not-base64!!",
		TilePaletteMap: []int{0},
		EmptyTiles:     []bool{true},
	}

	_, _, _, _, err := deriveTiles(params)
	assert.Error(t, err)
}

func TestToRGBAPassesThroughExistingRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out := toRGBA(src)
	assert.Same(t, src, out)
}

func TestToRGBAConvertsOtherModel(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	out := toRGBA(src)
	assert.Equal(t, src.Bounds(), out.Bounds())
}

func TestSaveBinariesToDiskOutputDirMatchesSaveToDiskLayout(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "level1.pce")

	require.NoError(t, export.SaveToDisk(basePath, []byte{0x00, 0x01}, []byte{0x02}, []byte{0x03}))

	stem := strings.TrimSuffix(filepath.Base(basePath), filepath.Ext(basePath))
	outputDir := filepath.Join(filepath.Dir(basePath), stem)

	for _, ext := range []string{".bat", ".tiles", ".pal"} {
		_, err := os.Stat(filepath.Join(outputDir, stem+ext))
		assert.NoError(t, err)
	}
}
