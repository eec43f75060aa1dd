package pce

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeTileSolidIndexOne(t *testing.T) {
	// S1: tile solid #FF0000 against [color-0, #FF0000, ...] yields plane1
	// all ones, planes 2-4 zero (index 1 everywhere).
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	pal := make([]string, 16)
	pal[0] = "#000000"
	pal[1] = "#FF0000"
	for i := 2; i < 16; i++ {
		pal[i] = "#000000"
	}

	encoded := EncodeTile(img, pal)

	expected := [EncodedTileSize]byte{}
	for y := 0; y < 8; y++ {
		expected[2*y] = 0xFF
		expected[2*y+1] = 0x00
	}
	for i := 16; i < 32; i++ {
		expected[i] = 0x00
	}
	assert.Equal(t, expected, encoded)
}

func TestEncodeTileIdempotent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	for y := 0; y < TileSize; y++ {
		for x := 0; x < TileSize; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 50, A: 255})
		}
	}
	pal := make([]string, 16)
	pal[0] = "#000000"
	pal[1] = "#FF0000"
	pal[2] = "#00FF00"
	for i := 3; i < 16; i++ {
		pal[i] = "#000000"
	}

	a := EncodeTile(img, pal)
	b := EncodeTile(img, pal)
	assert.Equal(t, a, b)
}
