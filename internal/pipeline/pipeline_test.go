package pipeline

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/ochrefield/pcetile/internal/imageops"
	"github.com/ochrefield/pcetile/internal/pce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidSource(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRunProducesExpectedTileCounts(t *testing.T) {
	src := solidSource(16, 8, color.RGBA{R: 255, A: 255})

	var stages []string
	req := Request{
		Source:          src,
		ResizeMethod:    imageops.FilterLanczos3,
		PaletteCount:    4,
		DitherMode:      pce.DitherNone,
		BackgroundColor: "#000000",
		KeepRatio:       false,
		TargetWidth:     16,
		TargetHeight:    8,
		Seed:            1,
	}

	result, err := Run(context.Background(), req, nil, func(stage string, percent int) {
		stages = append(stages, stage)
		assert.GreaterOrEqual(t, percent, 0)
		assert.LessOrEqual(t, percent, 100)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TileCount)
	assert.Equal(t, 2, result.TilesX)
	assert.Equal(t, 1, result.TilesY)
	assert.NotEmpty(t, result.PreviewPNGBase64)
	assert.GreaterOrEqual(t, result.UniqueTileCount, 1)
	assert.Contains(t, stages, "done")
	assert.Contains(t, stages, "loading")
}

func TestRunRejectsInvalidPaletteCount(t *testing.T) {
	src := solidSource(8, 8, color.RGBA{A: 255})
	req := Request{Source: src, PaletteCount: 0, BackgroundColor: "#000000", TargetWidth: 8, TargetHeight: 8}

	_, err := Run(context.Background(), req, nil, nil)
	require.Error(t, err)
}

func TestRunRejectsMissingSource(t *testing.T) {
	req := Request{PaletteCount: 1, BackgroundColor: "#000000", TargetWidth: 8, TargetHeight: 8}

	_, err := Run(context.Background(), req, nil, nil)
	require.Error(t, err)
}

func TestRunRejectsInvalidBackground(t *testing.T) {
	src := solidSource(8, 8, color.RGBA{A: 255})
	req := Request{Source: src, PaletteCount: 1, BackgroundColor: "not-a-color", TargetWidth: 8, TargetHeight: 8}

	_, err := Run(context.Background(), req, nil, nil)
	require.Error(t, err)
}

func TestRunHonorsAllBackgroundTileIsEmpty(t *testing.T) {
	src := solidSource(8, 8, color.RGBA{A: 255})
	req := Request{
		Source:          src,
		PaletteCount:    2,
		DitherMode:      pce.DitherNone,
		BackgroundColor: "#000000",
		TargetWidth:     8,
		TargetHeight:    8,
	}

	result, err := Run(context.Background(), req, nil, nil)
	require.NoError(t, err)
	require.Len(t, result.EmptyTiles, 1)
	assert.True(t, result.EmptyTiles[0])
	assert.Equal(t, 0, result.TileToUnique[0])
}
