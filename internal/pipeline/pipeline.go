// Package pipeline orchestrates the full image-to-PCE conversion: resize,
// tone curve, RGB333 quantization, tile scanning, palette clustering,
// dither/remap, planar encoding and tile dedup. The BAT is not built here;
// internal/export assembles it at export time.
package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	"github.com/ochrefield/pcetile/internal/colorops"
	"github.com/ochrefield/pcetile/internal/imageops"
	"github.com/ochrefield/pcetile/internal/pce"
	"github.com/ochrefield/pcetile/internal/pceerr"
	"github.com/willibrandon/mtlog/core"
)

// Request bundles run_conversion's parameters, per spec.md §6.1.
type Request struct {
	Source                   image.Image
	ResizeMethod             imageops.Filter
	PaletteCount             int
	DitherMode               pce.DitherMode
	BackgroundColor          string
	KeepRatio                bool
	CurveLUT                 []uint8     // len 256, or nil for identity
	TargetWidth              int
	TargetHeight             int
	UseDitherMask            bool
	DitherMask               *image.Gray // full-resolution source mask, or nil
	PaletteGroupConstraints  []int       // per-tile, -1 or out-of-range means unconstrained
	Seed                     uint64
}

// Result mirrors ConversionResult from spec.md §6.1.
type Result struct {
	PreviewPNGBase64 string
	Palettes         [pce.MaxPalettes][]string
	TilePaletteMap   []int
	EmptyTiles       []bool
	TileCount        int
	UniqueTileCount  int
	TileToUnique     []int
	WasPreResized    bool

	TilesX, TilesY int
	UniqueTiles    pce.UniqueTileTable
}

// ProgressFunc is called at each named stage boundary with 0..100.
type ProgressFunc func(stage string, percent int)

// Run executes one conversion request on the calling goroutine; it is
// CPU-bound, holds no locks, and has no suspension points inside the
// numerical stages, per spec.md §5. ctx is checked only between stages so a
// caller can abandon a run early; cancellation is not propagated into a
// kernel already in progress.
func Run(ctx context.Context, req Request, logger core.Logger, progress ProgressFunc) (*Result, error) {
	emit := func(stage string, percent int) {
		if progress != nil {
			progress(stage, percent)
		}
		if logger != nil {
			logger.Debug("conversion stage {Stage} at {Percent}%", stage, percent)
		}
	}

	if req.PaletteCount < 1 || req.PaletteCount > pce.MaxPalettes {
		return nil, pceerr.New(pceerr.InvalidParameter, "palette_count must be between 1 and 16")
	}
	if req.Source == nil {
		return nil, pceerr.New(pceerr.InvalidParameter, "source image is required")
	}
	bgR, bgG, bgB, err := colorops.Parse(req.BackgroundColor)
	if err != nil {
		return nil, pceerr.Wrap(pceerr.InvalidParameter, "invalid background_color", err)
	}
	background := color.RGBA{R: bgR, G: bgG, B: bgB, A: 255}
	backgroundToken := colorops.Format(bgR, bgG, bgB)

	emit("loading", 5)
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	emit("pre-resize", 15)
	resized, wasPreResized := imageops.Resize(req.Source, req.TargetWidth, req.TargetHeight, req.ResizeMethod, req.KeepRatio, background)

	emit("resize", 25)
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	emit("curve", 35)
	curved := imageops.ApplyCurve(resized, req.CurveLUT)

	emit("quantize", 45)
	quantized := imageops.QuantizeRGB333(curved, background)
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	emit("cluster", 55)
	tiles := pce.ScanTiles(quantized)
	tilesX := quantized.Bounds().Dx() / pce.TileSize
	tilesY := quantized.Bounds().Dy() / pce.TileSize

	clustered := pce.Cluster(tiles, backgroundToken, req.PaletteCount, req.PaletteGroupConstraints, req.Seed)
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	palettes, tilePaletteMap := pce.Compact(clustered.Palettes, clustered.TilePaletteMap, backgroundToken, req.Seed)

	emit("remap", 70)
	var mask *image.Gray
	if req.UseDitherMask && req.DitherMask != nil {
		mask = imageops.ResizeMask(req.DitherMask, req.TargetWidth, req.TargetHeight, req.KeepRatio)
	}
	final := remapAll(quantized, tiles, palettes, tilePaletteMap, clustered.EmptyTiles, req.DitherMode, mask)
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	emit("encode", 85)
	uniqueTiles := pce.NewUniqueTileTable()
	tileToUnique := pce.EncodeTiles(final, tilesX, clustered.EmptyTiles, tilePaletteMap, palettes, &uniqueTiles)

	preview, err := encodePreviewPNG(final)
	if err != nil {
		return nil, pceerr.Wrap(pceerr.EncodeFailure, "failed to encode preview", err)
	}

	emit("done", 100)

	return &Result{
		PreviewPNGBase64: preview,
		Palettes:         palettes,
		TilePaletteMap:   tilePaletteMap,
		EmptyTiles:       clustered.EmptyTiles,
		TileCount:        len(tiles),
		UniqueTileCount:  len(uniqueTiles),
		TileToUnique:     tileToUnique,
		WasPreResized:    wasPreResized,
		TilesX:           tilesX,
		TilesY:           tilesY,
		UniqueTiles:      uniqueTiles,
	}, nil
}

// remapAll dithers/remaps each tile against its assigned compacted palette
// and composites the per-tile results back into one full-resolution image.
func remapAll(src *image.RGBA, tiles []pce.TileInfo, palettes [pce.MaxPalettes][]string, tilePaletteMap []int, emptyTiles []bool, mode pce.DitherMode, mask *image.Gray) *image.RGBA {
	out := image.NewRGBA(src.Bounds())

	for i, t := range tiles {
		tileRect := image.Rect(t.TX*pce.TileSize, t.TY*pce.TileSize, t.TX*pce.TileSize+pce.TileSize, t.TY*pce.TileSize+pce.TileSize).Add(src.Bounds().Min)
		tileImg := extractTile(src, tileRect)

		pal := palettes[tilePaletteMap[i]]
		dithered := pce.Remap(tileImg, pal, mode, emptyTiles[i])
		composited := dithered
		if mask != nil {
			flat := pce.Remap(tileImg, pal, pce.DitherNone, emptyTiles[i])
			tileMask := extractGrayTile(mask, tileRect)
			composited = pce.CompositeWithMask(dithered, flat, tileMask)
		}

		for y := 0; y < pce.TileSize; y++ {
			for x := 0; x < pce.TileSize; x++ {
				out.Set(tileRect.Min.X+x, tileRect.Min.Y+y, composited.At(x, y))
			}
		}
	}

	return out
}

func extractTile(img *image.RGBA, rect image.Rectangle) image.Image {
	tile := image.NewRGBA(image.Rect(0, 0, pce.TileSize, pce.TileSize))
	for y := 0; y < pce.TileSize; y++ {
		for x := 0; x < pce.TileSize; x++ {
			tile.Set(x, y, img.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	return tile
}

func extractGrayTile(mask *image.Gray, rect image.Rectangle) *image.Gray {
	tile := image.NewGray(image.Rect(0, 0, pce.TileSize, pce.TileSize))
	for y := 0; y < pce.TileSize; y++ {
		for x := 0; x < pce.TileSize; x++ {
			tile.Set(x, y, mask.At(rect.Min.X+x, rect.Min.Y+y))
		}
	}
	return tile
}

func encodePreviewPNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func checkCtx(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return pceerr.Wrap(pceerr.IOFailure, "conversion cancelled", ctx.Err())
	default:
		return nil
	}
}
