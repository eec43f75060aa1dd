package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ochrefield/pcetile/internal/export"
	"github.com/ochrefield/pcetile/internal/pce"
	"github.com/ochrefield/pcetile/internal/pceerr"
	"github.com/ochrefield/pcetile/pkg/config"
	"github.com/willibrandon/mtlog/core"
)

// exportParams is the shared shape of export_plain_text/export_binaries's
// conversion-result-derived parameters, per spec.md §6.1.
type exportParams struct {
	ImagePNGBase64 string                    `json:"image_png" jsonschema:"Base64 PNG of the final remapped conversion result"`
	Palettes       [pce.MaxPalettes][]string `json:"palettes" jsonschema:"Compacted palette bank, 16 slots of up to 16 tokens"`
	TilePaletteMap []int                     `json:"tile_palette_map" jsonschema:"Per-tile assigned palette slot"`
	EmptyTiles     []bool                    `json:"empty_tiles" jsonschema:"Per-tile all-background flag"`
	VRAMBase       int                       `json:"vram_base" jsonschema:"VRAM word address the tile library starts at"`
	BATWidth       int                       `json:"bat_w" jsonschema:"BAT canvas width in tiles"`
	BATHeight      int                       `json:"bat_h" jsonschema:"BAT canvas height in tiles"`
	OffsetX        int                       `json:"offset_x" jsonschema:"BAT placement X offset in tiles"`
	OffsetY        int                       `json:"offset_y" jsonschema:"BAT placement Y offset in tiles"`
}

// ExportPlainTextInput is export_plain_text's input, per spec.md §6.1.
type ExportPlainTextInput struct {
	exportParams
}

// ExportPlainTextOutput is export_plain_text's output, per spec.md §6.1.
type ExportPlainTextOutput struct {
	PlainText       string `json:"plain_text"`
	TileCount       int    `json:"tile_count"`
	UniqueTileCount int    `json:"unique_tile_count"`
	BATSize         int    `json:"bat_size"`
}

// ExportBinariesInput is export_binaries's input, per spec.md §6.1.
type ExportBinariesInput struct {
	exportParams
	BATBigEndian   bool `json:"bat_big_endian" jsonschema:"Emit the BAT blob big-endian"`
	PalBigEndian   bool `json:"pal_big_endian" jsonschema:"Emit the palette blob big-endian"`
	TilesBigEndian bool `json:"tiles_big_endian" jsonschema:"Emit the tile blob big-endian"`
}

// ExportBinariesOutput is export_binaries's output, per spec.md §6.1.
type ExportBinariesOutput struct {
	BATBase64       string `json:"bat"`
	TilesBase64     string `json:"tiles"`
	PalettesBase64  string `json:"palettes"`
	TileCount       int    `json:"tile_count"`
	UniqueTileCount int    `json:"unique_tile_count"`
	BATSize         int    `json:"bat_size"`
}

// SaveBinariesToDiskInput is save_binaries_to_disk's input, per spec.md §6.1.
type SaveBinariesToDiskInput struct {
	BasePath    string `json:"base_path" jsonschema:"Path whose stem names the sibling output directory"`
	BATBase64   string `json:"bat" jsonschema:"Base64 BAT blob"`
	TilesBase64 string `json:"tiles" jsonschema:"Base64 tile blob"`
	PalBase64   string `json:"pal" jsonschema:"Base64 palette blob"`
}

// SaveBinariesToDiskOutput is save_binaries_to_disk's output.
type SaveBinariesToDiskOutput struct {
	OutputDir string `json:"output_dir"`
}

// RegisterExportTools registers export_plain_text, export_binaries, and
// save_binaries_to_disk, each rendering a completed conversion result
// (identified by its final remapped PNG plus palettes/tile_palette_map/
// empty_tiles) into hardware-ready output via internal/export.
func RegisterExportTools(server *mcp.Server, cfg *config.Config, logger core.Logger) {
	mcp.AddTool(
		server,
		&mcp.Tool{
			Name:        "export_plain_text",
			Description: "Render a conversion result as commented .dw/.db assembly text.",
		},
		maybeWrapWithTiming("export_plain_text", logger, cfg.EnableTiming, func(ctx context.Context, req *mcp.CallToolRequest, input ExportPlainTextInput) (*mcp.CallToolResult, *ExportPlainTextOutput, error) {
			tileToUnique, uniqueTiles, tilesX, tilesY, err := deriveTiles(input.exportParams)
			if err != nil {
				return nil, nil, fmt.Errorf("export_plain_text: %w", err)
			}

			text, dims, err := export.AssemblyText(input.Palettes, tileToUnique, input.TilePaletteMap, uniqueTiles, input.VRAMBase, input.BATWidth, input.BATHeight, input.OffsetX, input.OffsetY, tilesX, tilesY)
			if err != nil {
				return nil, nil, fmt.Errorf("export_plain_text: %w", err)
			}

			return nil, &ExportPlainTextOutput{
				PlainText:       text,
				TileCount:       dims.TileCount,
				UniqueTileCount: dims.UniqueTileCount,
				BATSize:         dims.BATSizeBytes,
			}, nil
		}),
	)

	mcp.AddTool(
		server,
		&mcp.Tool{
			Name:        "export_binaries",
			Description: "Render a conversion result as raw BAT/tile/palette byte blobs with per-blob endianness.",
		},
		maybeWrapWithTiming("export_binaries", logger, cfg.EnableTiming, func(ctx context.Context, req *mcp.CallToolRequest, input ExportBinariesInput) (*mcp.CallToolResult, *ExportBinariesOutput, error) {
			tileToUnique, uniqueTiles, tilesX, tilesY, err := deriveTiles(input.exportParams)
			if err != nil {
				return nil, nil, fmt.Errorf("export_binaries: %w", err)
			}

			bat, tiles, pal, dims, err := export.Binaries(input.Palettes, tileToUnique, input.TilePaletteMap, uniqueTiles, input.VRAMBase, input.BATWidth, input.BATHeight, input.OffsetX, input.OffsetY, tilesX, tilesY, input.BATBigEndian, input.PalBigEndian, input.TilesBigEndian)
			if err != nil {
				return nil, nil, fmt.Errorf("export_binaries: %w", err)
			}

			return nil, &ExportBinariesOutput{
				BATBase64:       base64.StdEncoding.EncodeToString(bat),
				TilesBase64:     base64.StdEncoding.EncodeToString(tiles),
				PalettesBase64:  base64.StdEncoding.EncodeToString(pal),
				TileCount:       dims.TileCount,
				UniqueTileCount: dims.UniqueTileCount,
				BATSize:         dims.BATSizeBytes,
			}, nil
		}),
	)

	mcp.AddTool(
		server,
		&mcp.Tool{
			Name:        "save_binaries_to_disk",
			Description: "Write a previously exported BAT/tile/palette blob set to <stem>.bat/.tiles/.pal in a sibling directory.",
		},
		maybeWrapWithTiming("save_binaries_to_disk", logger, cfg.EnableTiming, func(ctx context.Context, req *mcp.CallToolRequest, input SaveBinariesToDiskInput) (*mcp.CallToolResult, *SaveBinariesToDiskOutput, error) {
			bat, err := base64.StdEncoding.DecodeString(input.BATBase64)
			if err != nil {
				return nil, nil, pceerr.Wrap(pceerr.InvalidParameter, "invalid bat base64", err)
			}
			tiles, err := base64.StdEncoding.DecodeString(input.TilesBase64)
			if err != nil {
				return nil, nil, pceerr.Wrap(pceerr.InvalidParameter, "invalid tiles base64", err)
			}
			pal, err := base64.StdEncoding.DecodeString(input.PalBase64)
			if err != nil {
				return nil, nil, pceerr.Wrap(pceerr.InvalidParameter, "invalid pal base64", err)
			}

			if err := export.SaveToDisk(input.BasePath, bat, tiles, pal); err != nil {
				return nil, nil, fmt.Errorf("save_binaries_to_disk: %w", err)
			}

			stem := strings.TrimSuffix(filepath.Base(input.BasePath), filepath.Ext(input.BasePath))
			outputDir := filepath.Join(filepath.Dir(input.BasePath), stem)
			return nil, &SaveBinariesToDiskOutput{OutputDir: outputDir}, nil
		}),
	)
}

// deriveTiles decodes the conversion result's final PNG and re-derives the
// deduplicated planar-tile library and tile-to-unique map from it, since
// export_plain_text/export_binaries receive only the rendered image plus
// the palette/tile-palette-map/empty-tiles metadata, per spec.md §6.1.
func deriveTiles(p exportParams) (tileToUnique []int, uniqueTiles pce.UniqueTileTable, tilesX, tilesY int, err error) {
	raw, err := base64.StdEncoding.DecodeString(p.ImagePNGBase64)
	if err != nil {
		return nil, nil, 0, 0, pceerr.Wrap(pceerr.InvalidParameter, "invalid image_png base64", err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, 0, 0, pceerr.Wrap(pceerr.DecodeFailure, "failed to decode image_png", err)
	}

	rgba := toRGBA(img)
	tilesX = rgba.Bounds().Dx() / pce.TileSize
	tilesY = rgba.Bounds().Dy() / pce.TileSize

	if len(p.TilePaletteMap) != tilesX*tilesY {
		return nil, nil, 0, 0, pceerr.New(pceerr.InvalidParameter, "tile_palette_map length does not match image_png's tile grid")
	}

	uniqueTiles = pce.NewUniqueTileTable()
	tileToUnique = pce.EncodeTiles(rgba, tilesX, p.EmptyTiles, p.TilePaletteMap, p.Palettes, &uniqueTiles)
	return tileToUnique, uniqueTiles, tilesX, tilesY, nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
