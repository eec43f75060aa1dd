package tools

import (
	"context"
	"fmt"
	"image"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ochrefield/pcetile/internal/imageio"
	"github.com/ochrefield/pcetile/internal/imageops"
	"github.com/ochrefield/pcetile/internal/pce"
	"github.com/ochrefield/pcetile/internal/pceerr"
	"github.com/ochrefield/pcetile/internal/pipeline"
	"github.com/ochrefield/pcetile/pkg/config"
	"github.com/willibrandon/mtlog/core"
)

// RunConversionInput mirrors run_conversion's field set, per spec.md §6.1.
type RunConversionInput struct {
	InputPath               string `json:"input_path" jsonschema:"Path to the source image"`
	ResizeMethod            string `json:"resize_method" jsonschema:"One of nearest, catmullrom, lanczos3"`
	PaletteCount            int    `json:"palette_count" jsonschema:"Number of working palettes, 1-16"`
	DitherMode              string `json:"dither_mode" jsonschema:"One of none, floyd, ordered"`
	BackgroundColor         string `json:"background_color" jsonschema:"#RRGGBB background/transparency key"`
	KeepRatio               bool   `json:"keep_ratio" jsonschema:"Preserve aspect ratio, framing with background_color"`
	CurveLUT                []int  `json:"curve_lut" jsonschema:"256-entry tone-curve lookup table, or empty for identity"`
	TargetWidth             int    `json:"target_width" jsonschema:"Target width in pixels"`
	TargetHeight            int    `json:"target_height" jsonschema:"Target height in pixels"`
	UseDitherMask           bool   `json:"use_dither_mask" jsonschema:"Blend dithered/flat output by a mask"`
	DitherMask              []int  `json:"dither_mask" jsonschema:"Grayscale mask samples, row-major, mask_w*mask_h long"`
	MaskW                   int    `json:"mask_w" jsonschema:"Mask width in pixels"`
	MaskH                   int    `json:"mask_h" jsonschema:"Mask height in pixels"`
	PaletteGroupConstraints []int  `json:"palette_group_constraints" jsonschema:"Per-tile forced palette slot, or -1/out-of-range for unconstrained"`
	Seed                    uint64 `json:"seed" jsonschema:"Deterministic tie-break seed"`
}

// RunConversionOutput mirrors ConversionResult, per spec.md §6.1.
type RunConversionOutput struct {
	PreviewBase64   string                    `json:"preview_base64"`
	Palettes        [pce.MaxPalettes][]string `json:"palettes"`
	TilePaletteMap  []int                     `json:"tile_palette_map"`
	EmptyTiles      []bool                    `json:"empty_tiles"`
	TileCount       int                       `json:"tile_count"`
	UniqueTileCount int                       `json:"unique_tile_count"`
	TileToUnique    []int                     `json:"tile_to_unique"`
	WasPreResized   bool                      `json:"was_pre_resized"`
}

// RegisterConversionTools registers the run_conversion tool, which runs the
// full image-to-PCE pipeline and logs conversion-progress{percent,stage}
// stage transitions as they occur.
func RegisterConversionTools(server *mcp.Server, cfg *config.Config, logger core.Logger) {
	mcp.AddTool(
		server,
		&mcp.Tool{
			Name:        "run_conversion",
			Description: "Convert a truecolor source image into PCE palettes, tiles, and a tile/palette map.",
		},
		maybeWrapWithTiming("run_conversion", logger, cfg.EnableTiming, func(ctx context.Context, req *mcp.CallToolRequest, input RunConversionInput) (*mcp.CallToolResult, *RunConversionOutput, error) {
			opLogger := logger.WithContext(ctx)

			if err := imageio.ValidateExtension(input.InputPath); err != nil {
				return nil, nil, fmt.Errorf("run_conversion: %w", err)
			}

			src, err := imageio.Load(input.InputPath)
			if err != nil {
				return nil, nil, fmt.Errorf("run_conversion: %w", err)
			}

			curveLUT, err := toCurveLUT(input.CurveLUT)
			if err != nil {
				return nil, nil, fmt.Errorf("run_conversion: %w", err)
			}

			mask, err := toDitherMask(input.DitherMask, input.MaskW, input.MaskH)
			if err != nil {
				return nil, nil, fmt.Errorf("run_conversion: %w", err)
			}

			background := input.BackgroundColor
			if background == "" {
				background = cfg.DefaultBackgroundColor
			}

			preq := pipeline.Request{
				Source:                  src,
				ResizeMethod:            imageops.Filter(input.ResizeMethod),
				PaletteCount:            input.PaletteCount,
				DitherMode:              pce.DitherMode(input.DitherMode),
				BackgroundColor:         background,
				KeepRatio:               input.KeepRatio,
				CurveLUT:                curveLUT,
				TargetWidth:             input.TargetWidth,
				TargetHeight:            input.TargetHeight,
				UseDitherMask:           input.UseDitherMask,
				DitherMask:              mask,
				PaletteGroupConstraints: input.PaletteGroupConstraints,
				Seed:                    input.Seed,
			}

			progress := func(stage string, percent int) {
				opLogger.Information("conversion-progress {Stage} {Percent}%", stage, percent)
			}

			result, err := pipeline.Run(ctx, preq, opLogger, progress)
			if err != nil {
				opLogger.Error("run_conversion failed", "error", err)
				return nil, nil, fmt.Errorf("run_conversion: %w", err)
			}

			out := &RunConversionOutput{
				PreviewBase64:   result.PreviewPNGBase64,
				Palettes:        result.Palettes,
				TilePaletteMap:  result.TilePaletteMap,
				EmptyTiles:      result.EmptyTiles,
				TileCount:       result.TileCount,
				UniqueTileCount: result.UniqueTileCount,
				TileToUnique:    result.TileToUnique,
				WasPreResized:   result.WasPreResized,
			}
			return nil, out, nil
		}),
	)
}

// toCurveLUT mirrors ApplyCurve's own guard: a lookup of any length other
// than exactly 256 passes the image through unchanged, per spec.md §4.3.
func toCurveLUT(in []int) ([]uint8, error) {
	if len(in) != 256 {
		return nil, nil
	}
	out := make([]uint8, 256)
	for i, v := range in {
		if v < 0 || v > 255 {
			return nil, pceerr.New(pceerr.InvalidParameter, "curve_lut entries must be 0-255")
		}
		out[i] = uint8(v)
	}
	return out, nil
}

func toDitherMask(samples []int, w, h int) (*image.Gray, error) {
	if len(samples) == 0 {
		return nil, nil
	}
	if w <= 0 || h <= 0 || len(samples) != w*h {
		return nil, pceerr.New(pceerr.InvalidParameter, "dither_mask must have exactly mask_w*mask_h samples")
	}
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range samples {
		if v < 0 || v > 255 {
			return nil, pceerr.New(pceerr.InvalidParameter, "dither_mask samples must be 0-255")
		}
		mask.Pix[i] = uint8(v)
	}
	return mask, nil
}
