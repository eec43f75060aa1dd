package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ochrefield/pcetile/internal/imageio"
	"github.com/ochrefield/pcetile/pkg/config"
	"github.com/willibrandon/mtlog/core"
)

// OpenImageInput defines the input parameters for the open_image tool.
type OpenImageInput struct {
	Path string `json:"path" jsonschema:"Path to the source image file"`
}

// OpenImageOutput defines the output for the open_image tool.
type OpenImageOutput struct {
	Path string `json:"path" jsonschema:"Validated path to the source image file"`
}

// RegisterImageTools registers the open_image tool. This headless server
// has no native file picker; the desktop shell that owns one is out of
// scope (spec.md §1), so open_image instead validates that path points at
// a format run_conversion can decode.
func RegisterImageTools(server *mcp.Server, cfg *config.Config, logger core.Logger) {
	mcp.AddTool(
		server,
		&mcp.Tool{
			Name:        "open_image",
			Description: "Validate a source image path. Accepts png, jpg, jpeg, webp, gif, bmp.",
		},
		maybeWrapWithTiming("open_image", logger, cfg.EnableTiming, func(ctx context.Context, req *mcp.CallToolRequest, input OpenImageInput) (*mcp.CallToolResult, *OpenImageOutput, error) {
			opLogger := logger.WithContext(ctx)

			if err := imageio.ValidateExtension(input.Path); err != nil {
				opLogger.Error("open_image rejected path", "path", input.Path, "error", err)
				return nil, nil, fmt.Errorf("open_image: %w", err)
			}

			opLogger.Debug("open_image validated path", "path", input.Path)
			return nil, &OpenImageOutput{Path: input.Path}, nil
		}),
	)
}
