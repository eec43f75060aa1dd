package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ochrefield/pcetile/internal/pceerr"
	"github.com/ochrefield/pcetile/pkg/config"
	"github.com/willibrandon/mtlog/core"
)

// stubOutput is the (unreachable) output type shared by every stub tool.
type stubOutput struct{}

// SaveHTMLReportInput is save_html_report's input, per spec.md §6.1.
type SaveHTMLReportInput struct {
	Path string `json:"path" jsonschema:"Destination path for the HTML report"`
}

// SaveProjectInput is save_project's input, per spec.md §6.1.
type SaveProjectInput struct {
	Path string `json:"path" jsonschema:"Destination path for the project file"`
}

// LoadProjectInput is load_project's input, per spec.md §6.1.
type LoadProjectInput struct {
	Path string `json:"path" jsonschema:"Path to the project file"`
}

// RegisterStubTools registers save_html_report, save_project, and
// load_project as discoverable MCP tools that return an InvalidParameter
// error. These commands belong to the desktop shell (HTML report viewer,
// project-file persistence) that spec.md §1 places out of scope; they are
// registered so the command surface stays complete and discoverable, not
// because this module implements them.
func RegisterStubTools(server *mcp.Server, cfg *config.Config, logger core.Logger) {
	mcp.AddTool(
		server,
		&mcp.Tool{
			Name:        "save_html_report",
			Description: "Not implemented in this module: HTML report generation belongs to the desktop shell.",
		},
		maybeWrapWithTiming("save_html_report", logger, cfg.EnableTiming, func(ctx context.Context, req *mcp.CallToolRequest, input SaveHTMLReportInput) (*mcp.CallToolResult, *stubOutput, error) {
			return nil, nil, pceerr.New(pceerr.InvalidParameter, "save_html_report is not implemented in this module")
		}),
	)

	mcp.AddTool(
		server,
		&mcp.Tool{
			Name:        "save_project",
			Description: "Not implemented in this module: project-file serialization belongs to the desktop shell.",
		},
		maybeWrapWithTiming("save_project", logger, cfg.EnableTiming, func(ctx context.Context, req *mcp.CallToolRequest, input SaveProjectInput) (*mcp.CallToolResult, *stubOutput, error) {
			return nil, nil, pceerr.New(pceerr.InvalidParameter, "save_project is not implemented in this module")
		}),
	)

	mcp.AddTool(
		server,
		&mcp.Tool{
			Name:        "load_project",
			Description: "Not implemented in this module: project-file serialization belongs to the desktop shell.",
		},
		maybeWrapWithTiming("load_project", logger, cfg.EnableTiming, func(ctx context.Context, req *mcp.CallToolRequest, input LoadProjectInput) (*mcp.CallToolResult, *stubOutput, error) {
			return nil, nil, pceerr.New(pceerr.InvalidParameter, "load_project is not implemented in this module")
		}),
	)
}
