package registry

import (
	"context"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// RenderToolFilter conditionally hides report-writing tools unless explicitly
// enabled. Enable by setting environment variable MCPEDA_ENABLE_RENDER=true.
type RenderToolFilter struct {
	allowRender bool
}

// NewRenderToolFilterFromEnv constructs a filter using MCPEDA_ENABLE_RENDER.
func NewRenderToolFilterFromEnv() *RenderToolFilter {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("MCPEDA_ENABLE_RENDER")))
	allow := v == "1" || v == "true" || v == "yes"
	return &RenderToolFilter{allowRender: allow}
}

// FilterTools implements server tool filtering semantics. When rendering is
// disabled, tools that write report artifacts to disk (render_ prefix) are
// excluded from discovery; read-only analysis tools stay visible.
func (f *RenderToolFilter) FilterTools(ctx context.Context, tools []mcp.Tool) []mcp.Tool {
	if f.allowRender {
		return tools
	}
	out := make([]mcp.Tool, 0, len(tools))
	for _, t := range tools {
		if strings.HasPrefix(strings.ToLower(t.Name), "render_") {
			continue
		}
		out = append(out, t)
	}
	return out
}
