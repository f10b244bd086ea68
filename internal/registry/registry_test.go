package registry

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndGet(t *testing.T) {
	r := New()

	_, ok := r.Get("open_dataset")
	require.False(t, ok)

	r.Register(mcp.NewTool("open_dataset"))
	r.Register(mcp.NewTool("summary_stats"))

	tool, ok := r.Get("open_dataset")
	require.True(t, ok)
	require.Equal(t, "open_dataset", tool.Name)
}

func TestRegistryToolsSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"render_report", "eda_plan", "open_dataset"} {
		r.Register(mcp.NewTool(name))
	}

	tools, err := r.Tools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 3)
	require.Equal(t, "eda_plan", tools[0].Name)
	require.Equal(t, "open_dataset", tools[1].Name)
	require.Equal(t, "render_report", tools[2].Name)
}

func TestRenderToolFilter(t *testing.T) {
	tools := []mcp.Tool{
		mcp.NewTool("open_dataset"),
		mcp.NewTool("render_report"),
		mcp.NewTool("summary_stats"),
	}

	t.Setenv("MCPEDA_ENABLE_RENDER", "")
	hidden := NewRenderToolFilterFromEnv().FilterTools(context.Background(), tools)
	require.Len(t, hidden, 2)
	for _, tool := range hidden {
		require.NotEqual(t, "render_report", tool.Name)
	}

	for _, val := range []string{"1", "true", "YES"} {
		t.Setenv("MCPEDA_ENABLE_RENDER", val)
		shown := NewRenderToolFilterFromEnv().FilterTools(context.Background(), tools)
		require.Len(t, shown, 3, "MCPEDA_ENABLE_RENDER=%s", val)
	}

	t.Setenv("MCPEDA_ENABLE_RENDER", "0")
	require.Len(t, NewRenderToolFilterFromEnv().FilterTools(context.Background(), tools), 2)
}
