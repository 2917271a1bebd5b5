package tools

import (
	"context"

	"github.com/calder/agentdeck/internal/dispatch"
	"github.com/mark3labs/mcp-go/mcp"
)

// ResultTool handles the dispatch_result MCP tool.
type ResultTool struct {
	supervisor *dispatch.Supervisor
}

// NewResultTool creates a ResultTool.
func NewResultTool(sup *dispatch.Supervisor) *ResultTool {
	return &ResultTool{supervisor: sup}
}

// Definition returns the MCP tool definition for dispatch_result.
func (t *ResultTool) Definition() mcp.Tool {
	return mcp.NewTool("dispatch_result",
		mcp.WithDescription(
			"Get the current status and result of a dispatched task. "+
				"A task still reported as running is re-checked against its status marker "+
				"and the OS process table first, so completed work is never shown as stale 'running'.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task id returned by dispatch"),
		),
	)
}

// Handle processes the dispatch_result tool call.
func (t *ResultTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("validation error: 'id' is required"), nil
	}

	task, err := t.supervisor.GetResult(id)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(formatTask(task)), nil
}
