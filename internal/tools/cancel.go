package tools

import (
	"context"
	"fmt"

	"github.com/calder/agentdeck/internal/dispatch"
	"github.com/mark3labs/mcp-go/mcp"
)

// CancelTool handles the dispatch_cancel MCP tool.
type CancelTool struct {
	supervisor *dispatch.Supervisor
}

// NewCancelTool creates a CancelTool.
func NewCancelTool(sup *dispatch.Supervisor) *CancelTool {
	return &CancelTool{supervisor: sup}
}

// Definition returns the MCP tool definition for dispatch_cancel.
func (t *CancelTool) Definition() mcp.Tool {
	return mcp.NewTool("dispatch_cancel",
		mcp.WithDescription(
			"Cancel a created or running task. Sends SIGTERM to the worker's process group "+
				"and marks the task cancelled immediately (best-effort — a worker that ignores "+
				"the signal keeps running until it exits on its own).",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task id returned by dispatch"),
		),
	)
}

// Handle processes the dispatch_cancel tool call.
func (t *CancelTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("validation error: 'id' is required"), nil
	}

	task, err := t.supervisor.Cancel(id)
	if err != nil {
		return errResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Cancelled %s (was pid %d)", task.ID, task.PID)), nil
}
