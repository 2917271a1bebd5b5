package tools

import (
	"context"
	"fmt"

	"github.com/calder/agentdeck/internal/dispatch"
	"github.com/mark3labs/mcp-go/mcp"
)

// RetryTool handles the dispatch_retry MCP tool.
type RetryTool struct {
	supervisor *dispatch.Supervisor
}

// NewRetryTool creates a RetryTool.
func NewRetryTool(sup *dispatch.Supervisor) *RetryTool {
	return &RetryTool{supervisor: sup}
}

// Definition returns the MCP tool definition for dispatch_retry.
func (t *RetryTool) Definition() mcp.Tool {
	return mcp.NewTool("dispatch_retry",
		mcp.WithDescription(
			"Re-dispatch a failed or cancelled task with its original target, input, and options. "+
				"Creates a brand-new task id; the original task is left untouched for audit.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Task id of the failed or cancelled task to retry"),
		),
	)
}

// Handle processes the dispatch_retry tool call.
func (t *RetryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("validation error: 'id' is required"), nil
	}

	task, err := t.supervisor.Retry(ctx, id)
	if err != nil {
		return errResult(err), nil
	}

	summary := fmt.Sprintf("Retried %s as %s (status: %s)", id, task.ID, task.Status)
	if task.Status == dispatch.StatusFailed {
		summary += "\n" + task.Error
	}
	return mcp.NewToolResultText(summary), nil
}
