package tools

import (
	"context"
	"fmt"

	"github.com/calder/agentdeck/internal/dispatch"
	"github.com/mark3labs/mcp-go/mcp"
)

// DispatchTool handles the dispatch MCP tool: launch an external agent
// worker asynchronously and return its task id immediately.
type DispatchTool struct {
	supervisor *dispatch.Supervisor
}

// NewDispatchTool creates a DispatchTool.
func NewDispatchTool(sup *dispatch.Supervisor) *DispatchTool {
	return &DispatchTool{supervisor: sup}
}

// Definition returns the MCP tool definition for dispatch.
func (t *DispatchTool) Definition() mcp.Tool {
	return mcp.NewTool("dispatch",
		mcp.WithDescription(
			"Launch an external agent worker asynchronously. Returns a task id immediately — "+
				"the worker runs detached and survives controller restarts. "+
				"Poll dispatch_result with the task id to retrieve the outcome.",
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Worker kind to invoke (e.g. 'codex', 'claude', 'gemini')"),
		),
		mcp.WithString("input",
			mcp.Required(),
			mcp.Description("The prompt/request payload for the worker"),
		),
		mcp.WithString("workdir",
			mcp.Description("Working directory for the worker (default: the task's session directory)"),
		),
		mcp.WithNumber("timeout_seconds",
			mcp.Description("Time budget passed to the wrapper (default: target config or 3600)"),
		),
		mcp.WithBoolean("elevated",
			mcp.Description("Ask the wrapper to run the worker with elevated privileges"),
		),
		mcp.WithBoolean("continue",
			mcp.Description("Ask the wrapper to continue the worker's previous conversation"),
		),
	)
}

// Handle processes the dispatch tool call.
func (t *DispatchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target := req.GetString("target", "")
	input := req.GetString("input", "")

	opts := dispatch.Options{
		TimeoutSeconds: intArg(req, "timeout_seconds", 0),
		Workdir:        req.GetString("workdir", ""),
		Elevated:       boolArg(req, "elevated", false),
		Continue:       boolArg(req, "continue", false),
	}

	task, err := t.supervisor.Dispatch(ctx, target, input, opts)
	if err != nil {
		return errResult(err), nil
	}

	summary := fmt.Sprintf("Dispatched %s to %s (status: %s)", task.ID, task.Target, task.Status)
	if task.Status == dispatch.StatusFailed {
		summary += "\n" + task.Error
	} else {
		summary += fmt.Sprintf("\nPID: %d\nPoll with dispatch_result id=%s", task.PID, task.ID)
	}
	return mcp.NewToolResultText(summary), nil
}
