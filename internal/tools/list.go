package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/calder/agentdeck/internal/dispatch"
	"github.com/mark3labs/mcp-go/mcp"
)

// ListTool handles the dispatch_list MCP tool.
type ListTool struct {
	supervisor *dispatch.Supervisor
}

// NewListTool creates a ListTool.
func NewListTool(sup *dispatch.Supervisor) *ListTool {
	return &ListTool{supervisor: sup}
}

// Definition returns the MCP tool definition for dispatch_list.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("dispatch_list",
		mcp.WithDescription(
			"List dispatched tasks, most recent first. This is a cheap ledger read with no "+
				"reconciliation — a task shown as running may already be finished; "+
				"dispatch_result gives the authoritative answer for a specific task.",
		),
		mcp.WithString("target",
			mcp.Description("Only show tasks for this worker kind"),
		),
		mcp.WithString("status",
			mcp.Description("Only show tasks with this status"),
			mcp.Enum("created", "running", "completed", "failed", "cancelled", "timeout"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of tasks to return (default 20)"),
		),
	)
}

// Handle processes the dispatch_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target := req.GetString("target", "")
	status := dispatch.Status(req.GetString("status", ""))
	limit := intArg(req, "limit", 20)

	tasks, err := t.supervisor.List(target, status, limit)
	if err != nil {
		return errResult(err), nil
	}

	if len(tasks) == 0 {
		return mcp.NewToolResultText("No tasks found."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d task(s), most recent first:\n\n", len(tasks))
	for _, task := range tasks {
		sb.WriteString(formatTaskLine(task))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}
