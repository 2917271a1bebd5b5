package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/calder/agentdeck/internal/dispatch"
	"github.com/mark3labs/mcp-go/mcp"
)

// HistoryTool handles the dispatch_history MCP tool. It is only
// registered when the history subsystem initialized successfully.
type HistoryTool struct {
	supervisor *dispatch.Supervisor
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(sup *dispatch.Supervisor) *HistoryTool {
	return &HistoryTool{supervisor: sup}
}

// Definition returns the MCP tool definition for dispatch_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("dispatch_history",
		mcp.WithDescription(
			"Show the audit trail of task status transitions, newest first. "+
				"Useful to see when a task moved between created/running/terminal states and why.",
		),
		mcp.WithString("id",
			mcp.Description("Limit to a single task id (default: all tasks)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of transitions to return (default 20)"),
		),
	)
}

// Handle processes the dispatch_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	limit := intArg(req, "limit", 20)

	transitions, err := t.supervisor.History(id, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("querying history: %v", err)), nil
	}
	if len(transitions) == 0 {
		return mcp.NewToolResultText("No transitions recorded."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d transition(s), newest first:\n\n", len(transitions))
	for _, tr := range transitions {
		from := tr.From
		if from == "" {
			from = "-"
		}
		fmt.Fprintf(&sb, "%s  %s  %s → %s", tr.CreatedAt, tr.TaskID, from, tr.To)
		if tr.Detail != "" {
			fmt.Fprintf(&sb, "  (%s)", tr.Detail)
		}
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}
