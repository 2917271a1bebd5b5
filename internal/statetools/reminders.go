package statetools

import (
	"context"
	"fmt"
	"strings"

	"github.com/calder/agentdeck/internal/state"
	"github.com/mark3labs/mcp-go/mcp"
)

// RemindersTool handles the reminders MCP tool.
type RemindersTool struct {
	store *state.ReminderStore
}

// NewRemindersTool creates a RemindersTool.
func NewRemindersTool(store *state.ReminderStore) *RemindersTool {
	return &RemindersTool{store: store}
}

// Definition returns the MCP tool definition for reminders.
func (t *RemindersTool) Definition() mcp.Tool {
	return mcp.NewTool("reminders",
		mcp.WithDescription(
			"Persistent reminders for the agent: things to pick up in a later session. "+
				"Add items as they come up, list open ones at session start, complete them when done.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Operation to perform"),
			mcp.Enum("add", "list", "complete", "remove"),
		),
		mcp.WithString("text",
			mcp.Description("Reminder text (required for add)"),
		),
		mcp.WithNumber("id",
			mcp.Description("Reminder id (required for complete/remove)"),
		),
		mcp.WithBoolean("include_done",
			mcp.Description("Include completed reminders when listing (default false)"),
		),
	)
}

// Handle processes the reminders tool call.
func (t *RemindersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := req.GetString("action", "")

	switch action {
	case "add":
		text := req.GetString("text", "")
		if text == "" {
			return mcp.NewToolResultError("'text' is required for add"), nil
		}
		rem, err := t.store.Add(text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reminder added (id %d): %s", rem.ID, rem.Text)), nil

	case "list":
		reminders := t.store.List(boolArg(req, "include_done", false))
		if len(reminders) == 0 {
			return mcp.NewToolResultText("No open reminders."), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d reminder(s):\n\n", len(reminders))
		for _, r := range reminders {
			mark := " "
			if r.Done {
				mark = "x"
			}
			fmt.Fprintf(&sb, "[%s] %d: %s\n", mark, r.ID, r.Text)
		}
		return mcp.NewToolResultText(sb.String()), nil

	case "complete":
		id := intArg(req, "id", 0)
		if id == 0 {
			return mcp.NewToolResultError("'id' is required for complete"), nil
		}
		rem, err := t.store.Complete(id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reminder %d completed: %s", rem.ID, rem.Text)), nil

	case "remove":
		id := intArg(req, "id", 0)
		if id == 0 {
			return mcp.NewToolResultError("'id' is required for remove"), nil
		}
		if err := t.store.Remove(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Reminder %d removed", id)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
