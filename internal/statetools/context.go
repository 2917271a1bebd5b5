package statetools

import (
	"context"
	"fmt"
	"strings"

	"github.com/calder/agentdeck/internal/state"
	"github.com/mark3labs/mcp-go/mcp"
)

// ContextTool handles the context MCP tool: shared key-value facts
// that persist across agent sessions.
type ContextTool struct {
	store *state.ContextStore
}

// NewContextTool creates a ContextTool.
func NewContextTool(store *state.ContextStore) *ContextTool {
	return &ContextTool{store: store}
}

// Definition returns the MCP tool definition for context.
func (t *ContextTool) Definition() mcp.Tool {
	return mcp.NewTool("context",
		mcp.WithDescription(
			"Persistent shared context: key-value facts that survive between sessions. "+
				"Use it for project facts, conventions, and current focus.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Operation to perform"),
			mcp.Enum("set", "get", "delete", "list"),
		),
		mcp.WithString("key",
			mcp.Description("Context key (required for set/get/delete)"),
		),
		mcp.WithString("value",
			mcp.Description("Context value (required for set)"),
		),
	)
}

// Handle processes the context tool call.
func (t *ContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := req.GetString("action", "")
	key := req.GetString("key", "")

	switch action {
	case "set":
		value := req.GetString("value", "")
		if key == "" || value == "" {
			return mcp.NewToolResultError("'key' and 'value' are required for set"), nil
		}
		if err := t.store.Set(key, value); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Context set: %s", key)), nil

	case "get":
		if key == "" {
			return mcp.NewToolResultError("'key' is required for get"), nil
		}
		entry, ok := t.store.Get(key)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("context key %q not found", key)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s = %s\n(updated %s)", entry.Key, entry.Value, entry.UpdatedAt)), nil

	case "delete":
		if key == "" {
			return mcp.NewToolResultError("'key' is required for delete"), nil
		}
		if err := t.store.Delete(key); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Context deleted: %s", key)), nil

	case "list":
		entries := t.store.List()
		if len(entries) == 0 {
			return mcp.NewToolResultText("No context entries."), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d context entr(ies):\n\n", len(entries))
		for _, e := range entries {
			fmt.Fprintf(&sb, "- %s = %s\n", e.Key, e.Value)
		}
		return mcp.NewToolResultText(sb.String()), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
