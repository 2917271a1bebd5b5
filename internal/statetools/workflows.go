package statetools

import (
	"context"
	"fmt"
	"strings"

	"github.com/calder/agentdeck/internal/state"
	"github.com/mark3labs/mcp-go/mcp"
)

// WorkflowsTool handles the workflows MCP tool.
type WorkflowsTool struct {
	store *state.WorkflowStore
}

// NewWorkflowsTool creates a WorkflowsTool.
func NewWorkflowsTool(store *state.WorkflowStore) *WorkflowsTool {
	return &WorkflowsTool{store: store}
}

// Definition returns the MCP tool definition for workflows.
func (t *WorkflowsTool) Definition() mcp.Tool {
	return mcp.NewTool("workflows",
		mcp.WithDescription(
			"Named, reusable step lists. Save a procedure once (release checklist, "+
				"review flow) and replay it in any later session.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Operation to perform"),
			mcp.Enum("save", "get", "list", "delete"),
		),
		mcp.WithString("name",
			mcp.Description("Workflow name (required for save/get/delete)"),
		),
		mcp.WithString("description",
			mcp.Description("What the workflow is for (save only)"),
		),
		mcp.WithArray("steps",
			mcp.Description("Ordered steps (required for save)"),
			mcp.WithStringItems(),
		),
	)
}

// Handle processes the workflows tool call.
func (t *WorkflowsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := req.GetString("action", "")
	name := req.GetString("name", "")

	switch action {
	case "save":
		steps := stringsArg(req, "steps")
		if name == "" || len(steps) == 0 {
			return mcp.NewToolResultError("'name' and 'steps' are required for save"), nil
		}
		wf := state.Workflow{
			Name:        name,
			Description: req.GetString("description", ""),
			Steps:       steps,
		}
		if err := t.store.Save(wf); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Workflow %q saved (%d steps)", name, len(steps))), nil

	case "get":
		if name == "" {
			return mcp.NewToolResultError("'name' is required for get"), nil
		}
		wf, ok := t.store.Get(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("workflow %q not found", name)), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Workflow: %s\n", wf.Name)
		if wf.Description != "" {
			fmt.Fprintf(&sb, "%s\n", wf.Description)
		}
		sb.WriteByte('\n')
		for i, step := range wf.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
		return mcp.NewToolResultText(sb.String()), nil

	case "list":
		workflows := t.store.List()
		if len(workflows) == 0 {
			return mcp.NewToolResultText("No workflows saved."), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d workflow(s):\n\n", len(workflows))
		for _, wf := range workflows {
			fmt.Fprintf(&sb, "- %s (%d steps)", wf.Name, len(wf.Steps))
			if wf.Description != "" {
				fmt.Fprintf(&sb, " — %s", wf.Description)
			}
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil

	case "delete":
		if name == "" {
			return mcp.NewToolResultError("'name' is required for delete"), nil
		}
		if err := t.store.Delete(name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Workflow %q deleted", name)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
