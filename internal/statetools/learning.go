package statetools

import (
	"context"
	"fmt"
	"strings"

	"github.com/calder/agentdeck/internal/state"
	"github.com/mark3labs/mcp-go/mcp"
)

// LearningTool handles the learning MCP tool.
type LearningTool struct {
	store *state.LearningStore
}

// NewLearningTool creates a LearningTool.
func NewLearningTool(store *state.LearningStore) *LearningTool {
	return &LearningTool{store: store}
}

// Definition returns the MCP tool definition for learning.
func (t *LearningTool) Definition() mcp.Tool {
	return mcp.NewTool("learning",
		mcp.WithDescription(
			"Record lessons learned so future sessions don't repeat mistakes: "+
				"gotchas, fixed bugs, decisions and their reasons.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Operation to perform"),
			mcp.Enum("add", "list", "remove"),
		),
		mcp.WithString("topic",
			mcp.Description("Topic the lesson belongs to (required for add, optional filter for list)"),
		),
		mcp.WithString("lesson",
			mcp.Description("The lesson text (required for add)"),
		),
		mcp.WithNumber("id",
			mcp.Description("Lesson id (required for remove)"),
		),
	)
}

// Handle processes the learning tool call.
func (t *LearningTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := req.GetString("action", "")

	switch action {
	case "add":
		topic := req.GetString("topic", "")
		lesson := req.GetString("lesson", "")
		if topic == "" || lesson == "" {
			return mcp.NewToolResultError("'topic' and 'lesson' are required for add"), nil
		}
		added, err := t.store.Add(topic, lesson)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Lesson recorded (id %d) under %q", added.ID, added.Topic)), nil

	case "list":
		lessons := t.store.List(req.GetString("topic", ""))
		if len(lessons) == 0 {
			return mcp.NewToolResultText("No lessons recorded."), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d lesson(s):\n\n", len(lessons))
		for _, l := range lessons {
			fmt.Fprintf(&sb, "%d [%s]: %s\n", l.ID, l.Topic, l.Lesson)
		}
		return mcp.NewToolResultText(sb.String()), nil

	case "remove":
		id := intArg(req, "id", 0)
		if id == 0 {
			return mcp.NewToolResultError("'id' is required for remove"), nil
		}
		if err := t.store.Remove(id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Lesson %d removed", id)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
