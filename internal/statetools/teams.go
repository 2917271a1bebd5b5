package statetools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calder/agentdeck/internal/state"
	"github.com/mark3labs/mcp-go/mcp"
)

// TeamsTool handles the teams MCP tool.
type TeamsTool struct {
	store *state.TeamStore
}

// NewTeamsTool creates a TeamsTool.
func NewTeamsTool(store *state.TeamStore) *TeamsTool {
	return &TeamsTool{store: store}
}

// Definition returns the MCP tool definition for teams.
func (t *TeamsTool) Definition() mcp.Tool {
	return mcp.NewTool("teams",
		mcp.WithDescription(
			"Named rosters of collaborating agents. Each member can map to a dispatch "+
				"target, so a team describes who to fan work out to.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Description("Operation to perform"),
			mcp.Enum("save", "get", "list", "delete"),
		),
		mcp.WithString("name",
			mcp.Description("Team name (required for save/get/delete)"),
		),
		mcp.WithString("members",
			mcp.Description(`JSON array of members for save, e.g. [{"name":"researcher","agent":"codex","role":"research"}]`),
		),
	)
}

// Handle processes the teams tool call.
func (t *TeamsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	action := req.GetString("action", "")
	name := req.GetString("name", "")

	switch action {
	case "save":
		membersJSON := req.GetString("members", "")
		if name == "" || membersJSON == "" {
			return mcp.NewToolResultError("'name' and 'members' are required for save"), nil
		}
		var members []state.Member
		if err := json.Unmarshal([]byte(membersJSON), &members); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parsing 'members': %v", err)), nil
		}
		if err := t.store.Save(state.Team{Name: name, Members: members}); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Team %q saved (%d members)", name, len(members))), nil

	case "get":
		if name == "" {
			return mcp.NewToolResultError("'name' is required for get"), nil
		}
		team, ok := t.store.Get(name)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("team %q not found", name)), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "Team: %s\n\n", team.Name)
		for _, m := range team.Members {
			fmt.Fprintf(&sb, "- %s", m.Name)
			if m.Agent != "" {
				fmt.Fprintf(&sb, " (target: %s)", m.Agent)
			}
			if m.Role != "" {
				fmt.Fprintf(&sb, " — %s", m.Role)
			}
			sb.WriteByte('\n')
		}
		return mcp.NewToolResultText(sb.String()), nil

	case "list":
		teams := t.store.List()
		if len(teams) == 0 {
			return mcp.NewToolResultText("No teams saved."), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "%d team(s):\n\n", len(teams))
		for _, team := range teams {
			fmt.Fprintf(&sb, "- %s (%d members)\n", team.Name, len(team.Members))
		}
		return mcp.NewToolResultText(sb.String()), nil

	case "delete":
		if name == "" {
			return mcp.NewToolResultError("'name' is required for delete"), nil
		}
		if err := t.store.Delete(name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Team %q deleted", name)), nil

	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}
}
