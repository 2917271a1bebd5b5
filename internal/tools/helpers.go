// Package tools implements the MCP tool handlers for the dispatch
// subsystem.
//
// Each tool follows the same pattern: a struct with its dependencies
// injected via constructor, Definition() returning the mcp.Tool schema,
// and Handle() processing the request. Every failure is converted into
// an MCP error result — no error from the dispatch subsystem is allowed
// to propagate past this boundary as a Go error.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calder/agentdeck/internal/dispatch"
	"github.com/mark3labs/mcp-go/mcp"
)

// errResult converts a dispatch error into an MCP error result with a
// stable prefix naming the failure class.
func errResult(err error) *mcp.CallToolResult {
	var (
		ve *dispatch.ValidationError
		nf *dispatch.NotFoundError
		pe *dispatch.PreconditionError
		se *dispatch.SpawnError
	)
	switch {
	case errors.As(err, &ve):
		return mcp.NewToolResultError("validation error: " + ve.Msg)
	case errors.As(err, &nf):
		return mcp.NewToolResultError("not found: " + nf.Error())
	case errors.As(err, &pe):
		return mcp.NewToolResultError("precondition failed: " + pe.Error())
	case errors.As(err, &se):
		return mcp.NewToolResultError("spawn error: " + se.Error())
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

// intArg extracts an integer argument, returning defaultVal if the key
// is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// formatTask renders a task as a human-readable summary block.
func formatTask(t *dispatch.Task) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Task: %s\n", t.ID)
	fmt.Fprintf(&sb, "Target: %s\n", t.Target)
	fmt.Fprintf(&sb, "Status: %s\n", t.Status)
	if t.PID > 0 {
		fmt.Fprintf(&sb, "PID: %d\n", t.PID)
	}
	fmt.Fprintf(&sb, "Session: %s\n", t.SessionPath)
	fmt.Fprintf(&sb, "Created: %s\n", t.CreatedAt)
	if t.CompletedAt != "" {
		fmt.Fprintf(&sb, "Completed: %s\n", t.CompletedAt)
	}
	if t.ExitCode != nil {
		fmt.Fprintf(&sb, "Exit code: %d\n", *t.ExitCode)
	}
	if t.Error != "" {
		fmt.Fprintf(&sb, "Error: %s\n", t.Error)
	}
	if t.Output != "" {
		fmt.Fprintf(&sb, "\n--- Output ---\n%s", t.Output)
	}
	return sb.String()
}

// formatTaskLine renders a one-line task summary for list output.
func formatTaskLine(t *dispatch.Task) string {
	line := fmt.Sprintf("%s  %-10s %-9s %s", t.CreatedAt, t.Target, t.Status, t.ID)
	if t.Error != "" {
		line += "  (" + t.Error + ")"
	}
	return line
}
