package statetools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/calder/agentdeck/internal/state"
	"github.com/calder/agentdeck/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("store.New() error: %v", err)
	}
	return s
}

func callReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, not TextContent", result.Content[0])
	}
	return tc.Text
}

func TestContextTool_SetGetList(t *testing.T) {
	tool := NewContextTool(state.NewContextStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "set", "key": "focus", "value": "dispatch",
	}))
	if err != nil {
		t.Fatalf("Handle(set) error: %v", err)
	}
	if result.IsError {
		t.Fatalf("set failed: %s", textContent(t, result))
	}

	result, _ = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "get", "key": "focus",
	}))
	if !strings.Contains(textContent(t, result), "focus = dispatch") {
		t.Errorf("unexpected get output: %s", textContent(t, result))
	}

	result, _ = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "list",
	}))
	if !strings.Contains(textContent(t, result), "- focus = dispatch") {
		t.Errorf("unexpected list output: %s", textContent(t, result))
	}
}

func TestContextTool_GetMissingKey(t *testing.T) {
	tool := NewContextTool(state.NewContextStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "get", "key": "ghost",
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing key")
	}
}

func TestContextTool_UnknownAction(t *testing.T) {
	tool := NewContextTool(state.NewContextStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "explode",
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown action")
	}
}

func TestRemindersTool_AddCompleteList(t *testing.T) {
	tool := NewRemindersTool(state.NewReminderStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "add", "text": "check dispatch timeouts",
	}))
	if err != nil {
		t.Fatalf("Handle(add) error: %v", err)
	}
	if !strings.Contains(textContent(t, result), "Reminder added (id 1)") {
		t.Errorf("unexpected add output: %s", textContent(t, result))
	}

	result, _ = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "complete", "id": float64(1),
	}))
	if result.IsError {
		t.Fatalf("complete failed: %s", textContent(t, result))
	}

	// Completed reminders drop out of the default listing.
	result, _ = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "list",
	}))
	if textContent(t, result) != "No open reminders." {
		t.Errorf("unexpected list output: %s", textContent(t, result))
	}

	result, _ = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "list", "include_done": true,
	}))
	if !strings.Contains(textContent(t, result), "[x] 1: check dispatch timeouts") {
		t.Errorf("unexpected list output: %s", textContent(t, result))
	}
}

func TestRemindersTool_MissingID(t *testing.T) {
	tool := NewRemindersTool(state.NewReminderStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "complete",
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing id")
	}
}

func TestWorkflowsTool_SaveAndGet(t *testing.T) {
	tool := NewWorkflowsTool(state.NewWorkflowStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action":      "save",
		"name":        "release",
		"description": "ship a version",
		"steps":       []interface{}{"run tests", "tag", "publish"},
	}))
	if err != nil {
		t.Fatalf("Handle(save) error: %v", err)
	}
	if !strings.Contains(textContent(t, result), `Workflow "release" saved (3 steps)`) {
		t.Errorf("unexpected save output: %s", textContent(t, result))
	}

	result, _ = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "get", "name": "release",
	}))
	text := textContent(t, result)
	if !strings.Contains(text, "2. tag") {
		t.Errorf("steps not numbered in get output: %s", text)
	}
	if !strings.Contains(text, "ship a version") {
		t.Errorf("description missing from get output: %s", text)
	}
}

func TestWorkflowsTool_SaveRequiresSteps(t *testing.T) {
	tool := NewWorkflowsTool(state.NewWorkflowStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "save", "name": "empty",
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing steps")
	}
}

func TestLearningTool_AddAndFilter(t *testing.T) {
	tool := NewLearningTool(state.NewLearningStore(newTestStore(t)))

	for _, args := range []map[string]interface{}{
		{"action": "add", "topic": "sqlite", "lesson": "one connection is enough"},
		{"action": "add", "topic": "mcp", "lesson": "stdout belongs to the transport"},
	} {
		result, err := tool.Handle(context.Background(), callReq(args))
		if err != nil {
			t.Fatalf("Handle(add) error: %v", err)
		}
		if result.IsError {
			t.Fatalf("add failed: %s", textContent(t, result))
		}
	}

	result, _ := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "list", "topic": "mcp",
	}))
	text := textContent(t, result)
	if !strings.Contains(text, "1 lesson(s)") || !strings.Contains(text, "[mcp]") {
		t.Errorf("unexpected filtered list: %s", text)
	}
}

func TestTeamsTool_SaveGetDelete(t *testing.T) {
	tool := NewTeamsTool(state.NewTeamStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action":  "save",
		"name":    "review-squad",
		"members": `[{"name":"researcher","agent":"codex","role":"research"}]`,
	}))
	if err != nil {
		t.Fatalf("Handle(save) error: %v", err)
	}
	if !strings.Contains(textContent(t, result), `Team "review-squad" saved (1 members)`) {
		t.Errorf("unexpected save output: %s", textContent(t, result))
	}

	result, _ = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "get", "name": "review-squad",
	}))
	text := textContent(t, result)
	if !strings.Contains(text, "researcher") || !strings.Contains(text, "target: codex") {
		t.Errorf("unexpected get output: %s", text)
	}

	result, _ = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action": "delete", "name": "review-squad",
	}))
	if result.IsError {
		t.Fatalf("delete failed: %s", textContent(t, result))
	}
}

func TestTeamsTool_RejectsBadMembersJSON(t *testing.T) {
	tool := NewTeamsTool(state.NewTeamStore(newTestStore(t)))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"action":  "save",
		"name":    "broken",
		"members": "{not json",
	}))
	if err != nil {
		t.Fatalf("Handle() error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for malformed members")
	}
}
