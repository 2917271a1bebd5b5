// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete stores and the
// dispatch supervisor and injects them into the tool handlers. No
// business logic lives here — only wiring and startup ordering. The
// one hard ordering rule: the orphan recovery scan runs before any
// tool is registered, so no dispatch-mutating operation can observe
// pre-recovery state.
package server

import (
	"fmt"

	"github.com/calder/agentdeck/internal/config"
	"github.com/calder/agentdeck/internal/dispatch"
	"github.com/calder/agentdeck/internal/history"
	"github.com/calder/agentdeck/internal/logging"
	"github.com/calder/agentdeck/internal/state"
	"github.com/calder/agentdeck/internal/statetools"
	"github.com/calder/agentdeck/internal/store"
	"github.com/calder/agentdeck/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes the history database and must
// be called on shutdown (typically via defer). It is always non-nil
// and safe to call even if history init failed.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	logger := logging.WithComponent("server")

	st, err := store.New(cfg.DataDir, logging.WithComponent("store"))
	if err != nil {
		return nil, noop, fmt.Errorf("opening data store: %w", err)
	}

	ledger := dispatch.NewLedger(st)

	// History is an independent subsystem: if it fails to initialize,
	// dispatch keeps working without an audit trail. We log a warning
	// and skip registration of the history tool.
	cleanup := noop
	hist, histErr := history.New(cfg.HistoryPath(), logging.WithComponent("history"))
	if histErr != nil {
		logger.Warn("history subsystem disabled", "error", histErr)
		hist = nil
	} else {
		cleanup = func() {
			if err := hist.Close(); err != nil {
				logger.Warn("history close failed", "error", err)
			}
		}
	}

	supervisor := dispatch.NewSupervisor(cfg, ledger, hist)

	// Reconcile anything left non-terminal by a previous controller
	// before a single tool call can reach the ledger. Best-effort:
	// a partial recovery is reported, not fatal.
	if err := supervisor.RecoverOrphans(); err != nil {
		logger.Error("recovery scan incomplete", "error", err)
	}

	s := server.NewMCPServer(
		"agentdeck",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Dispatch tools ---

	dispatchTool := tools.NewDispatchTool(supervisor)
	s.AddTool(dispatchTool.Definition(), dispatchTool.Handle)

	resultTool := tools.NewResultTool(supervisor)
	s.AddTool(resultTool.Definition(), resultTool.Handle)

	cancelTool := tools.NewCancelTool(supervisor)
	s.AddTool(cancelTool.Definition(), cancelTool.Handle)

	retryTool := tools.NewRetryTool(supervisor)
	s.AddTool(retryTool.Definition(), retryTool.Handle)

	listTool := tools.NewListTool(supervisor)
	s.AddTool(listTool.Definition(), listTool.Handle)

	if hist != nil {
		historyTool := tools.NewHistoryTool(supervisor)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- State tool groups ---

	contextTool := statetools.NewContextTool(state.NewContextStore(st))
	s.AddTool(contextTool.Definition(), contextTool.Handle)

	remindersTool := statetools.NewRemindersTool(state.NewReminderStore(st))
	s.AddTool(remindersTool.Definition(), remindersTool.Handle)

	workflowsTool := statetools.NewWorkflowsTool(state.NewWorkflowStore(st))
	s.AddTool(workflowsTool.Definition(), workflowsTool.Handle)

	learningTool := statetools.NewLearningTool(state.NewLearningStore(st))
	s.AddTool(learningTool.Definition(), learningTool.Handle)

	teamsTool := statetools.NewTeamsTool(state.NewTeamStore(st))
	s.AddTool(teamsTool.Definition(), teamsTool.Handle)

	return s, cleanup, nil
}

// noop is the default cleanup when history is disabled.
func noop() {}

// serverInstructions tells the AI how to use agentdeck effectively.
func serverInstructions() string {
	return `You have access to agentdeck, a stateful backend for orchestrating agents.

## Dispatch — run agent workers asynchronously

Use dispatch to launch long-running agent workers (codex, claude, gemini, ...)
without blocking. The worker runs as a detached OS process and survives
restarts of this server.

Workflow:
1. dispatch(target, input) — returns a task id immediately
2. dispatch_result(id) — poll until the status is terminal
   (completed, failed, cancelled, or timeout)
3. dispatch_list() — recent tasks; dispatch_history() — status transitions
4. dispatch_cancel(id) — best-effort SIGTERM to a running worker
5. dispatch_retry(id) — re-run a failed or cancelled task as a new task

Rules:
- dispatch never waits for the worker; always poll dispatch_result
- dispatch_list may show stale 'running' rows; dispatch_result is authoritative
- a retry creates a NEW task id; the old task stays in the ledger for audit

## Persistent state

These survive between sessions — use them to build project knowledge:
- context: key-value facts (conventions, current focus, decisions)
- reminders: open items to pick up next session
- workflows: named step lists you want to replay (checklists, procedures)
- learning: lessons learned, keyed by topic, so mistakes aren't repeated
- teams: named rosters mapping member roles to dispatch targets

At session start, check reminders and context. Save context and lessons
proactively as you work — don't wait to be asked.`
}
