// agentdeck: stateful tool server for orchestrating agents.
//
// Exposes asynchronous dispatch of external agent workers plus
// persistent context, reminders, workflows, learning, and teams over
// MCP stdio.
//
// Usage:
//
//	agentdeck serve [--config path]   # Start MCP server (stdio transport)
//	agentdeck version                 # Print version
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/calder/agentdeck/internal/config"
	"github.com/calder/agentdeck/internal/lock"
	"github.com/calder/agentdeck/internal/logging"
	deckserver "github.com/calder/agentdeck/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("agentdeck v%s\n", deckserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file (default: $AGENTDECK_CONFIG)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel)

	// One controller per data dir: the ledger has a single writer by
	// design, so a second instance must fail here, loudly.
	pidLock, err := lock.Acquire(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() { _ = pidLock.Release() }()

	s, cleanup, err := deckserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `agentdeck v%s — stateful tool server for orchestrating agents

Usage:
  agentdeck serve [--config path]   Start the MCP server (stdio transport)
  agentdeck version                 Print version

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "agentdeck": {
        "command": "agentdeck",
        "args": ["serve"]
      }
    }
  }
`, deckserver.Version)
}
