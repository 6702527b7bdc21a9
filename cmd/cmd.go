// Package cmd provides the CLI commands for proposal studio.
//
// Commands:
//   - generate: run one proposal generation from supplied context
//   - history: list or prune saved proposals
//   - export: write a saved proposal to disk as HTML or Markdown
//   - upload: train the retrieval collection with supporting documents
//   - settings: show persisted generation preferences
//
// The CLI is a thin driver over internal/app; rendering and interactive
// surfaces live elsewhere.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/proposalstudio/proposalstudio/internal/app"
	"github.com/proposalstudio/proposalstudio/internal/config"
	"github.com/proposalstudio/proposalstudio/internal/log"
)

// Execute is the main entry point for the proposal studio CLI.
func Execute() error {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "generate":
		return withApp(level, runGenerate)
	case "history":
		return withApp(level, runHistory)
	case "export":
		return withApp(level, runExport)
	case "upload":
		return withApp(level, runUpload)
	case "settings":
		return withApp(level, runSettings)
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// withApp builds the application container, runs fn with the remaining
// arguments, and shuts down cleanly.
func withApp(level slog.Level, fn func(*app.App, []string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := log.New(log.Config{Level: level, JSON: cfg.LogJSON})
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck // shutdown best-effort

	return fn(a, os.Args[2:])
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("proposalstudio - agent-driven client proposal generation")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  proposalstudio generate [flags] <context>...  Generate a proposal from context lines")
	fmt.Println("  proposalstudio history [rm <id>]              List or delete saved proposals")
	fmt.Println("  proposalstudio export [flags] [id]            Export a saved proposal (default: latest)")
	fmt.Println("  proposalstudio upload <file>...               Upload training documents")
	fmt.Println("  proposalstudio settings                       Show persisted preferences")
	fmt.Println("  proposalstudio version                        Show version information")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  PROPOSAL_AGENT_ID       Manager agent to invoke")
	fmt.Println("  PROPOSAL_API_KEY        API key for the agent platform")
	fmt.Println("  PROPOSAL_COLLECTION_ID  Training collection for uploads")
	fmt.Println("  DEBUG                   Enable debug logging")
}
