package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/proposalstudio/proposalstudio/internal/app"
	"github.com/proposalstudio/proposalstudio/internal/document"
	"github.com/proposalstudio/proposalstudio/internal/export"
	"github.com/proposalstudio/proposalstudio/internal/ledger"
	"github.com/proposalstudio/proposalstudio/internal/orchestrator"
	"github.com/proposalstudio/proposalstudio/internal/prompt"
	"github.com/proposalstudio/proposalstudio/internal/settings"
)

// runGenerate runs one orchestration. Context lines come from the arguments,
// or from stdin (one turn per line) when no arguments are given.
func runGenerate(a *app.App, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	depth := fs.Int("depth", a.Settings.DefaultDepth.Sections(), "deck depth: 15 or 30")
	format := fs.String("format", a.Settings.ExportFormat, "export format: html or markdown")
	outDir := fs.String("out", ".", "directory for the exported file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var d prompt.Depth
	switch *depth {
	case prompt.Depth15.Sections():
		d = prompt.Depth15
	case prompt.Depth30.Sections():
		d = prompt.Depth30
	default:
		return fmt.Errorf("unsupported depth %d (use 15 or 30)", *depth)
	}

	lines := fs.Args()
	if len(lines) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading context from stdin: %w", err)
		}
	}

	for _, line := range lines {
		if err := a.Ledger.Append(ledger.NewUserTurn(line)); err != nil {
			return fmt.Errorf("recording context: %w", err)
		}
		if err := a.Ledger.Append(ledger.Acknowledgement()); err != nil {
			return fmt.Errorf("recording acknowledgement: %w", err)
		}
	}

	opts := a.Settings.Options()
	opts.Depth = d

	type outcome struct {
		proposal *document.Proposal
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		p, err := a.Orchestrator.Generate(a.Context(), opts)
		done <- outcome{p, err}
	}()

	// Surface the estimator's cosmetic progress while the call is in flight.
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	last := orchestrator.State{}
	for {
		select {
		case <-ticker.C:
			state := a.Orchestrator.State()
			if state.Phase == orchestrator.Running && (state.Progress != last.Progress || state.Label != last.Label) {
				fmt.Printf("  %3d%%  %s\n", state.Progress, state.Label)
				last = state
			}
		case result := <-done:
			if result.err != nil {
				return result.err
			}
			return writeExport(result.proposal, *format, *outDir)
		}
	}
}

// writeExport writes the proposal in the requested format and prints its
// derived metadata.
func writeExport(p *document.Proposal, format, outDir string) error {
	meta := document.Extract(p.Document.HTML)
	fmt.Printf("Generated %q for %s (%d sections, %s deck)\n",
		meta.Title, meta.Client, meta.SectionCount, p.Depth)

	var name, content string
	switch format {
	case settings.FormatMarkdown:
		name, content = export.Markdown(p.Document)
	default:
		name, content = export.HTML(p.Document)
	}

	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
