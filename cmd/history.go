package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/proposalstudio/proposalstudio/internal/app"
	"github.com/proposalstudio/proposalstudio/internal/document"
	"github.com/proposalstudio/proposalstudio/internal/export"
	"github.com/proposalstudio/proposalstudio/internal/settings"
)

// runHistory lists saved proposals or deletes one by ID.
func runHistory(a *app.App, args []string) error {
	if len(args) >= 2 && args[0] == "rm" {
		a.History.Remove(args[1])
		fmt.Printf("Removed %s\n", args[1])
		return nil
	}

	entries := a.History.All()
	if len(entries) == 0 {
		fmt.Println("No proposals saved yet.")
		return nil
	}
	for _, e := range entries {
		meta := document.Extract(e.Document.HTML)
		fmt.Printf("%s  %s  %q  %s  %d sections  %d turns\n",
			e.ID, e.GeneratedAt.Format("2006-01-02 15:04"), meta.Title, e.Depth, meta.SectionCount, e.TurnCount)
	}
	return nil
}

// runExport writes a saved proposal to disk. With no ID argument the most
// recent entry is exported.
func runExport(a *app.App, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", a.Settings.ExportFormat, "export format: html or markdown")
	outDir := fs.String("out", ".", "directory for the exported file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	entries := a.History.All()
	if len(entries) == 0 {
		return fmt.Errorf("no proposals in history")
	}

	entry := entries[0]
	if id := fs.Arg(0); id != "" {
		found := false
		for _, e := range entries {
			if e.ID == id {
				entry = e
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no history entry with ID %s", id)
		}
	}

	var name, content string
	switch *format {
	case settings.FormatMarkdown:
		name, content = export.Markdown(entry.Document)
	default:
		name, content = export.HTML(entry.Document)
	}

	path := filepath.Join(*outDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

// runSettings prints the persisted generation preferences.
func runSettings(a *app.App, _ []string) error {
	s := a.Settings
	fmt.Printf("Institutional tone:  %t\n", s.ToneInstitutional)
	fmt.Printf("Suppress marketing:  %t\n", s.SuppressMarketing)
	fmt.Printf("Default deck depth:  %d\n", s.DefaultDepth.Sections())
	fmt.Printf("Export format:       %s\n", s.ExportFormat)
	return nil
}
