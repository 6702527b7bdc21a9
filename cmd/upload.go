package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/proposalstudio/proposalstudio/internal/app"
	"github.com/proposalstudio/proposalstudio/internal/upload"
)

// runUpload uploads the given files to the training collection. Each file is
// an independent operation; one failure does not abort the rest.
func runUpload(a *app.App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: proposalstudio upload <file>...")
	}
	if a.Config.CollectionID == "" {
		return fmt.Errorf("no training collection configured (set PROPOSAL_COLLECTION_ID)")
	}

	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", path, err)
			continue
		}
		// Files stay open until Wait returns; the deferred closes run after.
		a.Uploads.Add(a.Context(), filepath.Base(path), f)
		defer f.Close() //nolint:errcheck
	}

	a.Uploads.Wait()

	failed := 0
	for _, fs := range a.Uploads.Statuses() {
		switch fs.Status {
		case upload.StatusSuccess:
			fmt.Printf("uploaded %s\n", fs.Name)
		case upload.StatusError:
			failed++
			fmt.Fprintf(os.Stderr, "failed %s: %s\n", fs.Name, fs.Error)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d upload(s) failed", failed)
	}
	return nil
}
