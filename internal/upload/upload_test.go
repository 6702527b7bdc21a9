package upload

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/proposalstudio/proposalstudio/internal/log"
)

// fakeTrainer records uploads and fails the files listed in failures.
type fakeTrainer struct {
	mu       sync.Mutex
	uploaded map[string]string
	failures map[string]error

	// gate, when non-nil, blocks each upload until it is closed.
	gate chan struct{}
}

func newFakeTrainer() *fakeTrainer {
	return &fakeTrainer{
		uploaded: make(map[string]string),
		failures: make(map[string]error),
	}
}

func (f *fakeTrainer) Upload(ctx context.Context, collectionID, name string, r io.Reader) error {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failures[name]; ok {
		return err
	}
	f.uploaded[name] = string(body)
	return nil
}

func newTestManager(t *testing.T, trainer Trainer) *Manager {
	t.Helper()
	m, err := NewManager(trainer, "col-1", log.NewNop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return m
}

func statusOf(statuses []FileStatus, name string) (FileStatus, bool) {
	for _, fs := range statuses {
		if fs.Name == name {
			return fs, true
		}
	}
	return FileStatus{}, false
}

func TestManagerUploadsIndependently(t *testing.T) {
	t.Parallel()

	trainer := newFakeTrainer()
	trainer.failures["bad.pdf"] = errors.New("unsupported format")
	m := newTestManager(t, trainer)

	m.Add(context.Background(), "deck.pdf", strings.NewReader("deck bytes"))
	m.Add(context.Background(), "bad.pdf", strings.NewReader("bad bytes"))
	m.Add(context.Background(), "notes.txt", strings.NewReader("notes bytes"))
	m.Wait()

	statuses := m.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("tracked files = %d, want 3", len(statuses))
	}

	// One failure does not disturb the others.
	for _, name := range []string{"deck.pdf", "notes.txt"} {
		fs, ok := statusOf(statuses, name)
		if !ok {
			t.Fatalf("%s not tracked", name)
		}
		if fs.Status != StatusSuccess {
			t.Errorf("%s status = %q, want success", name, fs.Status)
		}
	}
	bad, _ := statusOf(statuses, "bad.pdf")
	if bad.Status != StatusError {
		t.Errorf("bad.pdf status = %q, want error", bad.Status)
	}
	if !strings.Contains(bad.Error, "unsupported format") {
		t.Errorf("bad.pdf error = %q", bad.Error)
	}

	if trainer.uploaded["deck.pdf"] != "deck bytes" {
		t.Error("deck.pdf content did not reach the trainer")
	}
}

func TestManagerStatusInsertionOrder(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, newFakeTrainer())
	names := []string{"c.pdf", "a.pdf", "b.pdf"}
	for _, n := range names {
		m.Add(context.Background(), n, strings.NewReader(n))
	}
	m.Wait()

	statuses := m.Statuses()
	for i, fs := range statuses {
		if fs.Name != names[i] {
			t.Fatalf("statuses[%d] = %q, want %q", i, fs.Name, names[i])
		}
	}
}

func TestManagerTracksInFlight(t *testing.T) {
	t.Parallel()

	trainer := newFakeTrainer()
	trainer.gate = make(chan struct{})
	m := newTestManager(t, trainer)

	m.Add(context.Background(), "slow.pdf", strings.NewReader("x"))

	fs, ok := statusOf(m.Statuses(), "slow.pdf")
	if !ok || fs.Status != StatusUploading {
		t.Fatalf("in-flight status = %+v, want uploading", fs)
	}

	close(trainer.gate)
	m.Wait()

	fs, _ = statusOf(m.Statuses(), "slow.pdf")
	if fs.Status != StatusSuccess {
		t.Errorf("status = %q after completion, want success", fs.Status)
	}
}

func TestManagerRemove(t *testing.T) {
	t.Parallel()

	trainer := newFakeTrainer()
	trainer.gate = make(chan struct{})
	m := newTestManager(t, trainer)

	m.Add(context.Background(), "keep.pdf", strings.NewReader("x"))
	m.Add(context.Background(), "drop.pdf", strings.NewReader("y"))
	m.Remove("drop.pdf")

	close(trainer.gate)
	m.Wait()

	statuses := m.Statuses()
	if len(statuses) != 1 || statuses[0].Name != "keep.pdf" {
		t.Fatalf("statuses = %+v, want only keep.pdf", statuses)
	}

	// Removing an unknown name is a no-op.
	m.Remove("never-added.pdf")
	if got := len(m.Statuses()); got != 1 {
		t.Errorf("tracked files = %d after no-op remove, want 1", got)
	}
}

func TestHTTPTrainerUpload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/collections/col-9/documents" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("Authorization = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "brief.md" {
			t.Errorf("filename = %q", header.Filename)
		}
		body, _ := io.ReadAll(file)
		if string(body) != "# Brief" {
			t.Errorf("file body = %q", body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	trainer, err := NewHTTPTrainer(srv.URL, "key")
	if err != nil {
		t.Fatalf("NewHTTPTrainer() error = %v", err)
	}
	trainer.http.RetryMax = 0

	if err := trainer.Upload(context.Background(), "col-9", "brief.md", strings.NewReader("# Brief")); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
}

func TestHTTPTrainerRejectsErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too large", http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	trainer, err := NewHTTPTrainer(srv.URL, "")
	if err != nil {
		t.Fatalf("NewHTTPTrainer() error = %v", err)
	}
	trainer.http.RetryMax = 0

	if err := trainer.Upload(context.Background(), "col-1", "big.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("Upload() succeeded against a 413 response")
	}
}
