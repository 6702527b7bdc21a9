// Package upload manages document-training uploads to the retrieval
// collection backing proposal generation.
//
// Each file upload is an independent asynchronous operation with its own
// status; failures are isolated per file and uploads neither gate nor are
// gated by generation. Uploads are not retried automatically beyond the
// transport's transient-error retries - re-uploading is the operator's call.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/proposalstudio/proposalstudio/internal/log"
)

// Status values for a tracked file.
const (
	StatusUploading = "uploading"
	StatusSuccess   = "success"
	StatusError     = "error"
)

// FileStatus is the tracked state of one upload.
type FileStatus struct {
	Name   string
	Status string
	Error  string
}

// Trainer uploads one document into a training collection.
type Trainer interface {
	Upload(ctx context.Context, collectionID, name string, r io.Reader) error
}

// trainPath is the upload endpoint, relative to the base URL.
const trainPath = "/v1/collections/%s/documents"

// HTTPTrainer is the multipart HTTP implementation of Trainer.
type HTTPTrainer struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

// NewHTTPTrainer creates a Trainer posting to the given base URL.
func NewHTTPTrainer(baseURL, apiKey string) (*HTTPTrainer, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.Logger = nil
	return &HTTPTrainer{baseURL: baseURL, apiKey: apiKey, http: rc}, nil
}

// Upload sends one document to the collection.
func (t *HTTPTrainer) Upload(ctx context.Context, collectionID, name string, r io.Reader) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing upload form: %w", err)
	}

	url := t.baseURL + fmt.Sprintf(trainPath, collectionID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body.Bytes())
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload of %s returned status %d", name, resp.StatusCode)
	}
	return nil
}

// Manager tracks per-file upload status and runs each upload in its own
// goroutine. Statuses move uploading -> success|error independently.
type Manager struct {
	trainer      Trainer
	collectionID string
	logger       log.Logger

	mu    sync.Mutex
	files map[string]*FileStatus
	order []string
	wg    sync.WaitGroup
}

// NewManager creates an upload manager for the given collection.
func NewManager(trainer Trainer, collectionID string, logger log.Logger) (*Manager, error) {
	if trainer == nil {
		return nil, errors.New("trainer is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Manager{
		trainer:      trainer,
		collectionID: collectionID,
		logger:       logger,
		files:        make(map[string]*FileStatus),
	}, nil
}

// Add registers the file and starts its upload asynchronously.
func (m *Manager) Add(ctx context.Context, name string, r io.Reader) {
	m.mu.Lock()
	if _, exists := m.files[name]; !exists {
		m.order = append(m.order, name)
	}
	m.files[name] = &FileStatus{Name: name, Status: StatusUploading}
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := m.trainer.Upload(ctx, m.collectionID, name, r)

		m.mu.Lock()
		defer m.mu.Unlock()
		fs, ok := m.files[name]
		if !ok {
			return // removed while in flight
		}
		if err != nil {
			fs.Status = StatusError
			fs.Error = err.Error()
			m.logger.Warn("upload failed", "file", name, "error", err)
			return
		}
		fs.Status = StatusSuccess
		m.logger.Debug("upload succeeded", "file", name)
	}()
}

// Remove drops a file from tracking. An in-flight upload is left to finish
// against the collection but its result is discarded.
func (m *Manager) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; !ok {
		return
	}
	delete(m.files, name)
	kept := m.order[:0]
	for _, n := range m.order {
		if n != name {
			kept = append(kept, n)
		}
	}
	m.order = kept
}

// Statuses returns the tracked files in insertion order.
func (m *Manager) Statuses() []FileStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]FileStatus, 0, len(m.order))
	for _, n := range m.order {
		if fs, ok := m.files[n]; ok {
			result = append(result, *fs)
		}
	}
	return result
}

// Wait blocks until all in-flight uploads have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}
