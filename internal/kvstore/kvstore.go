// Package kvstore provides the key-value persistence collaborator used for
// history and settings records.
//
// The core depends only on the KV interface so it is testable without a real
// storage backend. The File implementation keeps one file per key under a
// data directory, using atomic writes (temp file + rename) with file locking
// via github.com/gofrs/flock so concurrent processes cannot interleave
// partial writes.
package kvstore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/gofrs/flock"
)

// KV is the read/write surface the core persists records through.
// Get reports found=false for missing keys; that is not an error.
type KV interface {
	Get(key string) (data []byte, found bool, err error)
	Set(key string, data []byte) error
}

// keyPattern restricts keys to safe file name material.
var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// File is a file-backed KV store rooted at a data directory.
type File struct {
	dir string
}

// NewFile creates a file-backed store, creating the data directory if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) (string, error) {
	if !keyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

// Get reads the record for key.
func (f *File) Get(key string) ([]byte, bool, error) {
	path, err := f.path(key)
	if err != nil {
		return nil, false, err
	}

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return nil, false, fmt.Errorf("locking %s: %w", key, err)
	}
	defer lock.Unlock() //nolint:errcheck // release best-effort

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, true, nil
}

// Set writes the record for key atomically.
func (f *File) Set(key string, data []byte) error {
	path, err := f.path(key)
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", key, err)
	}
	defer lock.Unlock() //nolint:errcheck // release best-effort

	tmp, err := os.CreateTemp(f.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

// Memory is an in-memory KV store for tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get reads the record for key.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, true, nil
}

// Set writes the record for key.
func (m *Memory) Set(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[key] = cp
	return nil
}
