package kvstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetGet(t *testing.T) {
	t.Parallel()

	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if err := f.Set("history", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, found, err := f.Get("history")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false, want true")
	}
	if string(data) != `[{"id":"a"}]` {
		t.Errorf("Get() = %q", data)
	}
}

func TestFileMissingKey(t *testing.T) {
	t.Parallel()

	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	data, found, err := f.Get("settings")
	if err != nil {
		t.Errorf("Get() error = %v, want nil for missing key", err)
	}
	if found {
		t.Error("Get() found = true for missing key")
	}
	if data != nil {
		t.Errorf("Get() data = %q for missing key", data)
	}
}

func TestFileOverwrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if err := f.Set("settings", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if err := f.Set("settings", []byte("v2")); err != nil {
		t.Fatal(err)
	}

	data, _, err := f.Get("settings")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "v2" {
		t.Errorf("Get() = %q after overwrite, want v2", data)
	}

	// Atomic replace leaves no temp files behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files remain after Set: %v", matches)
	}
}

func TestFileRejectsUnsafeKeys(t *testing.T) {
	t.Parallel()

	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	for _, key := range []string{"", "../escape", "Upper", "dot.dot", "sp ace"} {
		if err := f.Set(key, []byte("x")); err == nil {
			t.Errorf("Set(%q) accepted an unsafe key", key)
		}
		if _, _, err := f.Get(key); err == nil {
			t.Errorf("Get(%q) accepted an unsafe key", key)
		}
	}
}

func TestNewFileCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := NewFile(dir); err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data directory was not created: %v", err)
	}
}

func TestMemorySetGet(t *testing.T) {
	t.Parallel()

	m := NewMemory()

	if _, found, _ := m.Get("history"); found {
		t.Error("Get() found = true on empty store")
	}

	if err := m.Set("history", []byte("payload")); err != nil {
		t.Fatal(err)
	}
	data, found, err := m.Get("history")
	if err != nil || !found {
		t.Fatalf("Get() = (%v, %t), want found", err, found)
	}

	// Returned slice is a copy; mutating it must not affect the store.
	data[0] = 'X'
	again, _, _ := m.Get("history")
	if string(again) != "payload" {
		t.Errorf("store data = %q after mutating returned copy", again)
	}
}
