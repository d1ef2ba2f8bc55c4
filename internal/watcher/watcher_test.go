// file: internal/watcher/watcher_test.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatching(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "newsdeck.yaml")

	w := New(nil, 50*time.Millisecond)
	if err := w.Start(cfg, ""); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.Watching(cfg) {
		t.Errorf("expected %s to be watched", cfg)
	}
	if !w.Watching(filepath.Join(dir, ".", "newsdeck.yaml")) {
		t.Error("expected uncleaned path to match")
	}
	if w.Watching(filepath.Join(dir, "other.yaml")) {
		t.Error("sibling file should not be watched")
	}
}

func TestDebounceSingleEvent(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "newsdeck.yaml")

	var calls atomic.Int32
	w := New(func(changed []string) {
		calls.Add(1)
	}, 100*time.Millisecond)

	if err := w.Start(cfg); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(cfg, []byte("port: 8080\n"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)

	if c := calls.Load(); c != 1 {
		t.Errorf("expected 1 callback, got %d", c)
	}
}

func TestDebounceMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "newsdeck.yaml")
	env := filepath.Join(dir, ".env")

	var mu sync.Mutex
	var batches [][]string
	w := New(func(changed []string) {
		mu.Lock()
		batches = append(batches, changed)
		mu.Unlock()
	}, 200*time.Millisecond)

	if err := w.Start(cfg, env); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		_ = os.WriteFile(cfg, []byte("port: 8080\n"), 0644)
		_ = os.WriteFile(env, []byte("NEWSDECK_PORT=9000\n"), 0644)
		time.Sleep(30 * time.Millisecond)
	}

	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(batches) != 1 {
		t.Fatalf("expected exactly 1 debounced callback, got %d", len(batches))
	}
	if len(batches[0]) != 2 {
		t.Errorf("expected both files reported, got %v", batches[0])
	}
}

func TestUnwatchedFilesIgnored(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w := New(func([]string) {
		calls.Add(1)
	}, 100*time.Millisecond)

	if err := w.Start(filepath.Join(dir, "newsdeck.yaml")); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	_ = os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0644)
	_ = os.WriteFile(filepath.Join(dir, "newsdeck.yaml.swp"), []byte("x"), 0644)

	time.Sleep(300 * time.Millisecond)

	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 callbacks for unrelated files, got %d", c)
	}
}

func TestRenameReplaceTriggers(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "newsdeck.yaml")
	_ = os.WriteFile(cfg, []byte("port: 1\n"), 0644)

	var calls atomic.Int32
	w := New(func([]string) { calls.Add(1) }, 100*time.Millisecond)
	if err := w.Start(cfg); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	tmp := filepath.Join(dir, "newsdeck.yaml.tmp")
	_ = os.WriteFile(tmp, []byte("port: 2\n"), 0644)
	if err := os.Rename(tmp, cfg); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)

	if c := calls.Load(); c != 1 {
		t.Errorf("expected 1 callback after atomic replace, got %d", c)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	w := New(func([]string) {}, 100*time.Millisecond)
	if err := w.Start(filepath.Join(t.TempDir(), "c.yaml")); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop() // should not panic
}

func TestStartIsIdempotent(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "c.yaml")
	w := New(func([]string) {}, 100*time.Millisecond)
	if err := w.Start(cfg); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if err := w.Start(cfg); err != nil {
		t.Fatal(err)
	}
}
