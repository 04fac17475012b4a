package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func collectEvents(t *testing.T, evCh <-chan string, want int, timeout time.Duration) map[string]struct{} {
	t.Helper()
	seen := make(map[string]struct{}, want)
	deadline := time.After(timeout)
	for len(seen) < want {
		select {
		case p, ok := <-evCh:
			if !ok {
				t.Fatalf("event channel closed after %d/%d events", len(seen), want)
			}
			seen[p] = struct{}{}
		case <-deadline:
			t.Fatalf("timed out with %d/%d events", len(seen), want)
		}
	}
	return seen
}

func TestWatcherDebounceBurst(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{dir},
		Debounce: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	// A rapid burst of creates interleaves new events with firing debounce
	// timers; every distinct dump must still come out exactly once.
	const n = 50
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("dump%03d.json", i))
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	seen := collectEvents(t, evCh, n, 10*time.Second)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("dump%03d.json", i))
		if _, ok := seen[path]; !ok {
			t.Errorf("missing event for %s", path)
		}
	}
}

func TestWatcherFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}})
	if err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	wanted := filepath.Join(dir, "blocks.json")
	if err := os.WriteFile(wanted, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	seen := collectEvents(t, evCh, 1, 10*time.Second)
	if _, ok := seen[wanted]; !ok {
		t.Errorf("expected %s, got %v", wanted, seen)
	}
}

func TestWatcherInitialScan(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "old.json")
	if err := os.WriteFile(existing, []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evCh, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true})
	if err != nil {
		t.Fatalf("start watcher: %v", err)
	}

	seen := collectEvents(t, evCh, 1, 10*time.Second)
	if _, ok := seen[existing]; !ok {
		t.Errorf("initial scan missed %s", existing)
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Fatal("expected error for empty roots")
	}
}
