package linktree

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func watcherEnv(t *testing.T) (treePath, taggedPath string) {
	t.Helper()
	dir := t.TempDir()
	treePath = filepath.Join(dir, "link_tree.txt")
	taggedPath = filepath.Join(dir, "tagged.csv")
	if err := os.WriteFile(treePath, []byte("Ops\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(taggedPath, []byte("Code,Title,Link,Tag\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return treePath, taggedPath
}

func TestWatch_TreeEditTriggersReload(t *testing.T) {
	treePath, taggedPath := watcherEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go func() {
		_ = Watch(ctx, treePath, taggedPath, logger, func() { reloads.Add(1) })
	}()

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(treePath, []byte("Ops\n    Network\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return reloads.Load() >= 1
	}, "tree edit did not trigger reload")
}

func TestWatch_RenameOverTaggedTriggersReload(t *testing.T) {
	treePath, taggedPath := watcherEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go func() {
		_ = Watch(ctx, treePath, taggedPath, logger, func() { reloads.Add(1) })
	}()

	time.Sleep(100 * time.Millisecond)

	// Atomic-write style editors replace the file via rename.
	tmp := taggedPath + ".tmp"
	_ = os.WriteFile(tmp, []byte("Code,Title,Link,Tag\np9,New,x,Ops\n"), 0o644)
	_ = os.Rename(tmp, taggedPath)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return reloads.Load() >= 1
	}, "rename over tagged file did not trigger reload")
}

func TestWatch_DebouncesBursts(t *testing.T) {
	treePath, taggedPath := watcherEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	go func() {
		_ = Watch(ctx, treePath, taggedPath, logger, func() { reloads.Add(1) })
	}()

	time.Sleep(100 * time.Millisecond)

	// A burst of writes within the debounce window collapses into one reload.
	for i := 0; i < 5; i++ {
		_ = os.WriteFile(treePath, []byte("Ops\n"), 0o644)
		time.Sleep(10 * time.Millisecond)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return reloads.Load() >= 1
	}, "burst did not trigger reload")
	time.Sleep(300 * time.Millisecond)
	if n := reloads.Load(); n > 2 {
		t.Errorf("reloads = %d, want bursts debounced to at most 2", n)
	}
}

func TestWatch_StopsOnContextCancel(t *testing.T) {
	treePath, taggedPath := watcherEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, treePath, taggedPath, logger, func() {})
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error on cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after context cancel")
	}
}
