package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/panedesk/internal/logging"
)

func startWatcher(t *testing.T, path string, logs *logging.TestLogManager) <-chan *LoadResult {
	t.Helper()

	w, err := NewWatcher(path, logs.For("config"))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	results := make(chan *LoadResult, 8)
	go w.Run(ctx, func(res *LoadResult) { results <- res })
	return results
}

func waitForReload(t *testing.T, results <-chan *LoadResult) *LoadResult {
	t.Helper()
	select {
	case res := <-results:
		return res
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for reload")
		return nil
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "window_defaults:\n  x: 10\n")

	results := startWatcher(t, path, logging.NewTestLogManager())
	writeFile(t, path, "window_defaults:\n  x: 42\n")

	res := waitForReload(t, results)
	if res.Config.WindowDefaults.X != 42 {
		t.Fatalf("reloaded x = %v, want 42", res.Config.WindowDefaults.X)
	}
}

func TestWatcher_CreatesMissingFileLater(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panedesk", "config.yaml")

	results := startWatcher(t, path, logging.NewTestLogManager())
	writeFile(t, path, "log_level: debug\n")

	res := waitForReload(t, results)
	if res.Config.LogLevel != "debug" {
		t.Fatalf("log_level = %q", res.Config.LogLevel)
	}
}

func TestWatcher_SkipsInvalidEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\n")

	logs := logging.NewTestLogManager()
	results := startWatcher(t, path, logs)

	writeFile(t, path, "log_level: chatty\n")
	time.Sleep(300 * time.Millisecond)
	select {
	case res := <-results:
		t.Fatalf("invalid config delivered: %+v", res.Config)
	default:
	}

	writeFile(t, path, "log_level: warn\n")
	res := waitForReload(t, results)
	if res.Config.LogLevel != "warn" {
		t.Fatalf("log_level = %q, want warn", res.Config.LogLevel)
	}

	found := false
	for _, msg := range logs.Messages() {
		if msg == "config reload failed, keeping previous config" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a reload failure log, got %v", logs.Messages())
	}
}

func TestWatcher_ReloadsOnIncludedFileChange(t *testing.T) {
	dir := t.TempDir()
	inc := filepath.Join(dir, "conf.d", "viewport.yaml")
	writeFile(t, inc, "viewport:\n  width: 800\n")
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "include: conf.d\n")

	results := startWatcher(t, path, logging.NewTestLogManager())
	writeFile(t, inc, "viewport:\n  width: 900\n")

	res := waitForReload(t, results)
	if res.Config.Viewport.Width != 900 {
		t.Fatalf("viewport.width = %v, want 900", res.Config.Viewport.Width)
	}
}
