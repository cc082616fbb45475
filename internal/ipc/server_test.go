package ipc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/window"
)

type testDaemon struct {
	mgr     *manager.Manager
	tracked *input.Tracked
	server  *Server
	client  *Client
	reload  chan struct{}
}

func startServer(t *testing.T, configPath string) *testDaemon {
	t.Helper()

	// Unix socket paths are length limited; keep the directory short.
	dir, err := os.MkdirTemp("", "pd")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	tracked := input.NewTracked(geometry.Size{Width: 1000, Height: 800})
	mgr := manager.New(tracked, nil)
	reload := make(chan struct{}, 1)

	srv, err := NewServer(ServerOptions{
		SocketPath: filepath.Join(dir, "s.sock"),
		ConfigPath: configPath,
		Manager:    mgr,
		Tracked:    tracked,
		ReloadChan: reload,
		WebAddr:    "127.0.0.1:7420",
		Logger:     logging.NewTestLogManager().For("ipc"),
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	return &testDaemon{
		mgr:     mgr,
		tracked: tracked,
		server:  srv,
		client:  NewClientForSocket(srv.SocketPath()),
		reload:  reload,
	}
}

func TestNewServer_RequiresManager(t *testing.T) {
	if _, err := NewServer(ServerOptions{SocketPath: "/tmp/unused.sock"}); err == nil {
		t.Fatalf("expected error without manager")
	}
}

func TestClient_WindowLifecycle(t *testing.T) {
	d := startServer(t, "")
	c := d.client

	id, err := c.Open("Notes", "note.svg", "hello")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := c.Open("", "", ""); err != nil {
		t.Fatalf("Open untitled: %v", err)
	}

	windows, err := c.ListWindows()
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(windows) != 2 || windows[0].Title != "Notes" || windows[1].Title != "Untitled" {
		t.Fatalf("unexpected windows: %+v", windows)
	}

	if err := c.ToggleMaximize(id); err != nil {
		t.Fatalf("ToggleMaximize: %v", err)
	}
	snap, _ := d.mgr.Window(id)
	if snap.Mode != window.ModeMaximized {
		t.Fatalf("mode = %v, want maximized", snap.Mode)
	}

	if err := c.ToggleMinimize(id); err != nil {
		t.Fatalf("ToggleMinimize: %v", err)
	}
	if err := c.Focus(id); err != nil {
		t.Fatalf("Focus: %v", err)
	}

	status, err := c.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.WindowCount != 2 || status.MinimizedCount != 1 || !status.DaemonRunning || status.WebAddr != "127.0.0.1:7420" {
		t.Fatalf("unexpected status: %+v", status)
	}

	if err := c.Close(id); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if d.mgr.Count() != 1 {
		t.Fatalf("Count() = %d after close", d.mgr.Count())
	}
}

func TestClient_NotFoundMapsToSentinel(t *testing.T) {
	c := startServer(t, "").client

	ops := map[string]func(window.ID) error{
		"close":    c.Close,
		"minimize": c.ToggleMinimize,
		"maximize": c.ToggleMaximize,
		"focus":    c.Focus,
	}
	for name, op := range ops {
		if err := op(99); !errors.Is(err, manager.ErrWindowNotFound) {
			t.Errorf("%s(99) = %v, want ErrWindowNotFound", name, err)
		}
	}
}

func TestClient_PointerDrag(t *testing.T) {
	d := startServer(t, "")
	c := d.client
	id, _ := c.Open("W", "", "")

	steps := []struct {
		ev      input.Event
		changed bool
	}{
		{input.Down(id, input.HeaderHandle, geometry.Point{X: 310, Y: 310}), true},
		{input.Move(geometry.Point{X: 4, Y: 310}), true},
		{input.Up(geometry.Point{X: 4, Y: 310}), true},
		{input.Move(geometry.Point{X: 500, Y: 500}), false},
	}
	for i, step := range steps {
		changed, err := c.Pointer(step.ev)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if changed != step.changed {
			t.Fatalf("step %d changed = %v, want %v", i, changed, step.changed)
		}
	}

	state, err := c.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	got, ok := state.Find(id)
	if !ok {
		t.Fatalf("window %d missing from state", id)
	}
	want := geometry.Rect{X: 0, Y: 0, Width: 500, Height: 800}
	if diff := cmp.Diff(want, got.Geometry); diff != "" {
		t.Fatalf("geometry (-want +got):\n%s", diff)
	}
}

func TestClient_PointerBadHandle(t *testing.T) {
	c := startServer(t, "").client
	id, _ := c.Open("W", "", "")

	if _, err := c.Pointer(input.Down(id, "diagonal", geometry.Point{})); err == nil {
		t.Fatalf("expected error for bad handle")
	}
}

func TestClient_SetViewport(t *testing.T) {
	d := startServer(t, "")
	c := d.client
	id, _ := c.Open("W", "", "")
	c.ToggleMaximize(id)

	size := geometry.Size{Width: 640, Height: 480}
	if err := c.SetViewport(size); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if d.tracked.ViewportSize() != size {
		t.Fatalf("tracked size = %+v", d.tracked.ViewportSize())
	}
	snap, _ := d.mgr.Window(id)
	if snap.Geometry != size.Rect() {
		t.Fatalf("maximized geometry = %+v, want %+v", snap.Geometry, size.Rect())
	}

	if err := c.SetViewport(geometry.Size{}); err == nil {
		t.Fatalf("expected error for zero viewport")
	}
}

func TestClient_Reload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("window_defaults:\n  x: 12\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	d := startServer(t, configPath)

	if err := d.client.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	select {
	case <-d.reload:
	default:
		t.Fatalf("reload channel not signalled")
	}
	if got := d.server.GetConfig().WindowDefaults.X; got != 12 {
		t.Fatalf("config x = %v, want 12", got)
	}

	if err := os.WriteFile(configPath, []byte("log_level: loud\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := d.client.Reload(); err == nil {
		t.Fatalf("expected reload error for invalid config")
	}
	if got := d.server.GetConfig().WindowDefaults.X; got != 12 {
		t.Fatalf("failed reload replaced config")
	}
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClientForSocket(filepath.Join(t.TempDir(), "missing.sock"))
	if err := c.Ping(); err == nil {
		t.Fatalf("expected connection error")
	}
}
