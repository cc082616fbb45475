package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/web"
	"github.com/1broseidon/panedesk/internal/window"
)

type testEnv struct {
	mgr     *manager.Manager
	tracked *input.Tracked
	logs    *logging.TestLogManager
	baseURL string
}

// startTestServer serves a fresh desktop on an ephemeral port.
func startTestServer(t *testing.T) *testEnv {
	t.Helper()

	logs := logging.NewTestLogManager()
	tracked := input.NewTracked(geometry.Size{Width: 1000, Height: 800})
	mgr := manager.New(tracked, logs.For("manager"))
	s := web.New(web.Config{Bind: "127.0.0.1", Port: 0}, mgr, tracked, logs)

	ln, err := s.Listen()
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ln)
	}()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
		<-done
	})

	return &testEnv{mgr: mgr, tracked: tracked, logs: logs, baseURL: "http://" + s.Addr()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.baseURL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestServer_AddrBeforeListen(t *testing.T) {
	mgr := manager.New(nil, nil)
	s := web.New(web.Config{Bind: "127.0.0.1", Port: 8765}, mgr, nil, nil)

	if addr := s.Addr(); addr != "127.0.0.1:8765" {
		t.Errorf("Addr() before Listen() = %q, want %q", addr, "127.0.0.1:8765")
	}
}

func TestHandleHealth(t *testing.T) {
	env := startTestServer(t)

	resp, body := env.do(t, http.MethodGet, "/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if string(body) != `{"status":"ok"}` {
		t.Errorf("body = %q", body)
	}
}

func TestWindowAPI(t *testing.T) {
	env := startTestServer(t)

	resp, body := env.do(t, http.MethodPost, "/api/windows", web.OpenRequest{Title: "Files", Icon: "folder"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open status = %d, body %s", resp.StatusCode, body)
	}
	var opened web.OpenResponse
	if err := json.Unmarshal(body, &opened); err != nil {
		t.Fatalf("decode open: %v", err)
	}

	resp, body = env.do(t, http.MethodPost, "/api/windows", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("untitled open status = %d", resp.StatusCode)
	}

	resp, body = env.do(t, http.MethodGet, "/api/windows/"+opened.ID.String(), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	var snap manager.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode window: %v", err)
	}
	want := manager.Snapshot{
		ID:       opened.ID,
		Title:    "Files",
		Icon:     "folder",
		Geometry: manager.DefaultGeometry,
		Mode:     window.ModeNormal,
		Z:        snap.Z,
		TrayRank: -1,
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("window (-want +got):\n%s", diff)
	}

	resp, body = env.do(t, http.MethodPost, "/api/windows/"+opened.ID.String()+"/maximize", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("maximize status = %d", resp.StatusCode)
	}
	var state manager.State
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	got, _ := state.Find(opened.ID)
	if got.Mode != window.ModeMaximized || got.Geometry != (geometry.Rect{Width: 1000, Height: 800}) {
		t.Errorf("after maximize: %+v", got)
	}

	resp, _ = env.do(t, http.MethodPost, "/api/windows/"+opened.ID.String()+"/minimize", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("minimize status = %d", resp.StatusCode)
	}
	snap, _ = env.mgr.Window(opened.ID)
	if snap.Mode != window.ModeMinimized || snap.TrayRank != 0 {
		t.Errorf("after minimize: %+v", snap)
	}

	resp, _ = env.do(t, http.MethodPost, "/api/windows/"+opened.ID.String()+"/focus", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("focus status = %d", resp.StatusCode)
	}

	resp, body = env.do(t, http.MethodGet, "/api/windows", nil)
	var windows []manager.Snapshot
	if err := json.Unmarshal(body, &windows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(windows) != 2 || windows[1].ID != opened.ID {
		t.Errorf("focused window should paint last: %+v", windows)
	}

	resp, _ = env.do(t, http.MethodDelete, "/api/windows/"+opened.ID.String(), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("close status = %d", resp.StatusCode)
	}
	if env.mgr.Count() != 1 {
		t.Errorf("Count() = %d after close", env.mgr.Count())
	}
}

func TestWindowAPI_Errors(t *testing.T) {
	env := startTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown window", http.MethodGet, "/api/windows/42", nil, http.StatusNotFound},
		{"close unknown", http.MethodDelete, "/api/windows/42", nil, http.StatusNotFound},
		{"minimize unknown", http.MethodPost, "/api/windows/42/minimize", nil, http.StatusNotFound},
		{"malformed id", http.MethodPost, "/api/windows/abc/focus", nil, http.StatusBadRequest},
		{"zero viewport", http.MethodPut, "/api/viewport", geometry.Size{}, http.StatusBadRequest},
		{"bad handle", http.MethodPost, "/api/pointer", input.Down(1, "sideways", geometry.Point{}), http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestPointerAPI_SnapRight(t *testing.T) {
	env := startTestServer(t)
	id := env.mgr.Open("W", "", "")

	events := []input.Event{
		input.Down(id, input.HeaderHandle, geometry.Point{X: 400, Y: 310}),
		input.Move(geometry.Point{X: 995, Y: 310}),
		input.Up(geometry.Point{X: 995, Y: 310}),
	}
	for i, ev := range events {
		resp, body := env.do(t, http.MethodPost, "/api/pointer", ev)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("event %d status = %d", i, resp.StatusCode)
		}
		var pr web.PointerResponse
		if err := json.Unmarshal(body, &pr); err != nil || !pr.Changed {
			t.Fatalf("event %d: changed = %v, err = %v", i, pr.Changed, err)
		}
	}

	snap, _ := env.mgr.Window(id)
	want := geometry.Rect{X: 500, Y: 0, Width: 500, Height: 800}
	if diff := cmp.Diff(want, snap.Geometry); diff != "" {
		t.Errorf("geometry (-want +got):\n%s", diff)
	}
}

func TestViewportAPI(t *testing.T) {
	env := startTestServer(t)
	id := env.mgr.Open("W", "", "")
	env.mgr.ToggleMinimize(id)

	size := geometry.Size{Width: 600, Height: 400}
	resp, _ := env.do(t, http.MethodPut, "/api/viewport", size)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if env.tracked.ViewportSize() != size {
		t.Errorf("tracked = %+v, want %+v", env.tracked.ViewportSize(), size)
	}
	snap, _ := env.mgr.Window(id)
	if snap.Geometry.Y != 400-40-10 {
		t.Errorf("tray slot y = %v, want 350", snap.Geometry.Y)
	}
}

func dialStream(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+env.baseURL[len("http"):]+"/api/stream", nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

// readUntil reads server messages until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, match func(web.ServerMessage) bool) web.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		var msg web.ServerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode message: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msg web.ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

func pointer(ev input.Event) web.ClientMessage {
	return web.ClientMessage{Type: web.MessagePointer, Event: &ev}
}

func TestStream_StateAndDrag(t *testing.T) {
	env := startTestServer(t)
	conn := dialStream(t, env)

	first := readUntil(t, conn, func(m web.ServerMessage) bool { return m.Type == web.MessageState })
	if len(first.State.Windows) != 0 {
		t.Fatalf("initial state has %d windows", len(first.State.Windows))
	}

	id := env.mgr.Open("W", "", "")
	readUntil(t, conn, func(m web.ServerMessage) bool {
		return m.Type == web.MessageState && len(m.State.Windows) == 1
	})

	send(t, conn, pointer(input.Down(id, input.HeaderHandle, geometry.Point{X: 310, Y: 310})))
	send(t, conn, pointer(input.Move(geometry.Point{X: 5, Y: 310})))
	msg := readUntil(t, conn, func(m web.ServerMessage) bool {
		return m.Type == web.MessageState && m.State.PreviewRect != nil
	})
	if want := (geometry.Rect{Width: 500, Height: 800}); *msg.State.PreviewRect != want {
		t.Errorf("preview rect = %+v, want %+v", *msg.State.PreviewRect, want)
	}

	send(t, conn, pointer(input.Up(geometry.Point{X: 5, Y: 310})))
	msg = readUntil(t, conn, func(m web.ServerMessage) bool {
		return m.Type == web.MessageState && m.State.Session == nil && m.State.PreviewRect == nil
	})
	got, _ := msg.State.Find(id)
	if want := (geometry.Rect{Width: 500, Height: 800}); got.Geometry != want {
		t.Errorf("geometry = %+v, want %+v", got.Geometry, want)
	}
}

func TestStream_ViewportAndErrors(t *testing.T) {
	env := startTestServer(t)
	conn := dialStream(t, env)
	readUntil(t, conn, func(m web.ServerMessage) bool { return m.Type == web.MessageState })

	send(t, conn, web.ClientMessage{Type: "teleport"})
	msg := readUntil(t, conn, func(m web.ServerMessage) bool { return m.Type == web.MessageError })
	if msg.Error == "" {
		t.Error("error message should carry text")
	}

	send(t, conn, web.ClientMessage{Type: web.MessageViewport, Viewport: &geometry.Size{}})
	readUntil(t, conn, func(m web.ServerMessage) bool { return m.Type == web.MessageError })

	size := geometry.Size{Width: 640, Height: 480}
	send(t, conn, web.ClientMessage{Type: web.MessageViewport, Viewport: &size})
	readUntil(t, conn, func(m web.ServerMessage) bool {
		return m.Type == web.MessageState && m.State.Viewport == size
	})
	if env.tracked.ViewportSize() != size {
		t.Errorf("tracked = %+v, want %+v", env.tracked.ViewportSize(), size)
	}
}

func TestStream_DisconnectCancelsGesture(t *testing.T) {
	env := startTestServer(t)
	id := env.mgr.Open("W", "", "")
	conn := dialStream(t, env)
	readUntil(t, conn, func(m web.ServerMessage) bool { return m.Type == web.MessageState })

	send(t, conn, pointer(input.Down(id, input.HeaderHandle, geometry.Point{X: 310, Y: 310})))
	readUntil(t, conn, func(m web.ServerMessage) bool {
		return m.Type == web.MessageState && m.State.Session != nil
	})

	_ = conn.Close(websocket.StatusNormalClosure, "bye")

	deadline := time.Now().Add(3 * time.Second)
	for env.mgr.Snapshot().Session != nil {
		if time.Now().After(deadline) {
			t.Fatal("gesture still active after the stream disconnected")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestStream_DisconnectKeepsAnotherClientsGesture(t *testing.T) {
	env := startTestServer(t)
	first := env.mgr.Open("A", "", "")
	second := env.mgr.Open("B", "", "")
	conn := dialStream(t, env)
	readUntil(t, conn, func(m web.ServerMessage) bool { return m.Type == web.MessageState })

	send(t, conn, pointer(input.Down(first, input.HeaderHandle, geometry.Point{X: 310, Y: 310})))
	readUntil(t, conn, func(m web.ServerMessage) bool {
		return m.Type == web.MessageState && m.State.Session != nil
	})

	// Another client ends the stream's drag and starts its own.
	env.mgr.PointerUp(geometry.Size{})
	if !env.mgr.BeginDrag(second, geometry.Point{X: 310, Y: 310}) {
		t.Fatal("BeginDrag on the second window was rejected")
	}

	send(t, conn, pointer(input.Move(geometry.Point{X: 900, Y: 700})))
	_ = conn.Close(websocket.StatusNormalClosure, "bye")

	// Give the server time to notice the disconnect.
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		state := env.mgr.Snapshot()
		if state.Session == nil || state.Session.WindowID != second {
			t.Fatalf("session = %+v, want the drag on window %d to survive", state.Session, second)
		}
		time.Sleep(10 * time.Millisecond)
	}
	got, _ := env.mgr.Window(second)
	if got.Geometry.X != 300 || got.Geometry.Y != 300 {
		t.Fatalf("window %d moved to %+v", second, got.Geometry)
	}
}
