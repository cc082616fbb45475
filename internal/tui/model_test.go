package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/window"
)

// newTestModel returns a 100x52 viewer over a fresh manager. The canvas is
// 100x50 cells, an 800x800 viewport.
func newTestModel(t *testing.T) (model, *manager.Manager) {
	t.Helper()
	mgr := manager.New(nil, nil)
	m := newModel(Local(mgr), Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 52})
	return m, mgr
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(action tea.MouseAction, x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft}
}

func TestModel_ResizeSetsViewport(t *testing.T) {
	m, mgr := newTestModel(t)

	want := geometry.Size{Width: 800, Height: 800}
	if m.viewport != want {
		t.Fatalf("viewport = %+v, want %+v", m.viewport, want)
	}
	if got := mgr.Snapshot().Viewport; got != want {
		t.Fatalf("manager viewport = %+v, want %+v", got, want)
	}

	m = update(t, m, keyPress("?"))
	if got := mgr.Snapshot().Viewport; got.Height != 800-16 {
		t.Fatalf("full help should shrink the canvas, viewport = %+v", got)
	}
}

func TestModel_OpenAndKeys(t *testing.T) {
	m, mgr := newTestModel(t)

	m = update(t, m, keyPress("n"))
	m = update(t, m, keyPress("n"))
	if mgr.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", mgr.Count())
	}
	if len(m.state.Windows) != 2 || m.state.Windows[1].Title != "Window 2" {
		t.Fatalf("state not refreshed: %+v", m.state.Windows)
	}

	// Window control is mouse-only; other keys leave the desktop alone.
	before := mgr.Snapshot()
	for _, k := range []tea.KeyMsg{keyPress("f"), keyPress("m"), keyPress("x"), keyPress("r"), {Type: tea.KeyTab}} {
		m = update(t, m, k)
	}
	if diff := cmp.Diff(before, mgr.Snapshot()); diff != "" {
		t.Fatalf("unbound keys changed the desktop (-before +after):\n%s", diff)
	}

	view := m.View()
	if !strings.Contains(view, "2 windows") || !strings.Contains(view, "opened window 2") {
		t.Errorf("status bar missing counts or status:\n%s", view)
	}
}

func TestModel_DragHeaderSnapsLeft(t *testing.T) {
	m, mgr := newTestModel(t)
	m = update(t, m, keyPress("n"))

	// The default window spans cells 37..77 x 18..38; its header is screen row 19.
	m = update(t, m, mouse(tea.MouseActionPress, 50, 19))
	if m.gesture != 1 || m.state.Session == nil || m.state.Session.Kind != manager.SessionDrag {
		t.Fatalf("press on header should start a drag, session = %+v", m.state.Session)
	}

	m = update(t, m, mouse(tea.MouseActionMotion, 0, 19))
	if m.state.PreviewRect == nil {
		t.Fatalf("dragging to column 0 should show the left preview")
	}

	m = update(t, m, mouse(tea.MouseActionRelease, 0, 19))
	if m.gesture != 0 || m.state.Session != nil {
		t.Fatalf("release should end the drag")
	}
	got, _ := mgr.Window(1)
	if diff := cmp.Diff(geometry.Rect{Width: 400, Height: 800}, got.Geometry); diff != "" {
		t.Errorf("geometry (-want +got):\n%s", diff)
	}
}

func TestModel_ResizeFromCorner(t *testing.T) {
	m, mgr := newTestModel(t)
	m = update(t, m, keyPress("n"))

	m = update(t, m, mouse(tea.MouseActionPress, 77, 39))
	if m.state.Session == nil || m.state.Session.Direction != "se" {
		t.Fatalf("press on the corner should start an se resize, session = %+v", m.state.Session)
	}
	m = update(t, m, mouse(tea.MouseActionMotion, 87, 44))
	m = update(t, m, mouse(tea.MouseActionRelease, 87, 44))

	got, _ := mgr.Window(1)
	want := geometry.Rect{X: 300, Y: 300, Width: 400, Height: 400}
	if diff := cmp.Diff(want, got.Geometry); diff != "" {
		t.Errorf("geometry (-want +got):\n%s", diff)
	}
}

func TestModel_Buttons(t *testing.T) {
	m, mgr := newTestModel(t)
	m = update(t, m, keyPress("n"))

	// Header buttons sit at cells 68..76 of row 18.
	m = update(t, m, mouse(tea.MouseActionPress, 72, 19))
	if w, _ := mgr.Window(1); w.Mode != window.ModeMaximized {
		t.Fatalf("maximize button: mode = %v", w.Mode)
	}

	// Maximized, the window spans all 100 columns; minimize is at 90..92.
	m = update(t, m, mouse(tea.MouseActionPress, 91, 1))
	w, _ := mgr.Window(1)
	if w.Mode != window.ModeMinimized {
		t.Fatalf("minimize button: mode = %v", w.Mode)
	}

	// Tray slot 0 is at y = 800-40-10 = 750, canvas row 46.
	m = update(t, m, mouse(tea.MouseActionPress, 5, 47))
	if w, _ := mgr.Window(1); w.Mode == window.ModeMinimized {
		t.Fatalf("clicking the tray chip should restore the window")
	}

	m = update(t, m, mouse(tea.MouseActionPress, 75, 19))
	if mgr.Count() != 0 {
		t.Fatalf("close button: Count() = %d", mgr.Count())
	}
}

func TestModel_BlurCancelsDrag(t *testing.T) {
	m, mgr := newTestModel(t)
	m = update(t, m, keyPress("n"))
	m = update(t, m, mouse(tea.MouseActionPress, 50, 19))
	m = update(t, m, mouse(tea.MouseActionMotion, 40, 19))

	m = update(t, m, tea.BlurMsg{})
	if m.gesture != 0 || mgr.Snapshot().Session != nil {
		t.Fatalf("blur should cancel the gesture")
	}

	// A later move is a no-op.
	before, _ := mgr.Window(1)
	m = update(t, m, mouse(tea.MouseActionMotion, 10, 30))
	after, _ := mgr.Window(1)
	if before.Geometry != after.Geometry {
		t.Fatalf("move after cancel changed geometry")
	}
}

func TestModel_QuitCancelsDrag(t *testing.T) {
	m, mgr := newTestModel(t)
	m = update(t, m, keyPress("n"))
	m = update(t, m, mouse(tea.MouseActionPress, 50, 19))

	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if mgr.Snapshot().Session != nil {
		t.Fatal("quitting should cancel the gesture")
	}
}

func TestModel_BlurKeepsAnotherClientsGesture(t *testing.T) {
	m, mgr := newTestModel(t)
	m = update(t, m, keyPress("n"))
	m = update(t, m, keyPress("n"))

	// Window 2 is in front; press its header.
	m = update(t, m, mouse(tea.MouseActionPress, 50, 19))
	if m.gesture != 2 {
		t.Fatalf("gesture = %d, want 2", m.gesture)
	}

	// Another client ends the drag and starts one on window 1.
	mgr.PointerUp(geometry.Size{})
	if !mgr.BeginDrag(1, geometry.Point{X: 310, Y: 310}) {
		t.Fatal("BeginDrag(1) rejected")
	}

	m = update(t, m, mouse(tea.MouseActionMotion, 10, 30))
	m = update(t, m, tea.BlurMsg{})
	if m.gesture != 0 {
		t.Fatalf("blur should forget the viewer's gesture")
	}
	s := mgr.Snapshot().Session
	if s == nil || s.WindowID != 1 {
		t.Fatalf("session = %+v, want window 1's drag to survive", s)
	}
	if w, _ := mgr.Window(1); w.Geometry != manager.DefaultGeometry {
		t.Fatalf("window 1 moved to %+v", w.Geometry)
	}
}

type failingDesktop struct {
	Desktop
}

func (failingDesktop) SetViewport(geometry.Size) error { return errors.New("daemon gone") }
func (failingDesktop) State() (manager.State, error)   { return manager.State{}, errors.New("daemon gone") }

func TestModel_ShowsErrors(t *testing.T) {
	m := newModel(failingDesktop{}, Options{})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	if m.err == nil || !strings.Contains(m.View(), "daemon gone") {
		t.Fatalf("error not surfaced, err = %v", m.err)
	}
}

func TestModel_EmptyViewBeforeSize(t *testing.T) {
	m := newModel(Local(manager.New(nil, nil)), Options{})
	if m.View() != "" {
		t.Fatal("View() before the first size message should be empty")
	}
}
