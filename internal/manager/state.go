package manager

import (
	"errors"
	"fmt"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/snap"
	"github.com/1broseidon/panedesk/internal/window"
)

// ErrWindowNotFound is returned by transports when an operation names a
// window that does not exist (or no longer exists).
var ErrWindowNotFound = errors.New("window not found")

// DefaultGeometry is where a newly opened window appears.
var DefaultGeometry = geometry.Rect{X: 300, Y: 300, Width: 320, Height: 320}

// AnyWindow passed to the *For gesture methods matches whichever window owns
// the active gesture. Window ids start at 1.
const AnyWindow window.ID = 0

// FallbackViewport is used until a viewport source reports a real size.
var FallbackViewport = geometry.Size{Width: 1280, Height: 800}

// SessionKind identifies the active gesture.
type SessionKind int

const (
	SessionNone SessionKind = iota
	SessionDrag
	SessionResize
)

// String returns the string representation of the session kind
func (k SessionKind) String() string {
	switch k {
	case SessionNone:
		return "none"
	case SessionDrag:
		return "drag"
	case SessionResize:
		return "resize"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k SessionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *SessionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none", "":
		*k = SessionNone
	case "drag":
		*k = SessionDrag
	case "resize":
		*k = SessionResize
	default:
		return fmt.Errorf("unknown session kind: %q", text)
	}
	return nil
}

// Snapshot is the read-only view of one window handed to the view layer.
type Snapshot struct {
	ID       window.ID     `json:"id"`
	Title    string        `json:"title"`
	Icon     string        `json:"icon,omitempty"`
	Content  string        `json:"content,omitempty"`
	Geometry geometry.Rect `json:"geometry"`
	Mode     window.Mode   `json:"mode"`
	Z        int           `json:"z"`
	// TrayRank is the position in the tray, or -1 when not minimized.
	TrayRank int `json:"tray_rank"`
}

// SessionInfo describes the gesture in progress.
type SessionInfo struct {
	Kind      SessionKind `json:"kind"`
	WindowID  window.ID   `json:"window_id"`
	Direction string      `json:"direction,omitempty"`
}

// State is everything the view layer needs to paint one frame.
type State struct {
	Viewport geometry.Size `json:"viewport"`
	// Windows are in paint order: back to front.
	Windows     []Snapshot     `json:"windows"`
	Preview     snap.Preview   `json:"preview"`
	PreviewRect *geometry.Rect `json:"preview_rect,omitempty"`
	Session     *SessionInfo   `json:"session,omitempty"`
}

// Find returns the snapshot for id.
func (s State) Find(id window.ID) (Snapshot, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return Snapshot{}, false
}

// Top returns the front-most window containing p. Minimized windows are
// hit-tested at their tray slot.
func (s State) Top(p geometry.Point) (Snapshot, bool) {
	for i := len(s.Windows) - 1; i >= 0; i-- {
		if s.Windows[i].Geometry.Contains(p) {
			return s.Windows[i], true
		}
	}
	return Snapshot{}, false
}

func snapshotOf(r *window.Record) Snapshot {
	rank := -1
	if r.Mode == window.ModeMinimized {
		rank = r.MinimizeOrder
	}
	return Snapshot{
		ID:       r.ID,
		Title:    r.Title,
		Icon:     r.Icon,
		Content:  r.Content,
		Geometry: r.Geometry,
		Mode:     r.Mode,
		Z:        r.Z,
		TrayRank: rank,
	}
}
