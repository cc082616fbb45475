package window

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/panedesk/internal/geometry"
)

// ID identifies a window for its whole lifetime. IDs are never reused.
type ID uint64

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses the decimal form produced by String.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid window id %q: %w", s, err)
	}
	return ID(n), nil
}

// Mode is the display mode of a window. It alone decides which geometry rule
// applies.
type Mode int

const (
	// ModeNormal means the window keeps its own geometry.
	ModeNormal Mode = iota
	// ModeMaximized means the window covers the whole viewport.
	ModeMaximized
	// ModeMinimized means the window sits in the tray.
	ModeMinimized
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeMaximized:
		return "maximized"
	case ModeMinimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "normal":
		*m = ModeNormal
	case "maximized":
		*m = ModeMaximized
	case "minimized":
		*m = ModeMinimized
	default:
		return fmt.Errorf("unknown window mode: %q", text)
	}
	return nil
}

// Record is the full state of one open window.
type Record struct {
	ID      ID
	Title   string
	Icon    string
	Content string

	Geometry geometry.Rect
	Mode     Mode

	// Saved is the geometry restored when leaving Maximized or Minimized.
	// It is only meaningful while HasSaved is true.
	Saved    geometry.Rect
	HasSaved bool

	// MinimizeOrder is the insertion order among minimized windows; only
	// meaningful while Mode is ModeMinimized.
	MinimizeOrder int

	// Z is the stacking position; higher paints later.
	Z int
}

// New returns a Normal record with the given geometry.
func New(id ID, title, icon, content string, geom geometry.Rect) Record {
	return Record{
		ID:       id,
		Title:    title,
		Icon:     icon,
		Content:  content,
		Geometry: geom,
		Mode:     ModeNormal,
	}
}

// DragSession tracks a header drag from pointer-down to pointer-up.
type DragSession struct {
	WindowID ID
	// Offset is the pointer position relative to the window origin at the
	// moment the drag started.
	Offset geometry.Point
}

// ResizeSession tracks a handle resize from pointer-down to pointer-up.
type ResizeSession struct {
	WindowID    ID
	Direction   Direction
	LastPointer geometry.Point
}
