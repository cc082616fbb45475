package mcp

import (
	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/manager"
)

// WindowInfo describes one window. Enum fields are plain strings so the
// structured output matches its schema.
type WindowInfo struct {
	ID       uint64        `json:"id"`
	Title    string        `json:"title"`
	Icon     string        `json:"icon,omitempty"`
	Mode     string        `json:"mode"`
	Geometry geometry.Rect `json:"geometry"`
	Z        int           `json:"z"`
	TrayRank int           `json:"tray_rank"`
}

func windowInfo(s manager.Snapshot) WindowInfo {
	return WindowInfo{
		ID:       uint64(s.ID),
		Title:    s.Title,
		Icon:     s.Icon,
		Mode:     s.Mode.String(),
		Geometry: s.Geometry,
		Z:        s.Z,
		TrayRank: s.TrayRank,
	}
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Viewport geometry.Size `json:"viewport"`
	Windows  []WindowInfo  `json:"windows"`
	// Gesture is "drag" or "resize" while a pointer gesture is active.
	Gesture string `json:"gesture,omitempty"`
}

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	Title   string `json:"title" jsonschema:"Window title shown in the header and the tray"`
	Icon    string `json:"icon,omitempty" jsonschema:"Optional icon name"`
	Content string `json:"content,omitempty" jsonschema:"Optional text shown in the window body"`
}

// WindowInput names the target of the single-window tools.
type WindowInput struct {
	ID uint64 `json:"id" jsonschema:"Window id as returned by open_window or list_windows"`
}

// WindowOutput reports a window after an operation.
type WindowOutput struct {
	Window WindowInfo `json:"window"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	ID     uint64 `json:"id"`
	Closed bool   `json:"closed"`
}

// DragWindowInput is the input for the drag_window tool.
type DragWindowInput struct {
	ID   uint64  `json:"id" jsonschema:"Window id to drag by its header"`
	X    float64 `json:"x,omitempty" jsonschema:"Target left edge of the window, in viewport pixels"`
	Y    float64 `json:"y,omitempty" jsonschema:"Target top edge of the window, in viewport pixels"`
	Snap string  `json:"snap,omitempty" jsonschema:"Optional: left or right. Drags to that viewport edge and snaps the window to the half. x is ignored."`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID        uint64  `json:"id" jsonschema:"Window id to resize"`
	Direction string  `json:"direction" jsonschema:"Edge or corner to pull: n, s, e, w, ne, nw, se or sw"`
	DX        float64 `json:"dx,omitempty" jsonschema:"Horizontal pointer movement in pixels"`
	DY        float64 `json:"dy,omitempty" jsonschema:"Vertical pointer movement in pixels"`
}
