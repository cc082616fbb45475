package input

import (
	"fmt"
	"strings"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/window"
)

// Kind identifies a pointer event.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	// FocusLost means the front-end stopped tracking the pointer. Any
	// gesture in progress is cancelled.
	FocusLost
)

// String returns the string representation of the event kind
func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case FocusLost:
		return "focus_lost"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses an event kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "down":
		return PointerDown, nil
	case "move":
		return PointerMove, nil
	case "up":
		return PointerUp, nil
	case "focus_lost", "blur":
		return FocusLost, nil
	default:
		return 0, fmt.Errorf("unknown pointer event %q", s)
	}
}

// Handle is the part of a window a PointerDown landed on: the header, or a
// resize handle named by its compass direction.
type Handle string

// HeaderHandle starts a drag.
const HeaderHandle Handle = "header"

// ResizeHandle returns the handle for a resize direction.
func ResizeHandle(d window.Direction) Handle {
	return Handle(d.String())
}

// IsHeader reports whether h starts a drag.
func (h Handle) IsHeader() bool {
	return strings.EqualFold(string(h), string(HeaderHandle))
}

// Direction returns the resize direction of a non-header handle.
func (h Handle) Direction() (window.Direction, error) {
	return window.ParseDirection(string(h))
}

// Event is one pointer event in viewport coordinates. On a PointerDown,
// WindowID names the pressed window; on the other kinds a non-zero WindowID
// limits the event to the gesture that window owns.
type Event struct {
	Kind     Kind           `json:"kind"`
	WindowID window.ID      `json:"window_id,omitempty"`
	Handle   Handle         `json:"handle,omitempty"`
	Pos      geometry.Point `json:"pos"`
	// Viewport is the size the front-end rendered at. Nil or zero means
	// "ask the viewport provider".
	Viewport *geometry.Size `json:"viewport,omitempty"`
}

// Down builds a PointerDown event.
func Down(id window.ID, handle Handle, pos geometry.Point) Event {
	return Event{Kind: PointerDown, WindowID: id, Handle: handle, Pos: pos}
}

// Move builds a PointerMove event.
func Move(pos geometry.Point) Event {
	return Event{Kind: PointerMove, Pos: pos}
}

// Up builds a PointerUp event.
func Up(pos geometry.Point) Event {
	return Event{Kind: PointerUp, Pos: pos}
}

// For scopes the event to the gesture owned by id.
func (e Event) For(id window.ID) Event {
	e.WindowID = id
	return e
}

// WithViewport attaches the size the front-end rendered at.
func (e Event) WithViewport(size geometry.Size) Event {
	e.Viewport = &size
	return e
}
