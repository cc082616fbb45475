package input

import (
	"context"
	"fmt"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/window"
)

// Controller is the part of the window manager pointer events drive. The
// *For methods act only on the gesture owned by id; id 0 matches any.
type Controller interface {
	BeginDrag(id window.ID, pointer geometry.Point) bool
	BeginResize(id window.ID, dir window.Direction, pointer geometry.Point) bool
	PointerMoveFor(id window.ID, pointer geometry.Point, viewport geometry.Size) bool
	PointerUpFor(id window.ID, viewport geometry.Size) bool
	CancelGestureFor(id window.ID) bool
}

// Dispatcher applies pointer events to a Controller in the order they are
// given.
type Dispatcher struct {
	ctrl     Controller
	viewport ViewportProvider
	logger   *logging.ScopedLogger
}

// NewDispatcher creates a dispatcher. viewport may be nil when every event
// carries its own viewport size.
func NewDispatcher(ctrl Controller, viewport ViewportProvider, logger *logging.ScopedLogger) *Dispatcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Dispatcher{ctrl: ctrl, viewport: viewport, logger: logger}
}

// Dispatch applies one event. It reports whether the event changed anything;
// the error is non-nil only for malformed events.
func (d *Dispatcher) Dispatch(ev Event) (bool, error) {
	switch ev.Kind {
	case PointerDown:
		if ev.Handle == "" || ev.Handle.IsHeader() {
			return d.ctrl.BeginDrag(ev.WindowID, ev.Pos), nil
		}
		dir, err := ev.Handle.Direction()
		if err != nil {
			return false, fmt.Errorf("pointer down on window %s: %w", ev.WindowID, err)
		}
		return d.ctrl.BeginResize(ev.WindowID, dir, ev.Pos), nil
	case PointerMove:
		return d.ctrl.PointerMoveFor(ev.WindowID, ev.Pos, d.viewportFor(ev)), nil
	case PointerUp:
		return d.ctrl.PointerUpFor(ev.WindowID, d.viewportFor(ev)), nil
	case FocusLost:
		return d.ctrl.CancelGestureFor(ev.WindowID), nil
	default:
		return false, fmt.Errorf("unknown pointer event kind %d", int(ev.Kind))
	}
}

// Run pumps the events of one input source, such as a websocket
// connection, until the channel closes or ctx is cancelled. Events after an
// accepted PointerDown that name no window are scoped to the window the
// source pressed on; such events are dropped while the source owns no
// gesture. On return the gesture the source started is cancelled if it is
// still active, so no session outlives its input source. Malformed events
// go to report, or to the log when report is nil.
func (d *Dispatcher) Run(ctx context.Context, events <-chan Event, report func(Event, error)) error {
	var owner window.ID
	defer func() {
		if owner != 0 {
			d.ctrl.CancelGestureFor(owner)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Kind != PointerDown && ev.WindowID == 0 {
				if owner == 0 {
					continue
				}
				ev.WindowID = owner
			}

			changed, err := d.Dispatch(ev)
			if err != nil {
				if report != nil {
					report(ev, err)
				} else {
					d.logger.Warn("dropping pointer event", "kind", ev.Kind.String(), "error", err)
				}
				continue
			}
			switch ev.Kind {
			case PointerDown:
				if changed {
					owner = ev.WindowID
				}
			case PointerUp, FocusLost:
				if ev.WindowID == owner {
					owner = 0
				}
			}
		}
	}
}

func (d *Dispatcher) viewportFor(ev Event) geometry.Size {
	if ev.Viewport != nil && !ev.Viewport.IsZero() {
		return *ev.Viewport
	}
	if d.viewport == nil {
		return geometry.Size{}
	}
	return d.viewport.ViewportSize()
}
