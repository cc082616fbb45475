package x11

import (
	"sync"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/logging"
)

// RootViewport sizes the desktop from the X display: the usable area of the
// monitor under the pointer, or the whole root window when RandR is
// unavailable.
type RootViewport struct {
	conn   *Connection
	logger *logging.ScopedLogger

	mu   sync.Mutex
	last geometry.Size
}

// NewRootViewport wraps an open connection.
func NewRootViewport(conn *Connection, logger *logging.ScopedLogger) *RootViewport {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &RootViewport{conn: conn, logger: logger}
}

// ViewportSize queries the X server. On failure the last good size is
// returned, which is zero before the first success.
func (v *RootViewport) ViewportSize() geometry.Size {
	size, err := v.query()

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.logger.Debug("x11 viewport query failed", "error", err)
		return v.last
	}
	if size != v.last {
		v.logger.Debug("x11 viewport changed", "width", size.Width, "height", size.Height)
		v.last = size
	}
	return size
}

func (v *RootViewport) query() (geometry.Size, error) {
	monitors, err := v.conn.Monitors()
	if err != nil || len(monitors) == 0 {
		return v.conn.RootSize()
	}

	pointer, err := v.conn.Pointer()
	if err != nil {
		pointer = geometry.Point{}
	}
	mon, _ := monitorAt(monitors, pointer)
	workArea, ok := v.conn.WorkArea()
	area := usableArea(mon.Bounds, workArea, ok)
	return geometry.Size{Width: area.Width, Height: area.Height}, nil
}
