package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/panedesk/internal/geometry"
)

// Monitor is one active output in root-window coordinates.
type Monitor struct {
	Name   string
	Bounds geometry.Rect
}

// Monitors lists the active outputs using XRandR.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			Name: name,
			Bounds: geometry.Rect{
				X:      float64(info.X),
				Y:      float64(info.Y),
				Width:  float64(info.Width),
				Height: float64(info.Height),
			},
		})
	}
	return monitors, nil
}

// RootSize returns the size of the root window.
func (c *Connection) RootSize() (geometry.Size, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return geometry.Size{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return geometry.Size{Width: float64(geom.Width), Height: float64(geom.Height)}, nil
}

// Pointer returns the pointer position on the root window.
func (c *Connection) Pointer() (geometry.Point, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return geometry.Point{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	return geometry.Point{X: float64(reply.RootX), Y: float64(reply.RootY)}, nil
}

// WorkArea returns the EWMH work area of the current desktop, which excludes
// panels and docks.
func (c *Connection) WorkArea() (geometry.Rect, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return geometry.Rect{}, false
	}

	idx := 0
	if desktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desktop) < len(areas) {
		idx = int(desktop)
	}
	wa := areas[idx]
	return geometry.Rect{
		X:      float64(wa.X),
		Y:      float64(wa.Y),
		Width:  float64(wa.Width),
		Height: float64(wa.Height),
	}, true
}

// monitorAt returns the monitor containing p, or the first monitor.
func monitorAt(monitors []Monitor, p geometry.Point) (Monitor, bool) {
	if len(monitors) == 0 {
		return Monitor{}, false
	}
	for _, m := range monitors {
		b := m.Bounds
		if p.X >= b.X && p.X < b.Right() && p.Y >= b.Y && p.Y < b.Bottom() {
			return m, true
		}
	}
	return monitors[0], true
}

// intersect returns the overlap of a and b, and false when they do not
// overlap.
func intersect(a, b geometry.Rect) (geometry.Rect, bool) {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.Right(), b.Right())
	y2 := min(a.Bottom(), b.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return geometry.Rect{}, false
	}
	return geometry.Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// usableArea clips a monitor to the work area when the two overlap.
func usableArea(monitor geometry.Rect, workArea geometry.Rect, haveWorkArea bool) geometry.Rect {
	if !haveWorkArea {
		return monitor
	}
	if clipped, ok := intersect(monitor, workArea); ok {
		return clipped
	}
	return monitor
}
