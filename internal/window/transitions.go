package window

import (
	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/snap"
	"github.com/1broseidon/panedesk/internal/tray"
)

// All transitions take the record by value and return the new record; the
// caller decides whether to store the result.

// BeginDrag starts a header drag. Only Normal windows can be dragged.
func BeginDrag(r Record, pointer geometry.Point) (DragSession, bool) {
	if r.Mode != ModeNormal {
		return DragSession{}, false
	}
	return DragSession{
		WindowID: r.ID,
		Offset:   pointer.Sub(r.Geometry.TopLeft()),
	}, true
}

// Drag moves the window so the grab offset stays under the pointer and
// recomputes the snap preview. The window is not kept inside the viewport.
func Drag(r Record, s DragSession, pointer geometry.Point, viewportWidth float64) (Record, snap.Preview) {
	r.Geometry = r.Geometry.MoveTo(pointer.Sub(s.Offset))
	return r, snap.Compute(pointer.X, viewportWidth)
}

// EndDrag commits the snap preview, if any. Without a preview the geometry
// stays as the last Drag left it.
func EndDrag(r Record, preview snap.Preview, viewport geometry.Size) Record {
	if target, ok := snap.Target(preview, viewport); ok {
		r.Geometry = target
	}
	return r
}

// BeginResize starts a handle resize. Only Normal windows can be resized.
func BeginResize(r Record, dir Direction, pointer geometry.Point) (ResizeSession, bool) {
	if r.Mode != ModeNormal || !dir.Valid() {
		return ResizeSession{}, false
	}
	return ResizeSession{
		WindowID:    r.ID,
		Direction:   dir,
		LastPointer: pointer,
	}, true
}

// Resize applies the pointer delta since the last event to every edge named
// by the session direction.
//
// North and west edges move the origin by the raw delta even when the size
// is already at the floor, so a window at minimum size keeps sliding while
// the pointer keeps pushing inward.
func Resize(r Record, s ResizeSession, pointer geometry.Point) (Record, ResizeSession) {
	delta := pointer.Sub(s.LastPointer)
	g := r.Geometry

	if s.Direction.Has(East) {
		g.Width = max(g.Width+delta.X, geometry.MinSize)
	}
	if s.Direction.Has(West) {
		g.Width = max(g.Width-delta.X, geometry.MinSize)
		g.X += delta.X
	}
	if s.Direction.Has(South) {
		g.Height = max(g.Height+delta.Y, geometry.MinSize)
	}
	if s.Direction.Has(North) {
		g.Height = max(g.Height-delta.Y, geometry.MinSize)
		g.Y += delta.Y
	}

	r.Geometry = g
	s.LastPointer = pointer
	return r, s
}

// EndResize finishes a resize. The geometry is already final.
func EndResize(r Record) Record {
	return r
}

// Maximize fills the viewport, remembering the Normal geometry. A minimized
// window is restored first so it never holds two modes at once.
func Maximize(r Record, viewport geometry.Size) Record {
	switch r.Mode {
	case ModeMaximized:
		return r
	case ModeMinimized:
		r = RestoreFromMinimize(r)
	}

	r.Saved = r.Geometry
	r.HasSaved = true
	r.Geometry = viewport.Rect()
	r.Mode = ModeMaximized
	return r
}

// RestoreFromMaximize returns a maximized window to its saved geometry.
func RestoreFromMaximize(r Record) Record {
	if r.Mode != ModeMaximized {
		return r
	}
	return restoreSaved(r)
}

// Minimize moves the window into tray slot `slot`. A maximized window is
// restored first, so restoring from the tray returns it to Normal with its
// pre-maximize geometry.
func Minimize(r Record, slot int, viewport geometry.Size) Record {
	switch r.Mode {
	case ModeMinimized:
		return r
	case ModeMaximized:
		r = RestoreFromMaximize(r)
	}

	r.Saved = r.Geometry
	r.HasSaved = true
	r.Mode = ModeMinimized
	r.MinimizeOrder = slot
	r.Geometry = tray.Slot(slot, viewport.Height)
	return r
}

// RestoreFromMinimize returns a minimized window to its saved geometry.
func RestoreFromMinimize(r Record) Record {
	if r.Mode != ModeMinimized {
		return r
	}
	r = restoreSaved(r)
	r.MinimizeOrder = 0
	return r
}

func restoreSaved(r Record) Record {
	if r.HasSaved {
		r.Geometry = r.Saved
	}
	r.Saved = geometry.Rect{}
	r.HasSaved = false
	r.Mode = ModeNormal
	return r
}
