package manager

import (
	"sort"
	"sync"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/snap"
	"github.com/1broseidon/panedesk/internal/tray"
	"github.com/1broseidon/panedesk/internal/window"
)

// ViewportSource reports the current viewport size on demand.
type ViewportSource interface {
	ViewportSize() geometry.Size
}

// Manager owns every open window and the single gesture session. All methods
// are safe for concurrent use; calls are applied in the order they acquire
// the manager.
type Manager struct {
	mu       sync.Mutex
	viewport ViewportSource
	logger   *logging.ScopedLogger

	lastViewport    geometry.Size
	defaultGeometry geometry.Rect

	windows map[window.ID]*window.Record
	order   []window.ID // creation order
	nextID  window.ID
	topZ    int

	// At most one of drag and resize is non-nil.
	drag    *window.DragSession
	resize  *window.ResizeSession
	preview snap.Preview

	listeners []func(State)
}

// New creates an empty manager. viewport may be nil, in which case the
// viewport is only learned from pointer events and SetViewport.
func New(viewport ViewportSource, logger *logging.ScopedLogger) *Manager {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Manager{
		viewport:        viewport,
		logger:          logger,
		lastViewport:    FallbackViewport,
		defaultGeometry: DefaultGeometry,
		windows:         make(map[window.ID]*window.Record),
	}
}

// OnChange registers fn to receive the new state after every change. fn runs
// outside the manager lock and may call back into the manager.
func (m *Manager) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// SetDefaultGeometry changes where future windows open. Size is raised to
// the minimum.
func (m *Manager) SetDefaultGeometry(r geometry.Rect) {
	r.Width, r.Height = geometry.ClampSize(r.Width, r.Height)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultGeometry = r
}

// Open creates a Normal window at the default geometry and returns its id.
func (m *Manager) Open(title, icon, content string) window.ID {
	m.mu.Lock()

	m.nextID++
	id := m.nextID
	rec := window.New(id, title, icon, content, m.defaultGeometry)
	m.topZ++
	rec.Z = m.topZ
	m.windows[id] = &rec
	m.order = append(m.order, id)

	m.logger.Info("window opened", "id", uint64(id), "title", title)
	m.unlockAndNotify()
	return id
}

// Close removes the window. It reports false if id is unknown.
func (m *Manager) Close(id window.ID) bool {
	sampled := m.sampleViewport(geometry.Size{})
	m.mu.Lock()

	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	m.dropSessionForLocked(id)
	wasMinimized := rec.Mode == window.ModeMinimized
	delete(m.windows, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if wasMinimized {
		m.relayoutTrayLocked(m.adoptViewportLocked(sampled))
	}

	m.logger.Info("window closed", "id", uint64(id))
	m.unlockAndNotify()
	return true
}

// ToggleMinimize restores a minimized window or sends any other window to
// the end of the tray. It reports false if id is unknown.
func (m *Manager) ToggleMinimize(id window.ID) bool {
	sampled := m.sampleViewport(geometry.Size{})
	m.mu.Lock()

	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	vp := m.adoptViewportLocked(sampled)
	if rec.Mode == window.ModeMinimized {
		*rec = window.RestoreFromMinimize(*rec)
		m.logger.Debug("window restored from tray", "id", uint64(id))
	} else {
		m.dropSessionForLocked(id)
		*rec = window.Minimize(*rec, m.minimizedCountLocked(), vp)
		m.logger.Debug("window minimized", "id", uint64(id))
	}
	m.relayoutTrayLocked(vp)

	m.unlockAndNotify()
	return true
}

// ToggleMaximize restores a maximized window or maximizes any other window.
// It reports false if id is unknown.
func (m *Manager) ToggleMaximize(id window.ID) bool {
	sampled := m.sampleViewport(geometry.Size{})
	m.mu.Lock()

	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	vp := m.adoptViewportLocked(sampled)
	switch rec.Mode {
	case window.ModeMaximized:
		*rec = window.RestoreFromMaximize(*rec)
		m.logger.Debug("window restored from maximized", "id", uint64(id))
	case window.ModeMinimized:
		*rec = window.Maximize(*rec, vp)
		m.relayoutTrayLocked(vp)
		m.logger.Debug("window maximized from tray", "id", uint64(id))
	default:
		m.dropSessionForLocked(id)
		*rec = window.Maximize(*rec, vp)
		m.logger.Debug("window maximized", "id", uint64(id))
	}

	m.unlockAndNotify()
	return true
}

// Focus raises the window to the top of the paint order. It reports false
// if id is unknown.
func (m *Manager) Focus(id window.ID) bool {
	m.mu.Lock()

	rec, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if !m.raiseLocked(rec) {
		m.mu.Unlock()
		return true
	}

	m.unlockAndNotify()
	return true
}

// BeginDrag starts a header drag. It is rejected when another window owns
// the active gesture or the window is not Normal. Beginning again on the
// window that already owns the gesture replaces that gesture.
func (m *Manager) BeginDrag(id window.ID, pointer geometry.Point) bool {
	m.mu.Lock()

	rec, ok := m.gestureTargetLocked(id)
	if !ok {
		m.mu.Unlock()
		return false
	}
	session, ok := window.BeginDrag(*rec, pointer)
	if !ok {
		m.mu.Unlock()
		return false
	}

	m.drag = &session
	m.resize = nil
	m.preview = snap.None
	m.raiseLocked(rec)

	m.logger.Debug("drag started", "id", uint64(id), "x", pointer.X, "y", pointer.Y)
	m.unlockAndNotify()
	return true
}

// BeginResize starts a handle resize under the same rules as BeginDrag.
func (m *Manager) BeginResize(id window.ID, dir window.Direction, pointer geometry.Point) bool {
	m.mu.Lock()

	rec, ok := m.gestureTargetLocked(id)
	if !ok {
		m.mu.Unlock()
		return false
	}
	session, ok := window.BeginResize(*rec, dir, pointer)
	if !ok {
		m.mu.Unlock()
		return false
	}

	m.resize = &session
	m.drag = nil
	m.preview = snap.None
	m.raiseLocked(rec)

	m.logger.Debug("resize started", "id", uint64(id), "direction", dir.String())
	m.unlockAndNotify()
	return true
}

// PointerMove feeds a pointer position to the active gesture. It reports
// false, changing nothing, when no gesture is active.
func (m *Manager) PointerMove(pointer geometry.Point, viewport geometry.Size) bool {
	return m.PointerMoveFor(AnyWindow, pointer, viewport)
}

// PointerMoveFor is PointerMove restricted to the gesture owned by id. It
// reports false when id does not own the active gesture.
func (m *Manager) PointerMoveFor(id window.ID, pointer geometry.Point, viewport geometry.Size) bool {
	sampled := m.sampleViewport(viewport)
	m.mu.Lock()

	if !m.ownsSessionLocked(id) {
		m.mu.Unlock()
		return false
	}
	vp := m.observeViewportLocked(viewport, sampled)
	switch {
	case m.drag != nil:
		rec := m.windows[m.drag.WindowID]
		moved, preview := window.Drag(*rec, *m.drag, pointer, vp.Width)
		*rec = moved
		m.preview = preview
	case m.resize != nil:
		rec := m.windows[m.resize.WindowID]
		resized, session := window.Resize(*rec, *m.resize, pointer)
		*rec = resized
		m.resize = &session
	}

	m.unlockAndNotify()
	return true
}

// PointerUp ends the active gesture, committing a pending snap. It reports
// false when no gesture is active.
func (m *Manager) PointerUp(viewport geometry.Size) bool {
	return m.PointerUpFor(AnyWindow, viewport)
}

// PointerUpFor is PointerUp restricted to the gesture owned by id.
func (m *Manager) PointerUpFor(id window.ID, viewport geometry.Size) bool {
	sampled := m.sampleViewport(viewport)
	m.mu.Lock()

	if !m.ownsSessionLocked(id) {
		m.mu.Unlock()
		return false
	}
	vp := m.observeViewportLocked(viewport, sampled)
	switch {
	case m.drag != nil:
		rec := m.windows[m.drag.WindowID]
		*rec = window.EndDrag(*rec, m.preview, vp)
		m.logger.Debug("drag ended", "id", uint64(rec.ID), "snap", m.preview.String())
	case m.resize != nil:
		rec := m.windows[m.resize.WindowID]
		*rec = window.EndResize(*rec)
		m.logger.Debug("resize ended", "id", uint64(rec.ID))
	}

	m.clearSessionLocked()
	m.unlockAndNotify()
	return true
}

// CancelGesture ends the active gesture without committing a snap; geometry
// stays where the last move left it. Input adapters call it when they lose
// pointer tracking. It reports false when no gesture is active.
func (m *Manager) CancelGesture() bool {
	return m.CancelGestureFor(AnyWindow)
}

// CancelGestureFor cancels the active gesture only if id owns it, so an
// adapter that lost its pointer never ends a gesture another client started.
func (m *Manager) CancelGestureFor(id window.ID) bool {
	m.mu.Lock()

	if !m.ownsSessionLocked(id) {
		m.mu.Unlock()
		return false
	}
	owner, _ := m.sessionOwnerLocked()
	m.logger.Debug("gesture cancelled", "id", uint64(owner))
	m.clearSessionLocked()
	m.unlockAndNotify()
	return true
}

// SetViewport records a new viewport size, re-fits maximized windows and
// re-lays the tray against the new bottom edge.
func (m *Manager) SetViewport(size geometry.Size) {
	if size.IsZero() {
		return
	}

	m.mu.Lock()
	m.lastViewport = size
	for _, rec := range m.windows {
		if rec.Mode == window.ModeMaximized {
			rec.Geometry = size.Rect()
		}
	}
	m.relayoutTrayLocked(size)
	m.unlockAndNotify()
}

// Snapshot returns the current state, reading the viewport source first so
// State.Viewport is current even before any gesture.
func (m *Manager) Snapshot() State {
	sampled := m.sampleViewport(geometry.Size{})
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adoptViewportLocked(sampled)
	return m.stateLocked()
}

// Window returns the snapshot of a single window.
func (m *Manager) Window(id window.ID) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.windows[id]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(rec), true
}

// Count returns the number of open windows.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// gestureTargetLocked returns the record a new gesture may start on.
func (m *Manager) gestureTargetLocked(id window.ID) (*window.Record, bool) {
	rec, ok := m.windows[id]
	if !ok {
		return nil, false
	}
	if owner, active := m.sessionOwnerLocked(); active && owner != id {
		m.logger.Debug("gesture rejected: another window owns the session", "id", uint64(id), "owner", uint64(owner))
		return nil, false
	}
	return rec, true
}

// ownsSessionLocked reports whether a gesture is active and, unless id is
// AnyWindow, whether id owns it.
func (m *Manager) ownsSessionLocked(id window.ID) bool {
	owner, active := m.sessionOwnerLocked()
	return active && (id == AnyWindow || owner == id)
}

func (m *Manager) sessionOwnerLocked() (window.ID, bool) {
	switch {
	case m.drag != nil:
		return m.drag.WindowID, true
	case m.resize != nil:
		return m.resize.WindowID, true
	default:
		return 0, false
	}
}

// dropSessionForLocked abandons the gesture if it belongs to id.
func (m *Manager) dropSessionForLocked(id window.ID) {
	if owner, active := m.sessionOwnerLocked(); active && owner == id {
		m.clearSessionLocked()
	}
}

func (m *Manager) clearSessionLocked() {
	m.drag = nil
	m.resize = nil
	m.preview = snap.None
}

func (m *Manager) raiseLocked(rec *window.Record) bool {
	if rec.Z == m.topZ {
		return false
	}
	m.topZ++
	rec.Z = m.topZ
	return true
}

func (m *Manager) minimizedCountLocked() int {
	n := 0
	for _, rec := range m.windows {
		if rec.Mode == window.ModeMinimized {
			n++
		}
	}
	return n
}

// relayoutTrayLocked recomputes every tray slot as one batch and renumbers
// minimize orders to their ranks, so the next minimize (slot = count) always
// lands after every window already in the tray.
func (m *Manager) relayoutTrayLocked(vp geometry.Size) {
	var entries []tray.Entry
	for _, rec := range m.windows {
		if rec.Mode == window.ModeMinimized {
			entries = append(entries, tray.Entry{Key: uint64(rec.ID), Order: rec.MinimizeOrder})
		}
	}
	for _, p := range tray.Arrange(entries, vp.Height) {
		rec := m.windows[window.ID(p.Key)]
		rec.MinimizeOrder = p.Rank
		rec.Geometry = p.Rect
	}
}

// sampleViewport reads the viewport source outside the lock, since the x11
// source makes a server round-trip. It returns the zero size when reported
// is already known or there is no source.
func (m *Manager) sampleViewport(reported geometry.Size) geometry.Size {
	if !reported.IsZero() || m.viewport == nil {
		return geometry.Size{}
	}
	return m.viewport.ViewportSize()
}

// adoptViewportLocked records a sampled size and returns the viewport to
// lay out against.
func (m *Manager) adoptViewportLocked(sampled geometry.Size) geometry.Size {
	if !sampled.IsZero() {
		m.lastViewport = sampled
	}
	return m.lastViewport
}

// observeViewportLocked prefers the viewport delivered with a pointer event
// and falls back to the sampled source size.
func (m *Manager) observeViewportLocked(reported, sampled geometry.Size) geometry.Size {
	if reported.IsZero() {
		return m.adoptViewportLocked(sampled)
	}
	m.lastViewport = reported
	return reported
}

func (m *Manager) stateLocked() State {
	windows := make([]Snapshot, 0, len(m.order))
	for _, id := range m.order {
		windows = append(windows, snapshotOf(m.windows[id]))
	}
	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Z < windows[j].Z
	})

	state := State{
		Viewport: m.lastViewport,
		Windows:  windows,
		Preview:  m.preview,
	}
	if r, ok := snap.Target(m.preview, m.lastViewport); ok {
		state.PreviewRect = &r
	}
	switch {
	case m.drag != nil:
		state.Session = &SessionInfo{Kind: SessionDrag, WindowID: m.drag.WindowID}
	case m.resize != nil:
		state.Session = &SessionInfo{
			Kind:      SessionResize,
			WindowID:  m.resize.WindowID,
			Direction: m.resize.Direction.String(),
		}
	}
	return state
}

// unlockAndNotify snapshots the state, releases the lock and hands the
// snapshot to every listener.
func (m *Manager) unlockAndNotify() {
	if len(m.listeners) == 0 {
		m.mu.Unlock()
		return
	}
	state := m.stateLocked()
	listeners := make([]func(State), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
