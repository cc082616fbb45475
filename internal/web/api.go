package web

import (
	"encoding/json"
	"net/http"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/window"
)

// OpenRequest is the body of POST /api/windows.
type OpenRequest struct {
	Title   string `json:"title"`
	Icon    string `json:"icon,omitempty"`
	Content string `json:"content,omitempty"`
}

// OpenResponse is returned by POST /api/windows.
type OpenResponse struct {
	ID window.ID `json:"id"`
}

// PointerResponse is returned by POST /api/pointer.
type PointerResponse struct {
	Changed bool `json:"changed"`
}

// handleGetState handles GET /api/state.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mgr.Snapshot())
}

// handleListWindows handles GET /api/windows. Windows are in paint order.
func (s *Server) handleListWindows(w http.ResponseWriter, r *http.Request) {
	windows := s.mgr.Snapshot().Windows
	if windows == nil {
		windows = []manager.Snapshot{}
	}
	writeJSON(w, http.StatusOK, windows)
}

// handleGetWindow handles GET /api/windows/{id}.
func (s *Server) handleGetWindow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	snap, found := s.mgr.Window(id)
	if !found {
		writeError(w, http.StatusNotFound, manager.ErrWindowNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleOpenWindow handles POST /api/windows. An empty body opens an
// untitled window.
func (s *Server) handleOpenWindow(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Title == "" {
		req.Title = "Untitled"
	}

	id := s.mgr.Open(req.Title, req.Icon, req.Content)
	writeJSON(w, http.StatusCreated, OpenResponse{ID: id})
}

// windowOp adapts a manager operation keyed by window id to a handler that
// answers 404 for unknown ids and the updated state otherwise.
func (s *Server) windowOp(name string, op func(window.ID) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if !op(id) {
			writeError(w, http.StatusNotFound, manager.ErrWindowNotFound.Error())
			return
		}
		s.logger.Debug("window operation", "op", name, "id", uint64(id))
		writeJSON(w, http.StatusOK, s.mgr.Snapshot())
	}
}

// handlePointer handles POST /api/pointer with an input.Event body.
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	var ev input.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid pointer event")
		return
	}
	changed, err := s.dispatcher.Dispatch(ev)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, PointerResponse{Changed: changed})
}

// handleSetViewport handles PUT /api/viewport with a geometry.Size body.
func (s *Server) handleSetViewport(w http.ResponseWriter, r *http.Request) {
	var size geometry.Size
	if err := json.NewDecoder(r.Body).Decode(&size); err != nil || size.IsZero() {
		writeError(w, http.StatusBadRequest, "width and height must be > 0")
		return
	}
	s.setViewport(size)
	writeJSON(w, http.StatusOK, s.mgr.Snapshot())
}

func (s *Server) setViewport(size geometry.Size) {
	if s.tracked != nil {
		s.tracked.Set(size)
	}
	s.mgr.SetViewport(size)
}

// pathID parses the {id} path value, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (window.ID, bool) {
	id, err := window.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid window id")
		return 0, false
	}
	return id, true
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
