package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/window"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload         CommandType = "RELOAD"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandGetState       CommandType = "GET_STATE"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandOpen           CommandType = "OPEN"
	CommandClose          CommandType = "CLOSE"
	CommandToggleMinimize CommandType = "TOGGLE_MINIMIZE"
	CommandToggleMaximize CommandType = "TOGGLE_MAXIMIZE"
	CommandFocus          CommandType = "FOCUS"
	CommandPointer        CommandType = "POINTER"
	CommandSetViewport    CommandType = "SET_VIEWPORT"
)

// Error codes carried in Response.Code.
const (
	CodeNotFound   = "not_found"
	CodeBadRequest = "bad_request"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	WindowCount    int                  `json:"window_count"`
	MinimizedCount int                  `json:"minimized_count"`
	Viewport       geometry.Size        `json:"viewport"`
	Session        *manager.SessionInfo `json:"session,omitempty"`
	UptimeSeconds  int64                `json:"uptime_seconds"`
	DaemonRunning  bool                 `json:"daemon_running"`
	WebAddr        string               `json:"web_addr,omitempty"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []manager.Snapshot `json:"windows"`
}

// OpenPayload represents the payload for OPEN
type OpenPayload struct {
	Title   string `json:"title"`
	Icon    string `json:"icon,omitempty"`
	Content string `json:"content,omitempty"`
}

// OpenData represents the data returned by OPEN
type OpenData struct {
	ID window.ID `json:"id"`
}

// WindowPayload names the target of CLOSE, TOGGLE_MINIMIZE, TOGGLE_MAXIMIZE
// and FOCUS.
type WindowPayload struct {
	ID window.ID `json:"id"`
}

// PointerData reports whether a POINTER event changed the desktop.
type PointerData struct {
	Changed bool `json:"changed"`
}

// ViewportPayload represents the payload for SET_VIEWPORT
type ViewportPayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// NewNotFoundResponse reports an unknown window id.
func NewNotFoundResponse(id window.ID) *Response {
	resp := NewErrorResponse(fmt.Sprintf("%v: %s", manager.ErrWindowNotFound, id))
	resp.Code = CodeNotFound
	return resp
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
