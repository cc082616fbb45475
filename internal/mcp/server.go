package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/window"
)

const (
	ServerName    = "panedesk"
	ServerVersion = "0.1.0"
)

// Desktop is the daemon surface the tools drive. *ipc.Client implements it.
type Desktop interface {
	State() (*manager.State, error)
	Open(title, icon, content string) (window.ID, error)
	Close(id window.ID) error
	ToggleMinimize(id window.ID) error
	ToggleMaximize(id window.ID) error
	Focus(id window.ID) error
	Pointer(ev input.Event) (bool, error)
}

// Server is the MCP server exposing desktop windows as tools.
type Server struct {
	mcpServer *mcpsdk.Server
	desktop   Desktop
	logger    *logging.ScopedLogger
}

// NewServer creates an MCP server backed by desktop.
func NewServer(desktop Desktop, logger *logging.ScopedLogger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Server{desktop: desktop, logger: logger}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every window on the desktop in paint order (back to front) with its mode, geometry and tray rank, plus the viewport size and any pointer gesture in progress.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a new window at the default position. Returns the new window.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window. Closing the window being dragged or resized ends the gesture.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_minimize",
		Description: "Minimize a window into the bottom tray, or restore a minimized window to where it was. The tray re-packs when a window leaves it.",
	}, s.handleToggleMinimize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_maximize",
		Description: "Maximize a window to fill the viewport, or restore a maximized window to its previous geometry.",
	}, s.handleToggleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Raise a window to the front of the paint order.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "drag_window",
		Description: "Drag a normal window by its header to a new position, or to the left or right viewport edge to snap it to that half. Performs a full pointer down, move and up gesture.",
	}, s.handleDragWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a normal window by pulling one edge or corner. Width and height never shrink below 100 pixels.",
	}, s.handleResizeWindow)
}
