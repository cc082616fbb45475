package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/snap"
	"github.com/1broseidon/panedesk/internal/window"
)

// grabY is how far below the top edge drag_window grabs the header.
const grabY = 10

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	state, err := s.desktop.State()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}

	out := ListWindowsOutput{
		Viewport: state.Viewport,
		Windows:  make([]WindowInfo, 0, len(state.Windows)),
	}
	for _, w := range state.Windows {
		out.Windows = append(out.Windows, windowInfo(w))
	}
	if state.Session != nil {
		out.Gesture = state.Session.Kind.String()
	}
	return nil, out, nil
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	title := args.Title
	if title == "" {
		title = "Untitled"
	}
	id, err := s.desktop.Open(title, args.Icon, args.Content)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	s.logger.Info("window opened", "id", uint64(id), "title", title)
	return s.windowResult(id)
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	if err := s.desktop.Close(window.ID(args.ID)); err != nil {
		return nil, CloseWindowOutput{}, err
	}
	s.logger.Info("window closed", "id", args.ID)
	return nil, CloseWindowOutput{ID: args.ID, Closed: true}, nil
}

func (s *Server) handleToggleMinimize(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp(args.ID, s.desktop.ToggleMinimize)
}

func (s *Server) handleToggleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp(args.ID, s.desktop.ToggleMaximize)
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp(args.ID, s.desktop.Focus)
}

func (s *Server) windowOp(id uint64, op func(window.ID) error) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if err := op(window.ID(id)); err != nil {
		return nil, WindowOutput{}, err
	}
	return s.windowResult(window.ID(id))
}

func (s *Server) handleDragWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args DragWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id := window.ID(args.ID)
	state, w, err := s.lookup(id)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if w.Mode != window.ModeNormal {
		return nil, WindowOutput{}, fmt.Errorf("window %s is %s; only normal windows can be dragged", id, w.Mode)
	}

	grab := geometry.Point{X: w.Geometry.Width / 2, Y: grabY}
	start := w.Geometry.TopLeft().Add(grab)
	end := geometry.Point{X: args.X, Y: args.Y}.Add(grab)

	preview, err := snap.ParsePreview(args.Snap)
	if err != nil {
		return nil, WindowOutput{}, fmt.Errorf("snap must be left or right, got %q", args.Snap)
	}
	if preview != snap.None {
		if state.Viewport.IsZero() {
			return nil, WindowOutput{}, fmt.Errorf("viewport size is not known yet")
		}
		end.X = 0
		if preview == snap.Right {
			end.X = state.Viewport.Width - 1
		}
	}

	if err := s.gesture(input.Down(id, input.HeaderHandle, start), end); err != nil {
		return nil, WindowOutput{}, err
	}
	s.logger.Debug("window dragged", "id", args.ID, "snap", args.Snap)
	return s.windowResult(id)
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	id := window.ID(args.ID)
	dir, err := window.ParseDirection(args.Direction)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	_, w, err := s.lookup(id)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	if w.Mode != window.ModeNormal {
		return nil, WindowOutput{}, fmt.Errorf("window %s is %s; only normal windows can be resized", id, w.Mode)
	}

	start := w.Geometry.TopLeft()
	end := start.Add(geometry.Point{X: args.DX, Y: args.DY})
	if err := s.gesture(input.Down(id, input.ResizeHandle(dir), start), end); err != nil {
		return nil, WindowOutput{}, err
	}
	s.logger.Debug("window resized", "id", args.ID, "direction", dir.String())
	return s.windowResult(id)
}

// gesture delivers down, a move to end and an up at end.
func (s *Server) gesture(down input.Event, end geometry.Point) error {
	started, err := s.desktop.Pointer(down)
	if err != nil {
		return err
	}
	if !started {
		return fmt.Errorf("window %s is busy with another gesture", down.WindowID)
	}
	// Scoped to the window so a gesture another client took over is left alone.
	if _, err := s.desktop.Pointer(input.Move(end).For(down.WindowID)); err != nil {
		return err
	}
	ended, err := s.desktop.Pointer(input.Up(end).For(down.WindowID))
	if err != nil {
		return err
	}
	if !ended {
		return fmt.Errorf("gesture on window %s was interrupted", down.WindowID)
	}
	return nil
}

func (s *Server) lookup(id window.ID) (*manager.State, manager.Snapshot, error) {
	state, err := s.desktop.State()
	if err != nil {
		return nil, manager.Snapshot{}, err
	}
	w, ok := state.Find(id)
	if !ok {
		return nil, manager.Snapshot{}, fmt.Errorf("window %s: %w", id, manager.ErrWindowNotFound)
	}
	return state, w, nil
}

func (s *Server) windowResult(id window.ID) (*mcpsdk.CallToolResult, WindowOutput, error) {
	_, w, err := s.lookup(id)
	if err != nil {
		return nil, WindowOutput{}, err
	}
	return nil, WindowOutput{Window: windowInfo(w)}, nil
}
