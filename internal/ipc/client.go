package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/runtimepath"
	"github.com/1broseidon/panedesk/internal/window"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientForSocket(socketPath)
}

// NewClientForSocket creates a client for an explicit socket path.
func NewClientForSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		if resp.Code == CodeNotFound {
			return nil, fmt.Errorf("daemon error: %w", manager.ErrWindowNotFound)
		}
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) send(cmd CommandType, payload any) (*Response, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return c.sendRequest(req)
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.send(CommandReload, nil)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.send(CommandGetStatus, nil)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// State retrieves the full desktop state.
func (c *Client) State() (*manager.State, error) {
	resp, err := c.send(CommandGetState, nil)
	if err != nil {
		return nil, err
	}

	var state manager.State
	if err := json.Unmarshal(resp.Data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state data: %w", err)
	}
	return &state, nil
}

// ListWindows retrieves every window in paint order.
func (c *Client) ListWindows() ([]manager.Snapshot, error) {
	resp, err := c.send(CommandListWindows, nil)
	if err != nil {
		return nil, err
	}

	var data WindowsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse windows data: %w", err)
	}
	return data.Windows, nil
}

// Open opens a window and returns its id.
func (c *Client) Open(title, icon, content string) (window.ID, error) {
	resp, err := c.send(CommandOpen, OpenPayload{Title: title, Icon: icon, Content: content})
	if err != nil {
		return 0, err
	}

	var data OpenData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return 0, fmt.Errorf("failed to parse open data: %w", err)
	}
	return data.ID, nil
}

// Close closes a window. Unknown ids yield manager.ErrWindowNotFound.
func (c *Client) Close(id window.ID) error {
	_, err := c.send(CommandClose, WindowPayload{ID: id})
	return err
}

// ToggleMinimize minimizes or restores a window.
func (c *Client) ToggleMinimize(id window.ID) error {
	_, err := c.send(CommandToggleMinimize, WindowPayload{ID: id})
	return err
}

// ToggleMaximize maximizes or restores a window.
func (c *Client) ToggleMaximize(id window.ID) error {
	_, err := c.send(CommandToggleMaximize, WindowPayload{ID: id})
	return err
}

// Focus raises a window.
func (c *Client) Focus(id window.ID) error {
	_, err := c.send(CommandFocus, WindowPayload{ID: id})
	return err
}

// Pointer delivers one pointer event and reports whether it changed anything.
func (c *Client) Pointer(ev input.Event) (bool, error) {
	resp, err := c.send(CommandPointer, ev)
	if err != nil {
		return false, err
	}

	var data PointerData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return false, fmt.Errorf("failed to parse pointer data: %w", err)
	}
	return data.Changed, nil
}

// SetViewport reports a new viewport size.
func (c *Client) SetViewport(size geometry.Size) error {
	_, err := c.send(CommandSetViewport, ViewportPayload{Width: size.Width, Height: size.Height})
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
