package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/panedesk/internal/config"
	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/runtimepath"
	"github.com/1broseidon/panedesk/internal/window"
)

// ServerOptions wires the server to the daemon.
type ServerOptions struct {
	// SocketPath defaults to runtimepath.SocketPath().
	SocketPath string
	// ConfigPath is reloaded by RELOAD. Empty uses the default location.
	ConfigPath string
	Config     *config.Config
	Manager    *manager.Manager
	Dispatcher *input.Dispatcher
	// Tracked, when set, records sizes sent with SET_VIEWPORT.
	Tracked *input.Tracked
	// ReloadChan is signalled (non-blocking) after a successful RELOAD.
	ReloadChan chan struct{}
	// WebAddr is reported by GET_STATUS.
	WebAddr string
	Logger  *logging.ScopedLogger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	configPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	mgr          *manager.Manager
	dispatcher   *input.Dispatcher
	tracked      *input.Tracked
	webAddr      string
	logger       *logging.ScopedLogger
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Manager == nil {
		return nil, fmt.Errorf("ipc server needs a window manager")
	}

	socketPath := opts.SocketPath
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = path
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		var provider input.ViewportProvider
		if opts.Tracked != nil {
			provider = opts.Tracked
		}
		dispatcher = input.NewDispatcher(opts.Manager, provider, opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		configPath: opts.ConfigPath,
		cfg:        cfg,
		mgr:        opts.Manager,
		dispatcher: dispatcher,
		tracked:    opts.Tracked,
		webAddr:    opts.WebAddr,
		logger:     logger,
		startTime:  time.Now(),
		reloadChan: opts.ReloadChan,
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// SetWebAddr sets the address reported by GET_STATUS. Call before Start.
func (s *Server) SetWebAddr(addr string) {
	s.webAddr = addr
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetState:
		return s.handleGetState()
	case CommandListWindows:
		return s.handleListWindows()
	case CommandOpen:
		return s.handleOpen(req.Payload)
	case CommandClose:
		return s.handleWindowOp(req.Payload, "close", s.mgr.Close)
	case CommandToggleMinimize:
		return s.handleWindowOp(req.Payload, "toggle minimize", s.mgr.ToggleMinimize)
	case CommandToggleMaximize:
		return s.handleWindowOp(req.Payload, "toggle maximize", s.mgr.ToggleMaximize)
	case CommandFocus:
		return s.handleWindowOp(req.Payload, "focus", s.mgr.Focus)
	case CommandPointer:
		return s.handlePointer(req.Payload)
	case CommandSetViewport:
		return s.handleSetViewport(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	s.logger.Info("received RELOAD command")

	var res *config.LoadResult
	var err error
	if s.configPath != "" {
		res, err = config.LoadFromPath(s.configPath)
	} else {
		res, err = config.LoadWithSources()
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	s.UpdateConfig(res.Config)

	// Notify the daemon without blocking.
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	s.logger.Info("config reloaded", "files", len(res.Files))

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	state := s.mgr.Snapshot()
	minimized := 0
	for _, w := range state.Windows {
		if w.Mode == window.ModeMinimized {
			minimized++
		}
	}

	status := StatusData{
		WindowCount:    len(state.Windows),
		MinimizedCount: minimized,
		Viewport:       state.Viewport,
		Session:        state.Session,
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:  true,
		WebAddr:        s.webAddr,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetState() *Response {
	resp, err := NewOKResponse(s.mgr.Snapshot())
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleListWindows() *Response {
	state := s.mgr.Snapshot()
	resp, _ := NewOKResponse(WindowsData{Windows: state.Windows})
	return resp
}

func (s *Server) handleOpen(payload json.RawMessage) *Response {
	var req OpenPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return badRequest(fmt.Sprintf("Invalid open payload: %v", err))
		}
	}
	if req.Title == "" {
		req.Title = "Untitled"
	}

	id := s.mgr.Open(req.Title, req.Icon, req.Content)
	resp, _ := NewOKResponse(OpenData{ID: id})
	return resp
}

func (s *Server) handleWindowOp(payload json.RawMessage, name string, op func(window.ID) bool) *Response {
	var req WindowPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return badRequest(fmt.Sprintf("Invalid %s payload: %v", name, err))
	}
	if !op(req.ID) {
		return NewNotFoundResponse(req.ID)
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handlePointer(payload json.RawMessage) *Response {
	var ev input.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return badRequest(fmt.Sprintf("Invalid pointer payload: %v", err))
	}
	changed, err := s.dispatcher.Dispatch(ev)
	if err != nil {
		return badRequest(err.Error())
	}
	resp, _ := NewOKResponse(PointerData{Changed: changed})
	return resp
}

func (s *Server) handleSetViewport(payload json.RawMessage) *Response {
	var req ViewportPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return badRequest(fmt.Sprintf("Invalid viewport payload: %v", err))
	}
	size := geometry.Size{Width: req.Width, Height: req.Height}
	if size.IsZero() {
		return badRequest("width and height must be > 0")
	}
	if s.tracked != nil {
		s.tracked.Set(size)
	}
	s.mgr.SetViewport(size)

	resp, _ := NewOKResponse(nil)
	return resp
}

func badRequest(msg string) *Response {
	resp := NewErrorResponse(msg)
	resp.Code = CodeBadRequest
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	data, _ := badRequest(errMsg).Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
