package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/manager"
)

// Server exposes the desktop over HTTP: a JSON control API and a websocket
// that streams state to a browser front-end and carries its pointer input.
type Server struct {
	httpServer *http.Server
	mgr        *manager.Manager
	dispatcher *input.Dispatcher
	tracked    *input.Tracked
	logger     *logging.ScopedLogger
	addr       string
	listener   net.Listener
	events     *eventBroker

	// streamCtx ends open websocket streams on Shutdown, which does not
	// track hijacked connections.
	streamCtx    context.Context
	cancelStream context.CancelFunc
}

// Config holds web server configuration.
type Config struct {
	Bind string
	Port int
}

// New creates a web server for mgr. tracked, when non-nil, records viewport
// sizes reported by the browser and backs pointer events that carry none.
// logProvider may be a *logging.Manager or a *logging.TestLogManager.
func New(cfg Config, mgr *manager.Manager, tracked *input.Tracked, logProvider logging.LoggerProvider) *Server {
	logger := logging.NopLogger()
	if logProvider != nil {
		logger = logProvider.For("web")
	}
	addr := net.JoinHostPort(cfg.Bind, fmt.Sprint(cfg.Port))

	var provider input.ViewportProvider
	if tracked != nil {
		provider = tracked
	}

	events := newEventBroker()
	mgr.OnChange(func(manager.State) { events.Notify() })

	streamCtx, cancelStream := context.WithCancel(context.Background())

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		mgr:        mgr,
		dispatcher: input.NewDispatcher(mgr, provider, logger),
		tracked:    tracked,
		logger:     logger,
		addr:       addr,
		events:     events,

		streamCtx:    streamCtx,
		cancelStream: cancelStream,
	}
	s.httpServer.RegisterOnShutdown(cancelStream)

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleGetState)
	mux.HandleFunc("GET /api/windows", s.handleListWindows)
	mux.HandleFunc("POST /api/windows", s.handleOpenWindow)
	mux.HandleFunc("GET /api/windows/{id}", s.handleGetWindow)
	mux.HandleFunc("DELETE /api/windows/{id}", s.windowOp("close", mgr.Close))
	mux.HandleFunc("POST /api/windows/{id}/minimize", s.windowOp("toggle minimize", mgr.ToggleMinimize))
	mux.HandleFunc("POST /api/windows/{id}/maximize", s.windowOp("toggle maximize", mgr.ToggleMaximize))
	mux.HandleFunc("POST /api/windows/{id}/focus", s.windowOp("focus", mgr.Focus))
	mux.HandleFunc("POST /api/pointer", s.handlePointer)
	mux.HandleFunc("PUT /api/viewport", s.handleSetViewport)
	mux.HandleFunc("GET /api/stream", s.handleStream)

	return s
}

// Listen binds the server to its configured address and returns the listener.
// Call Serve after Listen; the split lets callers read the bound address
// when the port is 0.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("web server listen: %w", err)
	}
	s.listener = ln
	return ln, nil
}

// Serve accepts connections on ln. Blocks until the server stops.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("web server started", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Start calls Listen then Serve. Blocks until the server stops.
func (s *Server) Start() error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Addr returns the address the server is listening on.
// Only valid after Listen() or Start() has been called.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Handler returns the request router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("web server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
