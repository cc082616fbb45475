package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/manager"
)

// Message types carried on /api/stream.
const (
	MessagePointer  = "pointer"
	MessageViewport = "viewport"
	MessageState    = "state"
	MessageError    = "error"
)

// ClientMessage is a text frame sent by the browser.
type ClientMessage struct {
	Type     string         `json:"type"`
	Event    *input.Event   `json:"event,omitempty"`
	Viewport *geometry.Size `json:"viewport,omitempty"`
}

// ServerMessage is a text frame sent to the browser.
type ServerMessage struct {
	Type  string         `json:"type"`
	State *manager.State `json:"state,omitempty"`
	Error string         `json:"error,omitempty"`
}

// handleStream upgrades to a websocket. The server sends the current state on
// connect and again after every change; the browser sends pointer events and
// viewport sizes. A gesture the browser started is cancelled when it
// disconnects mid-gesture.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	// Restrict to localhost origins to prevent cross-origin WebSocket attacks.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"127.0.0.1:*", "localhost:*"},
	})
	if err != nil {
		s.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(64 << 10)

	changes := s.events.Subscribe()
	defer s.events.Unsubscribe(changes)

	// Do not use r.Context() after the upgrade.
	ctx, cancel := context.WithCancel(s.streamCtx)
	defer cancel()

	s.logger.Info("stream connected", "remote", r.RemoteAddr)

	replies := make(chan ServerMessage, 8)
	readDone := make(chan error, 1)
	go func() {
		readDone <- s.readStream(ctx, conn, replies)
	}()

	state := s.mgr.Snapshot()
	if err := writeMessage(ctx, conn, ServerMessage{Type: MessageState, State: &state}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case err := <-readDone:
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure && !errors.Is(err, context.Canceled) {
				s.logger.Debug("stream read ended", "error", err)
			}
			s.logger.Info("stream disconnected", "remote", r.RemoteAddr)
			return
		case msg := <-replies:
			if err := writeMessage(ctx, conn, msg); err != nil {
				return
			}
		case <-changes:
			state := s.mgr.Snapshot()
			if err := writeMessage(ctx, conn, ServerMessage{Type: MessageState, State: &state}); err != nil {
				return
			}
		}
	}
}

// readStream applies client frames until the connection fails. Pointer
// events go through a dispatcher pump owned by this connection, which
// cancels the gesture the connection started when it ends. Rejected frames
// are answered with an error message on replies.
func (s *Server) readStream(ctx context.Context, conn *websocket.Conn, replies chan<- ServerMessage) error {
	reply := func(msg string) {
		select {
		case replies <- ServerMessage{Type: MessageError, Error: msg}:
		case <-ctx.Done():
		}
	}

	events := make(chan input.Event)
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		_ = s.dispatcher.Run(ctx, events, func(_ input.Event, err error) { reply(err.Error()) })
	}()
	defer func() {
		close(events)
		<-pumpDone
	}()

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if msgType != websocket.MessageText {
			reply("expected a text frame")
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reply("invalid message: " + err.Error())
			continue
		}

		switch msg.Type {
		case MessagePointer:
			if msg.Event == nil {
				reply("pointer message without event")
				continue
			}
			select {
			case events <- *msg.Event:
			case <-ctx.Done():
				return ctx.Err()
			}
		case MessageViewport:
			if msg.Viewport == nil || msg.Viewport.IsZero() {
				reply("viewport width and height must be > 0")
				continue
			}
			s.setViewport(*msg.Viewport)
		default:
			reply("unknown message type: " + msg.Type)
		}
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
