package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/interview"
	"github.com/abhisek/rehearse/internal/metrics"
)

const maxMessageSize = 64 * 1024

// Attention upgrades to a WebSocket and runs an attention monitor fed by
// the client's detections.
func (s *Server) Attention(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}

	conn := &attentionConn{
		srv:    s,
		ws:     ws,
		send:   make(chan []byte, 32),
		done:   make(chan struct{}),
		remote: attention.NewRemote(nil),
		logger: s.logger,
	}
	metrics.WSConnections.Inc()

	go conn.writePump()
	go conn.readPump()
	return nil
}

// attentionConn is one client. readPump owns inbound messages, writePump
// owns every write to ws, and the monitor goroutine forwards signals.
type attentionConn struct {
	srv    *Server
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	remote *attention.Remote
	logger *zap.Logger

	sessionID string
	cancel    context.CancelFunc

	shutdownOnce sync.Once
}

func (c *attentionConn) readPump() {
	defer c.shutdown()

	cfg := c.srv.http
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("attention socket closed", zap.Error(err))
			}
			return
		}
		c.handle(data)
	}
}

func (c *attentionConn) writePump() {
	ticker := time.NewTicker(c.srv.http.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	wait := c.srv.http.WriteWait
	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wait))
			if msg == nil {
				_ = c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.logger.Debug("attention socket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(wait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// shutdown stops the monitor, which releases the remote camera.
func (c *attentionConn) shutdown() {
	c.shutdownOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		close(c.done)
		metrics.WSConnections.Dec()
	})
}

func (c *attentionConn) handle(data []byte) {
	var base baseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		c.sendError(CodeInvalidMessage, "invalid JSON message")
		return
	}

	if base.Type != TypeHello && c.sessionID == "" {
		c.sendError(CodeSessionRequired, "must send hello first")
		return
	}

	switch base.Type {
	case TypeHello:
		var msg helloMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(CodeInvalidMessage, "invalid hello message")
			return
		}
		c.hello(msg)

	case TypeModelsLoaded:
		c.remote.ReportModels(nil)

	case TypeModelsFailed:
		var msg modelsFailedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(CodeInvalidMessage, "invalid models_failed message")
			return
		}
		if msg.Error == "" {
			msg.Error = "models failed to load"
		}
		c.remote.ReportModels(errors.New(msg.Error))

	case TypePermission:
		var msg permissionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(CodeInvalidMessage, "invalid permission message")
			return
		}
		c.remote.ReportPermission(msg.Granted, msg.Error)

	case TypeDetections:
		var msg detectionsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError(CodeInvalidMessage, "invalid detections message")
			return
		}
		c.remote.ReportDetections(msg.detections())

	default:
		c.sendError(CodeInvalidMessage, "unknown message type: "+base.Type)
	}
}

// hello binds the connection to a session and starts its monitor. A
// repeated hello is acknowledged without starting another monitor.
func (c *attentionConn) hello(msg helloMessage) {
	if c.sessionID != "" {
		c.sendJSON(helloAckMessage{Type: TypeHelloAck, SessionID: c.sessionID})
		return
	}

	c.sessionID = msg.SessionID
	if c.sessionID == "" {
		c.sessionID = "att_" + uuid.NewString()[:8]
	}
	c.sendJSON(helloAckMessage{Type: TypeHelloAck, SessionID: c.sessionID})

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	mon := attention.NewMonitor(c.srv.attention, c.remote, c.remote,
		attention.WithLogger(c.logger.With(zap.String("session_id", c.sessionID))))
	go c.runMonitor(ctx, mon)
}

func (c *attentionConn) runMonitor(ctx context.Context, mon *attention.Monitor) {
	errc := make(chan error, 1)
	go func() { errc <- mon.Run(ctx) }()

	display := mon.Config().WarningDisplay
	for sig := range mon.Signals() {
		switch sig.Kind {
		case attention.SignalState:
			c.sendJSON(stateMessage{Type: TypeState, State: sig.State.String(), Warnings: sig.Warnings})
		case attention.SignalReady:
			c.sendJSON(baseMessage{Type: TypeReady})
		case attention.SignalWarning:
			c.sendJSON(warningMessage{Type: TypeWarning, Count: sig.Warnings, Max: sig.Max, DismissAfterMs: display.Milliseconds()})
		case attention.SignalTerminated:
			c.sendJSON(terminatedMessage{Type: TypeTerminated, Message: attention.TerminatedMessage})
		case attention.SignalFailed:
			c.sendError(failureCode(sig.Err), sig.Err.Error())
		}
	}

	err := <-errc
	if errors.Is(err, attention.ErrTerminated) {
		c.abandonDraft()
	}
	if err != nil {
		c.closeAfterFlush()
	}
}

// abandonDraft discards the interview draft the session id names, if any.
func (c *attentionConn) abandonDraft() {
	if c.srv.interviews == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.srv.interviews.Abandon(ctx, c.sessionID, "attention")
	if err != nil && !errors.Is(err, interview.ErrDraftNotFound) {
		c.logger.Warn("abandon draft after termination failed", zap.String("session_id", c.sessionID), zap.Error(err))
	}
}

func failureCode(err error) string {
	switch {
	case errors.Is(err, attention.ErrModelsUnavailable):
		return CodeModelsUnavailable
	case errors.Is(err, attention.ErrPermissionDenied):
		return CodePermissionDenied
	}
	return CodeMonitorFailed
}

func (c *attentionConn) sendJSON(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("encode attention message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	case <-c.done:
	}
}

func (c *attentionConn) sendError(code, msg string) {
	c.sendJSON(errorMessage{Type: TypeError, Code: code, Message: msg})
}

// closeAfterFlush asks writePump to send a close frame once the queued
// messages are written.
func (c *attentionConn) closeAfterFlush() {
	select {
	case c.send <- nil:
	case <-c.done:
	}
}
