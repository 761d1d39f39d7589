package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nvandessel/poleposition/internal/tools"
)

// WebSocket frame types.
const (
	FrameSession  = "session"
	FrameThinking = "thinking"
	FrameResponse = "response"
	FrameError    = "error"
)

// ToolRequest is one client request on /ws/tools.
type ToolRequest struct {
	ID   string     `json:"id"`
	Tool string     `json:"tool"`
	Args tools.Args `json:"args,omitempty"`
}

// Frame is a server message on /ws/tools. Which fields are set depends on
// Type.
type Frame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	ID        string `json:"id,omitempty"`
	Tool      string `json:"tool,omitempty"`
	Result    any    `json:"result,omitempty"`

	// Error frames carry the structured error.
	*tools.ErrorResult
}

const wsWriteTimeout = 10 * time.Second

// handleToolsWebSocket runs a tool session. The server announces a session
// id, then answers each request with a thinking frame followed by a response
// or error frame carrying the request id. Requests are handled in order.
func (s *Server) handleToolsWebSocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: s.originAllowed,
	}
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	sessionID := uuid.New().String()
	logger := s.logger.With("session_id", sessionID)
	s.metrics.ActiveSessions.Inc()
	defer s.metrics.ActiveSessions.Dec()
	logger.Info("websocket session started")

	send := func(f Frame) error {
		_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := ws.WriteJSON(f); err != nil {
			logger.Warn("failed to write websocket frame", "type", f.Type, "error", err)
			return err
		}
		return nil
	}

	if err := send(Frame{Type: FrameSession, SessionID: sessionID}); err != nil {
		return
	}

	for {
		var req ToolRequest
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", "error", err)
			} else {
				logger.Info("websocket session closed")
			}
			return
		}

		if err := send(Frame{Type: FrameThinking, ID: req.ID, Tool: req.Tool}); err != nil {
			return
		}

		start := time.Now()
		result, err := s.callTool(req.Tool, req.Args)
		s.opts.AuditLog.LogCall(req.Tool, "ws", start, err, req.Args)
		if err != nil {
			logger.Debug("websocket tool failed", "tool", req.Tool, "error", err)
			er := tools.NewErrorResult(err)
			if send(Frame{Type: FrameError, ID: req.ID, Tool: req.Tool, ErrorResult: &er}) != nil {
				return
			}
			continue
		}

		if send(Frame{Type: FrameResponse, ID: req.ID, Tool: req.Tool, Result: result}) != nil {
			return
		}
	}
}

