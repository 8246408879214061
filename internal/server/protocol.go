package server

import "github.com/abhisek/rehearse/internal/attention"

// Attention WebSocket message types.
const (
	// Client to server.
	TypeHello        = "hello"
	TypeModelsLoaded = "models_loaded"
	TypeModelsFailed = "models_failed"
	TypePermission   = "permission"
	TypeDetections   = "detections"

	// Server to client.
	TypeHelloAck   = "hello_ack"
	TypeState      = "state"
	TypeReady      = "ready"
	TypeWarning    = "warning"
	TypeTerminated = "terminated"
	TypeError      = "error"
)

// Error codes sent in error messages.
const (
	CodeInvalidMessage    = "invalid_message"
	CodeSessionRequired   = "session_required"
	CodeModelsUnavailable = "models_unavailable"
	CodePermissionDenied  = "permission_denied"
	CodeMonitorFailed     = "monitor_failed"
)

type baseMessage struct {
	Type string `json:"type"`
}

type helloMessage struct {
	SessionID string `json:"sessionId,omitempty"`
}

type modelsFailedMessage struct {
	Error string `json:"error"`
}

type permissionMessage struct {
	Granted bool   `json:"granted"`
	Error   string `json:"error,omitempty"`
}

type wireFace struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Score  float64 `json:"score"`
}

type detectionsMessage struct {
	Faces []wireFace `json:"faces"`
}

func (m detectionsMessage) detections() []attention.Detection {
	out := make([]attention.Detection, 0, len(m.Faces))
	for _, f := range m.Faces {
		out = append(out, attention.Detection{
			Box:   attention.Box{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			Score: f.Score,
		})
	}
	return out
}

type helloAckMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

type stateMessage struct {
	Type     string `json:"type"`
	State    string `json:"state"`
	Warnings int    `json:"warnings"`
}

type warningMessage struct {
	Type           string `json:"type"`
	Count          int    `json:"count"`
	Max            int    `json:"max"`
	DismissAfterMs int64  `json:"dismissAfterMs"`
}

type terminatedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
