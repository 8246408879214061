package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rehearse/internal/attention"
	"github.com/abhisek/rehearse/internal/llm"
)

func dialAttention(t *testing.T, env *testEnv) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(env.srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/attention"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}

// readUntil reads messages until one of type want arrives and returns it
// with everything read before it.
func readUntil(t *testing.T, conn *websocket.Conn, want string) (map[string]any, []map[string]any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var seen []map[string]any
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %q, saw %v", want, seen)
		var msg map[string]any
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg["type"] == want {
			return msg, seen
		}
		seen = append(seen, msg)
	}
}

func TestAttention_RequiresHello(t *testing.T) {
	conn := dialAttention(t, newTestEnv(t))

	send(t, conn, map[string]any{"type": TypeModelsLoaded})
	msg, _ := readUntil(t, conn, TypeError)
	assert.Equal(t, CodeSessionRequired, msg["code"])

	send(t, conn, map[string]any{"type": "bogus"})
	send(t, conn, map[string]any{"type": TypeHello, "sessionId": "s-1"})
	ack, _ := readUntil(t, conn, TypeHelloAck)
	assert.Equal(t, "s-1", ack["sessionId"])
}

func TestAttention_EscalatesToTermination(t *testing.T) {
	env := newTestEnv(t, llm.MockResponse{Text: questionReply})
	draftID := env.startInterview(t)
	conn := dialAttention(t, env)

	send(t, conn, map[string]any{"type": TypeHello, "sessionId": draftID})
	readUntil(t, conn, TypeHelloAck)

	send(t, conn, map[string]any{"type": TypeModelsLoaded})
	send(t, conn, map[string]any{"type": TypePermission, "granted": true})
	send(t, conn, map[string]any{
		"type":  TypeDetections,
		"faces": []map[string]any{{"x": 10, "y": 10, "width": 80, "height": 80, "score": 0.92}},
	})
	readUntil(t, conn, TypeReady)

	// No further detections: every tick reads as absence.
	warning, _ := readUntil(t, conn, TypeWarning)
	assert.Equal(t, float64(1), warning["count"])
	assert.Equal(t, float64(2), warning["max"])
	assert.Equal(t, float64(50), warning["dismissAfterMs"])

	term, _ := readUntil(t, conn, TypeTerminated)
	assert.Equal(t, attention.TerminatedMessage, term["message"])

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	code, _ := env.do(t, http.MethodGet, "/api/interviews/"+draftID, "")
	assert.Equal(t, http.StatusNotFound, code, "terminated interview draft is discarded")
}

func TestAttention_PermissionDenied(t *testing.T) {
	conn := dialAttention(t, newTestEnv(t))

	send(t, conn, map[string]any{"type": TypeHello})
	ack, _ := readUntil(t, conn, TypeHelloAck)
	assert.NotEmpty(t, ack["sessionId"])

	send(t, conn, map[string]any{"type": TypeModelsLoaded})
	send(t, conn, map[string]any{"type": TypePermission, "granted": false, "error": "NotAllowedError"})

	msg, seen := readUntil(t, conn, TypeError)
	assert.Equal(t, CodePermissionDenied, msg["code"])
	assert.Contains(t, msg["message"], "NotAllowedError")
	for _, m := range seen {
		assert.NotEqual(t, TypeReady, m["type"])
	}

	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestAttention_ModelsFailed(t *testing.T) {
	conn := dialAttention(t, newTestEnv(t))

	send(t, conn, map[string]any{"type": TypeHello})
	readUntil(t, conn, TypeHelloAck)
	send(t, conn, map[string]any{"type": TypeModelsFailed, "error": "tiny_face_detector 404"})

	msg, _ := readUntil(t, conn, TypeError)
	assert.Equal(t, CodeModelsUnavailable, msg["code"])
}

func TestAttention_MalformedModelsFailed(t *testing.T) {
	conn := dialAttention(t, newTestEnv(t))

	send(t, conn, map[string]any{"type": TypeHello})
	readUntil(t, conn, TypeHelloAck)
	send(t, conn, map[string]any{"type": TypeModelsFailed, "error": 42})

	msg, _ := readUntil(t, conn, TypeError)
	assert.Equal(t, CodeInvalidMessage, msg["code"])
	assert.Equal(t, "invalid models_failed message", msg["message"])

	send(t, conn, map[string]any{"type": TypeModelsFailed, "error": "tiny_face_detector 404"})
	msg, _ = readUntil(t, conn, TypeError)
	assert.Equal(t, CodeModelsUnavailable, msg["code"])
}
