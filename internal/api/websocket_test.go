package api

import (
	"net/http"
	"os"
	"path/filepath"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/poleposition/internal/mcp"
	"github.com/nvandessel/poleposition/internal/query"
	"github.com/nvandessel/poleposition/internal/store/storetest"
	"github.com/nvandessel/poleposition/internal/tools"
)

// wireFrame is Frame as a client decodes it.
type wireFrame struct {
	Type      string              `json:"type"`
	SessionID string              `json:"session_id"`
	ID        string              `json:"id"`
	Tool      string              `json:"tool"`
	Result    map[string]any      `json:"result"`
	Error     string              `json:"error"`
	Kind      string              `json:"kind"`
	Available []string            `json:"available"`
	NotFound  []tools.ErrorResult `json:"not_found"`
}

func dialTools(t *testing.T, s *Server, origin string) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/tools", header)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	var f wireFrame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestToolsWebSocket_Session(t *testing.T) {
	conn := dialTools(t, newTestServer(t), testOrigin)

	f := readFrame(t, conn)
	assert.Equal(t, FrameSession, f.Type)
	_, err := uuid.Parse(f.SessionID)
	assert.NoError(t, err, "session id should be a uuid")
}

func TestToolsWebSocket_Request(t *testing.T) {
	conn := dialTools(t, newTestServer(t), "")
	readFrame(t, conn) // session

	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "1", Tool: tools.DriverProfile, Args: tools.Args{"driver": "Norris"}}))

	thinking := readFrame(t, conn)
	assert.Equal(t, FrameThinking, thinking.Type)
	assert.Equal(t, "1", thinking.ID)

	resp := readFrame(t, conn)
	require.Equal(t, FrameResponse, resp.Type, resp.Error)
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, tools.DriverProfile, resp.Tool)
	assert.Equal(t, "NOR", resp.Result["driver"])
	assert.Equal(t, 349.5, resp.Result["avg_points"])
}

func TestToolsWebSocket_Errors(t *testing.T) {
	conn := dialTools(t, newTestServer(t), testOrigin)
	readFrame(t, conn)

	tests := []struct {
		req  ToolRequest
		kind string
		text string
	}{
		{ToolRequest{ID: "a", Tool: tools.DriverProfile, Args: tools.Args{"driver": "Senna"}}, "driver", `driver "Senna" not found`},
		{ToolRequest{ID: "b", Tool: tools.RaceProbabilities, Args: tools.Args{"race": "Monaco"}}, "race", `race "Monaco" not found`},
		{ToolRequest{ID: "c", Tool: "weather"}, "", "unknown tool"},
		{ToolRequest{ID: "d", Tool: tools.CompareDrivers, Args: tools.Args{"driver1": "VER"}}, "", "missing required argument"},
	}
	// Errors do not end the session; requests are answered in order.
	for _, tt := range tests {
		require.NoError(t, conn.WriteJSON(tt.req))
		assert.Equal(t, FrameThinking, readFrame(t, conn).Type)

		f := readFrame(t, conn)
		assert.Equal(t, FrameError, f.Type)
		assert.Equal(t, tt.req.ID, f.ID)
		assert.Equal(t, tt.kind, f.Kind)
		assert.Contains(t, f.Error, tt.text)
	}

	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "e", Tool: tools.ListRaces}))
	readFrame(t, conn)
	f := readFrame(t, conn)
	assert.Equal(t, FrameResponse, f.Type)
	assert.Len(t, f.Result["races"], 6)
}

func TestToolsWebSocket_RejectsOrigin(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	header := http.Header{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/tools", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestToolsWebSocket_Audited(t *testing.T) {
	dir := t.TempDir()
	audit := mcp.NewAuditLogger(dir)
	require.NotNil(t, audit)

	s, err := NewServer(query.New(storetest.Bundle(t)), Options{AuditLog: audit})
	require.NoError(t, err)

	conn := dialTools(t, s, "")
	readFrame(t, conn)
	require.NoError(t, conn.WriteJSON(ToolRequest{ID: "1", Tool: tools.RacePrediction, Args: tools.Args{"driver": "VER", "race": "Monaco Grand Prix"}}))
	readFrame(t, conn)
	assert.Equal(t, FrameResponse, readFrame(t, conn).Type)
	require.NoError(t, audit.Close())

	data, err := readAll(dir)
	require.NoError(t, err)
	assert.Contains(t, data, `"tool":"race_prediction"`)
	assert.Contains(t, data, `"transport":"ws"`)
	assert.Contains(t, data, `"race":"Monaco Grand Prix"`)
}

func readAll(dir string) (string, error) {
	b, err := os.ReadFile(filepath.Join(dir, mcp.AuditFileName))
	return string(b), err
}
