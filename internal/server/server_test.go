package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vladimiradmaev/nutriscan/internal/app"
	"github.com/vladimiradmaev/nutriscan/internal/config"
	"github.com/vladimiradmaev/nutriscan/internal/controller"
	"github.com/vladimiradmaev/nutriscan/internal/metrics"
	"github.com/vladimiradmaev/nutriscan/internal/services"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

type stubGenerator struct{}

func (stubGenerator) Name() string { return "stub" }

func (stubGenerator) Generate(context.Context, services.Request) (string, error) {
	return `{"productName": "Banana", "calories": 105, "protein": 1.3, "carbs": 27, "fat": 0.4,
		"healthScore": 8, "summary": "Fruit.", "pros": ["Potassium"], "cons": [],
		"effectOnBody": "Steady energy.", "consumptionAdvice": "Daily."}`, nil
}

// recordingGenerator answers like stubGenerator and keeps every prompt.
type recordingGenerator struct {
	stubGenerator
	mu      sync.Mutex
	prompts []string
}

func (g *recordingGenerator) Generate(ctx context.Context, req services.Request) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, req.Prompt)
	g.mu.Unlock()
	return g.stubGenerator.Generate(ctx, req)
}

func (g *recordingGenerator) all() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWith(t, stubGenerator{})
}

func newTestServerWith(t *testing.T, gen services.Generator) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := &config.Config{AI: config.AIConfig{Timeout: time.Second}, ProgressInterval: time.Second}
	a := app.New(cfg, storage.NewMemoryStore(), gen, metrics.New(reg))
	t.Cleanup(func() { a.Close() })

	ts := httptest.NewServer(New(a, reg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, clientID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?client=" + clientID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// waitState reads until a state message in the wanted state arrives.
func waitState(t *testing.T, conn *websocket.Conn, want string) StateView {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type != MsgState {
			continue
		}
		var v StateView
		require.NoError(t, json.Unmarshal(msg.Data, &v))
		if v.State == want && !v.Busy {
			return v
		}
	}
}

func waitError(t *testing.T, conn *websocket.Conn) ErrorView {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == MsgError {
			var v ErrorView
			require.NoError(t, json.Unmarshal(msg.Data, &v))
			return v
		}
	}
}

func jpegBase64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestInitialStateIsPushed(t *testing.T) {
	conn := dial(t, newTestServer(t), "alice")
	v := waitState(t, conn, "idle")
	assert.Equal(t, "General Health", string(v.Goal))
	assert.Empty(t, v.History)
}

func TestSearchOverWebSocket(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "alice")
	waitState(t, conn, "idle")

	send(t, conn, MsgSearch, map[string]string{"query": "banana"})
	v := waitState(t, conn, "showing_result")
	require.NotNil(t, v.Result)
	assert.Equal(t, "Banana", v.Result.ProductName)
	require.Len(t, v.History, 1)
	assert.Empty(t, v.History[0].ImageThumbnail)

	again := dial(t, ts, "alice")
	assert.Len(t, waitState(t, again, "idle").History, 1, "history is kept per client id")
}

func TestCaptureWithFrame(t *testing.T) {
	conn := dial(t, newTestServer(t), "bob")
	waitState(t, conn, "idle")

	send(t, conn, MsgStartScan, nil)
	v := waitState(t, conn, "scanning")
	assert.Equal(t, "environment", v.Facing)

	send(t, conn, MsgCapture, map[string]string{"image": "data:image/jpeg;base64," + jpegBase64(t)})
	v = waitState(t, conn, "showing_result")
	assert.NotEmpty(t, v.EntryID)
}

func TestPipelinedCommandsRunInOrder(t *testing.T) {
	gen := &recordingGenerator{}
	conn := dial(t, newTestServerWith(t, gen), "frank")
	waitState(t, conn, "idle")

	send(t, conn, MsgSetGoal, map[string]string{"goal": "Weight Loss"})
	send(t, conn, MsgSearch, map[string]string{"query": "banana"})

	v := waitState(t, conn, "showing_result")
	assert.Equal(t, "Weight Loss", string(v.Goal))
	prompts := gen.all()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `goal "Weight Loss"`)
}

func TestPipelinedScanAndCapture(t *testing.T) {
	conn := dial(t, newTestServer(t), "grace")
	waitState(t, conn, "idle")

	send(t, conn, MsgStartScan, nil)
	send(t, conn, MsgFrame, map[string]string{"image": jpegBase64(t)})
	send(t, conn, MsgCapture, nil)

	v := waitState(t, conn, "showing_result")
	assert.Equal(t, "Banana", v.Result.ProductName)
}

func TestCameraDenied(t *testing.T) {
	conn := dial(t, newTestServer(t), "carol")
	waitState(t, conn, "idle")

	send(t, conn, MsgCameraDenied, nil)
	v := waitState(t, conn, "error")
	require.NotNil(t, v.Error)
	assert.Equal(t, "Camera access denied.", v.Error.Message)
	assert.Equal(t, "CAMERA_DENIED", v.Error.Code)
}

func TestEmptyDailyReport(t *testing.T) {
	conn := dial(t, newTestServer(t), "dave")
	waitState(t, conn, "idle")

	send(t, conn, MsgDailyReport, nil)
	v := waitState(t, conn, "error")
	assert.Equal(t, controller.MsgNoRecentScans, v.Error.Message)
}

func TestRejectedRequests(t *testing.T) {
	conn := dial(t, newTestServer(t), "erin")
	waitState(t, conn, "idle")

	send(t, conn, "dance", nil)
	assert.Equal(t, "Unknown message type", waitError(t, conn).Message)

	send(t, conn, MsgCapture, nil)
	assert.Equal(t, "INVALID_TRANSITION", waitError(t, conn).Code)

	send(t, conn, MsgSetGoal, map[string]string{"goal": "Bulk Forever"})
	assert.Equal(t, "VALIDATION", waitError(t, conn).Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, "Invalid message format", waitError(t, conn).Message)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	conn := dial(t, ts, "frank")
	waitState(t, conn, "idle")

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 1, health["clients"])

	mresp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer mresp.Body.Close()
	body, err := io.ReadAll(mresp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "nutriscan_active_sessions 1")
}
