package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintdash/internal/config"
	"sprintdash/internal/services"
	"sprintdash/internal/shared/testutil"
	"sprintdash/pkg/contracts/events"
)

var referenceSheet = [][]any{
	{"Developer", "S1", "S2"},
	{"A", 5, 0},
	{"B", 3, 10},
}

func testConfig(t *testing.T, withData bool) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Data.FileName = "absent.xlsx"
	cfg.Data.EnvVar = "SPRINTDASH_TEST_UNSET_PATH"
	if withData {
		cfg.Data.LocalPath = testutil.WriteWorkbook(t, t.TempDir(), "points.xlsx", referenceSheet)
	}
	return cfg
}

func newTestApp(t *testing.T, withData bool) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	app, err := newApplication(context.Background(), testConfig(t, withData), logger)
	require.NoError(t, err)
	t.Cleanup(app.WebSocketHub.Stop)
	return app
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication_Wiring(t *testing.T) {
	app := newTestApp(t, true)

	require.NotNil(t, app.Router)
	require.NotNil(t, app.Server)
	assert.Equal(t, "127.0.0.1:0", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)
	assert.True(t, app.Dataset.Status().Loaded)
	assert.Equal(t, 4, app.Dataset.Status().Records)
	assert.Equal(t, []string{"A", "B"}, app.Dataset.Developers())
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Port = -1

	_, err := NewApplication(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestApplication_Routes(t *testing.T) {
	app := newTestApp(t, true)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "page", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: "Sprint Dashboard"},
		{name: "health", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK, wantBody: `"status":"ok"`},
		{name: "ready", method: http.MethodGet, path: "/api/health/ready", wantStatus: http.StatusOK, wantBody: `"status":"ready"`},
		{name: "live", method: http.MethodGet, path: "/api/health/live", wantStatus: http.StatusOK, wantBody: `"status":"alive"`},
		{name: "version", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK, wantBody: `"version"`},
		{name: "system stats", method: http.MethodGet, path: "/api/metrics", wantStatus: http.StatusOK, wantBody: `"records":4`},
		{name: "options", method: http.MethodGet, path: "/api/dashboard/options", wantStatus: http.StatusOK, wantBody: `"value":"A"`},
		{name: "stats", method: http.MethodGet, path: "/api/dashboard/stats?developer=B", wantStatus: http.StatusOK, wantBody: `"total_points":13`},
		{name: "export", method: http.MethodGet, path: "/api/dashboard/export/csv", wantStatus: http.StatusOK, wantBody: "B,S1,3"},
		{name: "prometheus", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK, wantBody: "dashboard_dataset_records"},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/api/health", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplication_SecurityHeaders(t *testing.T) {
	app := newTestApp(t, true)

	rec := get(t, app.Router, "/api/health")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestApplication_CORS(t *testing.T) {
	app := newTestApp(t, true)

	cfg := app.getCORSConfig()
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:8050")
	assert.Contains(t, cfg.AllowedOrigins, "http://127.0.0.1:0")
	assert.Contains(t, cfg.ExposedHeaders, "Content-Disposition")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:8050")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:8050", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_MissingDataIsDegraded(t *testing.T) {
	app := newTestApp(t, false)

	assert.False(t, app.Dataset.Status().Loaded)

	rec := get(t, app.Router, "/api/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)

	rec = get(t, app.Router, "/api/dashboard/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_points":0`)

	rec = get(t, app.Router, "/api/dashboard/export/csv")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplication_WebSocket(t *testing.T) {
	app := newTestApp(t, true)
	app.WebSocketHub.Start()

	server := httptest.NewServer(app.Router)
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() events.WebSocketMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg events.WebSocketMessage
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	assert.Equal(t, events.MessageTypeConnect, read().Type)
	assert.Equal(t, events.MessageTypeSnapshot, read().Type)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type": "interaction",
		"data": map[string]any{"type": "select_developers", "developers": []string{"A"}},
	}))
	update := read()
	assert.Equal(t, events.MessageTypeUpdate, update.Type)

	raw, err := json.Marshal(update.Data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"total_points":5`)
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApp(t, true)

	ctx := context.Background()
	require.NoError(t, app.Start(ctx))
	require.NotEmpty(t, app.URL())

	resp, err := http.Get(app.URL() + "/api/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	require.NoError(t, app.Stop(ctx))

	_, err = http.Get(app.URL() + "/api/health")
	assert.Error(t, err)
}

func TestApplication_StopNotifiesViewers(t *testing.T) {
	app := newTestApp(t, true)
	require.NoError(t, app.Start(context.Background()))

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(app.URL(), "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var seen []events.MessageType
	var notice events.WebSocketMessage
	for len(seen) < 2 {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg events.WebSocketMessage
		require.NoError(t, conn.ReadJSON(&msg))
		seen = append(seen, msg.Type)
	}
	require.Eventually(t, func() bool { return app.WebSocketHub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, app.Stop(context.Background()))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&notice))
	assert.Equal(t, events.MessageTypeError, notice.Type)
	raw, err := json.Marshal(notice.Data)
	require.NoError(t, err)
	assert.Contains(t, string(raw), CodeServerShutdown)
}

func TestApplication_StartupHealthCheck(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	app, err := newApplication(context.Background(), testConfig(t, false), logger)
	require.NoError(t, err)
	t.Cleanup(app.WebSocketHub.Stop)

	app.performStartupHealthCheck(context.Background())
	assert.True(t, handler.ContainsMessage("Startup health check warnings"))
	assert.True(t, handler.ContainsAttr("status", services.StatusDegraded))
}

func TestGetBrowserOpenMethods(t *testing.T) {
	tests := []struct {
		goos      string
		wantFirst string
	}{
		{goos: "windows", wantFirst: "rundll32"},
		{goos: "darwin", wantFirst: "open"},
		{goos: "linux", wantFirst: "xdg-open"},
		{goos: "freebsd", wantFirst: "xdg-open"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			methods := getBrowserOpenMethods(tt.goos, "http://127.0.0.1:8050")
			require.NotEmpty(t, methods)
			assert.Equal(t, tt.wantFirst, methods[0].cmd)
			assert.Contains(t, methods[0].args, "http://127.0.0.1:8050")
		})
	}
}
