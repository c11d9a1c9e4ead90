package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintdash/internal/services"
	"sprintdash/internal/shared/testutil"
	"sprintdash/pkg/contracts"
)

func TestHealthHandler_Endpoints(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	dir := t.TempDir()
	health := services.NewHealthService(openDataset(t, dir, ""), nil, logger)
	handler := NewHealthHandler(health, logger)

	tests := []struct {
		name           string
		handlerFunc    http.HandlerFunc
		expectedStatus int
		checkResponse  func(t *testing.T, body map[string]interface{})
	}{
		{
			name:           "health check endpoint",
			handlerFunc:    handler.HealthCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
				assert.Equal(t, contracts.Version, body["version"])
			},
		},
		{
			name:           "readiness degrades without data",
			handlerFunc:    handler.ReadinessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, services.StatusDegraded, body["status"])
				svcs, ok := body["services"].(map[string]interface{})
				require.True(t, ok)
				assert.Contains(t, svcs, "data")
				assert.Contains(t, svcs, "websocket")
			},
		},
		{
			name:           "liveness check endpoint",
			handlerFunc:    handler.LivenessCheck,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "alive", body["status"])
				assert.Contains(t, body, "runtime")
			},
		},
		{
			name:           "version endpoint",
			handlerFunc:    handler.Version,
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, contracts.Version, body["version"])
				assert.Equal(t, contracts.APIVersion, body["api_version"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handlerFunc(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			tt.checkResponse(t, body)
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewHealthHandler(services.NewHealthService(nil, nil, logger), logger)

	rec := httptest.NewRecorder()
	handler.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsHandler_SystemStats(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	dir := t.TempDir()
	path := testutil.WriteWorkbook(t, dir, "points.xlsx", [][]any{{"Developer", "S1"}, {"A", 5}})
	health := services.NewHealthService(openDataset(t, dir, path), nil, logger)

	rec := httptest.NewRecorder()
	NewMetricsHandler(health).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":1`)
	assert.Contains(t, rec.Body.String(), `"heap_alloc"`)
}

func TestServeDashboard(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	rec := httptest.NewRecorder()
	ServeDashboard(logger)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "<title>Sprint Dashboard</title>"))
	assert.Contains(t, body, "/api/dashboard/options")
}
