package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "sprintdash/internal/errors"
	"sprintdash/internal/shared/testutil"
)

func TestClientLogHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  slog.Level
		wantMsg    string
		wantSource bool
	}{
		{
			name:       "error from page",
			body:       `{"level":"error","message":"chart image failed","source":"dashboard"}`,
			wantStatus: http.StatusAccepted,
			wantLevel:  slog.LevelError,
			wantMsg:    "chart image failed",
			wantSource: true,
		},
		{
			name:       "missing level defaults to info",
			body:       `{"message":"websocket reconnected","data":{"attempt":2}}`,
			wantStatus: http.StatusAccepted,
			wantLevel:  slog.LevelInfo,
			wantMsg:    "websocket reconnected",
		},
		{name: "unknown level", body: `{"level":"fatal","message":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "missing message", body: `{"level":"info"}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewClientLogHandler(logger, apierrors.NewErrorHandler(logger, false))

			req := httptest.NewRequest(http.MethodPost, "/api/client-log", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Handle(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantMsg != "" {
				testutil.AssertLogContains(t, logs, tt.wantLevel, tt.wantMsg)
				assert.Equal(t, tt.wantSource, logs.ContainsAttr("client_source", "dashboard"))
			}
		})
	}
}
