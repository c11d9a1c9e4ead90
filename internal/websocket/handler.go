package websocket

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"sprintdash/internal/config"
	"sprintdash/internal/infrastructure"
	"sprintdash/pkg/contracts/events"
)

// Handler upgrades /ws requests and starts a client per connection.
type Handler struct {
	hub            *Hub
	upgrader       websocket.Upgrader
	allowedOrigins map[string]bool
	devMode        bool
	logger         *slog.Logger
}

// NewHandler creates the upgrade handler. In dev mode any origin is accepted.
func NewHandler(hub *Hub, cfg config.WebSocketConfig, allowedOrigins []string, devMode bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	h := &Handler{
		hub:            hub,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
		devMode:        devMode,
		logger:         logger.With(slog.String("component", "websocket.handler")),
	}
	for _, o := range allowedOrigins {
		h.allowedOrigins[o] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// checkOrigin allows same-origin requests without an Origin header, any
// origin in dev mode, and otherwise only the configured origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.devMode {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	if h.allowedOrigins[origin] {
		return true
	}
	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin))
	return false
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := infrastructure.EnsureTraceID(r.Context())
	traceID := infrastructure.GetTraceID(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied.
		h.logger.ErrorContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, NewConnectionWrapper(conn), traceID, h.logger)
	client.enqueue(ctx, events.NewMessage(events.MessageTypeConnect, traceID, map[string]string{
		"status":    "connected",
		"client_id": client.id,
	}))
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	h.logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("remote_addr", client.remoteAddr),
		slog.String("client_id", client.id))

	go client.WritePump()
	go client.ReadPump()
}
