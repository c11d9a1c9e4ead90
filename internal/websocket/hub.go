package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"sprintdash/internal/config"
	"sprintdash/internal/infrastructure"
	mw "sprintdash/internal/middleware"
	"sprintdash/pkg/contracts/events"
)

// Defaults used when the configuration leaves keepalive timings unset.
const (
	defaultPongWait = 60 * time.Second
)

// Hub maintains the set of active clients. Each client computes its own
// views; the hub only tracks membership and fans out server notices.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	interactions Interactions
	validate     *validator.Validate
	metrics      *OTelMetrics
	logger       *slog.Logger

	pingPeriod time.Duration
	pongWait   time.Duration

	totalConnections int64

	quit    chan struct{}
	running bool
}

// NewHub creates a hub whose clients run sessions on interactions.
// metrics may be nil.
func NewHub(interactions Interactions, cfg config.WebSocketConfig, metrics *OTelMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = (pongWait * 9) / 10
	}

	return &Hub{
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		interactions: interactions,
		validate:     mw.NewValidator(),
		metrics:      metrics,
		logger:       logger.With(slog.String("component", "websocket.hub")),
		pingPeriod:   pingPeriod,
		pongWait:     pongWait,
		quit:         make(chan struct{}),
	}
}

// Start runs the hub loop in a goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			ctx := client.context()
			h.metrics.RecordConnection(ctx, count)
			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
			}
			count := len(h.clients)
			h.mu.Unlock()
			if !ok {
				continue
			}

			client.closeSend()
			ctx := client.context()
			h.metrics.RecordDisconnection(ctx, time.Since(client.connectedAt), "normal", count)
			h.logger.InfoContext(ctx, "Client unregistered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.Duration("connection_duration", time.Since(client.connectedAt)))
		}
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister removes a client and closes its outbound channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// Broadcast queues msg on every connected client and returns once each
// client has accepted or dropped it.
func (h *Hub) Broadcast(msg events.WebSocketMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	messageType := string(msg.Type)

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	delivered, failed := 0, 0
	for _, client := range clients {
		if client.enqueueRaw(client.context(), messageType, data) {
			delivered++
		} else {
			failed++
		}
	}

	h.metrics.RecordBroadcast(context.Background(), messageType, delivered, failed)
	if failed > 0 {
		h.logger.Warn("Some clients failed to receive broadcast",
			slog.Int("success_count", delivered),
			slog.Int("fail_count", failed))
	}
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConnections returns how many clients have ever registered.
func (h *Hub) TotalConnections() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConnections
}

// Stop gracefully stops the hub and closes every client's outbound channel.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	close(h.quit)

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.closeSend()
	}
}
