package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"sprintdash/internal/infrastructure"
	"sprintdash/internal/interaction"
	"sprintdash/pkg/contracts/events"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer. A select_developers event
	// carries every chosen name.
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// Error codes sent in error messages.
const (
	CodeInvalidMessage     = "INVALID_MESSAGE"
	CodeUnknownMessage     = "UNKNOWN_MESSAGE"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidInteraction = "INVALID_INTERACTION"
	CodeComputeFailed      = "COMPUTE_FAILED"
)

// inboundMessage is a message from the browser. Data is decoded according
// to Type.
type inboundMessage struct {
	Type events.MessageType `json:"type"`
	Data json.RawMessage    `json:"data,omitempty"`
}

// Client is one viewer. It owns its interaction session, so concurrent
// viewers never share filter state.
type Client struct {
	hub *Hub

	// The websocket connection
	conn Connection

	// Buffered channel of outbound messages; guarded by sendMu once closed.
	send   chan []byte
	sendMu sync.Mutex
	closed bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	// session is read and replaced only by the read pump.
	session interaction.Session

	logger *slog.Logger

	messagesSent     atomic.Int64
	messagesReceived atomic.Int64
}

// NewClient creates a client with a fresh session at the default state.
func NewClient(hub *Hub, conn Connection, traceID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	logger = logger.With(
		slog.String("component", "websocket.client"),
		slog.String("client_id", id),
	)
	if traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		session:     hub.interactions.NewSession(),
		logger:      logger,
	}
}

// ID returns the client identifier.
func (c *Client) ID() string { return c.id }

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// ReadPump sends the initial snapshot, then applies each interaction to the
// client's session and replies with the recomputed views.
func (c *Client) ReadPump() {
	ctx := c.context()
	defer func() {
		c.logger.InfoContext(ctx, "WebSocket client disconnected (readPump)",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived.Load()))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.pongWait))
	})

	c.sendSnapshot(ctx)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived.Add(1)
		c.handleMessage(ctx, message)
	}
}

// WritePump pumps messages from the hub to the websocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.hub.pingPeriod)
	ctx := c.context()
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(ctx, "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent.Load()))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent.Add(1)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.hub.metrics.RecordMessageError(ctx, "unknown", "decode")
		c.sendError(ctx, CodeInvalidMessage, "message is not valid JSON")
		return
	}
	c.hub.metrics.RecordMessage(ctx, "inbound", string(msg.Type), len(raw))

	switch msg.Type {
	case events.MessageTypeHeartbeat:
		c.logger.DebugContext(ctx, "Heartbeat received")
	case events.MessageTypeInteraction:
		c.handleInteraction(ctx, msg.Data)
	default:
		c.hub.metrics.RecordMessageError(ctx, string(msg.Type), "unknown_type")
		c.sendError(ctx, CodeUnknownMessage, fmt.Sprintf("unsupported message type %q", msg.Type))
	}
}

func (c *Client) handleInteraction(ctx context.Context, data json.RawMessage) {
	var ev interaction.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		c.hub.metrics.RecordMessageError(ctx, string(events.MessageTypeInteraction), "decode")
		c.sendError(ctx, CodeInvalidMessage, "interaction payload is malformed")
		return
	}
	if err := c.hub.validate.Struct(ev); err != nil {
		c.hub.metrics.RecordMessageError(ctx, string(events.MessageTypeInteraction), "validation")
		c.sendError(ctx, CodeValidationFailed, err.Error())
		return
	}

	next, update, err := c.hub.interactions.Dispatch(ctx, c.session, ev)
	if err != nil {
		code := CodeComputeFailed
		if errors.Is(err, interaction.ErrUnknownEvent) || errors.Is(err, interaction.ErrMissingRange) {
			code = CodeInvalidInteraction
		}
		c.hub.metrics.RecordMessageError(ctx, string(ev.Type), code)
		c.sendError(ctx, code, err.Error())
		return
	}

	c.session = next
	c.enqueue(ctx, events.NewMessage(events.MessageTypeUpdate, c.traceID, update))
}

func (c *Client) sendSnapshot(ctx context.Context) {
	update, err := c.hub.interactions.Initial(ctx, c.session)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to compute initial views", slog.String("error", err.Error()))
		c.sendError(ctx, CodeComputeFailed, err.Error())
		return
	}
	c.enqueue(ctx, events.NewMessage(events.MessageTypeSnapshot, c.traceID, update))
}

func (c *Client) sendError(ctx context.Context, code, message string) {
	c.logger.WarnContext(ctx, "Rejected client message",
		slog.String("code", code),
		slog.String("error", message))
	c.enqueue(ctx, events.NewMessage(events.MessageTypeError, c.traceID, events.ErrorData{Code: code, Message: message}))
}

func (c *Client) enqueue(ctx context.Context, msg events.WebSocketMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(msg.Type)))
		return false
	}
	return c.enqueueRaw(ctx, string(msg.Type), data)
}

// enqueueRaw never blocks: a full buffer drops the message.
func (c *Client) enqueueRaw(ctx context.Context, messageType string, data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		c.hub.metrics.RecordMessage(ctx, "outbound", messageType, len(data))
		return true
	default:
		c.hub.metrics.RecordDroppedMessage(ctx, messageType, "buffer_full")
		c.logger.WarnContext(ctx, "Client send buffer full, dropping message",
			slog.String("message_type", messageType))
		return false
	}
}

// closeSend closes the outbound channel once; WritePump then sends a close frame.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
