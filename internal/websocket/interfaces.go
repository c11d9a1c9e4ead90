package websocket

import (
	"context"
	"time"

	"sprintdash/internal/interaction"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	// WriteMessage writes a message with the given message type and payload
	WriteMessage(messageType int, data []byte) error

	// ReadMessage reads a message from the connection
	// Returns the message type and payload
	ReadMessage() (messageType int, p []byte, err error)

	// Close closes the connection
	Close() error

	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)

	// RemoteAddr returns the remote network address
	RemoteAddr() string
}

// Interactions runs viewer sessions. *interaction.Dispatcher implements it.
type Interactions interface {
	NewSession() interaction.Session
	Initial(ctx context.Context, s interaction.Session) (interaction.Update, error)
	Dispatch(ctx context.Context, s interaction.Session, ev interaction.Event) (interaction.Session, interaction.Update, error)
}
