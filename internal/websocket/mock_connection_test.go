package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sprintdash/pkg/contracts/events"
)

// MockConnection is a Connection for tests. Reads block until a message is
// pushed or the read side is closed.
type MockConnection struct {
	mu sync.Mutex

	incoming chan MockMessage
	written  []MockMessage
	writes   chan struct{}

	Closed        bool
	ReadLimit     int64
	ReadDeadline  time.Time
	WriteDeadline time.Time
	PongHandler   func(string) error
	RemoteAddress string
}

// MockMessage represents a message for mocking
type MockMessage struct {
	Type int
	Data []byte
}

// NewMockConnection creates a new mock connection
func NewMockConnection() *MockConnection {
	return &MockConnection{
		incoming:      make(chan MockMessage, 16),
		writes:        make(chan struct{}, 64),
		RemoteAddress: "127.0.0.1:8080",
	}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Closed {
		return errors.New("connection closed")
	}
	m.written = append(m.written, MockMessage{Type: messageType, Data: data})
	select {
	case m.writes <- struct{}{}:
	default:
	}
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	msg, ok := <-m.incoming
	if !ok {
		return 0, nil, errors.New("connection closed")
	}
	return msg.Type, msg.Data, nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

func (m *MockConnection) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadDeadline = t
	return nil
}

func (m *MockConnection) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteDeadline = t
	return nil
}

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PongHandler = h
}

func (m *MockConnection) RemoteAddr() string { return m.RemoteAddress }

// Push queues a text message for ReadMessage.
func (m *MockConnection) Push(data string) {
	m.incoming <- MockMessage{Type: 1, Data: []byte(data)}
}

// CloseRead makes ReadMessage fail, ending the read pump.
func (m *MockConnection) CloseRead() { close(m.incoming) }

// WrittenMessages returns a copy of every message written so far.
func (m *MockConnection) WrittenMessages() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockMessage, len(m.written))
	copy(out, m.written)
	return out
}

// waitForMessages blocks until at least n text messages were written and
// returns them decoded.
func (m *MockConnection) waitForMessages(t *testing.T, n int) []decoded {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		var out []decoded
		for _, msg := range m.WrittenMessages() {
			if msg.Type != 1 {
				continue
			}
			var d decoded
			require.NoError(t, json.Unmarshal(msg.Data, &d))
			out = append(out, d)
		}
		if len(out) >= n {
			return out
		}
		select {
		case <-m.writes:
		case <-deadline:
			t.Fatalf("timed out waiting for %d messages, got %d", n, len(out))
		}
	}
}

// decoded is a server message with its payload left raw.
type decoded struct {
	Type    events.MessageType `json:"type"`
	TraceID string             `json:"trace_id"`
	Data    json.RawMessage    `json:"data"`
}
