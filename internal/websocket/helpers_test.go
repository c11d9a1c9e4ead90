package websocket

import (
	"testing"
	"time"

	"sprintdash/internal/config"
	"sprintdash/internal/interaction"
	"sprintdash/internal/shared/testutil"
	"sprintdash/internal/views"
	"sprintdash/pkg/contracts/domain"
)

type staticRecords []domain.LongRecord

func (s staticRecords) Records() []domain.LongRecord { return s }

func testConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		PingPeriod:      time.Hour,
		PongWait:        2 * time.Hour,
	}
}

// newTestHub returns a running hub over the reference records. It is
// stopped when the test ends.
func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	dispatcher := interaction.NewDispatcher(
		views.NewEngine(views.DefaultOptions()),
		staticRecords(testutil.ReferenceRecords()),
		nil,
	)
	hub := NewHub(dispatcher, testConfig(), nil, logger)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

// startClient registers a client on conn and runs both pumps.
func startClient(t *testing.T, hub *Hub, conn *MockConnection) *Client {
	t.Helper()
	client := NewClient(hub, conn, "trace-test", hub.logger)
	if !hub.Register(client) {
		t.Fatal("hub refused registration")
	}
	go client.WritePump()
	go client.ReadPump()
	return client
}
