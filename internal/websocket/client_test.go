package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sprintdash/internal/interaction"
	"sprintdash/pkg/contracts/events"
)

func decodeUpdate(t *testing.T, raw json.RawMessage) interaction.Update {
	t.Helper()
	var u interaction.Update
	require.NoError(t, json.Unmarshal(raw, &u))
	return u
}

func decodeError(t *testing.T, raw json.RawMessage) events.ErrorData {
	t.Helper()
	var e events.ErrorData
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestClient_SnapshotOnConnect(t *testing.T) {
	hub := newTestHub(t)
	conn := NewMockConnection()
	startClient(t, hub, conn)
	defer conn.CloseRead()

	msgs := conn.waitForMessages(t, 1)
	assert.Equal(t, events.MessageTypeSnapshot, msgs[0].Type)
	assert.Equal(t, "trace-test", msgs[0].TraceID)

	u := decodeUpdate(t, msgs[0].Data)
	assert.ElementsMatch(t, []string{"stats", "chart", "summary"}, u.Changed)
	require.NotNil(t, u.Views.Stats)
	require.NotNil(t, u.Views.Chart)
	require.NotNil(t, u.Views.Summary)
	assert.Equal(t, int64(maxMessageSize), conn.ReadLimit)
}

func TestClient_InteractionUpdates(t *testing.T) {
	hub := newTestHub(t)
	conn := NewMockConnection()
	startClient(t, hub, conn)
	defer conn.CloseRead()
	conn.waitForMessages(t, 1)

	conn.Push(`{"type":"interaction","data":{"type":"show_all"}}`)
	msgs := conn.waitForMessages(t, 2)
	assert.Equal(t, events.MessageTypeUpdate, msgs[1].Type)
	u := decodeUpdate(t, msgs[1].Data)
	assert.Equal(t, interaction.EventShowAll, u.Event)
	assert.Equal(t, []string{"chart"}, u.Changed)
	assert.Equal(t, 1, u.State.ShowClicks)
	assert.Nil(t, u.Views.Stats)
	assert.NotNil(t, u.Views.Chart)

	conn.Push(`{"type":"interaction","data":{"type":"select_developers","developers":["B"]}}`)
	msgs = conn.waitForMessages(t, 3)
	u = decodeUpdate(t, msgs[2].Data)
	require.NotNil(t, u.Views.Stats)
	assert.Equal(t, 13.0, u.Views.Stats.TotalPoints)
	assert.Equal(t, []string{"B"}, u.State.SelectedDevelopers)
	// Counters survive later events in the same session.
	assert.Equal(t, 1, u.State.ShowClicks)
}

func TestClient_SessionsAreIndependent(t *testing.T) {
	hub := newTestHub(t)
	first, second := NewMockConnection(), NewMockConnection()
	startClient(t, hub, first)
	startClient(t, hub, second)
	defer first.CloseRead()
	defer second.CloseRead()
	first.waitForMessages(t, 1)
	second.waitForMessages(t, 1)

	first.Push(`{"type":"interaction","data":{"type":"hide_all"}}`)
	first.waitForMessages(t, 2)

	second.Push(`{"type":"interaction","data":{"type":"show_all"}}`)
	msgs := second.waitForMessages(t, 2)
	u := decodeUpdate(t, msgs[1].Data)
	assert.Equal(t, 1, u.State.ShowClicks)
	assert.Equal(t, 0, u.State.HideClicks)
}

func TestClient_RejectedMessages(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		wantCode string
	}{
		{name: "not json", message: `{nope`, wantCode: CodeInvalidMessage},
		{name: "unknown message type", message: `{"type":"subscribe"}`, wantCode: CodeUnknownMessage},
		{name: "malformed payload", message: `{"type":"interaction","data":[1,2]}`, wantCode: CodeInvalidMessage},
		{name: "unknown event", message: `{"type":"interaction","data":{"type":"zoom"}}`, wantCode: CodeValidationFailed},
		{name: "empty developer name", message: `{"type":"interaction","data":{"type":"select_developers","developers":[""]}}`, wantCode: CodeValidationFailed},
		{name: "range missing", message: `{"type":"interaction","data":{"type":"set_y_range"}}`, wantCode: CodeInvalidInteraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := newTestHub(t)
			conn := NewMockConnection()
			startClient(t, hub, conn)
			defer conn.CloseRead()
			conn.waitForMessages(t, 1)

			conn.Push(tt.message)
			msgs := conn.waitForMessages(t, 2)
			assert.Equal(t, events.MessageTypeError, msgs[1].Type)
			assert.Equal(t, tt.wantCode, decodeError(t, msgs[1].Data).Code)

			// The session is untouched, so the next event starts from zero.
			conn.Push(`{"type":"interaction","data":{"type":"show_all"}}`)
			msgs = conn.waitForMessages(t, 3)
			assert.Equal(t, 1, decodeUpdate(t, msgs[2].Data).State.ShowClicks)
		})
	}
}

func TestClient_HeartbeatIsSilent(t *testing.T) {
	hub := newTestHub(t)
	conn := NewMockConnection()
	startClient(t, hub, conn)
	defer conn.CloseRead()
	conn.waitForMessages(t, 1)

	conn.Push(`{"type":"heartbeat"}`)
	conn.Push(`{"type":"interaction","data":{"type":"hide_all"}}`)
	msgs := conn.waitForMessages(t, 2)
	assert.Equal(t, events.MessageTypeUpdate, msgs[1].Type)
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := newTestHub(t)
	conn := NewMockConnection()
	startClient(t, hub, conn)
	conn.waitForMessages(t, 1)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	conn.CloseRead()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClient_EnqueueAfterCloseIsDropped(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, NewMockConnection(), "", nil)
	client.closeSend()
	client.closeSend()

	assert.False(t, client.enqueueRaw(client.context(), "test", []byte(`{}`)))
}

func TestClient_FullBufferDrops(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, NewMockConnection(), "", nil)
	for i := 0; i < sendBufferSize; i++ {
		require.True(t, client.enqueueRaw(client.context(), "test", []byte(`{}`)))
	}
	assert.False(t, client.enqueueRaw(client.context(), "test", []byte(`{}`)))
}
