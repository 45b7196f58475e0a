package tests

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"neocafe-assistant/chat-svc/internal/api/ws"
	"neocafe-assistant/chat-svc/internal/domain"
)

func TestHub_DeliversUpdatesToConnectedClients(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	// the register handoff runs on the hub goroutine
	time.Sleep(50 * time.Millisecond)

	assert.NoError(t, hub.Send(context.Background(), testUpdate()))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, message, err := conn.ReadMessage()
	assert.NoError(t, err)

	var received domain.OrderUpdate
	assert.NoError(t, json.Unmarshal(message, &received))
	assert.Equal(t, "ORD-ABC12345", received.Order.ID)
	assert.Equal(t, domain.UpdateFinalized, received.Kind)
}

func TestHub_SendWithoutClientsQueues(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()

	assert.NoError(t, hub.Send(context.Background(), testUpdate()))
}
