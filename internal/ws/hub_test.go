package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	return &Client{hub: hub, userID: userID, send: make(chan []byte, 4)}
}

func TestHub_DeliversOnlyToTargetUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	alice, bob := uuid.New(), uuid.New()
	ca := newTestClient(hub, alice)
	cb := newTestClient(hub, bob)
	hub.Register(ca)
	hub.Register(cb)
	require.Eventually(t, func() bool { return hub.Connections(alice) == 1 && hub.Connections(bob) == 1 }, time.Second, 5*time.Millisecond)

	NewHubNotifier(hub).Notify(alice, "gig.status_changed", map[string]string{"status": "Assigned"})

	select {
	case raw := <-ca.send:
		var msg struct {
			Type string            `json:"type"`
			Data map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "gig.status_changed", msg.Type)
		assert.Equal(t, "Assigned", msg.Data["status"])
	case <-time.After(time.Second):
		t.Fatal("сообщение не доставлено")
	}

	select {
	case <-cb.send:
		t.Fatal("сообщение ушло не тому пользователю")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	userID := uuid.New()
	c := newTestClient(hub, userID)
	hub.Register(c)
	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestHub_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub не остановился")
	}

	// после остановки регистрация не блокирует
	hub.Register(newTestClient(hub, uuid.New()))
}
