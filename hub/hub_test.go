package hub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Serve(conn, "staff")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesClients(t *testing.T) {
	h := New(nil)
	srv := newTestServer(t, h)

	first := dial(t, srv)
	second := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	h.Publish("table_status", map[string]string{"table_number": "T01", "status": "occupied"})

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg struct {
			Event string            `json:"event"`
			Data  map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "table_status", msg.Event)
		assert.Equal(t, "T01", msg.Data["table_number"])
		assert.Equal(t, "occupied", msg.Data["status"])
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h := New(nil)
	srv := newTestServer(t, h)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	// broadcasting with nobody connected is a no-op
	h.Broadcast(Message{Event: "table_update"})
}

func TestRunWithoutRedisStopsOnCancel(t *testing.T) {
	h := New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCloseDisconnectsClients(t *testing.T) {
	h := New(nil)
	srv := newTestServer(t, h)

	conn := dial(t, srv)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	h.Close()
	assert.Equal(t, 0, h.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestStalledClientDoesNotBlockBroadcast(t *testing.T) {
	h := New(nil)
	// no writer goroutine drains this queue
	conn := &websocket.Conn{}
	stalled := &client{conn: conn, role: "staff", send: make(chan []byte, sendBuffer)}
	h.clients[conn] = stalled

	done := make(chan struct{})
	go func() {
		for i := 0; i <= sendBuffer; i++ {
			h.Broadcast(Message{Event: "table_status"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a client that never reads")
	}
	assert.Equal(t, 0, h.ClientCount())

	queued := 0
	for range stalled.send {
		queued++
	}
	assert.Equal(t, sendBuffer, queued)
}
