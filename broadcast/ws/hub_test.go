package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlabs/agentgate/gateway"
	"github.com/halcyonlabs/agentgate/orchestrator"
)

func dial(t *testing.T, srv *httptest.Server, channelID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?channel=" + channelID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, h *Hub, channelID int64, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount(channelID) != want {
		require.True(t, time.Now().Before(deadline), "subscriber count never reached %d", want)
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubRejectsMissingChannel(t *testing.T) {
	h := NewHub(0)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHubDeliversEnvelope(t *testing.T) {
	h := NewHub(0)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Shutdown()

	conn := dial(t, srv, "7")
	waitForSubscribers(t, h, 7, 1)

	tasks := []orchestrator.Task{{ID: 1, Status: orchestrator.StatusPending, Description: "inspect"}}
	h.Broadcast(context.Background(), gateway.NewTaskQueueUpdate(7, 42, tasks, nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Equal(t, "task_queue_update", env.Type)
	require.Equal(t, int64(7), env.ChannelID)
	require.Equal(t, int64(42), env.SessionID)

	body, ok := env.Payload.(map[string]any)
	require.True(t, ok)
	require.Len(t, body["tasks"], 1)
}

func TestHubChannelIsolation(t *testing.T) {
	h := NewHub(0)
	srv := httptest.NewServer(h)
	defer srv.Close()
	defer h.Shutdown()

	other := dial(t, srv, "8")
	waitForSubscribers(t, h, 8, 1)

	h.Broadcast(context.Background(), gateway.NewSessionComplete(7, 1))

	require.NoError(t, other.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := other.ReadMessage()
	require.Error(t, err, "subscriber on another channel must not receive the event")
}

func TestHubZeroSubscribersIsNoop(t *testing.T) {
	h := NewHub(0)
	// Must not panic or block.
	h.Broadcast(context.Background(), gateway.NewSessionComplete(1, 1))
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	h := NewHub(0)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv, "9")
	waitForSubscribers(t, h, 9, 1)

	require.NoError(t, conn.Close())
	waitForSubscribers(t, h, 9, 0)
}
