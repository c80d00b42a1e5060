package notify_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/vislzr/pkg/channels/gochannel"
	"github.com/dukex/vislzr/pkg/eventbus"
	"github.com/dukex/vislzr/pkg/events"
	"github.com/dukex/vislzr/pkg/notify"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func startHub(t *testing.T) (*notify.Hub, *httptest.Server) {
	t.Helper()

	hub := notify.NewHub(testLogger())
	server := httptest.NewServer(hub)

	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})

	return hub, server
}

func dial(t *testing.T, hub *notify.Hub, server *httptest.Server, projectID string) *websocket.Conn {
	t.Helper()

	before := hub.Clients(projectID)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?project_id=" + projectID

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients(projectID) == before+1 }, 5*time.Second, 10*time.Millisecond)

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestHub_RequiresProjectID(t *testing.T) {
	t.Parallel()

	_, server := startHub(t)

	resp, err := http.Get(server.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_BroadcastOnlyReachesProjectClients(t *testing.T) {
	t.Parallel()

	hub, server := startHub(t)

	first := dial(t, hub, server, "p1")
	second := dial(t, hub, server, "p1")
	other := dial(t, hub, server, "p2")

	hub.Broadcast(context.Background(), "p1", notify.Message{Event: "graph.changed", Payload: map[string]any{"reason": "replace"}})

	for _, conn := range []*websocket.Conn{first, second} {
		msg := readMessage(t, conn)
		assert.Equal(t, "graph.changed", msg["event"])
		assert.Equal(t, "replace", msg["payload"].(map[string]any)["reason"])
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))

	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_DropsClosedClients(t *testing.T) {
	t.Parallel()

	hub, server := startHub(t)

	conn := dial(t, hub, server, "p1")
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool { return hub.Clients("p1") == 0 }, 5*time.Second, 10*time.Millisecond)

	hub.Broadcast(context.Background(), "p1", notify.Message{Event: "graph.changed"})
	assert.Equal(t, 0, hub.Clients("p1"))
}

func TestHub_AttachForwardsBusEvents(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub, server := startHub(t)

	pub, sub := gochannel.CreateTestChannel(watermill.NewSlogLogger(testLogger()))
	bus := eventbus.NewWatermillEventBus(testLogger(), pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	require.NoError(t, hub.Attach(bus))
	require.NoError(t, bus.Subscribe(ctx))

	conn := dial(t, hub, server, "p1")

	require.NoError(t, bus.Publish(ctx, "p1", events.NewNodeChanged("p1", events.ReasonNodeUpdated, "n1")))

	msg := readMessage(t, conn)
	assert.Equal(t, "graph.changed", msg["event"])

	payload := msg["payload"].(map[string]any)
	assert.Equal(t, "node_updated", payload["reason"])
	assert.Equal(t, "n1", payload["node_id"])
}
