package websocket

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aescanero/chaincfg/internal/application/publisher"
	"github.com/aescanero/chaincfg/internal/toolchain"
	eventsmemory "github.com/aescanero/chaincfg/pkg/adapters/events/memory"
	metricsprom "github.com/aescanero/chaincfg/pkg/adapters/metrics/prometheus"
	storagememory "github.com/aescanero/chaincfg/pkg/adapters/storage/memory"
	"github.com/aescanero/chaincfg/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStream(t *testing.T) (*publisher.Manager, *eventsmemory.InMemoryEventBus, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := eventsmemory.NewInMemoryEventBus()
	pub := publisher.NewManager(
		toolchain.Load(map[string]string{"PRIVATE_KEY": "0xabc"}),
		storagememory.NewInMemorySnapshotStore(),
		bus,
		metricsprom.NewCollector(prometheus.NewRegistry()),
		zap.NewNop(),
		time.Hour,
	)

	router := gin.New()
	router.GET("/api/v1/events/ws", NewHandler(bus, pub, zap.NewNop()).HandleEventStream)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return pub, bus, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events/ws"
}

func readEvent(t *testing.T, conn *websocket.Conn) ports.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev ports.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestStreamSendsCurrentSnapshot(t *testing.T) {
	pub, _, url := newTestStream(t)
	snap, err := pub.Publish(context.Background())
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	ev := readEvent(t, conn)
	assert.Equal(t, ports.EventConfigLoaded, ev.Type)
	assert.Equal(t, snap.ID, ev.SnapshotID)
	assert.Equal(t, true, ev.Data["signing_key_present"])
}

func TestStreamForwardsPublishedEvents(t *testing.T) {
	pub, bus, url := newTestStream(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// wait for the handler to subscribe before publishing
	require.Eventually(t, func() bool {
		return bus.Subscribers(ports.TopicConfig) == 1
	}, 2*time.Second, 10*time.Millisecond)

	snap, err := pub.Publish(context.Background())
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, snap.ID, ev.SnapshotID)
	assert.NotContains(t, ev.Data, "signing_key")
}

func TestStreamUnsubscribesOnClose(t *testing.T) {
	_, bus, url := newTestStream(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return bus.Subscribers(ports.TopicConfig) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return bus.Subscribers(ports.TopicConfig) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestForwardIgnoresCancelledContext(t *testing.T) {
	h := NewHandler(nil, nil, zap.NewNop())
	ch := make(chan ports.Event, 1)
	forward := h.forward(ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 100; i++ {
		require.NoError(t, forward(ctx, ports.Event{ID: "e1"}))
		select {
		case ev := <-ch:
			assert.Equal(t, "e1", ev.ID)
		default:
			t.Fatalf("event dropped on iteration %d", i)
		}
	}
}

func TestForwardDropsWhenFull(t *testing.T) {
	h := NewHandler(nil, nil, zap.NewNop())
	ch := make(chan ports.Event, 1)
	forward := h.forward(ch)

	require.NoError(t, forward(context.Background(), ports.Event{ID: "e1"}))
	require.NoError(t, forward(context.Background(), ports.Event{ID: "e2"}))

	assert.Equal(t, "e1", (<-ch).ID)
	assert.Empty(t, ch)
}

func TestStreamDeliversEventPublishedWithShortLivedContext(t *testing.T) {
	pub, bus, url := newTestStream(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return bus.Subscribers(ports.TopicConfig) == 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	snap, err := pub.Publish(ctx)
	cancel()
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, snap.ID, ev.SnapshotID)
}
