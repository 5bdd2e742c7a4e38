package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aescanero/chaincfg/internal/application/publisher"
	"github.com/aescanero/chaincfg/pkg/ports"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles WebSocket connections
type Handler struct {
	eventBus  ports.EventBus
	publisher *publisher.Manager
	logger    *zap.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(eventBus ports.EventBus, pub *publisher.Manager, logger *zap.Logger) *Handler {
	return &Handler{
		eventBus:  eventBus,
		publisher: pub,
		logger:    logger,
	}
}

// HandleEventStream streams configuration events to the client
func (h *Handler) HandleEventStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	h.logger.Info("WebSocket connection established",
		zap.String("client", c.ClientIP()))

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// a closed or failed read ends the stream
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	eventChan := make(chan ports.Event, 10)
	if err := h.eventBus.Subscribe(ctx, ports.TopicConfig, h.forward(eventChan)); err != nil {
		h.logger.Error("failed to subscribe to events",
			zap.String("topic", ports.TopicConfig),
			zap.Error(err))
		return
	}

	if snapshot := h.publisher.Snapshot(); snapshot != nil {
		if err := h.write(conn, currentEvent(snapshot)); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-eventChan:
			if err := h.write(conn, event); err != nil {
				return
			}
		}
	}
}

// forward returns an event handler feeding ch without blocking the bus
func (h *Handler) forward(ch chan<- ports.Event) ports.EventHandler {
	return func(_ context.Context, event ports.Event) error {
		select {
		case ch <- event:
		default:
			h.logger.Warn("event channel full, dropping event",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)))
		}
		return nil
	}
}

func (h *Handler) write(conn *websocket.Conn, event ports.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return nil
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.logger.Error("failed to write message", zap.Error(err))
		return err
	}
	return nil
}

// currentEvent describes an already published snapshot
func currentEvent(snapshot *ports.Snapshot) ports.Event {
	return ports.Event{
		ID:         snapshot.ID,
		Type:       ports.EventConfigLoaded,
		SnapshotID: snapshot.ID,
		Timestamp:  snapshot.LoadedAt,
		Data: map[string]interface{}{
			"networks":            snapshot.Config.NetworkNames(),
			"compiler_version":    snapshot.Config.Compiler.Version,
			"signing_key_present": snapshot.SigningKeyPresent,
			"api_key_present":     snapshot.APIKeyPresent,
		},
	}
}
