package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/roomcast/internal/repository/kv"
	"github.com/lalith-99/roomcast/internal/store"
	"go.uber.org/zap"
)

// heartbeatInterval keeps intermediaries from timing out the stream; the
// client treats a silent 30s as a dead connection and reconnects.
const heartbeatInterval = 30 * time.Second

// SSEHandler is the event-stream alternative to polling: it relays store
// publishes for one room (plus the global directory channel) as SSE events.
type SSEHandler struct {
	store  store.Store
	logger *zap.Logger
}

func NewSSEHandler(s store.Store, logger *zap.Logger) *SSEHandler {
	return &SSEHandler{store: s, logger: logger}
}

// Stream handles GET /api/sse?roomId=<room>. Events: "connected" once,
// "update" with `{type, data}` mirroring the store publishes, and periodic
// "heartbeat". The stream ends when the client goes away.
func (h *SSEHandler) Stream(c *gin.Context) {
	roomID := c.Query("roomId")
	if roomID == "" {
		roomID = kv.DefaultRoomID
	}

	ctx := c.Request.Context()
	events, cancel, err := h.store.Subscribe(ctx, kv.RoomChannel(roomID), kv.GlobalChannel)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	c.SSEvent("connected", gin.H{"roomId": roomID})
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			// The payload is already canonical JSON from the store
			// boundary; pass it through untouched.
			c.SSEvent("update", json.RawMessage(ev.Payload))
			c.Writer.Flush()
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UnixMilli())
			c.Writer.Flush()
		}
	}
}
