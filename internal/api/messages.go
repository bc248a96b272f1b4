package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/repository"
	"go.uber.org/zap"
)

type MessageHandler struct {
	messages repository.MessageRepository
	rooms    repository.RoomRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewMessageHandler(messages repository.MessageRepository, rooms repository.RoomRepository, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, rooms: rooms, logger: logger, now: time.Now}
}

// List handles GET /api/messages?roomId=<room>&since=<ms>. Without "since"
// the whole retained window comes back.
func (h *MessageHandler) List(c *gin.Context) {
	roomID := c.Query("roomId")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roomId is required"})
		return
	}

	since := int64(-1)
	if s := c.Query("since"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'since' parameter"})
			return
		}
		since = v
	}

	messages, err := h.messages.ListSince(c.Request.Context(), roomID, since)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// Create handles POST /api/messages.
func (h *MessageHandler) Create(c *gin.Context) {
	var msg models.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prepared, err := h.prepare(c, &msg)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.messages.Append(c.Request.Context(), prepared); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, prepared)
}

// prepare validates a client-supplied message and fills the server-assigned
// fields: id, timestamp, kind, and the fallback room.
func (h *MessageHandler) prepare(c *gin.Context, msg *models.Message) (*models.Message, error) {
	if !msg.HasBody() {
		return nil, repository.NewValidationError("message needs content or a file")
	}
	if msg.Sender == "" || msg.SenderID == "" {
		return nil, repository.NewValidationError("message needs sender and senderId")
	}

	if msg.RoomID == "" {
		room, err := h.rooms.EnsureDefaultRoom(c.Request.Context())
		if err != nil {
			return nil, err
		}
		msg.RoomID = room.ID
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = h.now().UnixMilli()
	}
	if msg.Kind == "" {
		msg.Kind = models.KindMessage
	}
	return msg, nil
}
