package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/repository"
	"go.uber.org/zap"
)

// Maintenance is the sweeper as the poll path sees it: a single opportunistic
// hook, never an error source.
type Maintenance interface {
	MaybeSweep(ctx context.Context)
}

// PollResponse is the combined synchronization snapshot. Messages is always
// the full retained window for the room; Delta is the subset newer than the
// client's cursor, for consumers that merge incrementally. Timestamp is the
// server clock the client must use as its next "since".
type PollResponse struct {
	Messages  []models.Message `json:"messages"`
	Delta     []models.Message `json:"delta"`
	Members   []models.User    `json:"members"`
	Online    []models.User    `json:"online"`
	Rooms     []models.Room    `json:"rooms"`
	Timestamp int64            `json:"timestamp"`
}

type pollWriteRequest struct {
	Type string          `json:"type" binding:"required"`
	Data json.RawMessage `json:"data" binding:"required"`
}

type PollHandler struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	rooms    repository.RoomRepository
	sweep    Maintenance
	msg      *MessageHandler
	logger   *zap.Logger
	now      func() time.Time
}

func NewPollHandler(messages repository.MessageRepository, users repository.UserRepository, rooms repository.RoomRepository, sweep Maintenance, msg *MessageHandler, logger *zap.Logger) *PollHandler {
	return &PollHandler{
		messages: messages,
		users:    users,
		rooms:    rooms,
		sweep:    sweep,
		msg:      msg,
		logger:   logger,
		now:      time.Now,
	}
}

// Get handles GET /api/poll?since=<ms>&roomId=<room>. The response is always
// 200: each sub-fetch that fails degrades to an empty collection so the
// client's render loop keeps running, and the failure is logged here instead.
func (h *PollHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	h.sweep.MaybeSweep(ctx)

	var since int64
	if s := c.Query("since"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			since = v
		}
	}

	roomID := c.Query("roomId")
	if roomID == "" {
		if room, err := h.rooms.EnsureDefaultRoom(ctx); err == nil {
			roomID = room.ID
		} else {
			h.logger.Warn("poll: resolve default room", zap.Error(err))
		}
	}

	resp := PollResponse{
		Messages:  []models.Message{},
		Delta:     []models.Message{},
		Members:   []models.User{},
		Online:    []models.User{},
		Rooms:     []models.Room{},
		Timestamp: h.now().UnixMilli(),
	}

	if messages, err := h.messages.ListSince(ctx, roomID, -1); err != nil {
		h.logger.Warn("poll: list messages", zap.String("room", roomID), zap.Error(err))
	} else {
		resp.Messages = messages
		for _, m := range messages {
			if m.Timestamp > since {
				resp.Delta = append(resp.Delta, m)
			}
		}
	}

	if online, err := h.users.ListOnline(ctx); err != nil {
		h.logger.Warn("poll: list online users", zap.Error(err))
	} else {
		resp.Online = online
	}

	if members, err := h.roomMembers(ctx, roomID); err != nil {
		h.logger.Warn("poll: list members", zap.String("room", roomID), zap.Error(err))
	} else {
		resp.Members = members
	}

	if rooms, err := h.rooms.ListAll(ctx); err != nil {
		h.logger.Warn("poll: list rooms", zap.Error(err))
	} else {
		resp.Rooms = rooms
	}

	c.JSON(http.StatusOK, resp)
}

// Post handles POST /api/poll — the write half of the synchronization
// channel, a tagged union of message sends and presence heartbeats.
func (h *PollHandler) Post(c *gin.Context) {
	var req pollWriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Type {
	case "message":
		var msg models.Message
		if err := json.Unmarshal(req.Data, &msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message payload"})
			return
		}
		prepared, err := h.msg.prepare(c, &msg)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if err := h.messages.Append(c.Request.Context(), prepared); err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusCreated, prepared)

	case "user":
		var user models.User
		if err := json.Unmarshal(req.Data, &user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user payload"})
			return
		}
		if user.ID == "" || user.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user needs id and name"})
			return
		}
		if err := h.users.Upsert(c.Request.Context(), &user); err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, &user)

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown type: " + req.Type})
	}
}

// roomMembers resolves the room's member ids against the presence directory.
// Members with no directory entry (already evicted) are simply omitted.
func (h *PollHandler) roomMembers(ctx context.Context, roomID string) ([]models.User, error) {
	room, err := h.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	directory, err := h.users.List(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(directory))
	for _, u := range directory {
		byID[u.ID] = u
	}

	members := make([]models.User, 0, len(room.Members))
	for _, id := range room.Members {
		if u, ok := byID[id]; ok {
			members = append(members, u)
		}
	}
	return members, nil
}
