package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/repository"
	"go.uber.org/zap"
)

type RoomHandler struct {
	rooms  repository.RoomRepository
	logger *zap.Logger
}

func NewRoomHandler(rooms repository.RoomRepository, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, logger: logger}
}

type createRoomRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" binding:"required,min=3,max=30"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"isPrivate"`
	CreatedBy   string `json:"createdBy"`
}

type membershipRequest struct {
	RoomID string `json:"roomId" binding:"required"`
	Action string `json:"action" binding:"required"`
	UserID string `json:"userId" binding:"required"`
}

// List handles GET /api/rooms and GET /api/rooms?id=<room>.
func (h *RoomHandler) List(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		room, err := h.rooms.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, room)
		return
	}

	rooms, err := h.rooms.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// Create handles POST /api/rooms.
func (h *RoomHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room := &models.Room{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Private:     req.IsPrivate,
		CreatedBy:   req.CreatedBy,
	}
	created, err := h.rooms.Create(c.Request.Context(), room)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/rooms — membership changes only.
func (h *RoomHandler) Update(c *gin.Context) {
	var req membershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	switch req.Action {
	case "join":
		err = h.rooms.Join(c.Request.Context(), req.RoomID, req.UserID)
	case "leave":
		err = h.rooms.Leave(c.Request.Context(), req.RoomID, req.UserID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + req.Action})
		return
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	room, err := h.rooms.Get(c.Request.Context(), req.RoomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /api/rooms?id=<room>&userId=<user>. Only the room's
// creator may delete it; the cascade to the message sequence happens in the
// repository.
func (h *RoomHandler) Delete(c *gin.Context) {
	roomID := c.Query("id")
	userID := c.Query("userId")
	if roomID == "" || userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and userId are required"})
		return
	}

	room, err := h.rooms.Get(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if room.CreatedBy != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can delete a room"})
		return
	}

	if err := h.rooms.Delete(c.Request.Context(), roomID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
