package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/roomcast/internal/models"
	"github.com/lalith-99/roomcast/internal/repository"
	"go.uber.org/zap"
)

type UserHandler struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewUserHandler(users repository.UserRepository, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type upsertUserRequest struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	LastSeen int64  `json:"lastSeen"`
	Room     string `json:"room"`
}

// List handles GET /api/users — the raw presence directory. Clients wanting
// only online users derive that from lastSeen, or use the poll response.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Upsert handles POST /api/users — presence heartbeat or name change.
func (h *UserHandler) Upsert(c *gin.Context) {
	var req upsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{
		ID:       req.ID,
		Name:     req.Name,
		LastSeen: req.LastSeen,
		Room:     req.Room,
	}
	if err := h.users.Upsert(c.Request.Context(), user); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users?id=<user> — explicit disconnect.
// Idempotent: deleting an unknown user succeeds.
func (h *UserHandler) Delete(c *gin.Context) {
	userID := c.Query("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	if err := h.users.Remove(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
