package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/roomcast/internal/repository"
	"go.uber.org/zap"
)

// AuthHandler implements identity-by-address: the client's network address
// is the credential. There are no passwords or tokens anywhere; the spec of
// this service stops at "same address, same identity".
type AuthHandler struct {
	accounts repository.AccountRepository
	logger   *zap.Logger
}

func NewAuthHandler(accounts repository.AccountRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
}

// Check handles GET /api/auth — is this address already bound to an account?
func (h *AuthHandler) Check(c *gin.Context) {
	account, err := h.accounts.Lookup(c.Request.Context(), c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// Register handles POST /api/auth. For an address that already has an
// account this is a login: the bound account comes back unchanged apart from
// its refreshed last-login time.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.accounts.Register(c.Request.Context(), req.Username, c.ClientIP())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
