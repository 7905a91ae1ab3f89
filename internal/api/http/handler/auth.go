package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
	"github.com/whitelisthub/whitelist-hub/internal/auth"
)

type AuthHandler struct {
	config       auth.Config
	passwordHash string
}

func NewAuthHandler(config auth.Config, passwordHash string) *AuthHandler {
	return &AuthHandler{config: config, passwordHash: passwordHash}
}

// Login exchanges the admin password for a session token.
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	if h.passwordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin login is not configured"})
		return
	}

	if !auth.CheckPassword(req.Password, h.passwordHash) {
		slog.Warn("Invalid admin login attempt", "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(h.config, "admin", "admin")
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: token})
}
