package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
	"github.com/whitelisthub/whitelist-hub/internal/hub"
)

type WhitelistHandler struct {
	hub *hub.Hub
}

func NewWhitelistHandler(h *hub.Hub) *WhitelistHandler {
	return &WhitelistHandler{hub: h}
}

// Add sends a whitelist_add command toward the tenant's live connection.
// Delivery is best-effort: delivered=false means the tenant is offline or
// the send failed, and the caller decides how to surface that.
// POST /api/whitelist
func (h *WhitelistHandler) Add(c *gin.Context) {
	var req dto.WhitelistCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	delivered := h.hub.SendWhitelistAdd(req.ServerID, req.Username)
	c.JSON(http.StatusOK, dto.WhitelistCommandResponse{Delivered: delivered})
}

// Remove sends a whitelist_remove command. Semantics mirror Add.
// DELETE /api/whitelist
func (h *WhitelistHandler) Remove(c *gin.Context) {
	var req dto.WhitelistCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	delivered := h.hub.SendWhitelistRemove(req.ServerID, req.Username)
	c.JSON(http.StatusOK, dto.WhitelistCommandResponse{Delivered: delivered})
}
