package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
	"github.com/whitelisthub/whitelist-hub/internal/requests"
)

var discordIDRe = regexp.MustCompile(`^\d{17,20}$`)

type RequestsHandler struct {
	requests *requests.Service
}

func NewRequestsHandler(svc *requests.Service) *RequestsHandler {
	return &RequestsHandler{requests: svc}
}

// ListRequests returns all whitelist requests.
// GET /api/requests
func (h *RequestsHandler) ListRequests(c *gin.Context) {
	reqs, err := h.requests.List()
	if err != nil {
		slog.Error("Failed to list requests", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list requests"})
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// CreateRequest submits a new whitelist request on behalf of a Discord user.
// POST /api/requests
func (h *RequestsHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	if !discordIDRe.MatchString(req.DiscordID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid Discord ID format"})
		return
	}
	if len(req.DiscordUsername) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid Discord username format"})
		return
	}

	created, err := h.requests.Create(req.DiscordID, req.DiscordUsername, req.MinecraftUsername, req.ServerID)
	if err != nil {
		switch {
		case errors.Is(err, requests.ErrPendingExists):
			c.JSON(http.StatusConflict, gin.H{"error": "you already have a pending request"})
		case errors.Is(err, requests.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid Minecraft username format"})
		default:
			slog.Error("Failed to create request", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		}
		return
	}

	c.JSON(http.StatusOK, created)
}

// ReviewRequest approves or rejects a request. Approval triggers whitelist
// delivery; whitelistNotified=false in the response means the approval stuck
// but the server could not be notified.
// PUT /api/requests/:id
func (h *RequestsHandler) ReviewRequest(c *gin.Context) {
	var req dto.ReviewRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	reviewed, notified, err := h.requests.Review(c.Param("id"), req.Status, req.MinecraftUsername, req.ReviewedBy)
	if err != nil {
		switch {
		case errors.Is(err, requests.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		case errors.Is(err, requests.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be approved or rejected"})
		case errors.Is(err, requests.ErrInvalidUsername):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid Minecraft username format"})
		case errors.Is(err, requests.ErrUsernameRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "minecraft username is required when approving"})
		default:
			slog.Error("Failed to review request", "error", err, "request_id", c.Param("id"))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update request"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ReviewRequestResponse{Request: *reviewed, WhitelistNotified: notified})
}

// DeleteRequest removes a request.
// DELETE /api/requests/:id
func (h *RequestsHandler) DeleteRequest(c *gin.Context) {
	removed, err := h.requests.Delete(c.Param("id"))
	if err != nil {
		slog.Error("Failed to delete request", "error", err, "request_id", c.Param("id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete request"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
