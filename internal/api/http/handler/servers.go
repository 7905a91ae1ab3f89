package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
	"github.com/whitelisthub/whitelist-hub/internal/credentials"
	"github.com/whitelisthub/whitelist-hub/internal/hub"
)

type ServersHandler struct {
	creds credentials.Store
	hub   *hub.Hub
}

func NewServersHandler(creds credentials.Store, h *hub.Hub) *ServersHandler {
	return &ServersHandler{creds: creds, hub: h}
}

// ListServers returns all configured servers with live connection info.
// GET /api/servers
func (h *ServersHandler) ListServers(c *gin.Context) {
	servers, err := h.creds.ListServers(c.Request.Context())
	if err != nil {
		slog.Error("Failed to list servers", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list servers"})
		return
	}

	connectedAt := make(map[string]time.Time)
	for _, t := range h.hub.ListTenants() {
		connectedAt[t.ServerID] = t.ConnectedAt
	}

	responses := make([]dto.ServerResponse, len(servers))
	for i, s := range servers {
		responses[i] = dto.ServerResponse{
			ID:         s.ID,
			Name:       s.Name,
			Address:    s.Address,
			Port:       s.Port,
			OnlineMode: s.OnlineMode,
			APIKey:     s.APIKey,
			CreatedAt:  s.CreatedAt,
		}
		if at, ok := connectedAt[s.ID]; ok {
			responses[i].Connected = true
			responses[i].ConnectedAt = &at
		}
	}

	c.JSON(http.StatusOK, dto.ListServersResponse{Servers: responses, Count: len(responses)})
}

// UpsertServer creates or updates a server record. A fresh API key is
// generated on creation and on explicit rotation.
// POST /api/servers
func (h *ServersHandler) UpsertServer(c *gin.Context) {
	var req dto.UpsertServerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	ctx := c.Request.Context()

	server, err := h.creds.GetServer(ctx, req.ID)
	if err != nil {
		if !errors.Is(err, credentials.ErrServerNotConfigured) {
			slog.Error("Failed to get server", "error", err, "server_id", req.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get server"})
			return
		}
		server = &credentials.Server{ID: req.ID, CreatedAt: time.Now()}
	}

	server.Name = req.Name
	server.Address = req.Address
	server.Port = req.Port
	server.OnlineMode = req.OnlineMode

	if server.APIKey == "" || req.RotateKey {
		key, err := credentials.GenerateAPIKey()
		if err != nil {
			slog.Error("Failed to generate API key", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate API key"})
			return
		}
		server.APIKey = key
	}

	if err := h.creds.UpsertServer(ctx, server); err != nil {
		slog.Error("Failed to save server", "error", err, "server_id", req.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save server"})
		return
	}

	slog.Info("Server configuration saved", "server_id", server.ID)
	c.JSON(http.StatusOK, dto.ServerResponse{
		ID:         server.ID,
		Name:       server.Name,
		Address:    server.Address,
		Port:       server.Port,
		OnlineMode: server.OnlineMode,
		APIKey:     server.APIKey,
		CreatedAt:  server.CreatedAt,
		Connected:  h.hub.Connected(server.ID),
	})
}

// DeleteServer removes a server record. A live agent connection for the
// tenant is left alone; it simply fails its next reconnect.
// DELETE /api/servers/:id
func (h *ServersHandler) DeleteServer(c *gin.Context) {
	serverID := c.Param("id")

	removed, err := h.creds.DeleteServer(c.Request.Context(), serverID)
	if err != nil {
		slog.Error("Failed to delete server", "error", err, "server_id", serverID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete server"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "server not found"})
		return
	}

	slog.Info("Server configuration deleted", "server_id", serverID)
	c.JSON(http.StatusOK, gin.H{"message": "server deleted"})
}

// ListConnections returns the currently authenticated tenants.
// GET /api/connections
func (h *ServersHandler) ListConnections(c *gin.Context) {
	tenants := h.hub.ListTenants()

	connections := make([]dto.ConnectionInfo, len(tenants))
	for i, t := range tenants {
		connections[i] = dto.ConnectionInfo{ServerID: t.ServerID, ConnectedAt: t.ConnectedAt}
	}

	c.JSON(http.StatusOK, dto.ConnectionsResponse{Connections: connections, Count: len(connections)})
}

// GetState returns the latest state snapshot reported by a tenant's agent.
// GET /api/servers/:id/state
func (h *ServersHandler) GetState(c *gin.Context) {
	serverID := c.Param("id")

	snapshot, ok := h.hub.GetState(serverID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no state reported for server"})
		return
	}

	c.JSON(http.StatusOK, dto.StateResponse{
		ServerID:   serverID,
		ReceivedAt: snapshot.ReceivedAt,
		Payload:    snapshot.Payload,
	})
}

// GetEvents returns a tenant's most recent events, oldest first. A missing
// or unparseable limit falls back to the hub default.
// GET /api/servers/:id/events?limit=N
func (h *ServersHandler) GetEvents(c *gin.Context) {
	serverID := c.Param("id")

	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	events := h.hub.GetEvents(serverID, limit)

	responses := make([]dto.EventResponse, len(events))
	for i, e := range events {
		responses[i] = dto.EventResponse{Timestamp: e.Timestamp, Type: e.Type, Payload: e.Payload}
	}

	c.JSON(http.StatusOK, dto.EventsResponse{ServerID: serverID, Events: responses, Count: len(responses)})
}
