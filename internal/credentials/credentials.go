// Package credentials holds per-tenant server records and API keys. The hub
// reads it to authenticate agents; the admin HTTP layer manages it.
package credentials

import (
	"context"
	"errors"
	"time"
)

var (
	ErrServerNotConfigured = errors.New("server not configured")
)

// Server is one tenant: an externally managed Minecraft server with its own
// API key and display metadata.
type Server struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Port       int       `json:"port"`
	OnlineMode bool      `json:"onlineMode"`
	APIKey     string    `json:"apiKey"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Store is the credential store contract. GetAPIKey is the hub's single read
// path during agent authentication; the remaining operations serve the admin
// API. Implementations must be safe for concurrent use.
type Store interface {
	GetAPIKey(ctx context.Context, serverID string) (string, error)
	GetServer(ctx context.Context, serverID string) (*Server, error)
	ListServers(ctx context.Context) ([]Server, error)
	UpsertServer(ctx context.Context, server *Server) error
	DeleteServer(ctx context.Context, serverID string) (bool, error)
}
