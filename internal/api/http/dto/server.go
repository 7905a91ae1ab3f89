package dto

import "time"

type ServerResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	Port        int        `json:"port"`
	OnlineMode  bool       `json:"onlineMode"`
	APIKey      string     `json:"apiKey,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Connected   bool       `json:"connected"`
	ConnectedAt *time.Time `json:"connectedAt,omitempty"`
}

type ListServersResponse struct {
	Servers []ServerResponse `json:"servers"`
	Count   int              `json:"count"`
}

type UpsertServerRequest struct {
	ID         string `json:"id" binding:"required"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	Port       int    `json:"port"`
	OnlineMode bool   `json:"onlineMode"`
	RotateKey  bool   `json:"rotateKey"`
}

type ConnectionInfo struct {
	ServerID    string    `json:"serverId"`
	ConnectedAt time.Time `json:"connectedAt"`
}

type ConnectionsResponse struct {
	Connections []ConnectionInfo `json:"connections"`
	Count       int              `json:"count"`
}

type StateResponse struct {
	ServerID   string                 `json:"serverId"`
	ReceivedAt time.Time              `json:"receivedAt"`
	Payload    map[string]interface{} `json:"payload"`
}

type EventResponse struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
}

type EventsResponse struct {
	ServerID string          `json:"serverId"`
	Events   []EventResponse `json:"events"`
	Count    int             `json:"count"`
}
