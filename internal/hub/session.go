package hub

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"github.com/whitelisthub/whitelist-hub/internal/credentials"
)

const defaultServerID = "default"

// HandleMessage interprets one inbound message from conn. Before a
// successful auth frame only ping and auth are honored; everything else gets
// an error frame and the connection stays open so the agent can still
// authenticate. Malformed messages are dropped without a response.
//
// The credential lookup inside auth handling is the only operation here that
// may suspend; every registry and buffer mutation runs to completion under
// its own lock.
func (h *Hub) HandleMessage(ctx context.Context, conn Conn, data []byte) {
	f := decodeFrame(data)
	if f == nil {
		return
	}

	switch f.Type {
	case FrameTypePing:
		h.send(conn, pongFrame{Type: FrameTypePong, TS: time.Now().UnixMilli()})

	case FrameTypeAuth:
		h.handleAuth(ctx, conn, f)

	case FrameTypeEvent:
		serverID, ok := h.authenticated(conn)
		if !ok {
			h.send(conn, errorFrame{Type: FrameTypeError, Error: ErrCodeNotAuthenticated})
			return
		}
		h.activity.RecordEvent(serverID, f.EventType, f.Payload)

	case FrameTypeState:
		serverID, ok := h.authenticated(conn)
		if !ok {
			h.send(conn, errorFrame{Type: FrameTypeError, Error: ErrCodeNotAuthenticated})
			return
		}
		h.activity.SetState(serverID, f.Payload)

	default:
		if _, ok := h.authenticated(conn); !ok {
			h.send(conn, errorFrame{Type: FrameTypeError, Error: ErrCodeNotAuthenticated})
			return
		}
		slog.Debug("Ignoring unknown frame type", "type", f.Type)
	}
}

func (h *Hub) handleAuth(ctx context.Context, conn Conn, f *Frame) {
	serverID := f.ServerID
	if serverID == "" {
		serverID = defaultServerID
	}

	expectedKey, err := h.creds.GetAPIKey(ctx, serverID)
	if err != nil || expectedKey == "" {
		if err != nil && !errors.Is(err, credentials.ErrServerNotConfigured) {
			slog.Error("Credential lookup failed", "server_id", serverID, "error", err)
		}
		h.send(conn, authResultFrame{Type: FrameTypeAuthResult, OK: false, Error: ErrCodeServerNotConfigured})
		_ = conn.Close()
		return
	}

	if f.APIKey == "" || subtle.ConstantTimeCompare([]byte(f.APIKey), []byte(expectedKey)) != 1 {
		slog.Warn("Invalid API key on agent auth", "server_id", serverID)
		h.send(conn, authResultFrame{Type: FrameTypeAuthResult, OK: false, Error: ErrCodeInvalidKey})
		_ = conn.Close()
		return
	}

	h.registry.RegisterAuthenticated(conn, serverID, time.Now())
	h.activity.RecordEvent(serverID, "connected", nil)
	h.send(conn, authResultFrame{Type: FrameTypeAuthResult, OK: true})
}

// HandleDisconnect is called by the transport when conn is gone. If the
// connection was authenticated, a disconnected event is recorded and the
// registry entry removed unless a newer connection already replaced it.
// Safe to call more than once.
func (h *Hub) HandleDisconnect(conn Conn) {
	serverID, ok := h.registry.Unregister(conn)
	if !ok {
		return
	}
	h.activity.RecordEvent(serverID, "disconnected", nil)
	slog.Info("Agent disconnected", "server_id", serverID)
}

func (h *Hub) authenticated(conn Conn) (string, bool) {
	h.registry.mu.RLock()
	defer h.registry.mu.RUnlock()
	m, ok := h.registry.meta[conn]
	if !ok {
		return "", false
	}
	return m.serverID, true
}

func (h *Hub) send(conn Conn, v interface{}) {
	if err := conn.Send(v); err != nil {
		slog.Debug("Failed to send frame", "error", err)
	}
}
