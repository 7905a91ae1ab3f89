package hub

import "log/slog"

// SendWhitelistAdd delivers a whitelist_add command to the tenant's live
// connection. Delivery is best-effort, at-most-once and fire-and-forget:
// there is no acknowledgement, retry, or queueing. Returns false when the
// tenant has no live connection or the transport send fails; callers are
// responsible for surfacing that to an operator.
func (h *Hub) SendWhitelistAdd(serverID, username string) bool {
	return h.sendCommand(FrameTypeWhitelistAdd, serverID, username)
}

// SendWhitelistRemove delivers a whitelist_remove command. Semantics mirror
// SendWhitelistAdd.
func (h *Hub) SendWhitelistRemove(serverID, username string) bool {
	return h.sendCommand(FrameTypeWhitelistRemove, serverID, username)
}

func (h *Hub) sendCommand(frameType, serverID, username string) bool {
	conn, ok := h.registry.Resolve(serverID)
	if !ok {
		// Legacy single-tenant agents authenticated before server ids
		// existed; fall back to any live connection.
		conn, ok = h.registry.AnyAuthenticated()
	}
	if !ok {
		slog.Warn("No live connection for command", "type", frameType, "server_id", serverID)
		return false
	}

	if err := conn.Send(commandFrame{Type: frameType, Username: username, ServerID: serverID}); err != nil {
		slog.Error("Command delivery failed", "type", frameType, "server_id", serverID, "error", err)
		return false
	}

	slog.Info("Command delivered", "type", frameType, "server_id", serverID, "username", username)
	return true
}
