// Package hub is the multi-tenant connection hub: it accepts frames from
// persistent agent connections, authenticates them against per-tenant API
// keys, tracks live connections and per-tenant state/event history, and
// routes whitelist commands to the connection representing a tenant.
package hub

import "context"

// CredentialSource is the hub's read path into the credential store: one
// bounded async lookup per auth attempt. Satisfied by credentials.Store.
type CredentialSource interface {
	GetAPIKey(ctx context.Context, serverID string) (string, error)
}

// Hub owns the connection registry and the per-tenant activity buffers. All
// mutation flows through the session handler (on behalf of whichever
// connection currently holds a tenant slot); the command router and the HTTP
// layer only read or send.
type Hub struct {
	creds    CredentialSource
	registry *Registry
	activity *Activity
}

func New(creds CredentialSource) *Hub {
	return &Hub{
		creds:    creds,
		registry: NewRegistry(),
		activity: NewActivity(),
	}
}

// ListTenants returns all currently authenticated tenants.
func (h *Hub) ListTenants() []Tenant {
	return h.registry.ListTenants()
}

// GetState returns the latest state snapshot reported for a tenant.
func (h *Hub) GetState(serverID string) (StateSnapshot, bool) {
	return h.activity.GetState(serverID)
}

// GetEvents returns the tenant's most recent events, oldest first.
func (h *Hub) GetEvents(serverID string, limit int) []Event {
	return h.activity.GetEvents(serverID, limit)
}

// Connected reports whether a tenant currently has a live connection.
func (h *Hub) Connected(serverID string) bool {
	_, ok := h.registry.Resolve(serverID)
	return ok
}
