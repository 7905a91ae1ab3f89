package hub

import (
	"log/slog"
	"sync"
	"time"
)

// Tenant describes one currently authenticated server for listing endpoints.
type Tenant struct {
	ServerID    string    `json:"serverId"`
	ConnectedAt time.Time `json:"connectedAt"`
}

type connMeta struct {
	serverID    string
	connectedAt time.Time
}

// Registry is the bidirectional index between live connections and tenant
// identities. At most one connection represents a tenant at any time: a new
// authentication under an already-registered server id replaces the old entry
// (last writer wins for routing). The superseded connection is not closed;
// its eventual transport close is handled by the stale-unregister guard in
// Unregister.
type Registry struct {
	mu       sync.RWMutex
	byServer map[string]Conn
	meta     map[Conn]connMeta
}

func NewRegistry() *Registry {
	return &Registry{
		byServer: make(map[string]Conn),
		meta:     make(map[Conn]connMeta),
	}
}

// RegisterAuthenticated binds conn to serverID, replacing any previous
// connection registered under the same server id. It always succeeds.
func (r *Registry) RegisterAuthenticated(conn Conn, serverID string, connectedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byServer[serverID]; ok {
		slog.Warn("Server already connected, replacing connection", "server_id", serverID)
	}

	r.byServer[serverID] = conn
	r.meta[conn] = connMeta{serverID: serverID, connectedAt: connectedAt}

	slog.Info("Server registered", "server_id", serverID, "total_connections", len(r.byServer))
}

// Unregister removes conn from the registry and reports the server id it was
// authenticated under. The forward entry is removed only if it still points
// at this exact connection, so closing a superseded connection never clobbers
// the one that replaced it. Returns ("", false) if conn never authenticated.
func (r *Registry) Unregister(conn Conn) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.meta[conn]
	if !ok {
		return "", false
	}
	delete(r.meta, conn)

	if current, ok := r.byServer[m.serverID]; ok && current == conn {
		delete(r.byServer, m.serverID)
		slog.Info("Server unregistered", "server_id", m.serverID, "total_connections", len(r.byServer))
	}

	return m.serverID, true
}

// Resolve returns the live connection for serverID, if any.
func (r *Registry) Resolve(serverID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byServer[serverID]
	return conn, ok
}

// AnyAuthenticated returns an arbitrary authenticated connection. Legacy
// single-tenant callers route through this when they supply no server id.
func (r *Registry) AnyAuthenticated() (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, conn := range r.byServer {
		return conn, true
	}
	return nil, false
}

// ListTenants returns a snapshot of all currently authenticated tenants.
func (r *Registry) ListTenants() []Tenant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tenants := make([]Tenant, 0, len(r.byServer))
	for serverID, conn := range r.byServer {
		m := r.meta[conn]
		tenants = append(tenants, Tenant{ServerID: serverID, ConnectedAt: m.connectedAt})
	}
	return tenants
}
