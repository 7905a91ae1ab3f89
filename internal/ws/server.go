// Package ws is the agent-facing WebSocket transport. It owns the sockets
// and feeds raw messages into the hub; the hub never touches the transport
// beyond the Conn send capability.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/whitelisthub/whitelist-hub/internal/hub"
)

const writeTimeout = 5 * time.Second

type Server struct {
	hub *hub.Hub
}

func NewServer(h *hub.Hub) *Server {
	return &Server{hub: h}
}

// ServeHTTP upgrades the request and runs the read loop for one agent
// connection until the socket closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Agents are not browsers; origin checks do not apply.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("WebSocket accept error", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	conn := &agentConn{conn: c}
	slog.Info("Agent connection established", "remote_addr", r.RemoteAddr)

	defer func() {
		s.hub.HandleDisconnect(conn)
		_ = conn.Close()
	}()

	ctx := r.Context()
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			slog.Debug("Agent connection closed", "remote_addr", r.RemoteAddr, "error", err)
			return
		}
		s.hub.HandleMessage(ctx, conn, data)
	}
}

// agentConn adapts a websocket connection to the hub.Conn send capability.
type agentConn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (c *agentConn) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *agentConn) Close() error {
	c.closeOnce.Do(func() {
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	})
	return nil
}
