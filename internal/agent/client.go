// Package agent is a development stand-in for the Java plugin. It connects
// to a hub, authenticates as one tenant, reports synthetic state and events,
// and logs whitelist commands it receives. Useful for exercising a hub
// without a Minecraft server.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	pingInterval  = 30 * time.Second
	stateInterval = 60 * time.Second
	initialDelay  = 1 * time.Second
	maxDelay      = 30 * time.Second
	backoffFactor = 2
)

type Config struct {
	HubURL   string `mapstructure:"hub_url"`
	ServerID string `mapstructure:"server_id"`
	APIKey   string `mapstructure:"api_key"`
}

// CommandHandler is invoked for each whitelist command the hub pushes.
// action is "add" or "remove".
type CommandHandler func(action, username string)

type Client struct {
	config  Config
	handler CommandHandler

	stopCh chan struct{}
	doneCh chan struct{}

	reconnectDelay time.Duration

	mu        sync.Mutex
	whitelist map[string]bool
}

func NewClient(config Config, handler CommandHandler) *Client {
	return &Client{
		config:         config,
		handler:        handler,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
		reconnectDelay: initialDelay,
		whitelist:      make(map[string]bool),
	}
}

func (c *Client) Start() {
	go c.connectionLoop()
}

func (c *Client) Stop() {
	slog.Info("Stopping agent")
	close(c.stopCh)
	<-c.doneCh
	slog.Info("Agent stopped")
}

// Whitelist returns the usernames applied so far in this process.
func (c *Client) Whitelist() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.whitelist))
	for name := range c.whitelist {
		names = append(names, name)
	}
	return names
}

func (c *Client) connectionLoop() {
	defer close(c.doneCh)

	for {
		select {
		case <-c.stopCh:
			return
		default:
			if err := c.runSession(); err != nil {
				slog.Error("Session ended", "error", err, "retry_in", c.reconnectDelay)
			}

			select {
			case <-c.stopCh:
				return
			case <-time.After(c.reconnectDelay):
				c.increaseReconnectDelay()
			}
		}
	}
}

func (c *Client) increaseReconnectDelay() {
	c.reconnectDelay *= backoffFactor
	if c.reconnectDelay > maxDelay {
		c.reconnectDelay = maxDelay
	}
}

// runSession dials, authenticates, and pumps frames until the socket or the
// client closes.
func (c *Client) runSession() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-c.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	slog.Info("Connecting to hub", "url", c.config.HubURL, "server_id", c.config.ServerID)

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.Dial(dialCtx, c.config.HubURL, nil)
	dialCancel()
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := c.authenticate(ctx, conn); err != nil {
		return err
	}

	c.reconnectDelay = initialDelay
	slog.Info("Authenticated", "server_id", c.config.ServerID)

	c.send(ctx, conn, map[string]any{
		"type": "event", "eventType": "agent_start",
		"payload": map[string]any{"serverId": c.config.ServerID},
	})

	go c.heartbeatLoop(ctx, conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		c.handleFrame(data)
	}
}

func (c *Client) authenticate(ctx context.Context, conn *websocket.Conn) error {
	err := c.send(ctx, conn, map[string]any{
		"type":     "auth",
		"serverId": c.config.ServerID,
		"apiKey":   c.config.APIKey,
	})
	if err != nil {
		return err
	}

	readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, data, err := conn.Read(readCtx)
	if err != nil {
		return fmt.Errorf("read auth result: %w", err)
	}

	var result struct {
		Type  string `json:"type"`
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("parse auth result: %w", err)
	}
	if result.Type != "auth_result" || !result.OK {
		return fmt.Errorf("authentication rejected: %s", result.Error)
	}
	return nil
}

func (c *Client) heartbeatLoop(ctx context.Context, conn *websocket.Conn) {
	ping := time.NewTicker(pingInterval)
	state := time.NewTicker(stateInterval)
	defer ping.Stop()
	defer state.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			c.send(ctx, conn, map[string]any{"type": "ping"})
		case <-state.C:
			c.mu.Lock()
			count := len(c.whitelist)
			c.mu.Unlock()
			c.send(ctx, conn, map[string]any{
				"type":    "state",
				"payload": map[string]any{"whitelistSize": count, "online": 0},
			})
		}
	}
}

func (c *Client) send(ctx context.Context, conn *websocket.Conn, frame map[string]any) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func (c *Client) handleFrame(data []byte) {
	var frame struct {
		Type     string `json:"type"`
		Username string `json:"username"`
		TS       int64  `json:"ts"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		slog.Debug("Dropping unparseable frame", "error", err)
		return
	}

	switch frame.Type {
	case "pong":
		slog.Debug("Pong", "ts", frame.TS)
	case "whitelist_add":
		slog.Info("Whitelist add", "username", frame.Username)
		c.mu.Lock()
		c.whitelist[frame.Username] = true
		c.mu.Unlock()
		if c.handler != nil {
			c.handler("add", frame.Username)
		}
	case "whitelist_remove":
		slog.Info("Whitelist remove", "username", frame.Username)
		c.mu.Lock()
		delete(c.whitelist, frame.Username)
		c.mu.Unlock()
		if c.handler != nil {
			c.handler("remove", frame.Username)
		}
	default:
		slog.Debug("Ignoring frame", "type", frame.Type)
	}
}
