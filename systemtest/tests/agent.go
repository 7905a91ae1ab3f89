package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
)

// TestAgentSession drives a real agent connection end to end: register a
// server, connect over WebSocket, authenticate with the generated key,
// report telemetry, and receive a whitelist command pushed through the
// service API.
func TestAgentSession(t *testing.T, router *gin.Engine, baseURL, token, serviceKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rr := doJSONWithToken(router, "POST", "/api/servers",
		dto.UpsertServerRequest{ID: "live-smp", Name: "Live SMP"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var server dto.ServerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &server))
	require.NotEmpty(t, server.APIKey)

	wsURL := "ws" + strings.TrimPrefix(baseURL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	send := func(frame any) {
		data, err := json.Marshal(frame)
		require.NoError(t, err)
		require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
	}
	recv := func() map[string]any {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	}

	t.Run("ping before auth", func(t *testing.T) {
		send(gin.H{"type": "ping"})
		frame := recv()
		assert.Equal(t, "pong", frame["type"])
		assert.NotZero(t, frame["ts"])
	})

	t.Run("authenticate", func(t *testing.T) {
		send(gin.H{"type": "auth", "serverId": "live-smp", "apiKey": server.APIKey})
		frame := recv()
		require.Equal(t, "auth_result", frame["type"])
		require.Equal(t, true, frame["ok"])
	})

	t.Run("connection visible to dashboard", func(t *testing.T) {
		require.Eventually(t, func() bool {
			rr := doJSONWithToken(router, "GET", "/api/connections", nil, token)
			if rr.Code != http.StatusOK {
				return false
			}
			var resp dto.ConnectionsResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				return false
			}
			for _, c := range resp.Connections {
				if c.ServerID == "live-smp" {
					return true
				}
			}
			return false
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("state and events reach the buffer", func(t *testing.T) {
		send(gin.H{"type": "state", "payload": gin.H{"online": 3, "max": 20}})
		send(gin.H{"type": "event", "eventType": "player_join", "payload": gin.H{"player": "Steve"}})

		require.Eventually(t, func() bool {
			rr := doJSONWithToken(router, "GET", "/api/servers/live-smp/state", nil, token)
			return rr.Code == http.StatusOK
		}, 5*time.Second, 50*time.Millisecond)

		rr := doJSONWithToken(router, "GET", "/api/servers/live-smp/state", nil, token)
		var state dto.StateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
		assert.Equal(t, float64(3), state.Payload["online"])

		require.Eventually(t, func() bool {
			rr := doJSONWithToken(router, "GET", "/api/servers/live-smp/events", nil, token)
			if rr.Code != http.StatusOK {
				return false
			}
			var events dto.EventsResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &events); err != nil {
				return false
			}
			for _, e := range events.Events {
				if e.Type == "player_join" {
					return true
				}
			}
			return false
		}, 5*time.Second, 50*time.Millisecond)
	})

	t.Run("whitelist command pushed to agent", func(t *testing.T) {
		body := dto.WhitelistCommandRequest{ServerID: "live-smp", Username: "Steve"}
		rr := doJSONWithAPIKey(router, "POST", "/api/whitelist", body, serviceKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.WhitelistCommandResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.True(t, resp.Delivered)

		frame := recv()
		assert.Equal(t, "whitelist_add", frame["type"])
		assert.Equal(t, "Steve", frame["username"])
		assert.Equal(t, "live-smp", frame["serverId"])
	})

	t.Run("disconnect unregisters the tenant", func(t *testing.T) {
		require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

		require.Eventually(t, func() bool {
			rr := doJSONWithToken(router, "GET", "/api/connections", nil, token)
			if rr.Code != http.StatusOK {
				return false
			}
			var resp dto.ConnectionsResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				return false
			}
			for _, c := range resp.Connections {
				if c.ServerID == "live-smp" {
					return false
				}
			}
			return true
		}, 5*time.Second, 50*time.Millisecond)
	})
}
