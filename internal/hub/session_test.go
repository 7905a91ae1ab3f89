package hub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelisthub/whitelist-hub/internal/credentials"
)

type fakeCreds struct {
	keys map[string]string
	err  error
}

func (f *fakeCreds) GetAPIKey(_ context.Context, serverID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key, ok := f.keys[serverID]
	if !ok {
		return "", credentials.ErrServerNotConfigured
	}
	return key, nil
}

func newTestHub(keys map[string]string) *Hub {
	return New(&fakeCreds{keys: keys})
}

func authenticate(t *testing.T, h *Hub, conn Conn, serverID, apiKey string) {
	t.Helper()
	h.HandleMessage(context.Background(), conn,
		[]byte(`{"type":"auth","serverId":"`+serverID+`","apiKey":"`+apiKey+`"}`))
}

func TestSession_PingBeforeAuth(t *testing.T) {
	h := newTestHub(nil)
	conn := newFakeConn()

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"ping"}`))

	frames := conn.frames()
	require.Len(t, frames, 1)
	pong, ok := frames[0].(pongFrame)
	require.True(t, ok)
	assert.Equal(t, FrameTypePong, pong.Type)
	assert.Greater(t, pong.TS, int64(0))
	assert.False(t, conn.isClosed())
}

func TestSession_AuthSuccess(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()

	authenticate(t, h, conn, "alpha", "sk_secret")

	frames := conn.frames()
	require.Len(t, frames, 1)
	result, ok := frames[0].(authResultFrame)
	require.True(t, ok)
	assert.True(t, result.OK)
	assert.Empty(t, result.Error)
	assert.False(t, conn.isClosed())

	tenants := h.ListTenants()
	require.Len(t, tenants, 1)
	assert.Equal(t, "alpha", tenants[0].ServerID)

	events := h.GetEvents("alpha", 0)
	require.Len(t, events, 1)
	assert.Equal(t, "connected", events[0].Type)
}

func TestSession_AuthDefaultServerID(t *testing.T) {
	h := newTestHub(map[string]string{"default": "sk_secret"})
	conn := newFakeConn()

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"auth","apiKey":"sk_secret"}`))

	result, ok := conn.lastFrame().(authResultFrame)
	require.True(t, ok)
	assert.True(t, result.OK)

	tenants := h.ListTenants()
	require.Len(t, tenants, 1)
	assert.Equal(t, "default", tenants[0].ServerID)
}

func TestSession_AuthServerNotConfigured(t *testing.T) {
	h := newTestHub(nil)
	conn := newFakeConn()

	authenticate(t, h, conn, "ghost", "sk_anything")

	result, ok := conn.lastFrame().(authResultFrame)
	require.True(t, ok)
	assert.False(t, result.OK)
	assert.Equal(t, ErrCodeServerNotConfigured, result.Error)
	assert.True(t, conn.isClosed())
	assert.Empty(t, h.ListTenants())
}

func TestSession_AuthInvalidKey(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()

	authenticate(t, h, conn, "alpha", "sk_wrong")

	result, ok := conn.lastFrame().(authResultFrame)
	require.True(t, ok)
	assert.False(t, result.OK)
	assert.Equal(t, ErrCodeInvalidKey, result.Error)
	assert.True(t, conn.isClosed())
	assert.Empty(t, h.ListTenants())
}

func TestSession_AuthEmptyKey(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"auth","serverId":"alpha"}`))

	result, ok := conn.lastFrame().(authResultFrame)
	require.True(t, ok)
	assert.False(t, result.OK)
	assert.Equal(t, ErrCodeInvalidKey, result.Error)
	assert.True(t, conn.isClosed())
}

func TestSession_FramesBeforeAuthRejected(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"event","eventType":"player_join"}`))
	h.HandleMessage(context.Background(), conn, []byte(`{"type":"state","payload":{"online":5}}`))

	frames := conn.frames()
	require.Len(t, frames, 2)
	for _, f := range frames {
		errFrame, ok := f.(errorFrame)
		require.True(t, ok)
		assert.Equal(t, ErrCodeNotAuthenticated, errFrame.Error)
	}

	// Connection stays open so the agent can still authenticate, and no
	// tenant buffer was touched.
	assert.False(t, conn.isClosed())
	assert.Empty(t, h.GetEvents("alpha", 0))
	_, ok := h.GetState("alpha")
	assert.False(t, ok)

	authenticate(t, h, conn, "alpha", "sk_secret")
	result, ok := conn.lastFrame().(authResultFrame)
	require.True(t, ok)
	assert.True(t, result.OK)
}

func TestSession_EventAfterAuth(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()
	authenticate(t, h, conn, "alpha", "sk_secret")

	h.HandleMessage(context.Background(), conn,
		[]byte(`{"type":"event","eventType":"player_join","payload":{"player":"Steve"}}`))
	h.HandleMessage(context.Background(), conn, []byte(`{"type":"event"}`))

	events := h.GetEvents("alpha", 0)
	require.Len(t, events, 3) // connected + 2 reported
	assert.Equal(t, "player_join", events[1].Type)
	assert.Equal(t, "Steve", events[1].Payload["player"])
	assert.Equal(t, "unknown", events[2].Type)
	assert.NotNil(t, events[2].Payload)

	// Telemetry frames get no response.
	assert.Len(t, conn.frames(), 1)
}

func TestSession_StateAfterAuth(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()
	authenticate(t, h, conn, "alpha", "sk_secret")

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"state","payload":{"online":5}}`))

	snapshot, ok := h.GetState("alpha")
	require.True(t, ok)
	assert.Equal(t, float64(5), snapshot.Payload["online"])

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"state","payload":{"online":2}}`))

	snapshot, ok = h.GetState("alpha")
	require.True(t, ok)
	assert.Equal(t, float64(2), snapshot.Payload["online"])
	assert.Len(t, snapshot.Payload, 1)
}

func TestSession_MalformedFramesDropped(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()

	h.HandleMessage(context.Background(), conn, []byte(`not json`))
	h.HandleMessage(context.Background(), conn, []byte(`"just a string"`))
	h.HandleMessage(context.Background(), conn, []byte(`42`))
	h.HandleMessage(context.Background(), conn, []byte(`null`))
	h.HandleMessage(context.Background(), conn, []byte(`{}`))
	h.HandleMessage(context.Background(), conn, []byte(`{"type":42}`))
	h.HandleMessage(context.Background(), conn, []byte(`{"type":null}`))

	assert.Empty(t, conn.frames())
	assert.False(t, conn.isClosed())
}

func TestSession_NonObjectPayloadDefaultsToEmpty(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()
	authenticate(t, h, conn, "alpha", "sk_secret")

	// A payload of the wrong JSON type must not drop the frame; it is
	// recorded with an empty object instead.
	h.HandleMessage(context.Background(), conn,
		[]byte(`{"type":"event","eventType":"player_join","payload":"not-an-object"}`))

	events := h.GetEvents("alpha", 0)
	require.Len(t, events, 2) // connected + player_join
	assert.Equal(t, "player_join", events[1].Type)
	assert.NotNil(t, events[1].Payload)
	assert.Empty(t, events[1].Payload)

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"state","payload":42}`))

	snapshot, ok := h.GetState("alpha")
	require.True(t, ok)
	assert.NotNil(t, snapshot.Payload)
	assert.Empty(t, snapshot.Payload)
}

func TestSession_AuthNonStringFields(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret", "default": "sk_default"})

	// A non-string apiKey is an invalid key, not a malformed frame.
	conn := newFakeConn()
	h.HandleMessage(context.Background(), conn, []byte(`{"type":"auth","serverId":"alpha","apiKey":123}`))

	result, ok := conn.lastFrame().(authResultFrame)
	require.True(t, ok)
	assert.False(t, result.OK)
	assert.Equal(t, ErrCodeInvalidKey, result.Error)
	assert.True(t, conn.isClosed())

	// A non-string serverId falls back to the default tenant.
	conn2 := newFakeConn()
	h.HandleMessage(context.Background(), conn2,
		[]byte(`{"type":"auth","serverId":{"nested":true},"apiKey":"sk_default"}`))

	result, ok = conn2.lastFrame().(authResultFrame)
	require.True(t, ok)
	assert.True(t, result.OK)

	tenants := h.ListTenants()
	require.Len(t, tenants, 1)
	assert.Equal(t, "default", tenants[0].ServerID)
}

func TestSession_UnknownFrameAfterAuthIgnored(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()
	authenticate(t, h, conn, "alpha", "sk_secret")

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"bogus"}`))

	// Only the auth_result frame; unknown types are dropped once authed.
	assert.Len(t, conn.frames(), 1)
}

func TestSession_DisconnectRecordsEvent(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn := newFakeConn()
	authenticate(t, h, conn, "alpha", "sk_secret")

	h.HandleDisconnect(conn)

	events := h.GetEvents("alpha", 0)
	require.Len(t, events, 2)
	assert.Equal(t, "disconnected", events[1].Type)
	assert.Empty(t, h.ListTenants())

	// Idempotent: a second close changes nothing.
	h.HandleDisconnect(conn)
	assert.Len(t, h.GetEvents("alpha", 0), 2)
}

func TestSession_DisconnectNeverAuthenticated(t *testing.T) {
	h := newTestHub(nil)
	conn := newFakeConn()

	h.HandleDisconnect(conn)

	assert.Empty(t, h.ListTenants())
}

func TestSession_ReconnectSupersedesOldConnection(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_secret"})
	conn1 := newFakeConn()
	conn2 := newFakeConn()

	authenticate(t, h, conn1, "alpha", "sk_secret")
	authenticate(t, h, conn2, "alpha", "sk_secret")

	// Routing already points at the new connection.
	assert.True(t, h.SendWhitelistAdd("alpha", "Steve"))
	assert.Empty(t, conn1.frames()[1:])
	assert.Len(t, conn2.frames(), 2)

	// Closing the superseded connection must not unroute the tenant.
	h.HandleDisconnect(conn1)
	assert.True(t, h.Connected("alpha"))
	assert.True(t, h.SendWhitelistAdd("alpha", "Alex"))
}

func TestSession_TwoTenantsIsolated(t *testing.T) {
	h := newTestHub(map[string]string{"alpha": "sk_a", "beta": "sk_b"})
	connA := newFakeConn()
	connB := newFakeConn()

	authenticate(t, h, connA, "alpha", "sk_a")
	authenticate(t, h, connB, "beta", "sk_b")

	h.HandleMessage(context.Background(), connA,
		[]byte(`{"type":"event","eventType":"alpha_only"}`))

	for _, e := range h.GetEvents("beta", 0) {
		assert.NotEqual(t, "alpha_only", e.Type)
	}
	assert.Len(t, h.ListTenants(), 2)
}
