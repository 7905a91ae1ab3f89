package hub

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_SendWhitelistAdd(t *testing.T) {
	h := newTestHub(nil)
	conn := newFakeConn()
	h.registry.RegisterAuthenticated(conn, "alpha", time.Now())

	require.True(t, h.SendWhitelistAdd("alpha", "Steve"))

	frames := conn.frames()
	require.Len(t, frames, 1)
	cmd, ok := frames[0].(commandFrame)
	require.True(t, ok)
	assert.Equal(t, FrameTypeWhitelistAdd, cmd.Type)
	assert.Equal(t, "Steve", cmd.Username)
	assert.Equal(t, "alpha", cmd.ServerID)
}

func TestRouter_SendWhitelistRemove(t *testing.T) {
	h := newTestHub(nil)
	conn := newFakeConn()
	h.registry.RegisterAuthenticated(conn, "alpha", time.Now())

	require.True(t, h.SendWhitelistRemove("alpha", "Steve"))

	cmd, ok := conn.lastFrame().(commandFrame)
	require.True(t, ok)
	assert.Equal(t, FrameTypeWhitelistRemove, cmd.Type)
}

func TestRouter_NoConnection(t *testing.T) {
	h := newTestHub(nil)

	assert.False(t, h.SendWhitelistAdd("alpha", "Steve"))
	assert.False(t, h.SendWhitelistRemove("alpha", "Steve"))
}

func TestRouter_FallbackToAnyAuthenticated(t *testing.T) {
	h := newTestHub(nil)
	conn := newFakeConn()
	h.registry.RegisterAuthenticated(conn, "alpha", time.Now())

	// Legacy callers supply no server id; the command still routes to a
	// live connection.
	require.True(t, h.SendWhitelistAdd("", "Steve"))

	cmd, ok := conn.lastFrame().(commandFrame)
	require.True(t, ok)
	assert.Equal(t, "Steve", cmd.Username)
}

func TestRouter_SendFailure(t *testing.T) {
	h := newTestHub(nil)
	conn := newFakeConn()
	conn.sendErr = errors.New("broken pipe")
	h.registry.RegisterAuthenticated(conn, "alpha", time.Now())

	assert.False(t, h.SendWhitelistAdd("alpha", "Steve"))
}
