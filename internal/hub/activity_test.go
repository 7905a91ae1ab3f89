package hub

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivity_RecordAndGetEvents(t *testing.T) {
	a := NewActivity()

	a.RecordEvent("alpha", "connected", nil)
	a.RecordEvent("alpha", "player_join", map[string]interface{}{"player": "Steve"})

	events := a.GetEvents("alpha", 0)
	require.Len(t, events, 2)
	assert.Equal(t, "connected", events[0].Type)
	assert.Equal(t, "player_join", events[1].Type)
	assert.Equal(t, "Steve", events[1].Payload["player"])

	// Missing type and payload get defaults.
	a.RecordEvent("alpha", "", nil)
	events = a.GetEvents("alpha", 0)
	require.Len(t, events, 3)
	assert.Equal(t, "unknown", events[2].Type)
	assert.NotNil(t, events[2].Payload)
}

func TestActivity_RingBufferTrimsFront(t *testing.T) {
	a := NewActivity()

	for i := 0; i < 600; i++ {
		a.RecordEvent("alpha", fmt.Sprintf("event-%d", i), nil)
	}

	events := a.GetEvents("alpha", maxEventsPerServer)
	require.Len(t, events, maxEventsPerServer)

	// The earliest 100 are gone; the kept window is [100, 600).
	assert.Equal(t, "event-100", events[0].Type)
	assert.Equal(t, "event-599", events[len(events)-1].Type)
}

func TestActivity_GetEventsLimit(t *testing.T) {
	a := NewActivity()

	for i := 0; i < 250; i++ {
		a.RecordEvent("alpha", fmt.Sprintf("event-%d", i), nil)
	}

	// Default limit of 100 when non-positive.
	events := a.GetEvents("alpha", 0)
	require.Len(t, events, 100)
	assert.Equal(t, "event-150", events[0].Type)
	assert.Equal(t, "event-249", events[len(events)-1].Type)

	events = a.GetEvents("alpha", -5)
	assert.Len(t, events, 100)

	events = a.GetEvents("alpha", 10)
	require.Len(t, events, 10)
	assert.Equal(t, "event-240", events[0].Type)

	// A limit above the cap is clamped to the cap.
	events = a.GetEvents("alpha", 10000)
	assert.Len(t, events, 250)
}

func TestActivity_GetEventsUnknownServer(t *testing.T) {
	a := NewActivity()
	assert.Empty(t, a.GetEvents("ghost", 0))
}

func TestActivity_StateOverwrite(t *testing.T) {
	a := NewActivity()

	_, ok := a.GetState("alpha")
	assert.False(t, ok)

	a.SetState("alpha", map[string]interface{}{"online": 5})
	snapshot, ok := a.GetState("alpha")
	require.True(t, ok)
	assert.Equal(t, 5, snapshot.Payload["online"])

	a.SetState("alpha", map[string]interface{}{"online": 7})
	snapshot, ok = a.GetState("alpha")
	require.True(t, ok)
	assert.Equal(t, 7, snapshot.Payload["online"])
	assert.Len(t, snapshot.Payload, 1)

	// Nil payload is stored as an empty object.
	a.SetState("alpha", nil)
	snapshot, ok = a.GetState("alpha")
	require.True(t, ok)
	assert.NotNil(t, snapshot.Payload)
	assert.Empty(t, snapshot.Payload)
}

func TestActivity_TenantIsolation(t *testing.T) {
	a := NewActivity()

	a.RecordEvent("alpha", "alpha_event", nil)
	a.RecordEvent("beta", "beta_event", nil)
	a.SetState("alpha", map[string]interface{}{"online": 1})

	alphaEvents := a.GetEvents("alpha", 0)
	require.Len(t, alphaEvents, 1)
	assert.Equal(t, "alpha_event", alphaEvents[0].Type)

	betaEvents := a.GetEvents("beta", 0)
	require.Len(t, betaEvents, 1)
	assert.Equal(t, "beta_event", betaEvents[0].Type)

	_, ok := a.GetState("beta")
	assert.False(t, ok)
}

func TestActivity_ConcurrentTenants(t *testing.T) {
	a := NewActivity()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			serverID := fmt.Sprintf("server-%d", id)
			for j := 0; j < 600; j++ {
				a.RecordEvent(serverID, "tick", nil)
				if j%10 == 0 {
					a.SetState(serverID, map[string]interface{}{"tick": j})
				}
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		serverID := fmt.Sprintf("server-%d", i)
		assert.Len(t, a.GetEvents(serverID, maxEventsPerServer), maxEventsPerServer)
		_, ok := a.GetState(serverID)
		assert.True(t, ok)
	}
}
