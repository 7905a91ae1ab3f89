package hub

import (
	"sync"
	"time"
)

const (
	// maxEventsPerServer bounds each tenant's event log; the oldest entries
	// are trimmed from the front once the cap is exceeded.
	maxEventsPerServer = 500
	defaultEventLimit  = 100
)

// Event is one discrete occurrence reported for a tenant: connect,
// disconnect, or an application event relayed by the agent.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
}

// StateSnapshot is the latest state reported by a tenant's agent. It is
// overwritten in place on every state frame; no history is kept.
type StateSnapshot struct {
	ReceivedAt time.Time              `json:"receivedAt"`
	Payload    map[string]interface{} `json:"payload"`
}

type serverActivity struct {
	mu     sync.Mutex
	events []Event
	state  *StateSnapshot
}

// Activity holds the per-tenant state cell and bounded event log. Each
// tenant's record carries its own lock, so sessions for unrelated tenants
// never contend.
type Activity struct {
	mu      sync.Mutex
	servers map[string]*serverActivity
}

func NewActivity() *Activity {
	return &Activity{servers: make(map[string]*serverActivity)}
}

func (a *Activity) forServer(serverID string) *serverActivity {
	a.mu.Lock()
	defer a.mu.Unlock()
	sa, ok := a.servers[serverID]
	if !ok {
		sa = &serverActivity{}
		a.servers[serverID] = sa
	}
	return sa
}

// RecordEvent appends an event to the tenant's log, trimming the front once
// the cap is exceeded.
func (a *Activity) RecordEvent(serverID, eventType string, payload map[string]interface{}) {
	if eventType == "" {
		eventType = "unknown"
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}

	sa := a.forServer(serverID)
	sa.mu.Lock()
	defer sa.mu.Unlock()

	sa.events = append(sa.events, Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Payload:   payload,
	})
	if len(sa.events) > maxEventsPerServer {
		sa.events = sa.events[len(sa.events)-maxEventsPerServer:]
	}
}

// SetState overwrites the tenant's latest state snapshot.
func (a *Activity) SetState(serverID string, payload map[string]interface{}) {
	if payload == nil {
		payload = map[string]interface{}{}
	}

	sa := a.forServer(serverID)
	sa.mu.Lock()
	defer sa.mu.Unlock()

	sa.state = &StateSnapshot{ReceivedAt: time.Now(), Payload: payload}
}

// GetState returns the tenant's latest state snapshot, if one was reported.
func (a *Activity) GetState(serverID string) (StateSnapshot, bool) {
	sa := a.forServer(serverID)
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if sa.state == nil {
		return StateSnapshot{}, false
	}
	return *sa.state, true
}

// GetEvents returns up to min(limit, 500) of the tenant's most recent events,
// oldest-kept-first. A non-positive limit falls back to the default of 100.
func (a *Activity) GetEvents(serverID string, limit int) []Event {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventsPerServer {
		limit = maxEventsPerServer
	}

	sa := a.forServer(serverID)
	sa.mu.Lock()
	defer sa.mu.Unlock()

	start := len(sa.events) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Event, len(sa.events)-start)
	copy(out, sa.events[start:])
	return out
}
