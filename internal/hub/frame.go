package hub

import "encoding/json"

// Frame type discriminators for the agent wire protocol. Each frame is one
// JSON object on the WebSocket, with Type selecting the variant.
const (
	FrameTypePing            = "ping"
	FrameTypePong            = "pong"
	FrameTypeAuth            = "auth"
	FrameTypeAuthResult      = "auth_result"
	FrameTypeEvent           = "event"
	FrameTypeState           = "state"
	FrameTypeError           = "error"
	FrameTypeWhitelistAdd    = "whitelist_add"
	FrameTypeWhitelistRemove = "whitelist_remove"
)

// Protocol error codes carried in auth_result and error frames.
const (
	ErrCodeServerNotConfigured = "server_not_configured"
	ErrCodeInvalidKey          = "invalid_key"
	ErrCodeNotAuthenticated    = "not_authenticated"
)

// Frame is the superset of all inbound agent frames. Unknown fields are
// ignored; which fields are meaningful depends on Type.
type Frame struct {
	Type      string
	ServerID  string
	APIKey    string
	EventType string
	Payload   map[string]interface{}
}

// decodeFrame parses one inbound message. A nil frame means the message was
// malformed or not a JSON object and must be silently dropped.
//
// Fields are coerced, not validated: a field of the wrong JSON type falls
// back to its zero value (empty string, nil payload) instead of poisoning
// the whole frame. Only frame-level malformation or a missing/non-string
// type drops the message.
func decodeFrame(data []byte) *Frame {
	var raw struct {
		Type      json.RawMessage `json:"type"`
		ServerID  json.RawMessage `json:"serverId"`
		APIKey    json.RawMessage `json:"apiKey"`
		EventType json.RawMessage `json:"eventType"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	frameType := stringField(raw.Type)
	if frameType == "" {
		return nil
	}

	return &Frame{
		Type:      frameType,
		ServerID:  stringField(raw.ServerID),
		APIKey:    stringField(raw.APIKey),
		EventType: stringField(raw.EventType),
		Payload:   objectField(raw.Payload),
	}
}

func stringField(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func objectField(raw json.RawMessage) map[string]interface{} {
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

type pongFrame struct {
	Type string `json:"type"`
	TS   int64  `json:"ts"`
}

type authResultFrame struct {
	Type  string `json:"type"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type commandFrame struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	ServerID string `json:"serverId"`
}
