// Package ws binds the lobby core to WebSocket connections: it upgrades
// HTTP requests, runs per-connection read/write pumps, decodes inbound
// events into coordinator calls, and implements the lobby.EventRouter by
// fanning outbound events out to connection send queues and room-scoped
// broadcast groups.
package ws

import "encoding/json"

// Inbound event names accepted from clients. The disconnecting/disconnect
// pair is transport-triggered and has no inbound envelope.
const (
	eventHandshake  = "handshake"
	eventCreateRoom = "create_room"
	eventJoinRoom   = "join_room"
	eventLeaveRoom  = "leave_room"
)

// envelope is the wire form of one event: a JSON object per text frame,
// identical in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// outEnvelope is the outbound counterpart; Data carries the payload value
// directly so it is marshalled in place.
type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// encodeEvent marshals one outbound event frame. A nil payload produces a
// bare event with no data field.
func encodeEvent(event string, payload any) ([]byte, error) {
	return json.Marshal(outEnvelope{Event: event, Data: payload})
}

// decodeString extracts a JSON string payload.
func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
