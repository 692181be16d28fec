// Package testutil provides test helpers for exercising the lobby server
// over its WebSocket wire protocol.
package testutil

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

const defaultReadWait = 3 * time.Second

// eventFrame mirrors the wire envelope: one JSON object per text frame.
type eventFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WSClient is a WebSocket test client for integration testing.
type WSClient struct {
	conn *websocket.Conn
	t    *testing.T
}

// DialWS connects to a lobby server and returns a test client. serverURL
// may use an http scheme; it is rewritten to ws.
//
// Precondition: serverURL must point at a listening WebSocket endpoint.
// Postcondition: Returns a connected WSClient or fails the test.
func DialWS(t *testing.T, serverURL string) *WSClient {
	t.Helper()
	start := time.Now()

	url := "ws" + strings.TrimPrefix(serverURL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("connecting to %s: %v [%s]", url, err, time.Since(start))
	}

	t.Cleanup(func() {
		conn.Close()
	})

	t.Logf("ws client connected to %s [%s]", url, time.Since(start))
	return &WSClient{conn: conn, t: t}
}

// Send writes one event frame to the server.
//
// Precondition: data must be JSON-marshalable.
// Postcondition: The frame is written to the connection.
func (c *WSClient) Send(event string, data any) {
	c.t.Helper()
	frame, err := json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: event, Data: data})
	if err != nil {
		c.t.Fatalf("marshaling %q frame: %v", event, err)
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.t.Fatalf("sending %q: %v", event, err)
	}
}

// SendRaw writes an arbitrary text frame, bypassing envelope encoding.
func (c *WSClient) SendRaw(data []byte) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.t.Fatalf("sending raw frame: %v", err)
	}
}

// Next reads the next event frame from the server.
//
// Postcondition: Returns the event name and raw payload, or fails on
// timeout or a malformed frame.
func (c *WSClient) Next() (string, json.RawMessage) {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(defaultReadWait))
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("reading frame: %v", err)
	}
	var frame eventFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.t.Fatalf("decoding frame %q: %v", data, err)
	}
	return frame.Event, frame.Data
}

// Expect reads frames until one with the given event name arrives,
// discarding everything else, and returns its raw payload.
//
// Precondition: event must be non-empty.
// Postcondition: Returns the payload of the matching frame, or fails on
// timeout.
func (c *WSClient) Expect(event string) json.RawMessage {
	c.t.Helper()
	for {
		got, data := c.Next()
		if got == event {
			return data
		}
	}
}

// ExpectInto reads frames until event arrives and unmarshals its payload
// into out.
func (c *WSClient) ExpectInto(event string, out any) {
	c.t.Helper()
	data := c.Expect(event)
	if err := json.Unmarshal(data, out); err != nil {
		c.t.Fatalf("decoding %q payload %q: %v", event, data, err)
	}
}

// Close closes the underlying connection.
func (c *WSClient) Close() {
	c.conn.Close()
}
