package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// client is one live WebSocket connection. The read pump is the only
// reader; the write pump is the only writer. Outbound frames pass through
// the buffered send queue so emission never blocks the coordinator.
type client struct {
	id        string
	hub       *Hub
	sock      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

// shutdown closes the send queue exactly once, which makes the write pump
// send a close frame and exit.
func (c *client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// readPump consumes inbound frames until the connection errors or closes,
// then runs disconnect cleanup. Liveness: any inbound traffic (including
// pongs) extends the read deadline.
func (c *client) readPump() {
	cfg := c.hub.cfg

	defer func() {
		c.hub.drop(c)
		_ = c.sock.Close()
	}()

	c.sock.SetReadLimit(cfg.MaxMessageSize)
	_ = c.sock.SetReadDeadline(time.Now().Add(cfg.PongWait))
	c.sock.SetPongHandler(func(string) error {
		return c.sock.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	for {
		messageType, message, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed",
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
			}
			return
		}
		_ = c.sock.SetReadDeadline(time.Now().Add(cfg.PongWait))

		if messageType == websocket.TextMessage {
			c.dispatch(message)
		}
	}
}

// dispatch decodes one inbound frame and routes it into the coordinator.
// Malformed frames are logged and dropped; they never reach the core.
func (c *client) dispatch(message []byte) {
	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		c.hub.logger.Warn("malformed inbound frame",
			zap.String("conn_id", c.id),
			zap.Error(err),
		)
		return
	}

	switch env.Event {
	case eventHandshake:
		identity, ok := decodeString(env.Data)
		if !ok {
			c.hub.logger.Warn("handshake with non-string payload", zap.String("conn_id", c.id))
			return
		}
		c.hub.coord.Handshake(c.id, identity)

	case eventCreateRoom:
		c.hub.coord.CreateRoom(c.id)

	case eventJoinRoom:
		roomID, ok := decodeString(env.Data)
		if !ok {
			c.hub.logger.Warn("join_room with non-string payload", zap.String("conn_id", c.id))
			return
		}
		c.hub.coord.JoinRoom(c.id, roomID)

	case eventLeaveRoom:
		roomID, ok := decodeString(env.Data)
		if !ok {
			c.hub.logger.Warn("leave_room with non-string payload", zap.String("conn_id", c.id))
			return
		}
		c.hub.coord.LeaveRoom(c.id, roomID)

	default:
		c.hub.logger.Debug("unknown inbound event",
			zap.String("conn_id", c.id),
			zap.String("event", env.Event),
		)
	}
}

// writePump drains the send queue onto the wire and pings on an interval.
// Exits when the send queue is closed or a write fails.
func (c *client) writePump() {
	cfg := c.hub.cfg

	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.sock.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				_ = c.sock.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
