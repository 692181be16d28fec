package ws

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/duelyard/lobby/internal/config"
	"github.com/duelyard/lobby/internal/lobby"
)

// Hub owns every live connection and the room-scoped broadcast groups,
// and implements lobby.EventRouter on top of them. Group membership is
// transport state, deliberately separate from the Room entity's seats.
type Hub struct {
	cfg      config.WebsocketConfig
	logger   *zap.Logger
	upgrader websocket.Upgrader
	coord    *lobby.Coordinator

	mu      sync.RWMutex
	clients map[string]*client         // connection id → client
	groups  map[string]map[string]bool // room id → set of connection ids
}

// NewHub creates a Hub. Bind must be called before the first upgrade.
//
// Precondition: logger must be non-nil.
func NewHub(cfg config.WebsocketConfig, logger *zap.Logger) *Hub {
	return &Hub{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// The lobby has no cookie auth; cross-origin clients are expected.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
		groups:  make(map[string]map[string]bool),
	}
}

// Bind wires the coordinator that inbound events dispatch into. The hub
// and coordinator reference each other (the coordinator routes outbound
// events through the hub), so the pair is tied together after both exist.
//
// Precondition: coord must be non-nil; must be called before ServeWS.
func (h *Hub) Bind(coord *lobby.Coordinator) {
	h.coord = coord
}

// ServeWS upgrades the request and starts the connection's pumps. Each
// connection gets a fresh opaque id; the core never sees the socket.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	sock, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		sock: sock,
		send: make(chan []byte, h.cfg.SendQueueSize),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()

	h.logger.Info("connection established",
		zap.String("conn_id", c.id),
		zap.String("remote", r.RemoteAddr),
	)
}

// drop runs disconnect cleanup for a connection whose read pump has
// exited: room cleanup first (while the connection is still group-joined,
// mirroring the transport's disconnecting event), then identity release,
// then transport deregistration.
func (h *Hub) drop(c *client) {
	h.coord.Disconnecting(c.id, h.groupsOf(c.id))
	h.coord.Disconnect(c.id)

	h.mu.Lock()
	if current, ok := h.clients[c.id]; ok && current == c {
		delete(h.clients, c.id)
	}
	for roomID, members := range h.groups {
		delete(members, c.id)
		if len(members) == 0 {
			delete(h.groups, roomID)
		}
	}
	h.mu.Unlock()

	c.shutdown()

	h.logger.Info("connection closed", zap.String("conn_id", c.id))
}

// groupsOf returns the room groups the connection is currently joined to.
func (h *Hub) groupsOf(connID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []string
	for roomID, members := range h.groups {
		if members[connID] {
			out = append(out, roomID)
		}
	}
	return out
}

// SendTo implements lobby.EventRouter. The frame is encoded once and
// enqueued per target; targets with a full queue or no live connection
// are skipped.
func (h *Hub) SendTo(event string, connIDs []string, payload any) {
	if len(connIDs) == 0 {
		return
	}
	data, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("encoding outbound event",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, connID := range connIDs {
		h.enqueueLocked(connID, event, data)
	}
}

// SendToRoom implements lobby.EventRouter for room-scoped broadcast.
func (h *Hub) SendToRoom(event string, roomID string, payload any) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		h.logger.Error("encoding outbound event",
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for connID := range h.groups[roomID] {
		h.enqueueLocked(connID, event, data)
	}
}

// enqueueLocked delivers one frame to one connection's queue without
// blocking. Caller holds h.mu (read or write).
func (h *Hub) enqueueLocked(connID, event string, data []byte) {
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer: drop the event rather than stall the core.
		h.logger.Warn("send queue full, dropping event",
			zap.String("conn_id", connID),
			zap.String("event", event),
		)
	}
}

// JoinGroup implements lobby.EventRouter.
func (h *Hub) JoinGroup(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groups[roomID] == nil {
		h.groups[roomID] = make(map[string]bool)
	}
	h.groups[roomID][connID] = true
}

// LeaveGroup implements lobby.EventRouter.
func (h *Hub) LeaveGroup(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.groups[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.groups, roomID)
	}
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop closes every live connection and clears all transport state.
func (h *Hub) Stop() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*client)
	h.groups = make(map[string]map[string]bool)
	h.mu.Unlock()

	for _, c := range clients {
		c.shutdown()
		_ = c.sock.Close()
	}

	h.logger.Info("hub stopped", zap.Int("connections_closed", len(clients)))
}
