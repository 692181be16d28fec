// Package inspect exposes read-only HTTP endpoints for observing lobby
// state: a health probe and a room listing. It never mutates anything.
package inspect

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/duelyard/lobby/internal/lobby"
)

// Handler serves the inspection endpoints.
type Handler struct {
	rooms  *lobby.RoomRegistry
	logger *zap.Logger
}

func NewHandler(rooms *lobby.RoomRegistry, logger *zap.Logger) *Handler {
	return &Handler{rooms: rooms, logger: logger}
}

// Register mounts the inspection routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /rooms", h.handleRooms)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type roomsResponse struct {
	Count int              `json:"count"`
	Rooms []lobby.RoomInfo `json:"rooms"`
}

func (h *Handler) handleRooms(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.rooms.Snapshot()
	resp := roomsResponse{Count: len(snapshot), Rooms: snapshot}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Warn("writing rooms response", zap.Error(err))
	}
}
