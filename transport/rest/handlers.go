package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)

	ListRooms(w http.ResponseWriter, _ *http.Request)
	GetRoom(w http.ResponseWriter, r *http.Request)
}

type roomRegistry interface {
	Get(roomID string) (*entity.Room, error)
	IDs() []string
}

type handlers struct {
	logger *slog.Logger
	rooms  roomRegistry
}

type roomList struct {
	Rooms []string `json:"rooms"`
	Count int      `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandlers(logger *slog.Logger, rooms roomRegistry) Handlers {
	return &handlers{
		logger: logger.With("component", "rest"),
		rooms:  rooms,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) ListRooms(w http.ResponseWriter, _ *http.Request) {
	ids := that.rooms.IDs()

	that.writeJSON(w, http.StatusOK, roomList{Rooms: ids, Count: len(ids)})
}

// GetRoom returns a snapshot of the room named by the {id} path segment.
func (that *handlers) GetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := that.rooms.Get(r.PathValue("id"))
	if errors.Is(err, apperror.ErrRoomNotFound) {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Room not found"})
		return
	}
	if err != nil {
		that.logger.Error("failed to get room", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		return
	}

	room.Mu.Lock()
	closed := room.IsClosed()
	snapshot := room.Snapshot()
	room.Mu.Unlock()

	if closed {
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "Room not found"})
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
