package service

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/pkg"
)

const maxRoomIDAttempts = 16

// RoomRegistry maps room ids to rooms.
//
// A room lock may be held while calling into the registry, the registry never locks a room while
// holding its own lock.
type RoomRegistry struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]*entity.Room

	generateID func() (string, error)
}

type RegistryOption func(*RoomRegistry)

// WithRoomIDGenerator replaces the random room id source.
func WithRoomIDGenerator(generate func() (string, error)) RegistryOption {
	return func(registry *RoomRegistry) {
		registry.generateID = generate
	}
}

func NewRoomRegistry(logger *slog.Logger, opts ...RegistryOption) *RoomRegistry {
	registry := &RoomRegistry{
		logger:     logger.With("component", "registry"),
		rooms:      make(map[string]*entity.Room),
		generateID: pkg.GenerateRoomID,
	}

	for _, opt := range opts {
		opt(registry)
	}

	return registry
}

// Create registers a waiting room owned by creatorID under a fresh id.
func (that *RoomRegistry) Create(creatorID string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for range maxRoomIDAttempts {
		roomID, err := that.generateID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate room id: %w", err)
		}

		if _, taken := that.rooms[roomID]; taken {
			continue
		}

		room := entity.NewRoom(roomID, creatorID)
		that.rooms[roomID] = room

		that.logger.Debug("room registered", "roomID", roomID, "rooms", len(that.rooms))

		return room, nil
	}

	that.logger.Warn("no free room id", "attempts", maxRoomIDAttempts, "rooms", len(that.rooms))

	return nil, apperror.ErrRoomIDSpace
}

func (that *RoomRegistry) Get(roomID string) (*entity.Room, error) {
	that.mu.RLock()
	room, ok := that.rooms[roomID]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return room, nil
}

// Delete removes roomID and reports whether it was registered.
func (that *RoomRegistry) Delete(roomID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.rooms[roomID]; !ok {
		return false
	}

	delete(that.rooms, roomID)

	that.logger.Debug("room unregistered", "roomID", roomID, "rooms", len(that.rooms))

	return true
}

// FindByPlayer returns the open room playerID belongs to. The caller must not hold any room lock.
func (that *RoomRegistry) FindByPlayer(playerID string) (*entity.Room, error) {
	that.mu.RLock()
	rooms := make([]*entity.Room, 0, len(that.rooms))
	for _, room := range that.rooms {
		rooms = append(rooms, room)
	}
	that.mu.RUnlock()

	for _, room := range rooms {
		room.Mu.Lock()
		member := !room.IsClosed() && room.HasPlayer(playerID)
		room.Mu.Unlock()

		if member {
			return room, nil
		}
	}

	return nil, fmt.Errorf("%w: no room for player %s", apperror.ErrRoomNotFound, playerID)
}

func (that *RoomRegistry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// IDs returns the registered room ids in lexical order.
func (that *RoomRegistry) IDs() []string {
	that.mu.RLock()
	ids := make([]string, 0, len(that.rooms))
	for id := range that.rooms {
		ids = append(ids, id)
	}
	that.mu.RUnlock()

	sort.Strings(ids)

	return ids
}
