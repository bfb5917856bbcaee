package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/notifier"
)

// Session is one connected participant. Its id doubles as the player id.
type Session interface {
	ID() string
	Send(event *entity.Event)
}

type sessionDirectory interface {
	Lookup(sessionID string) (Session, bool)
}

type roomRegistry interface {
	Create(creatorID string) (*entity.Room, error)
	Get(roomID string) (*entity.Room, error)
	Delete(roomID string) bool
	FindByPlayer(playerID string) (*entity.Room, error)
}

type gracePeriods interface {
	Schedule(roomID string, duration time.Duration)
	Cancel(roomID string) bool
	OnExpire(fn func(room *entity.Room))
}

type roomMirror interface {
	CreateOrUpdate(ctx context.Context, room *entity.RoomSnapshot) error
	DeleteByID(ctx context.Context, id string) error
}

type lifecyclePublisher interface {
	Publish(subject string, event notifier.RoomEvent)
}

// SessionCoordinator turns client requests into room transitions and fans the resulting events
// out to the room members.
//
// Every operation holds the room lock from the first read to the last send, so members observe
// events in the order the room state changed.
type SessionCoordinator struct {
	logger *slog.Logger

	sessions  sessionDirectory
	registry  roomRegistry
	grace     gracePeriods
	mirror    roomMirror
	publisher lifecyclePublisher

	gracePeriod time.Duration
}

func NewSessionCoordinator(
	logger *slog.Logger,
	sessions sessionDirectory,
	registry roomRegistry,
	grace gracePeriods,
	mirror roomMirror,
	publisher lifecyclePublisher,
	gracePeriod time.Duration,
) *SessionCoordinator {
	coordinator := &SessionCoordinator{
		logger: logger.With("component", "session-coordinator"),

		sessions:  sessions,
		registry:  registry,
		grace:     grace,
		mirror:    mirror,
		publisher: publisher,

		gracePeriod: gracePeriod,
	}

	grace.OnExpire(coordinator.roomExpired)

	return coordinator
}

// CreateRoom opens a waiting room with the caller as X.
func (that *SessionCoordinator) CreateRoom(ctx context.Context, session Session) error {
	log := that.logger.With("method", "CreateRoom", "sessionID", session.ID())

	if _, err := that.registry.FindByPlayer(session.ID()); err == nil {
		return apperror.ErrAlreadyInRoom
	}

	room, err := that.registry.Create(session.ID())
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	session.Send(entity.NewRoomCreated(room.ID, room.MarkOf(session.ID())))

	that.mirrorRoom(ctx, room)
	that.publish(notifier.SubjectRoomCreated, notifier.RoomEvent{RoomID: room.ID, Players: len(room.Players)})

	log.Info("room created", "roomID", room.ID)

	return nil
}

// JoinRoom seats the caller as the second participant and starts the game.
func (that *SessionCoordinator) JoinRoom(ctx context.Context, session Session, roomID string) error {
	log := that.logger.With("method", "JoinRoom", "sessionID", session.ID(), "roomID", roomID)

	if _, err := that.registry.FindByPlayer(session.ID()); err == nil {
		return apperror.ErrAlreadyInRoom
	}

	room, err := that.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	mark, err := room.Join(session.ID())
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	if that.grace.Cancel(room.ID) {
		log.Info("participant returned within the grace period")
	}

	session.Send(entity.NewRoomJoined(room.ID, mark))
	that.broadcast(room, entity.NewGameStart(room))

	that.mirrorRoom(ctx, room)

	log.Info("player joined room", "role", mark)

	return nil
}

// MakeMove plays col for the caller. Moves into a full or unknown column and moves after the game
// ended are ignored without an error.
func (that *SessionCoordinator) MakeMove(ctx context.Context, session Session, roomID string, col int) error {
	log := that.logger.With("method", "MakeMove", "sessionID", session.ID(), "roomID", roomID)

	room, err := that.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	result, err := room.Move(session.ID(), col)
	switch {
	case errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrColumnFull),
		errors.Is(err, apperror.ErrInvalidColumn):
		log.Debug("move ignored", "col", col, "reason", err)
		return nil
	case err != nil:
		return fmt.Errorf("failed to make move: %w", err)
	}

	that.broadcast(room, entity.NewMoveEvent(room, result))

	that.mirrorRoom(ctx, room)

	if result.Finished() {
		event := notifier.RoomEvent{RoomID: room.ID, Draw: result.Draw, Players: len(room.Players)}
		if !result.Draw {
			winner := result.Winner
			event.Winner = &winner
		}

		that.publish(notifier.SubjectGameOver, event)

		log.Info("game over", "winner", result.Winner, "draw", result.Draw)
	}

	return nil
}

// ResetGame clears the board of an existing room. An unknown room is ignored.
func (that *SessionCoordinator) ResetGame(ctx context.Context, session Session, roomID string) error {
	log := that.logger.With("method", "ResetGame", "sessionID", session.ID(), "roomID", roomID)

	room, err := that.lockRoom(roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		log.Debug("reset ignored for unknown room")
		return nil
	}
	if err != nil {
		return err
	}
	defer room.Mu.Unlock()

	room.Reset()

	that.broadcast(room, entity.NewGameReset(room))

	that.mirrorRoom(ctx, room)

	log.Info("game reset")

	return nil
}

// Disconnect removes the caller from its room. A room left with one participant gets a grace
// period, an empty room is deleted at once.
func (that *SessionCoordinator) Disconnect(ctx context.Context, session Session) error {
	log := that.logger.With("method", "Disconnect", "sessionID", session.ID())

	room, err := that.registry.FindByPlayer(session.ID())
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find room: %w", err)
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.IsClosed() {
		return nil
	}

	remaining, ok := room.Leave(session.ID())
	if !ok {
		return nil
	}

	log = log.With("roomID", room.ID)

	switch remaining {
	case 0:
		that.registry.Delete(room.ID)
		that.grace.Cancel(room.ID)
		room.Close()

		that.forgetRoom(ctx, room.ID)
		that.publish(notifier.SubjectRoomDeleted, notifier.RoomEvent{RoomID: room.ID, Reason: notifier.ReasonEmpty})

		log.Info("room deleted, no participants left")
	default:
		that.broadcast(room, entity.NewPlayerDisconnected(disconnectNotice(that.gracePeriod)))
		that.grace.Schedule(room.ID, that.gracePeriod)

		that.mirrorRoom(ctx, room)

		log.Info("participant left, grace period started", "remaining", remaining)
	}

	return nil
}

// lockRoom returns roomID locked. A room deleted while the caller waited for its lock counts as
// not found.
func (that *SessionCoordinator) lockRoom(roomID string) (*entity.Room, error) {
	room, err := that.registry.Get(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room.Mu.Lock()

	if room.IsClosed() {
		room.Mu.Unlock()
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return room, nil
}

// roomExpired runs with the room lock held.
func (that *SessionCoordinator) roomExpired(room *entity.Room) {
	that.forgetRoom(context.Background(), room.ID)
	that.publish(notifier.SubjectRoomDeleted, notifier.RoomEvent{
		RoomID:  room.ID,
		Reason:  notifier.ReasonGraceEnded,
		Players: len(room.Players),
	})
}

// broadcast must be called with the room lock held.
func (that *SessionCoordinator) broadcast(room *entity.Room, event *entity.Event) {
	for _, player := range room.Players {
		session, ok := that.sessions.Lookup(player.ID)
		if !ok {
			continue
		}

		session.Send(event)
	}
}

func (that *SessionCoordinator) mirrorRoom(ctx context.Context, room *entity.Room) {
	if that.mirror == nil {
		return
	}

	snapshot := room.Snapshot()
	if err := that.mirror.CreateOrUpdate(ctx, &snapshot); err != nil {
		that.logger.Error("failed to mirror room", "roomID", room.ID, "error", err)
	}
}

func (that *SessionCoordinator) forgetRoom(ctx context.Context, roomID string) {
	if that.mirror == nil {
		return
	}

	if err := that.mirror.DeleteByID(ctx, roomID); err != nil {
		that.logger.Error("failed to drop mirrored room", "roomID", roomID, "error", err)
	}
}

func (that *SessionCoordinator) publish(subject string, event notifier.RoomEvent) {
	if that.publisher == nil {
		return
	}

	that.publisher.Publish(subject, event)
}

func disconnectNotice(gracePeriod time.Duration) string {
	return fmt.Sprintf(
		"Your opponent disconnected. The room will be deleted in %s unless they come back.",
		humanDuration(gracePeriod),
	)
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Minute && d%time.Minute == 0:
		if d == time.Minute {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", d/time.Minute)
	case d >= time.Second && d%time.Second == 0:
		if d == time.Second {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", d/time.Second)
	default:
		return d.String()
	}
}
