package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	msgRoomNotFound    = "Room not found"
	msgRoomFull        = "Room full"
	msgNotYourTurn     = "Not your turn"
	msgAlreadyInRoom   = "Already in a room"
	msgBadRequest      = "Invalid request"
	msgUnknownAction   = "Unknown action"
	msgInternalFailure = "Something went wrong, please try again"
)

var errInvalidPayload = errors.New("invalid payload")

func (that *Server) handleCreateRoom(ctx context.Context, connection *Connection, _ *Message) error {
	return that.coordinator.CreateRoom(ctx, connection)
}

func (that *Server) handleJoinRoom(ctx context.Context, connection *Connection, msg *Message) error {
	roomID, err := decodeRoomID(msg.Payload)
	if err != nil {
		return err
	}

	return that.coordinator.JoinRoom(ctx, connection, roomID)
}

func (that *Server) handleMakeMove(ctx context.Context, connection *Connection, msg *Message) error {
	var payload MovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	if payload.Col == nil {
		return fmt.Errorf("%w: col is required", errInvalidPayload)
	}

	return that.coordinator.MakeMove(ctx, connection, normalizeRoomID(payload.RoomID), *payload.Col)
}

func (that *Server) handleResetGame(ctx context.Context, connection *Connection, msg *Message) error {
	roomID, err := decodeRoomID(msg.Payload)
	if err != nil {
		return err
	}

	return that.coordinator.ResetGame(ctx, connection, roomID)
}

// handleError reports err to the requesting client only.
func (that *Server) handleError(connection *Connection, action string, err error) {
	log := that.logger.With("method", "handleError", "sessionID", connection.ID(), "action", action)

	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		that.sendError(connection, msgRoomNotFound)
	case errors.Is(err, apperror.ErrRoomFull):
		that.sendError(connection, msgRoomFull)
	case errors.Is(err, apperror.ErrNotYourTurn):
		that.sendError(connection, msgNotYourTurn)
	case errors.Is(err, apperror.ErrAlreadyInRoom):
		that.sendError(connection, msgAlreadyInRoom)
	case errors.Is(err, errInvalidPayload):
		log.Warn("rejected malformed request", "error", err)
		that.sendError(connection, msgBadRequest)
	default:
		log.Error("failed to process message", "error", err)
		that.sendError(connection, msgInternalFailure)
	}
}

func (that *Server) sendError(connection *Connection, message string) {
	connection.Send(entity.NewError(message))
}

// decodeRoomID reads a payload that is just the room id string.
func decodeRoomID(payload json.RawMessage) (string, error) {
	var roomID string
	if err := json.Unmarshal(payload, &roomID); err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	return normalizeRoomID(roomID), nil
}

func normalizeRoomID(roomID string) string {
	return strings.ToUpper(strings.TrimSpace(roomID))
}
