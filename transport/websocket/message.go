package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

const (
	actionCreateRoom = "createRoom"
	actionJoinRoom   = "joinRoom"
	actionMakeMove   = "makeMove"
	actionResetGame  = "resetGame"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type MovePayload struct {
	RoomID string `json:"roomId"`
	Col    *int   `json:"col"`
}

func encodeEvent(event *entity.Event) ([]byte, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", event.Name, err)
	}

	message, err := json.Marshal(Message{Action: event.Name, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return message, nil
}
