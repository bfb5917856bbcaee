package entity

const (
	EventRoomCreated        = "roomCreated"
	EventRoomJoined         = "roomJoined"
	EventGameStart          = "gameStart"
	EventMoveMade           = "moveMade"
	EventGameOver           = "gameOver"
	EventGameReset          = "gameReset"
	EventPlayerDisconnected = "playerDisconnected"
	EventError              = "error"
)

// Event is an outbound message: its name and the payload serialised next to it.
type Event struct {
	Name    string
	Payload any
}

type RoomAssignment struct {
	RoomID string `json:"roomId"`
	Role   Mark   `json:"role"`
}

type GameStart struct {
	Board         Board `json:"board"`
	CurrentPlayer Mark  `json:"currentPlayer"`
	Players       int   `json:"players"`
}

type MoveMade struct {
	Row           int   `json:"row"`
	Col           int   `json:"col"`
	Player        Mark  `json:"player"`
	CurrentPlayer Mark  `json:"currentPlayer"`
	Board         Board `json:"board"`
}

// GameOver has a nil Winner for a draw.
type GameOver struct {
	Winner       *Mark  `json:"winner"`
	WinningCells []Cell `json:"winningCells,omitempty"`
	Board        Board  `json:"board"`
}

type GameReset struct {
	Board         Board `json:"board"`
	CurrentPlayer Mark  `json:"currentPlayer"`
}

type PlayerDisconnected struct {
	Message string `json:"message"`
}

func NewRoomCreated(roomID string, role Mark) *Event {
	return &Event{Name: EventRoomCreated, Payload: RoomAssignment{RoomID: roomID, Role: role}}
}

func NewRoomJoined(roomID string, role Mark) *Event {
	return &Event{Name: EventRoomJoined, Payload: RoomAssignment{RoomID: roomID, Role: role}}
}

func NewGameStart(room *Room) *Event {
	return &Event{Name: EventGameStart, Payload: GameStart{
		Board:         room.Board,
		CurrentPlayer: room.Turn,
		Players:       len(room.Players),
	}}
}

func NewMoveEvent(room *Room, result MoveResult) *Event {
	if !result.Finished() {
		return &Event{Name: EventMoveMade, Payload: MoveMade{
			Row:           result.Row,
			Col:           result.Col,
			Player:        result.Player,
			CurrentPlayer: result.Turn,
			Board:         room.Board,
		}}
	}

	payload := GameOver{Board: room.Board}
	if !result.Draw {
		winner := result.Winner
		payload.Winner = &winner
		payload.WinningCells = result.WinningCells
	}

	return &Event{Name: EventGameOver, Payload: payload}
}

func NewGameReset(room *Room) *Event {
	return &Event{Name: EventGameReset, Payload: GameReset{Board: room.Board, CurrentPlayer: room.Turn}}
}

func NewPlayerDisconnected(message string) *Event {
	return &Event{Name: EventPlayerDisconnected, Payload: PlayerDisconnected{Message: message}}
}

func NewError(message string) *Event {
	return &Event{Name: EventError, Payload: message}
}
