package apperror

import "errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrAlreadyInRoom = errors.New("player is already in a room")
	ErrGameFinished  = errors.New("game is already finished")
	ErrColumnFull    = errors.New("column is full")
	ErrInvalidColumn = errors.New("invalid column index")
	ErrRoomIDSpace   = errors.New("could not allocate a free room id")
)
