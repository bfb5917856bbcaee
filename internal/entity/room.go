package entity

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
)

type Status string

const (
	StatusWaiting Status = "waiting"
	StatusActive  Status = "active"
	StatusOver    Status = "over"
	StatusEmpty   Status = "empty"

	MaxPlayers = 2
)

// Room holds one match. Mu must be held for every read or write of the room fields.
type Room struct {
	Mu sync.Mutex

	ID       string
	Players  []*Player
	Turn     Mark
	Board    Board
	GameOver bool

	closed bool
}

// MoveResult describes an accepted move.
type MoveResult struct {
	Row          int
	Col          int
	Player       Mark
	Turn         Mark
	Winner       Mark
	WinningCells []Cell
	Draw         bool
}

func (that MoveResult) Finished() bool {
	return that.Winner != MarkEmpty || that.Draw
}

// RoomSnapshot is a copy of the room state that can leave the lock.
type RoomSnapshot struct {
	ID       string    `json:"id"`
	Players  []*Player `json:"players"`
	Turn     Mark      `json:"currentPlayer"`
	Board    Board     `json:"board"`
	GameOver bool      `json:"gameOver"`
	Status   Status    `json:"status"`
}

func NewRoom(id, creatorID string) *Room {
	return &Room{
		ID:      id,
		Players: []*Player{{ID: creatorID, Mark: MarkX}},
		Turn:    MarkX,
	}
}

func (that *Room) Status() Status {
	switch {
	case len(that.Players) == 0:
		return StatusEmpty
	case that.GameOver:
		return StatusOver
	case len(that.Players) < MaxPlayers:
		return StatusWaiting
	default:
		return StatusActive
	}
}

// Close marks the room as removed from the registry.
func (that *Room) Close() {
	that.closed = true
}

func (that *Room) IsClosed() bool {
	return that.closed
}

func (that *Room) HasPlayer(playerID string) bool {
	return that.MarkOf(playerID) != MarkEmpty
}

// MarkOf returns the role of playerID, or MarkEmpty for a non-member.
func (that *Room) MarkOf(playerID string) Mark {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player.Mark
		}
	}

	return MarkEmpty
}

// Join adds a second participant. It gets the role the remaining participant does not hold.
func (that *Room) Join(playerID string) (Mark, error) {
	if len(that.Players) >= MaxPlayers {
		return MarkEmpty, fmt.Errorf("%w: %d players", apperror.ErrRoomFull, len(that.Players))
	}

	mark := MarkO
	if len(that.Players) == 1 {
		mark = that.Players[0].Mark.Opponent()
	}

	that.Players = append(that.Players, &Player{ID: playerID, Mark: mark})

	return mark, nil
}

// Leave removes playerID and reports how many participants remain.
func (that *Room) Leave(playerID string) (int, bool) {
	for i, player := range that.Players {
		if player.ID == playerID {
			that.Players = append(that.Players[:i], that.Players[i+1:]...)
			return len(that.Players), true
		}
	}

	return len(that.Players), false
}

// Move drops the mover's mark into col and settles the game state.
func (that *Room) Move(playerID string, col int) (MoveResult, error) {
	if that.GameOver {
		return MoveResult{}, apperror.ErrGameFinished
	}

	mark := that.MarkOf(playerID)
	if mark == MarkEmpty || mark != that.Turn {
		return MoveResult{}, apperror.ErrNotYourTurn
	}

	if col < 0 || col >= BoardSize {
		return MoveResult{}, fmt.Errorf("%w: column %d", apperror.ErrInvalidColumn, col)
	}

	row := that.Board.Drop(col, mark)
	if row == NoRow {
		return MoveResult{}, fmt.Errorf("%w: column %d", apperror.ErrColumnFull, col)
	}

	result := MoveResult{Row: row, Col: col, Player: mark}

	switch cells := that.Board.CheckWin(row, col, mark); {
	case cells != nil:
		that.GameOver = true
		result.Winner = mark
		result.WinningCells = cells
	case that.Board.IsFull():
		that.GameOver = true
		result.Draw = true
	default:
		that.Turn = mark.Opponent()
	}

	result.Turn = that.Turn

	return result, nil
}

// Reset starts a fresh game with the same participants.
func (that *Room) Reset() {
	that.Board.Reset()
	that.Turn = MarkX
	that.GameOver = false
}

func (that *Room) Snapshot() RoomSnapshot {
	players := make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		players = append(players, &Player{ID: player.ID, Mark: player.Mark})
	}

	return RoomSnapshot{
		ID:       that.ID,
		Players:  players,
		Turn:     that.Turn,
		Board:    that.Board,
		GameOver: that.GameOver,
		Status:   that.Status(),
	}
}
