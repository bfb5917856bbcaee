package entity

import (
	"encoding/json"
	"fmt"
)

const (
	BoardSize = 10
	WinLength = 4

	// NoRow is returned by Drop when the column has no empty cell.
	NoRow = -1
)

// Mark is a cell value and a player's role at the same time.
type Mark string

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"
)

// Opponent returns the other role. The empty mark has no opponent.
func (that Mark) Opponent() Mark {
	switch that {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return MarkEmpty
	}
}

// Cell is a (row, col) coordinate, encoded as a two element array on the wire.
type Cell [2]int

func (that Cell) Row() int { return that[0] }

func (that Cell) Col() int { return that[1] }

// axes are walked in this order; the first one reaching WinLength wins.
var axes = [4][2]Cell{
	{{0, 1}, {0, -1}},  // horizontal
	{{1, 0}, {-1, 0}},  // vertical
	{{1, 1}, {-1, -1}}, // diagonal \
	{{1, -1}, {-1, 1}}, // diagonal /
}

// Board is a 10x10 grid, row 0 is the top row.
type Board [BoardSize][BoardSize]Mark

// Drop places mark into the lowest empty cell of col and returns its row.
func (that *Board) Drop(col int, mark Mark) int {
	if col < 0 || col >= BoardSize {
		return NoRow
	}

	for row := BoardSize - 1; row >= 0; row-- {
		if that[row][col] == MarkEmpty {
			that[row][col] = mark
			return row
		}
	}

	return NoRow
}

// CheckWin looks for a run of at least WinLength cells equal to mark passing through (row, col).
// It returns the run, starting with the origin, or nil.
func (that *Board) CheckWin(row, col int, mark Mark) []Cell {
	if mark == MarkEmpty || !inBounds(row, col) {
		return nil
	}

	for _, axis := range axes {
		cells := []Cell{{row, col}}

		for _, dir := range axis {
			r, c := row+dir.Row(), col+dir.Col()
			for inBounds(r, c) && that[r][c] == mark {
				cells = append(cells, Cell{r, c})
				r += dir.Row()
				c += dir.Col()
			}
		}

		if len(cells) >= WinLength {
			return cells
		}
	}

	return nil
}

func (that *Board) IsFull() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell == MarkEmpty {
				return false
			}
		}
	}

	return true
}

func (that *Board) Reset() {
	*that = Board{}
}

// MarshalJSON encodes empty cells as null.
func (that Board) MarshalJSON() ([]byte, error) {
	rows := make([][]*Mark, BoardSize)
	for r := range that {
		rows[r] = make([]*Mark, BoardSize)
		for c := range that[r] {
			if that[r][c] != MarkEmpty {
				mark := that[r][c]
				rows[r][c] = &mark
			}
		}
	}

	return json.Marshal(rows)
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var rows [][]*Mark
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to unmarshal board: %w", err)
	}

	if len(rows) != BoardSize {
		return fmt.Errorf("board must have %d rows, got %d", BoardSize, len(rows))
	}

	var board Board
	for r, row := range rows {
		if len(row) != BoardSize {
			return fmt.Errorf("board row %d must have %d cells, got %d", r, BoardSize, len(row))
		}

		for c, mark := range row {
			if mark != nil {
				board[r][c] = *mark
			}
		}
	}

	*that = board

	return nil
}

func inBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}
