package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Drop(t *testing.T) {
	t.Run("First drop lands on the bottom row", func(t *testing.T) {
		// Given: an empty board
		var board Board

		// When: X drops into column 5
		row := board.Drop(5, MarkX)

		// Then: the marker lands on row 9
		assert.Equal(t, BoardSize-1, row)
		assert.Equal(t, MarkX, board[9][5])
	})

	t.Run("Drops stack upwards", func(t *testing.T) {
		// Given: an empty board
		var board Board

		// When: three markers are dropped into the same column
		rows := []int{board.Drop(0, MarkX), board.Drop(0, MarkO), board.Drop(0, MarkX)}

		// Then: they occupy rows 9, 8 and 7
		assert.Equal(t, []int{9, 8, 7}, rows)
		assert.Equal(t, MarkO, board[8][0])
	})

	t.Run("A column accepts at most ten drops", func(t *testing.T) {
		// Given: a column filled to the top
		var board Board
		for i := range BoardSize {
			require.Equal(t, BoardSize-1-i, board.Drop(3, MarkO))
		}
		before := board

		// When: another marker is dropped into it
		row := board.Drop(3, MarkX)

		// Then: the drop is rejected without touching the board
		assert.Equal(t, NoRow, row)
		assert.Equal(t, before, board)
	})

	t.Run("Out of range columns are rejected", func(t *testing.T) {
		var board Board

		assert.Equal(t, NoRow, board.Drop(-1, MarkX))
		assert.Equal(t, NoRow, board.Drop(BoardSize, MarkX))
		assert.Equal(t, Board{}, board)
	})
}

func TestBoard_CheckWin(t *testing.T) {
	t.Run("Vertical four from the bottom", func(t *testing.T) {
		// Given: X holds rows 9..6 of column 0
		var board Board
		for range WinLength {
			board.Drop(0, MarkX)
		}

		// When: checking the last placed cell
		cells := board.CheckWin(6, 0, MarkX)

		// Then: the four vertical cells are returned, origin first
		assert.Equal(t, []Cell{{6, 0}, {7, 0}, {8, 0}, {9, 0}}, cells)
	})

	t.Run("Horizontal run through the middle of the line", func(t *testing.T) {
		// Given: X on row 9 columns 2,3,5 and the gap at 4 filled last
		var board Board
		board[9][2], board[9][3], board[9][5] = MarkX, MarkX, MarkX
		board[9][4] = MarkX

		// When: checking from the gap
		cells := board.CheckWin(9, 4, MarkX)

		// Then: both directions are collected
		assert.ElementsMatch(t, []Cell{{9, 4}, {9, 5}, {9, 3}, {9, 2}}, cells)
		assert.Equal(t, Cell{9, 4}, cells[0])
	})

	t.Run("Descending diagonal", func(t *testing.T) {
		var board Board
		for i := range WinLength {
			board[3+i][2+i] = MarkO
		}

		cells := board.CheckWin(4, 3, MarkO)

		assert.Len(t, cells, WinLength)
		assert.ElementsMatch(t, []Cell{{3, 2}, {4, 3}, {5, 4}, {6, 5}}, cells)
	})

	t.Run("Ascending diagonal", func(t *testing.T) {
		var board Board
		for i := range WinLength {
			board[9-i][i] = MarkX
		}

		cells := board.CheckWin(9, 0, MarkX)

		assert.ElementsMatch(t, []Cell{{9, 0}, {8, 1}, {7, 2}, {6, 3}}, cells)
	})

	t.Run("Runs longer than four are returned whole", func(t *testing.T) {
		var board Board
		for c := range 6 {
			board[9][c] = MarkO
		}

		cells := board.CheckWin(9, 0, MarkO)

		assert.Len(t, cells, 6)
	})

	t.Run("Three in a row is not a win", func(t *testing.T) {
		// Given: three X cells in every axis through (5,5)
		var board Board
		board[5][5] = MarkX
		board[5][6], board[5][7] = MarkX, MarkX
		board[6][5], board[7][5] = MarkX, MarkX
		board[6][6], board[7][7] = MarkX, MarkX
		board[4][6], board[3][7] = MarkX, MarkX

		// When: checking the centre
		cells := board.CheckWin(5, 5, MarkX)

		// Then: nothing is reported
		assert.Nil(t, cells)
	})

	t.Run("Opponent cells break the run", func(t *testing.T) {
		var board Board
		board[9][0], board[9][1], board[9][3], board[9][4] = MarkX, MarkX, MarkX, MarkX
		board[9][2] = MarkO

		assert.Nil(t, board.CheckWin(9, 1, MarkX))
		assert.Nil(t, board.CheckWin(9, 3, MarkX))
	})

	t.Run("Horizontal is preferred over vertical when both complete", func(t *testing.T) {
		var board Board
		for i := range WinLength {
			board[9][i] = MarkX
			board[9-i][0] = MarkX
		}

		cells := board.CheckWin(9, 0, MarkX)

		assert.ElementsMatch(t, []Cell{{9, 0}, {9, 1}, {9, 2}, {9, 3}}, cells)
	})

	t.Run("Edges do not wrap around", func(t *testing.T) {
		var board Board
		board[5][8], board[5][9] = MarkO, MarkO
		board[6][0], board[6][1] = MarkO, MarkO

		assert.Nil(t, board.CheckWin(5, 9, MarkO))
	})
}

func TestBoard_IsFullAndReset(t *testing.T) {
	// Given: a board filled without any four in a row
	var board Board
	for r := range BoardSize {
		for c := range BoardSize {
			board[r][c] = patternMark(r, c)
		}
	}

	// Then: it is full
	assert.True(t, board.IsFull())

	// When: one cell is cleared it no longer is
	board[0][0] = MarkEmpty
	assert.False(t, board.IsFull())

	// When: reset
	board.Reset()

	// Then: every cell is empty
	assert.Equal(t, Board{}, board)
	assert.False(t, board.IsFull())
}

func TestBoard_JSON(t *testing.T) {
	t.Run("Empty cells are null and row 0 is the top", func(t *testing.T) {
		var board Board
		board.Drop(2, MarkX)

		data, err := json.Marshal(board)
		require.NoError(t, err)

		var rows [][]*string
		require.NoError(t, json.Unmarshal(data, &rows))
		require.Len(t, rows, BoardSize)
		assert.Nil(t, rows[0][2])
		require.NotNil(t, rows[9][2])
		assert.Equal(t, "X", *rows[9][2])
	})

	t.Run("Decoding restores the grid", func(t *testing.T) {
		var board Board
		board.Drop(0, MarkX)
		board.Drop(0, MarkO)

		data, err := json.Marshal(&board)
		require.NoError(t, err)

		var decoded Board
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, board, decoded)
	})

	t.Run("Decoding rejects a malformed grid", func(t *testing.T) {
		var decoded Board
		assert.Error(t, json.Unmarshal([]byte(`[[null]]`), &decoded))
	})
}

// patternMark describes a full board without any line of four: pairs of columns alternate XXOO
// and every row is the inverse of the one above it.
func patternMark(row, col int) Mark {
	if (col/2+row)%2 == 0 {
		return MarkX
	}
	return MarkO
}
