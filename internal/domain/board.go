package domain

import (
	"errors"
	"fmt"
)

// BoardSize is the edge length of an Othello board.
const BoardSize = 8

// CellState - one square as reported by the engine
type CellState uint8

const (
	CellEmpty CellState = iota
	CellBlack
	CellWhite
	// CellLegal marks an empty square the side to move may play.
	CellLegal
)

var cellNames = [...]string{
	CellEmpty: "EMPTY",
	CellBlack: "BLACK",
	CellWhite: "WHITE",
	CellLegal: "VALID",
}

func (c CellState) String() string {
	if int(c) < len(cellNames) {
		return cellNames[c]
	}
	return fmt.Sprintf("CellState(%d)", uint8(c))
}

// ParseCellState maps an engine wire name to a CellState.
func ParseCellState(name string) (CellState, error) {
	for i, n := range cellNames {
		if n == name {
			return CellState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown cell state %q", name)
}

// BoardSnapshot is an engine-produced 8x8 grid, indexed [row][col].
type BoardSnapshot [BoardSize][BoardSize]CellState

var ErrBadBoard = errors.New("board must be 8x8")

// ParseSnapshot converts the engine's game_state rows into a snapshot.
func ParseSnapshot(rows [][]string) (BoardSnapshot, error) {
	var b BoardSnapshot
	if len(rows) != BoardSize {
		return b, fmt.Errorf("%w: got %d rows", ErrBadBoard, len(rows))
	}
	for r, row := range rows {
		if len(row) != BoardSize {
			return b, fmt.Errorf("%w: row %d has %d cells", ErrBadBoard, r, len(row))
		}
		for c, name := range row {
			cs, err := ParseCellState(name)
			if err != nil {
				return b, fmt.Errorf("cell (%d,%d): %w", r, c, err)
			}
			b[r][c] = cs
		}
	}
	return b, nil
}

// At returns the cell at (row, col). Out-of-range coordinates read as empty.
func (b BoardSnapshot) At(row, col int) CellState {
	if !InBounds(row, col) {
		return CellEmpty
	}
	return b[row][col]
}

// IsLegal reports whether (row, col) is a legal move for the side to act.
func (b BoardSnapshot) IsLegal(row, col int) bool {
	return b.At(row, col) == CellLegal
}

// LegalMoves lists the legal squares in row-major order.
func (b BoardSnapshot) LegalMoves() []MoveIntent {
	var out []MoveIntent
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if b[r][c] == CellLegal {
				out = append(out, MoveIntent{Row: r, Col: c})
			}
		}
	}
	return out
}

// Count returns the number of cells in the given state.
func (b BoardSnapshot) Count(s CellState) int {
	n := 0
	for r := range b {
		for c := range b[r] {
			if b[r][c] == s {
				n++
			}
		}
	}
	return n
}

// MoveIntent - a click translated into board coordinates
type MoveIntent struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (m MoveIntent) Valid() bool {
	return InBounds(m.Row, m.Col)
}

func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}
