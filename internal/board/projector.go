// Package board projects engine snapshots into what a front end draws.
package board

import (
	"fmt"
	"strings"

	"othello_webapp/internal/domain"
)

// Mark is what a single square shows.
type Mark string

const (
	MarkEmpty      Mark = "empty"
	MarkBlack      Mark = "black"
	MarkWhite      Mark = "white"
	MarkAffordance Mark = "affordance"
)

// Grid is a rendered board, indexed [row][col].
type Grid [domain.BoardSize][domain.BoardSize]Mark

// Project renders a snapshot. Legal squares show an affordance only when
// showLegalMoves is set. A cell state outside the engine's vocabulary is a
// contract violation and panics.
func Project(snapshot domain.BoardSnapshot, showLegalMoves bool) Grid {
	var g Grid
	for r := range snapshot {
		for c, cell := range snapshot[r] {
			g[r][c] = markFor(cell, showLegalMoves)
		}
	}
	return g
}

func markFor(cell domain.CellState, showLegalMoves bool) Mark {
	switch cell {
	case domain.CellEmpty:
		return MarkEmpty
	case domain.CellBlack:
		return MarkBlack
	case domain.CellWhite:
		return MarkWhite
	case domain.CellLegal:
		if showLegalMoves {
			return MarkAffordance
		}
		return MarkEmpty
	default:
		panic(fmt.Sprintf("board: unexpected cell state %v", cell))
	}
}

// Affordances lists the squares rendered as clickable.
func (g Grid) Affordances() []domain.MoveIntent {
	var out []domain.MoveIntent
	for r := range g {
		for c := range g[r] {
			if g[r][c] == MarkAffordance {
				out = append(out, domain.MoveIntent{Row: r, Col: c})
			}
		}
	}
	return out
}

// Glyph returns the single-rune form of a mark used by text renderers.
func (m Mark) Glyph() rune {
	switch m {
	case MarkBlack:
		return 'X'
	case MarkWhite:
		return 'O'
	case MarkAffordance:
		return '#'
	default:
		return '.'
	}
}

// String draws the grid with column letters and row numbers.
func (g Grid) String() string {
	var sb strings.Builder
	sb.WriteString("  A B C D E F G H\n")
	for r := range g {
		fmt.Fprintf(&sb, "%d", r+1)
		for c := range g[r] {
			sb.WriteByte(' ')
			sb.WriteRune(g[r][c].Glyph())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
