// Package board implements the chess rules: board state with an undo history,
// move legality, check detection and the position text codec.
package board

import "fmt"

// Position is a square on the board by row (rank 1 = 0) and column (file a = 0).
type Position struct {
	Row int
	Col int
}

// NoPosition is the sentinel for "no square".
var NoPosition = Position{Row: -1, Col: -1}

// Pos creates a position from row and column.
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

// Valid returns true if the position is on the board.
func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// Offset returns the position shifted by dr rows and dc columns.
// The result may be off the board.
func (p Position) Offset(dr, dc int) Position {
	return Position{Row: p.Row + dr, Col: p.Col + dc}
}

// String returns the algebraic name of the square (e.g. "e4").
func (p Position) String() string {
	if !p.Valid() {
		return "-"
	}
	return fmt.Sprintf("%c%c", 'a'+p.Col, '1'+p.Row)
}

// ParseSquare parses algebraic notation (e.g. "e4").
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 {
		return NoPosition, fmt.Errorf("invalid square: %q", s)
	}
	col := int(s[0]) - 'a'
	row := int(s[1]) - '1'
	p := Pos(row, col)
	if !p.Valid() {
		return NoPosition, fmt.Errorf("invalid square: %q", s)
	}
	return p, nil
}

// Direction is a unit step between squares.
type Direction struct {
	DR, DC int
}

// Ray directions.
var (
	Straights = [4]Direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	Diagonals = [4]Direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Ray returns the squares from p (exclusive) to the board edge along d.
func (p Position) Ray(d Direction) []Position {
	var out []Position
	for q := p.Offset(d.DR, d.DC); q.Valid(); q = q.Offset(d.DR, d.DC) {
		out = append(out, q)
	}
	return out
}

// Between returns the squares strictly between a and b when they share a
// rank, file or diagonal; nil otherwise.
func Between(a, b Position) []Position {
	dr, dc := sign(b.Row-a.Row), sign(b.Col-a.Col)
	if a == b {
		return nil
	}
	if dr != 0 && dc != 0 && abs(b.Row-a.Row) != abs(b.Col-a.Col) {
		return nil
	}
	var out []Position
	for q := a.Offset(dr, dc); q != b; q = q.Offset(dr, dc) {
		out = append(out, q)
	}
	return out
}

// Mirror flips the position vertically (rank 1 <-> rank 8).
func (p Position) Mirror() Position {
	return Position{Row: 7 - p.Row, Col: p.Col}
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
