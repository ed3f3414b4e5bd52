package board

import (
	"fmt"
	"strings"
)

// BoardSquare is one cell of the grid: its (cosmetic) color and occupant.
type BoardSquare struct {
	Color Color
	Piece Handle
}

// Status is the game status derived after every committed move.
type Status struct {
	InCheck   [2]bool
	Checkmate bool
	Stalemate bool
	Draw      bool
	DrawOffer Color // color with a pending draw offer, NoColor if none
	Resigned  Color // NoColor unless a side resigned
	Winner    Color // NoColor while undecided or drawn
}

// Over returns true once the game has ended.
func (s Status) Over() bool {
	return s.Checkmate || s.Stalemate || s.Draw || s.Winner != NoColor
}

func freshStatus() Status {
	return Status{DrawOffer: NoColor, Resigned: NoColor, Winner: NoColor}
}

// Board is the complete mutable game state. It is mutated in place and is
// not safe for concurrent use; every game needs its own Board.
type Board struct {
	squares  [8][8]BoardSquare
	pieces   []Piece        // arena, indexed by Handle
	active   [2][6][]Handle // live pieces by color and kind
	captured [2][]Handle    // killed pieces by their color
	status   Status
	toMove   Color
	history  []historyEntry
	plies    []plyRecord
	startPly int // plies played before the loaded position

	initialEP Position // en passant target given by the position string
	startFEN  string
}

// NewBoard creates a board with the standard starting arrangement.
func NewBoard() *Board {
	b, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return b
}

// newEmptyBoard returns a board with no pieces.
func newEmptyBoard() *Board {
	b := &Board{
		pieces:    make([]Piece, 0, 40),
		status:    freshStatus(),
		initialEP: NoPosition,
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			sqColor := Black
			if (r+c)%2 == 1 {
				sqColor = White
			}
			b.squares[r][c] = BoardSquare{Color: sqColor, Piece: NoPiece}
		}
	}
	return b
}

// addPiece places a new piece in the arena and on the board.
func (b *Board) addPiece(c Color, k Kind, p Position) Handle {
	h := Handle(len(b.pieces))
	b.pieces = append(b.pieces, Piece{Handle: h, Color: c, Kind: k, Pos: p, Alive: true})
	b.active[c][k] = append(b.active[c][k], h)
	b.squares[p.Row][p.Col].Piece = h
	return h
}

// Piece returns the piece for a handle.
func (b *Board) Piece(h Handle) *Piece {
	if h < 0 || int(h) >= len(b.pieces) {
		return nil
	}
	return &b.pieces[h]
}

// Square returns the board cell at p.
func (b *Board) Square(p Position) BoardSquare {
	return b.squares[p.Row][p.Col]
}

// At returns the piece on p, or nil.
func (b *Board) At(p Position) *Piece {
	if !p.Valid() {
		return nil
	}
	h := b.squares[p.Row][p.Col].Piece
	if h == NoPiece {
		return nil
	}
	return &b.pieces[h]
}

// Active returns the live pieces of a color and kind. The slice must not be
// modified by the caller.
func (b *Board) Active(c Color, k Kind) []Handle {
	return b.active[c][k]
}

// ActivePieces returns every live piece of a color, kings first.
func (b *Board) ActivePieces(c Color) []Handle {
	var out []Handle
	for k := King; ; k-- {
		out = append(out, b.active[c][k]...)
		if k == Pawn {
			break
		}
	}
	return out
}

// Captured returns the pieces of color c that have been killed.
func (b *Board) Captured(c Color) []Handle {
	return b.captured[c]
}

// King returns the live king of a color, or nil when the invariant of one
// king per color is broken.
func (b *Board) King(c Color) *Piece {
	if len(b.active[c][King]) != 1 {
		return nil
	}
	return &b.pieces[b.active[c][King][0]]
}

// Status returns the current game status.
func (b *Board) Status() Status {
	return b.status
}

// SideToMove returns the color expected to move next.
func (b *Board) SideToMove() Color {
	return b.toMove
}

// SetSideToMove overrides the side to move.
func (b *Board) SetSideToMove(c Color) {
	b.toMove = c
}

// PlyCount returns the number of plies played, including those before the
// position was loaded.
func (b *Board) PlyCount() int {
	return b.startPly + len(b.plies)
}

// Plies returns the text of every move committed on this board, skipping
// draw offers and resignations. Moves played without text are rendered in
// long algebraic form.
func (b *Board) Plies() []string {
	out := make([]string, 0, len(b.plies))
	for _, r := range b.plies {
		switch {
		case r.meta:
		case r.text != "":
			out = append(out, r.text)
		default:
			out = append(out, r.move.String())
		}
	}
	return out
}

// StartPosition returns the position text the board was loaded from.
func (b *Board) StartPosition() string {
	return b.startFEN
}

// enPassantTarget returns the square a pawn may capture onto en passant in
// the current ply, or NoPosition.
func (b *Board) enPassantTarget() Position {
	if n := len(b.plies); n > 0 {
		return b.plies[n-1].enPassant
	}
	return b.initialEP
}

// HasCastled returns true if the color castled during this game.
func (b *Board) HasCastled(c Color) bool {
	for _, r := range b.plies {
		if r.mover == c && r.castle {
			return true
		}
	}
	return false
}

// Material returns the summed material of the color's live non-king pieces.
func (b *Board) Material(c Color) int {
	total := 0
	for k := Pawn; k < King; k++ {
		total += len(b.active[c][k]) * KindValue[k]
	}
	return total
}

// Material values in centipawns.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
)

// KindValue is the material value of each kind; kings have none.
var KindValue = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, 0, 0}

// String renders the board for terminals.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for r := 7; r >= 0; r-- {
		fmt.Fprintf(&sb, "%d  ", r+1)
		for c := 0; c < 8; c++ {
			if pc := b.At(Pos(r, c)); pc != nil {
				sb.WriteByte(pc.Char())
			} else {
				sb.WriteByte('.')
			}
			sb.WriteByte(' ')
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", b.toMove)
	fmt.Fprintf(&sb, "Position: %s\n", b.FEN())
	return sb.String()
}

// Validate checks the structural invariants of the board.
func (b *Board) Validate() error {
	for c := White; c <= Black; c++ {
		if len(b.active[c][King]) != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrNoKing, c, len(b.active[c][King]))
		}
	}
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			h := b.squares[r][c].Piece
			if h == NoPiece {
				continue
			}
			pc := b.Piece(h)
			if pc == nil || !pc.Alive || pc.Pos != Pos(r, c) {
				return fmt.Errorf("%w: square %s out of sync", ErrCorrupt, Pos(r, c))
			}
		}
	}
	return nil
}
