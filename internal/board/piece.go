package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// Forward returns the row direction pawns of this color advance in.
func (c Color) Forward() int {
	if c == White {
		return 1
	}
	return -1
}

// HomeRow returns the back rank of the color.
func (c Color) HomeRow() int {
	if c == White {
		return 0
	}
	return 7
}

// Kind is the type of a chess piece.
type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoKind Kind = 6
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Letter returns the uppercase notation letter ('P' for pawns).
func (k Kind) Letter() byte {
	if k >= NoKind {
		return ' '
	}
	return "PNBRQK"[k]
}

// KindFromLetter maps an uppercase notation letter to a kind.
func KindFromLetter(c byte) Kind {
	switch c {
	case 'P':
		return Pawn
	case 'N':
		return Knight
	case 'B':
		return Bishop
	case 'R':
		return Rook
	case 'Q':
		return Queen
	case 'K':
		return King
	}
	return NoKind
}

// Sliding returns true for kinds that move along rays.
func (k Kind) Sliding() bool {
	return k == Bishop || k == Rook || k == Queen
}

// Handle addresses a piece in its board's arena.
type Handle int

// NoPiece is the empty handle.
const NoPiece Handle = -1

// Piece is a single chess piece. Pieces are never deleted from the arena,
// so history entries can always resolve their handle.
type Piece struct {
	Handle Handle
	Color  Color
	Kind   Kind
	Pos    Position
	Alive  bool
	Moved  bool
}

// Char returns the position-text character, uppercase for White.
func (p *Piece) Char() byte {
	c := p.Kind.Letter()
	if p.Color == Black {
		c += 'a' - 'A'
	}
	return c
}
