package board

// CastleSide selects king-side or queen-side castling.
type CastleSide uint8

const (
	NoCastle CastleSide = iota
	KingSide
	QueenSide
)

// String returns the move text for the castle.
func (s CastleSide) String() string {
	switch s {
	case KingSide:
		return "o-o"
	case QueenSide:
		return "o-o-o"
	}
	return ""
}

func (s CastleSide) rookCol() int {
	if s == KingSide {
		return 7
	}
	return 0
}

// kingCol and rookToCol are the destination columns; the rook lands on the
// square the king transits.
func (s CastleSide) kingCol() int {
	if s == KingSide {
		return 6
	}
	return 2
}

func (s CastleSide) rookToCol() int {
	if s == KingSide {
		return 5
	}
	return 3
}

func (s CastleSide) letter() byte {
	if s == KingSide {
		return 'K'
	}
	return 'Q'
}

// CastleTargets validates castling for c and returns the king's and rook's
// destination squares. Castling fails if the king has moved, the rook is
// missing or has moved, any square between them is occupied, or the king's
// current, transit or destination square is attacked.
func (b *Board) CastleTargets(c Color, side CastleSide) (kingTo, rookTo Position, ok bool) {
	if side != KingSide && side != QueenSide {
		return NoPosition, NoPosition, false
	}
	king := b.King(c)
	if king == nil || king.Moved || king.Pos != Pos(c.HomeRow(), 4) {
		return NoPosition, NoPosition, false
	}

	row := c.HomeRow()
	rook := b.At(Pos(row, side.rookCol()))
	if rook == nil || rook.Kind != Rook || rook.Color != c || rook.Moved {
		return NoPosition, NoPosition, false
	}

	for _, q := range Between(king.Pos, rook.Pos) {
		if b.At(q) != nil {
			return NoPosition, NoPosition, false
		}
	}

	kingTo = Pos(row, side.kingCol())
	rookTo = Pos(row, side.rookToCol())
	for _, q := range [3]Position{king.Pos, rookTo, kingTo} {
		if b.Attacked(c, q) {
			return NoPosition, NoPosition, false
		}
	}
	return kingTo, rookTo, true
}

// CanCastle returns true if c may castle on side right now.
func (b *Board) CanCastle(c Color, side CastleSide) bool {
	_, _, ok := b.CastleTargets(c, side)
	return ok
}
