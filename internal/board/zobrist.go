package board

// Zobrist keys, generated from a fixed seed so hashes are stable across runs.
var (
	zobristPiece      [2][6][8][8]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [2][3]uint64 // [color][CastleSide]
	zobristSideToMove uint64
)

func init() {
	rng := prng{state: 0x98F107A2BEEF1234}
	for c := White; c <= Black; c++ {
		for k := Pawn; k <= King; k++ {
			for r := 0; r < 8; r++ {
				for f := 0; f < 8; f++ {
					zobristPiece[c][k][r][f] = rng.next()
				}
			}
		}
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rng.next()
	}
	for c := range zobristCastling {
		zobristCastling[c][KingSide] = rng.next()
		zobristCastling[c][QueenSide] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// prng is xorshift64*.
type prng struct {
	state uint64
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// Hash returns the Zobrist hash of the placement, side to move, castle
// rights and en passant target.
func (b *Board) Hash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for k := Pawn; k <= King; k++ {
			for _, ph := range b.active[c][k] {
				p := b.pieces[ph].Pos
				h ^= zobristPiece[c][k][p.Row][p.Col]
			}
		}
		for _, side := range [2]CastleSide{KingSide, QueenSide} {
			if b.castleRightIntact(c, side) {
				h ^= zobristCastling[c][side]
			}
		}
	}
	if ep := b.enPassantTarget(); ep.Valid() {
		h ^= zobristEnPassant[ep.Col]
	}
	if b.toMove == Black {
		h ^= zobristSideToMove
	}
	return h
}
