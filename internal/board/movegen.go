package board

// Movement returns the movement of piece h constrained by the board: own
// pieces end a path, enemy pieces end it after being included. Pawns only
// advance onto empty squares and only step diagonally to capture (including
// en passant). Squares holding a king are never reachable.
func (b *Board) Movement(h Handle) Movement {
	pc := &b.pieces[h]
	raw := RawMovement(pc.Kind, pc.Color, pc.Pos)
	out := Movement{Origin: pc.Pos, Constrained: true}

	for _, path := range raw.Paths {
		var kept Path
		switch {
		case pc.Kind == Pawn && path[0].Col == pc.Pos.Col:
			for _, q := range path {
				if b.At(q) != nil {
					break
				}
				kept = append(kept, q)
			}
		case pc.Kind == Pawn:
			q := path[0]
			if o := b.At(q); (o != nil && o.Color != pc.Color && o.Kind != King) || b.isEnPassant(pc, q) {
				kept = Path{q}
			}
		default:
			for _, q := range path {
				o := b.At(q)
				if o == nil {
					kept = append(kept, q)
					continue
				}
				if o.Color != pc.Color && o.Kind != King {
					kept = append(kept, q)
				}
				break
			}
		}
		if len(kept) > 0 {
			out.Paths = append(out.Paths, kept)
		}
	}
	return out
}

// isEnPassant reports whether pawn pc may capture en passant onto q.
func (b *Board) isEnPassant(pc *Piece, q Position) bool {
	if pc.Kind != Pawn || q != b.enPassantTarget() || b.At(q) != nil {
		return false
	}
	victim := b.At(Pos(pc.Pos.Row, q.Col))
	return victim != nil && victim.Kind == Pawn && victim.Color != pc.Color
}

// victimOf returns the piece that moving h to to would capture.
func (b *Board) victimOf(h Handle, to Position) Handle {
	if o := b.At(to); o != nil {
		return o.Handle
	}
	pc := &b.pieces[h]
	if b.isEnPassant(pc, to) {
		return b.At(Pos(pc.Pos.Row, to.Col)).Handle
	}
	return NoPiece
}

// applyMove performs the raw mutation of moving h to to, capturing and
// promoting as needed, and pushes the matching history entries. It does not
// check legality. promo defaults to Queen.
func (b *Board) applyMove(h Handle, to Position, promo Kind) (victim Handle, promoted Handle) {
	victim = b.victimOf(h, to)
	if victim != NoPiece {
		b.kill(victim)
	}
	b.movePiece(h, to)

	promoted = NoPiece
	pc := &b.pieces[h]
	if pc.Kind == Pawn && to.Row == lastRow(pc.Color) {
		if promo == NoKind {
			promo = Queen
		}
		promoted = b.promote(h, promo)
	}
	return victim, promoted
}

// Move is a fully resolved move for a known piece.
type Move struct {
	Piece     Handle
	Kind      Kind
	From      Position
	To        Position
	Capture   bool
	Castle    CastleSide
	Promotion Kind
}

// NullMove is the zero move.
var NullMove = Move{Piece: NoPiece, From: NoPosition, To: NoPosition, Promotion: NoKind}

// IsNull returns true for NullMove.
func (m Move) IsNull() bool {
	return m.Piece == NoPiece && m.Castle == NoCastle
}

// String returns the move in long algebraic form (e.g. "Ng1f3", "e7xd8=Q",
// "o-o"), which the move parser always resolves unambiguously.
func (m Move) String() string {
	if m.Castle != NoCastle {
		return m.Castle.String()
	}
	if m.IsNull() {
		return "--"
	}
	s := ""
	if m.Kind != Pawn {
		s += string(m.Kind.Letter())
	}
	s += m.From.String()
	if m.Capture {
		s += "x"
	}
	s += m.To.String()
	if m.Promotion != NoKind {
		s += "=" + string(m.Promotion.Letter())
	}
	return s
}

// Moves returns every move of c allowed by constrained movement, plus
// castles whose king and rook are still unmoved. Moves may still leave the
// king in check; playing them through the legality machine filters those.
func (b *Board) Moves(c Color) []Move {
	var out []Move
	for _, h := range b.ActivePieces(c) {
		pc := b.pieces[h]
		for _, to := range b.Movement(h).Targets() {
			m := Move{
				Piece:     h,
				Kind:      pc.Kind,
				From:      pc.Pos,
				To:        to,
				Capture:   b.victimOf(h, to) != NoPiece,
				Promotion: NoKind,
			}
			if pc.Kind == Pawn && to.Row == lastRow(c) {
				m.Promotion = Queen
			}
			out = append(out, m)
		}
	}
	for _, side := range [2]CastleSide{KingSide, QueenSide} {
		if b.castleRightIntact(c, side) {
			out = append(out, Move{Piece: NoPiece, Kind: King, From: NoPosition, To: NoPosition, Castle: side, Promotion: NoKind})
		}
	}
	return out
}

// LegalMoves returns the moves of c that do not leave its king in check.
func (b *Board) LegalMoves(c Color) []Move {
	var out []Move
	for _, m := range b.Moves(c) {
		if m.Castle != NoCastle {
			if b.CanCastle(c, m.Castle) {
				out = append(out, m)
			}
			continue
		}
		if b.probe(m.Piece, m.To) {
			out = append(out, m)
		}
	}
	return out
}
