package board

import "errors"

// Move parses text and attempts it for color c. The board changes only when
// the result is Ok; every rejection leaves it exactly as it was. Move does
// not check whose turn it is; Game enforces turn order.
func (b *Board) Move(c Color, text string) Result {
	d, err := ParseMove(text)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return InvalidFormat
		}
		return UnknownError
	}
	return b.Apply(c, d, text)
}

// Apply attempts a parsed move for color c; text is recorded in the ply log.
func (b *Board) Apply(c Color, d MoveDescriptor, text string) Result {
	if !d.Valid() {
		return InvalidFormat
	}
	if b.status.Over() {
		return GameOver
	}

	switch {
	case d.Resign:
		return b.resign(c, text)
	case d.DrawOffer:
		return b.offerDraw(c, text)
	case d.Castle != NoCastle:
		return b.castle(c, d.Castle, text)
	}

	h, res := b.resolve(c, d)
	if res != Ok {
		return res
	}
	return b.attempt(c, h, d.Target, d.Kill, d.Promotion, text)
}

// Play attempts a generated move for color c.
func (b *Board) Play(c Color, m Move) Result {
	return b.play(c, m, "")
}

// PlaySAN attempts a generated move for color c and records it in standard
// algebraic notation.
func (b *Board) PlaySAN(c Color, m Move) Result {
	if b.status.Over() {
		return GameOver
	}
	return b.play(c, m, b.SAN(c, m))
}

func (b *Board) play(c Color, m Move, text string) Result {
	if b.status.Over() {
		return GameOver
	}
	if m.Castle != NoCastle {
		return b.castle(c, m.Castle, text)
	}
	pc := b.Piece(m.Piece)
	if pc == nil || !pc.Alive || pc.Color != c {
		return NoSuchPiece
	}
	if !b.Movement(m.Piece).Contains(m.To) {
		return NoPieceInRange
	}
	promo := m.Promotion
	if pc.Kind != Pawn || m.To.Row != lastRow(c) {
		promo = NoKind
	}
	return b.attempt(c, m.Piece, m.To, m.Capture, promo, text)
}

// Resolve maps move text to the generated move it names without playing it.
// Draw offers and resignations do not name a move and yield InvalidFormat.
func (b *Board) Resolve(c Color, text string) (Move, Result) {
	d, err := ParseMove(text)
	if err != nil || d.DrawOffer || d.Resign {
		return NullMove, InvalidFormat
	}
	if d.Castle != NoCastle {
		return Move{Piece: NoPiece, Kind: King, From: NoPosition, To: NoPosition, Castle: d.Castle, Promotion: NoKind}, Ok
	}
	h, res := b.resolve(c, d)
	if res != Ok {
		return NullMove, res
	}
	pc := b.pieces[h]
	m := Move{
		Piece:     h,
		Kind:      pc.Kind,
		From:      pc.Pos,
		To:        d.Target,
		Capture:   b.victimOf(h, d.Target) != NoPiece,
		Promotion: d.Promotion,
	}
	if d.Kill && !m.Capture {
		return NullMove, InvalidKill
	}
	if d.Promotion != NoKind && (pc.Kind != Pawn || d.Target.Row != lastRow(c)) {
		return NullMove, InvalidPromotion
	}
	if pc.Kind == Pawn && d.Target.Row == lastRow(c) && m.Promotion == NoKind {
		m.Promotion = Queen
	}
	return m, Ok
}

// Try plays m for c, calls fn on the resulting position if the move was
// legal, and always restores the board before returning, even if fn panics.
func (b *Board) Try(c Color, m Move, fn func()) Result {
	cp := b.begin()
	status, toMove := b.status, b.toMove
	defer func() {
		b.revert(cp)
		b.status = status
		b.toMove = toMove
	}()

	res := b.Play(c, m)
	if res == Ok && fn != nil {
		fn()
	}
	return res
}

// Undo reverts the most recent committed ply.
func (b *Board) Undo() error {
	n := len(b.plies)
	if n == 0 {
		return ErrNothingToUndo
	}
	rec := b.plies[n-1]
	b.revert(rec.cp)
	b.status = rec.status
	b.toMove = rec.toMove
	return nil
}

// resolve finds the single piece of c matching d that can reach the target.
func (b *Board) resolve(c Color, d MoveDescriptor) (Handle, Result) {
	var candidates []Handle
	for _, h := range b.active[c][d.Kind] {
		pos := b.pieces[h].Pos
		if d.FromCol >= 0 && pos.Col != d.FromCol {
			continue
		}
		if d.FromRow >= 0 && pos.Row != d.FromRow {
			continue
		}
		candidates = append(candidates, h)
	}
	if len(candidates) == 0 {
		return NoPiece, NoSuchPiece
	}

	found := NoPiece
	for _, h := range candidates {
		if !b.Movement(h).Contains(d.Target) {
			continue
		}
		if found != NoPiece {
			return NoPiece, MoreThanOnePieceInRange
		}
		found = h
	}
	if found == NoPiece {
		return NoPiece, NoPieceInRange
	}
	return found, Ok
}

// attempt tentatively applies h to to and commits it unless the declared
// capture did not happen or the mover's king is left in check.
func (b *Board) attempt(c Color, h Handle, to Position, kill bool, promo Kind, text string) Result {
	pc := b.pieces[h]
	if promo != NoKind && (pc.Kind != Pawn || to.Row != lastRow(c)) {
		return InvalidPromotion
	}

	kings := [2]int{len(b.active[White][King]), len(b.active[Black][King])}
	cp := b.begin()
	victim, _ := b.applyMove(h, to, promo)

	if kill && victim == NoPiece {
		b.revert(cp)
		return InvalidKill
	}
	if b.InCheck(c) {
		b.revert(cp)
		return KingInCheck
	}
	if kings != [2]int{len(b.active[White][King]), len(b.active[Black][King])} {
		b.revert(cp)
		return CachError
	}

	ep := NoPosition
	if pc.Kind == Pawn && abs(to.Row-pc.Pos.Row) == 2 {
		ep = Pos((to.Row+pc.Pos.Row)/2, to.Col)
	}
	b.commit(cp, plyRecord{
		text:      text,
		mover:     c,
		move:      Move{Piece: h, Kind: pc.Kind, From: pc.Pos, To: to, Capture: victim != NoPiece, Promotion: promo},
		enPassant: ep,
	})
	return Ok
}

// castle applies the king and rook moves of a validated castle as one ply.
func (b *Board) castle(c Color, side CastleSide, text string) Result {
	kingTo, rookTo, ok := b.CastleTargets(c, side)
	if !ok {
		return InvalidCastle
	}
	king := b.King(c)
	rook := b.At(Pos(c.HomeRow(), side.rookCol()))

	cp := b.begin()
	b.movePiece(king.Handle, kingTo)
	b.movePiece(rook.Handle, rookTo)
	if b.InCheck(c) {
		b.revert(cp)
		return KingInCheck
	}
	b.commit(cp, plyRecord{
		text:      text,
		mover:     c,
		castle:    true,
		move:      Move{Piece: NoPiece, Kind: King, From: NoPosition, To: NoPosition, Castle: side, Promotion: NoKind},
		enPassant: NoPosition,
	})
	return Ok
}

// offerDraw records a draw offer, or agrees a draw when the opponent's
// offer is pending.
func (b *Board) offerDraw(c Color, text string) Result {
	cp := b.begin()
	rec := plyRecord{text: text, mover: c, meta: true, enPassant: b.enPassantTarget()}
	accept := b.status.DrawOffer == c.Other()
	b.commit(cp, rec)
	if accept {
		b.status.Draw = true
		b.status.DrawOffer = NoColor
	} else {
		b.status.DrawOffer = c
	}
	return Ok
}

func (b *Board) resign(c Color, text string) Result {
	cp := b.begin()
	b.commit(cp, plyRecord{text: text, mover: c, meta: true, enPassant: b.enPassantTarget()})
	b.status.Resigned = c
	b.status.Winner = c.Other()
	return Ok
}

// commit logs the ply that started at cp, passes the turn and recomputes the
// game status.
func (b *Board) commit(cp Checkpoint, rec plyRecord) {
	rec.cp = cp
	rec.status = b.status
	rec.toMove = b.toMove
	b.plies = append(b.plies, rec)
	b.toMove = rec.mover.Other()
	if !rec.meta {
		b.status.DrawOffer = NoColor
		b.refreshStatus()
	}
}
