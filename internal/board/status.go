package board

// refreshStatus recomputes check, checkmate and stalemate after the
// position changed. Draw offers, draws and resignations are kept.
func (b *Board) refreshStatus() {
	s := &b.status
	s.Checkmate = false
	s.Stalemate = false
	if s.Resigned == NoColor && !s.Draw {
		s.Winner = NoColor
	}

	for c := White; c <= Black; c++ {
		s.InCheck[c] = b.InCheck(c)
		if s.InCheck[c] && b.IsCheckmate(c) {
			s.Checkmate = true
			s.Winner = c.Other()
		}
	}
	if !s.Checkmate && !s.InCheck[b.toMove] && b.IsStalemate(b.toMove) {
		s.Stalemate = true
	}
}

// IsCheckmate returns true if c is in check and can neither capture the
// attacker, move the king to safety nor block the attack.
func (b *Board) IsCheckmate(c Color) bool {
	king := b.King(c)
	if king == nil {
		return false
	}
	attack := b.AttackOn(c, king.Pos)
	if !attack.Found() {
		return false
	}
	kingHandle := king.Handle

	if b.canCaptureAttacker(c, kingHandle, attack) {
		return false
	}
	if b.kingCanEscape(kingHandle) {
		return false
	}
	if b.canInterpose(c, kingHandle, attack) {
		return false
	}
	return true
}

// IsStalemate returns true if c is not in check and has no legal move.
func (b *Board) IsStalemate(c Color) bool {
	king := b.King(c)
	if king == nil || b.InCheck(c) {
		return false
	}
	if b.kingCanEscape(king.Handle) {
		return false
	}
	return !b.HasLegalMove(c)
}

// HasLegalMove returns true if any piece of c has a destination that does
// not leave its king in check.
func (b *Board) HasLegalMove(c Color) bool {
	for _, h := range b.ActivePieces(c) {
		for _, to := range b.Movement(h).Targets() {
			if b.probe(h, to) {
				return true
			}
		}
	}
	return false
}

// canCaptureAttacker prefers non-king capturers; the king may only take the
// attacker when the attacker's square is not defended.
func (b *Board) canCaptureAttacker(c Color, kingHandle Handle, attack Attack) bool {
	target := b.pieces[attack.Attacker].Pos
	for _, h := range b.ActivePieces(c) {
		if h == kingHandle {
			continue
		}
		for _, to := range b.Movement(h).Targets() {
			if b.victimOf(h, to) != attack.Attacker {
				continue
			}
			if b.probe(h, to) {
				return true
			}
		}
	}
	if b.Movement(kingHandle).Contains(target) {
		return b.probe(kingHandle, target)
	}
	return false
}

func (b *Board) kingCanEscape(kingHandle Handle) bool {
	for _, to := range b.Movement(kingHandle).Targets() {
		if b.probe(kingHandle, to) {
			return true
		}
	}
	return false
}

func (b *Board) canInterpose(c Color, kingHandle Handle, attack Attack) bool {
	if len(attack.Path) == 0 {
		return false
	}
	blocking := make(map[Position]bool, len(attack.Path))
	for _, q := range attack.Path {
		blocking[q] = true
	}
	for _, h := range b.ActivePieces(c) {
		if h == kingHandle {
			continue
		}
		for _, to := range b.Movement(h).Targets() {
			if blocking[to] && b.probe(h, to) {
				return true
			}
		}
	}
	return false
}

// probe plays h to to, reports whether the mover's king is safe afterwards,
// and restores the board.
func (b *Board) probe(h Handle, to Position) bool {
	c := b.pieces[h].Color
	cp := b.begin()
	b.applyMove(h, to, NoKind)
	safe := !b.InCheck(c)
	b.revert(cp)
	return safe
}
