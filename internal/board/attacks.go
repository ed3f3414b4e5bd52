package board

// Attack describes the first piece found attacking a king square.
type Attack struct {
	Attacker Handle
	// Path holds the open squares between the king square and a sliding
	// attacker; empty for contact attacks.
	Path []Position
}

// Found returns true if an attacker was found.
func (a Attack) Found() bool {
	return a.Attacker != NoPiece
}

// AttackOn looks for an enemy piece attacking kingPos on behalf of color c.
// kingPos does not have to hold the king: a square occupied by c's own king
// is treated as empty so that squares the king would move to can be probed.
func (b *Board) AttackOn(c Color, kingPos Position) Attack {
	if a, ok := b.rayAttack(c, kingPos, Straights[:], Rook); ok {
		return a
	}
	if a, ok := b.rayAttack(c, kingPos, Diagonals[:], Bishop); ok {
		return a
	}

	enemy := c.Other()

	for _, dc := range [2]int{-1, 1} {
		q := kingPos.Offset(c.Forward(), dc)
		if pc := b.At(q); pc != nil && pc.Color == enemy && pc.Kind == Pawn {
			return Attack{Attacker: pc.Handle}
		}
	}

	// A knight or king standing on kingPos reaches exactly the squares an
	// enemy knight or king would attack it from.
	for _, kind := range [2]Kind{Knight, King} {
		for _, q := range RawMovement(kind, c, kingPos).Targets() {
			if pc := b.At(q); pc != nil && pc.Color == enemy && pc.Kind == kind {
				return Attack{Attacker: pc.Handle}
			}
		}
	}

	return Attack{Attacker: NoPiece}
}

// rayAttack walks every ray in dirs looking for an enemy slider of kind
// slider or a queen.
func (b *Board) rayAttack(c Color, from Position, dirs []Direction, slider Kind) (Attack, bool) {
	for _, d := range dirs {
		var path []Position
		for q := from.Offset(d.DR, d.DC); q.Valid(); q = q.Offset(d.DR, d.DC) {
			pc := b.At(q)
			if pc == nil || (pc.Color == c && pc.Kind == King) {
				path = append(path, q)
				continue
			}
			if pc.Color != c && (pc.Kind == slider || pc.Kind == Queen) {
				return Attack{Attacker: pc.Handle, Path: path}, true
			}
			break
		}
	}
	return Attack{}, false
}

// InCheck returns true if the live king of color c is attacked. Boards
// without a king for c are never in check.
func (b *Board) InCheck(c Color) bool {
	king := b.King(c)
	if king == nil {
		return false
	}
	return b.AttackOn(c, king.Pos).Found()
}

// Attacked returns true if an enemy of c attacks p.
func (b *Board) Attacked(c Color, p Position) bool {
	return b.AttackOn(c, p).Found()
}
