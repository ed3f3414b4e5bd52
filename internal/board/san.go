package board

import "strings"

// SAN renders a move for color c in short algebraic notation, with just
// enough start hints for the move parser to resolve it on this board.
func (b *Board) SAN(c Color, m Move) string {
	if m.Castle != NoCastle {
		return m.Castle.String() + b.checkSuffix(c, m)
	}
	if m.IsNull() {
		return "--"
	}

	var sb strings.Builder
	if m.Kind != Pawn {
		sb.WriteByte(m.Kind.Letter())
		sb.WriteString(b.disambiguation(c, m))
	} else if m.Capture {
		sb.WriteByte(byte('a' + m.From.Col))
	}
	if m.Capture {
		sb.WriteByte('x')
	}
	sb.WriteString(m.To.String())
	if m.Promotion != NoKind {
		sb.WriteByte('=')
		sb.WriteByte(m.Promotion.Letter())
	}
	sb.WriteString(b.checkSuffix(c, m))
	return sb.String()
}

// disambiguation returns the start file, rank or square needed to single out
// m's piece among pieces of the same kind that can reach the target.
func (b *Board) disambiguation(c Color, m Move) string {
	var others []Position
	for _, h := range b.active[c][m.Kind] {
		if h == m.Piece {
			continue
		}
		if b.Movement(h).Contains(m.To) {
			others = append(others, b.pieces[h].Pos)
		}
	}
	if len(others) == 0 {
		return ""
	}

	sameFile, sameRank := false, false
	for _, p := range others {
		if p.Col == m.From.Col {
			sameFile = true
		}
		if p.Row == m.From.Row {
			sameRank = true
		}
	}
	switch {
	case !sameFile:
		return string(rune('a' + m.From.Col))
	case !sameRank:
		return string(rune('1' + m.From.Row))
	}
	return m.From.String()
}

func (b *Board) checkSuffix(c Color, m Move) string {
	suffix := ""
	b.Try(c, m, func() {
		switch {
		case b.status.Checkmate:
			suffix = "#"
		case b.status.InCheck[c.Other()]:
			suffix = "+"
		}
	})
	return suffix
}
