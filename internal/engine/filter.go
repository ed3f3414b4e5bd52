package engine

import (
	"github.com/cado2010/cach-sub000/internal/board"
)

// FilterCandidates narrows the equally scored root moves of c. King walks
// are dropped outside the endgame, rook moves while castling is still
// pending and queen moves outside the midgame. When captures remain only
// captures are kept. Filters that would empty the set are skipped.
func FilterCandidates(b *board.Board, c board.Color, moves []board.Move) []board.Move {
	if len(moves) <= 1 {
		return moves
	}

	endgame := IsEndgame(b)
	midgame := IsMidgame(b)
	pending := castlePending(b, c)

	var kept []board.Move
	for _, m := range moves {
		switch {
		case m.Castle != board.NoCastle:
		case m.Kind == board.King && !endgame:
			continue
		case m.Kind == board.Rook && pending:
			continue
		case m.Kind == board.Queen && !midgame:
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		kept = moves
	}

	var captures []board.Move
	for _, m := range kept {
		if m.Capture {
			captures = append(captures, m)
		}
	}
	if len(captures) > 0 {
		return captures
	}
	return kept
}

// castlePending returns true while c has not castled and its king has not
// moved.
func castlePending(b *board.Board, c board.Color) bool {
	if b.HasCastled(c) {
		return false
	}
	king := b.King(c)
	return king != nil && !king.Moved
}
