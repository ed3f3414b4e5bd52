package engine

import (
	"github.com/cado2010/cach-sub000/internal/board"
)

// Move ordering priorities
const (
	CaptureBase   = 1000000 // every capture sorts before every quiet move
	PromotionBase = 500000
	CastleScore   = 400000
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11}, // Pawn victim
	/* N */ {25, 24, 24, 23, 22, 21}, // Knight victim
	/* B */ {35, 34, 34, 33, 32, 31}, // Bishop victim
	/* R */ {45, 44, 44, 43, 42, 41}, // Rook victim
	/* Q */ {55, 54, 54, 53, 52, 51}, // Queen victim
	/* K */ {0, 0, 0, 0, 0, 0}, // King can't be captured
}

// scoreMove rates a move for ordering: captures by MVV-LVA, then
// promotions, then castles, then quiet moves by table gain.
func scoreMove(b *board.Board, m board.Move) int {
	if m.Castle != board.NoCastle {
		return CastleScore
	}
	if m.Capture {
		victim := board.Pawn // en passant
		if pc := b.At(m.To); pc != nil {
			victim = pc.Kind
		}
		return CaptureBase + mvvLva[victim][m.Kind]
	}
	if m.Promotion != board.NoKind {
		return PromotionBase + board.KindValue[m.Promotion]
	}
	c := b.Piece(m.Piece).Color
	return PieceSquare(m.Kind, c, m.To, false) - PieceSquare(m.Kind, c, m.From, false)
}

// OrderMoves sorts moves in place, captures first, and returns them.
func OrderMoves(b *board.Board, moves []board.Move) []board.Move {
	scores := make([]int, len(moves))
	for i, m := range moves {
		scores[i] = scoreMove(b, m)
	}
	SortMoves(moves, scores)
	return moves
}

// SortMoves sorts moves by their scores (descending).
func SortMoves(moves []board.Move, scores []int) {
	// Simple selection sort (sufficient for ~40 moves)
	n := len(moves)
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves[i], moves[best] = moves[best], moves[i]
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}
