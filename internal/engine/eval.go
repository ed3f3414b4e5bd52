// Package engine implements the position evaluator and the alpha-beta
// search that picks moves for a board.
package engine

import (
	"golang.org/x/exp/constraints"

	"github.com/cado2010/cach-sub000/internal/board"
)

// Evaluation terms, in centipawns.
const (
	CheckValue = 450
	MateValue  = 30000

	// maxPositional bounds the material and table difference of a position:
	// nine queens, two rooks, two bishops and two knights at their best
	// squares against a bare king at its worst.
	maxPositional = 12000

	// EvalBound is the largest absolute value Evaluate can return.
	EvalBound = MateValue + CheckValue + maxPositional

	// Infinity is wider than any evaluation.
	Infinity = EvalBound + 1
)

// Game phase thresholds.
const (
	startMaterial   = 8*board.PawnValue + 2*board.KnightValue + 2*board.BishopValue + 2*board.RookValue + board.QueenValue
	endgameMaterial = startMaterial * 3 / 8
	midgamePly      = 20
)

// Piece-square tables from White's point of view, rank 8 first.
// Black looks them up mirrored.

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [...]*[64]int{
	board.Pawn:   &pawnPST,
	board.Knight: &knightPST,
	board.Bishop: &bishopPST,
	board.Rook:   &rookPST,
	board.Queen:  &queenPST,
	board.King:   &kingMidgamePST,
}

// pstIndex maps a square to its table slot for color c.
func pstIndex(c board.Color, p board.Position) int {
	if c == board.White {
		return (7-p.Row)*8 + p.Col
	}
	return p.Row*8 + p.Col
}

// PieceSquare returns the table bonus of a kind on a square.
func PieceSquare(k board.Kind, c board.Color, p board.Position, endgame bool) int {
	if k == board.King && endgame {
		return kingEndgamePST[pstIndex(c, p)]
	}
	return psts[k][pstIndex(c, p)]
}

// IsEndgame returns true when both sides' non-king material is below 37.5%
// of the starting material.
func IsEndgame(b *board.Board) bool {
	return b.Material(board.White) < endgameMaterial && b.Material(board.Black) < endgameMaterial
}

// IsMidgame returns true once the opening is over (move 10) and the game
// has not reached the endgame.
func IsMidgame(b *board.Board) bool {
	return !IsEndgame(b) && b.PlyCount() >= midgamePly
}

// Evaluator scores positions, optionally memoizing the positional part.
type Evaluator struct {
	cache *EvalCache
}

// NewEvaluator creates an evaluator. A nil cache disables memoization.
func NewEvaluator(cache *EvalCache) *Evaluator {
	return &Evaluator{cache: cache}
}

// Evaluate scores b from c's point of view without a cache.
func Evaluate(b *board.Board, c board.Color) int {
	return (&Evaluator{}).Evaluate(b, c)
}

// Evaluate scores b from c's point of view: material and piece-square
// tables, a check term and a checkmate term. Stalemates and agreed draws
// score zero.
func (e *Evaluator) Evaluate(b *board.Board, c board.Color) int {
	st := b.Status()
	if st.Stalemate || st.Draw {
		return 0
	}

	score := e.positional(b)
	if c == board.Black {
		score = -score
	}

	if st.InCheck[c.Other()] {
		score += CheckValue
	}
	if st.InCheck[c] {
		score -= CheckValue
	}
	if st.Checkmate {
		switch st.Winner {
		case c:
			score += MateValue
		case c.Other():
			score -= MateValue
		}
	}
	return clamp(score, -EvalBound, EvalBound)
}

// positional returns material plus tables from White's point of view.
func (e *Evaluator) positional(b *board.Board) int {
	var key uint64
	if e.cache != nil {
		key = b.Hash()
		if v, ok := e.cache.Probe(key); ok {
			return v
		}
	}

	endgame := IsEndgame(b)
	score := 0
	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for k := board.Pawn; k <= board.King; k++ {
			for _, h := range b.Active(c, k) {
				p := b.Piece(h).Pos
				score += sign * (board.KindValue[k] + PieceSquare(k, c, p, endgame))
			}
		}
	}

	if e.cache != nil {
		e.cache.Store(key, score)
	}
	return score
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

func clamp[T constraints.Ordered](x, lo, hi T) T {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
