package engine

import (
	"context"
	"sync/atomic"

	"github.com/cado2010/cach-sub000/internal/board"
)

// Search constants
const (
	MaxDepth     = 64  // iterative deepening bound when no depth is given
	pollInterval = 256 // nodes between context and clock checks
)

// Searcher performs a depth-limited alpha-beta search on one board. The
// board is only ever changed inside Board.Try, so it is restored on every
// return path.
type Searcher struct {
	board    *board.Board
	us       board.Color
	eval     *Evaluator
	tm       *TimeManager
	ctx      context.Context
	stopFlag *atomic.Bool
	maxNodes uint64

	nodes   uint64
	aborted bool
}

func newSearcher(ctx context.Context, b *board.Board, eval *Evaluator, tm *TimeManager, stop *atomic.Bool, maxNodes uint64) *Searcher {
	return &Searcher{
		board:    b,
		us:       b.SideToMove(),
		eval:     eval,
		tm:       tm,
		ctx:      ctx,
		stopFlag: stop,
		maxNodes: maxNodes,
	}
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// stopped reports whether the search must unwind. It is checked between
// sibling moves.
func (s *Searcher) stopped() bool {
	if s.aborted {
		return true
	}
	switch {
	case s.stopFlag != nil && s.stopFlag.Load():
		s.aborted = true
	case s.maxNodes > 0 && s.nodes >= s.maxNodes:
		s.aborted = true
	case s.nodes%pollInterval == 0:
		s.aborted = s.ctx.Err() != nil || s.tm.ShouldStop()
	}
	return s.aborted
}

// alphaBeta returns the minimax value of the position for the engine's
// color with c to move. After a cutoff only captures are still tried.
func (s *Searcher) alphaBeta(depth, alpha, beta int, c board.Color) int {
	s.nodes++
	b := s.board
	if depth <= 0 || b.Status().Over() {
		return s.eval.Evaluate(b, s.us)
	}

	maximizing := c == s.us
	best := Infinity
	if maximizing {
		best = -Infinity
	}

	searched := false
	cutoff := false
	for _, m := range OrderMoves(b, b.Moves(c)) {
		if s.stopped() {
			break
		}
		if cutoff && !m.Capture {
			continue
		}

		var v int
		if b.Try(c, m, func() { v = s.alphaBeta(depth-1, alpha, beta, c.Other()) }) != board.Ok {
			continue
		}
		searched = true

		if maximizing {
			best = max(best, v)
			alpha = max(alpha, v)
		} else {
			best = min(best, v)
			beta = min(beta, v)
		}
		if alpha >= beta {
			cutoff = true
		}
	}

	if !searched {
		return s.eval.Evaluate(b, s.us)
	}
	return best
}

// searchRoot searches every root move and returns the best value with all
// moves that reach it. complete is false if the search was interrupted.
func (s *Searcher) searchRoot(depth int, moves []board.Move) (best int, ties []board.Move, complete bool) {
	b := s.board
	best = -Infinity
	for _, m := range moves {
		if s.stopped() {
			return best, ties, false
		}

		// A window just below the best value keeps equal moves exact.
		alpha := best - 1
		var v int
		if b.Try(s.us, m, func() { v = s.alphaBeta(depth-1, alpha, Infinity, s.us.Other()) }) != board.Ok {
			continue
		}
		if s.aborted {
			return best, ties, false
		}

		switch {
		case v > best:
			best = v
			ties = []board.Move{m}
		case v == best:
			ties = append(ties, m)
		}
	}
	return best, ties, true
}

// promote moves the given moves to the front of list, keeping both groups
// in their existing order.
func promote(list, first []board.Move) []board.Move {
	out := make([]board.Move, 0, len(list))
	out = append(out, first...)
	for _, m := range list {
		if !containsMove(first, m) {
			out = append(out, m)
		}
	}
	return out
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, x := range moves {
		if x == m {
			return true
		}
	}
	return false
}
