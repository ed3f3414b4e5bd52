package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/apex/log"

	"github.com/cado2010/cach-sub000/internal/board"
	"github.com/cado2010/cach-sub000/internal/book"
)

// SearchInfo contains information about a completed iteration.
type SearchInfo struct {
	Depth      int
	Score      int
	Nodes      uint64
	Time       time.Duration
	Candidates []board.Move
	CacheHits  int // Permille of evaluation cache probes that hit
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	Nodes    uint64        // Maximum nodes (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
	NoBook   bool          // Skip the opening book
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 2 ply, 500ms
	Medium                   // 4 ply, 2s
	Hard                     // 6 ply, 5s
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2, MoveTime: 500 * time.Millisecond},
	Medium: {Depth: 4, MoveTime: 2 * time.Second},
	Hard:   {Depth: 6, MoveTime: 5 * time.Second},
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return "unknown"
}

// ParseDifficulty maps a level name to a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(s) {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, fmt.Errorf("unknown difficulty %q", s)
}

// Result is the outcome of a search.
type Result struct {
	Moves    []board.Move // equally good candidates, best ordered first
	Score    int          // from the mover's point of view
	Depth    int          // last completed depth, 0 for book moves
	Nodes    uint64
	FromBook bool
}

// Best returns the first candidate.
func (r Result) Best() (board.Move, bool) {
	if len(r.Moves) == 0 {
		return board.NullMove, false
	}
	return r.Moves[0], true
}

var (
	// ErrGameOver is returned when asked to search a finished game.
	ErrGameOver = errors.New("game is over")

	// ErrAborted is returned when no depth completed before the search
	// was stopped.
	ErrAborted = errors.New("search stopped before the first depth completed")
)

// Engine is the chess AI engine. It searches one board at a time.
type Engine struct {
	eval       *Evaluator
	cache      *EvalCache
	book       *book.Book
	difficulty Difficulty
	stopFlag   atomic.Bool

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new engine with an evaluation cache of the given size
// in MB. A size of zero disables the cache.
func NewEngine(cacheMB int) *Engine {
	var cache *EvalCache
	if cacheMB > 0 {
		cache = NewEvalCache(cacheMB)
	}
	return &Engine{
		eval:       NewEvaluator(cache),
		cache:      cache,
		difficulty: Medium,
	}
}

// SetBook sets the opening book consulted before searching. nil disables it.
func (e *Engine) SetBook(bk *book.Book) {
	e.book = bk
}

// Book returns the opening book, or nil.
func (e *Engine) Book() *book.Book {
	return e.book
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Difficulty returns the engine difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// Search finds the candidate moves for the side to move using the limits
// of the current difficulty.
func (e *Engine) Search(ctx context.Context, b *board.Board) (Result, error) {
	return e.BestMoves(ctx, b, DifficultySettings[e.difficulty])
}

// BestMoves finds the equally good candidate moves for the side to move on
// b. Book moves are returned without searching. Otherwise the search deepens
// one ply at a time until the depth limit, the clock, the node limit, Stop
// or ctx ends it, and the candidates of the last completed depth are
// returned. b is unchanged on return.
func (e *Engine) BestMoves(ctx context.Context, b *board.Board, limits SearchLimits) (Result, error) {
	e.stopFlag.Store(false)
	if b.Status().Over() {
		return Result{}, ErrGameOver
	}
	us := b.SideToMove()

	if !limits.NoBook {
		if moves := e.bookMoves(b); len(moves) > 0 {
			log.WithFields(log.Fields{
				"ply":        b.PlyCount(),
				"candidates": len(moves),
			}).Debug("book hit")
			return Result{Moves: moves, FromBook: true}, nil
		}
	}

	root := OrderMoves(b, b.LegalMoves(us))
	if len(root) == 0 {
		return Result{}, ErrGameOver
	}

	maxDepth := MaxDepth
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	tm := NewTimeManager()
	tm.Init(limits)
	s := newSearcher(ctx, b, e.eval, tm, &e.stopFlag, limits.Nodes)

	var res Result
	stability := 0
	for depth := 1; depth <= maxDepth; depth++ {
		best, ties, complete := s.searchRoot(depth, root)
		if !complete || len(ties) == 0 {
			break
		}

		cands := FilterCandidates(b, us, ties)
		if len(res.Moves) > 0 && containsMove(cands, res.Moves[0]) {
			stability++
		} else {
			stability = 0
		}
		res = Result{Moves: cands, Score: best, Depth: depth, Nodes: s.Nodes()}

		log.WithFields(log.Fields{
			"depth":      depth,
			"score":      best,
			"nodes":      s.Nodes(),
			"ties":       len(ties),
			"candidates": len(cands),
			"elapsed":    tm.Elapsed().String(),
		}).Debug("iteration complete")

		if e.OnInfo != nil {
			info := SearchInfo{
				Depth:      depth,
				Score:      best,
				Nodes:      s.Nodes(),
				Time:       tm.Elapsed(),
				Candidates: cands,
			}
			if e.cache != nil {
				info.CacheHits = e.cache.HitRate()
			}
			e.OnInfo(info)
		}

		// Earlier winners are searched first at the next depth.
		root = promote(root, ties)

		if IsMateScore(best) {
			break
		}
		tm.AdjustForStability(stability)
		if tm.PastOptimum() {
			break
		}
	}

	res.Nodes = s.Nodes()
	if res.Depth == 0 {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%w: %w", ErrAborted, err)
		}
		return res, ErrAborted
	}
	return res, nil
}

// bookMoves returns the book replies that are legal on b. The book only
// applies to games from the standard starting position.
func (e *Engine) bookMoves(b *board.Board) []board.Move {
	if e.book == nil || b.StartPosition() != board.StartFEN {
		return nil
	}
	us := b.SideToMove()
	var moves []board.Move
	for _, text := range e.book.Suggest(b.Plies()) {
		m, res := b.Resolve(us, text)
		if res == board.Ok {
			res = b.Try(us, m, nil)
		}
		if res != board.Ok {
			log.WithFields(log.Fields{
				"move":   text,
				"result": res.String(),
			}).Warn("book move rejected")
			continue
		}
		moves = append(moves, m)
	}
	return moves
}

// Choose picks one candidate of r uniformly at random.
func (e *Engine) Choose(r Result) (board.Move, bool) {
	if len(r.Moves) == 0 {
		return board.NullMove, false
	}
	return r.Moves[rand.Intn(len(r.Moves))], true
}

// Stop stops the current search. The search returns the last completed
// depth.
func (e *Engine) Stop() {
	e.stopFlag.Store(true)
}

// Clear clears the evaluation cache.
func (e *Engine) Clear() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Evaluate returns the static evaluation of b for the side to move.
func (e *Engine) Evaluate(b *board.Board) int {
	return e.eval.Evaluate(b, b.SideToMove())
}

// IsMateScore returns true if score includes a checkmate term.
func IsMateScore(score int) bool {
	return abs(score) > maxPositional+CheckValue
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if IsMateScore(score) {
		if score > 0 {
			return "mate"
		}
		return "mated"
	}

	sign := ""
	if score < 0 {
		sign = "-"
	}
	score = abs(score)
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
