package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/cado2010/cach-sub000/internal/board"
	"github.com/cado2010/cach-sub000/internal/book"
)

func mustFEN(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

// pick returns the legal move of the side to move from one square to
// another.
func pick(t *testing.T, b *board.Board, from, to string) board.Move {
	t.Helper()
	for _, m := range b.LegalMoves(b.SideToMove()) {
		if m.From.String() == from && m.To.String() == to {
			return m
		}
	}
	t.Fatalf("no legal move %s-%s", from, to)
	return board.NullMove
}

func pickCastle(t *testing.T, b *board.Board, side board.CastleSide) board.Move {
	t.Helper()
	for _, m := range b.LegalMoves(b.SideToMove()) {
		if m.Castle == side {
			return m
		}
	}
	t.Fatalf("no legal castle %s", side)
	return board.NullMove
}

func TestSearchStartPosition(t *testing.T) {
	b := board.NewBoard()
	before, hash := b.FEN(), b.Hash()

	eng := NewEngine(1)
	res, err := eng.BestMoves(context.Background(), b, SearchLimits{Depth: 3, NoBook: true})
	if err != nil {
		t.Fatalf("BestMoves: %v", err)
	}
	if len(res.Moves) == 0 {
		t.Fatal("no candidates for the starting position")
	}
	if res.Depth != 3 {
		t.Errorf("Depth = %d, want 3", res.Depth)
	}
	if res.FromBook {
		t.Error("FromBook set with the book disabled")
	}
	if abs(res.Score) > 200 {
		t.Errorf("Score = %d, want a roughly balanced start", res.Score)
	}
	if b.FEN() != before || b.Hash() != hash {
		t.Errorf("search changed the board: %s", b.FEN())
	}
	for _, m := range res.Moves {
		if m.Kind == board.King || m.Kind == board.Queen {
			t.Errorf("candidate %s should have been filtered in the opening", m)
		}
	}
}

func TestFindsMateInOne(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		from, to string
	}{
		{"back rank white", "6k1/5ppp/8/8/8/8/8/R5K1 w - -", "a1", "a8"},
		{"back rank black", "r5k1/8/8/8/8/8/5PPP/6K1 b - -", "a8", "a1"},
		{"queen and king", "7k/8/6K1/8/8/8/8/1Q6 w - -", "b1", "b8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustFEN(t, tt.fen)
			res, err := NewEngine(0).BestMoves(context.Background(), b, SearchLimits{Depth: 1})
			if err != nil {
				t.Fatalf("BestMoves: %v", err)
			}
			if !IsMateScore(res.Score) || res.Score < 0 {
				t.Errorf("Score = %d, want a winning mate score", res.Score)
			}
			found := false
			for _, m := range res.Moves {
				if m.From.String() == tt.from && m.To.String() == tt.to {
					found = true
				}
			}
			if !found {
				t.Errorf("candidates %v do not include %s-%s", res.Moves, tt.from, tt.to)
			}
		})
	}
}

func TestCapturesHangingQueen(t *testing.T) {
	b := mustFEN(t, "3qk3/8/8/8/8/8/8/3RK3 w - -")
	res, err := NewEngine(1).BestMoves(context.Background(), b, SearchLimits{Depth: 2})
	if err != nil {
		t.Fatalf("BestMoves: %v", err)
	}
	best, ok := res.Best()
	if !ok || best.From.String() != "d1" || best.To.String() != "d8" || !best.Capture {
		t.Errorf("Best = %v, want Rd1xd8", best)
	}
}

func TestBookFastPath(t *testing.T) {
	bk, err := book.Build(book.DefaultDepth, "1. e4 e5 2. Nf3 Nc6 *")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	eng := NewEngine(1)
	eng.SetBook(bk)

	g := board.NewGame()
	res, err := eng.BestMoves(context.Background(), g.Board(), SearchLimits{Depth: 2})
	if err != nil {
		t.Fatalf("BestMoves: %v", err)
	}
	if !res.FromBook || len(res.Moves) != 1 || res.Moves[0].To.String() != "e4" {
		t.Fatalf("got %+v, want book move e4", res)
	}

	if r := g.Move("e4"); r != board.Ok {
		t.Fatalf("e4: %v", r)
	}
	res, _ = eng.BestMoves(context.Background(), g.Board(), SearchLimits{Depth: 2})
	if !res.FromBook || res.Moves[0].To.String() != "e5" {
		t.Fatalf("got %+v, want book move e5", res)
	}

	t.Run("leaves the book", func(t *testing.T) {
		if r := g.Move("a5"); r != board.Ok {
			t.Fatalf("a5: %v", r)
		}
		res, err := eng.BestMoves(context.Background(), g.Board(), SearchLimits{Depth: 1})
		if err != nil {
			t.Fatalf("BestMoves: %v", err)
		}
		if res.FromBook || res.Depth != 1 {
			t.Errorf("got %+v, want a searched result", res)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		res, _ := eng.BestMoves(context.Background(), board.NewBoard(), SearchLimits{Depth: 1, NoBook: true})
		if res.FromBook {
			t.Error("book used with NoBook set")
		}
	})

	t.Run("other start position", func(t *testing.T) {
		b := mustFEN(t, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w Kkq -")
		res, _ := eng.BestMoves(context.Background(), b, SearchLimits{Depth: 1})
		if res.FromBook {
			t.Error("book used for a game not from the standard position")
		}
	})
}

func TestSearchInterrupted(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewEngine(0).BestMoves(ctx, board.NewBoard(), SearchLimits{Depth: 8, NoBook: true})
		if !errors.Is(err, ErrAborted) || !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want ErrAborted wrapping context.Canceled", err)
		}
	})

	t.Run("node limit", func(t *testing.T) {
		_, err := NewEngine(0).BestMoves(context.Background(), board.NewBoard(), SearchLimits{Nodes: 1, NoBook: true})
		if !errors.Is(err, ErrAborted) {
			t.Errorf("err = %v, want ErrAborted", err)
		}
	})

	t.Run("stop keeps completed depth", func(t *testing.T) {
		eng := NewEngine(0)
		eng.OnInfo = func(info SearchInfo) {
			if info.Depth == 2 {
				eng.Stop()
			}
		}
		b := board.NewBoard()
		res, err := eng.BestMoves(context.Background(), b, SearchLimits{Infinite: true, NoBook: true})
		if err != nil {
			t.Fatalf("BestMoves: %v", err)
		}
		if res.Depth != 2 || len(res.Moves) == 0 {
			t.Errorf("got depth %d with %d candidates, want depth 2", res.Depth, len(res.Moves))
		}
		if b.FEN() != board.StartFEN {
			t.Errorf("board changed to %s", b.FEN())
		}
	})
}

func TestSearchGameOver(t *testing.T) {
	g := board.NewGame()
	for _, mv := range []string{"f3", "e5", "g4", "Qh4"} {
		if r := g.Move(mv); r != board.Ok {
			t.Fatalf("%s: %v", mv, r)
		}
	}
	if _, err := NewEngine(0).BestMoves(context.Background(), g.Board(), SearchLimits{Depth: 2}); !errors.Is(err, ErrGameOver) {
		t.Errorf("err = %v, want ErrGameOver", err)
	}
}

func TestChoose(t *testing.T) {
	eng := NewEngine(0)
	if _, ok := eng.Choose(Result{}); ok {
		t.Error("Choose on an empty result succeeded")
	}
	b := board.NewBoard()
	moves := []board.Move{pick(t, b, "e2", "e4"), pick(t, b, "d2", "d4")}
	for i := 0; i < 20; i++ {
		m, ok := eng.Choose(Result{Moves: moves})
		if !ok || !containsMove(moves, m) {
			t.Fatalf("Choose = %v, want one of %v", m, moves)
		}
	}
}

func TestFilterCandidates(t *testing.T) {
	const (
		openKing   = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq -"
		developed  = "r3k2r/pppqbppp/2npbn2/4p3/4P3/2NPBN2/PPPQBPPP/R3K2R w KQkq -"
		exchange   = "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq -"
		kingOnly   = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPPKPPP/RNBQ1BNR w kq -"
		pawnEnding = "4k3/8/8/8/8/8/4P3/4K3 w - -"
		kingTakes  = "rnbqkb1r/pppp1ppp/8/4p3/4P3/3n4/PPP1KPPP/RNBQ1BNR w kq -"
	)

	type sq struct{ from, to string }
	tests := []struct {
		name   string
		fen    string
		moves  []sq
		castle board.CastleSide
		want   []sq
	}{
		{"king walk dropped", openKing, []sq{{"e1", "e2"}, {"g1", "f3"}}, board.NoCastle, []sq{{"g1", "f3"}}},
		{"castle kept", developed, []sq{{"e1", "f1"}}, board.KingSide, []sq{{"", ""}}},
		{"rook waits for castle", developed, []sq{{"h1", "g1"}, {"f3", "g5"}}, board.NoCastle, []sq{{"f3", "g5"}}},
		{"queen waits for midgame", developed, []sq{{"d2", "c1"}, {"c3", "b1"}}, board.NoCastle, []sq{{"c3", "b1"}}},
		{"king capture dropped before the endgame", kingTakes, []sq{{"e2", "d3"}, {"g1", "f3"}}, board.NoCastle, []sq{{"g1", "f3"}}},
		{"captures preferred", exchange, []sq{{"g1", "f3"}, {"e4", "d5"}}, board.NoCastle, []sq{{"e4", "d5"}}},
		{"empty filter falls back", kingOnly, []sq{{"e2", "d3"}, {"e2", "f3"}}, board.NoCastle, []sq{{"e2", "d3"}, {"e2", "f3"}}},
		{"king walks in the endgame", pawnEnding, []sq{{"e1", "d1"}, {"e2", "e3"}}, board.NoCastle, []sq{{"e1", "d1"}, {"e2", "e3"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustFEN(t, tt.fen)
			var moves []board.Move
			for _, s := range tt.moves {
				moves = append(moves, pick(t, b, s.from, s.to))
			}
			if tt.castle != board.NoCastle {
				moves = append(moves, pickCastle(t, b, tt.castle))
			}

			got := FilterCandidates(b, b.SideToMove(), moves)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %d moves", got, len(tt.want))
			}
			for i, w := range tt.want {
				if w.from == "" {
					if got[i].Castle != tt.castle {
						t.Errorf("move %d = %v, want castle", i, got[i])
					}
					continue
				}
				if got[i].From.String() != w.from || got[i].To.String() != w.to {
					t.Errorf("move %d = %v, want %s-%s", i, got[i], w.from, w.to)
				}
			}
		})
	}
}

func TestOrderMoves(t *testing.T) {
	b := mustFEN(t, "4k3/8/8/2q1p3/3P4/8/8/4K3 w - -")
	moves := OrderMoves(b, b.LegalMoves(board.White))
	if len(moves) < 2 {
		t.Fatalf("got %d moves", len(moves))
	}
	if moves[0].To.String() != "c5" || moves[1].To.String() != "e5" {
		t.Errorf("order starts %v %v, want dxc5 then dxe5", moves[0], moves[1])
	}
	for _, m := range moves[2:] {
		if m.Capture {
			t.Errorf("capture %v sorted after quiet moves", m)
		}
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{125, "1.25"},
		{-40, "-0.40"},
		{-305, "-3.05"},
		{MateValue, "mate"},
		{-MateValue + 500, "mated"},
	}
	for _, tt := range tests {
		if got := ScoreToString(tt.score); got != tt.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		got, err := ParseDifficulty(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDifficulty(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDifficulty("grandmaster"); err == nil {
		t.Error("ParseDifficulty accepted an unknown level")
	}
}
