package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/cado2010/cach-sub000/internal/board"
	"github.com/cado2010/cach-sub000/internal/engine"
	"github.com/cado2010/cach-sub000/internal/storage"
)

// run feeds script to a fresh console and returns the console and its
// output.
func run(t *testing.T, store *storage.Storage, script ...string) (*Console, string) {
	t.Helper()
	var out bytes.Buffer
	c := New(engine.NewEngine(1), store, nil, strings.NewReader(strings.Join(script, "\n")+"\n"), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return c, out.String()
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name   string
		script []string
		want   []string
		fen    string
	}{
		{
			name:   "moves and fen",
			script: []string{"move e4", "move e5", "move Nf3", "fen"},
			want:   []string{"White played e4", "Black played e5", "White played Nf3"},
			fen:    "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq -",
		},
		{
			name:   "illegal move",
			script: []string{"move e5"},
			want:   []string{"illegal e5: " + board.NoPieceInRange.String()},
			fen:    board.StartFEN,
		},
		{
			name:   "undo",
			script: []string{"move d4", "undo", "undo"},
			want:   []string{"White to move", "error: "},
			fen:    board.StartFEN,
		},
		{
			name:   "position with moves",
			script: []string{"position startpos moves e4 d5 exd5"},
			want:   []string{"rnbqkbnr/ppp1pppp/8/3P4/8/8/PPPP1PPP/RNBQKBNR b KQkq -"},
			fen:    "rnbqkbnr/ppp1pppp/8/3P4/8/8/PPPP1PPP/RNBQKBNR b KQkq -",
		},
		{
			name:   "position from fen",
			script: []string{"position fen 4k3/8/8/8/8/8/8/4RK2 b - - moves Kd7"},
			fen:    "8/3k4/8/8/8/8/8/4RK2 w - -",
		},
		{
			name:   "bad position keeps the game",
			script: []string{"move e4", "position fen not a position", "fen"},
			want:   []string{"error: ", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq"},
		},
		{
			name:   "checkmate",
			script: []string{"move f3", "move e5", "move g4", "move Qh4", "status", "move a3"},
			want:   []string{"Black played Qh4#", "game over 0-1", "checkmate", "result 0-1", "illegal a3: " + board.GameOver.String()},
		},
		{
			name:   "draw agreed",
			script: []string{"move (=)", "move (=)", "status"},
			want:   []string{"draw agreed", "result 1/2-1/2"},
		},
		{
			name:   "eval and depth",
			script: []string{"eval", "depth 3", "depth 0", "level hard", "level"},
			want:   []string{"eval 0.00 (0) for White", "depth 3", "error: depth must be", "level hard"},
		},
		{
			name:   "unknown command",
			script: []string{"castle"},
			want:   []string{`error: unknown command "castle"`},
		},
		{
			name:   "storage disabled",
			script: []string{"save", "games"},
			want:   []string{"error: no storage"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := run(t, nil, tt.script...)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			if tt.fen != "" {
				if got := c.Game().Board().FEN(); got != tt.fen {
					t.Errorf("position %s, want %s", got, tt.fen)
				}
			}
		})
	}
}

func TestGoPlaysMove(t *testing.T) {
	c, out := run(t, nil, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - -", "go depth 1")
	if !strings.Contains(out, "bestmove Ra8#") {
		t.Errorf("output missing mate:\n%s", out)
	}
	if !strings.Contains(out, "info depth 1") {
		t.Errorf("output missing search info:\n%s", out)
	}
	if !c.Game().Over() {
		t.Error("game not over after the mating move")
	}
}

func TestEngineReplies(t *testing.T) {
	c, out := run(t, nil, "depth 1", "engine black", "move e4")
	if !strings.Contains(out, "bestmove ") || !strings.Contains(out, "Black played ") {
		t.Errorf("engine did not reply:\n%s", out)
	}
	if c.Game().Turn() != board.White {
		t.Errorf("turn %s after the engine reply", c.Game().Turn())
	}
}

func TestStopInfiniteSearch(t *testing.T) {
	for i := 0; i < 10; i++ {
		var out bytes.Buffer
		c := New(engine.NewEngine(1), nil, nil, strings.NewReader(""), &out)

		done := make(chan struct{})
		go func() {
			defer close(done)
			c.Execute("go infinite nobook")
			c.Execute("stop")
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("stop did not end the search (run %d)", i)
		}

		got := out.String()
		if !strings.Contains(got, "search stopped") && !strings.Contains(got, "bestmove ") {
			t.Errorf("run %d: no stop or move reported:\n%s", i, got)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	in, w := io.Pipe()
	defer w.Close()
	var out bytes.Buffer
	c := New(engine.NewEngine(0), store, nil, in, &out)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	if _, err := io.WriteString(w, "depth 7\ngo infinite nobook\n"); err != nil {
		t.Fatal(err)
	}
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.LastPlayed.IsZero() {
		t.Error("preferences not saved on cancel")
	}
}

func TestGoOptions(t *testing.T) {
	base := engine.SearchLimits{Depth: 4}
	tests := []struct {
		args    string
		want    engine.SearchLimits
		wantErr bool
	}{
		{"", base, false},
		{"depth 2", engine.SearchLimits{Depth: 2}, false},
		{"movetime 250 nodes 1000", engine.SearchLimits{Depth: 4, MoveTime: 250e6, Nodes: 1000}, false},
		{"infinite", engine.SearchLimits{Infinite: true}, false},
		{"nobook", engine.SearchLimits{Depth: 4, NoBook: true}, false},
		{"depth", base, true},
		{"depth x", base, true},
		{"ponder", base, true},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			got, err := parseGoOptions(strings.Fields(tt.args), base)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBookCommands(t *testing.T) {
	dir := t.TempDir()
	pgn := filepath.Join(dir, "openings.pgn")
	saved := filepath.Join(dir, "openings.book")
	text := "[Opening \"King's Pawn\"]\n\n1. e4 e5 2. Nf3 *\n"
	if err := os.WriteFile(pgn, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	_, out := run(t, nil,
		"book pgn "+pgn,
		"book save "+saved,
		"book load "+saved,
		"go depth 1",
		"book",
	)
	for _, w := range []string{"book loaded", "book saved " + saved, "bestmove e4 (book, 1 candidates)", "opening King's Pawn", "suggest e5"} {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}

	_, out = run(t, nil, "book load "+filepath.Join(dir, "missing.book"), "book store main")
	if strings.Count(out, "error: ") != 2 {
		t.Errorf("want two errors:\n%s", out)
	}
}

func TestSaveAndLoad(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	c, out := run(t, store, "move e4", "move c5", "move Nf3", "save", "move d6", "save", "games")
	ids := regexp.MustCompile(`saved ([0-9a-f-]{36})`).FindAllStringSubmatch(out, -1)
	if len(ids) != 2 || ids[0][1] != ids[1][1] {
		t.Fatalf("want the same id saved twice:\n%s", out)
	}
	if !strings.Contains(out, "1 games") {
		t.Errorf("games listing:\n%s", out)
	}
	want := c.Game().Board().FEN()

	loaded, out := run(t, store, "load "+ids[0][1], "load not-an-id")
	if !strings.Contains(out, "loaded "+ids[0][1]+": 4 plies, White to move") {
		t.Errorf("load output:\n%s", out)
	}
	if !strings.Contains(out, "error: ") {
		t.Errorf("malformed id accepted:\n%s", out)
	}
	if got := loaded.Game().Board().FEN(); got != want {
		t.Errorf("loaded position %s, want %s", got, want)
	}

	_, out = run(t, store, "book pgn missing.pgn")
	if !strings.Contains(out, "error: ") {
		t.Errorf("missing PGN accepted:\n%s", out)
	}
}

func TestPreferencesPersist(t *testing.T) {
	store, err := storage.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	var out bytes.Buffer
	c := New(engine.NewEngine(0), store, nil, strings.NewReader("depth 5\nlevel easy\nengine white\nquit\n"), &out)
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	prefs, err := store.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.Depth != 5 || prefs.Difficulty != "easy" || prefs.EngineColor != "white" {
		t.Errorf("got %+v", prefs)
	}
}
