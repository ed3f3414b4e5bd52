// Package console implements a line-oriented command interface for playing
// games against the engine from a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/cado2010/cach-sub000/internal/board"
	"github.com/cado2010/cach-sub000/internal/book"
	"github.com/cado2010/cach-sub000/internal/engine"
	"github.com/cado2010/cach-sub000/internal/storage"
)

// Console reads commands from in and writes replies to out. Searches run in
// the background so that "stop" can interrupt them; every other command
// waits for a running search to finish first.
type Console struct {
	engine *engine.Engine
	store  *storage.Storage // nil disables save, load and games
	prefs  *storage.Preferences

	game        *board.Game
	gameID      uuid.UUID
	engineColor board.Color

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // guards out

	ctx          context.Context
	cancelSearch context.CancelFunc
	searchDone   chan struct{}
}

// New creates a console for eng. store may be nil; prefs may be nil for
// the defaults.
func New(eng *engine.Engine, store *storage.Storage, prefs *storage.Preferences, in io.Reader, out io.Writer) *Console {
	if prefs == nil {
		prefs = storage.DefaultPreferences()
	}
	c := &Console{
		engine:      eng,
		store:       store,
		prefs:       prefs,
		game:        board.NewGame(),
		engineColor: parseColor(prefs.EngineColor),
		in:          in,
		out:         out,
		ctx:         context.Background(),
	}
	if d, err := engine.ParseDifficulty(prefs.Difficulty); err == nil {
		eng.SetDifficulty(d)
	}
	eng.OnInfo = c.sendInfo
	return c
}

// Game returns the game being played.
func (c *Console) Game() *board.Game {
	return c.game
}

// Run reads commands until quit, end of input or ctx is done. Preferences
// are saved on every return.
func (c *Console) Run(ctx context.Context) error {
	c.ctx = ctx
	defer c.savePreferences()
	defer c.stop()

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				c.wait()
				return <-errc
			}
			if !c.Execute(line) {
				return nil
			}
		}
	}
}

// Execute runs one command line. It returns false on quit.
func (c *Console) Execute(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	if cmd == "stop" {
		c.stop()
		return true
	}
	c.wait()

	log.WithFields(log.Fields{"cmd": cmd, "args": len(args)}).Debug("command")

	switch cmd {
	case "quit", "exit":
		return false
	case "new":
		c.handleNew()
	case "position":
		c.handlePosition(args)
	case "move":
		c.handleMove(args)
	case "undo":
		c.handleUndo()
	case "go":
		c.handleGo(args)
	case "eval":
		score := c.engine.Evaluate(c.game.Board())
		c.printf("eval %s (%d) for %s\n", engine.ScoreToString(score), score, c.game.Turn())
	case "status":
		c.handleStatus()
	case "d":
		c.printf("%s", c.game.Board().String())
	case "fen":
		c.printf("%s\n", c.game.Board().FEN())
	case "book":
		c.handleBook(args)
	case "save":
		c.handleSave()
	case "load":
		c.handleLoad(args)
	case "games":
		c.handleGames()
	case "depth":
		c.handleDepth(args)
	case "level":
		c.handleLevel(args)
	case "engine":
		c.handleEngine(args)
	case "help":
		c.printf("%s", helpText)
	default:
		c.errorf("unknown command %q", cmd)
	}
	return true
}

const helpText = `commands:
  new                                   start a new game
  position startpos|fen <fen> [moves ...]
  move <move>                           play a move, (=) offers or accepts a draw
  undo                                  take back the last ply
  go [depth N] [movetime ms] [nodes N] [infinite]
  stop                                  stop the running search
  eval | status | d | fen
  book load|pgn|save <path>             opening book files
  book store|restore <name>             opening books in the database
  save | load <id> | games              saved games
  depth N | level easy|medium|hard | engine white|black|none
  quit
`

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) errorf(format string, args ...any) {
	c.printf("error: "+format+"\n", args...)
}

func (c *Console) handleNew() {
	c.engine.Clear()
	c.game = board.NewGame()
	c.gameID = uuid.Nil
	c.printf("new game\n")
	c.maybeReply()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e4 e5
//   - position fen <fen>
//   - position fen <fen> moves e4
func (c *Console) handlePosition(args []string) {
	if len(args) == 0 {
		c.errorf("position needs startpos or fen")
		return
	}

	setup, moves := args, []string(nil)
	for i, arg := range args {
		if arg == "moves" {
			setup, moves = args[:i], args[i+1:]
			break
		}
	}
	if len(setup) == 0 {
		c.errorf("position needs startpos or fen")
		return
	}

	var g *board.Game
	switch setup[0] {
	case "startpos":
		g = board.NewGame()
	case "fen":
		var err error
		g, err = board.NewGameFromFEN(strings.Join(setup[1:], " "))
		if err != nil {
			c.errorf("%v", err)
			return
		}
	default:
		c.errorf("position needs startpos or fen")
		return
	}

	for _, mv := range moves {
		if res := g.Move(mv); res != board.Ok {
			c.errorf("move %s: %s", mv, res)
			return
		}
	}
	c.game = g
	c.gameID = uuid.Nil
	c.printf("%s\n", g.Board().FEN())
}

func (c *Console) handleMove(args []string) {
	if len(args) != 1 {
		c.errorf("move needs exactly one move")
		return
	}
	mover := c.game.Turn()
	before := len(c.game.Board().Plies())
	if res := c.game.Move(args[0]); res != board.Ok {
		c.printf("illegal %s: %s\n", args[0], res)
		return
	}
	played := args[0]
	if plies := c.game.Board().Plies(); len(plies) > before {
		played = plies[len(plies)-1]
	}
	c.printf("%s played %s\n", mover, played)
	c.reportEnd()
	c.maybeReply()
}

func (c *Console) handleUndo() {
	if err := c.game.Undo(); err != nil {
		c.errorf("%v", err)
		return
	}
	c.printf("%s to move\n", c.game.Turn())
}

func (c *Console) handleStatus() {
	b := c.game.Board()
	st := b.Status()
	c.printf("turn %s\n", c.game.Turn())
	for _, col := range []board.Color{board.White, board.Black} {
		if st.InCheck[col] {
			c.printf("%s in check\n", col)
		}
	}
	switch {
	case st.Checkmate:
		c.printf("checkmate\n")
	case st.Stalemate:
		c.printf("stalemate\n")
	case st.Draw:
		c.printf("draw agreed\n")
	case st.Resigned != board.NoColor:
		c.printf("%s resigned\n", st.Resigned)
	case st.DrawOffer != board.NoColor:
		c.printf("%s offers a draw\n", st.DrawOffer)
	}
	c.printf("result %s\n", storage.ResultString(st))
	if bk := c.engine.Book(); bk != nil {
		if name := bk.Name(b.Plies()); name != "" {
			c.printf("opening %s\n", name)
		}
	}
}

// reportEnd prints the result once the game is over.
func (c *Console) reportEnd() {
	if st := c.game.Board().Status(); st.Over() {
		c.printf("game over %s\n", storage.ResultString(st))
	}
}

// maybeReply starts a search when the engine plays the side to move.
func (c *Console) maybeReply() {
	if c.engineColor == c.game.Turn() && !c.game.Over() {
		c.startSearch(c.limits())
	}
}

func (c *Console) limits() engine.SearchLimits {
	limits := engine.DifficultySettings[c.engine.Difficulty()]
	if c.prefs.Depth > 0 {
		limits.Depth = c.prefs.Depth
	}
	return limits
}

func (c *Console) handleGo(args []string) {
	if c.game.Over() {
		c.errorf("game is over")
		return
	}
	limits, err := parseGoOptions(args, c.limits())
	if err != nil {
		c.errorf("%v", err)
		return
	}
	c.startSearch(limits)
}

// parseGoOptions parses "go" command arguments on top of base.
func parseGoOptions(args []string, base engine.SearchLimits) (engine.SearchLimits, error) {
	limits := base
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			limits = engine.SearchLimits{Infinite: true}
			continue
		case "nobook":
			limits.NoBook = true
			continue
		case "depth", "movetime", "nodes":
		default:
			return limits, fmt.Errorf("unknown go option %q", args[i])
		}
		if i+1 >= len(args) {
			return limits, fmt.Errorf("go %s needs a value", args[i])
		}
		n, err := strconv.ParseUint(args[i+1], 10, 64)
		if err != nil {
			return limits, fmt.Errorf("go %s: %w", args[i], err)
		}
		switch args[i] {
		case "depth":
			limits.Depth = int(n)
		case "movetime":
			limits.MoveTime = time.Duration(n) * time.Millisecond
		case "nodes":
			limits.Nodes = n
		}
		i++
	}
	return limits, nil
}

// startSearch searches the current game in the background and plays the
// chosen move.
func (c *Console) startSearch(limits engine.SearchLimits) {
	g := c.game
	ctx, cancel := context.WithCancel(c.ctx)
	done := make(chan struct{})
	c.cancelSearch = cancel
	c.searchDone = done

	go func() {
		defer close(done)
		defer cancel()

		start := time.Now()
		res, err := c.engine.BestMoves(ctx, g.Board(), limits)
		if errors.Is(err, engine.ErrAborted) {
			c.printf("search stopped\n")
			return
		}
		if err != nil {
			log.WithError(err).Warn("search failed")
			c.errorf("search: %v", err)
			return
		}
		m, ok := c.engine.Choose(res)
		if !ok {
			c.errorf("no move found")
			return
		}

		mover := g.Turn()
		if r := g.Play(m); r != board.Ok {
			log.WithFields(log.Fields{"move": m.String(), "result": r.String()}).Error("engine move rejected")
			c.errorf("engine move %s: %s", m, r)
			return
		}
		plies := g.Board().Plies()
		san := plies[len(plies)-1]

		log.WithFields(log.Fields{
			"move":       san,
			"score":      res.Score,
			"depth":      res.Depth,
			"nodes":      res.Nodes,
			"candidates": len(res.Moves),
			"book":       res.FromBook,
			"elapsed":    time.Since(start).String(),
		}).Info("engine move")

		if res.FromBook {
			c.printf("bestmove %s (book, %d candidates)\n", san, len(res.Moves))
		} else {
			c.printf("bestmove %s score %s depth %d nodes %d candidates %d\n",
				san, engine.ScoreToString(res.Score), res.Depth, res.Nodes, len(res.Moves))
		}
		c.printf("%s played %s\n", mover, san)
		c.reportEnd()
	}()
}

// wait blocks until the running search, if any, has finished.
func (c *Console) wait() {
	if c.searchDone != nil {
		<-c.searchDone
		c.searchDone = nil
		c.cancelSearch = nil
	}
}

// stop interrupts the running search and waits for it. Cancelling the
// search context holds even if the search has not started yet.
func (c *Console) stop() {
	if c.searchDone != nil {
		c.cancelSearch()
		c.engine.Stop()
		c.wait()
	}
}

// sendInfo prints one completed iteration.
func (c *Console) sendInfo(info engine.SearchInfo) {
	moves := make([]string, len(info.Candidates))
	for i, m := range info.Candidates {
		moves[i] = m.String()
	}
	c.printf("info depth %d score %s nodes %d time %d candidates %s\n",
		info.Depth, engine.ScoreToString(info.Score), info.Nodes, info.Time.Milliseconds(), strings.Join(moves, " "))
}

func (c *Console) handleBook(args []string) {
	if len(args) == 0 {
		bk := c.engine.Book()
		if bk == nil {
			c.printf("no book\n")
			return
		}
		plies := c.game.Board().Plies()
		c.printf("book %d lines, depth %d\n", bk.Len(), bk.Depth())
		if name := bk.Name(plies); name != "" {
			c.printf("opening %s\n", name)
		}
		c.printf("suggest %s\n", strings.Join(bk.Suggest(plies), " "))
		return
	}
	if len(args) != 2 {
		c.errorf("book %s needs one argument", args[0])
		return
	}

	sub, arg := args[0], args[1]
	var (
		bk  *book.Book
		err error
	)
	switch sub {
	case "load":
		bk, err = book.Load(arg)
	case "pgn":
		bk, err = book.LoadPGN(arg, book.DefaultDepth)
	case "restore":
		if c.store == nil {
			c.errorf("no storage")
			return
		}
		bk, err = c.store.LoadBook(arg)
	case "save", "store":
		bk = c.engine.Book()
		if bk == nil {
			c.errorf("no book")
			return
		}
		if sub == "save" {
			err = bk.Save(arg)
		} else if c.store != nil {
			err = c.store.SaveBook(arg, bk)
		} else {
			c.errorf("no storage")
			return
		}
		if err != nil {
			c.errorf("%v", err)
			return
		}
		c.printf("book saved %s\n", arg)
		return
	default:
		c.errorf("unknown book command %q", sub)
		return
	}
	if err != nil {
		c.errorf("%v", err)
		return
	}

	c.engine.SetBook(bk)
	if sub == "load" || sub == "pgn" {
		c.prefs.BookPath = arg
	}
	log.WithFields(log.Fields{"source": arg, "lines": bk.Len()}).Info("book loaded")
	c.printf("book loaded %d lines\n", bk.Len())
}

func (c *Console) handleSave() {
	if c.store == nil {
		c.errorf("no storage")
		return
	}
	rec := storage.RecordGame(c.game)
	rec.ID = c.gameID
	if err := c.store.SaveGame(rec); err != nil {
		c.errorf("%v", err)
		return
	}
	c.gameID = rec.ID
	c.printf("saved %s\n", rec.ID)
}

func (c *Console) handleLoad(args []string) {
	if c.store == nil {
		c.errorf("no storage")
		return
	}
	if len(args) != 1 {
		c.errorf("load needs a game id")
		return
	}
	rec, err := c.store.LoadGame(args[0])
	if err != nil {
		c.errorf("%v", err)
		return
	}
	g, err := rec.Replay()
	if err != nil {
		c.errorf("%v", err)
		return
	}
	c.game = g
	c.gameID = rec.ID
	c.printf("loaded %s: %d plies, %s to move\n", rec.ID, len(rec.Plies), g.Turn())
}

func (c *Console) handleGames() {
	if c.store == nil {
		c.errorf("no storage")
		return
	}
	games, err := c.store.Games()
	if err != nil {
		c.errorf("%v", err)
		return
	}
	for _, rec := range games {
		c.printf("%s %-7s %3d plies  %s\n", rec.ID, rec.Result, len(rec.Plies), rec.Created.Format(time.DateTime))
	}
	c.printf("%d games\n", len(games))
}

func (c *Console) handleDepth(args []string) {
	if len(args) != 1 {
		c.printf("depth %d\n", c.prefs.Depth)
		return
	}
	d, err := strconv.Atoi(args[0])
	if err != nil || d < 1 || d > engine.MaxDepth {
		c.errorf("depth must be between 1 and %d", engine.MaxDepth)
		return
	}
	c.prefs.Depth = d
	c.printf("depth %d\n", d)
}

func (c *Console) handleLevel(args []string) {
	if len(args) != 1 {
		c.printf("level %s\n", c.engine.Difficulty())
		return
	}
	d, err := engine.ParseDifficulty(args[0])
	if err != nil {
		c.errorf("%v", err)
		return
	}
	c.engine.SetDifficulty(d)
	c.prefs.Difficulty = d.String()
	c.printf("level %s\n", d)
}

func (c *Console) handleEngine(args []string) {
	if len(args) != 1 {
		c.printf("engine %s\n", colorName(c.engineColor))
		return
	}
	col := parseColor(args[0])
	if col == board.NoColor && args[0] != "none" {
		c.errorf("engine plays white, black or none")
		return
	}
	c.engineColor = col
	c.prefs.EngineColor = colorName(col)
	c.printf("engine %s\n", colorName(col))
	c.maybeReply()
}

func (c *Console) savePreferences() {
	if c.store == nil {
		return
	}
	if err := c.store.SavePreferences(c.prefs); err != nil {
		log.WithError(err).Warn("could not save preferences")
	}
}

func parseColor(s string) board.Color {
	switch strings.ToLower(s) {
	case "white", "w":
		return board.White
	case "black", "b":
		return board.Black
	}
	return board.NoColor
}

func colorName(c board.Color) string {
	switch c {
	case board.White:
		return "white"
	case board.Black:
		return "black"
	}
	return "none"
}
