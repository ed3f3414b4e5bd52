package board

// Game wraps a Board and tracks whose turn it is. The turn only passes when
// a move is accepted.
type Game struct {
	board *Board
	turn  Color
}

// NewGame starts a game from the standard position.
func NewGame() *Game {
	b := NewBoard()
	return &Game{board: b, turn: b.SideToMove()}
}

// NewGameFromFEN starts a game from a position string.
func NewGameFromFEN(fen string) (*Game, error) {
	b, err := ParseFEN(fen)
	if err != nil {
		return nil, err
	}
	return &Game{board: b, turn: b.SideToMove()}, nil
}

// Board returns the underlying board.
func (g *Game) Board() *Board {
	return g.board
}

// Turn returns the color to move.
func (g *Game) Turn() Color {
	return g.turn
}

// Move plays text for the side to move.
func (g *Game) Move(text string) Result {
	return g.MoveAs(g.turn, text)
}

// MoveAs plays text for color c, rejecting it when it is not c's turn.
// Moves are recorded in standard algebraic notation whatever form they were
// entered in.
func (g *Game) MoveAs(c Color, text string) Result {
	if c != g.turn {
		return WrongTurn
	}
	var res Result
	if m, r := g.board.Resolve(c, text); r == Ok {
		res = g.board.PlaySAN(c, m)
	} else {
		res = g.board.Move(c, text)
	}
	if res == Ok {
		g.turn = c.Other()
	}
	return res
}

// Play plays a generated move for the side to move.
func (g *Game) Play(m Move) Result {
	res := g.board.PlaySAN(g.turn, m)
	if res == Ok {
		g.turn = g.turn.Other()
	}
	return res
}

// Undo takes back the last ply.
func (g *Game) Undo() error {
	if err := g.board.Undo(); err != nil {
		return err
	}
	g.turn = g.board.SideToMove()
	return nil
}

// Over returns true once the game has ended.
func (g *Game) Over() bool {
	return g.board.Status().Over()
}
