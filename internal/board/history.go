package board

// entryKind tags a history entry.
type entryKind uint8

const (
	entryPosition  entryKind = iota // piece moved; holds prior position and moved flag
	entryAlive                      // piece was killed; holds its active-list slot
	entryPromotion                  // pawn replaced by a promoted piece
)

type historyEntry struct {
	kind     entryKind
	piece    Handle
	from     Position
	moved    bool
	slot     int
	promoted Handle
}

// plyRecord is the log of one committed move.
type plyRecord struct {
	cp        Checkpoint
	text      string
	mover     Color
	castle    bool
	meta      bool // draw offer or resignation; no pieces moved
	move      Move
	status    Status // status before the move
	toMove    Color  // side to move before the move
	enPassant Position
}

// Checkpoint marks the start of a move attempt. It is returned by begin and
// must be handed to exactly one of commit or revert.
type Checkpoint struct {
	depth int
	arena int
	plies int
}

func (b *Board) begin() Checkpoint {
	return Checkpoint{depth: len(b.history), arena: len(b.pieces), plies: len(b.plies)}
}

// revert pops every history entry pushed since cp, newest first.
func (b *Board) revert(cp Checkpoint) {
	for len(b.history) > cp.depth {
		e := b.history[len(b.history)-1]
		b.history = b.history[:len(b.history)-1]
		b.undoEntry(e)
	}
	b.pieces = b.pieces[:cp.arena]
	b.plies = b.plies[:cp.plies]
}

func (b *Board) undoEntry(e historyEntry) {
	switch e.kind {
	case entryPosition:
		pc := &b.pieces[e.piece]
		if b.squares[pc.Pos.Row][pc.Pos.Col].Piece == e.piece {
			b.squares[pc.Pos.Row][pc.Pos.Col].Piece = NoPiece
		}
		pc.Pos = e.from
		pc.Moved = e.moved
		b.squares[e.from.Row][e.from.Col].Piece = e.piece
	case entryAlive:
		pc := &b.pieces[e.piece]
		pc.Alive = true
		b.insertActive(pc.Color, pc.Kind, e.slot, e.piece)
		if n := len(b.captured[pc.Color]); n > 0 && b.captured[pc.Color][n-1] == e.piece {
			b.captured[pc.Color] = b.captured[pc.Color][:n-1]
		}
		b.squares[pc.Pos.Row][pc.Pos.Col].Piece = e.piece
	case entryPromotion:
		promoted := &b.pieces[e.promoted]
		promoted.Alive = false
		b.removeActive(promoted.Color, promoted.Kind, e.promoted)
		pawn := &b.pieces[e.piece]
		pawn.Alive = true
		b.insertActive(pawn.Color, pawn.Kind, e.slot, e.piece)
		b.squares[pawn.Pos.Row][pawn.Pos.Col].Piece = e.piece
	}
}

// movePiece relocates a piece, recording its prior state.
func (b *Board) movePiece(h Handle, to Position) {
	pc := &b.pieces[h]
	b.history = append(b.history, historyEntry{kind: entryPosition, piece: h, from: pc.Pos, moved: pc.Moved})
	if b.squares[pc.Pos.Row][pc.Pos.Col].Piece == h {
		b.squares[pc.Pos.Row][pc.Pos.Col].Piece = NoPiece
	}
	pc.Pos = to
	pc.Moved = true
	b.squares[to.Row][to.Col].Piece = h
}

// kill takes a piece off the board and into the captured list.
func (b *Board) kill(h Handle) {
	pc := &b.pieces[h]
	slot := b.removeActive(pc.Color, pc.Kind, h)
	b.history = append(b.history, historyEntry{kind: entryAlive, piece: h, slot: slot})
	pc.Alive = false
	b.captured[pc.Color] = append(b.captured[pc.Color], h)
	if b.squares[pc.Pos.Row][pc.Pos.Col].Piece == h {
		b.squares[pc.Pos.Row][pc.Pos.Col].Piece = NoPiece
	}
}

// promote replaces a pawn with a new piece of kind k on the same square.
func (b *Board) promote(h Handle, k Kind) Handle {
	pawn := &b.pieces[h]
	slot := b.removeActive(pawn.Color, pawn.Kind, h)
	pawn.Alive = false
	color, pos := pawn.Color, pawn.Pos
	promoted := b.addPiece(color, k, pos)
	b.pieces[promoted].Moved = true
	b.history = append(b.history, historyEntry{kind: entryPromotion, piece: h, slot: slot, promoted: promoted})
	return promoted
}

func (b *Board) removeActive(c Color, k Kind, h Handle) int {
	list := b.active[c][k]
	for i, x := range list {
		if x == h {
			b.active[c][k] = append(list[:i], list[i+1:]...)
			return i
		}
	}
	return -1
}

func (b *Board) insertActive(c Color, k Kind, slot int, h Handle) {
	list := b.active[c][k]
	if slot < 0 || slot > len(list) {
		slot = len(list)
	}
	list = append(list, NoPiece)
	copy(list[slot+1:], list[slot:])
	list[slot] = h
	b.active[c][k] = list
}
