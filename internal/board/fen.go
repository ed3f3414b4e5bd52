package board

import (
	"strconv"
	"strings"
)

// StartFEN is the position text of the standard starting arrangement.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"

// ParseFEN parses a position string:
//
//	<ranks 8..1 separated by '/'> <w|b> <KQkq|-> <en passant|-> [halfmove fullmove]
//
// Boards without kings are accepted so that partial positions can be probed.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 3 {
		return nil, parseErr(fen, "need at least 3 fields, got %d", len(parts))
	}

	b := newEmptyBoard()
	if err := parsePlacement(b, fen, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		b.toMove = White
	case "b":
		b.toMove = Black
	default:
		return nil, parseErr(fen, "invalid side to move %q", parts[1])
	}

	if err := parseCastleRights(b, fen, parts[2]); err != nil {
		return nil, err
	}

	if len(parts) > 3 && parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, parseErr(fen, "invalid en passant square %q", parts[3])
		}
		b.initialEP = sq
	}

	if len(parts) > 5 {
		full, err := strconv.Atoi(parts[5])
		if err != nil || full < 1 {
			return nil, parseErr(fen, "invalid full-move number %q", parts[5])
		}
		b.startPly = (full - 1) * 2
		if b.toMove == Black {
			b.startPly++
		}
	}

	b.refreshStatus()
	b.startFEN = b.FEN()
	return b, nil
}

func parsePlacement(b *Board, fen, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return parseErr(fen, "need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		row := 7 - i
		col := 0
		for j := 0; j < len(rankStr); j++ {
			ch := rankStr[j]
			if col > 7 {
				return parseErr(fen, "too many squares in rank %d", row+1)
			}
			if ch >= '1' && ch <= '8' {
				col += int(ch - '0')
				continue
			}
			color := White
			upper := ch
			if ch >= 'a' && ch <= 'z' {
				color = Black
				upper = ch - ('a' - 'A')
			}
			kind := KindFromLetter(upper)
			if kind == NoKind {
				return parseErr(fen, "invalid piece character %q", ch)
			}
			h := b.addPiece(color, kind, Pos(row, col))
			b.pieces[h].Moved = true
			if kind == Pawn {
				b.pieces[h].Moved = row != pawnRow(color)
			}
			col++
		}
		if col != 8 {
			return parseErr(fen, "rank %d has %d squares", row+1, col)
		}
	}
	return nil
}

// Castle-right letters clear the moved flag of the matching king and rook.
func parseCastleRights(b *Board, fen, rights string) error {
	if rights == "-" {
		return nil
	}
	for i := 0; i < len(rights); i++ {
		var c Color
		var side CastleSide
		switch rights[i] {
		case 'K':
			c, side = White, KingSide
		case 'Q':
			c, side = White, QueenSide
		case 'k':
			c, side = Black, KingSide
		case 'q':
			c, side = Black, QueenSide
		default:
			return parseErr(fen, "invalid castling character %q", rights[i])
		}
		king := b.At(Pos(c.HomeRow(), 4))
		rook := b.At(Pos(c.HomeRow(), side.rookCol()))
		if king == nil || king.Kind != King || king.Color != c {
			continue
		}
		if rook == nil || rook.Kind != Rook || rook.Color != c {
			continue
		}
		king.Moved = false
		rook.Moved = false
	}
	return nil
}

// FEN returns the position string of the board.
func (b *Board) FEN() string {
	var sb strings.Builder

	for row := 7; row >= 0; row-- {
		empty := 0
		for col := 0; col < 8; col++ {
			pc := b.At(Pos(row, col))
			if pc == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteByte(pc.Char())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.toMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(b.castleRights())

	sb.WriteByte(' ')
	sb.WriteString(b.enPassantTarget().String())

	return sb.String()
}

func (b *Board) castleRights() string {
	s := ""
	for _, c := range [2]Color{White, Black} {
		for _, side := range [2]CastleSide{KingSide, QueenSide} {
			if !b.castleRightIntact(c, side) {
				continue
			}
			letter := side.letter()
			if c == Black {
				letter += 'a' - 'A'
			}
			s += string(letter)
		}
	}
	if s == "" {
		return "-"
	}
	return s
}

// castleRightIntact reports whether king and rook are unmoved on their home
// squares; it says nothing about attacked or blocked squares.
func (b *Board) castleRightIntact(c Color, side CastleSide) bool {
	king := b.At(Pos(c.HomeRow(), 4))
	if king == nil || king.Kind != King || king.Color != c || king.Moved {
		return false
	}
	rook := b.At(Pos(c.HomeRow(), side.rookCol()))
	return rook != nil && rook.Kind == Rook && rook.Color == c && !rook.Moved
}
