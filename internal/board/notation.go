package board

import "strings"

// MoveDescriptor is the parsed intent of a move text.
type MoveDescriptor struct {
	Kind      Kind
	Target    Position
	FromCol   int // -1 unless a start file was given
	FromRow   int // -1 unless a start rank was given
	Kill      bool
	Castle    CastleSide
	DrawOffer bool
	Resign    bool
	Promotion Kind // NoKind unless "=<kind>" was given
}

// Valid reports whether the descriptor names something playable.
func (d MoveDescriptor) Valid() bool {
	if d.Castle != NoCastle || d.DrawOffer || d.Resign {
		return true
	}
	return d.Kind < NoKind && d.Target.Valid()
}

// Special move tokens.
const (
	DrawToken   = "(=)"
	ResignToken = "resign"
)

// ParseMove parses algebraic move text: "(=)", "o-o", "o-o-o", "resign" or
// [piece][file][rank][x]<target>[=piece]. Trailing + # ! ? glyphs are ignored.
func ParseMove(text string) (MoveDescriptor, error) {
	d := MoveDescriptor{
		Kind:      Pawn,
		Target:    NoPosition,
		FromCol:   -1,
		FromRow:   -1,
		Promotion: NoKind,
	}

	s := strings.TrimRight(strings.TrimSpace(text), "+#!?")
	switch strings.ToLower(s) {
	case DrawToken:
		d.Kind = NoKind
		d.DrawOffer = true
		return d, nil
	case ResignToken:
		d.Kind = NoKind
		d.Resign = true
		return d, nil
	case "o-o", "0-0":
		d.Kind = King
		d.Castle = KingSide
		return d, nil
	case "o-o-o", "0-0-0":
		d.Kind = King
		d.Castle = QueenSide
		return d, nil
	}

	if i := strings.IndexByte(s, '='); i >= 0 {
		suffix := s[i+1:]
		if len(suffix) != 1 {
			return d, parseErr(text, "invalid promotion suffix %q", suffix)
		}
		switch k := KindFromLetter(suffix[0]); k {
		case Queen, Rook, Bishop, Knight:
			d.Promotion = k
		default:
			return d, parseErr(text, "cannot promote to %q", suffix)
		}
		s = s[:i]
	}

	if len(s) < 2 || len(s) > 6 {
		return d, parseErr(text, "expected 2 to 6 characters")
	}

	first := s[0]
	switch {
	case first >= 'A' && first <= 'Z':
		d.Kind = KindFromLetter(first)
		if d.Kind == NoKind {
			return d, parseErr(text, "unknown piece %q", first)
		}
		s = s[1:]
	case first >= 'a' && first <= 'h':
	default:
		return d, parseErr(text, "invalid first character %q", first)
	}

	if len(s) < 2 {
		return d, parseErr(text, "missing target square")
	}
	target, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return d, parseErr(text, "invalid target square %q", s[len(s)-2:])
	}
	d.Target = target

	hints := s[:len(s)-2]
	if strings.HasSuffix(hints, "x") {
		d.Kill = true
		hints = hints[:len(hints)-1]
	}
	if len(hints) > 2 {
		return d, parseErr(text, "too many start hints %q", hints)
	}
	for i := 0; i < len(hints); i++ {
		ch := hints[i]
		switch {
		case ch >= 'a' && ch <= 'h' && d.FromCol < 0 && d.FromRow < 0:
			d.FromCol = int(ch - 'a')
		case ch >= '1' && ch <= '8' && d.FromRow < 0:
			d.FromRow = int(ch - '1')
		default:
			return d, parseErr(text, "invalid start hint %q", ch)
		}
	}

	if d.Promotion != NoKind && d.Kind != Pawn {
		return d, parseErr(text, "only pawns promote")
	}
	return d, nil
}
