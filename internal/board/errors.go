package board

import (
	"errors"
	"fmt"
)

var (
	ErrNoKing        = errors.New("king missing")
	ErrCorrupt       = errors.New("board corrupt")
	ErrNothingToUndo = errors.New("nothing to undo")
)

// ParseError reports malformed move text or position text.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func parseErr(input, format string, args ...any) error {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}

// Result is the outcome of a move attempt. Every value other than Ok leaves
// the board exactly as it was before the attempt.
type Result int

const (
	Ok Result = iota
	InvalidFormat
	NoSuchPiece
	MoreThanOnePieceInRange
	NoPieceInRange
	KingInCheck
	InvalidKill
	InvalidCastle
	InvalidPromotion
	GameOver
	WrongTurn
	CachError
	UnknownError
)

var resultText = [...]string{
	Ok:                      "ok",
	InvalidFormat:           "invalid move format",
	NoSuchPiece:             "no such piece",
	MoreThanOnePieceInRange: "more than one piece can reach the target, disambiguate",
	NoPieceInRange:          "no piece can reach the target",
	KingInCheck:             "move leaves the king in check",
	InvalidKill:             "capture declared but nothing to capture",
	InvalidCastle:           "castling not allowed",
	InvalidPromotion:        "promotion not allowed",
	GameOver:                "game is over",
	WrongTurn:               "not this side's turn",
	CachError:               "internal board error",
	UnknownError:            "unknown error",
}

// String returns a human readable reason.
func (r Result) String() string {
	if r < 0 || int(r) >= len(resultText) {
		return resultText[UnknownError]
	}
	return resultText[r]
}
