package book

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Game is one game record read from PGN text.
type Game struct {
	Tags   map[string]string
	Plies  []string
	Result string
}

// Name returns the variation name of the game: the Opening tag, falling back
// to Variation and ECO.
func (g Game) Name() string {
	for _, tag := range []string{"Opening", "Variation", "ECO"} {
		if v := g.Tags[tag]; v != "" {
			return v
		}
	}
	return ""
}

var resultTokens = map[string]bool{
	"1-0":     true,
	"0-1":     true,
	"1/2-1/2": true,
	"*":       true,
}

// ReadPGN reads every game from r. Input that is not valid UTF-8 is decoded
// as ISO 8859-1, the encoding most older PGN collections use.
func ReadPGN(r io.Reader) ([]Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pgn: %w", err)
	}
	if !utf8.Valid(data) {
		data, err = io.ReadAll(transform.NewReader(bytes.NewReader(data), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("decode pgn: %w", err)
		}
	}
	return ParsePGN(string(data))
}

// ParsePGN splits PGN text into games. Tag pairs, brace and semicolon
// comments, numeric annotation glyphs and recursive variations are accepted;
// only the main line plies are kept.
func ParsePGN(text string) ([]Game, error) {
	var games []Game
	cur := Game{Tags: map[string]string{}}
	inMoves := false

	flush := func() {
		if len(cur.Plies) > 0 || len(cur.Tags) > 0 {
			games = append(games, cur)
		}
		cur = Game{Tags: map[string]string{}}
		inMoves = false
	}

	line := 1
	depth := 0
	for i := 0; i < len(text); {
		ch := text[i]
		switch {
		case ch == '\n':
			line++
			i++
		case ch == ' ' || ch == '\t' || ch == '\r':
			i++
		case ch == '{':
			end := strings.IndexByte(text[i:], '}')
			if end < 0 {
				return nil, fmt.Errorf("line %d: %w", line, ErrUnterminatedComment)
			}
			line += strings.Count(text[i:i+end], "\n")
			i += end + 1
		case ch == ';':
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			i += end
		case ch == '(':
			depth++
			i++
		case ch == ')':
			if depth == 0 {
				return nil, fmt.Errorf("line %d: unbalanced ')'", line)
			}
			depth--
			i++
		case ch == '[' && depth == 0:
			if inMoves {
				flush()
			}
			end := strings.IndexByte(text[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("line %d: unterminated tag", line)
			}
			name, value, err := parseTag(text[i+1 : i+end])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			cur.Tags[name] = value
			i += end + 1
		default:
			j := i
			for j < len(text) && !strings.ContainsRune(" \t\r\n{}();[", rune(text[j])) {
				j++
			}
			if j == i {
				j++
			}
			tok := text[i:j]
			i = j
			if depth > 0 {
				continue
			}
			if resultTokens[tok] {
				cur.Result = tok
				flush()
				continue
			}
			if ply := plyToken(tok); ply != "" {
				inMoves = true
				cur.Plies = append(cur.Plies, ply)
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("line %d: unbalanced '('", line)
	}
	flush()
	return games, nil
}

func parseTag(body string) (string, string, error) {
	body = strings.TrimSpace(body)
	sp := strings.IndexAny(body, " \t")
	if sp < 0 {
		return "", "", fmt.Errorf("malformed tag %q", body)
	}
	name := body[:sp]
	value := strings.TrimSpace(body[sp+1:])
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return "", "", fmt.Errorf("malformed tag value %q", value)
	}
	value = strings.ReplaceAll(value[1:len(value)-1], `\"`, `"`)
	return name, value, nil
}

// plyToken strips move numbers ("12.", "12...", "12.e4") and annotation
// glyphs ("$1") from tok and returns the ply text, or "" when nothing is left.
func plyToken(tok string) string {
	if strings.HasPrefix(tok, "$") || tok == "e.p." {
		return ""
	}
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i > 0 && i < len(tok) && tok[i] == '.' {
		tok = strings.TrimLeft(tok[i:], ".")
	} else if i == len(tok) {
		return ""
	}
	tok = strings.TrimLeft(tok, ".")
	if tok == "" || !strings.ContainsRune("abcdefghKQRBNOo0", rune(tok[0])) {
		return ""
	}
	return tok
}
