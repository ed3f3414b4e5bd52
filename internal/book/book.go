// Package book implements the opening book: a trie of ply texts built from
// PGN game records.
package book

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/apex/log"
)

// DefaultDepth is the number of plies of each game added to a book.
const DefaultDepth = 16

var (
	ErrUnterminatedComment = errors.New("unterminated comment")
	ErrMalformedLine       = errors.New("malformed book line")
)

type node struct {
	ply      string // ply text as first seen
	key      string // normalized ply text
	name     string // variation name of the game that created the node
	children []*node
}

func (n *node) child(key string) *node {
	for _, c := range n.children {
		if c.key == key {
			return c
		}
	}
	return nil
}

// Book is an opening trie keyed by normalized ply text.
type Book struct {
	root  *node
	depth int
	size  int
}

// New creates an empty book that keeps at most depth plies per game.
func New(depth int) *Book {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Book{root: &node{}, depth: depth}
}

// Depth returns the maximum number of plies stored per line.
func (bk *Book) Depth() int {
	return bk.depth
}

// Len returns the number of positions (plies) stored.
func (bk *Book) Len() int {
	if bk == nil {
		return 0
	}
	return bk.size
}

// Normalize strips annotation glyphs and lower-cases castling so that
// "O-O+", "0-0" and "o-o" share a node.
func Normalize(ply string) string {
	s := strings.TrimRight(strings.TrimSpace(ply), "+#!?")
	switch strings.ToLower(s) {
	case "o-o", "0-0":
		return "o-o"
	case "o-o-o", "0-0-0":
		return "o-o-o"
	}
	return s
}

// Add extends the trie with the first Depth plies of a game. Existing
// prefixes are shared; new nodes are labelled with name.
func (bk *Book) Add(plies []string, name string) {
	n := bk.root
	for i, ply := range plies {
		if i >= bk.depth {
			break
		}
		key := Normalize(ply)
		if key == "" {
			break
		}
		next := n.child(key)
		if next == nil {
			next = &node{ply: strings.TrimSpace(ply), key: key, name: name}
			n.children = append(n.children, next)
			bk.size++
		}
		n = next
	}
}

// AddGames adds every game and returns how many had at least one ply.
func (bk *Book) AddGames(games []Game) int {
	added := 0
	for _, g := range games {
		if len(g.Plies) == 0 {
			continue
		}
		bk.Add(g.Plies, g.Name())
		added++
	}
	return added
}

// Build creates a book of the given depth from PGN texts.
func Build(depth int, pgns ...string) (*Book, error) {
	bk := New(depth)
	for i, text := range pgns {
		games, err := ParsePGN(text)
		if err != nil {
			return nil, fmt.Errorf("pgn %d: %w", i, err)
		}
		bk.AddGames(games)
	}
	return bk, nil
}

// lookup follows plies from the root, returning nil on divergence or when
// the line is deeper than the book.
func (bk *Book) lookup(plies []string) *node {
	if bk == nil || len(plies) >= bk.depth {
		return nil
	}
	n := bk.root
	for _, ply := range plies {
		if n = n.child(Normalize(ply)); n == nil {
			return nil
		}
	}
	return n
}

// Suggest returns the book continuations after the given plies, or nil when
// the game has left the book.
func (bk *Book) Suggest(plies []string) []string {
	n := bk.lookup(plies)
	if n == nil || len(n.children) == 0 {
		return nil
	}
	out := make([]string, len(n.children))
	for i, c := range n.children {
		out[i] = c.ply
	}
	return out
}

// Name returns the variation name of the line played so far.
func (bk *Book) Name(plies []string) string {
	if len(plies) == 0 {
		return ""
	}
	if n := bk.lookup(plies[:len(plies)-1]); n != nil {
		if c := n.child(Normalize(plies[len(plies)-1])); c != nil {
			return c.name
		}
	}
	return ""
}

// Probe picks one continuation uniformly at random.
func (bk *Book) Probe(plies []string) (string, bool) {
	moves := bk.Suggest(plies)
	if len(moves) == 0 {
		return "", false
	}
	return moves[rand.Intn(len(moves))], true
}

// Load reads a book file.
func Load(filename string) (*Book, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// LoadPGN builds a book of the given depth from a PGN file.
func LoadPGN(filename string, depth int) (*Book, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	games, err := ReadPGN(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	bk := New(depth)
	added := bk.AddGames(games)
	log.WithFields(log.Fields{
		"file":  filename,
		"games": len(games),
		"added": added,
		"nodes": bk.Len(),
	}).Debug("book built from pgn")
	return bk, nil
}

// Save writes the book to a file.
func (bk *Book) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := bk.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var _ io.WriterTo = (*Book)(nil)
