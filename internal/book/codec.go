package book

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const sep = "||"

// WriteTo serializes the trie depth-first in pre-order, one node per line:
//
//	<childCount>||<ply>||<variation name>
//
// The root comes first with an empty ply.
func (bk *Book) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	var write func(*node) error
	write = func(nd *node) error {
		k, err := fmt.Fprintf(bw, "%d%s%s%s%s\n", len(nd.children), sep, nd.ply, sep, nd.name)
		n += int64(k)
		if err != nil {
			return err
		}
		for _, c := range nd.children {
			if err := write(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := write(bk.root); err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// Read parses a book written by WriteTo. The book depth becomes the height
// of the stored trie, or DefaultDepth if that is larger.
func Read(r io.Reader) (*Book, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0

	bk := New(DefaultDepth)
	var read func(level int) (*node, error)
	read = func(level int) (*node, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("line %d: %w: unexpected end of book", line+1, ErrMalformedLine)
		}
		line++
		parts := strings.SplitN(sc.Text(), sep, 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("line %d: %w", line, ErrMalformedLine)
		}
		count, err := strconv.Atoi(parts[0])
		if err != nil || count < 0 {
			return nil, fmt.Errorf("line %d: %w: bad child count %q", line, ErrMalformedLine, parts[0])
		}
		if level > 0 && parts[1] == "" {
			return nil, fmt.Errorf("line %d: %w: empty ply", line, ErrMalformedLine)
		}

		nd := &node{ply: parts[1], key: Normalize(parts[1]), name: parts[2]}
		if level > bk.depth {
			bk.depth = level
		}
		for i := 0; i < count; i++ {
			c, err := read(level + 1)
			if err != nil {
				return nil, err
			}
			nd.children = append(nd.children, c)
			bk.size++
		}
		return nd, nil
	}

	root, err := read(0)
	if err != nil {
		return nil, err
	}
	bk.root = root
	return bk, nil
}
