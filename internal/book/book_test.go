package book

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const samplePGN = `[Event "Casual"]
[Opening "Ruy Lopez"]
[Result "1-0"]

1. e4 e5 2. Nf3 Nc6 3. Bb5 {the Spanish} a6 1-0

[Event "Casual"]
[Opening "Italian Game"]
[Result "0-1"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 Bc5 4. O-O Nf6 0-1

[Opening "Sicilian Defence"]

1. e4 c5 ; open Sicilian follows
2. Nf3 (2. c3 d5) d6 3. d4 cxd4 4. Nxd4 Nf6 5. Nc3 a6 $1 *
`

func TestParsePGN(t *testing.T) {
	games, err := ParsePGN(samplePGN)
	if err != nil {
		t.Fatalf("ParsePGN: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("got %d games, want 3", len(games))
	}

	tests := []struct {
		name   string
		plies  []string
		result string
	}{
		{"Ruy Lopez", []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}, "1-0"},
		{"Italian Game", []string{"e4", "e5", "Nf3", "Nc6", "Bc4", "Bc5", "O-O", "Nf6"}, "0-1"},
		{"Sicilian Defence", []string{"e4", "c5", "Nf3", "d6", "d4", "cxd4", "Nxd4", "Nf6", "Nc3", "a6"}, "*"},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := games[i]
			if g.Name() != tc.name {
				t.Errorf("Name() = %q, want %q", g.Name(), tc.name)
			}
			if !reflect.DeepEqual(g.Plies, tc.plies) {
				t.Errorf("Plies = %v, want %v", g.Plies, tc.plies)
			}
			if g.Result != tc.result {
				t.Errorf("Result = %q, want %q", g.Result, tc.result)
			}
		})
	}
}

func TestParsePGNContinuations(t *testing.T) {
	games, err := ParsePGN("1.d4 d5 2.c4 2...e6 3.Nc3 1/2-1/2")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"d4", "d5", "c4", "e6", "Nc3"}
	if len(games) != 1 || !reflect.DeepEqual(games[0].Plies, want) {
		t.Errorf("got %+v, want plies %v", games, want)
	}
}

func TestParsePGNErrors(t *testing.T) {
	for _, text := range []string{
		"1. e4 { never closed",
		"1. e4 (1. d4",
		"1. e4 e5)",
		`[Event Casual]`,
	} {
		if _, err := ParsePGN(text); err == nil {
			t.Errorf("ParsePGN(%q) succeeded, want error", text)
		}
	}
}

func TestReadPGNLatin1(t *testing.T) {
	// "Réti" in ISO 8859-1.
	raw := []byte("[Opening \"R\xe9ti Opening\"]\n1. Nf3 d5 *\n")
	games, err := ReadPGN(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 || games[0].Name() != "Réti Opening" {
		t.Errorf("got %+v", games)
	}
}

func TestSuggest(t *testing.T) {
	bk, err := Build(DefaultDepth, samplePGN)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		plies []string
		want  []string
	}{
		{"root", nil, []string{"e4"}},
		{"after e4", []string{"e4"}, []string{"e5", "c5"}},
		{"shared prefix", []string{"e4", "e5", "Nf3", "Nc6"}, []string{"Bb5", "Bc4"}},
		{"annotated input", []string{"e4!", "e5", "Nf3", "Nc6", "Bc4", "Bc5", "0-0"}, []string{"Nf6"}},
		{"diverged", []string{"d4"}, nil},
		{"end of line", []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := bk.Suggest(tc.plies); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Suggest(%v) = %v, want %v", tc.plies, got, tc.want)
			}
		})
	}

	if got := bk.Name([]string{"e4", "c5"}); got != "Sicilian Defence" {
		t.Errorf("Name = %q", got)
	}
	if mv, ok := bk.Probe([]string{"e4"}); !ok || (mv != "e5" && mv != "c5") {
		t.Errorf("Probe = %q, %v", mv, ok)
	}
}

func TestDepthLimit(t *testing.T) {
	bk, err := Build(2, samplePGN)
	if err != nil {
		t.Fatal(err)
	}
	if bk.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (e4, e5, c5)", bk.Len())
	}
	if got := bk.Suggest([]string{"e4", "e5"}); got != nil {
		t.Errorf("Suggest past depth = %v, want nil", got)
	}
}

func TestRoundTrip(t *testing.T) {
	bk, err := Build(DefaultDepth, samplePGN)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := bk.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(buf.String(), "\n", 2)[0]
	if first != "1||||" {
		t.Errorf("root line = %q, want %q", first, "1||||")
	}

	got, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Len() != bk.Len() {
		t.Errorf("Len() = %d, want %d", got.Len(), bk.Len())
	}
	plies := []string{"e4", "e5", "Nf3", "Nc6"}
	if !reflect.DeepEqual(got.Suggest(plies), bk.Suggest(plies)) {
		t.Errorf("Suggest differs after round trip: %v vs %v", got.Suggest(plies), bk.Suggest(plies))
	}
	if got.Name([]string{"e4", "e5", "Nf3", "Nc6", "Bb5"}) != "Ruy Lopez" {
		t.Error("variation name lost")
	}

	path := filepath.Join(t.TempDir(), "book.txt")
	if err := bk.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != bk.Len() {
		t.Errorf("Load: Len() = %d, want %d", loaded.Len(), bk.Len())
	}
}

func TestReadMalformed(t *testing.T) {
	for _, text := range []string{
		"",
		"1||||\n",
		"x||||\n",
		"1||||\n0||e4\n",
		"1||||\n0||||name\n",
	} {
		if _, err := Read(strings.NewReader(text)); err == nil {
			t.Errorf("Read(%q) succeeded, want error", text)
		}
	}
}
