package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/cado2010/cach-sub000/internal/board"
	"github.com/cado2010/cach-sub000/internal/book"
)

// Storage keys
const (
	keyPreferences = "preferences"
	prefixGame     = "game/"
	prefixBook     = "book/"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrBookNotFound = errors.New("book not found")
)

// Preferences stores console settings between sessions.
type Preferences struct {
	Depth       int       `json:"depth"`
	Difficulty  string    `json:"difficulty"`
	EngineColor string    `json:"engine_color"` // "white", "black" or "" for none
	BookPath    string    `json:"book_path"`
	LastPlayed  time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences
func DefaultPreferences() *Preferences {
	return &Preferences{
		Depth:      4,
		Difficulty: "medium",
	}
}

// GameRecord is a saved game: where it started, the moves played and how it
// ended.
type GameRecord struct {
	ID       uuid.UUID `json:"id"`
	StartFEN string    `json:"start_fen"`
	Plies    []string  `json:"plies"`
	Result   string    `json:"result"`
	Created  time.Time `json:"created"`
}

// RecordGame captures the current state of g.
func RecordGame(g *board.Game) *GameRecord {
	b := g.Board()
	return &GameRecord{
		StartFEN: b.StartPosition(),
		Plies:    b.Plies(),
		Result:   ResultString(b.Status()),
	}
}

// ResultString renders a status as a PGN result token.
func ResultString(st board.Status) string {
	switch {
	case st.Winner == board.White:
		return "1-0"
	case st.Winner == board.Black:
		return "0-1"
	case st.Draw || st.Stalemate:
		return "1/2-1/2"
	}
	return "*"
}

// Replay plays the record back onto a fresh game.
func (r *GameRecord) Replay() (*board.Game, error) {
	g, err := board.NewGameFromFEN(r.StartFEN)
	if err != nil {
		return nil, fmt.Errorf("replay %s: %w", r.ID, err)
	}
	for i, ply := range r.Plies {
		if res := g.Move(ply); res != board.Ok {
			return nil, fmt.Errorf("replay %s: ply %d %q: %s", r.ID, i+1, ply, res)
		}
	}
	return g, nil
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return nil, err
	}
	return Open(dataDir)
}

// Open opens or creates the database under dataDir.
func Open(dataDir string) (*Storage, error) {
	dbDir, err := GetDatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dbDir, err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// get decodes the JSON value under key into v. found is false if the key
// does not exist.
func (s *Storage) get(key string, v any) (found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return found, err
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.put(keyPreferences, prefs)
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	_, err := s.get(keyPreferences, prefs)
	return prefs, err
}

// SaveGame stores rec, assigning it an id on first save.
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	if err := s.put(prefixGame+rec.ID.String(), rec); err != nil {
		return fmt.Errorf("save game %s: %w", rec.ID, err)
	}

	log.WithFields(log.Fields{
		"id":     rec.ID.String(),
		"plies":  len(rec.Plies),
		"result": rec.Result,
	}).Debug("game saved")
	return nil
}

// LoadGame loads the game with the given id.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("load game %q: %w", id, err)
	}

	rec := &GameRecord{}
	found, err := s.get(prefixGame+uid.String(), rec)
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", uid, err)
	}
	if !found {
		return nil, fmt.Errorf("load game %s: %w", uid, ErrGameNotFound)
	}
	return rec, nil
}

// DeleteGame removes the game with the given id.
func (s *Storage) DeleteGame(id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("delete game %q: %w", id, err)
	}
	key := []byte(prefixGame + uid.String())
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return fmt.Errorf("delete game %s: %w", uid, ErrGameNotFound)
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// Games returns every saved game, newest first.
func (s *Storage) Games() ([]*GameRecord, error) {
	var games []*GameRecord
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixGame)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rec := &GameRecord{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			}); err != nil {
				return err
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].Created.After(games[j].Created)
	})
	return games, nil
}

// SaveBook stores bk under name in the book file format.
func (s *Storage) SaveBook(name string, bk *book.Book) error {
	var buf bytes.Buffer
	if _, err := bk.WriteTo(&buf); err != nil {
		return fmt.Errorf("save book %s: %w", name, err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefixBook+name), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("save book %s: %w", name, err)
	}

	log.WithFields(log.Fields{
		"name":  name,
		"lines": bk.Len(),
		"bytes": buf.Len(),
	}).Debug("book saved")
	return nil
}

// LoadBook loads the book stored under name.
func (s *Storage) LoadBook(name string) (*book.Book, error) {
	var bk *book.Book
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixBook + name))
		if err == badger.ErrKeyNotFound {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			bk, err = book.Read(bytes.NewReader(val))
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load book %s: %w", name, err)
	}
	return bk, nil
}

// Books returns the names of the stored books.
func (s *Storage) Books() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixBook)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), prefixBook))
		}
		return nil
	})
	return names, err
}
