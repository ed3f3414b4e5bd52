// Command cach plays chess against the engine from a terminal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/text"

	"github.com/cado2010/cach-sub000/internal/book"
	"github.com/cado2010/cach-sub000/internal/console"
	"github.com/cado2010/cach-sub000/internal/engine"
	"github.com/cado2010/cach-sub000/internal/storage"
)

func main() {
	dataDir := flag.String("data-dir", getenv("CACH_DATA_DIR", ""), "directory for the game database (default: platform data dir)")
	depth := flag.Int("depth", getenvInt("CACH_DEPTH", 0), "search depth (0 = saved preference)")
	bookPath := flag.String("book", getenv("CACH_BOOK", ""), "opening book file, .pgn files are built on load")
	logLevel := flag.String("log-level", getenv("CACH_LOG_LEVEL", "info"), "log level: debug, info, warn, error")
	cacheMB := flag.Int("eval-cache-mb", getenvInt("CACH_EVAL_CACHE_MB", 16), "evaluation cache size in MB (0 disables)")
	quiet := flag.Bool("quiet", false, "discard log output")
	noStore := flag.Bool("no-store", false, "run without the game database")
	cpuprofile := flag.String("cpuprofile", getenv("CPUPROFILE", ""), "write cpu profile to file")
	flag.Parse()

	if *quiet {
		log.SetHandler(discard.New())
	} else {
		log.SetHandler(text.New(os.Stderr))
	}
	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}
	log.SetLevel(level)

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.WithError(err).Fatal("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.WithError(err).Fatal("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.WithField("path", *cpuprofile).Info("CPU profiling enabled")
	}

	var store *storage.Storage
	prefs := storage.DefaultPreferences()
	if !*noStore {
		dir, err := storage.DataDir(*dataDir)
		if err != nil {
			log.WithError(err).Fatal("could not resolve data directory")
		}
		store, err = storage.Open(dir)
		if err != nil {
			log.WithError(err).Fatal("could not open database")
		}
		defer store.Close()

		if prefs, err = store.LoadPreferences(); err != nil {
			log.WithError(err).Warn("could not load preferences, using defaults")
			prefs = storage.DefaultPreferences()
		}
	}

	if *depth > 0 {
		prefs.Depth = *depth
	}
	if *bookPath != "" {
		prefs.BookPath = *bookPath
	}

	eng := engine.NewEngine(*cacheMB)
	if prefs.BookPath != "" {
		bk, err := loadBook(prefs.BookPath)
		if err != nil {
			log.WithError(err).WithField("path", prefs.BookPath).Warn("opening book not loaded")
		} else {
			eng.SetBook(bk)
			log.WithFields(log.Fields{
				"path":  prefs.BookPath,
				"lines": bk.Len(),
			}).Info("opening book loaded")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := console.New(eng, store, prefs, os.Stdin, os.Stdout)
	if err := c.Run(ctx); err != nil && err != context.Canceled {
		log.WithError(err).Error("console stopped")
	}
}

// loadBook reads a book file, building it first if it is a PGN file.
func loadBook(path string) (*book.Book, error) {
	if strings.EqualFold(filepath.Ext(path), ".pgn") {
		return book.LoadPGN(path, book.DefaultDepth)
	}
	return book.Load(path)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
		log.WithField("key", key).Warn("ignoring non-numeric environment value")
	}
	return def
}
