package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dlemaire/skim/internal/book"
	"github.com/dlemaire/skim/internal/config"
	"github.com/dlemaire/skim/internal/rsvp"
	"github.com/dlemaire/skim/internal/storage"
)

// App wires a book (or raw text), durable storage, and the reading engine
// together for a host front end.
type App struct {
	Engine   *rsvp.Engine
	Book     *book.Book   // nil for raw text input
	Cursor   *book.Cursor // nil for raw text input
	Headings []book.Heading
	Title    string
}

func newApp(path string, cfg config.Config) (*App, error) {
	logger := log.New(io.Discard)
	if os.Getenv("SKIM_DEBUG") != "" {
		if f, err := os.Create("skim.log"); err == nil {
			logger = log.New(f)
			logger.SetLevel(log.DebugLevel)
		}
	}

	engineCfg := rsvp.DefaultConfig()
	engineCfg.CountdownFrom = cfg.CountdownFrom
	engineCfg.CountdownInterval = cfg.CountdownInterval
	engineCfg.Logger = logger

	if path != "" && strings.HasSuffix(strings.ToLower(path), ".epub") {
		return newBookApp(path, cfg, engineCfg)
	}
	return newTextApp(path, cfg, engineCfg)
}

func newBookApp(path string, cfg config.Config, engineCfg rsvp.Config) (*App, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	bookID, err := storage.BookID(path)
	if err != nil {
		return nil, fmt.Errorf("failed to identify book: %w", err)
	}

	b, err := book.Open(path)
	if err != nil {
		return nil, err
	}

	positions := rsvp.NewPositionStore(store, bookID)
	if flagFresh {
		positions.Clear()
	}

	start := startSection(b, positions)
	cursor, err := book.NewCursor(b, start)
	if err != nil {
		b.Close()
		return nil, err
	}

	engine := rsvp.NewEngine(cursor, store, bookID, engineCfg)
	engine.SetSectionID(cursor.Info().ID)
	if flagWPM > 0 {
		engine.SetWPM(flagWPM)
	}

	title := b.Title()
	if title == "" {
		title = path
	}
	return &App{Engine: engine, Book: b, Cursor: cursor, Title: title}, nil
}

func newTextApp(path string, cfg config.Config, engineCfg rsvp.Config) (*App, error) {
	var text, title, bookID string
	var store rsvp.Store

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %q: %w", path, err)
		}
		text = string(data)
		title = path
		fileStore, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		store = fileStore
		if bookID, err = storage.BookID(path); err != nil {
			return nil, fmt.Errorf("failed to identify file: %w", err)
		}
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return nil, fmt.Errorf("no input provided; pass a file or pipe text to stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
		title = "stdin"
		bookID = "stdin"
		store = storage.NewMemStore()
	}

	var headings []book.Heading
	if book.IsMarkdownPath(path) {
		headings = book.MarkdownHeadings(text)
		text = book.StripMarkdown(text)
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text to read")
	}

	if flagFresh {
		rsvp.NewPositionStore(store, bookID).Clear()
	}

	section := book.TextSection(title, text)
	engine := rsvp.NewEngine(section, store, bookID, engineCfg)
	engine.SetSectionID(section.ID())
	switch {
	case flagWPM > 0:
		engine.SetWPM(flagWPM)
	case engine.State().WPM == rsvp.DefaultWPM && cfg.WPM != rsvp.DefaultWPM:
		engine.SetWPM(cfg.WPM)
	}

	return &App{Engine: engine, Headings: headings, Title: title}, nil
}

func openStore(cfg config.Config) (rsvp.Store, error) {
	var store *storage.FileStore
	var err error
	if cfg.StateDir != "" {
		store, err = storage.NewFileStoreAt(cfg.StateDir)
	} else {
		store, err = storage.NewFileStore()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return store, nil
}

// startSection resolves the section to open first: --section wins, then the
// section of a saved position, then the beginning of the book.
func startSection(b *book.Book, positions *rsvp.PositionStore) int {
	if flagSection > 0 && flagSection <= len(b.Sections()) {
		return flagSection - 1
	}
	if saved, ok := positions.Load(); ok {
		for _, s := range b.Sections() {
			if s.ID == saved.SectionID {
				return s.Index
			}
		}
	}
	return 0
}

// PrintTOC lists the book's sections, or a markdown file's headings.
func (a *App) PrintTOC(w io.Writer) error {
	switch {
	case a.Book != nil:
		fmt.Fprintln(w, a.Title)
		for _, s := range a.Book.Sections() {
			fmt.Fprintf(w, "  %3d  %s\n", s.Index+1, s.Title)
		}
	case len(a.Headings) > 0:
		fmt.Fprintln(w, a.Title)
		for _, h := range a.Headings {
			indent := strings.Repeat("  ", h.Level)
			fmt.Fprintf(w, "%s%s (word %d)\n", indent, h.Title, h.WordIndex)
		}
	default:
		return fmt.Errorf("no table of contents for this input")
	}
	return nil
}

// NextSection advances the cursor and rebinds the engine to the new section.
// It returns false at the end of the book.
func (a *App) NextSection() (bool, error) {
	if a.Cursor == nil {
		return false, nil
	}
	ok, err := a.Cursor.Advance()
	if err != nil || !ok {
		return false, err
	}
	a.Engine.SetSectionID(a.Cursor.Info().ID)
	a.Engine.LoadNextPageContent()
	return true, nil
}

// SectionTitle names the section currently being read.
func (a *App) SectionTitle() string {
	if a.Cursor == nil {
		return a.Title
	}
	return a.Cursor.Info().Title
}

// Close releases the book.
func (a *App) Close() {
	if a.Book != nil {
		a.Book.Close()
	}
}
