package rsvp

import (
	"encoding/json"
	"strings"
)

// Store is durable key-value storage as seen by the engine: synchronous
// string get/set/remove, keyed per book and per concern. The engine is the
// sole reader and writer of its keys.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// PersistedPosition is the durable reading position, one record per book.
// Resumability is validated against the word text rather than by trusting the
// raw index, since re-extraction after a layout change can shift indices.
type PersistedPosition struct {
	SectionID string `json:"section_id"`
	WordIndex int    `json:"word_index"`
	WordText  string `json:"word_text"`
}

// PositionStore persists, loads and clears the reading position for a single
// book.
type PositionStore struct {
	store  Store
	bookID string
}

// NewPositionStore returns a position store scoped to one book.
func NewPositionStore(store Store, bookID string) *PositionStore {
	return &PositionStore{store: store, bookID: bookID}
}

func (p *PositionStore) key() string {
	return p.bookID + "/position"
}

// Save writes the position. Callers only save when there is a non-empty word
// stream and a known section identifier.
func (p *PositionStore) Save(pos PersistedPosition) error {
	data, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	return p.store.Set(p.key(), string(data))
}

// Load returns the saved position, or false when none exists or the record
// cannot be decoded.
func (p *PositionStore) Load() (PersistedPosition, bool) {
	raw, ok := p.store.Get(p.key())
	if !ok {
		return PersistedPosition{}, false
	}
	var pos PersistedPosition
	if err := json.Unmarshal([]byte(raw), &pos); err != nil {
		return PersistedPosition{}, false
	}
	return pos, true
}

// Clear removes the saved position.
func (p *PositionStore) Clear() error {
	return p.store.Delete(p.key())
}

// ValidateResume reports whether a saved position is usable against a fresh
// extraction: the section must match and the word found at the saved index
// must have identical text. Either check failing silently discards the
// position.
func ValidateResume(saved PersistedPosition, sectionID string, words []Word) bool {
	if !sectionMatches(saved.SectionID, sectionID) {
		return false
	}
	if saved.WordIndex < 0 || saved.WordIndex >= len(words) {
		return false
	}
	return words[saved.WordIndex].Text == saved.WordText
}

// sectionMatches compares section identifiers coarsely, ignoring intra-section
// fragments so an offset recorded inside the section still matches the section
// being entered.
func sectionMatches(a, b string) bool {
	return baseSection(a) == baseSection(b) && baseSection(a) != ""
}

func baseSection(id string) string {
	if i := strings.IndexByte(id, '#'); i >= 0 {
		id = id[:i]
	}
	return strings.TrimSpace(id)
}
