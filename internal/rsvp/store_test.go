package rsvp

import "testing"

func TestPositionStoreRoundTrip(t *testing.T) {
	store := newMemStore()
	positions := NewPositionStore(store, "book1")

	if _, ok := positions.Load(); ok {
		t.Fatal("fresh store reported a saved position")
	}

	pos := PersistedPosition{SectionID: "ch3.xhtml", WordIndex: 42, WordText: "brown"}
	if err := positions.Save(pos); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, ok := positions.Load()
	if !ok {
		t.Fatal("Load found nothing after Save")
	}
	if loaded != pos {
		t.Errorf("Load = %+v, want %+v", loaded, pos)
	}

	if err := positions.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := positions.Load(); ok {
		t.Error("position survived Clear")
	}
}

func TestPositionStoreScopedPerBook(t *testing.T) {
	store := newMemStore()
	a := NewPositionStore(store, "bookA")
	b := NewPositionStore(store, "bookB")

	if err := a.Save(PersistedPosition{SectionID: "s", WordIndex: 1, WordText: "w"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := b.Load(); ok {
		t.Error("bookB sees bookA's position")
	}
}

func TestPositionStoreRejectsCorruptRecord(t *testing.T) {
	store := newMemStore()
	if err := store.Set("book1/position", "{not json"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok := NewPositionStore(store, "book1").Load(); ok {
		t.Error("corrupt record loaded as a position")
	}
}

func TestValidateResume(t *testing.T) {
	words := wordsFrom("The", "quick", "brown", "fox.")

	tests := []struct {
		name      string
		saved     PersistedPosition
		sectionID string
		expected  bool
	}{
		{
			name:      "exact match",
			saved:     PersistedPosition{SectionID: "ch1.xhtml", WordIndex: 2, WordText: "brown"},
			sectionID: "ch1.xhtml",
			expected:  true,
		},
		{
			name:      "word text drifted",
			saved:     PersistedPosition{SectionID: "ch1.xhtml", WordIndex: 2, WordText: "brownish"},
			sectionID: "ch1.xhtml",
			expected:  false,
		},
		{
			name:      "index out of range",
			saved:     PersistedPosition{SectionID: "ch1.xhtml", WordIndex: 40, WordText: "brown"},
			sectionID: "ch1.xhtml",
			expected:  false,
		},
		{
			name:      "different section",
			saved:     PersistedPosition{SectionID: "ch2.xhtml", WordIndex: 2, WordText: "brown"},
			sectionID: "ch1.xhtml",
			expected:  false,
		},
		{
			name:      "fragment ignored on saved side",
			saved:     PersistedPosition{SectionID: "ch1.xhtml#p12", WordIndex: 2, WordText: "brown"},
			sectionID: "ch1.xhtml",
			expected:  true,
		},
		{
			name:      "fragment ignored on current side",
			saved:     PersistedPosition{SectionID: "ch1.xhtml", WordIndex: 2, WordText: "brown"},
			sectionID: "ch1.xhtml#top",
			expected:  true,
		},
		{
			name:      "both sections empty",
			saved:     PersistedPosition{SectionID: "", WordIndex: 2, WordText: "brown"},
			sectionID: "",
			expected:  false,
		},
		{
			name:      "negative index",
			saved:     PersistedPosition{SectionID: "ch1.xhtml", WordIndex: -1, WordText: "brown"},
			sectionID: "ch1.xhtml",
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateResume(tt.saved, tt.sectionID, words); got != tt.expected {
				t.Errorf("ValidateResume = %v, want %v", got, tt.expected)
			}
		})
	}
}
