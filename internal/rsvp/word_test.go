package rsvp

import (
	"testing"
	"time"
)

func TestORPIndex(t *testing.T) {
	tests := []struct {
		word     string
		expected int
	}{
		{"a", 0},
		{"at", 0},
		{"cat", 0},
		{"frog", 1},
		{"house", 1},
		{"theory", 2},
		{"reading", 2},
		{"absolute", 2},
		{"wonderful", 3},
		{"extraordinary", 3},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := ORPIndex(tt.word); got != tt.expected {
				t.Errorf("ORPIndex(%q) = %d, want %d", tt.word, got, tt.expected)
			}
		})
	}
}

func TestORPIndexInsideWord(t *testing.T) {
	// The recognition point must always land on a real character.
	words := []string{"a", "ab", "abc", "abcd", "abcdefgh", "abcdefghijklmnop", "日本語"}
	for _, w := range words {
		orp := ORPIndex(w)
		if orp < 0 || orp >= len([]rune(w)) {
			t.Errorf("ORPIndex(%q) = %d, out of range", w, orp)
		}
	}
}

func TestPauseMultiplier(t *testing.T) {
	tests := []struct {
		word     string
		expected float64
	}{
		{"cat", 1.0},
		{"absolute", 1.0},  // 8 chars, at the boundary
		{"wonderful", 1.1}, // 9 chars
		{"breathtaking", 1.1},
		{"extraordinarily", 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if got := PauseMultiplier(tt.word); got != tt.expected {
				t.Errorf("PauseMultiplier(%q) = %v, want %v", tt.word, got, tt.expected)
			}
		})
	}
}

func TestWordDuration(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		wpm      int
		pause    time.Duration
		expected time.Duration
	}{
		{
			name:     "short word with sentence punctuation",
			word:     "end.",
			wpm:      300,
			pause:    100 * time.Millisecond,
			expected: 300 * time.Millisecond, // 200ms base + 100ms pause
		},
		{
			name:     "long word without punctuation",
			word:     "extraordinarily",
			wpm:      300,
			pause:    100 * time.Millisecond,
			expected: 260 * time.Millisecond, // 200ms base * 1.3
		},
		{
			name:     "plain word",
			word:     "fox",
			wpm:      300,
			pause:    100 * time.Millisecond,
			expected: 200 * time.Millisecond,
		},
		{
			name:     "comma pauses too",
			word:     "well,",
			wpm:      600,
			pause:    50 * time.Millisecond,
			expected: 150 * time.Millisecond, // 100ms base + 50ms
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWord(tt.word, nil, 0)
			if got := w.Duration(tt.wpm, tt.pause); got != tt.expected {
				t.Errorf("Duration(%q) = %v, want %v", tt.word, got, tt.expected)
			}
		})
	}
}

func TestWordDurationAlwaysPositive(t *testing.T) {
	w := NewWord("x", nil, 0)
	if d := w.Duration(0, 0); d <= 0 {
		t.Errorf("Duration with zero wpm = %v, want > 0", d)
	}
}

func TestNewWordPrecomputes(t *testing.T) {
	w := NewWord("reading", nil, 2)
	if w.ORPIndex != 2 {
		t.Errorf("ORPIndex = %d, want 2", w.ORPIndex)
	}
	if w.PauseMultiplier != 1.0 {
		t.Errorf("PauseMultiplier = %v, want 1.0", w.PauseMultiplier)
	}
	if w.DocIndex != 2 {
		t.Errorf("DocIndex = %d, want 2", w.DocIndex)
	}
}
