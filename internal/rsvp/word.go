// Package rsvp provides the RSVP (Rapid Serial Visual Presentation) reading
// engine: word extraction from rendered book sections, per-word timing, and a
// timer-driven playback scheduler with pause/resume/seek and position resume.
package rsvp

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Word is the atomic unit of presentation.
type Word struct {
	// Text is the literal token, trailing punctuation included.
	Text string
	// ORPIndex is the optimal recognition point: the zero-based rune offset
	// the eye should fixate on. Derived from length once, never recomputed.
	ORPIndex int
	// PauseMultiplier scales the base display duration, always >= 1.0.
	PauseMultiplier float64
	// Anchor references the originating text range for geometry queries.
	// May be nil when the range could not be resolved.
	Anchor Anchor
	// DocIndex identifies the sub-document the word came from.
	DocIndex int
}

// NewWord builds a Word with its recognition point and pause multiplier
// precomputed from the token text.
func NewWord(text string, anchor Anchor, docIndex int) Word {
	return Word{
		Text:            text,
		ORPIndex:        ORPIndex(text),
		PauseMultiplier: PauseMultiplier(text),
		Anchor:          anchor,
		DocIndex:        docIndex,
	}
}

// ORPIndex returns the optimal recognition point for a word. The table is
// deliberately coarse rather than proportional so short words don't jitter.
func ORPIndex(word string) int {
	switch length := utf8.RuneCountInString(word); {
	case length <= 3:
		return 0
	case length <= 5:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// PauseMultiplier returns the duration multiplier for a word based on its
// length. Longer words get more screen time.
func PauseMultiplier(word string) float64 {
	switch length := utf8.RuneCountInString(word); {
	case length > 12:
		return 1.3
	case length > 8:
		return 1.1
	default:
		return 1.0
	}
}

// endsWithPausePunctuation reports whether a word ends in sentence or clause
// punctuation that warrants an extra pause.
func endsWithPausePunctuation(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") ||
		strings.HasSuffix(word, "?") || strings.HasSuffix(word, ",") ||
		strings.HasSuffix(word, ";") || strings.HasSuffix(word, ":")
}

// Duration returns how long the word should stay on screen at the given
// words-per-minute, adding punctuationPause for sentence/clause endings.
// The result is always positive.
func (w Word) Duration(wpm int, punctuationPause time.Duration) time.Duration {
	if wpm <= 0 {
		wpm = DefaultWPM
	}
	base := float64(time.Minute) / float64(wpm)
	d := time.Duration(base * w.PauseMultiplier)
	if endsWithPausePunctuation(w.Text) {
		d += punctuationPause
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}
