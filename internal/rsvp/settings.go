package rsvp

import (
	"strconv"
	"time"
)

// Speed and pause settings. WPM moves in fixed steps within a hard range;
// the punctuation pause is restricted to a small discrete set.
const (
	MinWPM     = 100
	MaxWPM     = 1000
	WPMStep    = 50
	DefaultWPM = 300

	DefaultPunctuationPause = 100 * time.Millisecond
)

// PunctuationPauseOptions are the allowed punctuation pause values.
var PunctuationPauseOptions = []time.Duration{
	25 * time.Millisecond,
	50 * time.Millisecond,
	75 * time.Millisecond,
	100 * time.Millisecond,
	125 * time.Millisecond,
	150 * time.Millisecond,
	175 * time.Millisecond,
	200 * time.Millisecond,
}

// ClampWPM snaps a requested speed to the nearest step and clamps it into the
// supported range.
func ClampWPM(wpm int) int {
	wpm = ((wpm + WPMStep/2) / WPMStep) * WPMStep
	if wpm < MinWPM {
		return MinWPM
	}
	if wpm > MaxWPM {
		return MaxWPM
	}
	return wpm
}

// ClampPunctuationPause returns the allowed pause value closest to the
// requested one.
func ClampPunctuationPause(d time.Duration) time.Duration {
	best := PunctuationPauseOptions[0]
	for _, opt := range PunctuationPauseOptions[1:] {
		if absDuration(d-opt) < absDuration(d-best) {
			best = opt
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Per-book settings persistence. Values are stored as plain strings so the
// backing store stays format-agnostic.

func settingsKey(bookID, concern string) string {
	return bookID + "/" + concern
}

func loadWPM(store Store, bookID string) int {
	raw, ok := store.Get(settingsKey(bookID, "wpm"))
	if !ok {
		return DefaultWPM
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultWPM
	}
	return ClampWPM(n)
}

func saveWPM(store Store, bookID string, wpm int) error {
	return store.Set(settingsKey(bookID, "wpm"), strconv.Itoa(wpm))
}

func loadPunctuationPause(store Store, bookID string) time.Duration {
	raw, ok := store.Get(settingsKey(bookID, "pause"))
	if !ok {
		return DefaultPunctuationPause
	}
	ms, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultPunctuationPause
	}
	return ClampPunctuationPause(time.Duration(ms) * time.Millisecond)
}

func savePunctuationPause(store Store, bookID string, d time.Duration) error {
	return store.Set(settingsKey(bookID, "pause"), strconv.Itoa(int(d.Milliseconds())))
}
