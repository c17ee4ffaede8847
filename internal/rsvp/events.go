package rsvp

import "time"

// State is the engine's externally observable state, emitted as a snapshot on
// every state-change event.
type State struct {
	// Active reports whether a presentation session exists.
	Active bool
	// Playing reports whether the scheduler is advancing. Playing implies
	// Active.
	Playing bool
	// CurrentIndex points into the word stream, 0 <= CurrentIndex < TotalWords
	// whenever TotalWords > 0.
	CurrentIndex int
	// TotalWords is the length of the current word stream.
	TotalWords int
	// WPM and PunctuationPause are the active speed settings.
	WPM              int
	PunctuationPause time.Duration
	// Progress is CurrentIndex over TotalWords as a percentage.
	Progress float64
	// ResumedFromIndex is the index the session resumed at, or -1 when the
	// session did not begin from a saved position. UI affordance only.
	ResumedFromIndex int
}

// StartChoice describes the start strategies available after RequestStart.
// The host commits one of them via the StartFrom* operations.
type StartChoice struct {
	HasSavedPosition      bool
	HasSelection          bool
	SelectionText         string
	FirstVisibleWordIndex int
}

// StopSnapshot records exactly where playback stopped. It is emitted once per
// Stop and is not re-derivable afterwards, since the word stream is discarded.
type StopSnapshot struct {
	Index    int
	Total    int
	Text     string
	Anchor   Anchor
	DocIndex int
}

// Listener callbacks. All events are fire-and-forget and are invoked strictly
// after the state they describe has settled, on the engine's logical thread of
// control: handlers must return promptly and must not call back into the
// engine (forward to a channel instead).

// OnStateChange registers the state-change listener.
func (e *Engine) OnStateChange(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onState = fn
}

// OnCountdownChange registers the countdown listener. The value counts down
// from the configured start; 0 means the countdown finished or was cancelled.
func (e *Engine) OnCountdownChange(fn func(int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onCountdown = fn
}

// OnStop registers the stop listener. The snapshot is nil when playback
// stopped with an empty word stream.
func (e *Engine) OnStop(fn func(*StopSnapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStop = fn
}

// OnStartChoice registers the start-choice listener.
func (e *Engine) OnStartChoice(fn func(StartChoice)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStartChoice = fn
}

// OnPageRequest registers the request-next-page listener. The host is
// expected to supply new content via LoadNextPageContent in response.
func (e *Engine) OnPageRequest(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onPageRequest = fn
}

func (e *Engine) emitState() {
	if e.onState != nil {
		e.onState(e.snapshot())
	}
}

func (e *Engine) emitCountdown(n int) {
	if e.onCountdown != nil {
		e.onCountdown(n)
	}
}
