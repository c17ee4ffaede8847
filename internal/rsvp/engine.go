package rsvp

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultSkip is how many words SkipForward/SkipBackward move when the caller
// does not say.
const DefaultSkip = 10

// Config holds the engine's timing and retry knobs.
type Config struct {
	// CountdownFrom is the number the pre-play countdown starts at.
	CountdownFrom int
	// CountdownInterval is the spacing between countdown ticks.
	CountdownInterval time.Duration
	// ExtractRetries and ExtractRetryDelay govern extraction at session start.
	// The delay grows linearly with the attempt number.
	ExtractRetries    int
	ExtractRetryDelay time.Duration
	// PageRetries and PageRetryDelay govern extraction after a page change.
	PageRetries    int
	PageRetryDelay time.Duration
	// Logger receives debug output. Discarded when nil.
	Logger *log.Logger
}

// DefaultConfig returns the production timing configuration.
func DefaultConfig() Config {
	return Config{
		CountdownFrom:     3,
		CountdownInterval: 800 * time.Millisecond,
		ExtractRetries:    3,
		ExtractRetryDelay: 150 * time.Millisecond,
		PageRetries:       3,
		PageRetryDelay:    200 * time.Millisecond,
	}
}

type startKind int

const (
	startDefault startKind = iota // saved position if valid, else beginning
	startAtIndex
	startFirstVisible
	startSelection
)

type startRequest struct {
	kind      startKind
	index     int
	selection string
}

// Engine owns the playback state machine for one book. All mutation happens
// under a single mutex, which together with the generation counter gives the
// core invariant: at most one outstanding timer exists per slot (advance,
// countdown, extraction retry), and a stale callback firing after a cancel is
// a no-op.
type Engine struct {
	mu  sync.Mutex
	cfg Config
	log *log.Logger

	surface   Surface
	store     Store
	bookID    string
	positions *PositionStore

	sectionID string
	words     []Word

	active       bool
	playing      bool
	currentIndex int
	resumedFrom  int
	countdown    int

	wpm        int
	punctPause time.Duration

	pending startRequest

	gen            uint64
	advanceTimer   *time.Timer
	countdownTimer *time.Timer
	retryTimer     *time.Timer

	onState       func(State)
	onCountdown   func(int)
	onStop        func(*StopSnapshot)
	onStartChoice func(StartChoice)
	onPageRequest func()
}

// NewEngine builds an engine bound to a rendering surface and a book
// identity. Speed settings persisted for the book are reloaded here.
func NewEngine(surface Surface, store Store, bookID string, cfg Config) *Engine {
	if cfg.CountdownFrom <= 0 {
		cfg.CountdownFrom = 3
	}
	if cfg.CountdownInterval <= 0 {
		cfg.CountdownInterval = 800 * time.Millisecond
	}
	if cfg.ExtractRetryDelay <= 0 {
		cfg.ExtractRetryDelay = 150 * time.Millisecond
	}
	if cfg.PageRetryDelay <= 0 {
		cfg.PageRetryDelay = 200 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		cfg:         cfg,
		log:         logger,
		surface:     surface,
		store:       store,
		bookID:      bookID,
		positions:   NewPositionStore(store, bookID),
		wpm:         loadWPM(store, bookID),
		punctPause:  loadPunctuationPause(store, bookID),
		resumedFrom: -1,
	}
}

// SetSectionID binds the stable identifier of the section being read. An
// empty identifier releases the binding; positions are only saved while one
// is bound.
func (e *Engine) SetSectionID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sectionID = id
}

// RequestStart performs a fresh extraction and emits a single start-choice
// event describing the available start strategies. It does not start
// playback; the host commits a strategy via one of the StartFrom* operations.
// selection is the user's active text selection, if any.
func (e *Engine) RequestStart(selection string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.extractRetryLocked(0, e.cfg.ExtractRetries, e.cfg.ExtractRetryDelay, func(words []Word) {
		if words == nil {
			return
		}
		saved, ok := e.positions.Load()
		sel := strings.TrimSpace(selection)
		choice := StartChoice{
			HasSavedPosition:      ok && ValidateResume(saved, e.sectionID, words),
			HasSelection:          sel != "",
			SelectionText:         sel,
			FirstVisibleWordIndex: e.firstVisibleIndexLocked(words),
		}
		if e.onStartChoice != nil {
			e.onStartChoice(choice)
		}
	})
}

// StartFromBeginning clears the saved position and starts at index 0.
func (e *Engine) StartFromBeginning() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearPositionLocked()
	e.pending = startRequest{kind: startAtIndex, index: 0}
	e.startLocked()
}

// StartFromSavedPosition starts at the saved position, falling back to the
// beginning when it no longer validates.
func (e *Engine) StartFromSavedPosition() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending = startRequest{kind: startDefault}
	e.startLocked()
}

// StartFromCurrentPosition clears the saved position and starts at the first
// word currently visible in the viewport.
func (e *Engine) StartFromCurrentPosition() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearPositionLocked()
	e.pending = startRequest{kind: startFirstVisible}
	e.startLocked()
}

// StartFromSelection clears the saved position and starts at the best match
// for the selected text, or at the beginning when nothing matches.
func (e *Engine) StartFromSelection(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearPositionLocked()
	e.pending = startRequest{kind: startSelection, selection: text}
	e.startLocked()
}

// Start begins a session: extracts words (with bounded retry), resolves the
// start index from a pending explicit request or a validated saved position,
// then runs the countdown into playback. It returns immediately; progress is
// made via scheduled callbacks.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked()
}

func (e *Engine) startLocked() {
	e.cancelTimersLocked()
	e.extractRetryLocked(0, e.cfg.ExtractRetries, e.cfg.ExtractRetryDelay, func(words []Word) {
		if words == nil {
			e.pending = startRequest{}
			return
		}
		e.beginSessionLocked(words)
	})
}

// extractRetryLocked runs extraction now and, while it yields nothing,
// retries up to max more times with linearly growing delay. done receives nil
// when every attempt came up empty; content that never appears is "nothing to
// read yet", not an error. Retries live in their own timer slot so an
// in-flight advance or countdown keeps its schedule.
func (e *Engine) extractRetryLocked(attempt, max int, delay time.Duration, done func([]Word)) {
	words := ExtractWords(e.surface)
	if len(words) > 0 {
		done(words)
		return
	}
	if attempt >= max {
		e.log.Debug("extraction yielded no words", "attempts", attempt+1)
		done(nil)
		return
	}
	gen := e.gen
	e.stopTimer(&e.retryTimer)
	e.retryTimer = time.AfterFunc(delay*time.Duration(attempt+1), func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.gen {
			return
		}
		e.extractRetryLocked(attempt+1, max, delay, done)
	})
}

func (e *Engine) beginSessionLocked(words []Word) {
	req := e.pending
	e.pending = startRequest{}

	e.words = words
	e.resumedFrom = -1
	index := 0

	switch req.kind {
	case startAtIndex:
		index = clampIndex(req.index, len(words))
	case startFirstVisible:
		index = e.firstVisibleIndexLocked(words)
	case startSelection:
		if m := MatchSelection(words, req.selection); m >= 0 {
			index = m
		}
	default:
		if saved, ok := e.positions.Load(); ok && ValidateResume(saved, e.sectionID, words) {
			index = saved.WordIndex
			e.resumedFrom = index
		}
	}

	e.currentIndex = index
	e.active = true
	e.playing = false
	e.log.Debug("session started", "words", len(words), "index", index, "resumed", e.resumedFrom >= 0)
	e.emitState()
	e.beginCountdownLocked()
}

func (e *Engine) beginCountdownLocked() {
	e.countdown = e.cfg.CountdownFrom
	e.emitCountdown(e.countdown)
	e.scheduleCountdownTickLocked()
}

func (e *Engine) scheduleCountdownTickLocked() {
	gen := e.gen
	e.stopTimer(&e.countdownTimer)
	e.countdownTimer = time.AfterFunc(e.cfg.CountdownInterval, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.gen || !e.active {
			return
		}
		e.countdown--
		if e.countdown > 0 {
			e.emitCountdown(e.countdown)
			e.scheduleCountdownTickLocked()
			return
		}
		e.countdown = 0
		e.emitCountdown(0)
		e.playing = true
		e.emitState()
		e.scheduleAdvanceLocked()
	})
}

// scheduleAdvanceLocked arms the single per-word timer for the current word.
func (e *Engine) scheduleAdvanceLocked() {
	if !e.playing || e.currentIndex >= len(e.words) {
		return
	}
	gen := e.gen
	e.stopTimer(&e.advanceTimer)
	d := e.words[e.currentIndex].Duration(e.wpm, e.punctPause)
	e.advanceTimer = time.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if gen != e.gen || !e.active || !e.playing {
			return
		}
		e.advanceLocked()
	})
}

func (e *Engine) advanceLocked() {
	next := e.currentIndex + 1
	if next >= len(e.words) {
		// Exhausted. Halt in place and ask the host for the next page; the
		// host answers with LoadNextPageContent.
		e.log.Debug("word stream exhausted", "index", e.currentIndex)
		if e.onPageRequest != nil {
			e.onPageRequest()
		}
		return
	}
	e.currentIndex = next
	e.emitState()
	e.scheduleAdvanceLocked()
}

// Pause clears any pending timer and countdown and stops advancing. Pausing
// an already paused engine changes nothing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	changed := e.playing || e.countdown > 0 || e.advanceTimer != nil
	e.cancelTimersLocked()
	e.playing = false
	if changed {
		e.emitState()
	}
}

// Resume re-enters the countdown and then continues from the current index.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active || e.playing {
		return
	}
	e.cancelTimersLocked()
	e.beginCountdownLocked()
}

// TogglePlayPause dispatches to Pause or Resume based on the current state.
func (e *Engine) TogglePlayPause() {
	e.mu.Lock()
	playing := e.playing
	e.mu.Unlock()
	if playing {
		e.Pause()
	} else {
		e.Resume()
	}
}

// Stop persists the current position, emits a stop snapshot, and resets to
// the idle shape. The saved position is intentionally preserved for the next
// session.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Engine) stopLocked() {
	var snap *StopSnapshot
	if len(e.words) > 0 {
		index := clampIndex(e.currentIndex, len(e.words))
		w := e.words[index]
		snap = &StopSnapshot{
			Index:    index,
			Total:    len(e.words),
			Text:     w.Text,
			Anchor:   w.Anchor,
			DocIndex: w.DocIndex,
		}
		if e.sectionID != "" {
			pos := PersistedPosition{SectionID: e.sectionID, WordIndex: index, WordText: w.Text}
			if err := e.positions.Save(pos); err != nil {
				e.log.Warn("failed to persist position", "err", err)
			}
		}
	}

	e.cancelTimersLocked()
	e.words = nil
	e.currentIndex = 0
	e.active = false
	e.playing = false
	e.resumedFrom = -1
	e.pending = startRequest{}
	e.emitState()
	if e.onStop != nil {
		e.onStop(snap)
	}
}

// Shutdown stops playback, clears the persisted position, and releases the
// section binding. Used when the engine is being torn down with the book,
// not for a user-initiated stop.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
	e.clearPositionLocked()
	e.sectionID = ""
}

// LoadNextPageContent re-extracts words for newly supplied content, resets to
// the first word, and re-enters the countdown if playback was running so
// pacing continues across the page boundary. Entering a new section
// invalidates the saved position.
func (e *Engine) LoadNextPageContent() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearPositionLocked()
	e.cancelTimersLocked()
	wasPlaying := e.playing
	e.playing = false
	e.extractRetryLocked(0, e.cfg.PageRetries, e.cfg.PageRetryDelay, func(words []Word) {
		if words == nil {
			// New page never produced content; stay paused instead of erroring.
			e.emitState()
			return
		}
		e.words = words
		e.currentIndex = 0
		e.resumedFrom = -1
		e.emitState()
		if e.active && wasPlaying {
			e.beginCountdownLocked()
		}
	})
}

// SkipForward moves n words forward (DefaultSkip when n <= 0) without
// re-pacing: an in-flight timer keeps governing when the next advance
// happens.
func (e *Engine) SkipForward(n int) {
	if n <= 0 {
		n = DefaultSkip
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.displaceLocked(e.currentIndex + n)
}

// SkipBackward moves n words backward (DefaultSkip when n <= 0).
func (e *Engine) SkipBackward(n int) {
	if n <= 0 {
		n = DefaultSkip
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.displaceLocked(e.currentIndex - n)
}

// SeekToPosition maps a percentage of the word stream to an index, with skip
// semantics.
func (e *Engine) SeekToPosition(pct float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.words) == 0 {
		return
	}
	e.displaceLocked(int(pct / 100 * float64(len(e.words))))
}

func (e *Engine) displaceLocked(index int) {
	if len(e.words) == 0 {
		return
	}
	e.currentIndex = clampIndex(index, len(e.words))
	e.emitState()
}

// SetWPM sets the reading speed, snapped and clamped, persists it, and emits
// a state change even while paused.
func (e *Engine) SetWPM(wpm int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setWPMLocked(wpm)
}

// IncreaseSpeed raises the speed by one step.
func (e *Engine) IncreaseSpeed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setWPMLocked(e.wpm + WPMStep)
}

// DecreaseSpeed lowers the speed by one step.
func (e *Engine) DecreaseSpeed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setWPMLocked(e.wpm - WPMStep)
}

func (e *Engine) setWPMLocked(wpm int) {
	e.wpm = ClampWPM(wpm)
	if err := saveWPM(e.store, e.bookID, e.wpm); err != nil {
		e.log.Warn("failed to persist wpm", "err", err)
	}
	e.emitState()
}

// SetPunctuationPause sets the extra pause added after sentence/clause
// punctuation, restricted to the supported values, and persists it.
func (e *Engine) SetPunctuationPause(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.punctPause = ClampPunctuationPause(d)
	if err := savePunctuationPause(e.store, e.bookID, e.punctPause); err != nil {
		e.log.Warn("failed to persist punctuation pause", "err", err)
	}
	e.emitState()
}

// State returns a snapshot of the current playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// CurrentWord returns the word at the current index, if a stream is loaded.
func (e *Engine) CurrentWord() (Word, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.currentIndex < 0 || e.currentIndex >= len(e.words) {
		return Word{}, false
	}
	return e.words[e.currentIndex], true
}

// Countdown returns the current countdown value, 0 when none is running.
func (e *Engine) Countdown() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.countdown
}

// Words returns a copy of the current word stream.
func (e *Engine) Words() []Word {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Word, len(e.words))
	copy(out, e.words)
	return out
}

// firstVisibleIndexLocked finds the first word whose anchor falls inside the
// visible band derived from the surface's scroll offset and page extent.
// Geometry failures skip the word; no visible word means index 0.
func (e *Engine) firstVisibleIndexLocked(words []Word) int {
	hi := e.surface.ScrollOffset()
	lo := hi - e.surface.PageExtent()
	for i, w := range words {
		if w.Anchor == nil {
			continue
		}
		box, err := w.Anchor.Box()
		if err != nil {
			continue
		}
		if box.Y >= lo && box.Y <= hi {
			return i
		}
	}
	return 0
}

func (e *Engine) clearPositionLocked() {
	if err := e.positions.Clear(); err != nil {
		e.log.Warn("failed to clear position", "err", err)
	}
}

// cancelTimersLocked invalidates every outstanding callback and stops all
// timer handles. Every state-entering transition goes through here first, so
// two competing timers can never exist.
func (e *Engine) cancelTimersLocked() {
	e.gen++
	e.stopTimer(&e.advanceTimer)
	e.stopTimer(&e.countdownTimer)
	e.stopTimer(&e.retryTimer)
	if e.countdown > 0 {
		e.countdown = 0
		e.emitCountdown(0)
	}
}

func (e *Engine) stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (e *Engine) snapshot() State {
	return State{
		Active:           e.active,
		Playing:          e.playing,
		CurrentIndex:     e.currentIndex,
		TotalWords:       len(e.words),
		WPM:              e.wpm,
		PunctuationPause: e.punctPause,
		Progress:         e.progressLocked(),
		ResumedFromIndex: e.resumedFrom,
	}
}

func (e *Engine) progressLocked() float64 {
	if len(e.words) == 0 {
		return 0
	}
	return float64(e.currentIndex) / float64(len(e.words)) * 100
}

func clampIndex(i, length int) int {
	if i < 0 {
		return 0
	}
	if i > length-1 {
		return length - 1
	}
	return i
}
