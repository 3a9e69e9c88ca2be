// Package mock provides an in-process synthesis engine for tests and
// for running the CLI without audio hardware.
package mock

import (
	"strings"
	"sync"
	"time"

	"github.com/recite-sh/recite/speech"
)

// Engine implements speech.Engine without synthesizing any audio. In
// manual mode (the default) tests drive the event stream themselves via
// Emit. With auto playback enabled the engine walks each submission on
// a timer, emitting start, per-word boundaries and end.
type Engine struct {
	mu          sync.Mutex
	events      chan speech.Event
	voices      []speech.Voice
	auto        bool
	charDelay   time.Duration
	failWith    error
	submissions []speech.Submission
	cancels     int
	pauses      int
	resumes     int
	paused      chan struct{} // non-nil while paused; closed on resume
	stop        chan struct{} // cancels the in-flight auto playback
	closed      bool
}

// Option configures the mock engine.
type Option func(*Engine)

// WithAutoPlayback makes the engine emit the full event sequence for
// each submission on its own, pacing boundaries by charDelay per rune.
func WithAutoPlayback(charDelay time.Duration) Option {
	return func(e *Engine) {
		e.auto = true
		e.charDelay = charDelay
	}
}

// WithFailure makes every auto-played submission terminate with
// EventChunkError carrying err.
func WithFailure(err error) Option {
	return func(e *Engine) { e.failWith = err }
}

// WithVoices replaces the engine's voice list.
func WithVoices(voices []speech.Voice) Option {
	return func(e *Engine) { e.voices = voices }
}

// New creates a mock engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		events: make(chan speech.Event, 64),
		voices: []speech.Voice{
			{ID: "mock-en-1", Name: "Mock English", Language: "en-US", Default: true},
			{ID: "mock-en-2", Name: "Mock British", Language: "en-GB"},
			{ID: "mock-de-1", Name: "Mock German", Language: "de-DE"},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit records the submission and, in auto mode, plays it back on a
// timer in a background goroutine.
func (e *Engine) Submit(sub speech.Submission) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.submissions = append(e.submissions, sub)
	if !e.auto {
		e.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	e.stop = stop
	e.mu.Unlock()

	go e.play(sub, stop)
}

// Cancel aborts the in-flight auto playback, if any.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancels++
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

// Pause suspends auto playback.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauses++
	if e.paused == nil {
		e.paused = make(chan struct{})
	}
}

// Resume continues auto playback.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resumes++
	if e.paused != nil {
		close(e.paused)
		e.paused = nil
	}
}

// Voices returns the configured voice list.
func (e *Engine) Voices() []speech.Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]speech.Voice, len(e.voices))
	copy(out, e.voices)
	return out
}

// Events returns the engine's event channel.
func (e *Engine) Events() <-chan speech.Event {
	return e.events
}

// Close stops playback and closes the event channel.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	close(e.events)
	return nil
}

// Emit injects an event, for tests that script the stream by hand.
func (e *Engine) Emit(ev speech.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.events <- ev
}

// Submissions returns a copy of everything submitted so far.
func (e *Engine) Submissions() []speech.Submission {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]speech.Submission, len(e.submissions))
	copy(out, e.submissions)
	return out
}

// WaitSubmissions blocks until at least n submissions have arrived or
// the timeout elapses. Returns the submissions seen either way.
func (e *Engine) WaitSubmissions(n int, timeout time.Duration) []speech.Submission {
	deadline := time.Now().Add(timeout)
	for {
		subs := e.Submissions()
		if len(subs) >= n || time.Now().After(deadline) {
			return subs
		}
		time.Sleep(time.Millisecond)
	}
}

// Cancels returns how many times Cancel has been called.
func (e *Engine) Cancels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancels
}

// Pauses returns how many times Pause has been called.
func (e *Engine) Pauses() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pauses
}

// play emits the event sequence for one submission, pacing by rune
// count and respecting pause and cancel.
func (e *Engine) play(sub speech.Submission, stop chan struct{}) {
	emit := func(ev speech.Event) bool {
		select {
		case <-stop:
			return false
		default:
		}
		e.mu.Lock()
		if e.closed {
			e.mu.Unlock()
			return false
		}
		e.events <- ev
		e.mu.Unlock()
		return true
	}

	wait := func(d time.Duration) bool {
		deadline := time.Now().Add(d)
		for {
			select {
			case <-stop:
				return false
			default:
			}
			e.mu.Lock()
			paused := e.paused
			e.mu.Unlock()
			if paused != nil {
				select {
				case <-stop:
					return false
				case <-paused:
				}
				continue
			}
			if !time.Now().Before(deadline) {
				return true
			}
			time.Sleep(time.Millisecond)
		}
	}

	if e.failWith != nil {
		if !wait(e.charDelay) {
			return
		}
		emit(speech.Event{Type: speech.EventChunkError, Generation: sub.Generation, Err: e.failWith})
		return
	}

	if !emit(speech.Event{Type: speech.EventChunkStart, Generation: sub.Generation}) {
		return
	}

	offset := 0
	for _, word := range strings.Fields(sub.Text) {
		idx := indexOfWord(sub.Text, word, offset)
		if idx < 0 {
			break
		}
		if !wait(time.Duration(len([]rune(word))) * e.charDelay) {
			return
		}
		if !emit(speech.Event{Type: speech.EventChunkBoundary, Generation: sub.Generation, CharIndex: idx}) {
			return
		}
		offset = idx + len([]rune(word))
	}

	if !wait(e.charDelay) {
		return
	}
	emit(speech.Event{Type: speech.EventChunkEnd, Generation: sub.Generation})
}

// indexOfWord finds the rune offset of word at or after the given rune
// offset.
func indexOfWord(text, word string, from int) int {
	runes := []rune(text)
	w := []rune(word)
	for i := from; i+len(w) <= len(runes); i++ {
		if string(runes[i:i+len(w)]) == word {
			return i
		}
	}
	return -1
}
