// Package speech coordinates chunked text playback over a synthesis
// engine that can only speak one bounded utterance at a time. The
// Controller owns the session state machine, global progress, and the
// consumer callback registry; engines communicate exclusively through
// asynchronous events on a typed channel.
package speech

import (
	"sync"

	"github.com/charmbracelet/log"
)

// PreviewPhrase is the fixed utterance spoken by PreviewVoice.
const PreviewPhrase = "The quick brown fox jumps over the lazy dog."

// Controller drives the speech playback session. All exported methods
// return immediately; observable effects surface later through the
// registered Callbacks. A Controller is safe for use from multiple
// goroutines and safe against re-entrant calls from inside its own
// callbacks.
type Controller struct {
	engine      Engine
	logger      *log.Logger
	maxChunkLen int

	mu         sync.Mutex
	callbacks  Callbacks
	session    *session
	generation uint64
	progress   *ProgressTracker
	closed     bool

	done chan struct{} // closed when the dispatch loop exits
}

// session is the lifecycle of one Speak (or PreviewVoice) call. It is
// mutated only under the controller's lock, in response to engine
// events or explicit transport calls.
type session struct {
	generation uint64
	chunks     []TextChunk
	index      int
	params     VoiceParams
	state      State
	started    bool // OnStart already fired
	preview    bool // one-shot preview, no consumer lifecycle callbacks
}

// Option configures a Controller.
type Option func(*Controller)

// WithMaxChunkLen sets the maximum utterance length in runes.
func WithMaxChunkLen(n int) Option {
	return func(c *Controller) { c.maxChunkLen = n }
}

// WithLogger sets the logger used for discarded events and engine
// failures.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// NewController creates a controller around the given engine and starts
// its event dispatch loop. It fails fast with ErrEngineUnavailable when
// no engine is supplied.
func NewController(engine Engine, opts ...Option) (*Controller, error) {
	if engine == nil {
		return nil, ErrEngineUnavailable
	}

	c := &Controller{
		engine:      engine,
		logger:      log.Default(),
		maxChunkLen: DefaultMaxChunkLen,
		progress:    NewProgressTracker(0),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.dispatch()

	return c, nil
}

// SetCallbacks replaces the entire callback registration. Omitted
// (nil) fields become no-ops.
func (c *Controller) SetCallbacks(cb Callbacks) {
	c.mu.Lock()
	c.callbacks = cb
	c.mu.Unlock()
}

// Speak chunks text and starts a new playback session. A session
// already in flight, paused ones included, is cut short as if Stop had
// been called: its remaining chunks are discarded and it receives its
// OnEnd. Validation and chunking errors are returned synchronously;
// everything that happens after submission surfaces through the
// callbacks.
func (c *Controller) Speak(text string, params VoiceParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	chunks, err := ChunkText(text, c.maxChunkLen)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	total := 0
	for _, ch := range chunks {
		total += ch.Length
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	var ended func()
	if s := c.session; s != nil {
		c.engine.Cancel()
		if !s.preview {
			ended = c.callbacks.OnEnd
		}
	}
	c.generation++
	c.session = &session{
		generation: c.generation,
		chunks:     chunks,
		params:     params,
		state:      StatePlaying,
	}
	c.progress.Reset(total)
	sub := Submission{Generation: c.generation, Text: chunks[0].Content, Params: params}
	c.mu.Unlock()

	c.engine.Submit(sub)
	if ended != nil {
		ended()
	}
	return nil
}

// Pause suspends the active session. A no-op unless actively speaking.
func (c *Controller) Pause() {
	c.mu.Lock()
	s := c.session
	if s == nil || s.preview || s.state != StatePlaying {
		c.mu.Unlock()
		return
	}
	s.state = StatePaused
	cb := c.callbacks
	c.mu.Unlock()

	c.engine.Pause()
	if cb.OnPause != nil {
		cb.OnPause()
	}
}

// Resume continues a paused session. A no-op unless paused.
func (c *Controller) Resume() {
	c.mu.Lock()
	s := c.session
	if s == nil || s.preview || s.state != StatePaused {
		c.mu.Unlock()
		return
	}
	s.state = StatePlaying
	cb := c.callbacks
	c.mu.Unlock()

	c.engine.Resume()
	if cb.OnResume != nil {
		cb.OnResume()
	}
}

// Stop cancels the active session, discards its remaining chunks and
// resets progress to zero. Fires OnEnd for a consumer session; a no-op
// when idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	s := c.session
	if s == nil {
		c.mu.Unlock()
		return
	}
	c.engine.Cancel()
	preview := s.preview
	c.session = nil
	c.progress.Reset(0)
	cb := c.callbacks
	c.mu.Unlock()

	if !preview && cb.OnEnd != nil {
		cb.OnEnd()
	}
}

// PreviewVoice interrupts any active session and speaks a single short
// phrase with the given parameters. The interrupted session receives
// its OnEnd and is not resumed when the preview completes.
func (c *Controller) PreviewVoice(params VoiceParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	phrase := TextChunk{Content: PreviewPhrase, Length: len([]rune(PreviewPhrase))}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	var ended func()
	if s := c.session; s != nil {
		c.engine.Cancel()
		if !s.preview {
			ended = c.callbacks.OnEnd
		}
	}
	c.generation++
	c.session = &session{
		generation: c.generation,
		chunks:     []TextChunk{phrase},
		params:     params,
		state:      StatePlaying,
		preview:    true,
	}
	c.progress.Reset(0)
	sub := Submission{Generation: c.generation, Text: phrase.Content, Params: params}
	c.mu.Unlock()

	c.engine.Submit(sub)
	if ended != nil {
		ended()
	}
	return nil
}

// Status returns a snapshot of the current state and global progress.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Status{State: StateIdle}
	}
	return Status{State: c.session.state, Percent: c.progress.Percent()}
}

// Voices lists the engine's voices. The list may be empty until the
// engine has finished warming up.
func (c *Controller) Voices() []Voice {
	return c.engine.Voices()
}

// Close cancels any active session and shuts down the engine. The
// controller cannot be reused afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.session != nil {
		c.engine.Cancel()
		c.session = nil
	}
	c.progress.Reset(0)
	c.mu.Unlock()

	err := c.engine.Close()
	<-c.done
	return err
}

// dispatch consumes the engine's event channel until it is closed.
func (c *Controller) dispatch() {
	defer close(c.done)
	for ev := range c.engine.Events() {
		c.handleEvent(ev)
	}
}

// handleEvent applies one engine event to the current session. Events
// whose generation does not match are stale leftovers of a canceled or
// replaced session, possibly triggered by a consumer calling Speak from
// inside OnEnd, and are dropped without effect.
func (c *Controller) handleEvent(ev Event) {
	c.mu.Lock()
	s := c.session
	if s == nil || ev.Generation != s.generation {
		c.mu.Unlock()
		c.logger.Debug("discarding stale engine event",
			"type", ev.Type, "generation", ev.Generation)
		return
	}

	switch ev.Type {
	case EventChunkStart:
		if s.started {
			c.mu.Unlock()
			return
		}
		s.started = true
		cb := c.callbacks
		preview := s.preview
		c.mu.Unlock()
		if !preview && cb.OnStart != nil {
			cb.OnStart()
		}

	case EventChunkBoundary:
		if s.state != StatePlaying || s.preview {
			c.mu.Unlock()
			return
		}
		c.progress.Boundary(ev.CharIndex)
		info := BoundaryInfo{
			ChunkIndex: s.index,
			CharIndex:  ev.CharIndex,
			Percent:    c.progress.Percent(),
		}
		cb := c.callbacks
		c.mu.Unlock()
		if cb.OnBoundary != nil {
			cb.OnBoundary(info)
		}

	case EventChunkEnd:
		c.progress.CompleteChunk(s.chunks[s.index].Length)
		s.index++
		if s.index < len(s.chunks) {
			sub := Submission{
				Generation: s.generation,
				Text:       s.chunks[s.index].Content,
				Params:     s.params,
			}
			c.mu.Unlock()
			c.engine.Submit(sub)
			return
		}
		preview := s.preview
		c.session = nil
		c.progress.Reset(0)
		cb := c.callbacks
		c.mu.Unlock()
		if !preview && cb.OnEnd != nil {
			cb.OnEnd()
		}

	case EventChunkError:
		err := ev.Err
		if err == nil {
			err = ErrSynthesisFailed
		}
		preview := s.preview
		c.session = nil
		c.progress.Reset(0)
		cb := c.callbacks
		c.mu.Unlock()
		c.engine.Cancel()
		if preview {
			c.logger.Warn("voice preview failed", "err", err)
			return
		}
		if cb.OnError != nil {
			cb.OnError(err)
		}
		if cb.OnEnd != nil {
			cb.OnEnd()
		}

	default:
		c.mu.Unlock()
	}
}
