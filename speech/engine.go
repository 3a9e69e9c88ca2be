package speech

// EventType identifies an asynchronous engine notification.
type EventType int

const (
	// EventChunkStart confirms a submission began playing.
	EventChunkStart EventType = iota
	// EventChunkBoundary reports a word or sentence position within the
	// submitted text.
	EventChunkBoundary
	// EventChunkEnd is the successful terminal event for a submission.
	EventChunkEnd
	// EventChunkError is the failing terminal event for a submission.
	EventChunkError
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventChunkStart:
		return "chunk_start"
	case EventChunkBoundary:
		return "chunk_boundary"
	case EventChunkEnd:
		return "chunk_end"
	case EventChunkError:
		return "chunk_error"
	default:
		return "unknown"
	}
}

// Event is a notification from a synthesis engine. Every event carries
// the generation of the submission it belongs to so that the controller
// can discard events from canceled sessions.
type Event struct {
	Type       EventType
	Generation uint64
	CharIndex  int   // boundary offset, set for EventChunkBoundary
	Err        error // set for EventChunkError
}

// Submission is one utterance handed to an engine.
type Submission struct {
	Generation uint64
	Text       string
	Params     VoiceParams
}

// Voice describes an engine voice.
type Voice struct {
	ID       string // engine voice identifier
	Name     string // human-readable name
	Language string // BCP 47 language tag (e.g. "en-US")
	Default  bool   // engine's default voice
}

// Engine wraps a synthesis backend that can speak one utterance at a
// time. Submit and Cancel are fire-and-forget: all outcomes surface as
// Events. An engine must deliver, per submission, one EventChunkStart,
// zero or more EventChunkBoundary and exactly one terminal event
// (EventChunkEnd or EventChunkError). It must never deliver events
// synchronously from inside Submit.
//
// After Cancel, one trailing event for the canceled submission may
// still arrive; consumers filter by generation rather than assume
// suppression.
type Engine interface {
	// Submit starts speaking one utterance. Any in-flight submission
	// should have been canceled first; engines are not queues.
	Submit(Submission)

	// Cancel aborts the in-flight submission, if any.
	Cancel()

	// Pause suspends the in-flight submission. Valid only while one is
	// in flight; otherwise ignored.
	Pause()

	// Resume continues a paused submission.
	Resume()

	// Voices lists the available voices. May be empty before the
	// backend has finished warming up; callers must tolerate both.
	Voices() []Voice

	// Events is the engine's notification channel. It is closed by
	// Close.
	Events() <-chan Event

	// Close releases the backend and closes the event channel.
	Close() error
}
