package speech

// State represents the playback state of the controller.
type State int

const (
	// StateIdle indicates no active session.
	StateIdle State = iota
	// StatePlaying indicates a session is actively speaking.
	StatePlaying
	// StatePaused indicates a session is paused mid-utterance.
	StatePaused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Status is a snapshot of the controller's observable state.
type Status struct {
	State   State   // current playback state
	Percent float64 // global progress through the document (0 to 100)
}
