package speech

import "errors"

// Common errors for the speech coordinator.
var (
	// ErrEngineUnavailable indicates no usable synthesis engine at
	// construction time. No session is ever created after this.
	ErrEngineUnavailable = errors.New("synthesis engine is not available")

	// ErrInvalidVoiceParams indicates rate, pitch or volume outside the
	// allowed range. Rejected before any text is chunked.
	ErrInvalidVoiceParams = errors.New("invalid voice parameters")

	// ErrInvalidChunkSize indicates a non-positive maximum chunk length.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")

	// ErrEmptyText indicates input that trims to nothing speakable.
	ErrEmptyText = errors.New("no speakable text")

	// ErrSynthesisFailed is the fallback for engine failures that carry
	// no error of their own.
	ErrSynthesisFailed = errors.New("audio synthesis failed")

	// ErrControllerClosed is returned by operations after Close.
	ErrControllerClosed = errors.New("controller has been closed")
)
