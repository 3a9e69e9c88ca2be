// Package audio provides raw PCM playback for the synthesis engines.
package audio

import (
	"errors"
	"time"
)

// Player errors.
var (
	ErrPlayerClosed  = errors.New("audio player is closed")
	ErrAlreadyActive = errors.New("audio player is busy")
	ErrNotActive     = errors.New("no audio is playing")
)

// Sink plays 16-bit little-endian mono PCM. One stream is active at a
// time; Play replaces nothing and fails while a stream is active.
type Sink interface {
	// Play starts playback of pcm and returns immediately.
	Play(pcm []byte) error

	// Pause suspends the active stream.
	Pause() error

	// Resume continues a paused stream.
	Resume() error

	// Stop discards the active stream.
	Stop() error

	// Position reports how much of the active stream has played. It is
	// frozen while paused and zero when idle.
	Position() time.Duration

	// Playing reports whether a stream is active and not paused.
	Playing() bool

	// Close releases the device.
	Close() error
}

// Duration computes the play time of a 16-bit mono PCM buffer.
func Duration(pcmLen, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	samples := pcmLen / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// ApplyGain scales 16-bit little-endian samples in place by volume,
// clamped to [0, 1]. A volume of 1 leaves the buffer untouched.
func ApplyGain(pcm []byte, volume float64) {
	if volume >= 1 {
		return
	}
	if volume < 0 {
		volume = 0
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(uint16(pcm[i]) | uint16(pcm[i+1])<<8)
		scaled := int16(float64(s) * volume)
		pcm[i] = byte(uint16(scaled))
		pcm[i+1] = byte(uint16(scaled) >> 8)
	}
}
