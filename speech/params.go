package speech

import "fmt"

// VoiceParams selects a voice and shapes how it speaks.
type VoiceParams struct {
	Voice  string  // engine voice identifier, empty means engine default
	Rate   float64 // speech rate multiplier (0.5 to 2.0, 1.0 = normal)
	Pitch  float64 // pitch adjustment (0.0 to 2.0, 1.0 = normal)
	Volume float64 // volume level (0.0 to 1.0)
}

// DefaultVoiceParams returns neutral voice parameters.
func DefaultVoiceParams() VoiceParams {
	return VoiceParams{
		Rate:   1.0,
		Pitch:  1.0,
		Volume: 1.0,
	}
}

// Validate checks that all parameters are within their allowed ranges.
func (p VoiceParams) Validate() error {
	if p.Rate < 0.5 || p.Rate > 2.0 {
		return fmt.Errorf("%w: rate %.2f out of range [0.5, 2.0]", ErrInvalidVoiceParams, p.Rate)
	}
	if p.Pitch < 0.0 || p.Pitch > 2.0 {
		return fmt.Errorf("%w: pitch %.2f out of range [0.0, 2.0]", ErrInvalidVoiceParams, p.Pitch)
	}
	if p.Volume < 0.0 || p.Volume > 1.0 {
		return fmt.Errorf("%w: volume %.2f out of range [0.0, 1.0]", ErrInvalidVoiceParams, p.Volume)
	}
	return nil
}
