package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Player is a Sink backed by an oto audio context. Position is derived
// from wall-clock time rather than the device buffer, which is close
// enough for word-boundary scheduling.
type Player struct {
	ctx        *oto.Context
	sampleRate int

	mu      sync.Mutex
	player  *oto.Player
	started time.Time
	elapsed time.Duration // accumulated before the current pause
	total   time.Duration // length of the active stream
	paused  bool
	closed  bool
}

// NewPlayer opens the default audio device for 16-bit mono PCM at the
// given sample rate. The call blocks until the device is ready.
func NewPlayer(sampleRate int) (*Player, error) {
	if sampleRate != 22050 && sampleRate != 24000 && sampleRate != 44100 && sampleRate != 48000 {
		return nil, fmt.Errorf("unsupported sample rate %d", sampleRate)
	}
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready
	return &Player{ctx: ctx, sampleRate: sampleRate}, nil
}

// SampleRate returns the rate the device was opened at.
func (p *Player) SampleRate() int { return p.sampleRate }

func (p *Player) Play(pcm []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPlayerClosed
	}
	if p.player != nil {
		return ErrAlreadyActive
	}
	// oto reads from the buffer asynchronously, so the reader must own
	// its own copy of the samples.
	data := make([]byte, len(pcm))
	copy(data, pcm)
	p.player = p.ctx.NewPlayer(bytes.NewReader(data))
	p.player.Play()
	p.started = time.Now()
	p.elapsed = 0
	p.total = Duration(len(data), p.sampleRate)
	p.paused = false
	return nil
}

func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPlayerClosed
	}
	if p.player == nil {
		return ErrNotActive
	}
	if p.paused {
		return nil
	}
	p.player.Pause()
	p.elapsed += time.Since(p.started)
	p.paused = true
	return nil
}

func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPlayerClosed
	}
	if p.player == nil {
		return ErrNotActive
	}
	if !p.paused {
		return nil
	}
	p.player.Play()
	p.started = time.Now()
	p.paused = false
	return nil
}

func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPlayerClosed
	}
	p.discard()
	return nil
}

// discard releases the active oto player. Caller holds p.mu.
func (p *Player) discard() {
	if p.player == nil {
		return
	}
	p.player.Pause()
	_ = p.player.Close()
	p.player = nil
	p.elapsed = 0
	p.total = 0
	p.paused = false
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player == nil {
		return 0
	}
	pos := p.elapsed
	if !p.paused {
		pos += time.Since(p.started)
	}
	if pos > p.total {
		pos = p.total
	}
	return pos
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && !p.paused
}

func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.discard()
	p.closed = true
	return nil
}
