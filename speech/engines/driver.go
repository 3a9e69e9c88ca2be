package engines

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/recite-sh/recite/internal/audio"
	"github.com/recite-sh/recite/speech"
)

// pollInterval is how often the driver samples the sink position while
// waiting for word boundaries.
const pollInterval = 10 * time.Millisecond

// SynthesizeFunc turns a chunk of text into 16-bit little-endian mono
// PCM at the engine's sample rate.
type SynthesizeFunc func(ctx context.Context, text string, params speech.VoiceParams) ([]byte, error)

// Driver implements speech.Engine on top of an audio sink and a
// synthesis function. It owns the per-submission goroutine, emits
// lifecycle events, and schedules word boundaries against the sink's
// playback position. Exec-based engines wrap it with their own
// SynthesizeFunc.
type Driver struct {
	sink       audio.Sink
	sampleRate int
	synth      SynthesizeFunc
	voices     []speech.Voice
	logger     *log.Logger

	events chan speech.Event

	mu     sync.Mutex
	wg     sync.WaitGroup
	cancel context.CancelFunc
	done   chan struct{} // closed when the current run goroutine exits
	closed bool
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithVoices sets the voice catalog the engine reports.
func WithVoices(voices []speech.Voice) DriverOption {
	return func(d *Driver) { d.voices = voices }
}

// WithLogger sets the logger used for playback diagnostics.
func WithLogger(logger *log.Logger) DriverOption {
	return func(d *Driver) { d.logger = logger }
}

// NewDriver builds a driver around sink and synth. The sample rate
// must match the PCM the synthesis function produces.
func NewDriver(sink audio.Sink, sampleRate int, synth SynthesizeFunc, opts ...DriverOption) *Driver {
	d := &Driver{
		sink:       sink,
		sampleRate: sampleRate,
		synth:      synth,
		logger:     log.Default(),
		events:     make(chan speech.Event, 64),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit cancels any in-flight submission and waits for its goroutine
// to exit before touching the sink, so a late-finishing predecessor can
// never slip its audio in under the new submission.
func (d *Driver) Submit(sub speech.Submission) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	prev := d.done
	d.mu.Unlock()

	if prev != nil {
		<-prev
	}
	_ = d.sink.Stop()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer close(done)
		d.run(ctx, sub)
	}()
}

func (d *Driver) Cancel() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()
	_ = d.sink.Stop()
}

func (d *Driver) Pause() {
	if err := d.sink.Pause(); err != nil {
		d.logger.Debug("pause ignored", "error", err)
	}
}

func (d *Driver) Resume() {
	if err := d.sink.Resume(); err != nil {
		d.logger.Debug("resume ignored", "error", err)
	}
}

func (d *Driver) Voices() []speech.Voice {
	out := make([]speech.Voice, len(d.voices))
	copy(out, d.voices)
	return out
}

func (d *Driver) Events() <-chan speech.Event {
	return d.events
}

func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
	err := d.sink.Close()
	close(d.events)
	return err
}

// run synthesizes and plays one submission. It emits ChunkStart, the
// word boundaries, and exactly one terminal event, unless the context
// is cancelled first, in which case it goes quiet.
func (d *Driver) run(ctx context.Context, sub speech.Submission) {
	pcm, err := d.synth(ctx, sub.Text, sub.Params)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		d.emit(ctx, speech.Event{
			Type:       speech.EventChunkError,
			Generation: sub.Generation,
			Err:        fmt.Errorf("%w: %v", speech.ErrSynthesisFailed, err),
		})
		return
	}

	// Cancellation can land while synth is returning; the sink may
	// already belong to a newer submission by now.
	if ctx.Err() != nil {
		return
	}

	audio.ApplyGain(pcm, sub.Params.Volume)

	if err := d.sink.Play(pcm); err != nil {
		if ctx.Err() != nil {
			return
		}
		d.emit(ctx, speech.Event{
			Type:       speech.EventChunkError,
			Generation: sub.Generation,
			Err:        fmt.Errorf("%w: %v", speech.ErrSynthesisFailed, err),
		})
		return
	}

	d.emit(ctx, speech.Event{Type: speech.EventChunkStart, Generation: sub.Generation})

	total := audio.Duration(len(pcm), d.sampleRate)
	d.trackBoundaries(ctx, sub, total)
	if ctx.Err() != nil {
		return
	}

	_ = d.sink.Stop()
	d.emit(ctx, speech.Event{Type: speech.EventChunkEnd, Generation: sub.Generation})
}

// trackBoundaries polls the sink position and emits a boundary event
// each time playback crosses a word's share of the stream. Position is
// frozen while the sink is paused, so pauses stall boundaries too.
func (d *Driver) trackBoundaries(ctx context.Context, sub speech.Submission, total time.Duration) {
	offsets := WordOffsets(sub.Text)
	runes := len([]rune(sub.Text))
	next := 0

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pos := d.sink.Position()
		for next < len(offsets) && runes > 0 {
			at := total * time.Duration(offsets[next]) / time.Duration(runes)
			if pos < at {
				break
			}
			d.emit(ctx, speech.Event{
				Type:       speech.EventChunkBoundary,
				Generation: sub.Generation,
				CharIndex:  offsets[next],
			})
			next++
		}

		if pos >= total {
			return
		}
	}
}

// emit delivers an event unless the submission was cancelled or the
// consumer fell too far behind.
func (d *Driver) emit(ctx context.Context, ev speech.Event) {
	select {
	case d.events <- ev:
	case <-ctx.Done():
	}
}

var _ speech.Engine = (*Driver)(nil)
