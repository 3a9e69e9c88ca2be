package engines_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/recite-sh/recite/internal/audio"
	"github.com/recite-sh/recite/speech"
	"github.com/recite-sh/recite/speech/engines"
)

func TestWordOffsets(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{"simple", "hello brave world", []int{0, 6, 12}},
		{"leading space", "  hi there", []int{2, 5}},
		{"newlines", "one\ntwo\n\nthree", []int{0, 4, 9}},
		{"empty", "", nil},
		{"only spaces", "   ", nil},
		{"multibyte runes", "héllo wörld", []int{0, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engines.WordOffsets(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WordOffsets(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// fixedSynth returns one second of silence regardless of input.
func fixedSynth(sampleRate int) engines.SynthesizeFunc {
	return func(_ context.Context, _ string, _ speech.VoiceParams) ([]byte, error) {
		return make([]byte, sampleRate*2), nil
	}
}

func collect(t *testing.T, events <-chan speech.Event, timeout time.Duration) []speech.Event {
	t.Helper()
	var got []speech.Event
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
			if ev.Type == speech.EventChunkEnd || ev.Type == speech.EventChunkError {
				return got
			}
		case <-deadline:
			t.Fatalf("timed out waiting for terminal event, got %v", got)
		}
	}
}

func TestDriverEmitsLifecycle(t *testing.T) {
	sink := audio.NewMockSink(22050, 200)
	d := engines.NewDriver(sink, 22050, fixedSynth(22050))
	defer d.Close()

	d.Submit(speech.Submission{
		Generation: 3,
		Text:       "alpha beta gamma",
		Params:     speech.DefaultVoiceParams(),
	})

	got := collect(t, d.Events(), 2*time.Second)

	if got[0].Type != speech.EventChunkStart {
		t.Fatalf("first event = %v, want ChunkStart", got[0].Type)
	}
	last := got[len(got)-1]
	if last.Type != speech.EventChunkEnd {
		t.Fatalf("last event = %v, want ChunkEnd", last.Type)
	}

	var offsets []int
	for _, ev := range got {
		if ev.Generation != 3 {
			t.Errorf("event %v carries generation %d, want 3", ev.Type, ev.Generation)
		}
		if ev.Type == speech.EventChunkBoundary {
			offsets = append(offsets, ev.CharIndex)
		}
	}
	if want := []int{0, 6, 11}; !reflect.DeepEqual(offsets, want) {
		t.Errorf("boundary offsets = %v, want %v", offsets, want)
	}
}

func TestDriverReportsSynthesisError(t *testing.T) {
	boom := errors.New("voice model exploded")
	synth := func(_ context.Context, _ string, _ speech.VoiceParams) ([]byte, error) {
		return nil, boom
	}
	sink := audio.NewMockSink(22050, 200)
	d := engines.NewDriver(sink, 22050, synth)
	defer d.Close()

	d.Submit(speech.Submission{Generation: 1, Text: "x", Params: speech.DefaultVoiceParams()})

	got := collect(t, d.Events(), time.Second)
	if len(got) != 1 || got[0].Type != speech.EventChunkError {
		t.Fatalf("events = %v, want a single ChunkError", got)
	}
	if !errors.Is(got[0].Err, speech.ErrSynthesisFailed) {
		t.Errorf("error = %v, want ErrSynthesisFailed", got[0].Err)
	}
}

func TestDriverCancelSuppressesTerminalEvent(t *testing.T) {
	started := make(chan struct{})
	synth := func(ctx context.Context, _ string, _ speech.VoiceParams) ([]byte, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	sink := audio.NewMockSink(22050, 200)
	d := engines.NewDriver(sink, 22050, synth)
	defer d.Close()

	d.Submit(speech.Submission{Generation: 1, Text: "x", Params: speech.DefaultVoiceParams()})
	<-started
	d.Cancel()

	select {
	case ev := <-d.Events():
		t.Fatalf("got %v after cancel, want silence", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDriverSubmitReplacesInFlightSubmission(t *testing.T) {
	// The first synthesis is held until its context is cancelled and
	// then completes successfully, landing exactly as the replacement
	// arrives. Its audio must never reach the sink, and the second
	// submission must play through cleanly.
	entered := make(chan struct{})
	synth := func(ctx context.Context, text string, _ speech.VoiceParams) ([]byte, error) {
		if text == "first words" {
			close(entered)
			<-ctx.Done()
		}
		return make([]byte, 22050/5*2), nil
	}
	sink := audio.NewMockSink(22050, 200)
	d := engines.NewDriver(sink, 22050, synth)
	defer d.Close()

	d.Submit(speech.Submission{Generation: 1, Text: "first words", Params: speech.DefaultVoiceParams()})
	<-entered
	d.Submit(speech.Submission{Generation: 2, Text: "second words", Params: speech.DefaultVoiceParams()})

	got := collect(t, d.Events(), 2*time.Second)
	for _, ev := range got {
		if ev.Generation != 2 {
			t.Errorf("event %v carries generation %d, want 2", ev.Type, ev.Generation)
		}
		if ev.Type == speech.EventChunkError {
			t.Errorf("replacement submission failed: %v", ev.Err)
		}
	}
	if got[0].Type != speech.EventChunkStart {
		t.Fatalf("first event = %v, want ChunkStart", got[0].Type)
	}
	if last := got[len(got)-1]; last.Type != speech.EventChunkEnd {
		t.Fatalf("last event = %v, want ChunkEnd", last.Type)
	}
	if plays, _, _, _ := sink.Counts(); plays != 1 {
		t.Errorf("sink played %d buffers, want only the replacement", plays)
	}
}

func TestDriverAppliesVolume(t *testing.T) {
	synth := func(_ context.Context, _ string, _ speech.VoiceParams) ([]byte, error) {
		return []byte{0xe8, 0x03}, nil // a single sample of 1000
	}
	sink := audio.NewMockSink(22050, 200)
	d := engines.NewDriver(sink, 22050, synth)
	defer d.Close()

	params := speech.DefaultVoiceParams()
	params.Volume = 0.5
	d.Submit(speech.Submission{Generation: 1, Text: "x", Params: params})
	collect(t, d.Events(), time.Second)

	pcm := sink.LastPCM()
	got := int16(uint16(pcm[0]) | uint16(pcm[1])<<8)
	if got != 500 {
		t.Errorf("played sample = %d, want 500 after half volume", got)
	}
}

func TestDriverVoicesCopy(t *testing.T) {
	voices := []speech.Voice{{ID: "a", Name: "Alpha", Language: "en", Default: true}}
	sink := audio.NewMockSink(22050, 200)
	d := engines.NewDriver(sink, 22050, fixedSynth(22050), engines.WithVoices(voices))
	defer d.Close()

	got := d.Voices()
	got[0].ID = "mutated"
	if d.Voices()[0].ID != "a" {
		t.Error("Voices should return a copy, not the internal slice")
	}
}
