package mock_test

import (
	"errors"
	"testing"
	"time"

	"github.com/recite-sh/recite/speech"
	"github.com/recite-sh/recite/speech/engines/mock"
)

func drain(t *testing.T, events <-chan speech.Event, timeout time.Duration) []speech.Event {
	t.Helper()
	var got []speech.Event
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-events:
			got = append(got, ev)
			if ev.Type == speech.EventChunkEnd || ev.Type == speech.EventChunkError {
				return got
			}
		case <-deadline:
			t.Fatalf("no terminal event within %v, got %v", timeout, got)
		}
	}
}

func TestAutoPlaybackEventOrder(t *testing.T) {
	eng := mock.New(mock.WithAutoPlayback(50 * time.Microsecond))
	defer eng.Close()

	eng.Submit(speech.Submission{Generation: 7, Text: "two little words and more"})
	got := drain(t, eng.Events(), 2*time.Second)

	if got[0].Type != speech.EventChunkStart {
		t.Fatalf("first event = %v, want ChunkStart", got[0].Type)
	}
	if got[len(got)-1].Type != speech.EventChunkEnd {
		t.Fatalf("last event = %v, want ChunkEnd", got[len(got)-1].Type)
	}

	var offsets []int
	for _, ev := range got {
		if ev.Generation != 7 {
			t.Errorf("event %v has generation %d, want 7", ev.Type, ev.Generation)
		}
		if ev.Type == speech.EventChunkBoundary {
			offsets = append(offsets, ev.CharIndex)
		}
	}
	want := []int{0, 4, 11, 17, 21}
	if len(offsets) != len(want) {
		t.Fatalf("boundary offsets = %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("boundary %d at offset %d, want %d", i, offsets[i], want[i])
		}
	}
}

func TestCancelSuppressesRemainingEvents(t *testing.T) {
	eng := mock.New(mock.WithAutoPlayback(5 * time.Millisecond))
	defer eng.Close()

	eng.Submit(speech.Submission{Generation: 1, Text: "a rather long sentence that keeps going"})

	// Wait for playback to start, then cancel mid-stream.
	select {
	case ev := <-eng.Events():
		if ev.Type != speech.EventChunkStart {
			t.Fatalf("first event = %v", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("playback never started")
	}
	eng.Cancel()

	// At most a trailing boundary may arrive, never a terminal event.
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case ev := <-eng.Events():
			if ev.Type == speech.EventChunkEnd || ev.Type == speech.EventChunkError {
				t.Fatalf("terminal event %v after Cancel", ev.Type)
			}
		case <-deadline:
			return
		}
	}
}

func TestFailureMode(t *testing.T) {
	boom := errors.New("no voice today")
	eng := mock.New(mock.WithAutoPlayback(time.Microsecond), mock.WithFailure(boom))
	defer eng.Close()

	eng.Submit(speech.Submission{Generation: 2, Text: "anything"})
	got := drain(t, eng.Events(), time.Second)

	if len(got) != 1 || got[0].Type != speech.EventChunkError {
		t.Fatalf("events = %v, want a single ChunkError", got)
	}
	if !errors.Is(got[0].Err, boom) {
		t.Errorf("error = %v, want %v", got[0].Err, boom)
	}
}

func TestManualModeRecordsSubmissions(t *testing.T) {
	eng := mock.New()
	defer eng.Close()

	eng.Submit(speech.Submission{Generation: 1, Text: "first"})
	eng.Submit(speech.Submission{Generation: 2, Text: "second"})

	subs := eng.Submissions()
	if len(subs) != 2 || subs[0].Text != "first" || subs[1].Text != "second" {
		t.Fatalf("submissions = %+v", subs)
	}

	// Manual mode emits nothing on its own.
	select {
	case ev := <-eng.Events():
		t.Fatalf("unexpected event %v in manual mode", ev.Type)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestCloseEndsEventStream(t *testing.T) {
	eng := mock.New()
	if err := eng.Close(); err != nil {
		t.Fatal(err)
	}
	if _, ok := <-eng.Events(); ok {
		t.Error("event channel should be closed")
	}
	// Submit and Emit after Close are ignored, not panics.
	eng.Submit(speech.Submission{Generation: 1, Text: "late"})
	eng.Emit(speech.Event{Type: speech.EventChunkEnd, Generation: 1})
}
