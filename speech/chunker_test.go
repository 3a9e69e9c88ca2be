package speech_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/recite-sh/recite/speech"
)

func TestChunkTextSentenceBoundaries(t *testing.T) {
	chunks, err := speech.ChunkText("AAAA. BBBB. CCCC.", 6)
	if err != nil {
		t.Fatalf("ChunkText: %v", err)
	}
	want := []string{"AAAA.", "BBBB.", "CCCC."}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d: %v", len(chunks), len(want), chunks)
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Content, w)
		}
		if chunks[i].Index != i {
			t.Errorf("chunk %d carries index %d", i, chunks[i].Index)
		}
		if chunks[i].Length != len([]rune(w)) {
			t.Errorf("chunk %d length = %d, want %d", i, chunks[i].Length, len([]rune(w)))
		}
	}
}

func TestChunkTextShortInputSingleChunk(t *testing.T) {
	chunks, err := speech.ChunkText("  hello world  ", 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != "hello world" {
		t.Errorf("content = %q, want trimmed input", chunks[0].Content)
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		chunks, err := speech.ChunkText(text, 100)
		if err != nil {
			t.Errorf("ChunkText(%q): %v", text, err)
		}
		if len(chunks) != 0 {
			t.Errorf("ChunkText(%q) = %v, want none", text, chunks)
		}
	}
}

func TestChunkTextInvalidMaxLen(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := speech.ChunkText("text", n); !errors.Is(err, speech.ErrInvalidChunkSize) {
			t.Errorf("ChunkText with maxLen %d = %v, want ErrInvalidChunkSize", n, err)
		}
	}
}

func TestChunkTextHardCutWithoutBoundary(t *testing.T) {
	text := strings.Repeat("a", 25)
	chunks, err := speech.ChunkText(text, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{strings.Repeat("a", 10), strings.Repeat("a", 10), strings.Repeat("a", 5)}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Content != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Content, w)
		}
	}
}

func TestChunkTextParagraphBreak(t *testing.T) {
	text := "one two\n\nthree four five six seven"
	chunks, err := speech.ChunkText(text, 12)
	if err != nil {
		t.Fatal(err)
	}
	if chunks[0].Content != "one two" {
		t.Errorf("first chunk = %q, want paragraph cut at %q", chunks[0].Content, "one two")
	}
}

func TestChunkTextWhitespaceOnlyInFinalFifth(t *testing.T) {
	// The space sits at 50% of the window, outside the final 20%, so
	// the cut must be hard at maxLen rather than at the space.
	text := "aaaaa " + strings.Repeat("b", 20)
	chunks, err := speech.ChunkText(text, 12)
	if err != nil {
		t.Fatal(err)
	}
	if len([]rune(chunks[0].Content)) != 12 {
		t.Errorf("first chunk %q has %d runes, want a hard cut at 12",
			chunks[0].Content, len([]rune(chunks[0].Content)))
	}
}

func TestChunkTextBounds(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 40)
	const maxLen = 50
	chunks, err := speech.ChunkText(text, maxLen)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for _, ch := range chunks {
		if ch.Length > maxLen {
			t.Errorf("chunk %d is %d runes, exceeds %d", ch.Index, ch.Length, maxLen)
		}
		if ch.Content != strings.TrimSpace(ch.Content) {
			t.Errorf("chunk %d is not trimmed: %q", ch.Index, ch.Content)
		}
		if ch.Content == "" {
			t.Errorf("chunk %d is empty", ch.Index)
		}
	}
}

func TestChunkTextPreservesAllWords(t *testing.T) {
	text := "Pack my box with five dozen liquor jugs. How vexingly quick daft zebras jump! " +
		"Sphinx of black quartz, judge my vow?"
	chunks, err := speech.ChunkText(text, 30)
	if err != nil {
		t.Fatal(err)
	}
	var joined []string
	for _, ch := range chunks {
		joined = append(joined, ch.Content)
	}
	got := strings.Join(strings.Fields(strings.Join(joined, " ")), " ")
	want := strings.Join(strings.Fields(text), " ")
	if got != want {
		t.Errorf("chunking lost or altered words:\ngot  %q\nwant %q", got, want)
	}
}
