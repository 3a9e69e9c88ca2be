package speech

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChunkLen is the chunk bound used when none is configured.
// Utterances around this size keep engine latency low without cutting
// mid-sentence in typical prose.
const DefaultMaxChunkLen = 200

// TextChunk is one bounded piece of text submitted to the engine as a
// single utterance. Chunks are immutable and ordered; Index is the
// playback order.
type TextChunk struct {
	Index   int    // position in the chunk sequence
	Content string // trimmed chunk text
	Length  int    // rune count of Content
}

// ChunkText splits text into ordered chunks of at most maxLen runes,
// breaking at natural boundaries where possible. Boundary preference,
// searched within the first maxLen runes of the remaining text:
//
//  1. after the last sentence-terminal mark (. ? !) followed by
//     whitespace
//  2. after the last paragraph break (double newline)
//  3. at the last whitespace, if it falls in the final 20% of the window
//  4. a hard cut at exactly maxLen (may split a word)
//
// Each produced chunk is trimmed; chunks that trim to nothing are
// dropped. The function is deterministic and side-effect free.
func ChunkText(text string, maxLen int) ([]TextChunk, error) {
	if maxLen <= 0 {
		return nil, ErrInvalidChunkSize
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return []TextChunk{{Content: trimmed, Length: len(runes)}}, nil
	}

	var chunks []TextChunk
	emit := func(part []rune) {
		content := strings.TrimSpace(string(part))
		if content == "" {
			return
		}
		chunks = append(chunks, TextChunk{
			Index:   len(chunks),
			Content: content,
			Length:  utf8.RuneCountInString(content),
		})
	}

	for len(runes) > 0 {
		if len(runes) <= maxLen {
			emit(runes)
			break
		}

		cut := findCut(runes, maxLen)
		emit(runes[:cut])

		rest := runes[cut:]
		for len(rest) > 0 && unicode.IsSpace(rest[0]) {
			rest = rest[1:]
		}
		runes = rest
	}

	return chunks, nil
}

// findCut picks the break position for the next chunk. Callers
// guarantee len(runes) > maxLen.
func findCut(runes []rune, maxLen int) int {
	// Sentence end: terminal mark followed by whitespace.
	for i := maxLen - 1; i >= 0; i-- {
		if isSentenceTerminal(runes[i]) && unicode.IsSpace(runes[i+1]) {
			return i + 1
		}
	}

	// Paragraph break.
	for i := maxLen - 1; i >= 1; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}

	// Trailing whitespace, but only in the final 20% of the window so a
	// stray early space doesn't produce a tiny chunk.
	minIdx := (maxLen*4+4)/5 - 1
	for i := maxLen - 1; i >= minIdx; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}

	// No natural boundary: hard cut, possibly mid-word.
	return maxLen
}

func isSentenceTerminal(r rune) bool {
	return r == '.' || r == '?' || r == '!'
}
